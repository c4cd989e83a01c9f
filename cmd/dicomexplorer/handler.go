package main

import (
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

const (
	BaseFilename = "_base.html"
)

//go:embed templates
var embeddedTemplates embed.FS

// handler provides global values that must be
// safe for concurrent use from multiple goroutines
// to each handler method.
type handler struct {
	*Global

	router *mux.Router

	// Cached values / do not use directly. If they
	// need to be dynamic in the future, put them
	// under mutex protection.
	assets *string

	// Mutex protected values
	mu       sync.RWMutex
	template map[string]*template.Template
}

func (h *handler) Assets() string {
	if h.assets == nil {
		h.Global.log.Println("Initializing Assets")

		glyphs := fmt.Sprintf("/%s", RandHeteroglyphs(10))
		h.assets = &glyphs
	}

	return *h.assets
}

func (h *handler) Template(templateFilename string) *template.Template {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.template == nil {
		func() {
			h.mu.RUnlock()
			h.mu.Lock()
			defer func() {
				h.mu.Unlock()
				h.mu.RLock()
			}()

			h.Global.log.Println("Initializing HTML templates")
			h.template = make(map[string]*template.Template, 0)

			tpl, err := template.New(BaseFilename).Funcs(template.FuncMap{
				"add":  func(a, b int) int { return a + b },
				"year": func(d time.Time) string { return d.Format("2006") },
				"pct":  func(f float64) string { return fmt.Sprintf("%.0f%%", 100*f) },
				"noescape": func(s string) template.HTML {
					return template.HTML(s)
				},
				"dataPNG": func(encoded string) template.URL {
					return template.URL("data:image/png;base64," + encoded)
				},
			}).ParseFS(embeddedTemplates, "templates/_*.html")

			if err != nil {
				h.Global.log.Printf("handler.go:Template: %s\n", err)
				panic(fmt.Errorf(`handler.go:Template: %s`, err))
			}

			h.template[BaseFilename] = tpl
		}()
	}

	// Prevent execution of the BaseFilename template, which would prevent future copies
	templateName := templateFilename
	if templateFilename == BaseFilename {
		templateName = fmt.Sprintf("CLONE%s", BaseFilename)
	}

	// Specific sub-template has already been generated
	if tpl, ok := h.template[templateName]; ok {
		return tpl
	}

	// Generate a clone of the base template so you don't contaminate it with the
	// derivative template's `define` statements.
	h.Global.log.Println("Initializing HTML template for", templateFilename)
	tpl, err := template.Must(h.template[BaseFilename].Clone()).ParseFS(embeddedTemplates, fmt.Sprintf(`templates/%s`, templateFilename))
	if err != nil {
		panic(fmt.Errorf(`handler.go:Template: %s`, err))
	}
	h.mu.RUnlock()
	h.mu.Lock()
	h.template[templateName] = tpl
	h.mu.Unlock()
	h.mu.RLock()

	return tpl
}
