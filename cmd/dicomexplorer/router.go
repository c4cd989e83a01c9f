package main

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/interpose/middleware"
	"github.com/justinas/alice"
)

func router(config *Global) (http.Handler, error) {
	router := mux.NewRouter()
	POST := router.Methods("POST").Subrouter()
	GET := router.Methods("GET", "HEAD").Subrouter()

	h := handler{Global: config, router: router}

	GET.HandleFunc("/", h.Index).Name("index")
	GET.HandleFunc("/goroutines", h.Goroutines)
	GET.HandleFunc("/{template:(?:about)}", h.TemplateOnly)
	GET.HandleFunc("/view/{entry_index}", h.Viewer).Name("viewer")
	GET.HandleFunc("/manifest.tsv", h.ManifestTSV).Name("manifest")

	//
	// POST
	//
	POST.Handle("/", http.NotFoundHandler())
	POST.HandleFunc("/load", h.LoadPost)
	POST.HandleFunc("/clear", h.ClearPost)
	POST.HandleFunc("/view/{entry_index}/zoom", h.ZoomPost)
	POST.HandleFunc("/view/{entry_index}/edit", h.EditPost)
	POST.HandleFunc("/view/{entry_index}/delete", h.DeletePost)
	POST.HandleFunc("/view/{entry_index}/anonymize", h.AnonymizePost)
	POST.HandleFunc("/view/{entry_index}/save", h.SavePost)
	POST.HandleFunc("/view/{entry_index}/close", h.ClosePost)

	// Static assets
	assetFilesystem, err := fs.Sub(embeddedTemplates, "templates/static")
	if err != nil {
		return nil, err
	}

	// Static assets
	GET.PathPrefix(h.Assets()).Handler(
		middleware.MaxAgeHandler(60*60*24*364,
			http.StripPrefix(h.Assets(), http.FileServer(http.FS(assetFilesystem)))))

	standard := alice.New(
		// Log all requests to STDOUT
		middleware.GorillaLog(),
	)

	return standard.Then(router), nil
}
