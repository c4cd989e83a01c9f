// Package explorer owns the collection of loaded datasets and the
// notion of which one is currently displayed. It is the controller
// behind the interactive viewer and the batch manifest tool.
package explorer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom"

	"github.com/carbocation/dicomexplorer/dicomfile"
	"github.com/carbocation/dicomexplorer/viewport"
)

// Entry is one loaded file: its source path, the parsed dataset, the
// header fields the explorer displays, and the zoom state of its image
// pane.
type Entry struct {
	Path    string
	Dataset dicom.Dataset
	Meta    dicomfile.Meta
	View    *viewport.View
}

// RefreshMeta re-extracts the displayed header fields after the dataset
// has been edited.
func (en *Entry) RefreshMeta() {
	en.Meta = dicomfile.ExtractMeta(en.Dataset)
}

// Explorer holds loaded entries keyed by path, preserving load order.
// Methods are safe for concurrent use; the web surface serves reads
// from many goroutines. Mutating a returned Entry's dataset is the
// caller's business and needs the caller's own serialization.
type Explorer struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
	current string

	client *storage.Client
	opts   []dicom.ParseOpt
}

// New creates an empty Explorer. The storage client may be nil when no
// gs:// paths will be loaded. Any parse options are applied to every
// subsequent load.
func New(client *storage.Client, opts ...dicom.ParseOpt) *Explorer {
	return &Explorer{
		entries: make(map[string]*Entry),
		client:  client,
		opts:    opts,
	}
}

// Load parses one file and adds it to the collection, replacing any
// prior entry for the same path. The loaded file becomes current.
func (e *Explorer) Load(path string) error {
	ds, err := dicomfile.Open(path, e.client, e.opts...)
	if err != nil {
		return pfx.Err(err)
	}

	entry := &Entry{
		Path:    path,
		Dataset: ds,
		Meta:    dicomfile.ExtractMeta(ds),
		View:    viewport.NewView(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.entries[path]; !exists {
		e.order = append(e.order, path)
	}
	e.entries[path] = entry
	e.current = path

	return nil
}

// LoadPaths loads each path in order, skipping files that fail to
// parse. It reports the number loaded and the failures keyed by path.
func (e *Explorer) LoadPaths(paths []string) (int, map[string]error) {
	loaded := 0
	failures := make(map[string]error)

	for _, path := range paths {
		if err := e.Load(path); err != nil {
			failures[path] = err
			continue
		}
		loaded++
	}

	return loaded, failures
}

// LoadDir loads every recognized filename under dir, in sorted order.
// dir may be a local directory or a gs:// prefix. Files that fail to
// parse are skipped and reported in the failure map; the error return
// covers listing the directory itself.
func (e *Explorer) LoadDir(dir string) (int, map[string]error, error) {
	paths, err := listDicomPaths(dir, e.client)
	if err != nil {
		return 0, nil, pfx.Err(err)
	}

	loaded, failures := e.LoadPaths(paths)

	return loaded, failures, nil
}

func listDicomPaths(dir string, client *storage.Client) ([]string, error) {
	if strings.HasPrefix(dir, "gs://") {
		objects, err := dicomfile.ListFromGoogleStorage(dir, client)
		if err != nil {
			return nil, pfx.Err(err)
		}

		paths := make([]string, 0, len(objects))
		for _, object := range objects {
			if dicomfile.IsDicomFilename(object) {
				paths = append(paths, object)
			}
		}
		sort.Strings(paths)

		return paths, nil
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pfx.Err(err)
	}

	paths := make([]string, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		if !dicomfile.IsDicomFilename(dirEntry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, dirEntry.Name()))
	}

	return paths, nil
}

// Save writes the in-memory dataset for path to outPath (default
// extension applied when missing) and reports the path written. The
// in-memory entry is unaffected, success or failure.
func (e *Explorer) Save(path, outPath string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, exists := e.entries[path]
	if !exists {
		return "", fmt.Errorf("No loaded file at %s", path)
	}

	return dicomfile.Save(entry.Dataset, outPath)
}

// Current reports the entry being displayed, or nil when the collection
// is empty.
func (e *Explorer) Current() *Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.entries[e.current]
}

// SetCurrent switches the displayed entry.
func (e *Explorer) SetCurrent(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.entries[path]; !exists {
		return fmt.Errorf("No loaded file at %s", path)
	}
	e.current = path

	return nil
}

// Get reports the entry for path, or nil when it is not loaded.
func (e *Explorer) Get(path string) *Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.entries[path]
}

// Remove drops one entry. When it was current, the most recently loaded
// survivor becomes current.
func (e *Explorer) Remove(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.entries[path]; !exists {
		return
	}

	delete(e.entries, path)
	for i, p := range e.order {
		if p == path {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}

	if e.current == path {
		e.current = ""
		if len(e.order) > 0 {
			e.current = e.order[len(e.order)-1]
		}
	}
}

// Clear drops every entry.
func (e *Explorer) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.entries = make(map[string]*Entry)
	e.order = nil
	e.current = ""
}

// Paths reports every loaded path in load order.
func (e *Explorer) Paths() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	paths := make([]string, len(e.order))
	copy(paths, e.order)

	return paths
}

// Len reports the number of loaded entries.
func (e *Explorer) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.entries)
}
