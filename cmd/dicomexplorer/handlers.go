package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/suyashkumar/dicom"

	"github.com/carbocation/dicomexplorer/anonymize"
	"github.com/carbocation/dicomexplorer/dicomfile"
	"github.com/carbocation/dicomexplorer/explorer"
	"github.com/carbocation/dicomexplorer/render"
	"github.com/carbocation/dicomexplorer/tagtree"
	"github.com/carbocation/dicomexplorer/viewport"
)

// The image pane has a fixed size; each entry's view state computes its
// fit-to-viewport scale against it.
const (
	paneWidth  = 512
	paneHeight = 512
)

func (h *handler) TemplateOnly(w http.ResponseWriter, r *http.Request) {
	tpl := mux.Vars(r)["template"]
	if tpl == "" {
		tpl = "index"
	}

	Render(h, w, r, strings.Title(tpl), fmt.Sprintf("%s.html", tpl), nil, nil)
}

func (h *handler) Goroutines(w http.ResponseWriter, r *http.Request) {
	goroutines := fmt.Sprintf("%d goroutines are currently active\n", runtime.NumGoroutine())

	w.Write([]byte(goroutines))
}

type thumbnailTile struct {
	Index   int
	Name    string
	Path    string
	Encoded string
	Current bool
}

type studyRow struct {
	Label string
	Tiles []thumbnailTile
}

func (h *handler) Index(w http.ResponseWriter, r *http.Request) {
	indexOf := make(map[string]int)
	for i, path := range h.Explorer().Paths() {
		indexOf[path] = i
	}

	currentPath := ""
	if current := h.Explorer().Current(); current != nil {
		currentPath = current.Path
	}

	h.Global.mu.Lock()
	groups := make([]studyRow, 0)
	for _, studyGroup := range h.Explorer().StudyGroups() {
		row := studyRow{Label: studyGroup.Label}
		for _, entry := range studyGroup.Entries {
			row.Tiles = append(row.Tiles, thumbnailTile{
				Index:   indexOf[entry.Path],
				Name:    filepath.Base(entry.Path),
				Path:    entry.Path,
				Encoded: h.entryThumbnail(entry),
				Current: entry.Path == currentPath,
			})
		}
		groups = append(groups, row)
	}
	h.Global.mu.Unlock()

	output := struct {
		Folder string
		Count  int
		Status string
		Groups []studyRow
	}{
		h.Global.Folder,
		h.Explorer().Len(),
		r.FormValue("status"),
		groups,
	}

	Render(h, w, r, h.Global.Site, "index.html", output, nil)
}

// entryThumbnail renders the first frame shrunk to the configured tile
// size. Files without displayable pixel data get a placeholder tile so
// the strip stays navigable.
func (h *handler) entryThumbnail(entry *explorer.Entry) string {
	size := h.Config.ThumbnailSize

	var img image.Image
	props, err := render.PropertiesForFrame(entry.Dataset, 0)
	if err == nil {
		img, err = render.Thumbnail(props, size, size)
	}
	if err != nil {
		img = render.Placeholder("no image", size, size)
	}

	encoded, err := encodePNG(img)
	if err != nil {
		h.log.Println(entry.Path, ":", err)
		return ""
	}

	return encoded
}

// encodePNG converts an image to a PNG and base64 encodes it so we can
// show it raw inside a data: URI.
func encodePNG(img image.Image) (string, error) {
	var imBuff bytes.Buffer
	if err := png.Encode(&imBuff, img); err != nil {
		return "", err
	}
	encodedString := base64.StdEncoding.EncodeToString(imBuff.Bytes())

	return strings.NewReplacer("\n", "", "\r", "").Replace(encodedString), nil
}

// entryByRequest resolves the {entry_index} route variable against the
// load-ordered path list.
func (h *handler) entryByRequest(r *http.Request) (*explorer.Entry, int, error) {
	entryIdx := mux.Vars(r)["entry_index"]
	entryIndex, err := strconv.Atoi(entryIdx)
	if err != nil {
		return nil, 0, fmt.Errorf("No entry_index passed")
	}

	paths := h.Explorer().Paths()
	if entryIndex < 0 || entryIndex >= len(paths) {
		return nil, 0, fmt.Errorf("Entry_index was %d, out of range of the %d loaded files", entryIndex, len(paths))
	}

	entry := h.Explorer().Get(paths[entryIndex])
	if entry == nil {
		return nil, 0, fmt.Errorf("No loaded file at %s", paths[entryIndex])
	}

	return entry, entryIndex, nil
}

// redirectStatus sends the browser back to the viewer page with a
// user-visible status line.
func (h *handler) redirectStatus(w http.ResponseWriter, r *http.Request, entryIndex int, status string) {
	http.Redirect(w, r, fmt.Sprintf("/view/%d?status=%s", entryIndex, url.QueryEscape(status)), http.StatusSeeOther)
}

func (h *handler) Viewer(w http.ResponseWriter, r *http.Request) {
	entry, entryIndex, err := h.entryByRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, http.StatusNotFound)
		return
	}

	if err := h.Explorer().SetCurrent(entry.Path); err != nil {
		HTTPError(h, w, r, err)
		return
	}

	frame := 0
	if f := r.FormValue("frame"); f != "" {
		if frame, err = strconv.Atoi(f); err != nil {
			HTTPError(h, w, r, fmt.Errorf("Frame %q is not a number", f), http.StatusBadRequest)
			return
		}
	}

	h.Global.mu.Lock()

	frameCount := render.FrameCount(entry.Dataset)
	if frame < 0 || frame >= frameCount {
		frame = 0
	}

	var encodedImage, encodedHistogram, displayError string
	var width, height int
	relativeZoom := 1.0

	props, err := render.PropertiesForFrame(entry.Dataset, frame)
	var img image.Image
	if err == nil {
		img, err = render.NormalizeForDisplay(props)
	}
	if err != nil {
		// Pipeline failures clear the display and surface as a status
		// line; the rest of the page still renders.
		entry.View.Clear()
		displayError = err.Error()
	} else {
		view := entry.View
		if view.Image() == nil {
			view.ZoomStepFactor = h.Config.ZoomFactor
			view.ZoomMin = h.Config.ZoomMin
			view.ZoomMax = h.Config.ZoomMax
			view.Resize(paneWidth, paneHeight)
			view.LoadImage(img)
		}
		width, height = view.ScaledSize()
		relativeZoom = view.RelativeZoom()

		if encodedImage, err = encodePNG(img); err != nil {
			displayError = err.Error()
		}

		if hist, histErr := render.ComputeHistogram(props.Grid, h.Config.HistogramBuckets); histErr == nil {
			if plot, plotErr := render.PlotHistogram(hist, 420, 180); plotErr == nil {
				encodedHistogram = strings.NewReplacer("\n", "", "\r", "").Replace(base64.StdEncoding.EncodeToString(plot))
			}
		}
	}

	query := r.FormValue("q")
	nodes := tagtree.Filter(tagtree.Build(entry.Dataset), query)
	meta := entry.Meta

	h.Global.mu.Unlock()

	output := struct {
		EntryIndex   int
		Path         string
		Name         string
		Meta         dicomfile.Meta
		EncodedImage string
		Width        int
		Height       int
		RelativeZoom float64
		Frame        int
		FrameCount   int
		Histogram    string
		Nodes        []*tagtree.Node
		Query        string
		Status       string
		DisplayError string
	}{
		EntryIndex:   entryIndex,
		Path:         entry.Path,
		Name:         filepath.Base(entry.Path),
		Meta:         meta,
		EncodedImage: encodedImage,
		Width:        width,
		Height:       height,
		RelativeZoom: relativeZoom,
		Frame:        frame,
		FrameCount:   frameCount,
		Histogram:    encodedHistogram,
		Nodes:        nodes,
		Query:        query,
		Status:       r.FormValue("status"),
		DisplayError: displayError,
	}

	Render(h, w, r, filepath.Base(entry.Path), "viewer.html", output, nil)
}

func (h *handler) ZoomPost(w http.ResponseWriter, r *http.Request) {
	entry, entryIndex, err := h.entryByRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, http.StatusNotFound)
		return
	}

	direction := r.PostFormValue("direction")

	h.Global.mu.Lock()
	view := entry.View
	switch direction {
	case "in":
		view.Zoom(viewport.ZoomIn)
	case "out":
		view.Zoom(viewport.ZoomOut)
	case "fit":
		// Re-fitting discards the zoom and reports 1.0 again.
		view.Resize(paneWidth, paneHeight)
	default:
		h.Global.mu.Unlock()
		HTTPError(h, w, r, fmt.Errorf("Zoom direction %q not recognized (want in, out, or fit)", direction), http.StatusBadRequest)
		return
	}
	relativeZoom := view.RelativeZoom()
	width, height := view.ScaledSize()
	h.Global.mu.Unlock()

	if r.FormValue("format") == JSON {
		Render(h, w, r, "", "", struct {
			RelativeZoom float64
			Width        int
			Height       int
		}{relativeZoom, width, height}, &renderOpts{OutputFormat: JSON})
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/view/%d", entryIndex), http.StatusSeeOther)
}

func (h *handler) EditPost(w http.ResponseWriter, r *http.Request) {
	entry, entryIndex, err := h.entryByRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, http.StatusNotFound)
		return
	}

	t, err := dicomfile.ParseTag(r.PostFormValue("tag"))
	if err != nil {
		h.redirectStatus(w, r, entryIndex, err.Error())
		return
	}
	value := r.PostFormValue("value")

	h.Global.mu.Lock()
	err = tagtree.SetValue(&entry.Dataset, t, value)
	if err == nil {
		entry.RefreshMeta()
	}
	h.Global.mu.Unlock()

	if err != nil {
		// The prior value is kept.
		h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Set %s failed: %v", dicomfile.TagString(t), err))
		return
	}

	h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Set %s to %q", dicomfile.TagString(t), value))
}

func (h *handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	entry, entryIndex, err := h.entryByRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, http.StatusNotFound)
		return
	}

	t, err := dicomfile.ParseTag(r.PostFormValue("tag"))
	if err != nil {
		h.redirectStatus(w, r, entryIndex, err.Error())
		return
	}

	h.Global.mu.Lock()
	removed, err := tagtree.Delete(&entry.Dataset, t)
	if err == nil && removed {
		entry.RefreshMeta()
	}
	h.Global.mu.Unlock()

	switch {
	case err != nil:
		h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Delete %s failed: %v", dicomfile.TagString(t), err))
	case !removed:
		h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Tag %s is not present", dicomfile.TagString(t)))
	default:
		h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Removed %s", dicomfile.TagString(t)))
	}
}

func (h *handler) AnonymizePost(w http.ResponseWriter, r *http.Request) {
	entry, entryIndex, err := h.entryByRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, http.StatusNotFound)
		return
	}

	mode, err := anonymize.ParseMode(r.PostFormValue("mode"))
	if err != nil {
		h.redirectStatus(w, r, entryIndex, err.Error())
		return
	}

	scrubs := []struct {
		field string
		fn    func(*dicom.Dataset) (int, error)
	}{
		{"remove_private", anonymize.RemovePrivateTags},
		{"remove_uids", anonymize.RemoveUIDs},
		{"reset_dates", anonymize.ResetStudyDateTime},
		{"remove_dates", anonymize.RemoveDates},
		{"remove_institution", anonymize.RemoveInstitutionInfo},
		{"remove_device", anonymize.RemoveDeviceInfo},
	}

	h.Global.mu.Lock()
	scrubbed, err := anonymize.New(nil).Anonymize(&entry.Dataset, mode)
	for _, scrub := range scrubs {
		if err != nil || r.PostFormValue(scrub.field) == "" {
			continue
		}
		var n int
		n, err = scrub.fn(&entry.Dataset)
		scrubbed += n
	}
	if err == nil {
		entry.RefreshMeta()
	}
	h.Global.mu.Unlock()

	if err != nil {
		h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Anonymize failed: %v", err))
		return
	}

	h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Scrubbed %d tags", scrubbed))
}

func (h *handler) SavePost(w http.ResponseWriter, r *http.Request) {
	entry, entryIndex, err := h.entryByRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, http.StatusNotFound)
		return
	}

	outPath := strings.TrimSpace(r.PostFormValue("out"))
	if outPath == "" {
		outPath = entry.Path
	}
	if strings.HasPrefix(outPath, "gs://") {
		h.redirectStatus(w, r, entryIndex, "Saving to gs:// is not supported; provide a local path")
		return
	}

	h.Global.mu.Lock()
	written, err := h.Explorer().Save(entry.Path, outPath)
	h.Global.mu.Unlock()

	if err != nil {
		// The in-memory dataset is untouched.
		h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Save failed: %v", err))
		return
	}

	h.redirectStatus(w, r, entryIndex, fmt.Sprintf("Wrote %s", written))
}

func (h *handler) LoadPost(w http.ResponseWriter, r *http.Request) {
	folder := strings.TrimSpace(r.PostFormValue("folder"))
	path := strings.TrimSpace(r.PostFormValue("path"))

	var status string
	switch {
	case folder != "":
		loaded, failures, err := h.Explorer().LoadDir(folder)
		if err != nil {
			status = err.Error()
			break
		}
		for p, loadErr := range failures {
			h.log.Println(p, ":", loadErr)
		}
		status = fmt.Sprintf("Loaded %d files from %s (%d skipped)", loaded, folder, len(failures))
	case path != "":
		if err := h.Explorer().Load(path); err != nil {
			status = err.Error()
			break
		}
		status = fmt.Sprintf("Loaded %s", path)
	default:
		status = "Provide a file or folder to load"
	}

	http.Redirect(w, r, "/?status="+url.QueryEscape(status), http.StatusSeeOther)
}

func (h *handler) ClosePost(w http.ResponseWriter, r *http.Request) {
	entry, _, err := h.entryByRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, http.StatusNotFound)
		return
	}

	h.Explorer().Remove(entry.Path)

	http.Redirect(w, r, "/?status="+url.QueryEscape(fmt.Sprintf("Closed %s", entry.Path)), http.StatusSeeOther)
}

func (h *handler) ClearPost(w http.ResponseWriter, r *http.Request) {
	h.Explorer().Clear()

	http.Redirect(w, r, "/?status="+url.QueryEscape("Closed all files"), http.StatusSeeOther)
}

func (h *handler) ManifestTSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/tab-separated-values")

	if err := h.Explorer().ExportManifest(w); err != nil {
		// Headers are already out, so just log.
		h.log.Println(r.Host, r.URL.Path, ":", err)
	}
}
