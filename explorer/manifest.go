package explorer

import (
	"encoding/csv"
	"io"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// ManifestRow is one line of the collection manifest.
type ManifestRow struct {
	Path              string `csv:"path"`
	PatientID         string `csv:"patient_id"`
	StudyUID          string `csv:"study_uid"`
	SeriesUID         string `csv:"series_uid"`
	StudyDate         string `csv:"study_date"`
	Modality          string `csv:"modality"`
	SeriesDescription string `csv:"series_description"`
	InstanceNumber    string `csv:"instance_number"`
	Rows              int    `csv:"rows"`
	Cols              int    `csv:"cols"`
}

// ExportManifest writes a tab-separated manifest of the collection, one
// row per loaded file in load order.
func (e *Explorer) ExportManifest(w io.Writer) error {
	e.mu.RLock()
	rows := make([]*ManifestRow, 0, len(e.order))
	for _, path := range e.order {
		m := e.entries[path].Meta
		rows = append(rows, &ManifestRow{
			Path:              path,
			PatientID:         m.PatientID,
			StudyUID:          m.StudyInstanceUID,
			SeriesUID:         m.SeriesInstanceUID,
			StudyDate:         m.StudyDate,
			Modality:          m.Modality,
			SeriesDescription: m.SeriesDescription,
			InstanceNumber:    m.InstanceNumber,
			Rows:              m.Rows,
			Cols:              m.Cols,
		})
	}
	e.mu.RUnlock()

	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		writer := csv.NewWriter(out)
		writer.Comma = '\t'
		return gocsv.NewSafeCSVWriter(writer)
	})

	return pfx.Err(gocsv.Marshal(&rows, w))
}
