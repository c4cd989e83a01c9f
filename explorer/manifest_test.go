package explorer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/carbocation/dicomexplorer/dicomfile"
)

func TestExportManifest(t *testing.T) {
	e := seed(
		&Entry{Path: "one.dcm", Meta: dicomfile.Meta{
			PatientID:         "P1",
			StudyInstanceUID:  "1.0",
			SeriesInstanceUID: "1.0.1",
			StudyDate:         "20200102",
			Modality:          "MR",
			SeriesDescription: "Localizer",
			InstanceNumber:    "1",
			Rows:              128,
			Cols:              256,
		}},
		&Entry{Path: "two.dcm", Meta: dicomfile.Meta{PatientID: "P2"}},
	)

	var buf bytes.Buffer
	if err := e.ExportManifest(&buf); err != nil {
		t.Fatalf("ExportManifest: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected a header plus 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}

	header := strings.Split(lines[0], "\t")
	wantHeader := []string{"path", "patient_id", "study_uid", "series_uid", "study_date", "modality", "series_description", "instance_number", "rows", "cols"}
	if len(header) != len(wantHeader) {
		t.Fatalf("Header = %+v, want %+v", header, wantHeader)
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], wantHeader[i])
		}
	}

	row := strings.Split(lines[1], "\t")
	want := []string{"one.dcm", "P1", "1.0", "1.0.1", "20200102", "MR", "Localizer", "1", "128", "256"}
	if len(row) != len(want) {
		t.Fatalf("Row = %+v, want %+v", row, want)
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, row[i], want[i])
		}
	}

	if !strings.HasPrefix(lines[2], "two.dcm\tP2\t") {
		t.Errorf("Second row = %q", lines[2])
	}
}

func TestExportManifestEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := New(nil).ExportManifest(&buf); err != nil {
		t.Fatalf("ExportManifest: %v", err)
	}

	// Only the header line.
	got := strings.TrimRight(buf.String(), "\n")
	if strings.Count(got, "\n") != 0 || !strings.HasPrefix(got, "path\t") {
		t.Errorf("Empty manifest = %q", buf.String())
	}
}
