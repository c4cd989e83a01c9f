package dicomfile

import (
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestExtractMeta(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientName, []string{"Doe^Jane"}),
		mustNewElement(t, tag.PatientID, []string{"12345"}),
		mustNewElement(t, tag.StudyInstanceUID, []string{"1.2.3"}),
		mustNewElement(t, tag.SeriesInstanceUID, []string{"1.2.3.4"}),
		mustNewElement(t, tag.StudyDate, []string{"20200102"}),
		mustNewElement(t, tag.Modality, []string{"MR"}),
		mustNewElement(t, tag.SeriesDescription, []string{"Localizer"}),
		mustNewElement(t, tag.InstanceNumber, []string{"7"}),
		mustNewElement(t, tag.Rows, []int{128}),
		mustNewElement(t, tag.Columns, []int{256}),
		mustNewElement(t, tag.BitsAllocated, []int{16}),
		mustNewElement(t, tag.BitsStored, []int{12}),
		mustNewElement(t, tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
	}}

	m := ExtractMeta(ds)

	if m.PatientName != "Doe^Jane" {
		t.Errorf("PatientName = %q", m.PatientName)
	}
	if m.PatientID != "12345" {
		t.Errorf("PatientID = %q", m.PatientID)
	}
	if m.StudyInstanceUID != "1.2.3" {
		t.Errorf("StudyInstanceUID = %q", m.StudyInstanceUID)
	}
	if m.SeriesInstanceUID != "1.2.3.4" {
		t.Errorf("SeriesInstanceUID = %q", m.SeriesInstanceUID)
	}
	if m.StudyDate != "20200102" {
		t.Errorf("StudyDate = %q", m.StudyDate)
	}
	if m.Modality != "MR" {
		t.Errorf("Modality = %q", m.Modality)
	}
	if m.SeriesDescription != "Localizer" {
		t.Errorf("SeriesDescription = %q", m.SeriesDescription)
	}
	if m.InstanceNumber != "7" {
		t.Errorf("InstanceNumber = %q", m.InstanceNumber)
	}
	if m.Rows != 128 || m.Cols != 256 {
		t.Errorf("Rows, Cols = %d, %d, want 128, 256", m.Rows, m.Cols)
	}
	if m.BitsAllocated != 16 || m.BitsStored != 12 {
		t.Errorf("Bits = %d/%d, want 16/12", m.BitsAllocated, m.BitsStored)
	}
	if m.Photometric != "MONOCHROME2" {
		t.Errorf("Photometric = %q", m.Photometric)
	}
}

func TestExtractMetaLeavesAbsentFieldsZero(t *testing.T) {
	m := ExtractMeta(dicom.Dataset{})

	if m != (Meta{}) {
		t.Errorf("Empty dataset produced nonzero meta: %+v", m)
	}
}

func TestBestDate(t *testing.T) {
	tests := []struct {
		m    Meta
		want string
	}{
		{Meta{AcquisitionDate: "20200103", SeriesDate: "20200102", StudyDate: "20200101"}, "20200103"},
		{Meta{SeriesDate: "20200102", StudyDate: "20200101"}, "20200102"},
		{Meta{StudyDate: "20200101"}, "20200101"},
		{Meta{AcquisitionDate: "  "}, ""},
		{Meta{}, ""},
	}

	for _, test := range tests {
		if got := test.m.BestDate(); got != test.want {
			t.Errorf("BestDate(%+v) = %q, want %q", test.m, got, test.want)
		}
	}
}

func TestParseDicomDate(t *testing.T) {
	got, err := ParseDicomDate("20200102")
	if err != nil {
		t.Fatalf("ParseDicomDate: %v", err)
	}
	if got.Year() != 2020 || got.Month() != 1 || got.Day() != 2 {
		t.Errorf("ParseDicomDate = %v", got)
	}

	// Noncompliant but commonly seen date formats still parse.
	got, err = ParseDicomDate("2020-01-02")
	if err != nil {
		t.Fatalf("ParseDicomDate lenient: %v", err)
	}
	if got.Year() != 2020 || got.Month() != 1 || got.Day() != 2 {
		t.Errorf("ParseDicomDate lenient = %v", got)
	}

	if _, err := ParseDicomDate("not a date"); err == nil {
		t.Error("Expected an error for garbage input")
	}
}

func TestFormatStudyDate(t *testing.T) {
	if got := FormatStudyDate("20200102"); got != "02.01.2020" {
		t.Errorf("FormatStudyDate = %q, want 02.01.2020", got)
	}
	if got := FormatStudyDate("garbage"); got != "" {
		t.Errorf("FormatStudyDate(garbage) = %q, want empty", got)
	}
}
