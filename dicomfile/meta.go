package dicomfile

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Meta holds the small subset of the available header fields that the
// explorer displays, groups, and sorts on.
type Meta struct {
	PatientName       string
	PatientID         string
	StudyInstanceUID  string
	SeriesInstanceUID string
	SOPInstanceUID    string
	StudyDate         string
	SeriesDate        string
	AcquisitionDate   string
	StudyDescription  string
	SeriesDescription string
	Modality          string
	InstanceNumber    string
	SeriesNumber      string
	Rows              int
	Cols              int
	BitsStored        int
	BitsAllocated     int
	Photometric       string
}

// ExtractMeta walks the top-level elements once and fills a Meta.
// Absent or malformed fields keep their zero values.
func ExtractMeta(ds dicom.Dataset) Meta {
	var m Meta

	for _, el := range ds.Elements {
		switch el.Tag {
		case tag.PatientName:
			m.PatientName, _ = FirstString(el)
		case tag.PatientID:
			m.PatientID, _ = FirstString(el)
		case tag.StudyInstanceUID:
			m.StudyInstanceUID, _ = FirstString(el)
		case tag.SeriesInstanceUID:
			m.SeriesInstanceUID, _ = FirstString(el)
		case tag.SOPInstanceUID:
			m.SOPInstanceUID, _ = FirstString(el)
		case tag.StudyDate:
			m.StudyDate, _ = FirstString(el)
		case tag.SeriesDate:
			m.SeriesDate, _ = FirstString(el)
		case tag.AcquisitionDate:
			m.AcquisitionDate, _ = FirstString(el)
		case tag.StudyDescription:
			m.StudyDescription, _ = FirstString(el)
		case tag.SeriesDescription:
			m.SeriesDescription, _ = FirstString(el)
		case tag.Modality:
			m.Modality, _ = FirstString(el)
		case tag.InstanceNumber:
			m.InstanceNumber, _ = FirstString(el)
		case tag.SeriesNumber:
			m.SeriesNumber, _ = FirstString(el)
		case tag.Rows:
			m.Rows, _ = FirstInt(el)
		case tag.Columns:
			m.Cols, _ = FirstInt(el)
		case tag.BitsStored:
			m.BitsStored, _ = FirstInt(el)
		case tag.BitsAllocated:
			m.BitsAllocated, _ = FirstInt(el)
		case tag.PhotometricInterpretation:
			m.Photometric, _ = FirstString(el)
		}
	}

	return m
}

// BestDate reports the most specific acquisition-time date present:
// acquisition, then series, then study date.
func (m Meta) BestDate() string {
	for _, candidate := range []string{m.AcquisitionDate, m.SeriesDate, m.StudyDate} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}

	return ""
}

// ParseDicomDate parses a DICOM DA value (YYYYMMDD). Real-world files
// carry enough malformed dates that anything noncompliant is retried
// with a lenient parser before giving up.
func ParseDicomDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse("20060102", s); err == nil {
		return t, nil
	}

	return dateparse.ParseAny(s)
}

// FormatStudyDate renders a DA value the way the thumbnail strip labels
// studies (DD.MM.YYYY), or "" when the value does not parse.
func FormatStudyDate(raw string) string {
	t, err := ParseDicomDate(raw)
	if err != nil {
		return ""
	}

	return t.Format("02.01.2006")
}
