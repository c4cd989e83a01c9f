package dicomfile

import (
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func mustNewElement(t *testing.T, tg tag.Tag, data interface{}) *dicom.Element {
	t.Helper()

	el, err := dicom.NewElement(tg, data)
	if err != nil {
		t.Fatalf("Constructing element %v: %v", tg, err)
	}

	return el
}

func TestFirstString(t *testing.T) {
	el := mustNewElement(t, tag.PatientName, []string{" Doe^Jane ", "Other"})

	got, err := FirstString(el)
	if err != nil {
		t.Fatalf("FirstString: %v", err)
	}
	if got != "Doe^Jane" {
		t.Errorf("FirstString = %q, want trimmed first value", got)
	}
}

func TestFirstStringFormatsNumbers(t *testing.T) {
	el := mustNewElement(t, tag.Rows, []int{128})

	got, err := FirstString(el)
	if err != nil {
		t.Fatalf("FirstString: %v", err)
	}
	if got != "128" {
		t.Errorf("FirstString = %q, want 128", got)
	}
}

func floatsElement(t *testing.T, vals []float64) *dicom.Element {
	t.Helper()

	v, err := dicom.NewValue(vals)
	if err != nil {
		t.Fatalf("Constructing floats value: %v", err)
	}

	return &dicom.Element{
		Tag:                    tag.Tag{Group: 0x0040, Element: 0xA161},
		RawValueRepresentation: "FD",
		Value:                  v,
	}
}

func TestFirstFloat(t *testing.T) {
	tests := []struct {
		name string
		el   *dicom.Element
		want float64
	}{
		{"decimal string", mustNewElement(t, tag.RescaleSlope, []string{"2.5", "1.0"}), 2.5},
		{"padded string", mustNewElement(t, tag.RescaleIntercept, []string{" -1024 "}), -1024},
		{"ints", mustNewElement(t, tag.Rows, []int{64}), 64},
		{"floats", floatsElement(t, []float64{0.25}), 0.25},
	}

	for _, test := range tests {
		got, err := FirstFloat(test.el)
		if err != nil {
			t.Fatalf("FirstFloat(%s): %v", test.name, err)
		}
		if got != test.want {
			t.Errorf("FirstFloat(%s) = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestFirstFloatRejectsNonNumericStrings(t *testing.T) {
	el := mustNewElement(t, tag.PatientName, []string{"Doe^Jane"})

	if _, err := FirstFloat(el); err == nil {
		t.Error("Expected an error for a non-numeric string value")
	}
}

func TestFirstInt(t *testing.T) {
	el := mustNewElement(t, tag.InstanceNumber, []string{" 12 "})

	got, err := FirstInt(el)
	if err != nil {
		t.Fatalf("FirstInt: %v", err)
	}
	if got != 12 {
		t.Errorf("FirstInt = %d, want 12", got)
	}

	el = mustNewElement(t, tag.Columns, []int{256})
	got, err = FirstInt(el)
	if err != nil {
		t.Fatalf("FirstInt: %v", err)
	}
	if got != 256 {
		t.Errorf("FirstInt = %d, want 256", got)
	}
}

func TestStringValues(t *testing.T) {
	el := mustNewElement(t, tag.WindowCenter, []string{"40", "400"})
	got, err := StringValues(el)
	if err != nil {
		t.Fatalf("StringValues: %v", err)
	}
	if len(got) != 2 || got[0] != "40" || got[1] != "400" {
		t.Errorf("StringValues = %+v, want [40 400]", got)
	}

	el = mustNewElement(t, tag.Rows, []int{1, 2})
	got, err = StringValues(el)
	if err != nil {
		t.Fatalf("StringValues: %v", err)
	}
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("StringValues = %+v, want [1 2]", got)
	}
}

func TestStringValuesRejectsSequences(t *testing.T) {
	item := []*dicom.Element{
		mustNewElement(t, tag.Tag{Group: 0x0008, Element: 0x0100}, []string{"CODE"}),
	}
	el := mustNewElement(t, tag.Tag{Group: 0x0008, Element: 0x0082}, [][]*dicom.Element{item})

	if _, err := StringValues(el); err == nil {
		t.Error("Expected an error for a sequence element")
	}
}
