package anonymize

import (
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func privateElement(t *testing.T, tg tag.Tag, value string) *dicom.Element {
	t.Helper()

	v, err := dicom.NewValue([]string{value})
	if err != nil {
		t.Fatalf("Constructing private value: %v", err)
	}

	return &dicom.Element{
		Tag:                    tg,
		RawValueRepresentation: "LO",
		Value:                  v,
	}
}

func TestRemovePrivateTags(t *testing.T) {
	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientName, []string{"Doe^Jane"}),
		privateElement(t, tag.Tag{Group: 0x0009, Element: 0x0001}, "vendor"),
		privateElement(t, tag.Tag{Group: 0x0029, Element: 0x1010}, "csa"),
	}}

	count, err := RemovePrivateTags(ds)
	if err != nil {
		t.Fatalf("RemovePrivateTags: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 removed tags, got %d", count)
	}
	if len(ds.Elements) != 1 {
		t.Fatalf("Expected 1 surviving element, got %d", len(ds.Elements))
	}
	if ds.Elements[0].Tag != tag.PatientName {
		t.Errorf("Survivor is %v, want PatientName", ds.Elements[0].Tag)
	}
}

func TestRemovePrivateTagsInsideSequences(t *testing.T) {
	item := []*dicom.Element{
		mustNewElement(t, tag.Tag{Group: 0x0008, Element: 0x0100}, []string{"CODE"}),
		privateElement(t, tag.Tag{Group: 0x0009, Element: 0x0010}, "vendor"),
	}
	seq := mustNewElement(t, tag.Tag{Group: 0x0008, Element: 0x0082}, [][]*dicom.Element{item})

	ds := &dicom.Dataset{Elements: []*dicom.Element{seq}}

	count, err := RemovePrivateTags(ds)
	if err != nil {
		t.Fatalf("RemovePrivateTags: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 removed tag, got %d", count)
	}

	items, ok := seq.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		t.Fatalf("Unexpected sequence payload: %+v", seq.Value)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	elements, ok := items[0].GetValue().([]*dicom.Element)
	if !ok {
		t.Fatalf("Unexpected item payload: %+v", items[0])
	}
	if len(elements) != 1 {
		t.Fatalf("Expected 1 surviving child, got %d", len(elements))
	}
	if elements[0].Tag.Group%2 == 1 {
		t.Errorf("Private child survived: %v", elements[0].Tag)
	}
}

func TestRemoveUIDs(t *testing.T) {
	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.SOPInstanceUID, []string{"1.2.3.4"}),
		mustNewElement(t, tag.MediaStorageSOPInstanceUID, []string{"1.2.3.4"}),
		mustNewElement(t, tag.PatientName, []string{"Doe^Jane"}),
	}}

	count, err := RemoveUIDs(ds)
	if err != nil {
		t.Fatalf("RemoveUIDs: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 scrubbed tag, got %d", count)
	}

	if got := firstString(t, ds, tag.SOPInstanceUID); got != "" {
		t.Errorf("SOPInstanceUID = %q, want blank", got)
	}
	if got := firstString(t, ds, tag.MediaStorageSOPInstanceUID); got != "1.2.3.4" {
		t.Errorf("File meta UID = %q, want untouched", got)
	}
	if got := firstString(t, ds, tag.PatientName); got != "Doe^Jane" {
		t.Errorf("PatientName = %q, want untouched", got)
	}
}

func TestResetStudyDateTime(t *testing.T) {
	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.StudyDate, []string{"20200102"}),
		mustNewElement(t, tag.SeriesTime, []string{"120000"}),
		mustNewElement(t, tag.PatientName, []string{"Doe^Jane"}),
	}}

	count, err := ResetStudyDateTime(ds)
	if err != nil {
		t.Fatalf("ResetStudyDateTime: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 scrubbed tags, got %d", count)
	}

	if got := firstString(t, ds, tag.StudyDate); got != "" {
		t.Errorf("StudyDate = %q, want blank", got)
	}
	if got := firstString(t, ds, tag.SeriesTime); got != "" {
		t.Errorf("SeriesTime = %q, want blank", got)
	}
}

func TestRemoveInstitutionInfo(t *testing.T) {
	item := []*dicom.Element{
		mustNewElement(t, tag.Tag{Group: 0x0008, Element: 0x0100}, []string{"CODE"}),
	}
	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.Tag{Group: 0x0008, Element: 0x0080}, []string{"General Hospital"}),
		mustNewElement(t, tag.Tag{Group: 0x0008, Element: 0x0082}, [][]*dicom.Element{item}),
		mustNewElement(t, tag.PatientName, []string{"Doe^Jane"}),
	}}

	count, err := RemoveInstitutionInfo(ds)
	if err != nil {
		t.Fatalf("RemoveInstitutionInfo: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 scrubbed tags, got %d", count)
	}

	if got := firstString(t, ds, tag.Tag{Group: 0x0008, Element: 0x0080}); got != "" {
		t.Errorf("InstitutionName = %q, want blank", got)
	}

	seq, err := ds.FindElementByTag(tag.Tag{Group: 0x0008, Element: 0x0082})
	if err != nil {
		t.Fatalf("Looking up InstitutionCodeSequence: %v", err)
	}
	items, ok := seq.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		t.Fatalf("Unexpected sequence payload: %+v", seq.Value)
	}
	if len(items) != 0 {
		t.Errorf("InstitutionCodeSequence still holds %d items", len(items))
	}
}

func TestRemoveDeviceInfo(t *testing.T) {
	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.Tag{Group: 0x0008, Element: 0x0070}, []string{"Acme"}),
		mustNewElement(t, tag.Tag{Group: 0x0018, Element: 0x1020}, []string{"syngo MR"}),
		mustNewElement(t, tag.PatientName, []string{"Doe^Jane"}),
	}}

	count, err := RemoveDeviceInfo(ds)
	if err != nil {
		t.Fatalf("RemoveDeviceInfo: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 scrubbed tags, got %d", count)
	}

	if got := firstString(t, ds, tag.Tag{Group: 0x0008, Element: 0x0070}); got != "" {
		t.Errorf("Manufacturer = %q, want blank", got)
	}
	if got := firstString(t, ds, tag.PatientName); got != "Doe^Jane" {
		t.Errorf("PatientName = %q, want untouched", got)
	}
}

func TestRemoveDates(t *testing.T) {
	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.StudyDate, []string{"20200102"}),
		mustNewElement(t, tag.StudyTime, []string{"120000"}),
		mustNewElement(t, tag.PatientName, []string{"Doe^Jane"}),
		mustNewElement(t, tag.PatientBirthDate, []string{"19700101"}),
	}}

	count, err := RemoveDates(ds)
	if err != nil {
		t.Fatalf("RemoveDates: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 scrubbed tags, got %d", count)
	}

	if got := firstString(t, ds, tag.StudyDate); got != "" {
		t.Errorf("StudyDate = %q, want blank", got)
	}
	if got := firstString(t, ds, tag.StudyTime); got != "" {
		t.Errorf("StudyTime = %q, want blank", got)
	}
	if got := firstString(t, ds, tag.PatientBirthDate); got != "" {
		t.Errorf("PatientBirthDate = %q, want blank", got)
	}
	if got := firstString(t, ds, tag.PatientName); got != "Doe^Jane" {
		t.Errorf("PatientName = %q, want untouched", got)
	}
}
