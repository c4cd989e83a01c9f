package anonymize

import (
	"strings"

	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

var studyDateTimeTags = []tag.Tag{
	tag.StudyDate,
	tag.StudyTime,
	tag.SeriesDate,
	tag.SeriesTime,
	tag.AcquisitionDate,
	tag.AcquisitionTime,
	tag.ContentDate,
	tag.ContentTime,
}

var institutionTags = []tag.Tag{
	{Group: 0x0008, Element: 0x0080}, // InstitutionName
	{Group: 0x0008, Element: 0x0081}, // InstitutionAddress
	{Group: 0x0008, Element: 0x0082}, // InstitutionCodeSequence
	{Group: 0x0008, Element: 0x1040}, // InstitutionalDepartmentName
}

var deviceTags = []tag.Tag{
	{Group: 0x0008, Element: 0x0070}, // Manufacturer
	{Group: 0x0008, Element: 0x1010}, // StationName
	{Group: 0x0008, Element: 0x1090}, // ManufacturerModelName
	{Group: 0x0018, Element: 0x1000}, // DeviceSerialNumber
	{Group: 0x0018, Element: 0x1002}, // DeviceUID
	{Group: 0x0018, Element: 0x1020}, // SoftwareVersions
}

// RemovePrivateTags deletes every odd-group element from the dataset,
// including those nested inside sequence items, and reports how many
// were removed.
func RemovePrivateTags(ds *dicom.Dataset) (int, error) {
	count := 0

	kept := make([]*dicom.Element, 0, len(ds.Elements))
	for _, el := range ds.Elements {
		if el.Tag.Group%2 == 1 {
			count++
			continue
		}
		kept = append(kept, el)
	}
	ds.Elements = kept

	for _, el := range ds.Elements {
		n, err := removePrivateFromSequence(el)
		count += n
		if err != nil {
			return count, err
		}
	}

	return count, nil
}

func removePrivateFromSequence(el *dicom.Element) (int, error) {
	if el.Value.ValueType() != dicom.Sequences {
		return 0, nil
	}

	items, ok := el.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return 0, nil
	}

	count := 0
	changed := false
	rebuilt := make([][]*dicom.Element, 0, len(items))
	for _, item := range items {
		elements, ok := item.GetValue().([]*dicom.Element)
		if !ok {
			continue
		}

		keep := make([]*dicom.Element, 0, len(elements))
		for _, child := range elements {
			if child.Tag.Group%2 == 1 {
				count++
				changed = true
				continue
			}

			n, err := removePrivateFromSequence(child)
			count += n
			if err != nil {
				return count, err
			}
			keep = append(keep, child)
		}
		rebuilt = append(rebuilt, keep)
	}

	if changed {
		v, err := dicom.NewValue(rebuilt)
		if err != nil {
			return count, pfx.Err(err)
		}
		el.Value = v
	}

	return count, nil
}

// RemoveUIDs blanks every element whose dictionary name contains "UID",
// leaving the file meta group alone so the file remains readable.
func RemoveUIDs(ds *dicom.Dataset) (int, error) {
	count := 0

	for _, el := range ds.Elements {
		if el.Tag.Group == 0x0002 {
			continue
		}

		info, err := tag.Find(el.Tag)
		if err != nil {
			continue
		}
		if !strings.Contains(info.Name, "UID") {
			continue
		}

		if err := scrub(el); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

// ResetStudyDateTime blanks the study, series, acquisition, and content
// date/time tags when present.
func ResetStudyDateTime(ds *dicom.Dataset) (int, error) {
	return scrubTags(ds, studyDateTimeTags)
}

// RemoveInstitutionInfo blanks the institution tags when present.
func RemoveInstitutionInfo(ds *dicom.Dataset) (int, error) {
	return scrubTags(ds, institutionTags)
}

// RemoveDeviceInfo blanks the device and manufacturer tags when present.
func RemoveDeviceInfo(ds *dicom.Dataset) (int, error) {
	return scrubTags(ds, deviceTags)
}

// RemoveDates blanks every date- or time-valued element outside the
// file meta group, whatever its tag.
func RemoveDates(ds *dicom.Dataset) (int, error) {
	count := 0

	for _, el := range ds.Elements {
		if el.Tag.Group == 0x0002 {
			continue
		}

		switch el.RawValueRepresentation {
		case "DA", "TM", "DT":
		default:
			continue
		}

		if err := setString(el, ""); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func scrubTags(ds *dicom.Dataset, tags []tag.Tag) (int, error) {
	count := 0

	for _, t := range tags {
		el, err := ds.FindElementByTag(t)
		if err != nil {
			continue
		}

		if err := scrub(el); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}
