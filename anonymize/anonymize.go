// Package anonymize scrubs identifying information from datasets:
// blanking or pseudonymizing the well-known sensitive tags, stripping
// private tags, and narrower scrubs for UIDs, dates, institution, and
// device fields.
package anonymize

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Mode selects what replaces a sensitive value.
type Mode int

const (
	// Basic blanks each sensitive tag.
	Basic Mode = iota

	// Pseudo writes plausible random replacements so the file still
	// exercises downstream consumers that require non-empty values.
	Pseudo
)

// ParseMode maps a command-line mode name to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "basic":
		return Basic, nil
	case "pseudo":
		return Pseudo, nil
	}

	return Basic, fmt.Errorf("Unknown anonymization mode %q (want basic or pseudo)", raw)
}

// SensitiveTag is one entry of the scrub table.
type SensitiveTag struct {
	Tag     tag.Tag
	Keyword string
}

// SensitiveTags lists the patient-identifying tags that Anonymize
// touches when present.
var SensitiveTags = []SensitiveTag{
	{tag.Tag{Group: 0x0010, Element: 0x0010}, "PatientName"},
	{tag.Tag{Group: 0x0010, Element: 0x0020}, "PatientID"},
	{tag.Tag{Group: 0x0010, Element: 0x0030}, "PatientBirthDate"},
	{tag.Tag{Group: 0x0010, Element: 0x0040}, "PatientSex"},
	{tag.Tag{Group: 0x0010, Element: 0x1010}, "PatientAge"},
	{tag.Tag{Group: 0x0010, Element: 0x1030}, "PatientWeight"},
	{tag.Tag{Group: 0x0010, Element: 0x1040}, "PatientAddress"},
	{tag.Tag{Group: 0x0010, Element: 0x2154}, "PatientTelephoneNumbers"},
	{tag.Tag{Group: 0x0008, Element: 0x0080}, "InstitutionName"},
	{tag.Tag{Group: 0x0008, Element: 0x0081}, "InstitutionAddress"},
	{tag.Tag{Group: 0x0008, Element: 0x0090}, "ReferringPhysicianName"},
	{tag.Tag{Group: 0x0008, Element: 0x1048}, "PhysiciansOfRecord"},
	{tag.Tag{Group: 0x0008, Element: 0x1070}, "OperatorsName"},
	{tag.Tag{Group: 0x0010, Element: 0x1000}, "OtherPatientIDs"},
	{tag.Tag{Group: 0x0010, Element: 0x1001}, "OtherPatientNames"},
	{tag.Tag{Group: 0x0010, Element: 0x1005}, "PatientBirthName"},
	{tag.Tag{Group: 0x0010, Element: 0x1060}, "PatientMotherBirthName"},
	{tag.Tag{Group: 0x0010, Element: 0x1080}, "MilitaryRank"},
	{tag.Tag{Group: 0x0010, Element: 0x1081}, "BranchOfService"},
	{tag.Tag{Group: 0x0010, Element: 0x0050}, "PatientInsurancePlanCodeSequence"},
	{tag.Tag{Group: 0x0010, Element: 0x21F0}, "PatientReligiousPreference"},
	{tag.Tag{Group: 0x0010, Element: 0x1090}, "MedicalRecordLocator"},
	{tag.Tag{Group: 0x0010, Element: 0x1100}, "ReferencedPatientPhotoSequence"},
	{tag.Tag{Group: 0x0010, Element: 0x2297}, "ResponsiblePerson"},
	{tag.Tag{Group: 0x0010, Element: 0x2299}, "ResponsibleOrganization"},
}

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Anonymizer scrubs datasets. Randomness for Pseudo mode comes from the
// injected source so callers can seed it.
type Anonymizer struct {
	rng *rand.Rand
}

// New returns an Anonymizer drawing from rng. A nil rng gets a
// time-seeded source.
func New(rng *rand.Rand) *Anonymizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Anonymizer{rng: rng}
}

// Anonymize scrubs every sensitive tag present in the dataset,
// returning the number of elements modified. Only top-level tags are
// touched, matching the scrub table's scope. Sequence-valued sensitive
// tags are emptied in both modes.
func (a *Anonymizer) Anonymize(ds *dicom.Dataset, mode Mode) (int, error) {
	count := 0

	for _, sensitive := range SensitiveTags {
		el, err := ds.FindElementByTag(sensitive.Tag)
		if err != nil {
			continue
		}

		if el.Value.ValueType() == dicom.Sequences {
			if err := emptySequence(el); err != nil {
				return count, err
			}
			count++
			continue
		}

		replacement := ""
		if mode == Pseudo {
			replacement = a.pseudoValue(sensitive.Keyword)
		}
		if err := setString(el, replacement); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func (a *Anonymizer) pseudoValue(keyword string) string {
	switch keyword {
	case "PatientName":
		return "Anonymous_" + a.randString(6)
	case "PatientID":
		return "ID_" + a.randString(8)
	case "PatientBirthDate":
		return a.randBirthDate()
	case "PatientSex":
		return []string{"M", "F", "O"}[a.rng.Intn(3)]
	}

	return a.randString(8)
}

func (a *Anonymizer) randString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumerics[a.rng.Intn(len(alphanumerics))]
	}

	return string(b)
}

// randBirthDate picks a date putting the patient between 18 and 80
// years old, formatted as a DICOM DA value.
func (a *Anonymizer) randBirthDate() string {
	end := time.Now().AddDate(-18, 0, 0)
	start := end.AddDate(-62, 0, 0)
	days := int(end.Sub(start).Hours() / 24)

	return start.AddDate(0, 0, a.rng.Intn(days+1)).Format("20060102")
}

func setString(el *dicom.Element, s string) error {
	v, err := dicom.NewValue([]string{s})
	if err != nil {
		return pfx.Err(err)
	}
	el.Value = v

	return nil
}

func emptySequence(el *dicom.Element) error {
	v, err := dicom.NewValue([][]*dicom.Element{})
	if err != nil {
		return pfx.Err(err)
	}
	el.Value = v

	return nil
}

// scrub blanks an element according to its value type.
func scrub(el *dicom.Element) error {
	if el.Value.ValueType() == dicom.Sequences {
		return emptySequence(el)
	}

	return setString(el, "")
}
