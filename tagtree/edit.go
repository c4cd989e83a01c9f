package tagtree

import (
	"errors"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

var (
	// ErrTagNotFound reports an edit against a tag absent from the
	// dataset, at the top level and inside every sequence item.
	ErrTagNotFound = errors.New("tag not found in dataset")

	// ErrValueType reports a value that cannot be stored under the
	// tag's value representation. The dataset is left untouched.
	ErrValueType = errors.New("value does not fit the tag's value representation")
)

// Category is the closed set of edit input types. Every editable VR
// maps to exactly one category.
type Category int

const (
	CategoryString Category = iota
	CategoryInt
	CategoryFloat
)

func (c Category) String() string {
	switch c {
	case CategoryInt:
		return "integer"
	case CategoryFloat:
		return "float"
	}

	return "string"
}

// CategoryForVR maps a value representation to its edit category.
// Sequence and binary VRs report editable=false.
func CategoryForVR(vr string) (category Category, editable bool) {
	switch strings.ToUpper(strings.TrimSpace(vr)) {
	case "DS", "FL", "FD":
		return CategoryFloat, true
	case "IS", "SL", "SS", "UL", "US":
		return CategoryInt, true
	case "SQ", "OB", "OW", "UN":
		return CategoryString, false
	}

	return CategoryString, true
}

// SetValue stores raw into every occurrence of t, at the top level and
// inside sequence items at any depth. The raw text is validated against
// the tag's category and stored in the VR's wire representation:
// decimal and integer strings stay strings, FL/FD become floats, and
// SL/SS/UL/US become ints. Returns ErrValueType for unstorable input
// and ErrTagNotFound when no occurrence exists.
func SetValue(ds *dicom.Dataset, t tag.Tag, raw string) error {
	el := findFirst(ds.Elements, t)
	if el == nil {
		return ErrTagNotFound
	}

	value, err := buildValue(el.RawValueRepresentation, raw)
	if err != nil {
		return err
	}

	setAll(ds.Elements, t, value)

	return nil
}

// buildValue converts raw edit text into a library value matching the
// VR's wire type.
func buildValue(vr, raw string) (dicom.Value, error) {
	category, editable := CategoryForVR(vr)
	if !editable {
		return nil, ErrValueType
	}

	trimmed := strings.TrimSpace(raw)

	switch category {
	case CategoryFloat:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, ErrValueType
		}
		if upper := strings.ToUpper(strings.TrimSpace(vr)); upper == "FL" || upper == "FD" {
			return newValue([]float64{f})
		}
		return newValue([]string{trimmed})
	case CategoryInt:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, ErrValueType
		}
		if strings.EqualFold(strings.TrimSpace(vr), "IS") {
			return newValue([]string{trimmed})
		}
		return newValue([]int{n})
	}

	return newValue([]string{raw})
}

func newValue(data interface{}) (dicom.Value, error) {
	v, err := dicom.NewValue(data)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return v, nil
}

// findFirst locates the first occurrence of t, top level first, then
// depth-first through sequence items.
func findFirst(elements []*dicom.Element, t tag.Tag) *dicom.Element {
	for _, el := range elements {
		if el.Tag == t {
			return el
		}
	}
	for _, el := range elements {
		if el.Value.ValueType() != dicom.Sequences {
			continue
		}
		for _, item := range el.Value.GetValue().([]*dicom.SequenceItemValue) {
			if found := findFirst(item.GetValue().([]*dicom.Element), t); found != nil {
				return found
			}
		}
	}

	return nil
}

// setAll assigns value to every occurrence of t. Elements inside
// sequence items are shared by pointer, so in-place assignment reaches
// them without rebuilding the sequence.
func setAll(elements []*dicom.Element, t tag.Tag, value dicom.Value) {
	for _, el := range elements {
		if el.Tag == t {
			el.Value = value
			continue
		}
		if el.Value.ValueType() != dicom.Sequences {
			continue
		}
		for _, item := range el.Value.GetValue().([]*dicom.SequenceItemValue) {
			setAll(item.GetValue().([]*dicom.Element), t, value)
		}
	}
}

// Delete removes the first occurrence of t: the top level is searched
// first, then sequence items depth-first. A removal inside a sequence
// rebuilds that sequence's value without the element. Reports whether
// anything was removed.
func Delete(ds *dicom.Dataset, t tag.Tag) (bool, error) {
	for i, el := range ds.Elements {
		if el.Tag == t {
			ds.Elements = append(ds.Elements[:i], ds.Elements[i+1:]...)
			return true, nil
		}
	}

	for _, el := range ds.Elements {
		removed, err := deleteFromSequence(el, t)
		if err != nil || removed {
			return removed, err
		}
	}

	return false, nil
}

func deleteFromSequence(el *dicom.Element, t tag.Tag) (bool, error) {
	if el.Value.ValueType() != dicom.Sequences {
		return false, nil
	}

	items := el.Value.GetValue().([]*dicom.SequenceItemValue)
	for itemIndex, item := range items {
		elements := item.GetValue().([]*dicom.Element)
		for childIndex, child := range elements {
			if child.Tag == t {
				rebuilt := make([][]*dicom.Element, 0, len(items))
				for k, other := range items {
					els := other.GetValue().([]*dicom.Element)
					if k == itemIndex {
						trimmed := make([]*dicom.Element, 0, len(els)-1)
						trimmed = append(trimmed, els[:childIndex]...)
						trimmed = append(trimmed, els[childIndex+1:]...)
						els = trimmed
					}
					rebuilt = append(rebuilt, els)
				}

				value, err := newValue(rebuilt)
				if err != nil {
					return false, err
				}
				el.Value = value

				return true, nil
			}

			if removed, err := deleteFromSequence(child, t); err != nil || removed {
				return removed, err
			}
		}
	}

	return false, nil
}
