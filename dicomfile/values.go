// Package dicomfile wraps the external DICOM library's I/O and value
// model: opening datasets from local paths, Google Storage objects, or
// compressed streams; writing them back; and pulling typed values and
// common header fields out of elements.
package dicomfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
)

// FirstString returns the first value of a textual element, trimmed of
// the padding DICOM writers add. Numeric binary elements are formatted
// as text.
func FirstString(el *dicom.Element) (string, error) {
	vals, err := StringValues(el)
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", fmt.Errorf("Element %s holds no values", TagString(el.Tag))
	}

	return strings.TrimSpace(vals[0]), nil
}

// FirstFloat returns the first value of an element as a float64. This
// covers the decimal-string VRs (which the library surfaces as
// strings) as well as binary float and integer VRs.
func FirstFloat(el *dicom.Element) (float64, error) {
	switch el.Value.ValueType() {
	case dicom.Strings:
		vals := el.Value.GetValue().([]string)
		if len(vals) == 0 {
			return 0, fmt.Errorf("Element %s holds no values", TagString(el.Tag))
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		if err != nil {
			return 0, fmt.Errorf("Element %s value %q is not numeric: %v", TagString(el.Tag), vals[0], err)
		}
		return f, nil
	case dicom.Floats:
		vals := el.Value.GetValue().([]float64)
		if len(vals) == 0 {
			return 0, fmt.Errorf("Element %s holds no values", TagString(el.Tag))
		}
		return vals[0], nil
	case dicom.Ints:
		vals := el.Value.GetValue().([]int)
		if len(vals) == 0 {
			return 0, fmt.Errorf("Element %s holds no values", TagString(el.Tag))
		}
		return float64(vals[0]), nil
	}

	return 0, fmt.Errorf("Element %s is not a numeric element", TagString(el.Tag))
}

// FirstInt returns the first value of an element as an int.
func FirstInt(el *dicom.Element) (int, error) {
	switch el.Value.ValueType() {
	case dicom.Strings:
		vals := el.Value.GetValue().([]string)
		if len(vals) == 0 {
			return 0, fmt.Errorf("Element %s holds no values", TagString(el.Tag))
		}
		n, err := strconv.Atoi(strings.TrimSpace(vals[0]))
		if err != nil {
			return 0, fmt.Errorf("Element %s value %q is not an integer: %v", TagString(el.Tag), vals[0], err)
		}
		return n, nil
	case dicom.Ints:
		vals := el.Value.GetValue().([]int)
		if len(vals) == 0 {
			return 0, fmt.Errorf("Element %s holds no values", TagString(el.Tag))
		}
		return vals[0], nil
	case dicom.Floats:
		vals := el.Value.GetValue().([]float64)
		if len(vals) == 0 {
			return 0, fmt.Errorf("Element %s holds no values", TagString(el.Tag))
		}
		return int(vals[0]), nil
	}

	return 0, fmt.Errorf("Element %s is not a numeric element", TagString(el.Tag))
}

// StringValues renders every value of a simple (non-sequence,
// non-binary) element as text, one string per value.
func StringValues(el *dicom.Element) ([]string, error) {
	switch el.Value.ValueType() {
	case dicom.Strings:
		return el.Value.GetValue().([]string), nil
	case dicom.Ints:
		ints := el.Value.GetValue().([]int)
		out := make([]string, 0, len(ints))
		for _, v := range ints {
			out = append(out, strconv.Itoa(v))
		}
		return out, nil
	case dicom.Floats:
		fls := el.Value.GetValue().([]float64)
		out := make([]string, 0, len(fls))
		for _, v := range fls {
			out = append(out, strconv.FormatFloat(v, 'g', -1, 64))
		}
		return out, nil
	}

	return nil, fmt.Errorf("Element %s does not hold text-representable values", TagString(el.Tag))
}
