package dicomfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// TagString renders a tag the way tag listings display it:
// "(gggg,eeee)" in lowercase hex.
func TagString(t tag.Tag) string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// ParseTag accepts the forms "(0010,0010)", "0010,0010", and
// "00100010" and returns the tag they name.
func ParseTag(s string) (tag.Tag, error) {
	clean := strings.NewReplacer("(", "", ")", "", " ", "").Replace(strings.TrimSpace(s))

	var group, elem string
	if i := strings.Index(clean, ","); i >= 0 {
		group, elem = clean[:i], clean[i+1:]
	} else if len(clean) == 8 {
		group, elem = clean[:4], clean[4:]
	} else {
		return tag.Tag{}, fmt.Errorf("%q is not a tag reference like (0010,0010)", s)
	}

	g, err := strconv.ParseUint(group, 16, 16)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("Tag group %q is not 16-bit hex: %v", group, err)
	}
	e, err := strconv.ParseUint(elem, 16, 16)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("Tag element %q is not 16-bit hex: %v", elem, err)
	}

	return tag.Tag{Group: uint16(g), Element: uint16(e)}, nil
}
