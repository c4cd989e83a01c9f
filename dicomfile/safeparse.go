package dicomfile

import (
	"fmt"
	"io"

	"github.com/suyashkumar/dicom"
)

// The parsing library is known to panic on some malformed inputs
// rather than returning an error. Every parse in this repository goes
// through one of these wrappers so that a hostile or truncated file is
// reported like any other unreadable file instead of taking the
// process down.

// Parse decodes one dataset from a reader of known size, converting
// library panics into errors.
func Parse(r io.Reader, size int64, opts ...dicom.ParseOpt) (ds dicom.Dataset, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("Recovered from a panic in the dicom parsing library: %v", rec)
		}
	}()

	ds, err = dicom.Parse(r, size, nil, opts...)
	return
}

// ParseUntilEOF decodes one dataset from a stream whose length is not
// known up front (decompressed wrappers, pipes), converting library
// panics into errors.
func ParseUntilEOF(r io.Reader, opts ...dicom.ParseOpt) (ds dicom.Dataset, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("Recovered from a panic in the dicom parsing library: %v", rec)
		}
	}()

	ds, err = dicom.ParseUntilEOF(r, nil, opts...)
	return
}

// ParseFile decodes one dataset from a local file, converting library
// panics into errors.
func ParseFile(path string, opts ...dicom.ParseOpt) (ds dicom.Dataset, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("Recovered from a panic in the dicom parsing library: %v", rec)
		}
	}()

	ds, err = dicom.ParseFile(path, nil, opts...)
	return
}
