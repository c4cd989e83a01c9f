package dicomfile

import (
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom"

	"github.com/carbocation/dicomexplorer"
)

// Open reads one dataset from a local path or a gs:// object,
// transparently unwrapping recognized compression formats (gzip, zip,
// xz, zlib, bzip2) before handing the stream to the parser. The
// storage client may be nil when no gs:// paths are in play.
func Open(path string, client *storage.Client, opts ...dicom.ParseOpt) (dicom.Dataset, error) {
	f, size, err := MaybeOpenFromGoogleStorage(path, client)
	if err != nil {
		return dicom.Dataset{}, pfx.Err(err)
	}
	defer f.Close()

	r, dataType, err := dicomexplorer.MaybeDecompress(f)
	if err != nil {
		return dicom.Dataset{}, pfx.Err(err)
	}

	if dataType == dicomexplorer.DataTypeNoCompression {
		ds, err := Parse(r, size, opts...)
		return ds, pfx.Err(err)
	}

	// The decompressed length is unknown, so read to EOF.
	ds, err := ParseUntilEOF(r, opts...)
	return ds, pfx.Err(err)
}

// Write encodes the dataset to path via the library encoder. The
// in-memory dataset is left untouched whether or not the write
// succeeds.
func Write(ds dicom.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if err := dicom.Write(f, ds); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	return pfx.Err(f.Close())
}

// Save writes the dataset to path after applying EnsureExtension, and
// reports the path actually written.
func Save(ds dicom.Dataset, path string) (string, error) {
	out := EnsureExtension(path)
	if err := Write(ds, out); err != nil {
		return "", err
	}

	return out, nil
}

// EnsureExtension appends the standard ".dcm" extension when the
// target filename carries none.
func EnsureExtension(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".dcm"
	}

	return path
}

// IsDicomFilename reports whether a filename carries the standard
// extension, case-insensitively. Folder scans use this filter;
// explicitly named files are always attempted regardless of extension.
func IsDicomFilename(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".dcm")
}
