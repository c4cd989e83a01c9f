package dicomexplorer

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"testing"
)

func TestDetectDataType(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  DataType
	}{
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00}, DataTypeGzip},
		{"zip", []byte{0x50, 0x4b, 0x03, 0x04, 0x14, 0x00}, DataTypeZip},
		{"xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, DataTypeXZ},
		{"unix compress", []byte{0x1f, 0x9d, 0x90, 0x00, 0x00, 0x00}, DataTypeZ},
		{"bzip2", []byte{0x42, 0x5a, 0x68, 0x39, 0x31, 0x41}, DataTypeBZip2},
		{"dicom preamble", []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, DataTypeNoCompression},
		{"plain text", []byte("DICM and then some"), DataTypeNoCompression},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := DetectDataType(bytes.NewReader(test.input))
			if err != nil {
				t.Fatalf("DetectDataType: %v", err)
			}
			if got != test.want {
				t.Errorf("DetectDataType = %v, want %v", got, test.want)
			}
		})
	}
}

func TestDetectDataTypeEmptyStream(t *testing.T) {
	if _, err := DetectDataType(bytes.NewReader(nil)); err == nil {
		t.Error("Expected an error for an empty stream")
	}
}

func TestMaybeDecompressGzip(t *testing.T) {
	payload := []byte("not a real dicom file, but plenty to round-trip")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		t.Fatalf("Writing the gzip stream: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("Closing the gzip stream: %v", err)
	}

	r, dt, err := MaybeDecompress(&buf)
	if err != nil {
		t.Fatalf("MaybeDecompress: %v", err)
	}
	if dt != DataTypeGzip {
		t.Errorf("Detected %v, want %v", dt, DataTypeGzip)
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Reading the decompressed stream: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Read %q, want %q", got, payload)
	}
}

func TestMaybeDecompressPassthrough(t *testing.T) {
	payload := []byte("uncompressed bytes pass through with nothing consumed")

	r, dt, err := MaybeDecompress(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("MaybeDecompress: %v", err)
	}
	if dt != DataTypeNoCompression {
		t.Errorf("Detected %v, want %v", dt, DataTypeNoCompression)
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Reading the passthrough stream: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Read %q, want %q", got, payload)
	}
}

func TestMaybeDecompressZipSkipsDirectories(t *testing.T) {
	payload := []byte("zip payload for the first regular entry")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("series/"); err != nil {
		t.Fatalf("Creating the directory entry: %v", err)
	}
	w, err := zw.Create("series/scan.dcm")
	if err != nil {
		t.Fatalf("Creating the file entry: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Writing the file entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Closing the archive: %v", err)
	}

	r, dt, err := MaybeDecompress(&buf)
	if err != nil {
		t.Fatalf("MaybeDecompress: %v", err)
	}
	if dt != DataTypeZip {
		t.Errorf("Detected %v, want %v", dt, DataTypeZip)
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Reading the first archive entry: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Read %q, want %q", got, payload)
	}
}

func TestMaybeDecompressEmptyStream(t *testing.T) {
	if _, _, err := MaybeDecompress(bytes.NewReader(nil)); err == nil {
		t.Error("Expected an error for an empty stream")
	}
}
