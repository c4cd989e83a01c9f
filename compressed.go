package dicomexplorer

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

// DataType identifies the compression wrapper, if any, around an input
// stream.
type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType attempts to detect the data type of a stream by checking
// against a set of known compression signatures. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475 . Consumes up to 6 bytes of
// the reader.
func DetectDataType(r io.Reader) (DataType, error) {
	buff := make([]byte, 6)
	if _, err := r.Read(buff); err != nil {
		return DataTypeInvalid, err
	}

	return matchSignature(buff), nil
}

func matchSignature(buff []byte) DataType {
Outer:
	for dt, sig := range byteCodeSigs {
		if len(buff) < len(sig) {
			continue
		}
		for position := range sig {
			if buff[position] != sig[position] {
				continue Outer
			}
		}
		return dt
	}

	return DataTypeNoCompression
}

// MaybeDecompress sniffs the leading magic bytes of r without consuming
// them and, when it finds a known compression signature, returns a reader
// over the decompressed payload. Unrecognized input is passed through
// untouched, on the assumption that it is a bare DICOM stream. For zip
// archives the reader is positioned at the first regular file entry.
func MaybeDecompress(r io.Reader) (io.Reader, DataType, error) {
	br := bufio.NewReader(r)

	sig, err := br.Peek(6)
	if err != nil && len(sig) == 0 {
		return nil, DataTypeInvalid, err
	}

	dt := matchSignature(sig)

	switch dt {
	case DataTypeGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, dt, err
		}
		return gz, dt, nil
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		for {
			hdr, err := zr.Next()
			if err != nil {
				return nil, dt, fmt.Errorf("Zip archive contains no file entries: %v", err)
			}
			if hdr.FileInfo().IsDir() {
				continue
			}
			return zr, dt, nil
		}
	case DataTypeBZip2:
		return bzip2.NewReader(br), dt, nil
	case DataTypeXZ:
		xzr, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, dt, err
		}
		return xzr, dt, nil
	case DataTypeZ:
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, dt, err
		}
		return zr, dt, nil
	}

	return br, DataTypeNoCompression, nil
}
