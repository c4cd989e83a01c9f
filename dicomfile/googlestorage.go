package dicomfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"google.golang.org/api/iterator"
)

// ReaderAtCloser is satisfied by local files and by the Google Storage
// adapter below.
type ReaderAtCloser interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

// MaybeOpenFromGoogleStorage opens path from Google Storage when it
// carries the gs:// prefix, and from the local filesystem otherwise.
// It reports the object's size alongside the reader. The client may be
// nil for purely local use.
func MaybeOpenFromGoogleStorage(path string, client *storage.Client) (ReaderAtCloser, int64, error) {
	if !strings.HasPrefix(path, "gs://") {
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, pfx.Err(err)
		}
		fstat, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, pfx.Err(err)
		}
		return f, fstat.Size(), nil
	}

	if client == nil {
		return nil, 0, fmt.Errorf("%s: no storage client is configured for gs:// paths", path)
	}

	// Split into bucket and object name
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 {
		return nil, 0, fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	handle := client.Bucket(pathParts[0]).Object(pathParts[1])

	wrappedHandle := &gsReaderAtCloser{
		ObjectHandle: handle,
		context:      context.Background(),
	}

	// Make a hard call to get the filesize
	attrs, err := handle.Attrs(wrappedHandle.context)
	if err != nil {
		return nil, 0, pfx.Err(fmt.Errorf("%s: %s", path, err))
	}

	return wrappedHandle, attrs.Size, nil
}

// gsReaderAtCloser decorates a Google Storage object handle with
// io.Reader, io.ReaderAt, and io.Closer.
type gsReaderAtCloser struct {
	*storage.ObjectHandle
	context       context.Context
	storageReader *storage.Reader
}

// Read satisfies io.Reader.
func (o *gsReaderAtCloser) Read(p []byte) (int, error) {
	if o.storageReader == nil {
		rdr, err := o.NewReader(o.context)
		if err != nil {
			return 0, pfx.Err(err)
		}
		o.storageReader = rdr
	}

	return o.storageReader.Read(p)
}

// ReadAt satisfies io.ReaderAt. Each call opens a range reader sized to
// the buffer being filled.
func (o *gsReaderAtCloser) ReadAt(p []byte, offset int64) (n int, err error) {
	rdr, err := o.NewRangeReader(o.context, offset, int64(len(p)))
	if err != nil {
		return 0, pfx.Err(err)
	}
	defer rdr.Close()

	return rdr.Read(p)
}

// Close satisfies io.Closer.
func (o *gsReaderAtCloser) Close() error {
	if o.storageReader == nil {
		return nil
	}

	return o.storageReader.Close()
}

// ListFromGoogleStorage lists the objects under a gs://bucket/prefix
// path, returning fully qualified gs:// paths.
func ListFromGoogleStorage(path string, client *storage.Client) ([]string, error) {
	if client == nil {
		return nil, fmt.Errorf("Listing %s requires a Google Storage client", path)
	}

	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	bucketName := pathParts[0]
	prefix := ""
	if len(pathParts) == 2 {
		prefix = pathParts[1]
	}

	var out []string

	it := client.Bucket(bucketName).Objects(context.Background(), &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(err)
		}

		out = append(out, "gs://"+bucketName+"/"+attrs.Name)
	}

	return out, nil
}
