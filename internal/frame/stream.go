package frame

import (
    "bytes"
    "io"
    "os"

    "github.com/pkg/errors"
)

// Stream is a seekable byte source of known length.
type Stream interface {
    io.ReadSeeker
    Size() (int64, error)
}

// FileStream is a Stream backed by a file on disk.
type FileStream struct {
    *os.File
}

// OpenFile opens path read-only.
func OpenFile(path string) (*FileStream, error) {
    f, err := os.Open(path)
    if err != nil {
        return nil, errors.Wrapf(err, "open %s", path)
    }
    return &FileStream{File: f}, nil
}

func (f *FileStream) Size() (int64, error) {
    fi, err := f.Stat()
    if err != nil {
        return 0, errors.Wrap(err, "stat")
    }
    return fi.Size(), nil
}

// BytesStream serves an in-memory byte slice.
type BytesStream struct {
    *bytes.Reader
}

func NewBytesStream(b []byte) *BytesStream { return &BytesStream{Reader: bytes.NewReader(b)} }

func (b *BytesStream) Size() (int64, error) { return b.Reader.Size(), nil }
