package frame

import (
    "fmt"
    "io"

    "github.com/pkg/errors"
)

// Source serves fixed-size raw frames from a Stream as an endless loop.
// It is not safe for concurrent use.
type Source struct {
    stream     Stream
    geom       Geometry
    frameSize  int
    frameCount int
    cursor     int
    rewinds    uint64
    buf        []byte
}

// NewSource validates geometry against the stream length and prepares the
// single frame buffer. Trailing bytes that do not fill a whole frame are
// never read. A stream shorter than one frame is rejected here so that Next
// can never spin on an empty loop.
func NewSource(s Stream, g Geometry) (*Source, error) {
    if err := g.Validate(); err != nil {
        return nil, err
    }
    frameSize := g.FrameSize()
    if frameSize == 0 {
        return nil, &ConfigError{Reason: "zero frame size"}
    }
    size, err := s.Size()
    if err != nil {
        return nil, &ConfigError{Reason: "query stream size", Err: err}
    }
    count := int(size / int64(frameSize))
    if count == 0 {
        return nil, &ConfigError{Reason: fmt.Sprintf("stream of %d bytes holds no %s frame (%d bytes)", size, g, frameSize)}
    }
    return &Source{
        stream:     s,
        geom:       g,
        frameSize:  frameSize,
        frameCount: count,
        buf:        make([]byte, frameSize),
    }, nil
}

// Rewind moves back to the first frame.
func (s *Source) Rewind() error {
    if _, err := s.stream.Seek(0, io.SeekStart); err != nil {
        return &StorageError{Op: "seek", Offset: 0, Err: err}
    }
    s.cursor = 0
    s.rewinds++
    return nil
}

// Next reads the next frame, wrapping to the first one after the last.
// The returned slice is owned by the Source and is overwritten by the next
// call; copy it if it must outlive that.
func (s *Source) Next() ([]byte, error) {
    if s.cursor >= s.frameCount {
        if err := s.Rewind(); err != nil {
            return nil, err
        }
    }
    off := int64(s.cursor) * int64(s.frameSize)
    if _, err := s.stream.Seek(off, io.SeekStart); err != nil {
        return nil, &StorageError{Op: "seek", Offset: off, Err: err}
    }
    if _, err := io.ReadFull(s.stream, s.buf); err != nil {
        return nil, &StorageError{Op: "read", Offset: off, Err: err}
    }
    s.cursor++
    return s.buf, nil
}

func (s *Source) FrameCount() int    { return s.frameCount }
func (s *Source) FrameSize() int     { return s.frameSize }
func (s *Source) Cursor() int        { return s.cursor }
func (s *Source) Geometry() Geometry { return s.geom }

// Rewinds counts how many times the source has wrapped or been rewound.
func (s *Source) Rewinds() uint64 { return s.rewinds }

// Close releases the underlying stream when it holds a resource.
func (s *Source) Close() error {
    if c, ok := s.stream.(io.Closer); ok {
        return errors.Wrap(c.Close(), "close stream")
    }
    return nil
}
