package display

import (
    "io"
    "os"

    "github.com/pkg/errors"

    "rawplay/internal/yuv"
)

// RawSink writes every frame as width*height packed RGB24 bytes to w, the
// format ffplay/ffmpeg call "rawvideo rgb24".
type RawSink struct {
    w       io.Writer
    width   int
    height  int
    scratch []byte
    closer  io.Closer
}

func NewRawSink(w io.Writer, width, height int) *RawSink {
    return &RawSink{w: w, width: width, height: height, scratch: make([]byte, width*height*3)}
}

// OpenRawFile creates (or truncates) path for writing; "-" selects stdout.
func OpenRawFile(path string, width, height int) (*RawSink, error) {
    if path == "-" || path == "" {
        return NewRawSink(os.Stdout, width, height), nil
    }
    f, err := os.Create(path)
    if err != nil {
        return nil, errors.Wrapf(err, "create %s", path)
    }
    s := NewRawSink(f, width, height)
    s.closer = f
    return s, nil
}

func (s *RawSink) Resolution() (int, int) { return s.width, s.height }

// Blit only supports full-screen updates at the origin.
func (s *RawSink) Blit(pixels []yuv.Pixel, dst Rect) error {
    if dst != (Rect{W: s.width, H: s.height}) {
        return &SinkError{Op: "blit", Err: errors.Errorf("rect %+v is not the full %dx%d surface", dst, s.width, s.height)}
    }
    if len(pixels) != s.width*s.height {
        return &SinkError{Op: "blit", Err: errors.Errorf("got %d pixels for %dx%d", len(pixels), s.width, s.height)}
    }
    n := yuv.PackRGB24(pixels, s.scratch)
    if _, err := s.w.Write(s.scratch[:n]); err != nil {
        return &SinkError{Op: "write", Err: err}
    }
    return nil
}

// Close closes the file opened by OpenRawFile; other writers are left alone.
func (s *RawSink) Close() error {
    if s.closer == nil { return nil }
    return errors.Wrap(s.closer.Close(), "close raw sink")
}
