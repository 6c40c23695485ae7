// Package display holds the output side of the render loop: something that
// accepts a full packed-RGB buffer and puts it on a screen, a pipe or a file.
package display

import (
    "fmt"

    "rawplay/internal/yuv"
)

// Rect is a destination rectangle in sink coordinates.
type Rect struct {
    X, Y, W, H int
}

// Sink is a framebuffer of fixed resolution.
type Sink interface {
    // Resolution reports the size frames should be converted to.
    Resolution() (w, h int)
    // Blit copies the whole of pixels (dst.W*dst.H, row-major) to dst.
    Blit(pixels []yuv.Pixel, dst Rect) error
}

// SinkError is a failed write to a sink. The render loop treats it as fatal.
type SinkError struct {
    Op  string
    Err error
}

func (e *SinkError) Error() string { return fmt.Sprintf("display: %s: %v", e.Op, e.Err) }
func (e *SinkError) Unwrap() error { return e.Err }
