// Package yuv converts planar 4:2:0 frames into packed RGB at an arbitrary
// output size, resampling with nearest neighbour on the way.
package yuv

import (
    "github.com/pkg/errors"
    "github.com/sourcegraph/conc"

    "rawplay/internal/frame"
)

// ErrBufferSize is returned when the raw frame or output buffer does not
// match the dimensions passed alongside it.
var ErrBufferSize = errors.New("yuv: buffer size mismatch")

// Pixel is one packed RGB sample.
type Pixel struct {
    R, G, B uint8
}

// Options tune a conversion. The zero value converts sequentially with
// saturating narrowing.
type Options struct {
    Narrowing Narrowing
    // Workers > 1 splits output rows into that many disjoint bands converted
    // concurrently. The call returns only after every band is written.
    Workers int
}

// Convert maps raw (a frame laid out as g) onto out, which holds tw*th
// pixels row-major. It keeps no state between calls.
func Convert(raw []byte, g frame.Geometry, tw, th int, out []Pixel, opts Options) error {
    var c Converter
    return c.Convert(raw, g, tw, th, out, opts)
}

// Converter is Convert with its coordinate tables kept between calls, so
// converting a stream of same-sized frames does not allocate. A Converter
// must not be used from more than one goroutine at a time.
type Converter struct {
    g      frame.Geometry
    tw, th int
    xmap   []int
    ymap   []int
}

func (c *Converter) Convert(raw []byte, g frame.Geometry, tw, th int, out []Pixel, opts Options) error {
    if tw < 0 || th < 0 {
        return errors.Wrapf(ErrBufferSize, "negative target %dx%d", tw, th)
    }
    if len(out) != tw*th {
        return errors.Wrapf(ErrBufferSize, "output holds %d pixels, target %dx%d needs %d", len(out), tw, th, tw*th)
    }
    if tw == 0 || th == 0 {
        return nil
    }
    if err := g.Validate(); err != nil {
        return err
    }
    if len(raw) != g.FrameSize() {
        return errors.Wrapf(ErrBufferSize, "raw frame is %d bytes, %s needs %d", len(raw), g, g.FrameSize())
    }
    c.prepare(g, tw, th)

    workers := opts.Workers
    if workers > th { workers = th }
    if workers <= 1 {
        c.rows(raw, out, 0, th, opts.Narrowing)
        return nil
    }
    band := (th + workers - 1) / workers
    var wg conc.WaitGroup
    for y0 := 0; y0 < th; y0 += band {
        y1 := y0 + band
        if y1 > th { y1 = th }
        y0 := y0
        wg.Go(func() { c.rows(raw, out, y0, y1, opts.Narrowing) })
    }
    wg.Wait()
    return nil
}

func (c *Converter) prepare(g frame.Geometry, tw, th int) {
    if c.g == g && c.tw == tw && c.th == th && c.xmap != nil {
        return
    }
    c.g, c.tw, c.th = g, tw, th
    c.xmap = buildMap(c.xmap, tw, g.Width)
    c.ymap = buildMap(c.ymap, th, g.Height)
}

func buildMap(dst []int, target, source int) []int {
    if cap(dst) < target {
        dst = make([]int, target)
    }
    dst = dst[:target]
    for o := range dst {
        dst[o] = MapCoordinate(o, target, source)
    }
    return dst
}

// MapCoordinate returns the source sample nearest-neighbour scaling picks
// for output coordinate o: floor(o/target * source). Integer arithmetic keeps
// it exact, so target == source maps every coordinate to itself.
func MapCoordinate(o, target, source int) int {
    return int(int64(o) * int64(source) / int64(target))
}

// rows converts output rows [y0, y1).
func (c *Converter) rows(raw []byte, out []Pixel, y0, y1 int, n Narrowing) {
    w := c.g.Width
    cw := w / 2
    yp, up, vp := c.g.Planes(raw)
    for y := y0; y < y1; y++ {
        my := c.ymap[y]
        lumaRow := yp[my*w : my*w+w]
        off := (my / 2) * cw
        uRow, vRow := up[off:off+cw], vp[off:off+cw]
        dst := out[y*c.tw : y*c.tw+c.tw]
        for x, mx := range c.xmap {
            dst[x] = toRGB(lumaRow[mx], uRow[mx/2], vRow[mx/2], n)
        }
    }
}

// toRGB applies the full-range BT.601 transform.
func toRGB(Y, U, V byte, n Narrowing) Pixel {
    yf := float32(Y)
    d := float32(U) - 128
    e := float32(V) - 128
    r := yf + 1.402*e
    g := yf - 0.3441*d - 0.7141*e
    b := yf + 1.772*d
    return Pixel{R: n.narrow(r), G: n.narrow(g), B: n.narrow(b)}
}
