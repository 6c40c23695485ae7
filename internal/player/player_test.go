package player

import (
    "context"
    "testing"
    "time"

    "github.com/pkg/errors"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "rawplay/internal/display"
    "rawplay/internal/frame"
    "rawplay/internal/yuv"
)

var geom = frame.Geometry{Width: 2, Height: 2} // 4 + 1 + 1 bytes

// grayStream holds n frames; frame i has luma i*10 and neutral chroma.
func grayStream(n int) *frame.BytesStream {
    var b []byte
    for i := 0; i < n; i++ {
        l := byte(i * 10)
        b = append(b, l, l, l, l, 128, 128)
    }
    return frame.NewBytesStream(b)
}

type fakeSink struct {
    w, h   int
    frames [][]yuv.Pixel
    rects  []display.Rect
    err    error
    after  func(n int)
}

func (f *fakeSink) Resolution() (int, int) { return f.w, f.h }

func (f *fakeSink) Blit(px []yuv.Pixel, dst display.Rect) error {
    if f.err != nil { return f.err }
    f.frames = append(f.frames, append([]yuv.Pixel(nil), px...))
    f.rects = append(f.rects, dst)
    if f.after != nil { f.after(len(f.frames)) }
    return nil
}

func newSource(t *testing.T, n int) *frame.Source {
    t.Helper()
    src, err := frame.NewSource(grayStream(n), geom)
    require.NoError(t, err)
    return src
}

func TestStepDisplaysFramesInOrder(t *testing.T) {
    sink := &fakeSink{w: 3, h: 1}
    p, err := New(newSource(t, 3), geom, sink, Options{})
    require.NoError(t, err)

    for i := 0; i < 5; i++ {
        require.NoError(t, p.Step())
    }
    require.Len(t, sink.frames, 5)
    for i, f := range sink.frames {
        l := uint8((i % 3) * 10)
        assert.Equal(t, []yuv.Pixel{{R: l, G: l, B: l}, {R: l, G: l, B: l}, {R: l, G: l, B: l}}, f, "frame %d", i)
        assert.Equal(t, display.Rect{W: 3, H: 1}, sink.rects[i])
    }
    snap := p.Stats().Snapshot()
    assert.Equal(t, uint64(5), snap["frames_read"])
    assert.Equal(t, uint64(5), snap["frames_converted"])
    assert.Equal(t, uint64(5), snap["frames_displayed"])
    assert.Equal(t, uint64(1), snap["rewinds"])

    p.Stats().Reset()
    assert.Equal(t, uint64(0), p.Stats().FramesDisplayed())
}

func TestRunStopsOnCancel(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    sink := &fakeSink{w: 4, h: 4}
    sink.after = func(n int) {
        if n == 7 { cancel() }
    }
    p, err := New(newSource(t, 2), geom, sink, Options{})
    require.NoError(t, err)

    require.NoError(t, p.Run(ctx))
    assert.Len(t, sink.frames, 7)
    assert.Equal(t, uint64(7), p.Stats().FramesDisplayed())
}

func TestRunPaced(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    sink := &fakeSink{w: 1, h: 1}
    sink.after = func(n int) {
        if n == 3 { cancel() }
    }
    p, err := New(newSource(t, 1), geom, sink, Options{FPS: 200})
    require.NoError(t, err)

    start := time.Now()
    require.NoError(t, p.Run(ctx))
    assert.Len(t, sink.frames, 3)
    assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestRunReturnsSinkError(t *testing.T) {
    sinkErr := &display.SinkError{Op: "write", Err: errors.New("gone")}
    p, err := New(newSource(t, 1), geom, &fakeSink{w: 1, h: 1, err: sinkErr}, Options{})
    require.NoError(t, err)

    err = p.Run(context.Background())
    var se *display.SinkError
    require.True(t, errors.As(err, &se))
    assert.Equal(t, uint64(1), p.Stats().Snapshot()["frames_converted"])
    assert.Equal(t, uint64(0), p.Stats().FramesDisplayed())
}

type brokenSource struct{}

func (brokenSource) Next() ([]byte, error) {
    return nil, &frame.StorageError{Op: "read", Err: errors.New("disk gone")}
}

func TestRunReturnsStorageError(t *testing.T) {
    p, err := New(brokenSource{}, geom, &fakeSink{w: 1, h: 1}, Options{})
    require.NoError(t, err)
    err = p.Run(context.Background())
    var se *frame.StorageError
    assert.True(t, errors.As(err, &se))
}

func TestNewRejectsBadConfig(t *testing.T) {
    var ce *frame.ConfigError
    _, err := New(newSource(t, 1), geom, &fakeSink{w: 0, h: 10}, Options{})
    assert.True(t, errors.As(err, &ce))

    _, err = New(newSource(t, 1), geom, &fakeSink{w: 1, h: 1}, Options{FPS: -1})
    assert.True(t, errors.As(err, &ce))

    _, err = New(newSource(t, 1), frame.Geometry{Width: 1, Height: 2}, &fakeSink{w: 1, h: 1}, Options{})
    assert.True(t, errors.As(err, &ce))
}

func TestRunWithRawSink(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    var out countingWriter
    out.stopAt, out.cancel = 4, cancel
    p, err := New(newSource(t, 3), geom, display.NewRawSink(&out, 5, 3), Options{Convert: yuv.Options{Workers: 2}})
    require.NoError(t, err)
    require.NoError(t, p.Run(ctx))
    assert.Equal(t, 4*5*3*3, out.n)
}

type countingWriter struct {
    n, writes int
    stopAt    int
    cancel    func()
}

func (c *countingWriter) Write(b []byte) (int, error) {
    c.n += len(b)
    c.writes++
    if c.writes == c.stopAt { c.cancel() }
    return len(b), nil
}

func TestSharedStats(t *testing.T) {
    stats := &Stats{}
    p, err := New(newSource(t, 1), geom, &fakeSink{w: 1, h: 1}, Options{Stats: stats})
    require.NoError(t, err)
    require.NoError(t, p.Step())
    assert.Same(t, stats, p.Stats())
    assert.Equal(t, uint64(1), stats.FramesDisplayed())
}
