// Package player drives the render loop: read a raw frame, convert it to the
// sink's resolution, hand it to the sink, repeat.
package player

import (
    "context"
    "fmt"
    "time"

    "github.com/pkg/errors"
    log "github.com/sirupsen/logrus"

    "rawplay/internal/display"
    "rawplay/internal/frame"
    "rawplay/internal/yuv"
)

// FrameSource yields raw frames forever. The slice returned by Next may be
// reused by the following call.
type FrameSource interface {
    Next() ([]byte, error)
}

type Options struct {
    Convert yuv.Options
    // FPS > 0 paces the loop with a ticker; 0 runs as fast as the sink
    // accepts frames.
    FPS int
    // Stats receives the loop counters; nil allocates a private set.
    Stats *Stats
}

type Player struct {
    src    FrameSource
    geom   frame.Geometry
    sink   display.Sink
    opts   Options
    conv   yuv.Converter
    pixels []yuv.Pixel
    w, h   int
    stats  *Stats
}

// New sizes the output buffer from the sink's resolution. The buffer is
// allocated once and reused for every frame.
func New(src FrameSource, g frame.Geometry, sink display.Sink, opts Options) (*Player, error) {
    if err := g.Validate(); err != nil {
        return nil, err
    }
    w, h := sink.Resolution()
    if w <= 0 || h <= 0 {
        return nil, &frame.ConfigError{Reason: fmt.Sprintf("sink resolution %dx%d", w, h)}
    }
    if opts.FPS < 0 {
        return nil, &frame.ConfigError{Reason: "negative fps"}
    }
    stats := opts.Stats
    if stats == nil { stats = &Stats{} }
    return &Player{
        src:    src,
        geom:   g,
        sink:   sink,
        opts:   opts,
        pixels: make([]yuv.Pixel, w*h),
        w:      w,
        h:      h,
        stats:  stats,
    }, nil
}

func (p *Player) Stats() *Stats { return p.stats }

// Resolution is the target size frames are converted to.
func (p *Player) Resolution() (int, int) { return p.w, p.h }

// Step reads, converts and displays exactly one frame.
func (p *Player) Step() error {
    raw, err := p.src.Next()
    if err != nil {
        return errors.Wrap(err, "read frame")
    }
    p.stats.framesRead.Add(1)
    if r, ok := p.src.(interface{ Rewinds() uint64 }); ok {
        p.stats.rewinds.Store(r.Rewinds())
    }

    if err := p.conv.Convert(raw, p.geom, p.w, p.h, p.pixels, p.opts.Convert); err != nil {
        return errors.Wrap(err, "convert frame")
    }
    p.stats.framesConverted.Add(1)

    if err := p.sink.Blit(p.pixels, display.Rect{W: p.w, H: p.h}); err != nil {
        return errors.Wrap(err, "display frame")
    }
    p.stats.framesDisplayed.Add(1)
    return nil
}

// Run steps until ctx is cancelled (returning nil) or a step fails
// (returning its error). Nothing is retried.
func (p *Player) Run(ctx context.Context) error {
    log.WithFields(log.Fields{"source": p.geom.String(), "target": fmt.Sprintf("%dx%d", p.w, p.h), "fps": p.opts.FPS}).Info("render loop started")
    defer func() { log.Printf("render loop stopped after %d frames", p.stats.FramesDisplayed()) }()

    var tick <-chan time.Time
    if p.opts.FPS > 0 {
        ticker := time.NewTicker(time.Second / time.Duration(p.opts.FPS))
        defer ticker.Stop()
        tick = ticker.C
    }
    for {
        select {
        case <-ctx.Done():
            return nil
        default:
        }
        if tick != nil {
            select {
            case <-ctx.Done():
                return nil
            case <-tick:
            }
        }
        if err := p.Step(); err != nil {
            return err
        }
    }
}
