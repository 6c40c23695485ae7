package player

import "sync/atomic"

// Stats are health counters for the render loop. They are written by the
// loop and may be read from any goroutine.
type Stats struct {
    framesRead      atomic.Uint64 // frames pulled from the source
    framesConverted atomic.Uint64 // frames converted to RGB
    framesDisplayed atomic.Uint64 // frames accepted by the sink
    rewinds         atomic.Uint64 // wraps back to the first frame
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
    s.framesRead.Store(0)
    s.framesConverted.Store(0)
    s.framesDisplayed.Store(0)
    s.rewinds.Store(0)
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() map[string]uint64 {
    return map[string]uint64{
        "frames_read":      s.framesRead.Load(),
        "frames_converted": s.framesConverted.Load(),
        "frames_displayed": s.framesDisplayed.Load(),
        "rewinds":          s.rewinds.Load(),
    }
}

func (s *Stats) FramesDisplayed() uint64 { return s.framesDisplayed.Load() }
