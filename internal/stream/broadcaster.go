package stream

import (
    "sync"

    "github.com/pion/webrtc/v3/pkg/media"
)

// SampleBroadcaster fans encoded samples out to every attached track.
// Each track gets its own small queue so a slow peer doesn't hold up the
// encoder or the other peers.
type SampleBroadcaster struct {
    mu     sync.RWMutex
    sinks  map[*sink]struct{}
    closed bool
}

type sink struct {
    ch   chan media.Sample
    quit chan struct{}
    w    SampleWriter
}

const sinkQueue = 4

func NewSampleBroadcaster() *SampleBroadcaster {
    return &SampleBroadcaster{sinks: make(map[*sink]struct{})}
}

// Add attaches a track and returns the function that detaches it.
func (b *SampleBroadcaster) Add(w SampleWriter) (remove func()) {
    s := &sink{ch: make(chan media.Sample, sinkQueue), quit: make(chan struct{}), w: w}
    b.mu.Lock()
    if b.closed {
        b.mu.Unlock()
        return func() {}
    }
    b.sinks[s] = struct{}{}
    b.mu.Unlock()

    go func() {
        for {
            select {
            case sm := <-s.ch:
                _ = s.w.WriteSample(sm)
            case <-s.quit:
                return
            }
        }
    }()
    return func() {
        b.mu.Lock()
        if _, ok := b.sinks[s]; ok {
            delete(b.sinks, s)
            close(s.quit)
        }
        b.mu.Unlock()
    }
}

// WriteSample queues sm on every track, dropping it for tracks whose queue
// is full. It never blocks and never fails.
func (b *SampleBroadcaster) WriteSample(sm media.Sample) error {
    b.mu.RLock()
    for s := range b.sinks {
        select {
        case s.ch <- sm:
        default:
        }
    }
    b.mu.RUnlock()
    return nil
}

// Len reports how many tracks are attached.
func (b *SampleBroadcaster) Len() int {
    b.mu.RLock()
    defer b.mu.RUnlock()
    return len(b.sinks)
}

// Close detaches every track. Later Adds are no-ops.
func (b *SampleBroadcaster) Close() {
    b.mu.Lock()
    for s := range b.sinks {
        close(s.quit)
        delete(b.sinks, s)
    }
    b.closed = true
    b.mu.Unlock()
}
