package yuv

import (
    "strings"

    "github.com/pkg/errors"
)

// Narrowing selects how an out-of-range channel value becomes a byte. Both
// modes first truncate toward zero.
type Narrowing int

const (
    // Saturate clamps to [0, 255].
    Saturate Narrowing = iota
    // Wrap keeps the low eight bits, reproducing the colour wraparound of
    // a plain integer narrowing on saturated content.
    Wrap
)

func (n Narrowing) narrow(f float32) uint8 {
    if n == Wrap {
        return uint8(int32(f))
    }
    if f <= 0 { return 0 }
    if f >= 255 { return 255 }
    return uint8(f)
}

func (n Narrowing) String() string {
    switch n {
    case Saturate:
        return "saturate"
    case Wrap:
        return "wrap"
    }
    return "unknown"
}

// ParseNarrowing accepts "saturate" or "wrap"; empty means Saturate.
func ParseNarrowing(s string) (Narrowing, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "", "saturate":
        return Saturate, nil
    case "wrap":
        return Wrap, nil
    }
    return Saturate, errors.Errorf("unknown narrowing %q", s)
}
