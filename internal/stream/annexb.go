package stream

import (
    "bufio"
    "io"

    "github.com/pkg/errors"
)

var annexBStartCode = []byte{0x00, 0x00, 0x00, 0x01}

const (
    nalTypeAUD    = 9
    maxAccessUnit = 1 << 20
)

// accessUnitReader groups an AnnexB byte stream into access units, using
// access unit delimiters as boundaries.
type accessUnitReader struct {
    r       *bufio.Reader
    pending []byte // AUD that opened the next unit
}

func newAccessUnitReader(r io.Reader) *accessUnitReader {
    br, ok := r.(*bufio.Reader)
    if !ok { br = bufio.NewReaderSize(r, 1<<20) }
    return &accessUnitReader{r: br}
}

// Next returns the next access unit with 4-byte start codes before each NAL.
func (a *accessUnitReader) Next() ([]byte, error) {
    var au []byte
    if a.pending != nil {
        au = appendNAL(au, a.pending)
        a.pending = nil
    }
    for {
        nal, err := readNextAnnexBNAL(a.r)
        if len(nal) > 0 {
            if nal[0]&0x1F == nalTypeAUD && len(au) > 0 {
                a.pending = nal
                return au, nil
            }
            au = appendNAL(au, nal)
            if len(au) > maxAccessUnit { return au, nil }
        }
        if err != nil {
            if errors.Is(err, io.EOF) && len(au) > 0 { return au, nil }
            return nil, err
        }
    }
}

func appendNAL(au, nal []byte) []byte {
    au = append(au, annexBStartCode...)
    return append(au, nal...)
}

// readNextAnnexBNAL skips to the next 3- or 4-byte start code and returns
// the NAL payload up to the following start code or EOF. At EOF the final
// payload is returned together with io.EOF.
func readNextAnnexBNAL(r *bufio.Reader) ([]byte, error) {
    zeros := 0
    for started := false; !started; {
        b, err := r.ReadByte()
        if err != nil { return nil, err }
        switch {
        case b == 0:
            zeros++
        case b == 1 && zeros >= 2:
            started = true
        default:
            zeros = 0
        }
    }
    var nal []byte
    for {
        if p, _ := r.Peek(3); len(p) == 3 && p[0] == 0 && p[1] == 0 && p[2] == 1 {
            return trimTrailingZeros(nal), nil
        }
        b, err := r.ReadByte()
        if err != nil {
            return trimTrailingZeros(nal), err
        }
        nal = append(nal, b)
    }
}

// A 4-byte start code leaves its leading zero on the previous NAL.
func trimTrailingZeros(b []byte) []byte {
    for len(b) > 0 && b[len(b)-1] == 0 { b = b[:len(b)-1] }
    return b
}
