package stream

import (
    "bytes"
    "io"
    "sync"
    "testing"
    "time"

    "github.com/pion/webrtc/v3/pkg/media"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestAccessUnitReaderSplitsOnAUD(t *testing.T) {
    aud := []byte{0x09, 0xF0}
    sps := []byte{0x67, 0x42, 0x1E}
    idr := []byte{0x65, 0x88, 0x84}
    slice := []byte{0x41, 0x9A, 0x01}

    var in bytes.Buffer
    in.Write([]byte{0, 0, 0, 1}); in.Write(aud)
    in.Write([]byte{0, 0, 0, 1}); in.Write(sps)
    in.Write([]byte{0, 0, 1}); in.Write(idr)
    in.Write([]byte{0, 0, 0, 1}); in.Write(aud)
    in.Write([]byte{0, 0, 0, 1}); in.Write(slice)

    r := newAccessUnitReader(&in)
    au, err := r.Next()
    require.NoError(t, err)
    want := appendNAL(appendNAL(appendNAL(nil, aud), sps), idr)
    assert.Equal(t, want, au)

    au, err = r.Next()
    require.NoError(t, err)
    assert.Equal(t, appendNAL(appendNAL(nil, aud), slice), au)

    _, err = r.Next()
    assert.ErrorIs(t, err, io.EOF)
}

func TestReadNextAnnexBNALSkipsGarbage(t *testing.T) {
    r := newAccessUnitReader(bytes.NewReader([]byte{0xFF, 0x00, 0x07, 0, 0, 1, 0x41, 0x00, 0x02, 0, 0, 0, 1, 0x41, 0x05})).r
    nal, err := readNextAnnexBNAL(r)
    require.NoError(t, err)
    assert.Equal(t, []byte{0x41, 0x00, 0x02}, nal)

    nal, err = readNextAnnexBNAL(r)
    assert.ErrorIs(t, err, io.EOF)
    assert.Equal(t, []byte{0x41, 0x05}, nal)
}

type recordingTrack struct {
    mu  sync.Mutex
    got [][]byte
}

func (r *recordingTrack) WriteSample(s media.Sample) error {
    r.mu.Lock()
    r.got = append(r.got, s.Data)
    r.mu.Unlock()
    return nil
}

func (r *recordingTrack) count() int {
    r.mu.Lock()
    defer r.mu.Unlock()
    return len(r.got)
}

func TestSampleBroadcaster(t *testing.T) {
    b := NewSampleBroadcaster()
    a, c := &recordingTrack{}, &recordingTrack{}
    removeA := b.Add(a)
    b.Add(c)
    assert.Equal(t, 2, b.Len())

    require.NoError(t, b.WriteSample(media.Sample{Data: []byte{1}}))
    assert.Eventually(t, func() bool { return a.count() == 1 && c.count() == 1 }, time.Second, 5*time.Millisecond)

    removeA()
    removeA()
    assert.Equal(t, 1, b.Len())
    require.NoError(t, b.WriteSample(media.Sample{Data: []byte{2}}))
    assert.Eventually(t, func() bool { return c.count() == 2 }, time.Second, 5*time.Millisecond)
    assert.Equal(t, 1, a.count())

    b.Close()
    assert.Equal(t, 0, b.Len())
    b.Add(a)
    assert.Equal(t, 0, b.Len())
}

func TestStartEncoderRejectsBadSizes(t *testing.T) {
    _, err := StartEncoder(EncoderConfig{Width: 0, Height: 10}, NewSampleBroadcaster())
    assert.Error(t, err)
    _, err = StartEncoder(EncoderConfig{Width: 641, Height: 360}, NewSampleBroadcaster())
    assert.Error(t, err)
}

func TestEncoderArgs(t *testing.T) {
    args := encoderArgs(EncoderConfig{Width: 640, Height: 360, FPS: 25})
    assert.Contains(t, args, "640x360")
    assert.Contains(t, args, "25")
    assert.Contains(t, args, "rgb24")
    assert.Equal(t, "-", args[len(args)-1])
}
