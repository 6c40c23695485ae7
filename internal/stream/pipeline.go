package stream

import (
    "fmt"
    "io"
    "os/exec"
    "sync/atomic"
    "time"

    "github.com/pion/webrtc/v3/pkg/media"
    "github.com/pkg/errors"
    log "github.com/sirupsen/logrus"

    "rawplay/internal/display"
    "rawplay/internal/yuv"
)

// SampleWriter is anything that accepts encoded samples, typically a
// *webrtc.TrackLocalStaticSample or a SampleBroadcaster.
type SampleWriter interface {
    WriteSample(media.Sample) error
}

// EncoderConfig sizes the H.264 encoder.
type EncoderConfig struct {
    Width, Height int
    // FPS is the nominal rate stamped on samples; the encoder does not pace.
    FPS int
}

// EncoderSink is a display.Sink that encodes every blitted frame to H.264
// with ffmpeg and writes the access units to a SampleWriter.
type EncoderSink struct {
    cfg     EncoderConfig
    out     SampleWriter
    cmd     *exec.Cmd
    stdin   io.WriteCloser
    stdout  io.ReadCloser
    scratch []byte
    stopped int32
    samples atomic.Uint64
    done    chan struct{}
}

var _ display.Sink = (*EncoderSink)(nil)

// StartEncoder starts ffmpeg reading rgb24 frames from stdin and emitting
// AnnexB H.264 on stdout.
func StartEncoder(cfg EncoderConfig, out SampleWriter) (*EncoderSink, error) {
    if cfg.FPS <= 0 { cfg.FPS = 30 }
    if cfg.Width <= 0 || cfg.Height <= 0 {
        return nil, errors.Errorf("invalid encoder size %dx%d", cfg.Width, cfg.Height)
    }
    // yuv420p output needs even dimensions.
    if cfg.Width%2 != 0 || cfg.Height%2 != 0 {
        return nil, errors.Errorf("encoder size %dx%d must be even", cfg.Width, cfg.Height)
    }
    e := &EncoderSink{cfg: cfg, out: out, scratch: make([]byte, cfg.Width*cfg.Height*3), done: make(chan struct{})}
    if err := e.start(); err != nil { return nil, err }
    return e, nil
}

func encoderArgs(cfg EncoderConfig) []string {
    return []string{
        "-hide_banner", "-loglevel", "error",
        "-f", "rawvideo",
        "-pix_fmt", "rgb24",
        "-s:v", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
        "-r", fmt.Sprint(cfg.FPS),
        "-i", "-",
        "-an",
        "-c:v", "libx264",
        "-preset", "veryfast",
        "-tune", "zerolatency",
        "-x264-params", "aud=1",
        "-pix_fmt", "yuv420p",
        "-f", "h264",
        "-",
    }
}

func (e *EncoderSink) start() error {
    cmd := exec.Command("ffmpeg", encoderArgs(e.cfg)...)
    stdin, err := cmd.StdinPipe()
    if err != nil { return errors.Wrap(err, "ffmpeg stdin") }
    stdout, err := cmd.StdoutPipe()
    if err != nil { return errors.Wrap(err, "ffmpeg stdout") }
    if err := cmd.Start(); err != nil { return errors.Wrap(err, "start ffmpeg") }
    e.cmd, e.stdin, e.stdout = cmd, stdin, stdout
    log.Printf("H.264 encoder started (%dx%d @ %d fps)", e.cfg.Width, e.cfg.Height, e.cfg.FPS)

    go e.readLoop()
    return nil
}

// readLoop turns ffmpeg output into samples until stdout closes.
func (e *EncoderSink) readLoop() {
    defer close(e.done)
    r := newAccessUnitReader(e.stdout)
    dur := time.Second / time.Duration(e.cfg.FPS)
    for {
        au, err := r.Next()
        if err != nil {
            if !errors.Is(err, io.EOF) && atomic.LoadInt32(&e.stopped) == 0 {
                log.Printf("encoder output: %v", err)
            }
            return
        }
        if len(au) == 0 { continue }
        if err := e.out.WriteSample(media.Sample{Data: au, Duration: dur}); err == nil {
            e.samples.Add(1)
        }
    }
}

func (e *EncoderSink) Resolution() (int, int) { return e.cfg.Width, e.cfg.Height }

// Blit feeds one full frame to the encoder. It blocks while ffmpeg is busy,
// which is what paces an unthrottled render loop.
func (e *EncoderSink) Blit(pixels []yuv.Pixel, dst display.Rect) error {
    if atomic.LoadInt32(&e.stopped) != 0 {
        return &display.SinkError{Op: "blit", Err: errors.New("encoder stopped")}
    }
    if dst != (display.Rect{W: e.cfg.Width, H: e.cfg.Height}) || len(pixels) != e.cfg.Width*e.cfg.Height {
        return &display.SinkError{Op: "blit", Err: errors.Errorf("frame does not cover the %dx%d encoder surface", e.cfg.Width, e.cfg.Height)}
    }
    n := yuv.PackRGB24(pixels, e.scratch)
    if _, err := e.stdin.Write(e.scratch[:n]); err != nil {
        return &display.SinkError{Op: "encode", Err: err}
    }
    return nil
}

// Samples is the number of access units handed to the SampleWriter.
func (e *EncoderSink) Samples() uint64 { return e.samples.Load() }

// Stop terminates ffmpeg. Safe to call more than once.
func (e *EncoderSink) Stop() {
    if !atomic.CompareAndSwapInt32(&e.stopped, 0, 1) { return }
    _ = e.stdin.Close()
    if e.cmd.Process != nil { _ = e.cmd.Process.Kill() }
    // Drain the reader before Wait closes the stdout pipe under it.
    <-e.done
    _ = e.cmd.Wait()
}
