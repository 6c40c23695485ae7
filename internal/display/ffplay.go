package display

import (
    "fmt"
    "io"
    "os"
    "os/exec"

    "github.com/pkg/errors"
    log "github.com/sirupsen/logrus"
)

// FFplaySink shows frames in an ffplay window by piping rawvideo to its stdin.
type FFplaySink struct {
    *RawSink
    pipe io.WriteCloser
    cmd  *exec.Cmd
}

// StartFFplay launches ffplay for a width x height rgb24 stream.
func StartFFplay(width, height int, title string) (*FFplaySink, error) {
    ffplayPath, err := exec.LookPath("ffplay")
    if err != nil {
        return nil, errors.New("ffplay not found in your PATH")
    }
    cmd := exec.Command(ffplayPath, ffplayArgs(width, height, title)...)
    stdin, err := cmd.StdinPipe()
    if err != nil {
        return nil, errors.Wrap(err, "ffplay stdin")
    }
    cmd.Stderr = os.Stderr
    if err := cmd.Start(); err != nil {
        return nil, errors.Wrap(err, "start ffplay")
    }
    log.Printf("ffplay started (%dx%d)", width, height)
    return &FFplaySink{RawSink: NewRawSink(stdin, width, height), pipe: stdin, cmd: cmd}, nil
}

func ffplayArgs(width, height int, title string) []string {
    return []string{
        "-f", "rawvideo",
        "-pixel_format", "rgb24",
        "-video_size", fmt.Sprintf("%dx%d", width, height),
        "-i", "-",
        "-window_title", title,
        "-fflags", "nobuffer",
        "-flags", "low_delay",
        "-loglevel", "error",
    }
}

// Close stops the ffplay process.
func (f *FFplaySink) Close() error {
    _ = f.pipe.Close()
    if f.cmd.Process != nil {
        _ = f.cmd.Process.Kill()
    }
    _ = f.cmd.Wait()
    return nil
}
