package frame

import "fmt"

// Resolution of the source material. Frames on disk are always this size;
// nothing in the stream describes it.
const (
    SourceWidth  = 384
    SourceHeight = 216
)

// DefaultGeometry is the layout of the shipped video.
var DefaultGeometry = Geometry{Width: SourceWidth, Height: SourceHeight}

// Geometry describes one raw 4:2:0 planar frame: a Width*Height luma plane
// followed by U and V planes of (Width/2)*(Height/2) bytes each.
type Geometry struct {
    Width, Height int
}

func (g Geometry) LumaSize() int   { return g.Width * g.Height }
func (g Geometry) ChromaSize() int { return (g.Width / 2) * (g.Height / 2) }

// FrameSize is the byte stride between consecutive frames in the stream.
func (g Geometry) FrameSize() int { return g.LumaSize() + 2*g.ChromaSize() }

// Validate rejects layouts that cannot be 4:2:0 subsampled.
func (g Geometry) Validate() error {
    if g.Width <= 0 || g.Height <= 0 {
        return &ConfigError{Reason: fmt.Sprintf("degenerate geometry %s", g)}
    }
    if g.Width%2 != 0 || g.Height%2 != 0 {
        return &ConfigError{Reason: fmt.Sprintf("geometry %s is not 4:2:0 subsampleable", g)}
    }
    return nil
}

// Planes slices raw into its Y, U and V planes. raw must be FrameSize bytes.
func (g Geometry) Planes(raw []byte) (y, u, v []byte) {
    l, c := g.LumaSize(), g.ChromaSize()
    return raw[:l], raw[l : l+c], raw[l+c : l+2*c]
}

func (g Geometry) String() string { return fmt.Sprintf("%dx%d", g.Width, g.Height) }
