package yuv

// PackRGB24 serialises pixels as consecutive R, G, B bytes into dst, which
// must hold at least 3*len(pixels) bytes. It returns the bytes written.
func PackRGB24(pixels []Pixel, dst []byte) int {
    if len(dst) < len(pixels)*3 { return 0 }
    for i, p := range pixels {
        o := i * 3
        dst[o+0] = p.R
        dst[o+1] = p.G
        dst[o+2] = p.B
    }
    return len(pixels) * 3
}
