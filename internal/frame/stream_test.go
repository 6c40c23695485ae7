package frame

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestFileStream(t *testing.T) {
    path := filepath.Join(t.TempDir(), "VIDEO_BYTES")
    require.NoError(t, os.WriteFile(path, makeStream(tiny, 2, 3), 0o644))

    fs, err := OpenFile(path)
    require.NoError(t, err)

    size, err := fs.Size()
    require.NoError(t, err)
    assert.Equal(t, int64(27), size)

    s, err := NewSource(fs, tiny)
    require.NoError(t, err)
    assert.Equal(t, 2, s.FrameCount())

    f, err := s.Next()
    require.NoError(t, err)
    assert.Equal(t, byte(1), f[11])
    assert.NoError(t, s.Close())
}

func TestOpenFileMissing(t *testing.T) {
    _, err := OpenFile(filepath.Join(t.TempDir(), "nope"))
    require.Error(t, err)
    assert.ErrorIs(t, err, os.ErrNotExist)
}
