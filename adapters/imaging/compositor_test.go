package imaging

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"designspace/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestPNGCompositor_Composite(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{A: 0})                          // transparent
	src.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255}) // opaque
	srcPath := filepath.Join(dir, "face_001.png")
	writePNG(t, srcPath, src)

	dst := filepath.Join(dir, "out", "face_001_red.png")
	c := NewPNGCompositor()
	require.NoError(t, c.Composite(context.Background(), srcPath, dst, color.RGBA{R: 255, A: 255}))

	out := readPNG(t, dst)
	assert.Equal(t, image.Rect(0, 0, 2, 1), out.Bounds())

	r, g, b, a := out.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0, 0xffff}, []uint32{r, g, b, a})

	r, g, b, _ = out.At(1, 0).RGBA()
	assert.Equal(t, []uint32{10 * 0x101, 20 * 0x101, 30 * 0x101}, []uint32{r, g, b})
}

func TestPNGCompositor_List(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	writePNG(t, filepath.Join(dir, "face_002.png"), img)
	writePNG(t, filepath.Join(dir, "face_001.png"), img)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	c := NewPNGCompositor()
	paths, err := c.List(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "face_001.png"), filepath.Join(dir, "face_002.png")}, paths)

	_, err = c.List(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, core.ErrInputNotFound)
}

func TestPNGCompositor_BadInput(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))

	err := NewPNGCompositor().Composite(context.Background(), bad, filepath.Join(dir, "x.png"), color.RGBA{B: 255, A: 255})
	assert.Error(t, err)
}
