package loader

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	m := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	m.Set(1, 1, color.NRGBA{255, 0, 0, 255})

	f, err := os.Create(filepath.Join(dir, "sprite.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, m))
	require.NoError(t, f.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.png"), []byte("nope"), 0o644))

	l := File{Dir: dir}

	img, err := l.Load(context.Background(), "sprite.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0, 0xffff}, []uint32{r, g, b, a})

	img, err = File{}.Load(context.Background(), filepath.Join(dir, "sprite.png"))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, err = l.Load(context.Background(), "missing.png")
	assert.True(t, os.IsNotExist(err))

	_, err = l.Load(context.Background(), "bad.png")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Load(ctx, "sprite.png")
	assert.Equal(t, context.Canceled, err)
}
