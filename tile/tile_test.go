package tile

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/bodgit/pixelrendr/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colors = [][4]byte{
	{0, 0, 0, 0},
	{255, 255, 255, 255},
	{0, 0, 0, 255},
	{255, 0, 0, 255},
}

func pix(indices ...int) library.Pixels {
	b := make(library.Pixels, 0, len(indices)*4)
	for _, i := range indices {
		b = append(b, colors[i][:]...)
	}
	return b
}

func TestImage(t *testing.T) {
	m, err := Image(pix(1, 2, 3, 1, 2, 3), 3)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), m.Rect)
	assert.Equal(t, []byte(pix(1, 2, 3, 1, 2, 3)), m.Pix)

	_, err = Image(pix(1, 2, 3), 2)
	assert.Error(t, err)

	m, err = Image(nil, 0)
	require.NoError(t, err)
	assert.True(t, m.Rect.Empty())
}

func TestCompose(t *testing.T) {
	tables := []struct {
		name     string
		multiple *library.Multiple
		pixels   library.Pixels
	}{
		{
			"vertical",
			&library.Multiple{
				Sprites: map[string]library.Pixels{
					library.Top:    pix(1, 1),
					library.Middle: pix(2, 3),
					library.Bottom: pix(3, 3),
				},
				Direction: library.Vertical,
				Width:     2,
				Height:    4,
			},
			pix(
				1, 1,
				2, 3,
				2, 3,
				3, 3,
			),
		},
		{
			"tiled",
			&library.Multiple{
				Sprites: map[string]library.Pixels{
					library.Left:   pix(1),
					library.Right:  pix(1),
					library.Middle: pix(2, 3),
				},
				Direction: library.Horizontal,
				Width:     6,
				Height:    1,
			},
			pix(1, 2, 3, 2, 3, 1),
		},
		{
			"partial",
			&library.Multiple{
				Sprites: map[string]library.Pixels{
					library.Middle: pix(2, 3),
				},
				Direction: library.Horizontal,
				Width:     3,
				Height:    1,
			},
			pix(2, 3, 2),
		},
		{
			"stretched",
			&library.Multiple{
				Sprites: map[string]library.Pixels{
					library.Left:   pix(1),
					library.Right:  pix(1),
					library.Middle: pix(2, 3),
				},
				Direction:     library.Horizontal,
				MiddleStretch: true,
				Width:         6,
				Height:        1,
			},
			pix(1, 2, 2, 3, 3, 1),
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			m, err := Compose(table.multiple)
			require.NoError(t, err)
			assert.Equal(t, []byte(table.pixels), m.Pix)
		})
	}

	_, err := Compose(&library.Multiple{})
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, pix(1, 2, 3, 1), 2))

	m, err := png.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), m.Bounds())

	assert.Error(t, Encode(buf, &library.Directory{}, 2))
}
