/*
Package tile assembles decoded sprites into images.

A plain sprite is a flat buffer of RGBA bytes, so it only needs a width to
become an image. A multiple sprite is a set of panels laid out around a
middle panel:

	+-------------------------+
	|           top           |
	+-------+---------+-------+
	| left  | middle  | right |
	+-------+---------+-------+
	|         bottom          |
	+-------------------------+

The middle panel fills whatever space the other panels leave, either repeated
or stretched to fit.
*/
package tile

import (
	"errors"
	"image"

	"github.com/bodgit/pixelrendr/library"
)

var errBadSize = errors.New("tile: buffer does not match width")

// Image returns px as an image width pixels wide.
func Image(px library.Pixels, width int) (*image.NRGBA, error) {
	if width <= 0 {
		if len(px) == 0 {
			return image.NewNRGBA(image.Rectangle{}), nil
		}
		return nil, errBadSize
	}

	rowSize := width * 4
	if len(px)%rowSize != 0 {
		return nil, errBadSize
	}

	m := image.NewNRGBA(image.Rect(0, 0, width, len(px)/rowSize))
	for y := 0; y < m.Rect.Dy(); y++ {
		library.Copy(px, m.Pix, y*rowSize, y*m.Stride, rowSize)
	}
	return m, nil
}
