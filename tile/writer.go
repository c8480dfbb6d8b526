package tile

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/bodgit/pixelrendr/library"
	"golang.org/x/image/draw"
)

var errNoSize = errors.New("tile: multiple sprite has no size")

// panel returns the named section of m as an image. Sections stretching
// across the sprite are width pixels wide, the others height pixels tall.
func panel(m *library.Multiple, name string, width, height int) (*image.NRGBA, error) {
	px, ok := m.Sprites[name]
	if !ok {
		return image.NewNRGBA(image.Rectangle{}), nil
	}
	if width <= 0 {
		if height <= 0 {
			return image.NewNRGBA(image.Rectangle{}), nil
		}
		width = len(px) / 4 / height
	}
	img, err := Image(px, width)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}

// Compose draws every section of m into a single image.
func Compose(m *library.Multiple) (*image.NRGBA, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return nil, errNoSize
	}
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))

	top, err := panel(m, library.Top, m.Width, 0)
	if err != nil {
		return nil, err
	}
	bottom, err := panel(m, library.Bottom, m.Width, 0)
	if err != nil {
		return nil, err
	}
	left, err := panel(m, library.Left, 0, m.Height)
	if err != nil {
		return nil, err
	}
	right, err := panel(m, library.Right, 0, m.Height)
	if err != nil {
		return nil, err
	}

	inner := image.Rect(left.Rect.Dx(), top.Rect.Dy(), m.Width-right.Rect.Dx(), m.Height-bottom.Rect.Dy())

	var middle *image.NRGBA
	if m.Direction == library.Vertical {
		middle, err = panel(m, library.Middle, inner.Dx(), 0)
	} else {
		middle, err = panel(m, library.Middle, 0, inner.Dy())
	}
	if err != nil {
		return nil, err
	}

	if mb := middle.Bounds(); !mb.Empty() && !inner.Empty() {
		if m.MiddleStretch {
			draw.NearestNeighbor.Scale(dst, inner, middle, mb, draw.Over, nil)
		} else {
			for y := inner.Min.Y; y < inner.Max.Y; y += mb.Dy() {
				for x := inner.Min.X; x < inner.Max.X; x += mb.Dx() {
					r := image.Rect(x, y, x+mb.Dx(), y+mb.Dy()).Intersect(inner)
					draw.Draw(dst, r, middle, image.Point{}, draw.Over)
				}
			}
		}
	}

	draw.Draw(dst, left.Rect, left, image.Point{}, draw.Over)
	draw.Draw(dst, right.Rect.Add(image.Pt(m.Width-right.Rect.Dx(), 0)), right, image.Point{}, draw.Over)
	draw.Draw(dst, top.Rect, top, image.Point{}, draw.Over)
	draw.Draw(dst, bottom.Rect.Add(image.Pt(0, m.Height-bottom.Rect.Dy())), bottom, image.Point{}, draw.Over)

	return dst, nil
}

// Encode writes r to w as a PNG. width is only used for plain sprites.
func Encode(w io.Writer, r library.Result, width int) error {
	var (
		m   *image.NRGBA
		err error
	)
	switch v := r.(type) {
	case library.Pixels:
		m, err = Image(v, width)
	case *library.Multiple:
		m, err = Compose(v)
	default:
		return fmt.Errorf("tile: cannot draw %T", r)
	}
	if err != nil {
		return err
	}
	return png.Encode(w, m)
}
