/*
Package palette implements the color palettes shared by the sprite decoder and
encoder.

A palette is an ordered list of unique RGBA pixels and a pixel is referenced by
its position in that list. Sprite strings print every index with the same
number of decimal digits, the digit size, so that a flat run of digits can be
split back into indices without separators.
*/
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var errBadPixel = errors.New("palette: invalid pixel")

// Pixel is a single non-premultiplied red, green, blue and alpha color.
type Pixel [4]uint8

// RGBA implements the color.Color interface.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{p[0], p[1], p[2], p[3]}.RGBA()
}

// Gray reports whether the red, green and blue channels are equal.
func (p Pixel) Gray() bool {
	return p[0] == p[1] && p[1] == p[2]
}

func (p Pixel) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", p[0], p[1], p[2], p[3])
}

// ParsePixel parses the "r,g,b,a" form returned by Pixel.String.
func ParsePixel(s string) (Pixel, error) {
	var p Pixel
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return p, fmt.Errorf("%w: %q", errBadPixel, s)
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return p, fmt.Errorf("%w: %q", errBadPixel, s)
		}
		p[i] = uint8(v)
	}
	return p, nil
}

// Palette is an ordered list of unique pixels.
type Palette []Pixel

// DigitSize returns how many decimal digits are needed to print the largest
// index of a palette with n entries. It is never less than one.
func DigitSize(n int) int {
	size := 1
	for n--; n >= 10; n /= 10 {
		size++
	}
	return size
}

// DigitSize returns the digit size for the palette.
func (p Palette) DigitSize() int {
	return DigitSize(len(p))
}

// IndexOf returns the index of the exact pixel, if present.
func (p Palette) IndexOf(px Pixel) (int, bool) {
	for i, c := range p {
		if c == px {
			return i, true
		}
	}
	return 0, false
}

func absDiff(x, y uint8) int {
	if x > y {
		return int(x - y)
	}
	return int(y - x)
}

// Closest returns the index of the palette entry with the smallest sum of
// absolute channel differences to px. Ties go to the earliest entry.
func (p Palette) Closest(px Pixel) int {
	best, bestSum := 0, -1
	for i, c := range p {
		sum := absDiff(c[0], px[0]) + absDiff(c[1], px[1]) + absDiff(c[2], px[2]) + absDiff(c[3], px[3])
		if bestSum < 0 || sum < bestSum {
			best, bestSum = i, sum
		}
	}
	return best
}

// Validate checks the palette is not empty and holds no duplicates.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return errors.New("palette: empty palette")
	}
	seen := make(map[Pixel]int, len(p))
	for i, c := range p {
		if j, ok := seen[c]; ok {
			return fmt.Errorf("palette: duplicate pixel %v at %d and %d", c, j, i)
		}
		seen[c] = i
	}
	return nil
}

// ColorPalette converts p to a color.Palette.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// Index maps pixels to their palette index.
type Index struct {
	indices   map[Pixel]int
	digitSize int
}

// NewIndex builds an Index for p.
func NewIndex(p Palette) *Index {
	idx := &Index{
		indices:   make(map[Pixel]int, len(p)),
		digitSize: p.DigitSize(),
	}
	for i, c := range p {
		if _, ok := idx.indices[c]; !ok {
			idx.indices[c] = i
		}
	}
	return idx
}

// Lookup returns the index of px, if present.
func (idx *Index) Lookup(px Pixel) (int, bool) {
	i, ok := idx.indices[px]
	return i, ok
}

// DigitSize returns the digit size of the indexed palette.
func (idx *Index) DigitSize() int {
	return idx.digitSize
}

// Digit formats i zero padded to size digits.
func Digit(i, size int) string {
	return fmt.Sprintf("%0*d", size, i)
}
