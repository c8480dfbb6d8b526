package pixelrendr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bodgit/pixelrendr/library"
	"github.com/bodgit/pixelrendr/palette"
)

func malformed(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", library.ErrMalformed, fmt.Sprintf(format, v...))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// lookup converts a digit group into a default palette index, via the local
// palette ref if there is one.
func (p *PixelRendr) lookup(ref []int, group string) (int, error) {
	if !isDigits(group) {
		return 0, malformed("bad digit group %q", group)
	}
	i, err := strconv.Atoi(group)
	if err != nil {
		return 0, malformed("bad digit group %q", group)
	}
	if ref != nil {
		if i >= len(ref) {
			return 0, malformed("index %d outside local palette of %d colors", i, len(ref))
		}
		i = ref[i]
	}
	if i >= len(p.palette) {
		return 0, malformed("index %d outside palette of %d colors", i, len(p.palette))
	}
	return i, nil
}

// unravel rewrites a pixel string as plain digit groups of the default
// palette digit size.
func (p *PixelRendr) unravel(data interface{}, _ string, _ interface{}) (interface{}, error) {
	colors := data.(string)

	var (
		ref  []int
		size = p.digitSize
		sb   strings.Builder
	)
	sb.Grow(len(colors))

	for loc := 0; loc < len(colors); {
		switch colors[loc] {
		case 'x':
			loc++
			if loc+size > len(colors) {
				return nil, malformed("repeat at %d has no color", loc-1)
			}
			i, err := p.lookup(ref, colors[loc:loc+size])
			if err != nil {
				return nil, err
			}
			loc += size
			end := strings.IndexByte(colors[loc:], ',')
			if end < 0 {
				return nil, malformed("repeat at %d is not terminated", loc)
			}
			count := colors[loc : loc+end]
			if !isDigits(count) {
				return nil, malformed("bad repeat count %q", count)
			}
			n, err := strconv.Atoi(count)
			if err != nil {
				return nil, malformed("bad repeat count %q", count)
			}
			sb.WriteString(strings.Repeat(palette.Digit(i, p.digitSize), n))
			loc += end + 1
		case 'p':
			loc++
			if loc < len(colors) && colors[loc] == '[' {
				end := strings.IndexByte(colors[loc:], ']')
				if end < 0 {
					return nil, malformed("palette at %d is not terminated", loc-1)
				}
				entries := strings.Split(colors[loc+1:loc+end], ",")
				ref = make([]int, len(entries))
				for i, e := range entries {
					j, err := p.lookup(nil, e)
					if err != nil {
						return nil, err
					}
					ref[i] = j
				}
				size = palette.DigitSize(len(ref))
				loc += end + 1
			} else {
				ref, size = nil, p.digitSize
			}
		default:
			if loc+size > len(colors) {
				return nil, malformed("short digit group at %d", loc)
			}
			i, err := p.lookup(ref, colors[loc:loc+size])
			if err != nil {
				return nil, err
			}
			sb.WriteString(palette.Digit(i, p.digitSize))
			loc += size
		}
	}

	return sb.String(), nil
}

// expand repeats every digit group scale times.
func (p *PixelRendr) expand(data interface{}, _ string, _ interface{}) (interface{}, error) {
	digits := data.(string)
	if p.scale == 1 {
		return digits, nil
	}

	var sb strings.Builder
	sb.Grow(len(digits) * p.scale)
	for i := 0; i+p.digitSize <= len(digits); i += p.digitSize {
		sb.WriteString(strings.Repeat(digits[i:i+p.digitSize], p.scale))
	}
	return sb.String(), nil
}

func (p *PixelRendr) filter(data interface{}, _ string, attrs interface{}) (interface{}, error) {
	f, _ := attrs.(*palette.Filter)
	return f.Apply(data.(string), p.digitSize), nil
}

// pixels converts digit groups to RGBA bytes.
func (p *PixelRendr) pixels(data interface{}, _ string, _ interface{}) (interface{}, error) {
	digits := data.(string)
	n := len(digits) / p.digitSize

	buf := p.newBuffer(n * 4)
	for i := 0; i < n; i++ {
		group := digits[i*p.digitSize : (i+1)*p.digitSize]
		j, err := strconv.Atoi(group)
		if err != nil || j < 0 || j >= len(p.palette) {
			return nil, malformed("index %q outside palette", group)
		}
		copy(buf[i*4:], p.palette[j][:])
	}
	return library.Pixels(buf), nil
}

// repeatRows copies every source row scale times so the sprite is as tall as
// requested.
func (p *PixelRendr) repeatRows(data interface{}, _ string, attrs interface{}) (interface{}, error) {
	src := data.(library.Pixels)
	d := attrs.(dimensions)
	if d.width <= 0 || d.height <= 0 {
		return library.Pixels(p.newBuffer(0)), nil
	}

	rowSize := d.width * 4
	rows := d.height / p.scale
	dst := p.newBuffer(rowSize * rows * p.scale)

	readloc, writeloc := 0, 0
	for y := 0; y < rows; y++ {
		for i := 0; i < p.scale; i++ {
			library.Copy(src, dst, readloc, writeloc, rowSize)
			writeloc += rowSize
		}
		readloc += rowSize
	}
	return library.Pixels(dst), nil
}

// flip mirrors the sprite. The input is left untouched as it is cached by
// the previous step.
func (p *PixelRendr) flip(data interface{}, _ string, attrs interface{}) (interface{}, error) {
	src := data.(library.Pixels)
	d := attrs.(dimensions)
	if (!d.flipHoriz && !d.flipVert) || len(src) == 0 || d.width <= 0 {
		return src, nil
	}

	n := len(src) / 4
	dst := p.newBuffer(len(src))

	switch {
	case d.flipHoriz && d.flipVert:
		for i := 0; i < n; i++ {
			copy(dst[(n-1-i)*4:(n-i)*4], src[i*4:(i+1)*4])
		}
	case d.flipHoriz:
		rowSize := d.width * 4
		for y := 0; y+rowSize <= len(src); y += rowSize {
			for x := 0; x < d.width; x++ {
				copy(dst[y+(d.width-1-x)*4:y+(d.width-x)*4], src[y+x*4:y+(x+1)*4])
			}
		}
	default:
		rowSize := d.width * 4
		rows := len(src) / rowSize
		for y := 0; y < rows; y++ {
			library.Copy(src, dst, y*rowSize, (rows-1-y)*rowSize, rowSize)
		}
	}
	return library.Pixels(dst), nil
}
