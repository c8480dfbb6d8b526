package pixelrendr

import (
	"context"
	"image"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bodgit/pixelrendr/palette"
	"go.uber.org/zap"
)

// mapping is an image reduced to indices of a local palette.
type mapping struct {
	local     []int
	digits    []string
	digitSize int
}

func (p *PixelRendr) extract(data interface{}, _ string, _ interface{}) (interface{}, error) {
	return palette.RawPixelData(data.(image.Image)), nil
}

// mapPalette matches every pixel against the default palette. Only the
// palette entries actually used make up the local palette.
func (p *PixelRendr) mapPalette(data interface{}, _ string, _ interface{}) (interface{}, error) {
	raw := data.([]byte)
	n := len(raw) / 4

	seen := make(map[palette.Pixel]int)
	indices := make([]int, n)
	for i := 0; i < n; i++ {
		var px palette.Pixel
		copy(px[:], raw[i*4:(i+1)*4])
		j, ok := seen[px]
		if !ok {
			if j, ok = p.index.Lookup(px); !ok {
				j = p.palette.Closest(px)
			}
			seen[px] = j
		}
		indices[i] = j
	}

	used := make(map[int]int)
	for _, j := range seen {
		used[j] = 0
	}
	m := mapping{
		local: make([]int, 0, len(used)),
	}
	for j := range used {
		m.local = append(m.local, j)
	}
	sort.Ints(m.local)
	for i, j := range m.local {
		used[j] = i
	}
	m.digitSize = palette.DigitSize(len(m.local))

	m.digits = make([]string, n)
	for i, j := range indices {
		m.digits[i] = palette.Digit(used[j], m.digitSize)
	}
	return m, nil
}

// combine writes the local palette header followed by the run length
// compressed digits.
func (p *PixelRendr) combine(data interface{}, _ string, _ interface{}) (interface{}, error) {
	m := data.(mapping)
	if len(m.digits) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("p[")
	for i, j := range m.local {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(j))
	}
	sb.WriteByte(']')

	threshold := int(math.Max(3, math.Round(4/float64(m.digitSize))))
	for i := 0; i < len(m.digits); {
		cur := m.digits[i]
		n := 1
		for i+n < len(m.digits) && m.digits[i+n] == cur {
			n++
		}
		if n > threshold {
			sb.WriteByte('x')
			sb.WriteString(cur)
			sb.WriteString(strconv.Itoa(n))
			sb.WriteByte(',')
		} else {
			sb.WriteString(strings.Repeat(cur, n))
		}
		i += n
	}
	return sb.String(), nil
}

// Encode returns the pixel string for img using the default palette. Colors
// missing from the palette are replaced by their closest match. If cb is not
// nil it is called with the result.
func (p *PixelRendr) Encode(img image.Image, cb EncodeCallback) (string, error) {
	p.mu.RLock()
	v, err := p.encoder.Process(img, "", nil)
	p.mu.RUnlock()
	if err != nil {
		return "", err
	}

	s := v.(string)
	p.logger.Debug("image encoded", zap.Stringer("bounds", img.Bounds()), zap.Int("length", len(s)))
	if cb != nil {
		cb(s, img)
	}
	return s, nil
}

// EncodeURI loads the image at uri with the configured ImageLoader and
// encodes it.
func (p *PixelRendr) EncodeURI(ctx context.Context, uri string, cb EncodeCallback) (string, error) {
	if p.loader == nil {
		return "", ErrNoLoader
	}
	img, err := p.loader.Load(ctx, uri)
	if err != nil {
		return "", err
	}
	return p.Encode(img, cb)
}
