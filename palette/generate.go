package palette

import (
	"image"
	"image/color"
	"sort"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

var transparent = Pixel{0, 0, 0, 0}

// RawPixelData draws m onto an off-screen NRGBA image anchored at (0, 0) and
// returns its interleaved RGBA bytes. Fully transparent pixels are always
// [0, 0, 0, 0]. m is never modified.
func RawPixelData(m image.Image) []byte {
	b := m.Bounds()
	var data []byte
	if nm, ok := m.(*image.NRGBA); ok && nm.Rect.Min == (image.Point{}) && nm.Stride == 4*b.Dx() {
		data = append([]byte(nil), nm.Pix[:4*b.Dx()*b.Dy()]...)
	} else {
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
		data = dst.Pix
	}
	for i := 0; i+3 < len(data); i += 4 {
		if data[i+3] == 0 {
			data[i], data[i+1], data[i+2] = 0, 0, 0
		}
	}
	return data
}

func countColors(data []byte) map[Pixel]int {
	colors := make(map[Pixel]int)
	for i := 0; i+3 < len(data); i += 4 {
		colors[Pixel{data[i], data[i+1], data[i+2], data[i+3]}]++
	}
	return colors
}

// FromRawPixelData builds a palette from interleaved RGBA bytes.
//
// A single transparent entry comes first if any pixel has zero alpha or
// forceZeroColor is set. Grayscale entries follow from light to dark, then all
// other entries ordered by descending red, green and blue. The ordering only
// depends on which colors are present, never on how often they occur.
func FromRawPixelData(data []byte, forceZeroColor bool) Palette {
	var grays, others Palette
	hasZero := forceZeroColor
	for px := range countColors(data) {
		switch {
		case px[3] == 0:
			hasZero = true
		case px.Gray():
			grays = append(grays, px)
		default:
			others = append(others, px)
		}
	}

	sort.Slice(grays, func(i, j int) bool {
		if grays[i][0] != grays[j][0] {
			return grays[i][0] > grays[j][0]
		}
		return grays[i][3] > grays[j][3]
	})
	sort.Slice(others, func(i, j int) bool {
		for c := 0; c < 4; c++ {
			if others[i][c] != others[j][c] {
				return others[i][c] > others[j][c]
			}
		}
		return false
	})

	p := make(Palette, 0, len(grays)+len(others)+1)
	if hasZero {
		p = append(p, transparent)
	}
	p = append(p, grays...)
	return append(p, others...)
}

// Generate builds a palette of at most max colors from m. Images with more
// distinct colors are reduced with a median cut quantizer first.
func Generate(m image.Image, max int, forceZeroColor bool) Palette {
	data := RawPixelData(m)
	if max <= 0 || len(countColors(data)) <= max {
		return FromRawPixelData(data, forceZeroColor)
	}

	// Leave room for the transparent entry
	n := max
	if forceZeroColor {
		n--
	}

	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	return FromRawPixelData(RawPixelData(pm), forceZeroColor)
}
