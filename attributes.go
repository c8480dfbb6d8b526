package pixelrendr

import "fmt"

// Attributes describe how a sprite is to be expanded. Which names hold the
// width, height and flip flags is set by Settings.
type Attributes map[string]interface{}

// Number returns the named attribute as an int, or zero.
func (a Attributes) Number(name string) int {
	switch v := a[name].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Bool returns the named attribute as a bool. Non-zero numbers are true.
func (a Attributes) Bool(name string) bool {
	switch v := a[name].(type) {
	case bool:
		return v
	case nil:
		return false
	default:
		return a.Number(name) != 0
	}
}

// dimensions are the attributes the dimension pipeline works from.
type dimensions struct {
	width     int
	height    int
	flipHoriz bool
	flipVert  bool
}

func (d dimensions) key() string {
	return fmt.Sprintf("%dx%d,%t,%t", d.width, d.height, d.flipHoriz, d.flipVert)
}

func (p *PixelRendr) dimensions(a Attributes) dimensions {
	return dimensions{
		width:     a.Number(p.spriteWidth),
		height:    a.Number(p.spriteHeight),
		flipHoriz: a.Bool(p.flipHoriz),
		flipVert:  a.Bool(p.flipVert),
	}
}
