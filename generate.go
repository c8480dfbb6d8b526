package pixelrendr

import (
	"fmt"

	"github.com/bodgit/pixelrendr/library"
	"github.com/bodgit/pixelrendr/palette"
	"go.uber.org/zap"
)

// generate returns the sprite r produces for d, generating and caching it if
// necessary. key is the lookup key that led to r.
func (p *PixelRendr) generate(r *library.Render, key string, d dimensions) (library.Result, error) {
	sig := d.key()
	if s, ok := r.Sprites[sig]; ok {
		p.logger.Debug("sprite cache hit", zap.String("key", key), zap.String("attributes", sig))
		return s, nil
	}

	if _, ok := p.resolving[r]; ok {
		return nil, fmt.Errorf("%w: %q", ErrCycle, key)
	}
	p.resolving[r] = struct{}{}
	defer delete(p.resolving, r)

	var (
		s   library.Result
		err error
	)
	switch src := r.Source.(type) {
	case library.PixelString:
		s, err = p.generateSingle(r.Filter, src, d)
	case library.MultipleCommand:
		s, err = p.generateMultiple(r.Filter, src, d)
	case library.SameCommand:
		// The Render is replaced so there is nothing to cache on it.
		return p.generateSame(r, src, key, d)
	case library.FilterCommand:
		return p.generateFilter(r, src, key, d)
	default:
		return nil, fmt.Errorf("%w: unknown source %T", library.ErrMalformed, src)
	}
	if err != nil {
		return nil, fmt.Errorf("%q: %w", key, err)
	}

	p.logger.Debug("sprite generated", zap.String("key", key), zap.String("attributes", sig))
	r.Sprites[sig] = s
	return s, nil
}

// baseKey identifies the output of the base pipeline for source decoded
// through f with the current palette.
func (p *PixelRendr) baseKey(f *palette.Filter, source library.PixelString) string {
	if f == nil {
		return fmt.Sprintf("%d|%s", p.generation, source)
	}
	return fmt.Sprintf("%d|%s|%s", p.generation, f, source)
}

func (p *PixelRendr) decodeBase(f *palette.Filter, source library.PixelString) (library.Pixels, string, error) {
	key := p.baseKey(f, source)
	v, err := p.base.Process(string(source), key, f)
	if err != nil {
		return nil, "", err
	}
	return v.(library.Pixels), key, nil
}

func (p *PixelRendr) decodeDims(base library.Pixels, key string, d dimensions) (library.Pixels, error) {
	v, err := p.dims.Process(base, key+"|"+d.key(), d)
	if err != nil {
		return nil, err
	}
	return v.(library.Pixels), nil
}

func (p *PixelRendr) generateSingle(f *palette.Filter, source library.PixelString, d dimensions) (library.Result, error) {
	if d.width <= 0 {
		return nil, ErrNoDimensions
	}
	base, key, err := p.decodeBase(f, source)
	if err != nil {
		return nil, err
	}
	if d.height <= 0 {
		d.height = naturalHeight(base, d.width, p.scale)
	}
	return p.decodeDims(base, key, d)
}

// naturalHeight is the output height of base when its rows are width pixels
// wide.
func naturalHeight(base library.Pixels, width, scale int) int {
	if width <= 0 {
		return 0
	}
	return len(base) / 4 / width * scale
}

// naturalWidth is the output width of base when it is height output pixels
// tall.
func naturalWidth(base library.Pixels, height, scale int) int {
	rows := height / scale
	if rows <= 0 {
		return 0
	}
	return len(base) / 4 / rows
}

func (p *PixelRendr) generateMultiple(f *palette.Filter, c library.MultipleCommand, d dimensions) (library.Result, error) {
	s := c.Settings
	m := &library.Multiple{
		Sprites:       make(map[string]library.Pixels),
		Direction:     c.Direction,
		TopHeight:     s.TopHeight,
		RightWidth:    s.RightWidth,
		BottomHeight:  s.BottomHeight,
		LeftWidth:     s.LeftWidth,
		MiddleStretch: s.MiddleStretch,
		Width:         d.width,
		Height:        d.height,
	}

	for _, name := range library.Sections {
		source, ok := s.Section(name)
		if !ok {
			continue
		}

		base, key, err := p.decodeBase(f, source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		sd := d
		switch name {
		case library.Top:
			sd.height = s.TopHeight * p.scale
		case library.Bottom:
			sd.height = s.BottomHeight * p.scale
		case library.Left:
			sd.width = s.LeftWidth * p.scale
		case library.Right:
			sd.width = s.RightWidth * p.scale
		case library.Middle:
			// The middle fills whatever the other panels leave so the
			// size across the direction must be known and positive.
			if c.Direction == library.Vertical {
				sd.width = d.width - (s.LeftWidth+s.RightWidth)*p.scale
				sd.height = 0
				if sd.width <= 0 {
					return nil, fmt.Errorf("%s: %w", name, ErrNoDimensions)
				}
			} else {
				sd.height = d.height - (s.TopHeight+s.BottomHeight)*p.scale
				sd.width = 0
				if sd.height <= 0 {
					return nil, fmt.Errorf("%s: %w", name, ErrNoDimensions)
				}
			}
		}
		if sd.width <= 0 && sd.height > 0 {
			sd.width = naturalWidth(base, sd.height, p.scale)
		}
		if sd.height <= 0 {
			sd.height = naturalHeight(base, sd.width, p.scale)
		}

		px, err := p.decodeDims(base, key, sd)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		m.Sprites[name] = px
	}

	return m, nil
}

// resolve files target in place of r and returns the result of decoding it.
// A directory target means key is looked up again as it may now lead further
// into the directory.
func (p *PixelRendr) resolve(r *library.Render, target library.Entry, key string, d dimensions) (library.Result, error) {
	p.tree.Replace(r, target)
	p.filer.Clear()

	switch t := target.(type) {
	case *library.Render:
		return p.generate(t, key, d)
	case *library.Directory:
		n, err := p.filer.Get(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		if next, ok := n.(*library.Render); ok {
			return p.generate(next, key, d)
		}
		return n.(library.Result), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
}

func (p *PixelRendr) follow(r *library.Render, path []string, key string) (library.Entry, error) {
	target, err := p.tree.Follow(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if target == library.Entry(r) {
		return nil, fmt.Errorf("%w: %q refers to itself", ErrCycle, key)
	}
	if t, ok := target.(*library.Render); ok {
		if _, ok := p.resolving[t]; ok {
			return nil, fmt.Errorf("%w: %q", ErrCycle, key)
		}
	}
	return target, nil
}

func (p *PixelRendr) generateSame(r *library.Render, c library.SameCommand, key string, d dimensions) (library.Result, error) {
	target, err := p.follow(r, c.Path, key)
	if err != nil {
		return nil, err
	}
	if r.Filter != nil {
		target = p.filtered(target, r.Filter)
	}
	p.logger.Debug("same resolved", zap.String("key", key), zap.Strings("path", c.Path))
	return p.resolve(r, target, key, d)
}

func (p *PixelRendr) generateFilter(r *library.Render, c library.FilterCommand, key string, d dimensions) (library.Result, error) {
	f, ok := p.filters[c.Filter]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, c.Filter)
	}
	target, err := p.follow(r, c.Path, key)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("filter resolved", zap.String("key", key), zap.Strings("path", c.Path), zap.String("filter", c.Filter))
	return p.resolve(r, p.filtered(target, f.Compose(r.Filter)), key, d)
}

func (p *PixelRendr) filtered(e library.Entry, f *palette.Filter) library.Entry {
	switch t := e.(type) {
	case *library.Render:
		return p.tree.FilteredRender(t, f)
	case *library.Directory:
		return p.tree.FilteredDirectory(t, f)
	default:
		return e
	}
}
