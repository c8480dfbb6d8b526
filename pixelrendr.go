/*
Package pixelrendr is a codec for pixel-art sprites stored as compact strings.

A library is a nested map whose leaves are sprite sources. A source is either
a pixel string or a command. Pixel strings are runs of fixed width decimal
digit groups, each group indexing the default palette:

	0102x037,01

Groups are as wide as the number of digits in the largest palette index. The
following constructs are recognised within a pixel string:

	x<group><count>,   repeat <group> <count> times
	p[a,b,c]           use a local palette of default palette indices a, b, c
	p                  return to the default palette

Within a local palette the group width is determined by the size of the local
palette instead. Commands are JSON style arrays:

	["multiple", "vertical", {"top": "...", "topheight": 2, "middle": "..."}]
	["same", ["path", "to", "sprite"]]
	["filter", ["path", "to", "sprite"], "filterName"]

Sprites are decoded lazily on request for a set of attributes and cached
against the attributes they were decoded for. Images can be encoded back into
pixel strings using the active palette.
*/
package pixelrendr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/bodgit/pixelrendr/chain"
	"github.com/bodgit/pixelrendr/filer"
	"github.com/bodgit/pixelrendr/library"
	"github.com/bodgit/pixelrendr/palette"
	"go.uber.org/zap"
)

const (
	defaultFlipVert     = "flipVert"
	defaultFlipHoriz    = "flipHoriz"
	defaultSpriteWidth  = "spriteWidth"
	defaultSpriteHeight = "spriteHeight"
)

// ImageLoader loads the image at uri.
type ImageLoader interface {
	Load(ctx context.Context, uri string) (image.Image, error)
}

// EncodeCallback is passed the result of encoding img.
type EncodeCallback func(result string, img image.Image)

// Settings configure a PixelRendr. Only Palette is required.
type Settings struct {
	// Palette is the default palette.
	Palette palette.Palette
	// Library is the raw library of sprite sources.
	Library map[string]interface{}
	// Filters are the filters "filter" commands may name.
	Filters map[string]*palette.Filter
	// Scale is how many output pixels each source pixel is expanded to, in
	// both directions. Defaults to 1.
	Scale int

	// Attribute names.
	FlipVert     string
	FlipHoriz    string
	SpriteWidth  string
	SpriteHeight string

	// NewBuffer allocates pixel buffers, defaults to make.
	NewBuffer func(int) []byte
	// Loader is used by EncodeURI.
	Loader ImageLoader
	Logger *zap.Logger
}

// PixelRendr decodes sprites from a library and encodes images.
type PixelRendr struct {
	mu     sync.RWMutex
	logger *zap.Logger

	palette    palette.Palette
	index      *palette.Index
	digitSize  int
	generation int

	scale        int
	flipVert     string
	flipHoriz    string
	spriteWidth  string
	spriteHeight string
	filters      map[string]*palette.Filter
	newBuffer    func(int) []byte
	loader       ImageLoader

	tree      *library.Tree
	filer     *filer.Filer
	base      *chain.Chain
	dims      *chain.Chain
	encoder   *chain.Chain
	resolving map[*library.Render]struct{}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// New returns a PixelRendr configured with s.
func New(s Settings) (*PixelRendr, error) {
	if len(s.Palette) == 0 {
		return nil, ErrNoPalette
	}
	if err := s.Palette.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPalette, err)
	}
	if s.Scale < 0 {
		return nil, errors.New("pixelrendr: negative scale")
	}

	p := &PixelRendr{
		logger:       s.Logger,
		scale:        s.Scale,
		flipVert:     orDefault(s.FlipVert, defaultFlipVert),
		flipHoriz:    orDefault(s.FlipHoriz, defaultFlipHoriz),
		spriteWidth:  orDefault(s.SpriteWidth, defaultSpriteWidth),
		spriteHeight: orDefault(s.SpriteHeight, defaultSpriteHeight),
		filters:      s.Filters,
		newBuffer:    s.NewBuffer,
		loader:       s.Loader,
		resolving:    make(map[*library.Render]struct{}),
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.scale == 0 {
		p.scale = 1
	}
	if p.filters == nil {
		p.filters = make(map[string]*palette.Filter)
	}
	if p.newBuffer == nil {
		p.newBuffer = func(n int) []byte {
			return make([]byte, n)
		}
	}
	p.setPalette(s.Palette)

	p.base = chain.New(
		chain.Step{Name: "unravel", Transform: p.unravel},
		chain.Step{Name: "expand", Transform: p.expand},
		chain.Step{Name: "filter", Transform: p.filter},
		chain.Step{Name: "pixels", Transform: p.pixels},
	)
	p.dims = chain.New(
		chain.Step{Name: "repeatRows", Transform: p.repeatRows},
		chain.Step{Name: "flip", Transform: p.flip},
	)
	p.encoder = chain.New(
		chain.Step{Name: "extract", Transform: p.extract},
		chain.Step{Name: "mapPalette", Transform: p.mapPalette},
		chain.Step{Name: "combine", Transform: p.combine},
	)

	raw := s.Library
	if raw == nil {
		raw = make(map[string]interface{})
	}
	if err := p.resetLibrary(raw); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *PixelRendr) setPalette(pal palette.Palette) {
	p.palette = append(palette.Palette(nil), pal...)
	p.index = palette.NewIndex(p.palette)
	p.digitSize = p.palette.DigitSize()
	p.generation++
}

func (p *PixelRendr) resetLibrary(raw map[string]interface{}) error {
	tree, err := library.NewTree(raw)
	if err != nil {
		return err
	}
	p.tree = tree
	if p.filer == nil {
		p.filer = filer.New(tree.Root(), filer.DefaultSeparator)
	} else {
		p.filer.SetRoot(tree.Root())
	}
	p.base.Clear()
	p.dims.Clear()
	return nil
}

// Palette returns a copy of the default palette.
func (p *PixelRendr) Palette() palette.Palette {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append(palette.Palette(nil), p.palette...)
}

// Scale returns the scale sprites are decoded at.
func (p *PixelRendr) Scale() int {
	return p.scale
}

// Library returns the tree of Renders. Decode and the Reset methods modify
// the tree so it must not be used while any of them are running.
func (p *PixelRendr) Library() *library.Tree {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tree
}

// Filer returns the lookup cache over the library.
//
// The caches returned by Filer and the Processor methods are shared with
// Decode, ResetLibrary and ResetRender, which modify them while holding the
// PixelRendr lock. Callers must not use them concurrently with those methods.
func (p *PixelRendr) Filer() *filer.Filer {
	return p.filer
}

// ProcessorBase returns the pipeline that turns pixel strings into pixels.
// See Filer for restrictions on its use.
func (p *PixelRendr) ProcessorBase() *chain.Chain {
	return p.base
}

// ProcessorDims returns the pipeline that applies sprite dimensions. See
// Filer for restrictions on its use.
func (p *PixelRendr) ProcessorDims() *chain.Chain {
	return p.dims
}

// ProcessorEncode returns the pipeline that encodes images. See Filer for
// restrictions on its use.
func (p *PixelRendr) ProcessorEncode() *chain.Chain {
	return p.encoder
}

// ResetLibrary replaces the library, discarding every Render and cached
// sprite.
func (p *PixelRendr) ResetLibrary(raw map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.resetLibrary(raw); err != nil {
		return err
	}
	p.logger.Debug("library reset", zap.Int("entries", p.tree.Root().Len()))
	return nil
}

// ResetRender forgets the sprites generated for key. Every alias that was
// resolved to the same Render is resolved again on its next decode.
func (p *PixelRendr) ResetRender(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.filer.Get(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	r, ok := n.(*library.Render)
	if !ok {
		return fmt.Errorf("%w: %q is not a sprite", ErrNotFound, key)
	}

	p.tree.Reset(r)
	p.filer.Clear()
	p.logger.Debug("render reset", zap.String("key", key), zap.Int("containers", len(r.Containers)))
	return nil
}

// ChangePalette replaces the default palette. Sprites already generated are
// kept; call ResetRender or ResetLibrary to decode them again.
func (p *PixelRendr) ChangePalette(pal palette.Palette) error {
	if err := pal.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrNoPalette, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.setPalette(pal)
	p.logger.Debug("palette changed", zap.Int("colors", len(pal)), zap.Int("generation", p.generation))
	return nil
}

// SpriteBase returns whatever key resolves to in the library without
// decoding anything.
func (p *PixelRendr) SpriteBase(key string) (library.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.filer.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return n.(library.Entry), nil
}

// Decode returns the sprite for key expanded according to attrs. If key only
// partially matches the library, the deepest directory reached is returned.
func (p *PixelRendr) Decode(key string, attrs Attributes) (library.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.decode(key, p.dimensions(attrs))
}

func (p *PixelRendr) decode(key string, d dimensions) (library.Result, error) {
	n, err := p.filer.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	switch e := n.(type) {
	case *library.Directory:
		return e, nil
	case *library.Render:
		return p.generate(e, key, d)
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
}

// GeneratePalette builds a palette from raw RGBA data.
func (p *PixelRendr) GeneratePalette(data []byte, forceZeroColor bool) palette.Palette {
	return palette.FromRawPixelData(data, forceZeroColor)
}
