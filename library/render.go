package library

import (
	"sort"

	"github.com/bodgit/pixelrendr/filer"
	"github.com/bodgit/pixelrendr/palette"
)

// Result is the outcome of decoding a key: Pixels, *Multiple, or the
// *Directory reached when the key only partially matched.
type Result interface {
	result()
}

// Pixels is a flat buffer of interleaved RGBA bytes.
type Pixels []byte

// Multiple is a sprite assembled from independently decoded sections.
type Multiple struct {
	// Sprites holds the decoded buffer for every section present, keyed by
	// section name.
	Sprites       map[string]Pixels
	Direction     string
	TopHeight     int
	RightWidth    int
	BottomHeight  int
	LeftWidth     int
	MiddleStretch bool
	// Width and Height are the dimensions the sections were decoded for.
	Width  int
	Height int
}

func (Pixels) result()     {}
func (*Multiple) result()  {}
func (*Directory) result() {}

// Entry is a *Directory or a *Render.
type Entry interface {
	filer.Node
	entry()
}

// DirID identifies a Directory within its Tree.
type DirID int

// Listing records a place where a Render is filed. Alias holds the command
// that occupied the slot before the Render was filed there by a "same" or
// "filter" resolution.
type Listing struct {
	Dir   DirID
	Key   string
	Alias Command
}

// Render wraps a sprite source with the sprites generated from it.
type Render struct {
	Source     Command
	Sprites    map[string]Result
	Filter     *palette.Filter
	Containers []Listing

	filtered map[string]*Render
}

// NewRender returns a Render for source with an optional filter.
func NewRender(source Command, filter *palette.Filter) *Render {
	return &Render{
		Source:  source,
		Sprites: make(map[string]Result),
		Filter:  filter,
	}
}

func (*Render) entry() {}

// Child implements filer.Node; a Render is a leaf.
func (*Render) Child(string) (filer.Node, bool) {
	return nil, false
}

// Directory is a branch of the tree.
type Directory struct {
	id       DirID
	entries  map[string]Entry
	filtered map[string]*Directory
}

func (*Directory) entry() {}

// ID returns the identifier of d within its Tree.
func (d *Directory) ID() DirID {
	return d.id
}

// Get returns the entry filed under name.
func (d *Directory) Get(name string) (Entry, bool) {
	e, ok := d.entries[name]
	return e, ok
}

// Child implements filer.Node.
func (d *Directory) Child(name string) (filer.Node, bool) {
	e, ok := d.entries[name]
	if !ok {
		return nil, false
	}
	return e, true
}

// Keys returns the names of the entries in sorted order.
func (d *Directory) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	return len(d.entries)
}

// Copy copies up to length bytes from src[readloc:] to dst[writeloc:],
// stopping at the end of either buffer. It returns the number of bytes
// copied.
func Copy(src, dst []byte, readloc, writeloc, length int) int {
	if readloc < 0 || writeloc < 0 || length <= 0 || readloc >= len(src) || writeloc >= len(dst) {
		return 0
	}
	if n := len(src) - readloc; n < length {
		length = n
	}
	if n := len(dst) - writeloc; n < length {
		length = n
	}
	return copy(dst[writeloc:writeloc+length], src[readloc:readloc+length])
}
