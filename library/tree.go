package library

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bodgit/pixelrendr/palette"
)

// ErrNotFound is returned when a path does not lead to an entry.
var ErrNotFound = errors.New("library: not found")

// Tree is a searchable tree of Renders mirroring the shape of a raw library.
// Directories are owned by the Tree and Renders refer to them by DirID only.
type Tree struct {
	root *Directory
	dirs map[DirID]*Directory
	next DirID
}

// NewTree wraps every source in raw into a Render. Nested maps become
// directories.
func NewTree(raw map[string]interface{}) (*Tree, error) {
	t := &Tree{
		dirs: make(map[DirID]*Directory),
	}
	t.root = t.newDirectory()
	if err := t.parse(t.root, raw, nil); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) newDirectory() *Directory {
	d := &Directory{
		id:      t.next,
		entries: make(map[string]Entry),
	}
	t.dirs[d.id] = d
	t.next++
	return d
}

func (t *Tree) parse(d *Directory, raw map[string]interface{}, path []string) error {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p := append(path[:len(path):len(path)], k)
		if m, ok := raw[k].(map[string]interface{}); ok {
			child := t.newDirectory()
			if err := t.parse(child, m, p); err != nil {
				return err
			}
			t.put(d, k, child, nil)
			continue
		}
		c, err := Parse(raw[k])
		if err != nil {
			return fmt.Errorf("%v: %w", p, err)
		}
		t.put(d, k, NewRender(c, nil), nil)
	}
	return nil
}

// put files e under key in d, recording the listing on Renders.
func (t *Tree) put(d *Directory, key string, e Entry, alias Command) {
	d.entries[key] = e
	if r, ok := e.(*Render); ok {
		r.Containers = append(r.Containers, Listing{Dir: d.id, Key: key, Alias: alias})
	}
}

// Root returns the top level directory.
func (t *Tree) Root() *Directory {
	return t.root
}

// Directory returns the directory with the given id.
func (t *Tree) Directory(id DirID) (*Directory, bool) {
	d, ok := t.dirs[id]
	return d, ok
}

// Follow resolves path from the root. Every segment must match.
func (t *Tree) Follow(path []string) (Entry, error) {
	var e Entry = t.root
	for i, s := range path {
		d, ok := e.(*Directory)
		if !ok {
			return nil, fmt.Errorf("%w: %v passes through a sprite at %q", ErrNotFound, path, path[i-1])
		}
		if e, ok = d.Get(s); !ok {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, path)
		}
	}
	return e, nil
}

// Replace files replacement in every place r is filed. r is left without
// containers. The command originally filed in each slot is remembered so
// that Reset can restore it.
func (t *Tree) Replace(r *Render, replacement Entry) {
	listings := r.Containers
	r.Containers = nil
	for _, l := range listings {
		d, ok := t.dirs[l.Dir]
		if !ok {
			continue
		}
		alias := l.Alias
		if alias == nil {
			alias = r.Source
		}
		t.put(d, l.Key, replacement, alias)
	}
}

// Reset forgets every sprite generated by r and its filtered clones. Slots
// that r took over from "same" or "filter" commands are given back to fresh
// Renders of those commands, so that aliases resolve and decode again.
func (t *Tree) Reset(r *Render) {
	var kept []Listing
	for _, l := range r.Containers {
		d, ok := t.dirs[l.Dir]
		if !ok {
			continue
		}
		if l.Alias == nil {
			kept = append(kept, l)
			continue
		}
		if cur, ok := d.entries[l.Key]; ok && cur == Entry(r) {
			t.put(d, l.Key, NewRender(l.Alias, nil), nil)
		}
	}
	r.Containers = kept
	r.Sprites = make(map[string]Result)

	clones := r.filtered
	r.filtered = nil
	for _, c := range clones {
		t.Reset(c)
	}
}

// FilteredRender returns a copy of r with f attached on top of any filter r
// already carries. Copies are cached per filter name.
func (t *Tree) FilteredRender(r *Render, f *palette.Filter) *Render {
	if c, ok := r.filtered[f.Name]; ok {
		return c
	}
	if r.filtered == nil {
		r.filtered = make(map[string]*Render)
	}
	c := NewRender(r.Source, r.Filter.Compose(f))
	r.filtered[f.Name] = c
	return c
}

// FilteredDirectory returns a copy of d where every Render below it is
// replaced by its filtered copy. Copies are cached per filter name.
func (t *Tree) FilteredDirectory(d *Directory, f *palette.Filter) *Directory {
	if c, ok := d.filtered[f.Name]; ok {
		return c
	}
	if d.filtered == nil {
		d.filtered = make(map[string]*Directory)
	}
	c := t.newDirectory()
	d.filtered[f.Name] = c
	for _, k := range d.Keys() {
		switch e := d.entries[k].(type) {
		case *Render:
			t.put(c, k, t.FilteredRender(e, f), nil)
		case *Directory:
			t.put(c, k, t.FilteredDirectory(e, f), nil)
		}
	}
	return c
}

// Walk calls fn for every Render below d with its path.
func (t *Tree) Walk(d *Directory, fn func(path []string, r *Render) error) error {
	return walk(d, nil, fn)
}

func walk(d *Directory, path []string, fn func([]string, *Render) error) error {
	for _, k := range d.Keys() {
		p := append(path[:len(path):len(path)], k)
		switch e := d.entries[k].(type) {
		case *Render:
			if err := fn(p, e); err != nil {
				return err
			}
		case *Directory:
			if err := walk(e, p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
