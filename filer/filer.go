/*
Package filer implements a cached lookup of slash separated keys in a tree of
nested containers.

A key is followed one segment at a time. When every segment matches, or a leaf
is reached first, that node is returned. When a later segment does not match,
the deepest container reached is returned instead so the caller can tell a
partial match from a sprite. Only a key whose first segment is unknown fails.
*/
package filer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the first segment of a key does not match.
var ErrNotFound = errors.New("filer: not found")

// DefaultSeparator splits keys into segments.
const DefaultSeparator = "/"

// Node is an element of the tree. Leaves never have children.
type Node interface {
	Child(name string) (Node, bool)
}

// Filer looks keys up in a tree and remembers the result.
type Filer struct {
	root  Node
	sep   string
	cache map[string]Node
}

// New returns a Filer on root. An empty sep uses DefaultSeparator.
func New(root Node, sep string) *Filer {
	if sep == "" {
		sep = DefaultSeparator
	}
	return &Filer{
		root:  root,
		sep:   sep,
		cache: make(map[string]Node),
	}
}

// Root returns the tree being searched.
func (f *Filer) Root() Node {
	return f.root
}

// SetRoot replaces the tree and forgets all cached results.
func (f *Filer) SetRoot(root Node) {
	f.root = root
	f.Clear()
}

// Separator returns the segment separator.
func (f *Filer) Separator() string {
	return f.sep
}

// Split breaks key into its non-empty segments.
func (f *Filer) Split(key string) []string {
	var segments []string
	for _, s := range strings.Split(key, f.sep) {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Get returns the node for key, or the deepest node reached.
func (f *Filer) Get(key string) (Node, error) {
	if n, ok := f.cache[key]; ok {
		return n, nil
	}

	segments := f.Split(key)
	n := f.root
	for i, s := range segments {
		child, ok := n.Child(s)
		if !ok {
			if i == 0 {
				return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
			}
			break
		}
		n = child
	}

	f.cache[key] = n
	return n, nil
}

// ClearCached forgets the cached result for key.
func (f *Filer) ClearCached(key string) {
	delete(f.cache, key)
}

// Clear forgets every cached result.
func (f *Filer) Clear() {
	f.cache = make(map[string]Node)
}
