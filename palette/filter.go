package palette

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Filter recolors a sprite by substituting palette indices.
type Filter struct {
	Name    string
	mapping map[int]int
}

// NewFilter creates a filter from source index to destination index strings,
// as found in sprite libraries, e.g. {"1": "4"}.
func NewFilter(name string, mapping map[string]string) (*Filter, error) {
	f := &Filter{
		Name:    name,
		mapping: make(map[int]int, len(mapping)),
	}
	for k, v := range mapping {
		src, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("palette: filter %q: bad source index %q", name, k)
		}
		dst, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("palette: filter %q: bad destination index %q", name, v)
		}
		f.mapping[src] = dst
	}
	return f, nil
}

// Mapping returns a copy of the substitutions as strings.
func (f *Filter) Mapping() map[string]string {
	m := make(map[string]string, len(f.mapping))
	for k, v := range f.mapping {
		m[strconv.Itoa(k)] = strconv.Itoa(v)
	}
	return m
}

// Lookup returns the destination for index i.
func (f *Filter) Lookup(i int) int {
	if j, ok := f.mapping[i]; ok {
		return j
	}
	return i
}

// Apply substitutes every size wide digit group in digits.
func (f *Filter) Apply(digits string, size int) string {
	if f == nil || len(f.mapping) == 0 {
		return digits
	}
	var sb strings.Builder
	sb.Grow(len(digits))
	for i := 0; i+size <= len(digits); i += size {
		group := digits[i : i+size]
		n, err := strconv.Atoi(group)
		if err != nil {
			sb.WriteString(group)
			continue
		}
		if j, ok := f.mapping[n]; ok {
			sb.WriteString(Digit(j, size))
		} else {
			sb.WriteString(group)
		}
	}
	return sb.String()
}

// Compose returns a filter applying f and then next.
func (f *Filter) Compose(next *Filter) *Filter {
	switch {
	case f == nil:
		return next
	case next == nil:
		return f
	}
	c := &Filter{
		Name:    f.Name + "+" + next.Name,
		mapping: make(map[int]int, len(f.mapping)+len(next.mapping)),
	}
	for k, v := range f.mapping {
		c.mapping[k] = next.Lookup(v)
	}
	for k, v := range next.mapping {
		if _, ok := c.mapping[k]; !ok {
			c.mapping[k] = v
		}
	}
	return c
}

func (f *Filter) String() string {
	keys := make([]int, 0, len(f.mapping))
	for k := range f.mapping {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%d:%d", k, f.mapping[k])
	}
	return f.Name + "{" + strings.Join(pairs, ",") + "}"
}
