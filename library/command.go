package library

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformed is returned for sprite sources that cannot be understood.
var ErrMalformed = errors.New("library: malformed sprite source")

// Command names used in raw libraries.
const (
	CommandMultiple = "multiple"
	CommandSame     = "same"
	CommandFilter   = "filter"
)

// Direction of a multiple sprite.
const (
	Horizontal = "horizontal"
	Vertical   = "vertical"
)

// Section names of a multiple sprite.
const (
	Top    = "top"
	Right  = "right"
	Bottom = "bottom"
	Left   = "left"
	Middle = "middle"
)

// Sections lists every section of a multiple sprite in decode order.
var Sections = []string{Top, Right, Bottom, Left, Middle}

// Command is the raw source of a sprite. It is one of PixelString,
// MultipleCommand, SameCommand or FilterCommand.
type Command interface {
	command()
}

// PixelString is a compressed sprite.
type PixelString string

// MultipleSettings describes the sections of a multiple sprite. Empty
// sections are absent.
type MultipleSettings struct {
	Top           string
	Right         string
	Bottom        string
	Left          string
	Middle        string
	TopHeight     int
	RightWidth    int
	BottomHeight  int
	LeftWidth     int
	MiddleStretch bool
}

// Section returns the pixel string for the named section.
func (s MultipleSettings) Section(name string) (PixelString, bool) {
	var v string
	switch name {
	case Top:
		v = s.Top
	case Right:
		v = s.Right
	case Bottom:
		v = s.Bottom
	case Left:
		v = s.Left
	case Middle:
		v = s.Middle
	}
	return PixelString(v), v != ""
}

// MultipleCommand is a sprite assembled from up to five sections.
type MultipleCommand struct {
	Direction string
	Settings  MultipleSettings
}

// SameCommand reuses the sprite or directory found at Path.
type SameCommand struct {
	Path []string
}

// FilterCommand recolors everything found at Path with the named filter.
type FilterCommand struct {
	Path   []string
	Filter string
}

func (PixelString) command()     {}
func (MultipleCommand) command() {}
func (SameCommand) command()     {}
func (FilterCommand) command()   {}

func malformed(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, v...))
}

// Parse converts a raw source, as decoded from JSON, into a Command.
func Parse(raw interface{}) (Command, error) {
	switch v := raw.(type) {
	case Command:
		return v, nil
	case string:
		return PixelString(v), nil
	case []string:
		l := make([]interface{}, len(v))
		for i, s := range v {
			l[i] = s
		}
		return parseList(l)
	case []interface{}:
		return parseList(v)
	default:
		return nil, malformed("unsupported source type %T", raw)
	}
}

func parseList(l []interface{}) (Command, error) {
	if len(l) == 0 {
		return nil, malformed("empty command")
	}
	name, ok := l[0].(string)
	if !ok {
		return nil, malformed("command name %v is not a string", l[0])
	}

	switch name {
	case CommandMultiple:
		if len(l) != 3 {
			return nil, malformed("%q needs a direction and settings", name)
		}
		direction, ok := l[1].(string)
		if !ok || (direction != Horizontal && direction != Vertical) {
			return nil, malformed("bad direction %v", l[1])
		}
		settings, err := parseSettings(l[2])
		if err != nil {
			return nil, err
		}
		return MultipleCommand{Direction: direction, Settings: settings}, nil
	case CommandSame:
		if len(l) != 2 {
			return nil, malformed("%q needs a path", name)
		}
		path, err := parsePath(l[1])
		if err != nil {
			return nil, err
		}
		return SameCommand{Path: path}, nil
	case CommandFilter:
		if len(l) != 3 {
			return nil, malformed("%q needs a path and a filter name", name)
		}
		path, err := parsePath(l[1])
		if err != nil {
			return nil, err
		}
		filter, ok := l[2].(string)
		if !ok || filter == "" {
			return nil, malformed("bad filter name %v", l[2])
		}
		return FilterCommand{Path: path, Filter: filter}, nil
	default:
		return nil, malformed("unknown command %q", name)
	}
}

func parsePath(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		path := make([]string, len(v))
		for i, s := range v {
			str, ok := s.(string)
			if !ok {
				return nil, malformed("path segment %v is not a string", s)
			}
			path[i] = str
		}
		return path, nil
	default:
		return nil, malformed("path %v is not a list", raw)
	}
}

func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	default:
		return 0, false
	}
}

func parseSettings(raw interface{}) (MultipleSettings, error) {
	var s MultipleSettings
	m, ok := raw.(map[string]interface{})
	if !ok {
		return s, malformed("multiple settings %v are not an object", raw)
	}

	strs := map[string]*string{Top: &s.Top, Right: &s.Right, Bottom: &s.Bottom, Left: &s.Left, Middle: &s.Middle}
	ints := map[string]*int{"topheight": &s.TopHeight, "rightwidth": &s.RightWidth, "bottomheight": &s.BottomHeight, "leftwidth": &s.LeftWidth}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := m[k]
		if p, ok := strs[k]; ok {
			if *p, ok = v.(string); !ok {
				return s, malformed("section %q is not a string", k)
			}
			continue
		}
		if p, ok := ints[k]; ok {
			if *p, ok = toInt(v); !ok || *p < 0 {
				return s, malformed("%q is not a positive integer", k)
			}
			continue
		}
		switch k {
		case "middleStretch":
			if s.MiddleStretch, ok = v.(bool); !ok {
				return s, malformed("middleStretch is not a boolean")
			}
		default:
			return s, malformed("unknown multiple setting %q", k)
		}
	}

	return s, nil
}

// Raw converts c back into its raw JSON shaped form.
func Raw(c Command) interface{} {
	switch v := c.(type) {
	case PixelString:
		return string(v)
	case MultipleCommand:
		m := make(map[string]interface{})
		for _, name := range Sections {
			if p, ok := v.Settings.Section(name); ok {
				m[name] = string(p)
			}
		}
		for k, n := range map[string]int{"topheight": v.Settings.TopHeight, "rightwidth": v.Settings.RightWidth, "bottomheight": v.Settings.BottomHeight, "leftwidth": v.Settings.LeftWidth} {
			if n != 0 {
				m[k] = n
			}
		}
		if v.Settings.MiddleStretch {
			m["middleStretch"] = true
		}
		return []interface{}{CommandMultiple, v.Direction, m}
	case SameCommand:
		return []interface{}{CommandSame, append([]string(nil), v.Path...)}
	case FilterCommand:
		return []interface{}{CommandFilter, append([]string(nil), v.Path...), v.Filter}
	default:
		return nil
	}
}
