package library

import (
	"errors"
	"strings"
	"testing"

	"github.com/bodgit/pixelrendr/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLibrary = `{
	"characters": {
		"goomba": "x08,",
		"koopa": ["same", ["characters", "goomba"]],
		"red": ["filter", ["characters"], "red"]
	},
	"solids": {
		"pipe": ["multiple", "vertical", {
			"top": "0101",
			"topheight": 1,
			"middle": "02",
			"middleStretch": true
		}]
	}
}`

func testTree(t *testing.T) *Tree {
	raw, err := ReadJSON(strings.NewReader(testLibrary))
	require.NoError(t, err)
	tree, err := NewTree(raw)
	require.NoError(t, err)
	return tree
}

func TestParse(t *testing.T) {
	tables := []struct {
		raw     interface{}
		command Command
	}{
		{"0123", PixelString("0123")},
		{[]interface{}{"same", []interface{}{"a", "b"}}, SameCommand{Path: []string{"a", "b"}}},
		{[]interface{}{"filter", []interface{}{"a"}, "red"}, FilterCommand{Path: []string{"a"}, Filter: "red"}},
		{
			[]interface{}{"multiple", "horizontal", map[string]interface{}{"left": "00", "leftwidth": float64(1), "middle": "11"}},
			MultipleCommand{Direction: Horizontal, Settings: MultipleSettings{Left: "00", LeftWidth: 1, Middle: "11"}},
		},
	}

	for _, table := range tables {
		c, err := Parse(table.raw)
		require.NoError(t, err)
		assert.Equal(t, table.command, c)
		assert.Equal(t, table.command, mustParse(t, Raw(c)))
	}
}

func mustParse(t *testing.T, raw interface{}) Command {
	c, err := Parse(raw)
	require.NoError(t, err)
	return c
}

func TestParseMalformed(t *testing.T) {
	tables := []interface{}{
		42,
		[]interface{}{},
		[]interface{}{"spin", "x"},
		[]interface{}{"same"},
		[]interface{}{"same", "a/b"},
		[]interface{}{"filter", []interface{}{"a"}},
		[]interface{}{"multiple", "diagonal", map[string]interface{}{}},
		[]interface{}{"multiple", "vertical", map[string]interface{}{"topheight": "tall"}},
		[]interface{}{"multiple", "vertical", map[string]interface{}{"sideways": "00"}},
	}

	for _, raw := range tables {
		_, err := Parse(raw)
		assert.True(t, errors.Is(err, ErrMalformed), "%v", raw)
	}
}

func TestNewTree(t *testing.T) {
	tree := testTree(t)

	e, err := tree.Follow([]string{"characters", "goomba"})
	require.NoError(t, err)
	r, ok := e.(*Render)
	require.True(t, ok)
	assert.Equal(t, PixelString("x08,"), r.Source)
	require.Len(t, r.Containers, 1)

	d, ok := tree.Directory(r.Containers[0].Dir)
	require.True(t, ok)
	assert.Equal(t, []string{"goomba", "koopa", "red"}, d.Keys())
	assert.Equal(t, "goomba", r.Containers[0].Key)

	e, err = tree.Follow([]string{"solids"})
	require.NoError(t, err)
	assert.IsType(t, &Directory{}, e)

	_, err = tree.Follow([]string{"solids", "brick"})
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = tree.Follow([]string{"characters", "goomba", "left"})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = NewTree(map[string]interface{}{"bad": []interface{}{"spin"}})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestReplaceAndReset(t *testing.T) {
	tree := testTree(t)

	goomba, err := tree.Follow([]string{"characters", "goomba"})
	require.NoError(t, err)
	koopa, err := tree.Follow([]string{"characters", "koopa"})
	require.NoError(t, err)

	target := goomba.(*Render)
	alias := koopa.(*Render)
	tree.Replace(alias, target)

	e, err := tree.Follow([]string{"characters", "koopa"})
	require.NoError(t, err)
	assert.Same(t, target, e)
	assert.Len(t, target.Containers, 2)
	assert.Empty(t, alias.Containers)
	assert.Equal(t, SameCommand{Path: []string{"characters", "goomba"}}, target.Containers[1].Alias)

	target.Sprites["k"] = Pixels{1, 2, 3, 4}
	tree.Reset(target)
	assert.Empty(t, target.Sprites)
	assert.Len(t, target.Containers, 1)

	e, err = tree.Follow([]string{"characters", "koopa"})
	require.NoError(t, err)
	restored, ok := e.(*Render)
	require.True(t, ok)
	assert.NotSame(t, target, restored)
	assert.Equal(t, alias.Source, restored.Source)
	require.Len(t, restored.Containers, 1)
	assert.Nil(t, restored.Containers[0].Alias)
}

func TestFiltered(t *testing.T) {
	tree := testTree(t)
	red, err := palette.NewFilter("red", map[string]string{"0": "1"})
	require.NoError(t, err)

	e, err := tree.Follow([]string{"characters"})
	require.NoError(t, err)
	characters := e.(*Directory)

	clone := tree.FilteredDirectory(characters, red)
	assert.Same(t, clone, tree.FilteredDirectory(characters, red))
	assert.NotEqual(t, characters.ID(), clone.ID())
	assert.Equal(t, characters.Keys(), clone.Keys())

	orig, _ := characters.Get("goomba")
	copied, _ := clone.Get("goomba")
	assert.Nil(t, orig.(*Render).Filter)
	assert.Same(t, red, copied.(*Render).Filter)
	assert.Equal(t, orig.(*Render).Source, copied.(*Render).Source)
	assert.Same(t, copied, tree.FilteredRender(orig.(*Render), red))
}

func TestWalk(t *testing.T) {
	tree := testTree(t)

	var paths []string
	err := tree.Walk(tree.Root(), func(path []string, r *Render) error {
		paths = append(paths, strings.Join(path, "/"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"characters/goomba", "characters/koopa", "characters/red", "solids/pipe"}, paths)
}

func TestInsert(t *testing.T) {
	raw := make(map[string]interface{})
	require.NoError(t, Insert(raw, []string{"a", "b", "c"}, "00"))
	require.NoError(t, Insert(raw, []string{"a", "d"}, "11"))
	assert.Equal(t, map[string]interface{}{
		"a": map[string]interface{}{
			"b": map[string]interface{}{"c": "00"},
			"d": "11",
		},
	}, raw)

	assert.Error(t, Insert(raw, []string{"a", "d", "e"}, "22"))
	assert.Error(t, Insert(raw, nil, "22"))
}

func TestCopy(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 4)

	assert.Equal(t, 3, Copy(src, dst, 3, 1, 10))
	assert.Equal(t, []byte{0, 4, 5, 6}, dst)
	assert.Equal(t, 0, Copy(src, dst, 6, 0, 2))
	assert.Equal(t, 0, Copy(src, dst, -1, 0, 2))
	assert.Equal(t, 2, Copy(src, dst, 0, 2, 2))
	assert.Equal(t, []byte{0, 4, 1, 2}, dst)
}
