package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/pixelrendr/library"
	"github.com/bodgit/pixelrendr/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDB = `{
	"palette": [[0, 0, 0, 0], [255, 255, 255, 255], [0, 0, 0, 255]],
	"filters": {
		"inverse": {"1": "2", "2": "1"}
	},
	"library": {
		"characters": {
			"goomba": "0112",
			"koopa": ["same", ["characters", "goomba"]]
		},
		"dark": ["filter", ["characters"], "inverse"],
		"pipe": ["multiple", "vertical", {"top": "11", "topheight": 1, "middle": "22"}]
	}
}`

func newTestDB(t *testing.T) *SpriteDB {
	t.Helper()
	db, err := NewSpriteDB(filepath.Join(t.TempDir(), "sprites.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestImportJSON(t *testing.T) {
	db := newTestDB(t)

	file := filepath.Join(t.TempDir(), "sprites.json")
	require.NoError(t, os.WriteFile(file, []byte(testDB), 0o644))
	require.NoError(t, db.ImportJSON(file))

	p, err := db.Palette()
	require.NoError(t, err)
	assert.Equal(t, palette.Palette{{0, 0, 0, 0}, {255, 255, 255, 255}, {0, 0, 0, 255}}, p)

	filters, err := db.Filters()
	require.NoError(t, err)
	require.Contains(t, filters, "inverse")
	assert.Equal(t, map[string]string{"1": "2", "2": "1"}, filters["inverse"].Mapping())

	c, err := db.Sprite([]string{"characters", "koopa"})
	require.NoError(t, err)
	assert.Equal(t, library.SameCommand{Path: []string{"characters", "goomba"}}, c)

	c, err = db.Sprite([]string{"characters", "bowser"})
	require.NoError(t, err)
	assert.Nil(t, c)

	raw, err := db.Library()
	require.NoError(t, err)
	tree, err := library.NewTree(raw)
	require.NoError(t, err)

	var paths []string
	require.NoError(t, tree.Walk(tree.Root(), func(path []string, r *library.Render) error {
		paths = append(paths, strings.Join(path, "/"))
		return nil
	}))
	assert.Equal(t, []string{"characters/goomba", "characters/koopa", "dark", "pipe"}, paths)

	e, err := tree.Follow([]string{"pipe"})
	require.NoError(t, err)
	assert.Equal(t, library.MultipleCommand{
		Direction: library.Vertical,
		Settings:  library.MultipleSettings{Top: "11", TopHeight: 1, Middle: "22"},
	}, e.(*library.Render).Source)

	// Importing again replaces everything
	require.NoError(t, os.WriteFile(file, []byte(`{"palette": [[1, 2, 3, 4]], "library": {"a": "0"}}`), 0o644))
	require.NoError(t, db.ImportJSON(file))

	filters, err = db.Filters()
	require.NoError(t, err)
	assert.Empty(t, filters)

	raw, err = db.Library()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": "0"}, raw)
}

func TestImportJSONInvalid(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	for name, doc := range map[string]string{
		"syntax.json":  `{`,
		"palette.json": `{"palette": [[1, 2, 3, 4], [1, 2, 3, 4]]}`,
		"filter.json":  `{"palette": [[1, 2, 3, 4]], "filters": {"bad": {"x": "1"}}}`,
		"library.json": `{"palette": [[1, 2, 3, 4]], "library": {"a": ["spin"]}}`,
	} {
		file := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(file, []byte(doc), 0o644))
		assert.Error(t, db.ImportJSON(file), name)
	}

	assert.Error(t, db.ImportJSON(filepath.Join(dir, "missing.json")))
}

func TestImportJSONRollback(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "sprites.json")
	require.NoError(t, os.WriteFile(file, []byte(testDB), 0o644))
	require.NoError(t, db.ImportJSON(file))

	want, err := db.Library()
	require.NoError(t, err)

	// Fail the import after the tables have been emptied and partly refilled
	_, err = db.db.Exec("CREATE TRIGGER reject BEFORE INSERT ON sprite WHEN NEW.path = 'reject' BEGIN SELECT RAISE(ABORT, 'rejected'); END")
	require.NoError(t, err)

	file = filepath.Join(dir, "reject.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"palette": [[1, 2, 3, 4]], "filters": {"none": {}}, "library": {"a": "0", "reject": "0"}}`), 0o644))
	assert.Error(t, db.ImportJSON(file))

	p, err := db.Palette()
	require.NoError(t, err)
	assert.Equal(t, palette.Palette{{0, 0, 0, 0}, {255, 255, 255, 255}, {0, 0, 0, 255}}, p)

	filters, err := db.Filters()
	require.NoError(t, err)
	assert.Len(t, filters, 1)
	assert.Contains(t, filters, "inverse")

	raw, err := db.Library()
	require.NoError(t, err)
	assert.Equal(t, want, raw)
}

func TestSprites(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.PutSprite([]string{"a", "b"}, "0101"))
	require.NoError(t, db.PutSprite([]string{"a", "c"}, []interface{}{"same", []interface{}{"a", "b"}}))
	require.NoError(t, db.PutSprite([]string{"a", "b"}, "x05,"))

	assert.Error(t, db.PutSprite(nil, "0"))
	assert.Error(t, db.PutSprite([]string{"d"}, 42))

	raw, err := db.Library()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"a": map[string]interface{}{
			"b": "x05,",
			"c": []interface{}{"same", []string{"a", "b"}},
		},
	}, raw)
}

func TestPaletteAndFilters(t *testing.T) {
	db := newTestDB(t)

	p, err := db.Palette()
	require.NoError(t, err)
	assert.Empty(t, p)

	want := palette.Palette{{10, 20, 30, 40}, {50, 60, 70, 80}}
	require.NoError(t, db.SetPalette(want))
	p, err = db.Palette()
	require.NoError(t, err)
	assert.Equal(t, want, p)

	f, err := palette.NewFilter("swap", map[string]string{"0": "1"})
	require.NoError(t, err)
	require.NoError(t, db.SetFilter(f))

	f, err = palette.NewFilter("swap", map[string]string{"1": "0"})
	require.NoError(t, err)
	require.NoError(t, db.SetFilter(f))

	filters, err := db.Filters()
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, map[string]string{"1": "0"}, filters["swap"].Mapping())
}
