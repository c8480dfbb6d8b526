/*
Package store keeps a sprite library in an SQLite database.

Alongside the pixel strings and commands of the library itself the database
holds the default palette and any filters, which is everything needed to
configure a PixelRendr.
*/
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bodgit/pixelrendr/library"
	"github.com/bodgit/pixelrendr/palette"
	_ "github.com/mattn/go-sqlite3" // register driver
)

const separator = "/"

// SpriteDB is a sprite library backed by SQLite.
type SpriteDB struct {
	db *sql.DB
}

// NewSpriteDB opens or creates the database in file.
func NewSpriteDB(file string) (*SpriteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS palette (idx INTEGER PRIMARY KEY NOT NULL, color TEXT NOT NULL UNIQUE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS filter (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS filter_map (filter_id INTEGER NOT NULL, src TEXT NOT NULL, dst TEXT NOT NULL, UNIQUE(filter_id, src), FOREIGN KEY(filter_id) REFERENCES filter(id) ON DELETE CASCADE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sprite (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, source TEXT NOT NULL)"); err != nil {
		return nil, err
	}

	return &SpriteDB{
		db: db,
	}, nil
}

type jsonSpriteDB struct {
	Palette [][4]uint8                   `json:"palette"`
	Filters map[string]map[string]string `json:"filters"`
	Library map[string]interface{}       `json:"library"`
}

// ImportJSON replaces the contents of the database with those of the JSON
// document in file. On error the database is left as it was.
func (db *SpriteDB) ImportJSON(file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var jsonDB jsonSpriteDB
	if err := json.Unmarshal(b, &jsonDB); err != nil {
		return err
	}

	pal := make(palette.Palette, len(jsonDB.Palette))
	for i, c := range jsonDB.Palette {
		pal[i] = palette.Pixel(c)
	}
	if err := pal.Validate(); err != nil {
		return err
	}

	filters := make([]*palette.Filter, 0, len(jsonDB.Filters))
	for name, mapping := range jsonDB.Filters {
		f, err := palette.NewFilter(name, mapping)
		if err != nil {
			return err
		}
		filters = append(filters, f)
	}

	tree, err := library.NewTree(jsonDB.Library)
	if err != nil {
		return err
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"sprite", "filter_map", "filter", "palette"} {
		if _, err = tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	if err := setPalette(tx, pal); err != nil {
		return err
	}

	for _, f := range filters {
		if err := setFilter(tx, f); err != nil {
			return err
		}
	}

	if err := tree.Walk(tree.Root(), func(path []string, r *library.Render) error {
		return putSprite(tx, path, r.Source)
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// Close closes the database.
func (db *SpriteDB) Close() error {
	return db.db.Close()
}

// SetPalette replaces the default palette.
func (db *SpriteDB) SetPalette(p palette.Palette) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := setPalette(tx, p); err != nil {
		return err
	}

	return tx.Commit()
}

func setPalette(tx *sql.Tx, p palette.Palette) error {
	if _, err := tx.Exec("DELETE FROM palette"); err != nil {
		return err
	}

	for i, c := range p {
		if _, err := tx.Exec("INSERT INTO palette (idx, color) VALUES (?, ?)", i, c.String()); err != nil {
			return err
		}
	}

	return nil
}

// Palette returns the default palette, which is empty if none was set.
func (db *SpriteDB) Palette() (palette.Palette, error) {
	rows, err := db.db.Query("SELECT color FROM palette ORDER BY idx")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var p palette.Palette
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		c, err := palette.ParsePixel(s)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}

	return p, rows.Err()
}

func addFilter(tx *sql.Tx, name string) (int64, error) {
	var id int64
	switch err := tx.QueryRow("SELECT id FROM filter WHERE name = ?", name).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO filter (name) VALUES (?)", name)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// SetFilter stores f, replacing any filter with the same name.
func (db *SpriteDB) SetFilter(f *palette.Filter) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := setFilter(tx, f); err != nil {
		return err
	}

	return tx.Commit()
}

func setFilter(tx *sql.Tx, f *palette.Filter) error {
	id, err := addFilter(tx, f.Name)
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM filter_map WHERE filter_id = ?", id); err != nil {
		return err
	}

	for src, dst := range f.Mapping() {
		if _, err = tx.Exec("INSERT INTO filter_map (filter_id, src, dst) VALUES (?, ?, ?)", id, src, dst); err != nil {
			return err
		}
	}

	return nil
}

// Filters returns every stored filter by name.
func (db *SpriteDB) Filters() (map[string]*palette.Filter, error) {
	rows, err := db.db.Query("SELECT f.name, m.src, m.dst FROM filter AS f LEFT JOIN filter_map AS m ON m.filter_id = f.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mappings := make(map[string]map[string]string)
	for rows.Next() {
		var name string
		var src, dst sql.NullString
		if err := rows.Scan(&name, &src, &dst); err != nil {
			return nil, err
		}
		if _, ok := mappings[name]; !ok {
			mappings[name] = make(map[string]string)
		}
		if src.Valid && dst.Valid {
			mappings[name][src.String] = dst.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	filters := make(map[string]*palette.Filter, len(mappings))
	for name, mapping := range mappings {
		f, err := palette.NewFilter(name, mapping)
		if err != nil {
			return nil, err
		}
		filters[name] = f
	}

	return filters, nil
}

// PutSprite stores source under path, replacing whatever was there. source
// is anything library.Parse accepts.
func (db *SpriteDB) PutSprite(path []string, source interface{}) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := putSprite(tx, path, source); err != nil {
		return err
	}

	return tx.Commit()
}

func putSprite(tx *sql.Tx, path []string, source interface{}) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", library.ErrMalformed)
	}

	c, err := library.Parse(source)
	if err != nil {
		return err
	}

	b, err := json.Marshal(library.Raw(c))
	if err != nil {
		return err
	}

	_, err = tx.Exec("INSERT OR REPLACE INTO sprite (path, source) VALUES (?, ?)", strings.Join(path, separator), string(b))
	return err
}

func parseSource(s string) (library.Command, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	return library.Parse(raw)
}

// Sprite returns the source stored under path, or nil if there is none.
func (db *SpriteDB) Sprite(path []string) (library.Command, error) {
	var s string
	switch err := db.db.QueryRow("SELECT source FROM sprite WHERE path = ?", strings.Join(path, separator)).Scan(&s); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return parseSource(s)
	default:
		return nil, err
	}
}

// Library returns every stored sprite as a raw library.
func (db *SpriteDB) Library() (map[string]interface{}, error) {
	rows, err := db.db.Query("SELECT path, source FROM sprite ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raw := make(map[string]interface{})
	for rows.Next() {
		var path, s string
		if err := rows.Scan(&path, &s); err != nil {
			return nil, err
		}
		c, err := parseSource(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := library.Insert(raw, strings.Split(path, separator), library.Raw(c)); err != nil {
			return nil, err
		}
	}

	return raw, rows.Err()
}
