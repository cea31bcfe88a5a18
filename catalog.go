package spritefile

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/spritefile/raster"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is a catalogued sprite file.
type Entry struct {
	Path        string
	SHA1        string
	Format      string
	Width       int
	Height      int
	PixelFormat raster.PixelFormat
	Frames      int
	Colors      int
}

// Catalog is a SQLite database of sprite files.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens or creates the catalog database in file.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	// SQLite only has one writer
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sprite (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, format TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, pixel_format TEXT NOT NULL, frames INTEGER NOT NULL, colors INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add records e, replacing any existing entry with the same path.
func (c *Catalog) Add(e Entry) error {
	if _, err := c.db.Exec("INSERT OR REPLACE INTO sprite (path, sha1, format, width, height, pixel_format, frames, colors) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", e.Path, e.SHA1, e.Format, e.Width, e.Height, e.PixelFormat.String(), e.Frames, e.Colors); err != nil {
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var pf string
	if err := row.Scan(&e.Path, &e.SHA1, &e.Format, &e.Width, &e.Height, &pf, &e.Frames, &e.Colors); err != nil {
		return nil, err
	}

	var ok bool
	if e.PixelFormat, ok = raster.ParsePixelFormat(pf); !ok {
		return nil, fmt.Errorf("spritefile: %s: bad pixel format %q", e.Path, pf)
	}
	return &e, nil
}

// Find returns the entry for path, or nil if there is none.
func (c *Catalog) Find(path string) (*Entry, error) {
	e, err := scanEntry(c.db.QueryRow("SELECT path, sha1, format, width, height, pixel_format, frames, colors FROM sprite WHERE path = ?", path))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return e, nil
	default:
		return nil, err
	}
}

// List returns every entry ordered by path.
func (c *Catalog) List() ([]Entry, error) {
	rows, err := c.db.Query("SELECT path, sha1, format, width, height, pixel_format, frames, colors FROM sprite ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
