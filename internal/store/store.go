// Package store persists the image library and per-image adjustments in
// SQLite.
//
// Each imported image gets an integer id. Its Parameter is stored in the same
// row and is written whenever an edit is committed. A small key/value table
// holds application settings such as the last opened image.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Register the pure-Go "sqlite" driver

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
)

// DatabaseName is the file name of the library database.
const DatabaseName = "images.db"

// ErrNotFound is returned for unknown image ids and config keys.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS images (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	path         TEXT UNIQUE NOT NULL,
	exposure     REAL NOT NULL DEFAULT 0,
	contrast     REAL NOT NULL DEFAULT 0,
	highlights   REAL NOT NULL DEFAULT 0,
	shadows      REAL NOT NULL DEFAULT 0,
	black_levels REAL NOT NULL DEFAULT 0,
	saturation   REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS config (
	key   TEXT NOT NULL PRIMARY KEY,
	value TEXT
);`

// Image is one library entry.
type Image struct {
	ID     int64             `json:"id"`
	Path   string            `json:"path"`
	Params imaging.Parameter `json:"params"`
}

// Store is a SQLite-backed image library. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import adds the paths that are not yet in the library and returns the new
// entries in id order. Known paths are skipped.
func (s *Store) Import(ctx context.Context, paths []string) ([]Image, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	defer tx.Rollback()

	var added []Image
	for _, p := range paths {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO images (path) VALUES (?)`, p)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", p, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", p, err)
		}
		if n == 0 {
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", p, err)
		}
		added = append(added, Image{ID: id, Path: p})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return added, nil
}

// Lookup returns the id of path, importing it if needed.
func (s *Store) Lookup(ctx context.Context, path string) (int64, error) {
	if _, err := s.Import(ctx, []string{path}); err != nil {
		return 0, err
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM images WHERE path = ?`, path).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup %s: %w", path, err)
	}
	return id, nil
}

const imageColumns = `id, path, exposure, contrast, highlights, shadows, black_levels, saturation`

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(row scanner) (Image, error) {
	var img Image
	p := &img.Params
	err := row.Scan(&img.ID, &img.Path,
		&p.Exposure, &p.Contrast, &p.Highlights, &p.Shadows, &p.BlackLevels, &p.Saturation)
	return img, err
}

// Images lists the library in id order.
func (s *Store) Images(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+imageColumns+` FROM images ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("list images: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// Image returns the entry with the given id.
func (s *Store) Image(ctx context.Context, id int64) (Image, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Image{}, fmt.Errorf("image %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Image{}, fmt.Errorf("image %d: %w", id, err)
	}
	return img, nil
}

// Params returns the stored adjustments of an image.
func (s *Store) Params(ctx context.Context, id int64) (imaging.Parameter, error) {
	img, err := s.Image(ctx, id)
	if err != nil {
		return imaging.Parameter{}, err
	}
	return img.Params, nil
}

// SaveParams stores the adjustments of an image.
func (s *Store) SaveParams(ctx context.Context, id int64, p imaging.Parameter) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE images
		SET exposure = ?, contrast = ?, highlights = ?, shadows = ?, black_levels = ?, saturation = ?
		WHERE id = ?`,
		p.Exposure, p.Contrast, p.Highlights, p.Shadows, p.BlackLevels, p.Saturation, id)
	if err != nil {
		return fmt.Errorf("save params %d: %w", id, err)
	}
	return expectOne(res, id)
}

// Delete removes an image from the library.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete image %d: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("image %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("image %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetConfig stores a setting, replacing any previous value.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set config %s: %w", key, err)
	}
	return nil
}

// Config returns a stored setting.
func (s *Store) Config(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("config %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("config %s: %w", key, err)
	}
	return value.String, nil
}
