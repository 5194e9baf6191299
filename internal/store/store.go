// Package store persists notebooks in an embedded SQLite database. The
// generation pipeline never touches it; commands wire the two together.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"noteforge/quill/internal/pipeline"
)

// ErrNotFound is returned when no notebook matches the requested id.
var ErrNotFound = errors.New("notebook not found")

// Store wraps a SQLite database connection.
type Store struct {
	conn *sql.DB
	Path string
}

// SavedNotebook is a pipeline notebook plus its persistence metadata.
type SavedNotebook struct {
	pipeline.Notebook
	SavedAt time.Time `json:"savedAt"`
	IsSaved bool      `json:"isSaved"`
}

const schema = `
CREATE TABLE IF NOT EXISTS notebooks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	structure    TEXT NOT NULL,
	content      TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	saved_at     INTEGER NOT NULL,
	total_images INTEGER NOT NULL DEFAULT 0,
	word_count   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_notebooks_created_at ON notebooks(created_at DESC);
`

// Open opens (creating if necessary) a notebook database with WAL mode and
// foreign keys enabled.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL for concurrent reads while a save is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{conn: conn, Path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Save inserts or replaces a notebook record, stamping saved_at.
func (s *Store) Save(nb *pipeline.Notebook) error {
	structure, err := json.Marshal(nb.Structure)
	if err != nil {
		return fmt.Errorf("encoding structure: %w", err)
	}
	content, err := json.Marshal(nb.Content)
	if err != nil {
		return fmt.Errorf("encoding content: %w", err)
	}

	_, err = s.conn.Exec(`
		INSERT OR REPLACE INTO notebooks
			(id, title, structure, content, created_at, saved_at, total_images, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, nb.ID, nb.Title, string(structure), string(content),
		nb.CreatedAt.UnixMilli(), time.Now().UnixMilli(), nb.TotalImages, nb.WordCount)
	if err != nil {
		return fmt.Errorf("saving notebook: %w", err)
	}
	return nil
}

const selectColumns = "id, title, structure, content, created_at, saved_at, total_images, word_count"

// scanNotebook scans a row holding all notebook columns in standard order.
func scanNotebook(scanner interface{ Scan(dest ...any) error }) (SavedNotebook, error) {
	var nb SavedNotebook
	var structure, content string
	var createdAt, savedAt int64

	err := scanner.Scan(&nb.ID, &nb.Title, &structure, &content,
		&createdAt, &savedAt, &nb.TotalImages, &nb.WordCount)
	if err != nil {
		return nb, err
	}

	if err := json.Unmarshal([]byte(structure), &nb.Structure); err != nil {
		return nb, fmt.Errorf("decoding structure for %s: %w", nb.ID, err)
	}
	if err := json.Unmarshal([]byte(content), &nb.Content); err != nil {
		return nb, fmt.Errorf("decoding content for %s: %w", nb.ID, err)
	}

	nb.CreatedAt = time.UnixMilli(createdAt)
	nb.SavedAt = time.UnixMilli(savedAt)
	nb.IsSaved = true
	return nb, nil
}

// Get returns a single notebook by exact id.
func (s *Store) Get(id string) (*SavedNotebook, error) {
	row := s.conn.QueryRow(
		"SELECT "+selectColumns+" FROM notebooks WHERE id = ?", id)

	nb, err := scanNotebook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &nb, nil
}

// List returns all notebooks, newest first.
func (s *Store) List() ([]SavedNotebook, error) {
	rows, err := s.conn.Query(
		"SELECT " + selectColumns + " FROM notebooks ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notebooks []SavedNotebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, err
		}
		notebooks = append(notebooks, nb)
	}
	return notebooks, rows.Err()
}

// SearchByIDPrefix finds notebooks whose id starts with the given prefix.
func (s *Store) SearchByIDPrefix(prefix string, limit int) ([]SavedNotebook, error) {
	rows, err := s.conn.Query(
		"SELECT "+selectColumns+" FROM notebooks WHERE id LIKE ? LIMIT ?",
		prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notebooks []SavedNotebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, err
		}
		notebooks = append(notebooks, nb)
	}
	return notebooks, rows.Err()
}

// Delete removes a notebook by id.
func (s *Store) Delete(id string) error {
	result, err := s.conn.Exec("DELETE FROM notebooks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting notebook: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored notebooks.
func (s *Store) Count() (int, error) {
	var n int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM notebooks").Scan(&n)
	return n, err
}

// Usage returns the database size in bytes.
func (s *Store) Usage() (int64, error) {
	var bytes int64
	err := s.conn.QueryRow(
		"SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&bytes)
	if err != nil {
		return 0, fmt.Errorf("querying storage usage: %w", err)
	}
	return bytes, nil
}
