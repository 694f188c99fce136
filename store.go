package poptravel

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ContentStore is the persistence gateway for content records. Two
// interchangeable backends implement it: Store (SQLite) and MemStore (the
// simulated backend used when no database is configured, and in tests).
type ContentStore interface {
	// List returns records matching every filter in opts, newest-first.
	List(opts ListOptions) ([]Content, error)
	// Get returns one record by id, or ErrNotFound.
	Get(id string) (Content, error)
	// Create assigns an id and timestamps, persists, and returns the stored
	// record. The record must carry a non-empty AuthorID.
	Create(c Content) (Content, error)
	// Update merges non-nil patch fields into the record and refreshes the
	// update timestamp. Returns ErrNotFound when the id is absent.
	Update(id string, patch ContentPatch) (Content, error)
	// Delete removes a record permanently. Deleting an absent id is a no-op
	// success in both backends.
	Delete(id string) error
	Close() error
}

// ListOptions holds the equality filters and result cap for List. Zero
// values mean "no filter"; ordering is always created_at descending.
type ListOptions struct {
	Category Category
	Status   Status
	Limit    int
}

// Store wraps a SQLite database and provides CRUD operations for content
// records.
type Store struct {
	db *sql.DB
}

var _ ContentStore = (*Store)(nil)

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write access, busy timeout so writers wait
	// instead of failing with SQLITE_BUSY; synchronous=NORMAL is safe with
	// WAL and avoids an fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS content (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft',
    image_url TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT ',,',
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    author_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS content_status_category ON content (status, category, created_at);
`)
	return err
}

const contentColumns = `id, title, body, category, status, image_url, excerpt, tags, metadata, created_at, updated_at, author_id`

func (s *Store) List(opts ListOptions) ([]Content, error) {
	var where []string
	var args []any
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(opts.Category))
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}
	query := `SELECT ` + contentColumns + ` FROM content`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

func (s *Store) Get(id string) (Content, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE id = ?`, id)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Content{}, ErrNotFound
	}
	return c, err
}

func (s *Store) Create(c Content) (Content, error) {
	if c.AuthorID == "" {
		return Content{}, ErrUnauthenticated
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	c.ID = uuid.NewString()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	meta, err := EncodeMetadata(c.Meta)
	if err != nil {
		return Content{}, fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO content (`+contentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Body, string(c.Category), string(c.Status), c.ImageURL, c.Excerpt,
		encodeTags(c.Tags), string(meta), now.UnixNano(), now.UnixNano(), c.AuthorID)
	if err != nil {
		return Content{}, err
	}
	return c, nil
}

func (s *Store) Update(id string, patch ContentPatch) (Content, error) {
	c, err := s.Get(id)
	if err != nil {
		return Content{}, err
	}
	patch.apply(&c)
	if c.Meta != nil && c.Meta.Category() != c.Category {
		// Category changed without fresh metadata: reset to the new shape.
		c.Meta = NewMetadata(c.Category)
	}
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	c.UpdatedAt = time.Now().UTC()

	meta, err := EncodeMetadata(c.Meta)
	if err != nil {
		return Content{}, fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.db.Exec(`UPDATE content SET title = ?, body = ?, category = ?, status = ?, image_url = ?, excerpt = ?, tags = ?, metadata = ?, updated_at = ?, author_id = ? WHERE id = ?`,
		c.Title, c.Body, string(c.Category), string(c.Status), c.ImageURL, c.Excerpt,
		encodeTags(c.Tags), string(meta), c.UpdatedAt.UnixNano(), c.AuthorID, id)
	if err != nil {
		return Content{}, err
	}
	return c, nil
}

func (s *Store) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM content WHERE id = ?`, id)
	return err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanContent(row scanner) (Content, error) {
	var c Content
	var category, status, tags, meta string
	var createdAt, updatedAt int64
	if err := row.Scan(&c.ID, &c.Title, &c.Body, &category, &status, &c.ImageURL,
		&c.Excerpt, &tags, &meta, &createdAt, &updatedAt, &c.AuthorID); err != nil {
		return Content{}, err
	}
	c.Category = Category(category)
	c.Status = Status(status)
	c.Tags = decodeTags(tags)
	c.CreatedAt = time.Unix(0, createdAt).UTC()
	c.UpdatedAt = time.Unix(0, updatedAt).UTC()
	m, err := DecodeMetadata(c.Category, []byte(meta))
	if err != nil {
		return Content{}, err
	}
	c.Meta = m
	return c, nil
}

// Tags are stored comma-delimited with leading and trailing commas so a
// single tag can be matched with instr() when filtering in SQL.
func encodeTags(tags []string) string {
	return "," + strings.Join(tags, ",") + ","
}

func decodeTags(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
