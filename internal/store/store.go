// Package store is the read-only content source for versefeed.
//
// It answers the two query shapes the feed needs (one random verse for a
// tag, one whole chapter in order) plus the exact and paged lookups used by
// search and the book catalog.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/abelbrown/versefeed/internal/logging"
	"github.com/abelbrown/versefeed/internal/model"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

var (
	// ErrNotFound means the query matched nothing. Expected and non-fatal.
	ErrNotFound = errors.New("not found")

	// ErrSourceUnavailable wraps any I/O or connection failure.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Store reads verses from the dataset. NOT an interface - concrete type.
// Thread-safety: all methods are safe for concurrent use; the dataset is
// immutable for the process lifetime.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Close takes the write lock so it never races a query
}

// Open opens the dataset at dbPath read-only.
func Open(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: dataset %s: %w", ErrSourceUnavailable, dbPath, err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrSourceUnavailable, err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", ErrSourceUnavailable, err)
	}

	s := &Store{db: db}

	tables, err := s.Tables(context.Background())
	if err != nil {
		db.Close()
		return nil, err
	}
	logging.Info("Database opened", "path", dbPath, "tables", strings.Join(tables, ","))

	return s, nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Tables lists the tables in the dataset.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, unavailable("list tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable("list tables", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list tables", err)
	}
	return names, nil
}

// verseColumns is shared by every query that produces items.
const verseColumns = `
	SELECT v.text, b.name, c.number, v.verse_number
	FROM verses_web v
	JOIN chapters c ON v.chapter_id = c.id
	JOIN books b ON c.book_id = b.id
`

const randomByTagQuery = verseColumns + `
	JOIN verse_tags vt ON v.id = vt.verse_id
	JOIN tags t ON vt.tag_id = t.id
	WHERE t.name = ?
	ORDER BY RANDOM()
	LIMIT 1
`

// FetchRandom returns one verse tagged with tag, chosen uniformly among all
// matches at call time. Sampling is with replacement; repeats are possible.
// The returned item has no decor; callers assign one.
// Thread-safe: acquires read lock.
func (s *Store) FetchRandom(ctx context.Context, tag string) (model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, err := scanItem(s.db.QueryRowContext(ctx, randomByTagQuery, model.NormalizeCategory(tag)))
	if err != nil {
		return model.Item{}, classify(fmt.Sprintf("random verse for %q", tag), err)
	}
	return item, nil
}

const chapterQuery = verseColumns + `
	WHERE b.name = ? AND c.number = ?
	ORDER BY v.verse_number ASC
`

// FetchRange returns the verses of a chapter in ascending verse order,
// terminated by the sentinel item. An unknown chapter yields only the
// sentinel.
// Thread-safe: acquires read lock.
func (s *Store) FetchRange(ctx context.Context, key model.RangeKey) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.queryItems(ctx, chapterQuery, key.Book, key.Chapter)
	if err != nil {
		return nil, classify("chapter "+key.String(), err)
	}
	return append(items, model.Sentinel()), nil
}

const verseQuery = verseColumns + `
	WHERE b.name = ? AND c.number = ? AND v.verse_number = ?
	LIMIT 1
`

// FetchOne returns the verse at loc.
// Thread-safe: acquires read lock.
func (s *Store) FetchOne(ctx context.Context, loc model.Locator) (model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, err := scanItem(s.db.QueryRowContext(ctx, verseQuery, loc.Book, loc.Chapter, loc.Verse))
	if err != nil {
		return model.Item{}, classify(loc.String(), err)
	}
	return item, nil
}

// Lookup parses ref as a locator and fetches it. Malformed references are
// reported as ErrNotFound.
func (s *Store) Lookup(ctx context.Context, ref string) (model.Item, error) {
	loc, err := model.ParseLocator(ref)
	if err != nil {
		return model.Item{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return s.FetchOne(ctx, loc)
}

// queryItems executes a query and scans results into items.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (model.Item, error) {
	var (
		text, book     string
		chapter, verse int
	)
	if err := row.Scan(&text, &book, &chapter, &verse); err != nil {
		return model.Item{}, err
	}
	return model.Item{Body: text, Label: model.Label(book, chapter, verse)}, nil
}

// classify maps driver errors onto the store's error taxonomy.
func classify(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return unavailable(what, err)
}

func unavailable(what string, err error) error {
	return fmt.Errorf("%s: %w: %w", what, ErrSourceUnavailable, err)
}
