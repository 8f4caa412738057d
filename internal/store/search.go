package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/versefeed/internal/model"
)

// DefaultPageSize is the number of verses per tag search page.
const DefaultPageSize = 8

// maxConcurrentCounts limits parallel chapter count queries.
const maxConcurrentCounts = 4

const tagPageQuery = verseColumns + `
	JOIN verse_tags vt ON v.id = vt.verse_id
	JOIN tags t ON vt.tag_id = t.id
	WHERE t.name = ?
	ORDER BY RANDOM()
	LIMIT ? OFFSET ?
`

// SearchTag returns one page of verses tagged with tag. Ordering is random
// per call, so consecutive pages may overlap. Each verse gets a random
// decor. An unknown tag yields an empty page.
// Thread-safe: acquires read lock.
func (s *Store) SearchTag(ctx context.Context, tag string, page, pageSize int) ([]model.Item, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.queryItems(ctx, tagPageQuery, model.NormalizeCategory(tag), pageSize, page*pageSize)
	if err != nil {
		return nil, unavailable(fmt.Sprintf("search tag %q", tag), err)
	}
	for i := range items {
		items[i] = items[i].WithDecor(rand.IntN(model.MaxDecor) + 1)
	}
	return items, nil
}

// SearchResult is what Search found for a query.
type SearchResult struct {
	Query string
	IsTag bool // query named a catalog category; more pages may follow
	Items []model.Item
}

// Search dispatches a free-text query: catalog categories run a paged tag
// search, anything else is treated as a verse reference.
func (s *Store) Search(ctx context.Context, query string, page, pageSize int) (SearchResult, error) {
	res := SearchResult{Query: query}

	if model.IsCategory(query) {
		res.IsTag = true
		items, err := s.SearchTag(ctx, query, page, pageSize)
		if err != nil {
			return res, err
		}
		res.Items = items
		return res, nil
	}

	item, err := s.Lookup(ctx, query)
	if errors.Is(err, ErrNotFound) {
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Items = []model.Item{item.WithDecor(rand.IntN(model.MaxDecor) + 1)}
	return res, nil
}

const chapterCountQuery = `
	SELECT COUNT(*) FROM chapters
	WHERE book_id = (SELECT id FROM books WHERE name = ?)
`

// ChapterCount returns the number of chapters in book. Unknown books have
// zero chapters.
// Thread-safe: acquires read lock.
func (s *Store) ChapterCount(ctx context.Context, book string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, chapterCountQuery, book).Scan(&count); err != nil {
		return 0, unavailable("chapter count for "+book, err)
	}
	return count, nil
}

// ChapterCounts loads chapter counts for many books in parallel. The first
// failure cancels the remaining queries.
func (s *Store) ChapterCounts(ctx context.Context, books []string) (map[string]int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCounts)

	var mu sync.Mutex
	counts := make(map[string]int, len(books))

	for _, book := range books {
		g.Go(func() error {
			n, err := s.ChapterCount(ctx, book)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[book] = n
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}
