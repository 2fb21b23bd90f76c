package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	gocache "github.com/patrickmn/go-cache"

	"fxportal/api/models"
)

// ErrContentNotFound signals that a referenced content row no longer exists.
// Callers on the write path log and swallow it; the event log stays intact.
var ErrContentNotFound = errors.New("content not found")

const (
	summaryCacheTTL   = 5 * time.Minute
	summaryCacheSweep = 10 * time.Minute
)

// ContentStore reads content display metadata and increments the denormalized
// stat counters. Summaries are cached; counter writes always hit the database
// because the counters must stay an atomic in-place increment.
type ContentStore struct {
	db    *sql.DB
	cache *gocache.Cache
}

func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{
		db:    db,
		cache: gocache.New(summaryCacheTTL, summaryCacheSweep),
	}
}

// IncrementStat bumps one counter column by exactly 1. The increment happens
// inside the UPDATE statement itself, so concurrent increments on the same
// row never lose updates.
func (s *ContentStore) IncrementStat(ctx context.Context, contentID, field string) error {
	column, ok := statColumn(field)
	if !ok {
		return fmt.Errorf("invalid stat field %q", field)
	}

	// column comes from the whitelist above, never from input.
	query := fmt.Sprintf(`UPDATE contents SET %s = %s + 1 WHERE id = $1;`, column, column)
	result, err := s.db.ExecContext(ctx, query, contentID)
	if err != nil {
		return fmt.Errorf("failed to increment %s for content %s: %w", field, contentID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for content %s: %w", contentID, err)
	}
	if affected == 0 {
		return fmt.Errorf("increment %s for content %s: %w", field, contentID, ErrContentNotFound)
	}
	return nil
}

func statColumn(field string) (string, bool) {
	switch field {
	case "views", "downloads", "shares":
		return field, true
	default:
		return "", false
	}
}

// GetSummary returns the display slice of one content entity, or
// ErrContentNotFound if it has been deleted.
func (s *ContentStore) GetSummary(ctx context.Context, contentID string) (*models.ContentSummary, error) {
	if cached, ok := s.cache.Get(contentID); ok {
		summary := cached.(models.ContentSummary)
		return &summary, nil
	}

	summary := &models.ContentSummary{}
	query := `
		SELECT id, title, type, file_url, COALESCE(thumbnail, '')
		FROM contents
		WHERE id = $1;
	`
	err := s.db.QueryRowContext(ctx, query, contentID).Scan(
		&summary.ID,
		&summary.Title,
		&summary.Type,
		&summary.FileURL,
		&summary.Thumbnail,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("content %s: %w", contentID, ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to get content summary: %w", err)
	}

	s.cache.SetDefault(contentID, *summary)
	return summary, nil
}

// FindSummaries returns the display slices for a set of content ids, keyed by
// id. Missing ids are simply absent from the map so callers can degrade to
// their own placeholders. Cached entries are served without touching the
// database; only misses are queried.
func (s *ContentStore) FindSummaries(ctx context.Context, contentIDs []string) (map[string]models.ContentSummary, error) {
	summaries := make(map[string]models.ContentSummary, len(contentIDs))

	var misses []string
	for _, id := range contentIDs {
		if cached, ok := s.cache.Get(id); ok {
			summaries[id] = cached.(models.ContentSummary)
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return summaries, nil
	}

	query := `
		SELECT id, title, type, file_url, COALESCE(thumbnail, '')
		FROM contents
		WHERE id = ANY($1);
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(misses))
	if err != nil {
		return nil, fmt.Errorf("failed to query content summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var summary models.ContentSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Type, &summary.FileURL, &summary.Thumbnail); err != nil {
			return nil, fmt.Errorf("failed to scan content summary: %w", err)
		}
		summaries[summary.ID] = summary
		s.cache.SetDefault(summary.ID, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during content summaries query: %w", err)
	}

	return summaries, nil
}
