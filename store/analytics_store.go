// api/store/analytics_store.go
package store

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"fxportal/api/database"
	"fxportal/api/models"
)

// AnalyticsStore owns the append-only event log in ClickHouse. Events are
// write-once: there is no update or delete anywhere in this store.
type AnalyticsStore struct {
	DB *database.ClickHouseClient
}

func NewAnalyticsStore(chClient *database.ClickHouseClient) *AnalyticsStore {
	return &AnalyticsStore{
		DB: chClient,
	}
}

// EnsureSchema creates the event log table if it does not exist.
func (s *AnalyticsStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS analytics_events
		(
			event_id   String,
			event_type LowCardinality(String),
			user_id    String,
			session_id String,
			content_id String,
			page       String,
			referrer   String,
			device     LowCardinality(String),
			browser    String,
			os         LowCardinality(String),
			country    String,
			city       String,
			ip         String,
			timestamp  DateTime64(3, 'UTC'),
			duration   Float64,
			metadata   String
		)
		ENGINE = MergeTree
		PARTITION BY toYYYYMM(timestamp)
		ORDER BY (timestamp, session_id)
	`
	if err := s.DB.Conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create analytics_events table: %w", err)
	}
	return nil
}

// InsertEvent appends a single event to the log.
func (s *AnalyticsStore) InsertEvent(ctx context.Context, event models.Event) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_id, event_type, user_id, session_id, content_id, page, referrer,
			device, browser, os, country, city, ip, timestamp, duration, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}

	err = batch.Append(
		event.EventID,
		event.EventType,
		event.UserID,
		event.SessionID,
		event.ContentID,
		event.Page,
		event.Referrer,
		event.Device,
		event.Browser,
		event.OS,
		event.Country,
		event.City,
		event.IPAddress,
		event.Timestamp,
		event.Duration,
		string(event.Metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to append event %s: %w", event.EventID, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send event batch: %w", err)
	}
	return nil
}

// timeFilter builds the WHERE fragment for an optional [start, end] range.
// Either bound may be nil for an open-ended range.
func timeFilter(start, end *time.Time) (string, []interface{}) {
	clause := "1 = 1"
	var args []interface{}
	if start != nil {
		clause += " AND timestamp >= ?"
		args = append(args, *start)
	}
	if end != nil {
		clause += " AND timestamp <= ?"
		args = append(args, *end)
	}
	return clause, args
}

// Overview returns the headline counts for the range. Anonymous events carry
// an empty user_id and are excluded from the unique-user count only.
func (s *AnalyticsStore) Overview(ctx context.Context, start, end *time.Time) (models.OverviewStats, error) {
	where, args := timeFilter(start, end)
	query := fmt.Sprintf(`
		SELECT
			count() AS total_events,
			uniqExact(session_id) AS unique_sessions,
			uniqExactIf(user_id, user_id != '') AS unique_users
		FROM analytics_events
		WHERE %s
	`, where)

	var overview models.OverviewStats
	row := s.DB.Conn.QueryRow(ctx, query, args...)
	if err := row.Scan(&overview.TotalEvents, &overview.UniqueSessions, &overview.UniqueUsers); err != nil {
		return models.OverviewStats{}, fmt.Errorf("failed to query overview stats: %w", err)
	}
	return overview, nil
}

// EventTypeBreakdown returns per-type counts, highest first. Ties are broken
// by the enum declaration order so the result is deterministic.
func (s *AnalyticsStore) EventTypeBreakdown(ctx context.Context, start, end *time.Time) ([]models.TypeCount, error) {
	where, args := timeFilter(start, end)
	query := fmt.Sprintf(`
		SELECT event_type, count() AS event_count
		FROM analytics_events
		WHERE %s
		GROUP BY event_type
	`, where)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event type breakdown: %w", err)
	}
	defer rows.Close()

	results := []models.TypeCount{}
	for rows.Next() {
		var tc models.TypeCount
		if err := rows.Scan(&tc.EventType, &tc.Count); err != nil {
			log.Printf("Error scanning row for event type breakdown: %v", err)
			continue
		}
		results = append(results, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event type breakdown query: %w", err)
	}

	SortTypeCounts(results)
	return results, nil
}

// SortTypeCounts orders counts descending, ties by enum declaration order.
// ORDER BY in SQL cannot express the enum order, hence the sort here.
func SortTypeCounts(counts []models.TypeCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return models.EventTypeRank(counts[i].EventType) < models.EventTypeRank(counts[j].EventType)
	})
}

// deviceRank fixes the tie-break order of the device breakdown.
func deviceRank(device string) int {
	switch device {
	case "desktop":
		return 0
	case "mobile":
		return 1
	case "tablet":
		return 2
	default:
		return 3
	}
}

// DeviceBreakdown returns per-device counts, highest first. Events with no
// device value land in an "unknown" bucket rather than being dropped.
func (s *AnalyticsStore) DeviceBreakdown(ctx context.Context, start, end *time.Time) ([]models.DeviceCount, error) {
	where, args := timeFilter(start, end)
	query := fmt.Sprintf(`
		SELECT if(device = '', 'unknown', device) AS device_bucket, count() AS event_count
		FROM analytics_events
		WHERE %s
		GROUP BY device_bucket
	`, where)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query device breakdown: %w", err)
	}
	defer rows.Close()

	results := []models.DeviceCount{}
	for rows.Next() {
		var dc models.DeviceCount
		if err := rows.Scan(&dc.Device, &dc.Count); err != nil {
			log.Printf("Error scanning row for device breakdown: %v", err)
			continue
		}
		results = append(results, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during device breakdown query: %w", err)
	}

	SortDeviceCounts(results)
	return results, nil
}

// SortDeviceCounts orders counts descending, ties by fixed bucket order.
func SortDeviceCounts(counts []models.DeviceCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return deviceRank(counts[i].Device) < deviceRank(counts[j].Device)
	})
}

// ActivityWindowStart returns the earliest instant the daily activity series
// may cover: the start of the UTC day 29 days before now, giving a trailing
// 30-day window that never includes a day outside [today-29, today].
func ActivityWindowStart(now time.Time) time.Time {
	year, month, day := now.UTC().Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -29)
}

// DailyActivity returns per-day event counts, oldest first. The trailing
// 30-day window always applies on top of any caller-supplied range; days with
// zero events are simply absent.
func (s *AnalyticsStore) DailyActivity(ctx context.Context, start, end *time.Time, now time.Time) ([]models.DayCount, error) {
	where, args := timeFilter(start, end)
	query := fmt.Sprintf(`
		SELECT toDate(timestamp) AS day, count() AS event_count
		FROM analytics_events
		WHERE %s AND timestamp >= ?
		GROUP BY day
		ORDER BY day ASC
	`, where)
	args = append(args, ActivityWindowStart(now))

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily activity: %w", err)
	}
	defer rows.Close()

	results := []models.DayCount{}
	for rows.Next() {
		var day time.Time
		var count uint64
		if err := rows.Scan(&day, &count); err != nil {
			log.Printf("Error scanning row for daily activity: %v", err)
			continue
		}
		results = append(results, models.DayCount{
			Day:   day.Format("2006-01-02"),
			Count: count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during daily activity query: %w", err)
	}

	return results, nil
}

// TopContent returns the content ids with the most events of any type in
// range, highest first. Metadata enrichment happens in the handler against
// the content store.
func (s *AnalyticsStore) TopContent(ctx context.Context, start, end *time.Time, limit uint64) ([]models.ContentCount, error) {
	if limit == 0 {
		limit = 10
	}
	where, args := timeFilter(start, end)
	query := fmt.Sprintf(`
		SELECT content_id, count() AS event_count
		FROM analytics_events
		WHERE %s AND content_id != ''
		GROUP BY content_id
		ORDER BY event_count DESC
		LIMIT ?
	`, where)
	args = append(args, limit)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top content: %w", err)
	}
	defer rows.Close()

	results := []models.ContentCount{}
	for rows.Next() {
		var cc models.ContentCount
		if err := rows.Scan(&cc.ContentID, &cc.Count); err != nil {
			log.Printf("Error scanning row for top content: %v", err)
			continue
		}
		results = append(results, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during top content query: %w", err)
	}

	return results, nil
}

// RecentViews returns the newest view events of one session, most recent
// first. Content enrichment is the handler's job; entries come back with a
// nil Content.
func (s *AnalyticsStore) RecentViews(ctx context.Context, sessionID string, limit uint64) ([]models.RecentView, error) {
	if limit == 0 {
		limit = 20
	}
	query := `
		SELECT content_id, timestamp
		FROM analytics_events
		WHERE session_id = ? AND event_type = 'view'
		ORDER BY timestamp DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent views: %w", err)
	}
	defer rows.Close()

	results := []models.RecentView{}
	for rows.Next() {
		var rv models.RecentView
		if err := rows.Scan(&rv.ContentID, &rv.ViewedAt); err != nil {
			log.Printf("Error scanning row for recent views: %v", err)
			continue
		}
		results = append(results, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during recent views query: %w", err)
	}

	return results, nil
}
