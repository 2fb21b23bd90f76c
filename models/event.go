// api/models/event.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventTypes enumerates the accepted event types. Declaration order is the
// tie-break order for the dashboard breakdown, so do not reorder.
var EventTypes = []string{"view", "click", "download", "share", "login", "search"}

// EventTypeRank returns the declaration-order index of an event type, or
// len(EventTypes) for anything unknown.
func EventTypeRank(eventType string) int {
	for i, t := range EventTypes {
		if t == eventType {
			return i
		}
	}
	return len(EventTypes)
}

// IsValidEventType reports whether eventType is one of the enumerated values.
func IsValidEventType(eventType string) bool {
	return EventTypeRank(eventType) < len(EventTypes)
}

// Event is a single immutable interaction record as stored in ClickHouse.
// Optional references (UserID, ContentID) are empty strings when absent.
type Event struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	UserID    string          `json:"userId,omitempty"`
	SessionID string          `json:"sessionId"`
	ContentID string          `json:"contentId,omitempty"`
	Page      string          `json:"page,omitempty"`
	Referrer  string          `json:"referrer,omitempty"`
	Device    string          `json:"device,omitempty"`
	Browser   string          `json:"browser,omitempty"`
	OS        string          `json:"os,omitempty"`
	Country   string          `json:"country,omitempty"`
	City      string          `json:"city,omitempty"`
	IPAddress string          `json:"ip,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Duration  float64         `json:"duration,omitempty"` // seconds
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// TrackRequest is the body of POST /api/track. Everything beyond eventType is
// optional; user-agent, referrer and IP come from request headers, not the body.
type TrackRequest struct {
	EventType string          `json:"eventType" binding:"required"`
	ContentID string          `json:"contentId"`
	Page      string          `json:"page"`
	Duration  float64         `json:"duration"`
	Metadata  json.RawMessage `json:"metadata"`
}

// Validate rejects malformed input at the boundary. Content existence is not
// checked here; only the reference shape is.
func (r *TrackRequest) Validate() error {
	if !IsValidEventType(r.EventType) {
		return fmt.Errorf("invalid eventType %q", r.EventType)
	}
	if r.ContentID != "" {
		if _, err := uuid.Parse(r.ContentID); err != nil {
			return fmt.Errorf("invalid contentId %q: %w", r.ContentID, err)
		}
	}
	if r.Duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %v", r.Duration)
	}
	return nil
}

// TrackResponse echoes the resolved session so the client can persist it.
type TrackResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

// OverviewStats are the headline dashboard counts.
type OverviewStats struct {
	TotalEvents    uint64 `json:"totalEvents"`
	UniqueSessions uint64 `json:"uniqueSessions"`
	UniqueUsers    uint64 `json:"uniqueUsers"`
}

// TypeCount is one bucket of the event-type breakdown.
type TypeCount struct {
	EventType string `json:"eventType"`
	Count     uint64 `json:"count"`
}

// DeviceCount is one bucket of the device breakdown.
type DeviceCount struct {
	Device string `json:"device"`
	Count  uint64 `json:"count"`
}

// DayCount is one day of the trailing-30-day activity series.
type DayCount struct {
	Day   string `json:"date"` // YYYY-MM-DD, UTC
	Count uint64 `json:"count"`
}

// ContentCount is a raw top-content ranking entry before the metadata join.
type ContentCount struct {
	ContentID string `json:"contentId"`
	Count     uint64 `json:"count"`
}

// TopContentEntry is a ranking entry enriched with content metadata.
type TopContentEntry struct {
	ContentID string `json:"contentId"`
	Count     uint64 `json:"count"`
	Title     string `json:"title"`
	Type      string `json:"type"`
}

// DashboardStats bundles the five aggregate views of GET /api/dashboard.
type DashboardStats struct {
	Overview        OverviewStats     `json:"overview"`
	EventTypes      []TypeCount       `json:"eventTypes"`
	DeviceBreakdown []DeviceCount     `json:"deviceBreakdown"`
	DailyActivity   []DayCount        `json:"dailyActivity"`
	TopContent      []TopContentEntry `json:"topContent"`
}

// RecentView is one entry of the session recall feed. Content is nil when the
// referenced content has since been deleted; the view itself is still returned.
type RecentView struct {
	ContentID string          `json:"contentId"`
	ViewedAt  time.Time       `json:"viewedAt"`
	Content   *ContentSummary `json:"content"`
}
