// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"fxportal/api/middleware"
	"fxportal/api/models"
	"fxportal/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventStore is the slice of the analytics store the handlers need.
type EventStore interface {
	InsertEvent(ctx context.Context, event models.Event) error
	Overview(ctx context.Context, start, end *time.Time) (models.OverviewStats, error)
	EventTypeBreakdown(ctx context.Context, start, end *time.Time) ([]models.TypeCount, error)
	DeviceBreakdown(ctx context.Context, start, end *time.Time) ([]models.DeviceCount, error)
	DailyActivity(ctx context.Context, start, end *time.Time, now time.Time) ([]models.DayCount, error)
	TopContent(ctx context.Context, start, end *time.Time, limit uint64) ([]models.ContentCount, error)
	RecentViews(ctx context.Context, sessionID string, limit uint64) ([]models.RecentView, error)
}

// ContentStore is the slice of the content store the handlers need.
type ContentStore interface {
	IncrementStat(ctx context.Context, contentID, field string) error
	FindSummaries(ctx context.Context, contentIDs []string) (map[string]models.ContentSummary, error)
}

type AnalyticsHandlers struct {
	Events   EventStore
	Contents ContentStore
	Metrics  *middleware.HTTPMetrics
}

func NewAnalyticsHandlers(events EventStore, contents ContentStore, metrics *middleware.HTTPMetrics) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		Events:   events,
		Contents: contents,
		Metrics:  metrics,
	}
}

// TrackEvent records a single interaction event. Identity resolution always
// succeeds, so the client gets its session ID back even when persistence is
// down; only malformed input is rejected.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cookieValue, _ := c.Cookie(utils.SessionCookieName)
	sessionID, issued := utils.ResolveSession(cookieValue)
	if issued {
		c.SetSameSite(http.SameSiteLaxMode)
		// Not HttpOnly: the frontend reads this cookie for session recall.
		c.SetCookie(
			utils.SessionCookieName,
			sessionID,
			utils.SessionCookieMaxAge,
			"/",
			"",
			os.Getenv("GIN_MODE") == "release",
			false,
		)
	}

	userAgent := c.GetHeader("User-Agent")
	event := models.Event{
		EventID:   uuid.New().String(),
		EventType: req.EventType,
		UserID:    c.GetString("user_id"),
		SessionID: sessionID,
		ContentID: req.ContentID,
		Page:      req.Page,
		Referrer:  c.GetHeader("Referer"),
		Device:    utils.DetectDevice(userAgent),
		Browser:   userAgent,
		OS:        utils.DetectOS(userAgent),
		IPAddress: c.ClientIP(),
		Timestamp: time.Now().UTC(),
		Duration:  req.Duration,
		Metadata:  req.Metadata,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Events.InsertEvent(ctx, event); err != nil {
		// The event is lost but the client flow must not be: return the
		// resolved session anyway.
		log.Printf("ERROR: Failed to insert analytics event %s: %v", event.EventID, err)
		c.JSON(http.StatusOK, models.TrackResponse{Success: true, SessionID: sessionID})
		return
	}

	if h.Metrics != nil {
		h.Metrics.EventsRecorded.WithLabelValues(event.EventType).Inc()
	}

	if field, ok := models.StatFields[event.EventType]; ok && event.ContentID != "" {
		// Best effort: a missing content row must not fail the recorded event.
		if err := h.Contents.IncrementStat(ctx, event.ContentID, field); err != nil {
			log.Printf("Failed to increment %s for content %s: %v", field, event.ContentID, err)
		}
	}

	c.JSON(http.StatusOK, models.TrackResponse{Success: true, SessionID: sessionID})
}

// parseDateParam accepts RFC3339 or a bare date.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
	}
	t = t.UTC()
	return &t, nil
}

// Dashboard computes the five aggregate views over the optionally
// range-filtered event log. Admin only.
func (h *AnalyticsHandlers) Dashboard(c *gin.Context) {
	start, err := parseDateParam(c.Query("startDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'startDate'. Use RFC3339 or YYYY-MM-DD"})
		return
	}
	end, err := parseDateParam(c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'endDate'. Use RFC3339 or YYYY-MM-DD"})
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'endDate' must not be before 'startDate'"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	overview, err := h.Events.Overview(ctx, start, end)
	if err != nil {
		log.Printf("Error getting dashboard overview: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard statistics"})
		return
	}

	eventTypes, err := h.Events.EventTypeBreakdown(ctx, start, end)
	if err != nil {
		log.Printf("Error getting event type breakdown: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard statistics"})
		return
	}

	devices, err := h.Events.DeviceBreakdown(ctx, start, end)
	if err != nil {
		log.Printf("Error getting device breakdown: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard statistics"})
		return
	}

	daily, err := h.Events.DailyActivity(ctx, start, end, time.Now())
	if err != nil {
		log.Printf("Error getting daily activity: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard statistics"})
		return
	}

	topCounts, err := h.Events.TopContent(ctx, start, end, 10)
	if err != nil {
		log.Printf("Error getting top content: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard statistics"})
		return
	}

	summaries := h.lookupSummaries(ctx, contentIDs(topCounts))

	c.JSON(http.StatusOK, models.DashboardStats{
		Overview:        overview,
		EventTypes:      eventTypes,
		DeviceBreakdown: devices,
		DailyActivity:   daily,
		TopContent:      EnrichTopContent(topCounts, summaries),
	})
}

// SessionRecall returns the most recent view events of a session with their
// content summaries, newest first. An unknown session yields an empty list.
func (h *AnalyticsHandlers) SessionRecall(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var limit uint64 = 20
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.ParseUint(limitParam, 10, 64)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	views, err := h.Events.RecentViews(ctx, sessionID, limit)
	if err != nil {
		log.Printf("Error getting recent views for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session activity"})
		return
	}

	ids := make([]string, 0, len(views))
	for _, v := range views {
		if v.ContentID != "" {
			ids = append(ids, v.ContentID)
		}
	}
	summaries := h.lookupSummaries(ctx, ids)

	c.JSON(http.StatusOK, gin.H{"recentViews": EnrichRecentViews(views, summaries)})
}

// lookupSummaries degrades to an empty map on failure: a broken content join
// yields placeholders, never a failed dashboard or recall response.
func (h *AnalyticsHandlers) lookupSummaries(ctx context.Context, ids []string) map[string]models.ContentSummary {
	if len(ids) == 0 {
		return nil
	}
	summaries, err := h.Contents.FindSummaries(ctx, ids)
	if err != nil {
		log.Printf("Failed to load content summaries: %v", err)
		return nil
	}
	return summaries
}

func contentIDs(counts []models.ContentCount) []string {
	ids := make([]string, 0, len(counts))
	for _, cc := range counts {
		ids = append(ids, cc.ContentID)
	}
	return ids
}

// EnrichTopContent joins ranking entries against content summaries,
// substituting the Unknown placeholder on a miss.
func EnrichTopContent(counts []models.ContentCount, summaries map[string]models.ContentSummary) []models.TopContentEntry {
	entries := make([]models.TopContentEntry, 0, len(counts))
	for _, cc := range counts {
		entry := models.TopContentEntry{
			ContentID: cc.ContentID,
			Count:     cc.Count,
			Title:     "Unknown",
			Type:      "unknown",
		}
		if summary, ok := summaries[cc.ContentID]; ok {
			entry.Title = summary.Title
			entry.Type = summary.Type
		}
		entries = append(entries, entry)
	}
	return entries
}

// EnrichRecentViews attaches content summaries to recall entries. Views of
// deleted content keep their place with a nil summary so the user's history
// survives content removal.
func EnrichRecentViews(views []models.RecentView, summaries map[string]models.ContentSummary) []models.RecentView {
	enriched := make([]models.RecentView, 0, len(views))
	for _, v := range views {
		if summary, ok := summaries[v.ContentID]; ok {
			s := summary
			v.Content = &s
		}
		enriched = append(enriched, v)
	}
	return enriched
}
