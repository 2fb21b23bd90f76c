package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fxportal/api/models"
)

func TestSortTypeCountsDescendingWithEnumTieBreak(t *testing.T) {
	counts := []models.TypeCount{
		{EventType: "search", Count: 3},
		{EventType: "view", Count: 10},
		{EventType: "download", Count: 3},
		{EventType: "click", Count: 3},
	}

	SortTypeCounts(counts)

	assert.Equal(t, []models.TypeCount{
		{EventType: "view", Count: 10},
		{EventType: "click", Count: 3},
		{EventType: "download", Count: 3},
		{EventType: "search", Count: 3},
	}, counts)
}

func TestSortDeviceCountsDescendingWithBucketTieBreak(t *testing.T) {
	counts := []models.DeviceCount{
		{Device: "unknown", Count: 5},
		{Device: "tablet", Count: 5},
		{Device: "mobile", Count: 9},
		{Device: "desktop", Count: 5},
	}

	SortDeviceCounts(counts)

	assert.Equal(t, []models.DeviceCount{
		{Device: "mobile", Count: 9},
		{Device: "desktop", Count: 5},
		{Device: "tablet", Count: 5},
		{Device: "unknown", Count: 5},
	}, counts)
}

func TestActivityWindowStart(t *testing.T) {
	now := time.Date(2024, 3, 15, 13, 45, 12, 0, time.UTC)
	start := ActivityWindowStart(now)

	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), start)
	// The window never reaches further back than 29 full days before today.
	assert.False(t, start.Before(now.AddDate(0, 0, -30)))
}

func TestActivityWindowStartNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2024, 3, 15, 2, 0, 0, 0, loc) // 2024-03-14 21:00 UTC
	start := ActivityWindowStart(now)

	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), start)
}

func TestTimeFilter(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	clause, args := timeFilter(nil, nil)
	assert.Equal(t, "1 = 1", clause)
	assert.Empty(t, args)

	clause, args = timeFilter(&start, nil)
	assert.Equal(t, "1 = 1 AND timestamp >= ?", clause)
	assert.Equal(t, []interface{}{start}, args)

	clause, args = timeFilter(&start, &end)
	assert.Equal(t, "1 = 1 AND timestamp >= ? AND timestamp <= ?", clause)
	assert.Equal(t, []interface{}{start, end}, args)
}
