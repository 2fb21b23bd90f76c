package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEventType(t *testing.T) {
	for _, eventType := range EventTypes {
		assert.True(t, IsValidEventType(eventType), eventType)
	}
	assert.False(t, IsValidEventType("purchase"))
	assert.False(t, IsValidEventType(""))
	assert.False(t, IsValidEventType("View"))
}

func TestEventTypeRankFollowsDeclarationOrder(t *testing.T) {
	assert.Equal(t, 0, EventTypeRank("view"))
	assert.Equal(t, 1, EventTypeRank("click"))
	assert.Equal(t, 5, EventTypeRank("search"))
	assert.Equal(t, len(EventTypes), EventTypeRank("nonsense"))
}

func TestTrackRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     TrackRequest
		wantErr bool
	}{
		{"minimal view", TrackRequest{EventType: "view"}, false},
		{"with content id", TrackRequest{EventType: "download", ContentID: "7d2f77a5-9f0b-4a4c-9f3e-2b1a6c8d9e01"}, false},
		{"with duration", TrackRequest{EventType: "view", Duration: 12.5}, false},
		{"bad event type", TrackRequest{EventType: "hover"}, true},
		{"empty event type", TrackRequest{}, true},
		{"malformed content id", TrackRequest{EventType: "view", ContentID: "not-a-uuid"}, true},
		{"negative duration", TrackRequest{EventType: "view", Duration: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
