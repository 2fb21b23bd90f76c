package models

// ContentSummary is the display slice of a content entity used to enrich
// analytics results. The full entity lives in the content service's schema;
// this subsystem only reads these columns and increments the stat counters.
type ContentSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	FileURL   string `json:"fileUrl"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// StatFields maps an event type to the content counter column it increments.
// Event types without an entry do not touch content stats.
var StatFields = map[string]string{
	"view":     "views",
	"download": "downloads",
	"share":    "shares",
}
