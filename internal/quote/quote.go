package quote

import (
	"strings"
	"time"
)

// ImageMarker is stored as content when the payload lives in the data
// directory and no remote reference is kept.
const ImageMarker = "img"

// remotePrefix marks content that is a resource locator. Records whose content
// starts with it are backed by the file named after their id.
const remotePrefix = "http"

// Quote is a captured record.
type Quote struct {
	// ID is assigned by the store, monotonically, and never reused
	ID int64 `json:"id"`

	// Content is a remote reference (pre-ingest), ImageMarker, or literal text
	Content string `json:"content"`

	// Time is when the capture was requested
	Time time.Time `json:"time"`

	// OriginMessageID is the chat message the quote originates from.
	// Rewritten to the attachment message once ingestion completes.
	OriginMessageID string `json:"origin_message_id"`

	// Tags is the ordered tag set; Tags[0] is the scope the quote was captured in
	Tags TagSet `json:"tags"`

	// Group duplicates Tags[0] for scope filtering
	Group string `json:"group"`
}

// IsLocalFile reports whether the quote's payload is the file named by its id
// in the data directory rather than the content string itself.
func (q *Quote) IsLocalFile() bool {
	return strings.HasPrefix(q.Content, remotePrefix) || q.Content == ImageMarker
}

// Summary is the listing projection of a quote.
type Summary struct {
	ID   int64    `json:"id"`
	Tags []string `json:"tags"`
}

// ToSummary converts a Quote to a Summary.
func (q *Quote) ToSummary() Summary {
	return Summary{ID: q.ID, Tags: q.Tags.Slice()}
}
