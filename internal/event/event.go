package event

import (
	"time"

	"github.com/google/uuid"

	"openlens/internal/model"
)

// SearchExecuted is emitted after a successful search by an authenticated
// user. Consumers persist it as one history row; the search response never
// waits on this.
type SearchExecuted struct {
	UserID      uuid.UUID         `json:"user_id"`
	Query       string            `json:"query"`
	MediaType   model.MediaType   `json:"media_type"`
	Filters     map[string]string `json:"filters,omitempty"`
	ResultCount int               `json:"result_count"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// Publisher emits search events for asynchronous recording.
type Publisher interface {
	Publish(event SearchExecuted)
	Close() error
}
