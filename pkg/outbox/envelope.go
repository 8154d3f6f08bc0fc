package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies the admin who caused the event, when there is one.
type ActorRef struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
