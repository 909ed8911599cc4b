package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"
	TypeProductsImported  = "PRODUCTS_IMPORTED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewChatTurnCompleted reports a persisted turn and the tokens it consumed.
func NewChatTurnCompleted(sessionId, turn string, promptTokens, completionTokens int, fallbacks []string) BaseEvent {
	if fallbacks == nil {
		fallbacks = []string{}
	}
	now := time.Now().UTC()
	return BaseEvent{
		Type: TypeChatTurnCompleted,
		Data: map[string]interface{}{
			"session_id":        sessionId,
			"turn":              turn,
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"fallbacks":         fallbacks,
			"occurred_at":       now.Format(time.RFC3339Nano),
		},
		OccurredAt: now,
	}
}

func NewProductsImported(collection string, count int) BaseEvent {
	now := time.Now().UTC()
	return BaseEvent{
		Type: TypeProductsImported,
		Data: map[string]interface{}{
			"collection":  collection,
			"count":       count,
			"occurred_at": now.Format(time.RFC3339Nano),
		},
		OccurredAt: now,
	}
}
