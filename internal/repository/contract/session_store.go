package contract

import (
	"context"

	"product-chat-be/internal/entity"
)

// SessionStore is the durable side of the chat session cache. Multi-row
// writes are atomic.
type SessionStore interface {
	GetSessions(ctx context.Context) ([]*entity.Session, error)
	// GetSession returns nil, nil when the session does not exist.
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	GetMessages(ctx context.Context, sessionId string) ([]entity.Message, error)
	InsertSession(ctx context.Context, session *entity.Session) error
	ReplaceSession(ctx context.Context, session *entity.Session) error
	InsertMessage(ctx context.Context, message *entity.Message) error
	UpsertSessionAndMessages(ctx context.Context, session *entity.Session, messages ...entity.Message) error
	DeleteSessionAndMessages(ctx context.Context, id string) error
}
