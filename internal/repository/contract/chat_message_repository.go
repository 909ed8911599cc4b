package contract

import (
	"context"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/repository/specification"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// UpsertBulk inserts messages, replacing rows that share an id.
	UpsertBulk(ctx context.Context, messages []entity.Message) error
	DeleteBySessionId(ctx context.Context, sessionId string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Message, error)
}
