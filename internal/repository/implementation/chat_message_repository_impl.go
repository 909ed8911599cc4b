package implementation

import (
	"context"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/mapper"
	"product-chat-be/internal/model"
	"product-chat-be/internal/repository/contract"
	"product-chat-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m, err := r.mapper.ChatMessageToModel(message)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ChatMessageRepositoryImpl) UpsertBulk(ctx context.Context, messages []entity.Message) error {
	if len(messages) == 0 {
		return nil
	}
	models := make([]*model.ChatMessage, 0, len(messages))
	for i := range messages {
		m, err := r.mapper.ChatMessageToModel(&messages[i])
		if err != nil {
			return err
		}
		models = append(models, m)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(models).Error
}

func (r *ChatMessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ChatMessage{}).Error
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Message, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Message, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ChatMessageToEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}
