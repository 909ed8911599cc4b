package store

import (
	"context"
	"fmt"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/repository/contract"
	"product-chat-be/internal/repository/scope"
	"product-chat-be/internal/repository/specification"
	"product-chat-be/internal/repository/unitofwork"

	"gorm.io/gorm"
)

// SessionStore persists chat sessions and their messages in postgres. Every
// multi-row write runs inside one unit-of-work transaction.
type SessionStore struct {
	uowFactory unitofwork.RepositoryFactory
}

var _ contract.SessionStore = (*SessionStore)(nil)

func NewSessionStore(uowFactory unitofwork.RepositoryFactory) *SessionStore {
	return &SessionStore{uowFactory: uowFactory}
}

type scopeSpec func(*gorm.DB) *gorm.DB

func (s scopeSpec) Apply(db *gorm.DB) *gorm.DB { return s(db) }

func (s *SessionStore) GetSessions(ctx context.Context) ([]*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().FindAll(ctx, scopeSpec(scope.OrderByCreatedDesc))
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (s *SessionStore) GetMessages(ctx context.Context, sessionId string) ([]entity.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		scopeSpec(scope.OrderByTimeStampAsc),
	)
}

func (s *SessionStore) InsertSession(ctx context.Context, session *entity.Session) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().Create(ctx, session)
}

func (s *SessionStore) ReplaceSession(ctx context.Context, session *entity.Session) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().Update(ctx, session)
}

func (s *SessionStore) InsertMessage(ctx context.Context, message *entity.Message) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().Create(ctx, message)
}

func (s *SessionStore) UpsertSessionAndMessages(ctx context.Context, session *entity.Session, messages ...entity.Message) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Upsert(ctx, session); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	if err := uow.ChatMessageRepository().UpsertBulk(ctx, messages); err != nil {
		return fmt.Errorf("upsert messages: %w", err)
	}
	return uow.Commit()
}

func (s *SessionStore) DeleteSessionAndMessages(ctx context.Context, id string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return uow.Commit()
}
