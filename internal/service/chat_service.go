package service

import (
	"context"

	"product-chat-be/internal/dto"
	"product-chat-be/internal/entity"
	"product-chat-be/internal/repository/memory"
	"product-chat-be/pkg/rag/executor"
	"product-chat-be/pkg/rag/extract"
)

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.SessionResponse, error)
	GetMessages(ctx context.Context, sessionId string) ([]entity.Message, error)
	PostMessage(ctx context.Context, req *dto.PostMessageRequest) ([]entity.Message, error)
	CompleteRAG(ctx context.Context, req *dto.RagRequest) (*dto.RagResponse, error)
	RenameSession(ctx context.Context, req *dto.RenameSessionRequest) error
	SummarizeSessionName(ctx context.Context, req *dto.SummarizeNameRequest) (*dto.SummarizeNameResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
	ProductReasoning(ctx context.Context, req *dto.ProductReasoningRequest) (*entity.Message, error)
}

type chatService struct {
	sessions *memory.SessionCache
	pipeline *executor.Pipeline
}

func NewChatService(sessions *memory.SessionCache, pipeline *executor.Pipeline) IChatService {
	return &chatService{
		sessions: sessions,
		pipeline: pipeline,
	}
}

func (s *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, &dto.SessionResponse{
			Id:         session.Id,
			Name:       session.Name,
			TokensUsed: session.TokensUsed,
			CreatedAt:  session.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) GetMessages(ctx context.Context, sessionId string) ([]entity.Message, error) {
	messages, err := s.sessions.Messages(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []entity.Message{}
	}
	return messages, nil
}

func (s *chatService) PostMessage(ctx context.Context, req *dto.PostMessageRequest) ([]entity.Message, error) {
	return s.pipeline.ProductSearch(ctx, req.SessionId, req.UserPrompt, req.Collection, extract.Templates{
		Intent:         req.IntentTemplate,
		Attributes:     req.AttributesTemplate,
		ExtraQuestions: req.ExtraQuestionsTemplate,
	})
}

func (s *chatService) CompleteRAG(ctx context.Context, req *dto.RagRequest) (*dto.RagResponse, error) {
	completion, err := s.pipeline.CompleteRAG(ctx, req.SessionId, req.UserPrompt, req.Collection)
	if err != nil {
		return nil, err
	}
	return &dto.RagResponse{SessionId: req.SessionId, Completion: completion}, nil
}

func (s *chatService) RenameSession(ctx context.Context, req *dto.RenameSessionRequest) error {
	return s.sessions.Rename(ctx, req.SessionId, req.Name)
}

func (s *chatService) SummarizeSessionName(ctx context.Context, req *dto.SummarizeNameRequest) (*dto.SummarizeNameResponse, error) {
	name, err := s.pipeline.SummarizeSessionName(ctx, req.SessionId, req.Prompt)
	if err != nil {
		return nil, err
	}
	return &dto.SummarizeNameResponse{Name: name}, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId string) error {
	return s.sessions.Delete(ctx, sessionId)
}

func (s *chatService) ProductReasoning(ctx context.Context, req *dto.ProductReasoningRequest) (*entity.Message, error) {
	return s.pipeline.ProductReasoning(ctx, req.SessionId, req.ProductId)
}
