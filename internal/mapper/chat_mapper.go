package mapper

import (
	"encoding/json"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

// ChatSessionToEntity maps the session row only; messages are loaded separately.
func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:         s.Id,
		Name:       s.Name,
		TokensUsed: s.TokensUsed,
		CreatedAt:  s.CreatedAt,
		Messages:   []entity.Message{},
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.Session) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:         s.Id,
		Name:       s.Name,
		TokensUsed: s.TokensUsed,
		CreatedAt:  s.CreatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) (*entity.Message, error) {
	if msg == nil {
		return nil, nil
	}

	e := &entity.Message{
		Id:           msg.Id,
		SessionId:    msg.SessionId,
		TimeStamp:    msg.TimeStamp.UTC(),
		Sender:       entity.Role(msg.Sender),
		Tokens:       msg.Tokens,
		PromptTokens: msg.PromptTokens,
		Text:         msg.Text,
	}
	if err := unmarshalOptional(msg.Products, &e.Products); err != nil {
		return nil, err
	}
	if err := unmarshalOptional(msg.CustomerAttributes, &e.CustomerAttributes); err != nil {
		return nil, err
	}
	if err := unmarshalOptional(msg.ExtraQuestions, &e.ExtraQuestions); err != nil {
		return nil, err
	}
	return e, nil
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.Message) (*model.ChatMessage, error) {
	if msg == nil {
		return nil, nil
	}

	out := &model.ChatMessage{
		Id:           msg.Id,
		SessionId:    msg.SessionId,
		TimeStamp:    msg.TimeStamp,
		Sender:       string(msg.Sender),
		Tokens:       msg.Tokens,
		PromptTokens: msg.PromptTokens,
		Text:         msg.Text,
	}

	var err error
	if msg.Products != nil {
		if out.Products, err = marshalJSON(msg.Products); err != nil {
			return nil, err
		}
	}
	if msg.CustomerAttributes != nil {
		if out.CustomerAttributes, err = marshalJSON(msg.CustomerAttributes); err != nil {
			return nil, err
		}
	}
	if msg.ExtraQuestions != nil {
		if out.ExtraQuestions, err = marshalJSON(msg.ExtraQuestions); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalOptional(raw datatypes.JSON, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
