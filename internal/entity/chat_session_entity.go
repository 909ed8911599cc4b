package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultSessionName = "New Chat"

type Session struct {
	Id         string
	Name       string
	TokensUsed int
	CreatedAt  time.Time
	Messages   []Message
}

func NewSession() *Session {
	return &Session{
		Id:        uuid.NewString(),
		Name:      DefaultSessionName,
		CreatedAt: time.Now().UTC(),
		Messages:  []Message{},
	}
}

// AddMessage appends msg and accumulates its token usage.
func (s *Session) AddMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.TokensUsed += msg.Tokens + msg.PromptTokens
}

// Clone returns a copy whose message slice can be modified independently.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}
