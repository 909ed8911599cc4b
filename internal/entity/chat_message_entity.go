package entity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "User"
	RoleAssistant Role = "Assistant"
)

type Message struct {
	Id                 string              `json:"id"`
	SessionId          string              `json:"sessionId"`
	TimeStamp          time.Time           `json:"timeStamp"`
	Sender             Role                `json:"sender"`
	Tokens             int                 `json:"tokens"`
	PromptTokens       int                 `json:"promptTokens"`
	Text               string              `json:"text"`
	Products           []Product           `json:"products,omitempty"`
	CustomerAttributes *CustomerAttributes `json:"customerAttributes,omitempty"`
	ExtraQuestions     []string            `json:"extraQuestions,omitempty"`
}

// MessageOption sets the optional payload of an assistant message.
type MessageOption func(*Message)

func WithProducts(products []Product) MessageOption {
	return func(m *Message) {
		m.Products = products
	}
}

func WithCustomerAttributes(attrs *CustomerAttributes) MessageOption {
	return func(m *Message) {
		m.CustomerAttributes = attrs
	}
}

func WithExtraQuestions(questions []string) MessageOption {
	return func(m *Message) {
		m.ExtraQuestions = questions
	}
}

func NewMessage(sessionId string, sender Role, tokens, promptTokens int, text string, opts ...MessageOption) Message {
	m := Message{
		Id:           uuid.NewString(),
		SessionId:    sessionId,
		TimeStamp:    nextTimestamp(),
		Sender:       sender,
		Tokens:       tokens,
		PromptTokens: promptTokens,
		Text:         text,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

var (
	clockMu   sync.Mutex
	lastStamp time.Time
)

// nextTimestamp never returns the same instant twice, so messages built one
// after another always sort in construction order.
func nextTimestamp() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()

	now := time.Now().UTC()
	if !now.After(lastStamp) {
		now = lastStamp.Add(time.Microsecond)
	}
	lastStamp = now
	return now
}
