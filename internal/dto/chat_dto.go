package dto

import (
	"time"
)

type CreateSessionResponse struct {
	Id string `json:"id"`
}

type SessionResponse struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	TokensUsed int       `json:"tokensUsed"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PostMessageRequest starts a product-search turn. Blank templates use the
// built-in prompts.
type PostMessageRequest struct {
	SessionId              string `json:"sessionId" validate:"notblank"`
	UserPrompt             string `json:"userPrompt" validate:"notblank,max=4000"`
	Collection             string `json:"collection,omitempty" validate:"max=100"`
	IntentTemplate         string `json:"intentTemplate,omitempty"`
	AttributesTemplate     string `json:"attributesTemplate,omitempty"`
	ExtraQuestionsTemplate string `json:"extraQuestionsTemplate,omitempty"`
}

type RagRequest struct {
	SessionId  string `json:"sessionId" validate:"notblank"`
	UserPrompt string `json:"userPrompt" validate:"notblank,max=4000"`
	Collection string `json:"collection,omitempty" validate:"max=100"`
}

type RagResponse struct {
	SessionId  string `json:"sessionId"`
	Completion string `json:"completion"`
}

type RenameSessionRequest struct {
	SessionId string `json:"sessionId" validate:"notblank"`
	Name      string `json:"name" validate:"notblank,max=100"`
}

type SummarizeNameRequest struct {
	SessionId string `json:"sessionId" validate:"notblank"`
	Prompt    string `json:"prompt" validate:"notblank,max=4000"`
}

type SummarizeNameResponse struct {
	Name string `json:"name"`
}

type ProductReasoningRequest struct {
	SessionId string `json:"sessionId" validate:"notblank"`
	ProductId string `json:"productId" validate:"notblank"`
}

type SessionRequest struct {
	SessionId string `json:"sessionId" validate:"notblank"`
}
