package llm

import (
	"context"
	"strings"
)

// DefaultSystemPrompt grounds answers in the retrieved product documents.
const DefaultSystemPrompt = `You are an intelligent assistant for an apparel retailer. You help customers find products that fit their needs.
Answer only with information found in the product documents provided below. If you do not know the answer, say that you do not know.`

// SummarizeSystemPrompt asks for a short session label.
const SummarizeSystemPrompt = `Summarize this prompt in one or two words to use as a label in a button on a web page. Do not use any punctuation.`

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Request is a single completion call. Context carries retrieved documents
// and is appended to the system message.
type Request struct {
	SessionId     string
	Prompt        string
	Context       string
	SystemMessage string
}

// Completion is the model text plus the usage the provider reported.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// ApplyOptions resolves opts over the defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{Temperature: 0.3}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	Complete(ctx context.Context, req Request, options ...Option) (*Completion, error)
}

// BuildMessages turns a request into the system/user pair sent to chat models.
func BuildMessages(req Request) []Message {
	system := req.SystemMessage
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	if req.Context != "" {
		system += "\n\nDocuments:\n" + req.Context
	}
	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: req.Prompt},
	}
}
