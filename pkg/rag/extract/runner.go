package extract

import (
	"context"
	"strings"

	"product-chat-be/internal/pkg/logger"
	"product-chat-be/pkg/apperror"
	"product-chat-be/pkg/llm"
	"product-chat-be/pkg/rag/budget"
)

type Status string

const (
	StatusOK       Status = "OK"
	StatusFallback Status = "FALLBACK"
)

// Result is the outcome of one stage. On fallback Value holds the stage's
// fallback value, Err the reason, and the token counts whatever the model
// call actually consumed.
type Result[T any] struct {
	Value            T
	PromptTokens     int
	CompletionTokens int
	Status           Status
	Err              error
}

func (r Result[T]) Failed() bool {
	return r.Status == StatusFallback
}

// Stage describes one model-backed extraction: how its prompt is built, how
// the reply is parsed, and what to use when either step fails.
type Stage[T any] struct {
	Name            string
	DefaultTemplate string
	SystemMessage   string
	// Fill builds the prompt from the chosen template. Defaults to replacing
	// [USER_PROMPT] with history + "\n" + input.
	Fill     func(template, history, input string) string
	Parse    func(raw string) (T, error)
	Fallback func(input string) T
}

// Runner executes stages against one completion provider within a token
// ceiling.
type Runner struct {
	llm                 llm.LLMProvider
	allocator           *budget.Allocator
	logger              logger.ILogger
	maxCompletionTokens int
}

func NewRunner(provider llm.LLMProvider, allocator *budget.Allocator, log logger.ILogger, maxCompletionTokens int) *Runner {
	return &Runner{
		llm:                 provider,
		allocator:           allocator,
		logger:              log,
		maxCompletionTokens: maxCompletionTokens,
	}
}

func fillUserPrompt(template, history, input string) string {
	return strings.ReplaceAll(template, UserPromptMarker, history+"\n"+input)
}

// Run fills the template, fits it into the token budget, calls the model and
// parses the reply. It never returns an error: failures degrade to the
// stage's fallback value with Status FALLBACK.
func Run[T any](ctx context.Context, r *Runner, stage Stage[T], sessionId, template, history, input string) Result[T] {
	tmpl := template
	if strings.TrimSpace(tmpl) == "" {
		tmpl = stage.DefaultTemplate
	}
	fill := stage.Fill
	if fill == nil {
		fill = fillUserPrompt
	}
	prompt := fill(tmpl, history, input)

	fallback := func(res Result[T], err error, raw string) Result[T] {
		details := map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		}
		if raw != "" {
			details["raw"] = raw
		}
		r.logger.Warn(stage.Name, "stage failed, using fallback", details)

		res.Value = stage.Fallback(input)
		res.Status = StatusFallback
		res.Err = err
		return res
	}

	alloc, err := r.allocator.Allocate("", "", prompt, budget.DefaultBuffer, r.maxCompletionTokens)
	if err != nil {
		return fallback(Result[T]{}, err, "")
	}

	completion, err := r.llm.Complete(ctx, llm.Request{
		SessionId:     sessionId,
		Prompt:        alloc.ConversationAndPrompt,
		Context:       alloc.Context,
		SystemMessage: stage.SystemMessage,
	})
	if err != nil {
		return fallback(Result[T]{}, apperror.Upstream(stage.Name+" completion failed", err), "")
	}

	res := Result[T]{
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
	}

	value, err := stage.Parse(completion.Text)
	if err != nil {
		return fallback(res, apperror.Malformed(stage.Name+" output could not be parsed", err), completion.Text)
	}

	res.Value = value
	res.Status = StatusOK
	return res
}
