package executor

import (
	"product-chat-be/pkg/rag/extract"
)

type StageReport struct {
	Name             string
	Status           extract.Status
	PromptTokens     int
	CompletionTokens int
	Err              error
}

// TurnReport collects the outcome of every stage of one product-search turn.
type TurnReport struct {
	SessionId       string
	Stages          []StageReport
	EmbeddingTokens int
	Products        int
}

func record[T any](r *TurnReport, name string, res extract.Result[T]) {
	r.Stages = append(r.Stages, StageReport{
		Name:             name,
		Status:           res.Status,
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
		Err:              res.Err,
	})
}

func (r *TurnReport) PromptTokens() int {
	total := 0
	for _, s := range r.Stages {
		total += s.PromptTokens
	}
	return total
}

// CompletionTokens includes the embedding tokens of the product search.
func (r *TurnReport) CompletionTokens() int {
	total := r.EmbeddingTokens
	for _, s := range r.Stages {
		total += s.CompletionTokens
	}
	return total
}

// Fallbacks names the stages that degraded to their fallback value.
func (r *TurnReport) Fallbacks() []string {
	var names []string
	for _, s := range r.Stages {
		if s.Status == extract.StatusFallback {
			names = append(names, s.Name)
		}
	}
	return names
}

func (r *TurnReport) Details() map[string]interface{} {
	stages := make(map[string]string, len(r.Stages))
	for _, s := range r.Stages {
		stages[s.Name] = string(s.Status)
	}
	return map[string]interface{}{
		"session_id":        r.SessionId,
		"stages":            stages,
		"products":          r.Products,
		"embedding_tokens":  r.EmbeddingTokens,
		"prompt_tokens":     r.PromptTokens(),
		"completion_tokens": r.CompletionTokens(),
	}
}
