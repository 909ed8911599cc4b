package embedding

import (
	"context"
	"math"
)

type EmbeddingResponse struct {
	Values []float32 `json:"values"`
	// Tokens is the prompt token usage reported for the embedding call.
	Tokens int `json:"tokens"`
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, sessionId string, text string) (*EmbeddingResponse, error)
}

// normalizeVector normalizes a vector to unit length so that pgvector cosine
// distance behaves the same for every provider.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
