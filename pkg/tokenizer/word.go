package tokenizer

import (
	"strings"
	"sync"
)

// WordTokenizer splits on single spaces and keeps a shared vocabulary so that
// Decode(Encode(s)) == s for any input. Token counts are exact and predictable,
// which makes it useful wherever a deterministic tokenizer is wanted.
type WordTokenizer struct {
	mu    sync.Mutex
	ids   map[string]int
	words []string
}

func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{ids: make(map[string]int)}
}

func (w *WordTokenizer) Encode(text string) []int {
	if text == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	parts := strings.Split(text, " ")
	tokens := make([]int, len(parts))
	for i, p := range parts {
		id, ok := w.ids[p]
		if !ok {
			id = len(w.words)
			w.ids[p] = id
			w.words = append(w.words, p)
		}
		tokens[i] = id
	}
	return tokens
}

func (w *WordTokenizer) Decode(tokens []int) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	parts := make([]string, 0, len(tokens))
	for _, id := range tokens {
		if id >= 0 && id < len(w.words) {
			parts = append(parts, w.words[id])
		}
	}
	return strings.Join(parts, " ")
}
