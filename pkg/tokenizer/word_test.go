package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordTokenizer(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantCount int
	}{
		{name: "empty", text: "", wantCount: 0},
		{name: "single word", text: "shoes", wantCount: 1},
		{name: "sentence", text: "red dress for a party", wantCount: 5},
		{name: "newline stays inside a token", text: "hello\nworld again", wantCount: 2},
	}

	tok := NewWordTokenizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tok.Encode(tt.text)
			assert.Equal(t, tt.wantCount, Count(tok, tt.text))
			assert.Equal(t, tt.text, tok.Decode(tokens))
		})
	}
}

func TestWordTokenizerPrefixDecode(t *testing.T) {
	tok := NewWordTokenizer()
	tokens := tok.Encode("one two three four")

	assert.Equal(t, "one two", tok.Decode(tokens[:2]))
	assert.Equal(t, "three four", tok.Decode(tokens[2:]))
}
