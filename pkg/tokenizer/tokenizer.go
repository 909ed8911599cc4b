package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the sub-word encoding used by the GPT-3.5/4 family.
const DefaultEncoding = "cl100k_base"

// Tokenizer turns text into model tokens and back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Count is a convenience for len(Encode(text)).
func Count(t Tokenizer, text string) int {
	return len(t.Encode(text))
}

type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

var loaderOnce sync.Once

// NewTiktoken loads the BPE ranks from the embedded offline loader, so no
// network access is needed at startup.
func NewTiktoken(encoding string) (*TiktokenTokenizer, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
