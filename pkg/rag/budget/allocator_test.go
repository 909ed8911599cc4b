package budget

import (
	"fmt"
	"strings"
	"testing"

	"product-chat-be/pkg/tokenizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(prefix string, from, to int) string {
	parts := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		parts = append(parts, fmt.Sprintf("%s%d", prefix, i))
	}
	return strings.Join(parts, " ")
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		context      string
		conversation string
		prompt       string
		buffer       int
		ceiling      int
		wantContext  string
		wantConvAndP string
		wantTrimmed  bool
	}{
		{
			name:         "fits under ceiling",
			context:      words("c", 0, 10),
			conversation: words("v", 0, 5),
			prompt:       words("p", 0, 3),
			buffer:       DefaultBuffer,
			ceiling:      4000,
			wantContext:  words("c", 0, 10),
			wantConvAndP: words("v", 0, 5) + "\n" + words("p", 0, 3),
		},
		{
			name:         "exactly at ceiling",
			context:      words("c", 0, 50),
			conversation: words("v", 0, 50),
			prompt:       words("p", 0, 100),
			buffer:       DefaultBuffer,
			ceiling:      400,
			wantContext:  words("c", 0, 50),
			wantConvAndP: words("v", 0, 50) + "\n" + words("p", 0, 100),
		},
		{
			name:         "proportional trim keeps context head and conversation tail",
			context:      words("c", 0, 5000),
			conversation: words("v", 0, 3000),
			prompt:       words("p", 0, 200),
			buffer:       DefaultBuffer,
			ceiling:      4000,
			wantContext:  words("c", 0, 2381),
			wantConvAndP: words("v", 3000-1429, 3000) + "\n" + words("p", 0, 200),
			wantTrimmed:  true,
		},
		{
			name:         "empty inputs still join prompt",
			prompt:       "hello",
			buffer:       DefaultBuffer,
			ceiling:      4000,
			wantConvAndP: "\nhello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(tokenizer.NewWordTokenizer())

			got, err := a.Allocate(tt.context, tt.conversation, tt.prompt, tt.buffer, tt.ceiling)
			require.NoError(t, err)

			assert.Equal(t, tt.wantContext, got.Context)
			assert.Equal(t, tt.wantConvAndP, got.ConversationAndPrompt)
			assert.Equal(t, tt.wantTrimmed, got.Trimmed)
		})
	}
}

func TestAllocateTrimmedSizes(t *testing.T) {
	tok := tokenizer.NewWordTokenizer()
	a := NewAllocator(tok)

	got, err := a.Allocate(words("c", 0, 5000), words("v", 0, 3000), words("p", 0, 200), DefaultBuffer, 4000)
	require.NoError(t, err)

	convPart := strings.TrimSuffix(got.ConversationAndPrompt, "\n"+words("p", 0, 200))
	assert.Equal(t, 2381, tokenizer.Count(tok, got.Context))
	assert.Equal(t, 1429, tokenizer.Count(tok, convPart))
}

// Only context and conversation shrink, each by its share of the total, so
// the prompt's and buffer's shares of the excess stay in the output.
func TestAllocateOverCeilingBound(t *testing.T) {
	tests := []struct {
		name                       string
		ctx, conv, prompt, ceiling int
	}{
		{name: "large context and conversation", ctx: 5000, conv: 3000, prompt: 200, ceiling: 4000},
		{name: "conversation heavy", ctx: 100, conv: 900, prompt: 50, ceiling: 600},
		{name: "no context", ctx: 0, conv: 3000, prompt: 10, ceiling: 1000},
		{name: "no conversation", ctx: 2000, conv: 0, prompt: 400, ceiling: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := tokenizer.NewWordTokenizer()
			a := NewAllocator(tok)
			prompt := words("p", 0, tt.prompt)

			got, err := a.Allocate(words("c", 0, tt.ctx), words("v", 0, tt.conv), prompt, DefaultBuffer, tt.ceiling)
			require.NoError(t, err)
			require.True(t, got.Trimmed)

			require.True(t, strings.HasSuffix(got.ConversationAndPrompt, "\n"+prompt))
			convPart := strings.TrimSuffix(got.ConversationAndPrompt, "\n"+prompt)

			ctxOut := tokenizer.Count(tok, got.Context)
			convOut := tokenizer.Count(tok, convPart)
			assert.Less(t, ctxOut, tt.ctx+1)
			assert.Less(t, convOut, tt.conv+1)

			total := tt.ctx + tt.conv + tt.prompt + DefaultBuffer
			excess := total - tt.ceiling
			keptShare := float64((tt.prompt+DefaultBuffer)*excess) / float64(total)
			used := float64(ctxOut + convOut + tt.prompt + DefaultBuffer)

			// one token of rounding per trimmed block
			assert.LessOrEqual(t, used, float64(tt.ceiling)+keptShare+1)
			assert.Greater(t, used, float64(tt.ceiling))
		})
	}
}

func TestAllocateRejectsNegativeBudget(t *testing.T) {
	a := NewAllocator(tokenizer.NewWordTokenizer())

	_, err := a.Allocate("", "", "prompt", -1, 4000)
	assert.Error(t, err)
}

func TestShrink(t *testing.T) {
	assert.Equal(t, 0, shrink(0, 100, 10))
	assert.Equal(t, 45, shrink(50, 100, 10))
	assert.Equal(t, 0, shrink(10, 10, 20))
}
