package budget

import (
	"math"

	"product-chat-be/pkg/apperror"
	"product-chat-be/pkg/tokenizer"
)

// DefaultBuffer covers tokenizer undercounting relative to the model.
const DefaultBuffer = 200

// Allocation is the result of fitting context and conversation into a ceiling.
type Allocation struct {
	Context               string
	ConversationAndPrompt string
	// Trimmed reports whether the inputs had to be cut down.
	Trimmed bool
}

// Allocator splits a fixed token ceiling between retrieved context and
// conversation history. The user prompt is never trimmed.
type Allocator struct {
	tok tokenizer.Tokenizer
}

func NewAllocator(tok tokenizer.Tokenizer) *Allocator {
	return &Allocator{tok: tok}
}

// Allocate keeps context and prompt intact when everything fits. Otherwise both
// context and conversation are reduced by their proportional share of the
// excess: context keeps its leading tokens, conversation keeps its trailing
// (most recent) tokens.
func (a *Allocator) Allocate(context, conversation, prompt string, buffer, ceiling int) (Allocation, error) {
	if buffer < 0 || ceiling < 0 {
		return Allocation{}, apperror.Validation("invalid token budget: buffer=%d ceiling=%d", buffer, ceiling)
	}

	ctxTokens := a.tok.Encode(context)
	convTokens := a.tok.Encode(conversation)
	promptCount := tokenizer.Count(a.tok, prompt)

	total := len(ctxTokens) + len(convTokens) + promptCount + buffer
	if total <= ceiling {
		return Allocation{
			Context:               context,
			ConversationAndPrompt: conversation + "\n" + prompt,
		}, nil
	}

	excess := total - ceiling
	newCtx := shrink(len(ctxTokens), total, excess)
	newConv := shrink(len(convTokens), total, excess)

	trimmedContext := a.tok.Decode(ctxTokens[:newCtx])
	trimmedConversation := a.tok.Decode(convTokens[len(convTokens)-newConv:])

	return Allocation{
		Context:               trimmedContext,
		ConversationAndPrompt: trimmedConversation + "\n" + prompt,
		Trimmed:               true,
	}, nil
}

// shrink returns round(n - n/total*excess) clamped to [0, n]. Ties round to
// even.
func shrink(n, total, excess int) int {
	if n == 0 || total == 0 {
		return 0
	}
	share := float64(n) / float64(total)
	size := int(math.RoundToEven(float64(n) - share*float64(excess)))
	if size < 0 {
		return 0
	}
	if size > n {
		return n
	}
	return size
}
