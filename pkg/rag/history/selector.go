package history

import (
	"sort"
	"strings"

	"product-chat-be/internal/entity"
)

// Select returns the most recent messages of the session whose running token
// sum stays within maxTokens, joined in chronological order.
//
// Messages are walked newest first. Each message's tokens are added to the
// running total before the check, and the walk stops at the first message that
// pushes the total past maxTokens. When sender is non-empty only that
// participant's messages are considered.
func Select(session *entity.Session, maxTokens int, sender entity.Role) string {
	if session == nil || len(session.Messages) == 0 {
		return ""
	}

	candidates := make([]entity.Message, 0, len(session.Messages))
	for _, m := range session.Messages {
		if sender != "" && m.Sender != sender {
			continue
		}
		candidates = append(candidates, m)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TimeStamp.After(candidates[j].TimeStamp)
	})

	selected := make([]string, 0, len(candidates))
	total := 0
	for _, m := range candidates {
		total += m.Tokens
		if total > maxTokens {
			break
		}
		selected = append(selected, m.Text)
	}

	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}

	return strings.Join(selected, "\n")
}
