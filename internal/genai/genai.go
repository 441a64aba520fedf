// Package genai generates and cleans synthetic training conversations
// through LLM providers (Gemini, with a Groq fallback). Responses are
// strict JSON matching the corpus conversation shape; anything else is
// rejected and retried.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hazemdh/leadbot-go/internal/corpus"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// Generator produces conversations from a prompt.
type Generator interface {
	// Provider names the backing service, for logs and metrics.
	Provider() string
	// GenerateConversations asks the provider for a JSON array of
	// conversations and returns the validated result. system frames the
	// task (generation or cleaning); prompt carries the request itself.
	GenerateConversations(ctx context.Context, system, prompt string) ([]corpus.Conversation, error)
}

// decodeConversations parses the model output into conversations. The
// text may be wrapped in code fences or an envelope object, both of
// which show up in practice.
func decodeConversations(text string) ([]corpus.Conversation, error) {
	text = stripFences(text)

	var conversations []corpus.Conversation
	if err := json.Unmarshal([]byte(text), &conversations); err == nil {
		return conversations, nil
	}

	var envelope struct {
		Conversations []corpus.Conversation `json:"conversations"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Conversations != nil {
		return envelope.Conversations, nil
	}

	// Last resort: take the outermost JSON array in the text.
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &conversations); err == nil {
			return conversations, nil
		}
	}
	return nil, fmt.Errorf("model output is not a conversation array: %w", apperrors.ErrExternalService)
}

// validateConversations drops conversations that would poison the
// corpus: missing status or no usable message.
func validateConversations(conversations []corpus.Conversation) []corpus.Conversation {
	valid := make([]corpus.Conversation, 0, len(conversations))
	for _, conv := range conversations {
		if conv.Status == "" || len(conv.Messages) == 0 {
			continue
		}
		ok := true
		for _, m := range conv.Messages {
			if m.SenderType == "" || strings.TrimSpace(m.Text) == "" {
				ok = false
				break
			}
		}
		if ok {
			valid = append(valid, conv)
		}
	}
	return valid
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
