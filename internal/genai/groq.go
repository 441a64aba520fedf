package genai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/hazemdh/leadbot-go/internal/corpus"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/logger"
)

// groqEndpoint is Groq's OpenAI-compatible API base URL.
const groqEndpoint = "https://api.groq.com/openai/v1"

// GroqGenerator generates conversations through Groq's OpenAI-compatible
// chat completion API. It is the fallback behind Gemini.
type GroqGenerator struct {
	client  openai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// NewGroq creates a Groq-backed generator. Returns nil when apiKey is
// empty (fallback disabled).
func NewGroq(apiKey, model string, timeout time.Duration, log *logger.Logger) *GroqGenerator {
	if apiKey == "" {
		return nil
	}
	client := openai.NewClient(
		option.WithBaseURL(groqEndpoint),
		option.WithAPIKey(apiKey),
	)
	return &GroqGenerator{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     log.WithModule("genai"),
	}
}

func (g *GroqGenerator) Provider() string { return "groq" }

// GenerateConversations sends prompt to Groq and parses the JSON array
// from the completion text.
func (g *GroqGenerator) GenerateConversations(ctx context.Context, system, prompt string) ([]corpus.Conversation, error) {
	if g == nil {
		return nil, apperrors.ErrExternalService
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.9),
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)
	if err != nil {
		g.log.Warn("groq generation failed",
			"model", g.model,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("groq chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("groq returned no choices: %w", apperrors.ErrExternalService)
	}

	conversations, err := decodeConversations(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	valid := validateConversations(conversations)
	g.log.Debug("groq generation completed",
		"model", g.model,
		"duration_ms", duration.Milliseconds(),
		"returned", len(conversations),
		"valid", len(valid),
	)
	return valid, nil
}
