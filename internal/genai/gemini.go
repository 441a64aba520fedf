package genai

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/hazemdh/leadbot-go/internal/corpus"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/logger"
)

// conversationArraySchema constrains Gemini output to the corpus
// conversation shape. Gemini still returns the JSON as text, so the
// result is re-parsed and validated on our side.
var conversationArraySchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"status":  {Type: genai.TypeString},
			"summary": {Type: genai.TypeString},
			"messages": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"sender_type": {Type: genai.TypeString},
						"text":        {Type: genai.TypeString},
					},
					Required: []string{"sender_type", "text"},
				},
			},
		},
		Required: []string{"status", "summary", "messages"},
	},
}

// GeminiGenerator generates conversations through the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// NewGemini creates a Gemini-backed generator. Returns nil when apiKey
// is empty (generation disabled).
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration, log *logger.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // generation disabled when no API key
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     log.WithModule("genai"),
	}, nil
}

func (g *GeminiGenerator) Provider() string { return "gemini" }

// GenerateConversations sends prompt to Gemini and parses the JSON
// array it returns.
func (g *GeminiGenerator) GenerateConversations(ctx context.Context, system, prompt string) ([]corpus.Conversation, error) {
	if g == nil {
		return nil, apperrors.ErrExternalService
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    conversationArraySchema,
		Temperature:       genai.Ptr[float32](0.9),
	}

	start := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	duration := time.Since(start)
	if err != nil {
		g.log.Warn("gemini generation failed",
			"model", g.model,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	conversations, err := decodeConversations(result.Text())
	if err != nil {
		return nil, err
	}
	valid := validateConversations(conversations)
	g.log.Debug("gemini generation completed",
		"model", g.model,
		"duration_ms", duration.Milliseconds(),
		"returned", len(conversations),
		"valid", len(valid),
	)
	return valid, nil
}
