package genai

import (
	"context"
	"time"

	"github.com/hazemdh/leadbot-go/internal/corpus"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/logger"
	"github.com/hazemdh/leadbot-go/internal/metrics"
)

// FallbackGenerator tries each generator in order and returns the first
// success. Nil generators (providers without an API key) are skipped at
// construction.
type FallbackGenerator struct {
	generators []Generator
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewFallback builds a chain from the non-nil generators.
func NewFallback(log *logger.Logger, generators ...Generator) *FallbackGenerator {
	chain := make([]Generator, 0, len(generators))
	for _, g := range generators {
		if g == nil {
			continue
		}
		// Typed nils slip through the interface comparison above.
		switch v := g.(type) {
		case *GeminiGenerator:
			if v == nil {
				continue
			}
		case *GroqGenerator:
			if v == nil {
				continue
			}
		}
		chain = append(chain, g)
	}
	return &FallbackGenerator{generators: chain, log: log.WithModule("genai")}
}

// Instrument records every provider call on m. Nil leaves the chain
// unmetered, which is what the CLI tools want.
func (f *FallbackGenerator) Instrument(m *metrics.Metrics) {
	f.metrics = m
}

// Available reports whether at least one provider is configured.
func (f *FallbackGenerator) Available() bool {
	return f != nil && len(f.generators) > 0
}

func (f *FallbackGenerator) Provider() string {
	if !f.Available() {
		return "none"
	}
	return f.generators[0].Provider()
}

// GenerateConversations walks the chain until a provider succeeds.
func (f *FallbackGenerator) GenerateConversations(ctx context.Context, system, prompt string) ([]corpus.Conversation, error) {
	if !f.Available() {
		return nil, apperrors.ErrExternalService
	}

	var lastErr error
	for _, g := range f.generators {
		start := time.Now()
		conversations, err := g.GenerateConversations(ctx, system, prompt)
		f.record(g.Provider(), err, time.Since(start))
		if err == nil {
			return conversations, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.log.Warn("provider failed, trying next", "provider", g.Provider(), "error", err)
	}
	return nil, lastErr
}

func (f *FallbackGenerator) record(provider string, err error, duration time.Duration) {
	if f.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	f.metrics.RecordGeneration(provider, status, duration.Seconds())
}
