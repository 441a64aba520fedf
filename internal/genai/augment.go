package genai

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"github.com/hazemdh/leadbot-go/internal/corpus"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/logger"
)

// AugmentConfig sizes the synthetic data stages.
type AugmentConfig struct {
	// Target is the number of conversations wanted per status.
	Target int
	// BatchSize is the number of conversations requested per call.
	BatchSize int
	// SampleSize is the number of real examples embedded in each prompt.
	SampleSize int
	// CleanBatchSize is the number of conversations per cleaning call.
	CleanBatchSize int
	// Retry bounds the attempts of every provider call.
	Retry RetryConfig
}

// Service drives batch augmentation and cleaning of the synthetic
// corpus. A provider failure never discards what previous batches
// already produced.
type Service struct {
	gen Generator
	cfg AugmentConfig
	log *logger.Logger

	intn func(n int) int
}

// NewService builds the augmentation service.
func NewService(gen Generator, cfg AugmentConfig, log *logger.Logger) *Service {
	return &Service{
		gen:  gen,
		cfg:  cfg,
		log:  log.WithModule("genai"),
		intn: rand.Intn,
	}
}

// Augment grows the synthetic corpus until every status present in the
// real corpus has at least Target conversations, counting existing
// synthetic ones. It returns existing plus whatever new batches
// succeeded; per-status failures are logged and skipped.
func (s *Service) Augment(ctx context.Context, real, existing corpus.Corpus) (corpus.Corpus, error) {
	if len(real) == 0 {
		return existing, apperrors.ErrCorpusEmpty
	}

	out := make(corpus.Corpus, len(existing))
	copy(out, existing)

	perStatus := make(map[string]int)
	for _, conv := range out {
		perStatus[conv.Status]++
	}

	for _, status := range real.Labels() {
		for perStatus[status] < s.cfg.Target {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}

			want := s.cfg.Target - perStatus[status]
			if s.cfg.BatchSize > 0 && want > s.cfg.BatchSize {
				want = s.cfg.BatchSize
			}

			batchID := uuid.NewString()
			batch, err := s.generateBatch(ctx, status, want, real)
			if err != nil {
				s.log.Error("augmentation batch failed, keeping accumulated data",
					"batch_id", batchID,
					"status", status,
					"have", perStatus[status],
					"target", s.cfg.Target,
					"error", err,
				)
				break
			}
			if len(batch) == 0 {
				s.log.Warn("augmentation batch came back empty", "batch_id", batchID, "status", status)
				break
			}
			for _, conv := range batch {
				conv.Status = status
				out = append(out, conv)
				perStatus[status]++
			}
			s.log.Info("augmentation batch accepted",
				"batch_id", batchID,
				"status", status,
				"batch", len(batch),
				"have", perStatus[status],
				"target", s.cfg.Target,
			)
		}
	}
	return out, nil
}

func (s *Service) generateBatch(ctx context.Context, status string, count int, real corpus.Corpus) ([]corpus.Conversation, error) {
	examples := s.sample(real, status)
	prompt, err := AugmentPrompt(status, count, examples)
	if err != nil {
		return nil, err
	}

	var batch []corpus.Conversation
	err = WithRetry(ctx, s.cfg.Retry, func() error {
		conversations, genErr := s.gen.GenerateConversations(ctx, GenerationSystemPrompt, prompt)
		if genErr != nil {
			return genErr
		}
		batch = conversations
		return nil
	})
	return batch, err
}

// sample picks up to SampleSize conversations of status, fresh for every
// batch.
func (s *Service) sample(c corpus.Corpus, status string) []corpus.Conversation {
	var pool []corpus.Conversation
	for _, conv := range c {
		if conv.Status == status {
			pool = append(pool, conv)
		}
	}
	if len(pool) <= s.cfg.SampleSize {
		return pool
	}

	picked := make([]corpus.Conversation, 0, s.cfg.SampleSize)
	for _, i := range s.pickIndices(len(pool), s.cfg.SampleSize) {
		picked = append(picked, pool[i])
	}
	return picked
}

func (s *Service) pickIndices(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// Clean passes the corpus through the provider in batches. A batch whose
// cleaning fails, or comes back with a different conversation count, is
// kept as-is.
func (s *Service) Clean(ctx context.Context, c corpus.Corpus) (corpus.Corpus, error) {
	batchSize := s.cfg.CleanBatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	out := make(corpus.Corpus, 0, len(c))
	for start := 0; start < len(c); start += batchSize {
		if ctx.Err() != nil {
			out = append(out, c[start:]...)
			return out, ctx.Err()
		}

		end := start + batchSize
		if end > len(c) {
			end = len(c)
		}
		batch := c[start:end]

		cleaned, err := s.cleanBatch(ctx, batch)
		if err != nil {
			s.log.Warn("cleaning batch failed, keeping original", "offset", start, "error", err)
			out = append(out, batch...)
			continue
		}
		if len(cleaned) != len(batch) {
			s.log.Warn("cleaning batch changed cardinality, keeping original",
				"offset", start,
				"sent", len(batch),
				"received", len(cleaned),
			)
			out = append(out, batch...)
			continue
		}
		out = append(out, cleaned...)
	}
	return out, nil
}

func (s *Service) cleanBatch(ctx context.Context, batch []corpus.Conversation) ([]corpus.Conversation, error) {
	prompt, err := CleanPrompt(batch)
	if err != nil {
		return nil, err
	}

	var cleaned []corpus.Conversation
	err = WithRetry(ctx, s.cfg.Retry, func() error {
		conversations, genErr := s.gen.GenerateConversations(ctx, CleaningSystemPrompt, prompt)
		if genErr != nil {
			return genErr
		}
		cleaned = validateConversations(conversations)
		return nil
	})
	return cleaned, err
}
