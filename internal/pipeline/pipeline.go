// Package pipeline runs the data stages that turn raw chat exports into
// trained model bundles. Every stage reads one artifact and writes the
// next, stages are isolated from each other's failures, and a stage
// whose source artifact is missing is skipped rather than failed.
package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazemdh/leadbot-go/internal/bundle"
	"github.com/hazemdh/leadbot-go/internal/config"
	"github.com/hazemdh/leadbot-go/internal/corpus"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/genai"
	"github.com/hazemdh/leadbot-go/internal/logger"
	"github.com/hazemdh/leadbot-go/internal/metrics"
	"github.com/hazemdh/leadbot-go/internal/record"
	"github.com/hazemdh/leadbot-go/internal/trainer"
)

// Stage names, used in logs and metrics.
const (
	StageCleanContacts      = "clean_contacts"
	StageCleanConversations = "clean_conversations"
	StageCleanMessages      = "clean_messages"
	StageMergeData          = "merge_data"
	StagePrepareTraining    = "prepare_training_dataset"
	StageGenerateSynthetic  = "generate_synthetic_data"
	StageAugmentSynthetic   = "augment_synthetic_data"
	StageCleanTraining      = "clean_training_data"
	StageTrain              = "train"
)

// Pipeline wires the stages to configuration, logging and metrics.
type Pipeline struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	gen     genai.Generator
}

// New builds a pipeline. metrics and gen may be nil; the generation
// stages then report themselves skipped.
func New(cfg *config.Config, log *logger.Logger, m *metrics.Metrics, gen genai.Generator) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		log:     log.WithModule("pipeline"),
		metrics: m,
		gen:     gen,
	}
}

// Run executes every stage enabled by the Auto* flags, in dependency
// order. Stage failures are logged and collected, never fatal to the
// stages behind them.
func (p *Pipeline) Run(ctx context.Context) error {
	var errs []error

	if p.cfg.AutoCleanData {
		errs = append(errs, p.CleanAll(ctx)...)
	}
	if p.cfg.AutoMergeData {
		errs = append(errs, p.runStage(ctx, StageMergeData, p.MergeData))
	}
	if p.cfg.AutoPrepareTrainingDataset {
		errs = append(errs, p.runStage(ctx, StagePrepareTraining, p.PrepareTrainingDataset))
	}
	if p.cfg.AutoGenerateSyntheticData {
		errs = append(errs, p.runStage(ctx, StageGenerateSynthetic, p.GenerateSyntheticData))
	}
	if p.cfg.AutoAugmentSyntheticData {
		errs = append(errs, p.runStage(ctx, StageAugmentSynthetic, p.AugmentSyntheticData))
	}
	if p.cfg.AutoCleanTrainingData {
		errs = append(errs, p.runStage(ctx, StageCleanTraining, p.CleanTrainingData))
	}
	if algos := p.cfg.AutoTrainAlgorithms(); len(algos) > 0 {
		errs = append(errs, p.runStage(ctx, StageTrain, func(ctx context.Context) error {
			return p.Train(ctx, algos)
		}))
	}

	return errors.Join(errs...)
}

// CleanAll runs the three cleaning stages concurrently. Each failure is
// reported on its own; one bad source never blocks the other two.
func (p *Pipeline) CleanAll(ctx context.Context) []error {
	var g errgroup.Group
	results := make([]error, 3)

	g.Go(func() error {
		results[0] = p.runStage(ctx, StageCleanContacts, p.CleanContacts)
		return nil
	})
	g.Go(func() error {
		results[1] = p.runStage(ctx, StageCleanConversations, p.CleanConversations)
		return nil
	})
	g.Go(func() error {
		results[2] = p.runStage(ctx, StageCleanMessages, p.CleanMessages)
		return nil
	})
	_ = g.Wait()
	return results
}

// runStage wraps a stage with timing, logging and metrics. A missing
// source artifact is logged as a skip and not treated as a failure.
func (p *Pipeline) runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	switch {
	case err == nil:
		p.log.Info("stage completed", "stage", name, "duration_ms", duration.Milliseconds())
		p.record(name, "success", duration)
		return nil
	case apperrors.IsSourceNotFound(err):
		p.log.Warn("stage skipped, source artifact missing", "stage", name, "error", err)
		p.record(name, "skipped", duration)
		return nil
	default:
		p.log.Error("stage failed", "stage", name, "duration_ms", duration.Milliseconds(), "error", err)
		p.record(name, "error", duration)
		return &apperrors.StageError{Stage: name, Err: err}
	}
}

func (p *Pipeline) record(stage, status string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordPipelineStage(stage, status, duration.Seconds())
	}
}

// CleanContacts normalizes the raw contacts export.
func (p *Pipeline) CleanContacts(context.Context) error {
	rows, err := record.ReadCSV(p.cfg.ContactsCSV())
	if err != nil {
		return err
	}
	records := record.Normalize(rows, record.ContactsSchema, record.ContactsDateFields)
	return corpus.WriteJSON(p.cfg.ContactsClean(), records)
}

// CleanConversations normalizes the raw conversations export.
func (p *Pipeline) CleanConversations(context.Context) error {
	rows, err := record.ReadCSV(p.cfg.ConversationsCSV())
	if err != nil {
		return err
	}
	records := record.Normalize(rows, record.ConversationsSchema, record.ConversationsDateFields)
	return corpus.WriteJSON(p.cfg.ConversationsClean(), records)
}

// CleanMessages normalizes the raw messages export, including payload
// rendering and the message-id drop rule.
func (p *Pipeline) CleanMessages(context.Context) error {
	rows, err := record.ReadCSV(p.cfg.MessagesCSV())
	if err != nil {
		return err
	}
	records, malformed := record.NormalizeMessages(rows)
	if malformed > 0 {
		p.log.Warn("recovered malformed message payloads",
			"count", malformed,
			"error", apperrors.ErrMalformedRecord,
		)
	}
	return corpus.WriteJSON(p.cfg.MessagesClean(), records)
}

// MergeData joins cleaned conversations with cleaned messages.
func (p *Pipeline) MergeData(context.Context) error {
	var conversations []record.Record
	if err := corpus.ReadJSON(p.cfg.ConversationsClean(), &conversations); err != nil {
		return err
	}
	var messages []record.Record
	if err := corpus.ReadJSON(p.cfg.MessagesClean(), &messages); err != nil {
		return err
	}

	merged := corpus.Assemble(conversations, messages)
	p.log.Info("merged conversations with messages",
		"conversations", len(merged),
		"messages", len(messages),
	)
	return corpus.WriteJSON(p.cfg.MergedData(), merged)
}

// PrepareTrainingDataset filters the merged artifact down to the
// labeled text corpus.
func (p *Pipeline) PrepareTrainingDataset(context.Context) error {
	var merged []corpus.MergedConversation
	if err := corpus.ReadJSON(p.cfg.MergedData(), &merged); err != nil {
		return err
	}

	c := corpus.FilterToTrainingText(merged)
	if len(c) == 0 {
		return apperrors.ErrCorpusEmpty
	}
	p.log.Info("training dataset prepared", "conversations", len(c), "labels", len(c.Labels()))
	return corpus.Save(p.cfg.TrainingDataset(), c)
}

// GenerateSyntheticData builds the synthetic corpus from scratch,
// replacing any previous synthetic artifact.
func (p *Pipeline) GenerateSyntheticData(ctx context.Context) error {
	return p.growSynthetic(ctx, nil)
}

// AugmentSyntheticData tops up the existing synthetic corpus to the
// per-status target.
func (p *Pipeline) AugmentSyntheticData(ctx context.Context) error {
	existing, err := corpus.Load(p.cfg.SyntheticConversations())
	if err != nil && !apperrors.IsSourceNotFound(err) {
		return err
	}
	return p.growSynthetic(ctx, existing)
}

func (p *Pipeline) growSynthetic(ctx context.Context, existing corpus.Corpus) error {
	if p.gen == nil {
		return apperrors.ErrExternalService
	}
	real, err := corpus.Load(p.cfg.TrainingDataset())
	if err != nil {
		return err
	}

	svc := p.augmentService()
	synthetic, err := svc.Augment(ctx, real, existing)
	// Batch failures keep what already succeeded; persist before
	// reporting the error.
	if len(synthetic) > 0 {
		if saveErr := corpus.Save(p.cfg.SyntheticConversations(), synthetic); saveErr != nil {
			return saveErr
		}
	}
	return err
}

// CleanTrainingData runs the real and synthetic corpora through the LLM
// cleaner and writes the combined result.
func (p *Pipeline) CleanTrainingData(ctx context.Context) error {
	if p.gen == nil {
		return apperrors.ErrExternalService
	}

	combined, err := p.combinedCorpus()
	if err != nil {
		return err
	}

	svc := p.augmentService()
	cleaned, err := svc.Clean(ctx, combined)
	if len(cleaned) > 0 {
		if saveErr := corpus.Save(p.cfg.CleanedTrainingData(), cleaned); saveErr != nil {
			return saveErr
		}
	}
	return err
}

// Train fits the requested algorithms on the training corpus.
func (p *Pipeline) Train(_ context.Context, algorithms []string) error {
	c, err := p.LoadTrainingCorpus()
	if err != nil {
		return err
	}

	tr := trainer.New(p.cfg.ModelDir(), p.log)
	results := tr.TrainAll(c, algorithms)

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			p.recordTraining(r.Algorithm, "error", 0)
			errs = append(errs, &apperrors.StageError{Stage: StageTrain + ":" + r.Algorithm, Err: r.Err})
			continue
		}
		p.recordTraining(r.Algorithm, "success", r.Metrics.Accuracy)
	}

	if all := bundle.CompareAll(p.cfg.ModelDir(), config.Algorithms); len(all) > 0 {
		for _, m := range all {
			p.log.Info("model comparison",
				"algorithm", m.Algorithm,
				"accuracy", m.Accuracy,
				"precision", m.Precision,
				"recall", m.Recall,
				"f1_score", m.F1,
			)
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) recordTraining(algorithm, status string, accuracy float64) {
	if p.metrics != nil {
		p.metrics.RecordTrainingRun(algorithm, status, accuracy)
	}
}

// LoadTrainingCorpus returns the corpus training and serving should use:
// the LLM-cleaned artifact when present, otherwise the prepared dataset
// plus any synthetic conversations.
func (p *Pipeline) LoadTrainingCorpus() (corpus.Corpus, error) {
	cleaned, err := corpus.Load(p.cfg.CleanedTrainingData())
	if err == nil {
		return cleaned, nil
	}
	if !apperrors.IsSourceNotFound(err) {
		return nil, err
	}
	return p.combinedCorpus()
}

func (p *Pipeline) combinedCorpus() (corpus.Corpus, error) {
	real, err := corpus.Load(p.cfg.TrainingDataset())
	if err != nil {
		return nil, err
	}

	synthetic, err := corpus.Load(p.cfg.SyntheticConversations())
	if err != nil {
		if !apperrors.IsSourceNotFound(err) {
			return nil, err
		}
		return real, nil
	}
	return append(real, synthetic...), nil
}

func (p *Pipeline) augmentService() *genai.Service {
	return genai.NewService(p.gen, genai.AugmentConfig{
		Target:         p.cfg.AugmentTarget,
		BatchSize:      p.cfg.AugmentBatchSize,
		SampleSize:     p.cfg.AugmentSampleSize,
		CleanBatchSize: p.cfg.CleanBatchSize,
		Retry:          genai.DefaultRetryConfig(p.cfg.GenMaxRetries),
	}, p.log)
}
