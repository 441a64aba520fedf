// Package main provides the leadbot server entry point.
package main

import (
	"context"
	"errors"

	"github.com/hazemdh/leadbot-go/internal/bundle"
	"github.com/hazemdh/leadbot-go/internal/chatbot"
	"github.com/hazemdh/leadbot-go/internal/config"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/logger"
	"github.com/hazemdh/leadbot-go/internal/pipeline"
	"github.com/hazemdh/leadbot-go/internal/r2client"
	"github.com/hazemdh/leadbot-go/internal/sentry"
)

// runStartupJobs executes the work that must not block serving: fetching
// published bundles, running the configured pipeline stages, loading the
// serving engine, and publishing freshly trained bundles. Failures are
// reported and the server keeps running; the engine simply stays (or
// becomes) unavailable.
func runStartupJobs(ctx context.Context, cfg *config.Config, pipe *pipeline.Pipeline, engine *chatbot.Engine, store *r2client.Client, log *logger.Logger) {
	log = log.WithModule("jobs")

	if cfg.R2FetchBundles && store != nil {
		fetchBundles(ctx, cfg, store, log)
	}

	if err := pipe.Run(ctx); err != nil {
		log.WithError(err).Error("Startup pipeline finished with errors")
		sentry.CaptureException(err)
	}

	loadEngine(cfg, pipe, engine, log)

	if cfg.R2PublishBundles && store != nil {
		publishBundles(ctx, cfg, store, log)
	}
}

// fetchBundles downloads the serving bundle from the artifact store so a
// fresh deployment can serve without training locally. A missing remote
// bundle is expected on first boot and only logged.
func fetchBundles(ctx context.Context, cfg *config.Config, store *r2client.Client, log *logger.Logger) {
	algorithm := cfg.ChatbotAlgorithm
	err := store.FetchBundle(ctx, cfg.ModelDir(), algorithm, cfg.R2BundlePrefix)
	switch {
	case err == nil:
		log.WithField("algorithm", algorithm).Info("Fetched bundle from artifact store")
	case errors.Is(err, r2client.ErrNotFound):
		log.WithField("algorithm", algorithm).Info("No published bundle in artifact store")
	default:
		log.WithError(err).WithField("algorithm", algorithm).Warn("Failed to fetch bundle from artifact store")
	}
}

// loadEngine loads the configured bundle and the training corpus and swaps
// them into the serving engine. On any failure the engine is marked failed
// and requests get the maintenance response until the next restart.
func loadEngine(cfg *config.Config, pipe *pipeline.Pipeline, engine *chatbot.Engine, log *logger.Logger) {
	wrap := apperrors.NewWrapper("jobs", "load_engine")

	b, err := bundle.Load(cfg.ModelDir(), cfg.ChatbotAlgorithm)
	if err != nil {
		wrapped := wrap.Wrapf(err, "model bundle %s unavailable", cfg.ChatbotAlgorithm)
		log.WithError(wrapped).Error("Failed to load model bundle")
		sentry.CaptureException(wrapped)
		engine.Fail()
		return
	}

	corp, err := pipe.LoadTrainingCorpus()
	if err != nil {
		wrapped := wrap.Wrap(err, "response corpus unavailable")
		log.WithError(wrapped).Error("Failed to load response corpus")
		sentry.CaptureException(wrapped)
		engine.Fail()
		return
	}

	if err := engine.Swap(b, corp); err != nil {
		wrapped := wrap.Wrap(err, "model bundle rejected")
		log.WithError(wrapped).Error("Failed to install model bundle")
		sentry.CaptureException(wrapped)
		engine.Fail()
		return
	}

	log.WithFields(map[string]any{
		"algorithm":     cfg.ChatbotAlgorithm,
		"conversations": len(corp),
	}).Info("Chatbot engine ready")
}

// publishBundles uploads every bundle trained in this run to the artifact
// store. Upload failures are logged per algorithm and do not abort the rest.
func publishBundles(ctx context.Context, cfg *config.Config, store *r2client.Client, log *logger.Logger) {
	for _, algorithm := range cfg.AutoTrainAlgorithms() {
		if err := store.PublishBundle(ctx, cfg.ModelDir(), algorithm, cfg.R2BundlePrefix); err != nil {
			log.WithError(err).WithField("algorithm", algorithm).Warn("Failed to publish bundle to artifact store")
			continue
		}
		log.WithField("algorithm", algorithm).Info("Published bundle to artifact store")
	}
}
