// Package main provides the leadbot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/hazemdh/leadbot-go/internal/buildinfo"
	"github.com/hazemdh/leadbot-go/internal/chatbot"
	"github.com/hazemdh/leadbot-go/internal/config"
	"github.com/hazemdh/leadbot-go/internal/genai"
	"github.com/hazemdh/leadbot-go/internal/logger"
	"github.com/hazemdh/leadbot-go/internal/metrics"
	"github.com/hazemdh/leadbot-go/internal/pipeline"
	"github.com/hazemdh/leadbot-go/internal/r2client"
	"github.com/hazemdh/leadbot-go/internal/sentry"
	"github.com/hazemdh/leadbot-go/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.WithField("version", buildinfo.String()).Info("Starting leadbot server")

	// Initialize Sentry error tracking (no-op when DSN is empty)
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.String(),
		SampleRate:  cfg.SentrySampleRate,
		Debug:       cfg.LogLevel == "debug",
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, continuing without error tracking")
	}
	defer sentry.Flush(2 * time.Second)

	if err := cfg.EnsureDirs(); err != nil {
		log.WithError(err).Fatal("Failed to create data directories")
	}

	// Initialize chat exchange log
	db, err := storage.New(cfg.ChatLogPath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open chat exchange database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", db.Path()).Info("Chat exchange database ready")

	// Initialize Prometheus metrics with a private registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	// Root context governs background jobs; cancelled on shutdown
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Generation providers: Gemini primary, Groq fallback. Either may be
	// absent; synthetic data stages are disabled when both are.
	gemini, err := genai.NewGemini(rootCtx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenTimeout, log)
	if err != nil {
		log.WithError(err).Warn("Failed to create Gemini client, continuing without it")
		gemini = nil
	}
	groq := genai.NewGroq(cfg.GroqAPIKey, cfg.GroqModel, cfg.GenTimeout, log)
	fallback := genai.NewFallback(log, gemini, groq)
	fallback.Instrument(m)

	var gen genai.Generator
	if fallback.Available() {
		gen = fallback
		log.WithField("provider", fallback.Provider()).Info("Generation service configured")
	} else {
		log.Info("No generation provider configured, synthetic data stages disabled")
	}

	// Optional artifact store for trained bundles
	var store *r2client.Client
	if cfg.R2Enabled {
		store, err = r2client.New(rootCtx, r2client.Config{
			Endpoint:    cfg.R2Endpoint,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			BucketName:  cfg.R2BucketName,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to create artifact store client, continuing without it")
			store = nil
		} else {
			log.WithField("bucket", cfg.R2BucketName).Info("Artifact store configured")
		}
	}

	// Serving engine starts uninitialized; startup jobs load the bundle
	engine := chatbot.New(log)
	pipe := pipeline.New(cfg, log, m, gen)

	// Background startup jobs: pipeline stages, bundle fetch/publish, engine load
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Startup jobs panicked")
				sentry.CaptureMessage(fmt.Sprintf("startup jobs panicked: %v", r))
			}
		}()
		runStartupJobs(rootCtx, cfg, pipe, engine, store, log)
	}()

	// Set Gin mode based on log level
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	setupRoutes(router, cfg, engine, db, m, registry, log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	// Give background jobs a bounded window to finish
	jobsDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(jobsDone)
	}()
	select {
	case <-jobsDone:
	case <-time.After(5 * time.Second):
		log.Warn("Background jobs did not finish in time")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exited")
}
