// Command trainer runs pipeline stages and model training once and exits.
// It reuses the server configuration but overrides the stage toggles from
// the command line, so any subset of the pipeline can be replayed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hazemdh/leadbot-go/internal/bundle"
	"github.com/hazemdh/leadbot-go/internal/config"
	"github.com/hazemdh/leadbot-go/internal/genai"
	"github.com/hazemdh/leadbot-go/internal/logger"
	"github.com/hazemdh/leadbot-go/internal/pipeline"
)

// Stage names accepted by -stages, in execution order.
var stageNames = []string{
	"clean_data",
	pipeline.StageMergeData,
	pipeline.StagePrepareTraining,
	pipeline.StageGenerateSynthetic,
	pipeline.StageAugmentSynthetic,
	pipeline.StageCleanTraining,
	pipeline.StageTrain,
}

// CLI flags
var (
	stagesFlag     = flag.String("stages", "all", "Comma-separated pipeline stages to run, or \"all\"")
	algorithmsFlag = flag.String("algorithms", "all", "Comma-separated algorithms to train, or \"all\"")
	compareFlag    = flag.Bool("compare", true, "Print the metrics comparison across trained bundles")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting trainer tool")

	stages, err := parseStages(*stagesFlag)
	if err != nil {
		log.WithError(err).Fatal("Invalid -stages value")
	}
	algorithms, err := parseAlgorithms(*algorithmsFlag)
	if err != nil {
		log.WithError(err).Fatal("Invalid -algorithms value")
	}
	applyStageSelection(cfg, stages, algorithms)

	if err := cfg.EnsureDirs(); err != nil {
		log.WithError(err).Fatal("Failed to create data directories")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Generation providers are only needed by the synthetic stages
	var gen genai.Generator
	if stages["all"] || stages[pipeline.StageGenerateSynthetic] || stages[pipeline.StageAugmentSynthetic] || stages[pipeline.StageCleanTraining] {
		gemini, err := genai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenTimeout, log)
		if err != nil {
			log.WithError(err).Warn("Failed to create Gemini client, continuing without it")
			gemini = nil
		}
		groq := genai.NewGroq(cfg.GroqAPIKey, cfg.GroqModel, cfg.GenTimeout, log)
		fallback := genai.NewFallback(log, gemini, groq)
		if fallback.Available() {
			gen = fallback
		}
	}

	pipe := pipeline.New(cfg, log, nil, gen)

	start := time.Now()
	runErr := pipe.Run(ctx)
	log.WithField("duration", time.Since(start).Round(time.Millisecond).String()).
		Info("Pipeline run finished")

	if *compareFlag {
		printComparison(cfg, log)
	}

	if runErr != nil {
		log.WithError(runErr).Error("One or more stages failed")
		os.Exit(1)
	}
}

// parseStages turns the -stages flag into a lookup set.
func parseStages(value string) (map[string]bool, error) {
	stages := map[string]bool{}
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == "all" {
			stages["all"] = true
			continue
		}
		known := false
		for _, s := range stageNames {
			if s == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown stage %q (valid: all, %s)", name, strings.Join(stageNames, ", "))
		}
		stages[name] = true
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("no stages selected")
	}
	return stages, nil
}

// parseAlgorithms turns the -algorithms flag into a lookup set.
func parseAlgorithms(value string) (map[string]bool, error) {
	algorithms := map[string]bool{}
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == "all" {
			algorithms["all"] = true
			continue
		}
		if !config.IsValidAlgorithm(name) {
			return nil, fmt.Errorf("unknown algorithm %q (valid: all, %s)", name, strings.Join(config.Algorithms, ", "))
		}
		algorithms[name] = true
	}
	if len(algorithms) == 0 {
		return nil, fmt.Errorf("no algorithms selected")
	}
	return algorithms, nil
}

// applyStageSelection rewrites the config's Auto* toggles so that
// Pipeline.Run executes exactly the requested subset.
func applyStageSelection(cfg *config.Config, stages, algorithms map[string]bool) {
	all := stages["all"]
	cfg.AutoCleanData = all || stages["clean_data"]
	cfg.AutoMergeData = all || stages[pipeline.StageMergeData]
	cfg.AutoPrepareTrainingDataset = all || stages[pipeline.StagePrepareTraining]
	cfg.AutoGenerateSyntheticData = all || stages[pipeline.StageGenerateSynthetic]
	cfg.AutoAugmentSyntheticData = all || stages[pipeline.StageAugmentSynthetic]
	cfg.AutoCleanTrainingData = all || stages[pipeline.StageCleanTraining]

	train := all || stages[pipeline.StageTrain]
	allAlgos := algorithms["all"]
	cfg.AutoTrainRandomForest = train && (allAlgos || algorithms[config.AlgorithmRandomForest])
	cfg.AutoTrainNaiveBayes = train && (allAlgos || algorithms[config.AlgorithmNaiveBayes])
	cfg.AutoTrainLogisticRegression = train && (allAlgos || algorithms[config.AlgorithmLogisticRegression])
	cfg.AutoTrainLSTM = train && (allAlgos || algorithms[config.AlgorithmLSTM])
}

// printComparison reports evaluation metrics for every bundle on disk.
func printComparison(cfg *config.Config, log *logger.Logger) {
	results := bundle.CompareAll(cfg.ModelDir(), config.Algorithms)
	if len(results) == 0 {
		log.Info("No trained bundles to compare")
		return
	}
	for _, m := range results {
		log.WithFields(map[string]any{
			"algorithm":  m.Algorithm,
			"accuracy":   m.Accuracy,
			"precision":  m.Precision,
			"recall":     m.Recall,
			"f1_score":   m.F1,
			"train_size": m.TrainSize,
			"test_size":  m.TestSize,
			"trained_at": m.TrainedAt,
		}).Info("Model comparison")
	}
}
