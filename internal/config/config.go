// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the data directory layout, the startup pipeline flags, and
// the external generation service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/joho/godotenv"
)

// Algorithm names accepted everywhere an algorithm is selected.
const (
	AlgorithmRandomForest       = "random_forest"
	AlgorithmNaiveBayes         = "naive_bayes"
	AlgorithmLogisticRegression = "logistic_regression"
	AlgorithmLSTM               = "lstm"
)

// Algorithms lists every known classification algorithm, in training order.
var Algorithms = []string{
	AlgorithmRandomForest,
	AlgorithmNaiveBayes,
	AlgorithmLogisticRegression,
	AlgorithmLSTM,
}

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Base directory for raw/processed/training/models artifacts

	// Chatbot Configuration
	ChatbotAlgorithm string // Algorithm backing the serving engine

	// Pipeline flags: each stage independently toggled, each failure isolated
	AutoCleanData               bool
	AutoMergeData               bool
	AutoPrepareTrainingDataset  bool
	AutoGenerateSyntheticData   bool
	AutoAugmentSyntheticData    bool
	AutoCleanTrainingData       bool
	AutoTrainRandomForest       bool
	AutoTrainNaiveBayes         bool
	AutoTrainLogisticRegression bool
	AutoTrainLSTM               bool

	// Generation service (Gemini primary, Groq fallback)
	GeminiAPIKey      string
	GroqAPIKey        string
	GeminiModel       string
	GroqModel         string
	GenTimeout        time.Duration
	GenMaxRetries     int
	AugmentTarget     int
	AugmentBatchSize  int
	AugmentSampleSize int
	CleanBatchSize    int

	// Artifact store (R2/S3-compatible, optional)
	R2Enabled         bool
	R2Endpoint        string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2BundlePrefix    string
	R2PublishBundles  bool
	R2FetchBundles    bool

	// Sentry (optional)
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "5000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, 10*time.Second),

		DataDir: getEnv(EnvDataDir, "./data"),

		ChatbotAlgorithm: getEnv(EnvChatbotAlgorithm, AlgorithmLogisticRegression),

		AutoCleanData:               getEnvBool(EnvAutoCleanData, false),
		AutoMergeData:               getEnvBool(EnvAutoMergeData, false),
		AutoPrepareTrainingDataset:  getEnvBool(EnvAutoPrepareTrainingDataset, false),
		AutoGenerateSyntheticData:   getEnvBool(EnvAutoGenerateSyntheticData, false),
		AutoAugmentSyntheticData:    getEnvBool(EnvAutoAugmentSyntheticData, false),
		AutoCleanTrainingData:       getEnvBool(EnvAutoCleanTrainingData, false),
		AutoTrainRandomForest:       getEnvBool(EnvAutoTrainRandomForest, false),
		AutoTrainNaiveBayes:         getEnvBool(EnvAutoTrainNaiveBayes, false),
		AutoTrainLogisticRegression: getEnvBool(EnvAutoTrainLogisticRegression, false),
		AutoTrainLSTM:               getEnvBool(EnvAutoTrainLSTM, false),

		GeminiAPIKey:      getEnv(EnvGeminiAPIKey, ""),
		GroqAPIKey:        getEnv(EnvGroqAPIKey, ""),
		GeminiModel:       getEnv(EnvGeminiModel, "gemini-2.5-flash"),
		GroqModel:         getEnv(EnvGroqModel, "llama-3.3-70b-versatile"),
		GenTimeout:        getEnvDuration(EnvGenTimeout, 60*time.Second),
		GenMaxRetries:     getEnvInt(EnvGenMaxRetries, 5),
		AugmentTarget:     getEnvInt(EnvAugmentTarget, 200),
		AugmentBatchSize:  getEnvInt(EnvAugmentBatchSize, 10),
		AugmentSampleSize: getEnvInt(EnvAugmentSampleSize, 20),
		CleanBatchSize:    getEnvInt(EnvCleanBatchSize, 5),

		R2Enabled:         getEnvBool(EnvR2Enabled, false),
		R2Endpoint:        getEnv(EnvR2Endpoint, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2BundlePrefix:    getEnv(EnvR2BundlePrefix, "bundles/"),
		R2PublishBundles:  getEnvBool(EnvR2PublishBundles, false),
		R2FetchBundles:    getEnvBool(EnvR2FetchBundles, false),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getEnvFloat(EnvSentrySampleRate, 1.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if !IsValidAlgorithm(c.ChatbotAlgorithm) {
		return apperrors.NewValidationError(EnvChatbotAlgorithm, fmt.Sprintf("unknown algorithm %q", c.ChatbotAlgorithm))
	}
	if c.GenMaxRetries <= 0 {
		return apperrors.NewValidationError(EnvGenMaxRetries, fmt.Sprintf("must be positive, got %d", c.GenMaxRetries))
	}
	if c.R2Enabled {
		if c.R2Endpoint == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "" {
			return apperrors.NewValidationError(EnvR2Enabled, "endpoint, credentials and bucket are all required")
		}
	}
	return nil
}

// IsValidAlgorithm reports whether name is a known algorithm.
// Rejection happens here, before any file I/O is attempted on its behalf.
func IsValidAlgorithm(name string) bool {
	for _, a := range Algorithms {
		if a == name {
			return true
		}
	}
	return false
}

// AutoTrainAlgorithms returns the algorithms flagged for training at startup,
// in the fixed training order.
func (c *Config) AutoTrainAlgorithms() []string {
	var out []string
	if c.AutoTrainRandomForest {
		out = append(out, AlgorithmRandomForest)
	}
	if c.AutoTrainNaiveBayes {
		out = append(out, AlgorithmNaiveBayes)
	}
	if c.AutoTrainLogisticRegression {
		out = append(out, AlgorithmLogisticRegression)
	}
	if c.AutoTrainLSTM {
		out = append(out, AlgorithmLSTM)
	}
	return out
}

// Raw source files.

// ContactsCSV returns the raw contact export path.
func (c *Config) ContactsCSV() string {
	return filepath.Join(c.DataDir, "raw", "contacts.csv")
}

// ConversationsCSV returns the raw conversation export path.
func (c *Config) ConversationsCSV() string {
	return filepath.Join(c.DataDir, "raw", "conversations-csv.csv")
}

// MessagesCSV returns the raw message export path.
func (c *Config) MessagesCSV() string {
	return filepath.Join(c.DataDir, "raw", "messages-csv.csv")
}

// Processed artifacts.

// ContactsClean returns the normalized contacts artifact path.
func (c *Config) ContactsClean() string {
	return filepath.Join(c.DataDir, "processed", "contacts_clean.json")
}

// ConversationsClean returns the normalized conversations artifact path.
func (c *Config) ConversationsClean() string {
	return filepath.Join(c.DataDir, "processed", "conversations_clean.json")
}

// MessagesClean returns the normalized messages artifact path.
func (c *Config) MessagesClean() string {
	return filepath.Join(c.DataDir, "processed", "messages_clean.json")
}

// MergedData returns the merged conversations+messages artifact path.
func (c *Config) MergedData() string {
	return filepath.Join(c.DataDir, "processed", "merged_data.json")
}

// Training artifacts.

// TrainingDataset returns the text-filtered training corpus path.
func (c *Config) TrainingDataset() string {
	return filepath.Join(c.DataDir, "training", "training_dataset.json")
}

// CleanedTrainingData returns the LLM-cleaned training corpus path.
func (c *Config) CleanedTrainingData() string {
	return filepath.Join(c.DataDir, "training", "cleaned_training_data.json")
}

// SyntheticConversations returns the synthetic corpus path.
// This is also the corpus backing response retrieval at inference time.
func (c *Config) SyntheticConversations() string {
	return filepath.Join(c.DataDir, "training", "synthetic_conversations.json")
}

// ModelDir returns the base directory holding per-algorithm bundles.
func (c *Config) ModelDir() string {
	return filepath.Join(c.DataDir, "models")
}

// ChatLogPath returns the SQLite chat exchange log path.
func (c *Config) ChatLogPath() string {
	return filepath.Join(c.DataDir, "chatlog.db")
}

// EnsureDirs creates the data directory layout if missing.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		filepath.Join(c.DataDir, "raw"),
		filepath.Join(c.DataDir, "processed"),
		filepath.Join(c.DataDir, "training"),
		c.ModelDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvInt returns the environment variable as int or a default
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvFloat returns the environment variable as float64 or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvDuration returns the environment variable as duration or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
