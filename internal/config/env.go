// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "LEADBOT_PORT"
	EnvLogLevel        = "LEADBOT_LOG_LEVEL"
	EnvShutdownTimeout = "LEADBOT_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir = "LEADBOT_DATA_DIR"

	// Chatbot
	EnvChatbotAlgorithm = "LEADBOT_CHATBOT_ALGORITHM"

	// Pipeline flags (startup jobs)
	EnvAutoCleanData              = "LEADBOT_AUTO_CLEAN_DATA"
	EnvAutoMergeData              = "LEADBOT_AUTO_MERGE_DATA"
	EnvAutoPrepareTrainingDataset = "LEADBOT_AUTO_PREPARE_TRAINING_DATASET"
	EnvAutoGenerateSyntheticData  = "LEADBOT_AUTO_GENERATE_SYNTHETIC_DATA"
	EnvAutoAugmentSyntheticData   = "LEADBOT_AUTO_AUGMENT_SYNTHETIC_DATA"
	EnvAutoCleanTrainingData      = "LEADBOT_AUTO_CLEAN_TRAINING_DATA"
	EnvAutoTrainRandomForest      = "LEADBOT_AUTO_TRAIN_RANDOM_FOREST"
	EnvAutoTrainNaiveBayes        = "LEADBOT_AUTO_TRAIN_NAIVE_BAYES"
	EnvAutoTrainLogisticRegression = "LEADBOT_AUTO_TRAIN_LOGISTIC_REGRESSION"
	EnvAutoTrainLSTM              = "LEADBOT_AUTO_TRAIN_LSTM"

	// Generation service
	EnvGeminiAPIKey      = "LEADBOT_GEMINI_API_KEY"
	EnvGroqAPIKey        = "LEADBOT_GROQ_API_KEY"
	EnvGeminiModel       = "LEADBOT_GEMINI_MODEL"
	EnvGroqModel         = "LEADBOT_GROQ_MODEL"
	EnvGenTimeout        = "LEADBOT_GEN_TIMEOUT"
	EnvGenMaxRetries     = "LEADBOT_GEN_MAX_RETRIES"
	EnvAugmentTarget     = "LEADBOT_AUGMENT_TARGET"
	EnvAugmentBatchSize  = "LEADBOT_AUGMENT_BATCH_SIZE"
	EnvAugmentSampleSize = "LEADBOT_AUGMENT_SAMPLE_SIZE"
	EnvCleanBatchSize    = "LEADBOT_CLEAN_BATCH_SIZE"

	// Artifact store (R2/S3-compatible)
	EnvR2Enabled         = "LEADBOT_R2_ENABLED"
	EnvR2Endpoint        = "LEADBOT_R2_ENDPOINT"
	EnvR2AccessKeyID     = "LEADBOT_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "LEADBOT_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "LEADBOT_R2_BUCKET_NAME"
	EnvR2BundlePrefix    = "LEADBOT_R2_BUNDLE_PREFIX"
	EnvR2PublishBundles  = "LEADBOT_R2_PUBLISH_BUNDLES"
	EnvR2FetchBundles    = "LEADBOT_R2_FETCH_BUNDLES"

	// Sentry
	EnvSentryDSN         = "LEADBOT_SENTRY_DSN"
	EnvSentryEnvironment = "LEADBOT_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "LEADBOT_SENTRY_SAMPLE_RATE"
)
