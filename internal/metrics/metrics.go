package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat metrics
	ChatRequestsTotal  *prometheus.CounterVec
	ChatDurationSecond *prometheus.HistogramVec
	IntentPredictions  *prometheus.CounterVec

	// Pipeline metrics
	PipelineStagesTotal   *prometheus.CounterVec
	PipelineStageDuration *prometheus.HistogramVec

	// Training metrics
	TrainingRunsTotal *prometheus.CounterVec
	ModelAccuracy     *prometheus.GaugeVec

	// Generation metrics
	GenerationRequestsTotal *prometheus.CounterVec
	GenerationDuration      *prometheus.HistogramVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Chat metrics
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbot_chat_requests_total",
				Help: "Total number of chat requests by status",
			},
			[]string{"status"}, // status: success, invalid, unavailable
		),

		ChatDurationSecond: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadbot_chat_duration_seconds",
				Help:    "Chat request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"status"},
		),

		IntentPredictions: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbot_intent_predictions_total",
				Help: "Total number of predicted intents by label",
			},
			[]string{"intent"},
		),

		// Pipeline metrics
		PipelineStagesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbot_pipeline_stages_total",
				Help: "Total number of pipeline stage runs by stage and status",
			},
			[]string{"stage", "status"}, // status: success, error, skipped
		),

		PipelineStageDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadbot_pipeline_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds by stage",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
			},
			[]string{"stage"},
		),

		// Training metrics
		TrainingRunsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbot_training_runs_total",
				Help: "Total number of training runs by algorithm and status",
			},
			[]string{"algorithm", "status"},
		),

		ModelAccuracy: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leadbot_model_accuracy",
				Help: "Held-out accuracy of the latest trained model by algorithm",
			},
			[]string{"algorithm"},
		),

		// Generation metrics
		GenerationRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbot_generation_requests_total",
				Help: "Total number of LLM generation requests by provider and status",
			},
			[]string{"provider", "status"},
		),

		GenerationDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadbot_generation_duration_seconds",
				Help:    "LLM generation request duration in seconds by provider",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
	}

	return m
}

// RecordChatRequest records a chat request with status
func (m *Metrics) RecordChatRequest(status string, duration float64) {
	m.ChatRequestsTotal.WithLabelValues(status).Inc()
	m.ChatDurationSecond.WithLabelValues(status).Observe(duration)
}

// RecordIntentPrediction records a predicted intent label
func (m *Metrics) RecordIntentPrediction(intent string) {
	m.IntentPredictions.WithLabelValues(intent).Inc()
}

// RecordPipelineStage records a pipeline stage run
func (m *Metrics) RecordPipelineStage(stage, status string, duration float64) {
	m.PipelineStagesTotal.WithLabelValues(stage, status).Inc()
	m.PipelineStageDuration.WithLabelValues(stage).Observe(duration)
}

// RecordTrainingRun records a training run and its resulting accuracy
func (m *Metrics) RecordTrainingRun(algorithm, status string, accuracy float64) {
	m.TrainingRunsTotal.WithLabelValues(algorithm, status).Inc()
	if status == "success" {
		m.ModelAccuracy.WithLabelValues(algorithm).Set(accuracy)
	}
}

// RecordGeneration records an LLM generation request
func (m *Metrics) RecordGeneration(provider, status string, duration float64) {
	m.GenerationRequestsTotal.WithLabelValues(provider, status).Inc()
	m.GenerationDuration.WithLabelValues(provider).Observe(duration)
}
