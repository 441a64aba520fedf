package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.ChatRequestsTotal == nil {
		t.Error("ChatRequestsTotal is nil")
	}
	if m.ChatDurationSecond == nil {
		t.Error("ChatDurationSecond is nil")
	}
	if m.IntentPredictions == nil {
		t.Error("IntentPredictions is nil")
	}
	if m.PipelineStagesTotal == nil {
		t.Error("PipelineStagesTotal is nil")
	}
	if m.PipelineStageDuration == nil {
		t.Error("PipelineStageDuration is nil")
	}
	if m.TrainingRunsTotal == nil {
		t.Error("TrainingRunsTotal is nil")
	}
	if m.ModelAccuracy == nil {
		t.Error("ModelAccuracy is nil")
	}
	if m.GenerationRequestsTotal == nil {
		t.Error("GenerationRequestsTotal is nil")
	}
	if m.GenerationDuration == nil {
		t.Error("GenerationDuration is nil")
	}
}

func TestRecordHelpers(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordChatRequest("success", 0.02)
	m.RecordChatRequest("unavailable", 0.001)
	m.RecordIntentPrediction("interested")
	m.RecordPipelineStage("merge_data", "success", 1.2)
	m.RecordPipelineStage("clean_messages", "error", 0.4)
	m.RecordTrainingRun("naive_bayes", "success", 0.91)
	m.RecordTrainingRun("lstm", "error", 0)
	m.RecordGeneration("gemini", "success", 3.5)
	m.RecordGeneration("groq", "error", 12.0)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("no metric families registered")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	New(registry)
}
