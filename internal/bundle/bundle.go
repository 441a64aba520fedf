// Package bundle persists trained model bundles. Each algorithm owns one
// directory under the model root holding its label encoder, its
// vectorizer (vector algorithms only), the fitted model and its
// evaluation metrics. A bundle is replaced as a whole: the new directory
// is staged next to the old one and renamed into place.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazemdh/leadbot-go/internal/classifier"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/features"
)

const (
	encoderFile    = "label_encoder.json"
	vectorizerFile = "tfidf_vectorizer.json"
)

// Metrics holds the held-out evaluation of one trained model. Precision,
// recall and F1 are weighted by class support.
type Metrics struct {
	Algorithm string  `json:"algorithm"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
	TrainedAt string  `json:"trained_at"`
}

// Bundle is one trained model with everything inference needs. Exactly
// one of Vector and Sequence is set, depending on the algorithm.
type Bundle struct {
	Algorithm  string
	Encoder    *features.LabelEncoder
	Vectorizer *features.Vectorizer
	Vector     classifier.VectorModel
	Sequence   *classifier.LSTM
	Metrics    *Metrics
}

// Classify assigns a status label to text.
func (b *Bundle) Classify(text string) (string, error) {
	var class int
	var err error
	if b.Sequence != nil {
		class, err = b.Sequence.PredictDocument(text)
	} else {
		if b.Vectorizer == nil || b.Vector == nil {
			return "", apperrors.ErrModelLoad
		}
		var vectors [][]float64
		vectors, err = b.Vectorizer.Transform([]string{text})
		if err == nil {
			class, err = b.Vector.Predict(vectors[0])
		}
	}
	if err != nil {
		return "", err
	}
	return b.Encoder.Inverse(class)
}

// ValidateAlgorithm rejects unknown algorithm names before any disk I/O
// happens on their behalf.
func ValidateAlgorithm(algorithm string) error {
	switch algorithm {
	case classifier.RandomForest, classifier.NaiveBayes, classifier.LogisticRegression, classifier.LSTMNetwork:
		return nil
	}
	return fmt.Errorf("algorithm %q: %w", algorithm, apperrors.ErrInvalidAlgorithm)
}

// Dir returns the bundle directory of algorithm under modelDir.
func Dir(modelDir, algorithm string) string {
	return filepath.Join(modelDir, algorithm)
}

func modelFile(algorithm string) string {
	return algorithm + ".json"
}

func metricsFile(algorithm string) string {
	return "metrics_" + algorithm + ".json"
}

// Save writes the bundle to its directory under modelDir, replacing any
// previous bundle of the same algorithm in one rename.
func Save(modelDir string, b *Bundle) error {
	if err := ValidateAlgorithm(b.Algorithm); err != nil {
		return err
	}
	if b.Encoder == nil || b.Metrics == nil {
		return fmt.Errorf("incomplete bundle for %s: %w", b.Algorithm, apperrors.ErrInvalidInput)
	}

	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	staging, err := os.MkdirTemp(modelDir, b.Algorithm+".tmp-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	files := map[string]any{
		encoderFile:              b.Encoder,
		metricsFile(b.Algorithm): b.Metrics,
	}
	if b.Sequence != nil {
		files[modelFile(b.Algorithm)] = b.Sequence
	} else {
		if b.Vectorizer == nil || b.Vector == nil {
			return fmt.Errorf("incomplete bundle for %s: %w", b.Algorithm, apperrors.ErrInvalidInput)
		}
		files[vectorizerFile] = b.Vectorizer
		files[modelFile(b.Algorithm)] = b.Vector
	}
	for name, v := range files {
		if err := writeJSONFile(filepath.Join(staging, name), v); err != nil {
			return err
		}
	}

	final := Dir(modelDir, b.Algorithm)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("remove previous bundle: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		return fmt.Errorf("install bundle: %w", err)
	}
	return nil
}

// Load reads the bundle of algorithm from modelDir.
func Load(modelDir, algorithm string) (*Bundle, error) {
	if err := ValidateAlgorithm(algorithm); err != nil {
		return nil, err
	}
	dir := Dir(modelDir, algorithm)

	b := &Bundle{Algorithm: algorithm, Encoder: features.NewLabelEncoder()}
	if err := readJSONFile(filepath.Join(dir, encoderFile), b.Encoder); err != nil {
		return nil, err
	}

	switch algorithm {
	case classifier.LSTMNetwork:
		b.Sequence = &classifier.LSTM{}
		if err := readJSONFile(filepath.Join(dir, modelFile(algorithm)), b.Sequence); err != nil {
			return nil, err
		}
	default:
		b.Vectorizer = &features.Vectorizer{}
		if err := readJSONFile(filepath.Join(dir, vectorizerFile), b.Vectorizer); err != nil {
			return nil, err
		}
		model, err := classifier.NewVectorModel(algorithm)
		if err != nil {
			return nil, err
		}
		if err := readJSONFile(filepath.Join(dir, modelFile(algorithm)), model); err != nil {
			return nil, err
		}
		b.Vector = model
	}

	metrics, err := LoadMetrics(modelDir, algorithm)
	if err == nil {
		b.Metrics = metrics
	}
	return b, nil
}

// LoadMetrics reads only the metrics artifact of algorithm.
func LoadMetrics(modelDir, algorithm string) (*Metrics, error) {
	if err := ValidateAlgorithm(algorithm); err != nil {
		return nil, err
	}
	m := &Metrics{}
	if err := readJSONFile(filepath.Join(Dir(modelDir, algorithm), metricsFile(algorithm)), m); err != nil {
		return nil, err
	}
	return m, nil
}

// CompareAll loads the metrics of every algorithm that has a bundle under
// modelDir, in the given order. Missing bundles are skipped.
func CompareAll(modelDir string, algorithms []string) []Metrics {
	var out []Metrics
	for _, algo := range algorithms {
		m, err := LoadMetrics(modelDir, algo)
		if err != nil {
			continue
		}
		out = append(out, *m)
	}
	return out
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, apperrors.ErrModelLoad)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, apperrors.ErrModelLoad)
	}
	return nil
}
