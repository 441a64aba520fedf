// Package trainer turns a labeled corpus into persisted model bundles.
// Every algorithm trains on the same seeded 80/20 split so metrics are
// comparable across runs and across algorithms.
package trainer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hazemdh/leadbot-go/internal/bundle"
	"github.com/hazemdh/leadbot-go/internal/classifier"
	"github.com/hazemdh/leadbot-go/internal/corpus"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/features"
	"github.com/hazemdh/leadbot-go/internal/logger"
)

// Trainer trains and persists classifiers from a corpus.
type Trainer struct {
	ModelDir     string
	Seed         int64
	TestFraction float64

	log *logger.Logger
}

// Result is the outcome of training one algorithm.
type Result struct {
	Algorithm string
	Metrics   *bundle.Metrics
	Err       error
}

// New returns a trainer writing bundles under modelDir.
func New(modelDir string, log *logger.Logger) *Trainer {
	return &Trainer{
		ModelDir:     modelDir,
		Seed:         42,
		TestFraction: 0.2,
		log:          log.WithModule("trainer"),
	}
}

// Train fits algorithm on the corpus, evaluates it on the held-out split
// and persists the bundle. It returns the evaluation metrics.
func (t *Trainer) Train(c corpus.Corpus, algorithm string) (*bundle.Metrics, error) {
	if err := bundle.ValidateAlgorithm(algorithm); err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return nil, apperrors.ErrCorpusEmpty
	}

	docs := make([]string, len(c))
	labels := make([]string, len(c))
	for i, conv := range c {
		docs[i] = conv.Document()
		labels[i] = conv.Status
	}

	// The encoder sees every label so the held-out set never carries an
	// unknown class.
	encoder := features.NewLabelEncoder()
	encoder.Fit(labels)
	y, err := encoder.Transform(labels)
	if err != nil {
		return nil, err
	}
	if encoder.NumClasses() < 2 {
		return nil, fmt.Errorf("corpus has a single label: %w", apperrors.ErrCorpusEmpty)
	}

	trainIdx, testIdx := t.split(len(docs))
	t.log.Info("training model",
		"algorithm", algorithm,
		"conversations", len(c),
		"train_size", len(trainIdx),
		"test_size", len(testIdx),
		"classes", encoder.NumClasses(),
	)

	b := &bundle.Bundle{Algorithm: algorithm, Encoder: encoder}
	var predictions []int

	if algorithm == classifier.LSTMNetwork {
		lstm := classifier.NewLSTM()
		lstm.Seed = t.Seed
		if err := lstm.FitDocuments(pick(docs, trainIdx), pick(y, trainIdx), encoder.NumClasses()); err != nil {
			return nil, err
		}
		b.Sequence = lstm
		predictions, err = predictDocs(lstm, pick(docs, testIdx))
		if err != nil {
			return nil, err
		}
	} else {
		vectorizer := features.NewVectorizer()
		xTrain, err := vectorizer.FitTransform(pick(docs, trainIdx))
		if err != nil {
			return nil, err
		}
		model, err := classifier.NewVectorModel(algorithm)
		if err != nil {
			return nil, err
		}
		if err := model.Fit(xTrain, pick(y, trainIdx), encoder.NumClasses()); err != nil {
			return nil, err
		}
		b.Vectorizer = vectorizer
		b.Vector = model

		xTest, err := vectorizer.Transform(pick(docs, testIdx))
		if err != nil {
			return nil, err
		}
		predictions, err = predictVectors(model, xTest)
		if err != nil {
			return nil, err
		}
	}

	metrics := Evaluate(pick(y, testIdx), predictions, encoder.NumClasses())
	metrics.Algorithm = algorithm
	metrics.TrainSize = len(trainIdx)
	metrics.TestSize = len(testIdx)
	metrics.TrainedAt = time.Now().UTC().Format(time.RFC3339)
	b.Metrics = metrics

	if err := bundle.Save(t.ModelDir, b); err != nil {
		return nil, err
	}
	t.log.Info("model trained",
		"algorithm", algorithm,
		"accuracy", metrics.Accuracy,
		"f1_score", metrics.F1,
	)
	return metrics, nil
}

// TrainAll trains each algorithm in order. A failure in one algorithm is
// recorded and does not stop the others.
func (t *Trainer) TrainAll(c corpus.Corpus, algorithms []string) []Result {
	results := make([]Result, 0, len(algorithms))
	for _, algo := range algorithms {
		metrics, err := t.Train(c, algo)
		if err != nil {
			t.log.Error("training failed", "algorithm", algo, "error", err)
		}
		results = append(results, Result{Algorithm: algo, Metrics: metrics, Err: err})
	}
	return results
}

// split shuffles sample indices with the fixed seed and carves off the
// test fraction, keeping at least one sample on each side.
func (t *Trainer) split(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(t.Seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testN := int(float64(n) * t.TestFraction)
	if testN < 1 {
		testN = 1
	}
	if testN >= n {
		testN = n - 1
	}
	return idx[testN:], idx[:testN]
}

func pick[T any](xs []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}

func predictVectors(m classifier.VectorModel, x [][]float64) ([]int, error) {
	out := make([]int, len(x))
	for i, row := range x {
		class, err := m.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = class
	}
	return out, nil
}

func predictDocs(m *classifier.LSTM, docs []string) ([]int, error) {
	out := make([]int, len(docs))
	for i, doc := range docs {
		class, err := m.PredictDocument(doc)
		if err != nil {
			return nil, err
		}
		out[i] = class
	}
	return out, nil
}
