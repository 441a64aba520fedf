// Package classifier implements the intent classifiers. Three of them
// (random forest, naive Bayes, logistic regression) train on TF-IDF
// vectors; the LSTM trains on token id sequences and carries its own
// token index. All fitted state marshals to plain JSON.
package classifier

import (
	"fmt"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// Algorithm names. These double as bundle directory and file names.
const (
	RandomForest       = "random_forest"
	NaiveBayes         = "naive_bayes"
	LogisticRegression = "logistic_regression"
	LSTMNetwork        = "lstm"
)

// VectorModel is a classifier trained on dense feature vectors.
type VectorModel interface {
	Algorithm() string
	Fit(x [][]float64, y []int, numClasses int) error
	Predict(x []float64) (int, error)
}

// NewVectorModel builds an untrained vector classifier for algorithm.
// The LSTM is not a vector model and has its own constructor.
func NewVectorModel(algorithm string) (VectorModel, error) {
	switch algorithm {
	case RandomForest:
		return NewForest(), nil
	case NaiveBayes:
		return NewMultinomialNB(), nil
	case LogisticRegression:
		return NewSoftmaxRegression(), nil
	default:
		return nil, fmt.Errorf("algorithm %q: %w", algorithm, apperrors.ErrInvalidAlgorithm)
	}
}

func argmax(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

func checkTrainingSet(x [][]float64, y []int, numClasses int) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("training set of %d vectors and %d labels: %w", len(x), len(y), apperrors.ErrInvalidInput)
	}
	if numClasses < 2 {
		return fmt.Errorf("%d classes: %w", numClasses, apperrors.ErrInvalidInput)
	}
	for _, label := range y {
		if label < 0 || label >= numClasses {
			return fmt.Errorf("label %d out of range: %w", label, apperrors.ErrInvalidInput)
		}
	}
	return nil
}
