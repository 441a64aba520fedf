package classifier

import (
	"math"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// MultinomialNB is a multinomial naive Bayes classifier with Laplace
// smoothing. TF-IDF weights stand in for counts, which works in practice
// even though the multinomial assumption is about counts.
type MultinomialNB struct {
	Alpha          float64     `json:"alpha"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// NewMultinomialNB returns an untrained classifier with standard
// smoothing.
func NewMultinomialNB() *MultinomialNB {
	return &MultinomialNB{Alpha: 1.0}
}

func (m *MultinomialNB) Algorithm() string { return NaiveBayes }

// Fit estimates class priors and per-class feature log probabilities.
func (m *MultinomialNB) Fit(x [][]float64, y []int, numClasses int) error {
	if err := checkTrainingSet(x, y, numClasses); err != nil {
		return err
	}
	numFeatures := len(x[0])

	classCount := make([]float64, numClasses)
	featureSum := make([][]float64, numClasses)
	for c := range featureSum {
		featureSum[c] = make([]float64, numFeatures)
	}
	for i, row := range x {
		classCount[y[i]]++
		for j, v := range row {
			featureSum[y[i]][j] += v
		}
	}

	n := float64(len(x))
	m.ClassLogPrior = make([]float64, numClasses)
	m.FeatureLogProb = make([][]float64, numClasses)
	for c := 0; c < numClasses; c++ {
		if classCount[c] == 0 {
			// An empty class still needs finite parameters.
			m.ClassLogPrior[c] = math.Inf(-1)
		} else {
			m.ClassLogPrior[c] = math.Log(classCount[c] / n)
		}

		var total float64
		for _, v := range featureSum[c] {
			total += v
		}
		denom := total + m.Alpha*float64(numFeatures)

		m.FeatureLogProb[c] = make([]float64, numFeatures)
		for j := range m.FeatureLogProb[c] {
			m.FeatureLogProb[c][j] = math.Log((featureSum[c][j] + m.Alpha) / denom)
		}
	}
	return nil
}

// Predict returns the class with the highest joint log likelihood.
func (m *MultinomialNB) Predict(x []float64) (int, error) {
	if len(m.ClassLogPrior) == 0 {
		return 0, apperrors.ErrModelLoad
	}
	scores := make([]float64, len(m.ClassLogPrior))
	for c := range scores {
		s := m.ClassLogPrior[c]
		for j, v := range x {
			if v != 0 {
				s += v * m.FeatureLogProb[c][j]
			}
		}
		scores[c] = s
	}
	return argmax(scores), nil
}
