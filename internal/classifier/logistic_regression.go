package classifier

import (
	"math"
	"math/rand"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// SoftmaxRegression is a multinomial logistic regression classifier
// trained with stochastic gradient descent over the softmax
// cross-entropy loss.
type SoftmaxRegression struct {
	Epochs       int     `json:"epochs"`
	LearningRate float64 `json:"learning_rate"`
	L2           float64 `json:"l2"`
	Seed         int64   `json:"seed"`

	Weights [][]float64 `json:"weights"` // [class][feature]
	Bias    []float64   `json:"bias"`
}

// NewSoftmaxRegression returns an untrained classifier with defaults
// tuned for short TF-IDF documents.
func NewSoftmaxRegression() *SoftmaxRegression {
	return &SoftmaxRegression{
		Epochs:       200,
		LearningRate: 0.5,
		L2:           1e-4,
		Seed:         42,
	}
}

func (s *SoftmaxRegression) Algorithm() string { return LogisticRegression }

// Fit trains the weights with per-sample SGD, reshuffling the training
// order every epoch with a fixed seed.
func (s *SoftmaxRegression) Fit(x [][]float64, y []int, numClasses int) error {
	if err := checkTrainingSet(x, y, numClasses); err != nil {
		return err
	}
	numFeatures := len(x[0])

	s.Weights = make([][]float64, numClasses)
	for c := range s.Weights {
		s.Weights[c] = make([]float64, numFeatures)
	}
	s.Bias = make([]float64, numClasses)

	rng := rand.New(rand.NewSource(s.Seed))
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < s.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, i := range order {
			probs := s.probabilities(x[i])
			for c := 0; c < numClasses; c++ {
				grad := probs[c]
				if c == y[i] {
					grad -= 1
				}
				s.Bias[c] -= s.LearningRate * grad
				for j, v := range x[i] {
					if v != 0 {
						s.Weights[c][j] -= s.LearningRate * (grad*v + s.L2*s.Weights[c][j])
					}
				}
			}
		}
	}
	return nil
}

// Predict returns the class with the highest softmax probability.
func (s *SoftmaxRegression) Predict(x []float64) (int, error) {
	if len(s.Weights) == 0 {
		return 0, apperrors.ErrModelLoad
	}
	return argmax(s.probabilities(x)), nil
}

func (s *SoftmaxRegression) probabilities(x []float64) []float64 {
	logits := make([]float64, len(s.Weights))
	for c := range s.Weights {
		z := s.Bias[c]
		for j, v := range x {
			if v != 0 {
				z += s.Weights[c][j] * v
			}
		}
		logits[c] = z
	}
	return softmax(logits)
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[argmax(logits)]
	var sum float64
	out := make([]float64, len(logits))
	for i, z := range logits {
		out[i] = math.Exp(z - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
