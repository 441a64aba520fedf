package trainer

import (
	"github.com/hazemdh/leadbot-go/internal/bundle"
)

// Evaluate computes accuracy and support-weighted precision, recall and
// F1 for predictions against truth. Classes with no predicted (or no
// true) samples contribute zero rather than dividing by zero.
func Evaluate(truth, predictions []int, numClasses int) *bundle.Metrics {
	m := &bundle.Metrics{}
	if len(truth) == 0 || len(truth) != len(predictions) {
		return m
	}

	truePos := make([]float64, numClasses)
	falsePos := make([]float64, numClasses)
	falseNeg := make([]float64, numClasses)
	support := make([]float64, numClasses)

	var correct float64
	for i, want := range truth {
		got := predictions[i]
		support[want]++
		if got == want {
			correct++
			truePos[want]++
		} else {
			falsePos[got]++
			falseNeg[want]++
		}
	}
	m.Accuracy = correct / float64(len(truth))

	total := float64(len(truth))
	for c := 0; c < numClasses; c++ {
		var precision, recall, f1 float64
		if truePos[c]+falsePos[c] > 0 {
			precision = truePos[c] / (truePos[c] + falsePos[c])
		}
		if truePos[c]+falseNeg[c] > 0 {
			recall = truePos[c] / (truePos[c] + falseNeg[c])
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		weight := support[c] / total
		m.Precision += weight * precision
		m.Recall += weight * recall
		m.F1 += weight * f1
	}
	return m
}
