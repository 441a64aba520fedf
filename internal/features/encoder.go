package features

import (
	"fmt"
	"sort"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// LabelEncoder maps status labels to dense class indices. Classes are
// sorted lexicographically at fit time so the mapping only depends on the
// label set, not on corpus order.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// NewLabelEncoder returns an unfitted encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the class set from labels.
func (e *LabelEncoder) Fit(labels []string) {
	seen := make(map[string]bool)
	e.Classes = e.Classes[:0]
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			e.Classes = append(e.Classes, l)
		}
	}
	sort.Strings(e.Classes)
	e.buildIndex()
}

// Transform maps each label to its class index. Unknown labels are an
// error since they mean the corpus changed under the model.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	if e.index == nil {
		e.buildIndex()
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, ok := e.index[l]
		if !ok {
			return nil, fmt.Errorf("label %q: %w", l, apperrors.ErrInvalidInput)
		}
		out[i] = idx
	}
	return out, nil
}

// Inverse maps a class index back to its label.
func (e *LabelEncoder) Inverse(class int) (string, error) {
	if class < 0 || class >= len(e.Classes) {
		return "", fmt.Errorf("class index %d out of range: %w", class, apperrors.ErrInvalidInput)
	}
	return e.Classes[class], nil
}

// NumClasses returns the number of fitted classes.
func (e *LabelEncoder) NumClasses() int {
	return len(e.Classes)
}

func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}
