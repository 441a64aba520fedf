package features

import (
	"math"
	"sort"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// DefaultMaxFeatures caps the vocabulary size of a fitted vectorizer.
const DefaultMaxFeatures = 5000

// Vectorizer converts documents into TF-IDF vectors over unigrams and
// bigrams. When the candidate vocabulary exceeds MaxFeatures, the terms
// with the highest corpus-wide counts win, ties broken alphabetically.
// IDF is smoothed (ln((1+n)/(1+df)) + 1) and rows are L2 normalized.
type Vectorizer struct {
	MaxFeatures int            `json:"max_features"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

// NewVectorizer returns an unfitted vectorizer with the default cap.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{MaxFeatures: DefaultMaxFeatures}
}

// NumFeatures returns the fitted vocabulary size.
func (v *Vectorizer) NumFeatures() int {
	return len(v.Vocabulary)
}

// Fit learns the vocabulary and IDF weights from docs.
func (v *Vectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return apperrors.ErrCorpusEmpty
	}

	totalCount := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		counts := termCounts(doc)
		for term, n := range counts {
			totalCount[term] += n
			docFreq[term]++
		}
	}

	terms := make([]string, 0, len(totalCount))
	for term := range totalCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totalCount[terms[i]] != totalCount[terms[j]] {
			return totalCount[terms[i]] > totalCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}

	// Feature indices follow alphabetical order of the kept terms so the
	// fitted state is stable across runs.
	sort.Strings(terms)
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

// Transform vectorizes docs with the fitted vocabulary. Terms outside the
// vocabulary are ignored; a document with no known terms yields a zero
// vector.
func (v *Vectorizer) Transform(docs []string) ([][]float64, error) {
	if len(v.Vocabulary) == 0 {
		return nil, apperrors.ErrModelLoad
	}
	out := make([][]float64, len(docs))
	for d, doc := range docs {
		row := make([]float64, len(v.IDF))
		for term, count := range termCounts(doc) {
			if idx, ok := v.Vocabulary[term]; ok {
				row[idx] = float64(count) * v.IDF[idx]
			}
		}
		normalizeL2(row)
		out[d] = row
	}
	return out, nil
}

// FitTransform fits on docs and returns their vectors.
func (v *Vectorizer) FitTransform(docs []string) ([][]float64, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

func termCounts(doc string) map[string]int {
	tokens := Tokenize(doc)
	counts := make(map[string]int, len(tokens)*2)
	for _, t := range tokens {
		counts[t]++
	}
	for _, g := range Bigrams(tokens) {
		counts[g]++
	}
	return counts
}

func normalizeL2(row []float64) {
	var sum float64
	for _, x := range row {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i] /= norm
	}
}
