package classifier

import (
	"math"
	"math/rand"
	"sort"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// Forest is a random forest of Gini-split decision trees. Each tree
// trains on a bootstrap sample and considers sqrt(F) random features per
// split. Prediction is a majority vote.
type Forest struct {
	NumTrees        int   `json:"num_trees"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	Seed            int64 `json:"seed"`

	NumClasses int         `json:"num_classes"`
	Trees      []*treeNode `json:"trees"`
}

type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Class     int       `json:"class,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// NewForest returns an untrained forest with defaults that keep training
// fast on a few thousand short documents.
func NewForest() *Forest {
	return &Forest{
		NumTrees:        100,
		MaxDepth:        12,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

func (f *Forest) Algorithm() string { return RandomForest }

// Fit grows the trees.
func (f *Forest) Fit(x [][]float64, y []int, numClasses int) error {
	if err := checkTrainingSet(x, y, numClasses); err != nil {
		return err
	}
	f.NumClasses = numClasses
	f.Trees = make([]*treeNode, f.NumTrees)

	rng := rand.New(rand.NewSource(f.Seed))
	numFeatures := len(x[0])
	featuresPerSplit := int(math.Sqrt(float64(numFeatures)))
	if featuresPerSplit < 1 {
		featuresPerSplit = 1
	}

	for t := range f.Trees {
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.Intn(len(x))
		}
		f.Trees[t] = f.grow(x, y, sample, 0, featuresPerSplit, rng)
	}
	return nil
}

// Predict returns the majority class across all trees.
func (f *Forest) Predict(x []float64) (int, error) {
	if len(f.Trees) == 0 {
		return 0, apperrors.ErrModelLoad
	}
	votes := make([]float64, f.NumClasses)
	for _, tree := range f.Trees {
		votes[tree.predict(x)]++
	}
	return argmax(votes), nil
}

func (t *treeNode) predict(x []float64) int {
	for !t.Leaf {
		if x[t.Feature] <= t.Threshold {
			t = t.Left
		} else {
			t = t.Right
		}
	}
	return t.Class
}

func (f *Forest) grow(x [][]float64, y []int, sample []int, depth, featuresPerSplit int, rng *rand.Rand) *treeNode {
	counts := make([]int, f.NumClasses)
	for _, i := range sample {
		counts[y[i]]++
	}
	majority := 0
	for c, n := range counts {
		if n > counts[majority] {
			majority = c
		}
	}
	if depth >= f.MaxDepth || len(sample) < f.MinSamplesSplit || counts[majority] == len(sample) {
		return &treeNode{Leaf: true, Class: majority}
	}

	feature, threshold, ok := f.bestSplit(x, y, sample, featuresPerSplit, rng)
	if !ok {
		return &treeNode{Leaf: true, Class: majority}
	}

	var left, right []int
	for _, i := range sample {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Class: majority}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      f.grow(x, y, left, depth+1, featuresPerSplit, rng),
		Right:     f.grow(x, y, right, depth+1, featuresPerSplit, rng),
	}
}

func (f *Forest) bestSplit(x [][]float64, y []int, sample []int, featuresPerSplit int, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(x[0])
	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for k := 0; k < featuresPerSplit; k++ {
		feature := rng.Intn(numFeatures)

		values := make([]float64, 0, len(sample))
		for _, i := range sample {
			values = append(values, x[i][feature])
		}
		sort.Float64s(values)

		for v := 0; v+1 < len(values); v++ {
			if values[v] == values[v+1] {
				continue
			}
			threshold := (values[v] + values[v+1]) / 2
			gini := f.splitGini(x, y, sample, feature, threshold)
			if gini < bestGini {
				bestGini = gini
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func (f *Forest) splitGini(x [][]float64, y []int, sample []int, feature int, threshold float64) float64 {
	leftCounts := make([]int, f.NumClasses)
	rightCounts := make([]int, f.NumClasses)
	var leftTotal, rightTotal int
	for _, i := range sample {
		if x[i][feature] <= threshold {
			leftCounts[y[i]]++
			leftTotal++
		} else {
			rightCounts[y[i]]++
			rightTotal++
		}
	}
	total := float64(leftTotal + rightTotal)
	return float64(leftTotal)/total*gini(leftCounts, leftTotal) +
		float64(rightTotal)/total*gini(rightCounts, rightTotal)
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		impurity -= p * p
	}
	return impurity
}
