package classifier

import (
	"math"
	"math/rand"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/features"
)

// LSTM is a compact recurrent classifier: token embeddings feed a single
// LSTM layer whose final hidden state goes through a softmax. Unlike the
// vector models it trains on token id sequences and carries its own token
// index, so its bundle has no TF-IDF artifact.
type LSTM struct {
	EmbeddingDim   int     `json:"embedding_dim"`
	HiddenDim      int     `json:"hidden_dim"`
	MaxSequenceLen int     `json:"max_sequence_len"`
	Epochs         int     `json:"epochs"`
	LearningRate   float64 `json:"learning_rate"`
	Seed           int64   `json:"seed"`

	Vocabulary map[string]int `json:"vocabulary"` // token -> id, 1-based; 0 is out-of-vocabulary
	NumClasses int            `json:"num_classes"`

	Embedding [][]float64 `json:"embedding"` // [vocab+1][embedding_dim]
	Wx        [][]float64 `json:"wx"`        // [4*hidden][embedding_dim], gate order i,f,g,o
	Wh        [][]float64 `json:"wh"`        // [4*hidden][hidden]
	B         []float64   `json:"b"`         // [4*hidden]
	Wo        [][]float64 `json:"wo"`        // [classes][hidden]
	Bo        []float64   `json:"bo"`        // [classes]
}

// NewLSTM returns an untrained network with defaults sized for short
// chat conversations.
func NewLSTM() *LSTM {
	return &LSTM{
		EmbeddingDim:   32,
		HiddenDim:      32,
		MaxSequenceLen: 100,
		Epochs:         30,
		LearningRate:   0.05,
		Seed:           42,
	}
}

func (l *LSTM) Algorithm() string { return LSTMNetwork }

// FitDocuments builds the token index from docs and trains the network
// with per-sample SGD and backpropagation through time.
func (l *LSTM) FitDocuments(docs []string, y []int, numClasses int) error {
	if len(docs) == 0 || len(docs) != len(y) {
		return apperrors.ErrInvalidInput
	}
	if numClasses < 2 {
		return apperrors.ErrInvalidInput
	}
	l.NumClasses = numClasses

	l.Vocabulary = make(map[string]int)
	sequences := make([][]int, len(docs))
	for d, doc := range docs {
		for _, tok := range features.Tokenize(doc) {
			if _, ok := l.Vocabulary[tok]; !ok {
				l.Vocabulary[tok] = len(l.Vocabulary) + 1
			}
			sequences[d] = append(sequences[d], l.Vocabulary[tok])
		}
		if len(sequences[d]) > l.MaxSequenceLen {
			sequences[d] = sequences[d][len(sequences[d])-l.MaxSequenceLen:]
		}
	}

	rng := rand.New(rand.NewSource(l.Seed))
	l.initWeights(rng)

	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	for epoch := 0; epoch < l.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, i := range order {
			l.step(sequences[i], y[i])
		}
	}
	return nil
}

// PredictDocument tokenizes doc with the fitted index and returns the
// predicted class. Out-of-vocabulary tokens are skipped; an empty
// sequence falls through to the output bias.
func (l *LSTM) PredictDocument(doc string) (int, error) {
	if l.Vocabulary == nil || len(l.Wo) == 0 {
		return 0, apperrors.ErrModelLoad
	}
	var seq []int
	for _, tok := range features.Tokenize(doc) {
		if id, ok := l.Vocabulary[tok]; ok {
			seq = append(seq, id)
		}
	}
	if len(seq) > l.MaxSequenceLen {
		seq = seq[len(seq)-l.MaxSequenceLen:]
	}
	h, _, _ := l.forward(seq)
	return argmax(l.logits(h)), nil
}

func (l *LSTM) initWeights(rng *rand.Rand) {
	uniform := func(rows, cols int) [][]float64 {
		m := make([][]float64, rows)
		for r := range m {
			m[r] = make([]float64, cols)
			for c := range m[r] {
				m[r][c] = (rng.Float64()*2 - 1) * 0.1
			}
		}
		return m
	}
	h4 := 4 * l.HiddenDim
	l.Embedding = uniform(len(l.Vocabulary)+1, l.EmbeddingDim)
	l.Wx = uniform(h4, l.EmbeddingDim)
	l.Wh = uniform(h4, l.HiddenDim)
	l.B = make([]float64, h4)
	// Forget gate bias starts positive so early training keeps memory.
	for j := l.HiddenDim; j < 2*l.HiddenDim; j++ {
		l.B[j] = 1
	}
	l.Wo = uniform(l.NumClasses, l.HiddenDim)
	l.Bo = make([]float64, l.NumClasses)
}

type lstmCache struct {
	x          []float64
	i, f, g, o []float64
	c, h       []float64
	cPrev      []float64
	hPrev      []float64
	tanhC      []float64
	tokenID    int
}

func (l *LSTM) forward(seq []int) (h, c []float64, caches []lstmCache) {
	h = make([]float64, l.HiddenDim)
	c = make([]float64, l.HiddenDim)
	caches = make([]lstmCache, 0, len(seq))
	for _, id := range seq {
		cache := lstmCache{tokenID: id, hPrev: h, cPrev: c}
		cache.x = l.Embedding[id]

		z := make([]float64, 4*l.HiddenDim)
		for j := range z {
			s := l.B[j]
			for k, xv := range cache.x {
				s += l.Wx[j][k] * xv
			}
			for k, hv := range h {
				s += l.Wh[j][k] * hv
			}
			z[j] = s
		}

		hd := l.HiddenDim
		cache.i, cache.f = make([]float64, hd), make([]float64, hd)
		cache.g, cache.o = make([]float64, hd), make([]float64, hd)
		cache.c, cache.h = make([]float64, hd), make([]float64, hd)
		cache.tanhC = make([]float64, hd)
		for j := 0; j < hd; j++ {
			cache.i[j] = sigmoid(z[j])
			cache.f[j] = sigmoid(z[hd+j])
			cache.g[j] = math.Tanh(z[2*hd+j])
			cache.o[j] = sigmoid(z[3*hd+j])
			cache.c[j] = cache.f[j]*c[j] + cache.i[j]*cache.g[j]
			cache.tanhC[j] = math.Tanh(cache.c[j])
			cache.h[j] = cache.o[j] * cache.tanhC[j]
		}
		h, c = cache.h, cache.c
		caches = append(caches, cache)
	}
	return h, c, caches
}

func (l *LSTM) logits(h []float64) []float64 {
	out := make([]float64, l.NumClasses)
	for cIdx := range out {
		s := l.Bo[cIdx]
		for j, hv := range h {
			s += l.Wo[cIdx][j] * hv
		}
		out[cIdx] = s
	}
	return out
}

// step runs one forward/backward pass for a single sample and applies
// the gradients immediately.
func (l *LSTM) step(seq []int, label int) {
	h, _, caches := l.forward(seq)
	probs := softmax(l.logits(h))

	hd := l.HiddenDim
	lr := l.LearningRate

	// Output layer.
	dh := make([]float64, hd)
	for cIdx := 0; cIdx < l.NumClasses; cIdx++ {
		grad := probs[cIdx]
		if cIdx == label {
			grad -= 1
		}
		l.Bo[cIdx] -= lr * clip(grad)
		for j := 0; j < hd; j++ {
			dh[j] += grad * l.Wo[cIdx][j]
			l.Wo[cIdx][j] -= lr * clip(grad*h[j])
		}
	}

	// Backpropagation through time.
	dc := make([]float64, hd)
	for t := len(caches) - 1; t >= 0; t-- {
		cache := caches[t]

		dz := make([]float64, 4*hd)
		dcTotal := make([]float64, hd)
		for j := 0; j < hd; j++ {
			do := dh[j] * cache.tanhC[j]
			dcTotal[j] = dc[j] + dh[j]*cache.o[j]*(1-cache.tanhC[j]*cache.tanhC[j])

			di := dcTotal[j] * cache.g[j]
			df := dcTotal[j] * cache.cPrev[j]
			dg := dcTotal[j] * cache.i[j]

			dz[j] = di * cache.i[j] * (1 - cache.i[j])
			dz[hd+j] = df * cache.f[j] * (1 - cache.f[j])
			dz[2*hd+j] = dg * (1 - cache.g[j]*cache.g[j])
			dz[3*hd+j] = do * cache.o[j] * (1 - cache.o[j])
		}

		dhPrev := make([]float64, hd)
		dx := make([]float64, l.EmbeddingDim)
		for j := 0; j < 4*hd; j++ {
			if dz[j] == 0 {
				continue
			}
			l.B[j] -= lr * clip(dz[j])
			for k := 0; k < l.EmbeddingDim; k++ {
				dx[k] += dz[j] * l.Wx[j][k]
				l.Wx[j][k] -= lr * clip(dz[j]*cache.x[k])
			}
			for k := 0; k < hd; k++ {
				dhPrev[k] += dz[j] * l.Wh[j][k]
				l.Wh[j][k] -= lr * clip(dz[j]*cache.hPrev[k])
			}
		}

		embedding := l.Embedding[cache.tokenID]
		for k := range embedding {
			embedding[k] -= lr * clip(dx[k])
		}

		dh = dhPrev
		for j := 0; j < hd; j++ {
			dc[j] = dcTotal[j] * cache.f[j]
		}
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clip(g float64) float64 {
	const limit = 5.0
	if g > limit {
		return limit
	}
	if g < -limit {
		return -limit
	}
	return g
}
