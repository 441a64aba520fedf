package features

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercase and split", "Salut, Kifech NRAJOU?", []string{"salut", "kifech", "nrajou"}},
		{"accents folded", "réaction à l'école", []string{"reaction", "ecole"}},
		{"digits kept", "el prix 300dt", []string{"el", "prix", "300dt"}},
		{"single runes dropped", "a b salut", []string{"salut"}},
		{"empty", "", nil},
		{"punctuation only", "?! ... --", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestBigrams(t *testing.T) {
	assert.Equal(t, []string{"el prix", "prix yebda"}, Bigrams([]string{"el", "prix", "yebda"}))
	assert.Nil(t, Bigrams([]string{"salut"}))
	assert.Nil(t, Bigrams(nil))
}

func TestLabelEncoderSortedClasses(t *testing.T) {
	e := NewLabelEncoder()
	e.Fit([]string{"not_interested", "interested", "follow_up", "interested"})

	assert.Equal(t, []string{"follow_up", "interested", "not_interested"}, e.Classes)
	assert.Equal(t, 3, e.NumClasses())

	ids, err := e.Transform([]string{"interested", "follow_up", "not_interested"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, ids)

	label, err := e.Inverse(2)
	require.NoError(t, err)
	assert.Equal(t, "not_interested", label)
}

func TestLabelEncoderErrors(t *testing.T) {
	e := NewLabelEncoder()
	e.Fit([]string{"interested"})

	_, err := e.Transform([]string{"unseen"})
	assert.Error(t, err)

	_, err = e.Inverse(5)
	assert.Error(t, err)
	_, err = e.Inverse(-1)
	assert.Error(t, err)
}

func TestLabelEncoderRoundTripJSON(t *testing.T) {
	e := NewLabelEncoder()
	e.Fit([]string{"b_label", "a_label"})

	data, err := json.Marshal(e)
	require.NoError(t, err)

	restored := NewLabelEncoder()
	require.NoError(t, json.Unmarshal(data, restored))

	ids, err := restored.Transform([]string{"b_label"})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)
}

func TestVectorizerFitTransform(t *testing.T) {
	docs := []string{
		"salut kifech najem n3awnek",
		"chhal el prix el prix",
		"non merci",
	}

	v := NewVectorizer()
	vectors, err := v.FitTransform(docs)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// Every non-zero row has unit L2 norm.
	for _, row := range vectors {
		var sum float64
		for _, x := range row {
			sum += x * x
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}

	// Bigrams are part of the vocabulary.
	_, ok := v.Vocabulary["el prix"]
	assert.True(t, ok)

	// A term appearing in one doc out of three gets a higher IDF than one
	// appearing everywhere would.
	idx := v.Vocabulary["salut"]
	assert.Greater(t, v.IDF[idx], 1.0)
}

func TestVectorizerMaxFeatures(t *testing.T) {
	v := &Vectorizer{MaxFeatures: 2}
	require.NoError(t, v.Fit([]string{
		"alpha alpha alpha beta beta gamma",
	}))

	assert.Equal(t, 2, v.NumFeatures())
	_, hasAlpha := v.Vocabulary["alpha"]
	assert.True(t, hasAlpha, "most frequent term must survive the cap")
	_, hasGamma := v.Vocabulary["gamma"]
	assert.False(t, hasGamma)
}

func TestVectorizerUnknownTerms(t *testing.T) {
	v := NewVectorizer()
	require.NoError(t, v.Fit([]string{"salut kifech"}))

	vectors, err := v.Transform([]string{"completely unseen words"})
	require.NoError(t, err)
	for _, x := range vectors[0] {
		assert.Zero(t, x)
	}
}

func TestVectorizerErrors(t *testing.T) {
	v := NewVectorizer()
	assert.Error(t, v.Fit(nil))

	_, err := v.Transform([]string{"salut"})
	assert.Error(t, err, "transform before fit must fail")
}

func TestVectorizerRoundTripJSON(t *testing.T) {
	v := NewVectorizer()
	_, err := v.FitTransform([]string{"salut kifech", "chhal el prix"})
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)

	restored := &Vectorizer{}
	require.NoError(t, json.Unmarshal(data, restored))

	a, err := v.Transform([]string{"salut el prix"})
	require.NoError(t, err)
	b, err := restored.Transform([]string{"salut el prix"})
	require.NoError(t, err)

	require.Len(t, b, 1)
	for i := range a[0] {
		if math.Abs(a[0][i]-b[0][i]) > 1e-12 {
			t.Fatalf("restored vectorizer diverges at feature %d", i)
		}
	}
}
