package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	require.Equal(t, []string{"verify", "your", "account", "url"}, Tokenize("Verify your account: url!"))
	// single characters are not tokens
	require.Equal(t, []string{"ok"}, Tokenize("a b ok c"))
}

func TestTfidfVectorizerFit(t *testing.T) {
	req := require.New(t)
	docs := []string{
		"verify your account",
		"your invoice is attached",
		"verify now",
	}

	v := NewTfidfVectorizer(1, 2, 0)
	req.NoError(v.Fit(docs))

	// unigrams and bigrams, indexed alphabetically
	req.Contains(v.Vocabulary, "verify")
	req.Contains(v.Vocabulary, "verify your")
	req.Contains(v.Vocabulary, "invoice is")
	req.Equal(0, v.Vocabulary["account"])
	req.Equal(len(v.Vocabulary), v.Dim())

	n := float64(len(docs))
	// "verify" appears in 2 of 3 documents
	req.InDelta(math.Log((1+n)/(1+2))+1, v.IDF[v.Vocabulary["verify"]], 1e-12)
	// "invoice" appears once
	req.InDelta(math.Log((1+n)/(1+1))+1, v.IDF[v.Vocabulary["invoice"]], 1e-12)
}

func TestTfidfVectorizerMaxFeatures(t *testing.T) {
	req := require.New(t)
	docs := []string{
		"alpha alpha alpha beta",
		"alpha beta gamma",
		"delta",
	}

	v := NewTfidfVectorizer(1, 1, 2)
	req.NoError(v.Fit(docs))

	// alpha (4) and beta (2) are the most frequent terms
	req.Len(v.Vocabulary, 2)
	req.Equal(0, v.Vocabulary["alpha"])
	req.Equal(1, v.Vocabulary["beta"])
}

func TestTfidfVectorizerTransform(t *testing.T) {
	req := require.New(t)
	v := NewTfidfVectorizer(1, 2, 5000)
	req.NoError(v.Fit([]string{"urgent verify account", "meeting notes attached", "verify password url"}))

	vec, err := v.Transform("urgent verify unknownword")
	req.NoError(err)
	req.Equal(v.Dim(), vec.Dim)
	req.NotZero(vec.NNZ())
	req.InDelta(1.0, vec.l2Norm(), 1e-9)
	req.Zero(vec.At(v.Vocabulary["meeting"]))
	req.Positive(vec.At(v.Vocabulary["urgent verify"]))

	for i := 1; i < len(vec.Indices); i++ {
		req.Less(vec.Indices[i-1], vec.Indices[i])
	}

	empty, err := v.Transform("")
	req.NoError(err)
	req.Zero(empty.NNZ())
	req.Equal(v.Dim(), empty.Dim)
}

func TestTfidfVectorizerErrors(t *testing.T) {
	req := require.New(t)

	v := NewTfidfVectorizer(1, 2, 10)
	_, err := v.Transform("anything")
	req.Error(err)

	req.Error(v.Fit(nil))
	req.Error(v.Fit([]string{"a", "!", ""}))
}

func TestSparseVector(t *testing.T) {
	req := require.New(t)
	vec := newSparseVector(5, map[int]float64{3: 0.5, 1: 2, 4: 0})

	req.Equal([]int{1, 3}, vec.Indices)
	req.Equal(2.0, vec.At(1))
	req.Equal(0.0, vec.At(0))
	req.Equal(0.0, vec.At(4))
	req.Equal([]float64{0, 2, 0, 0.5, 0}, vec.Dense())
}
