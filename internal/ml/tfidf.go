package ml

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Two or more word characters, matching the usual TF-IDF token pattern.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]{2,}`)

// TfidfVectorizer maps text to L2-normalised TF-IDF weights over word n-grams.
// IDF is smoothed: idf(t) = ln((1+n)/(1+df(t))) + 1.
type TfidfVectorizer struct {
	NgramMin    int `json:"ngram_min"`
	NgramMax    int `json:"ngram_max"`
	MaxFeatures int `json:"max_features"`

	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// NewTfidfVectorizer returns an unfitted vectorizer. maxFeatures <= 0 keeps
// the whole vocabulary.
func NewTfidfVectorizer(ngramMin, ngramMax, maxFeatures int) *TfidfVectorizer {
	if ngramMin <= 0 {
		ngramMin = 1
	}
	if ngramMax < ngramMin {
		ngramMax = ngramMin
	}
	return &TfidfVectorizer{
		NgramMin:    ngramMin,
		NgramMax:    ngramMax,
		MaxFeatures: maxFeatures,
	}
}

// Fit learns the vocabulary and IDF weights from documents.
func (v *TfidfVectorizer) Fit(documents []string) error {
	if len(documents) == 0 {
		return errors.New("no documents to fit")
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range documents {
		for term, count := range v.countTerms(doc) {
			docFreq[term]++
			termFreq[term] += count
		}
	}
	if len(docFreq) == 0 {
		return errors.New("empty vocabulary; documents contain no tokens")
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		// most frequent terms across the corpus; ties keep alphabetical order
		sort.SliceStable(terms, func(i, j int) bool {
			return termFreq[terms[i]] > termFreq[terms[j]]
		})
		terms = terms[:v.MaxFeatures]
		sort.Strings(terms)
	}

	n := float64(len(documents))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

// Transform vectorizes one document. Terms outside the vocabulary are ignored.
func (v *TfidfVectorizer) Transform(document string) (SparseVector, error) {
	if len(v.Vocabulary) == 0 || len(v.IDF) != len(v.Vocabulary) {
		return SparseVector{}, errors.New("vectorizer is not fitted")
	}

	weights := make(map[int]float64)
	for term, count := range v.countTerms(document) {
		idx, ok := v.Vocabulary[term]
		if !ok {
			continue
		}
		weights[idx] = float64(count) * v.IDF[idx]
	}

	vec := newSparseVector(len(v.IDF), weights)
	if norm := vec.l2Norm(); norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec, nil
}

// TransformAll vectorizes a batch of documents.
func (v *TfidfVectorizer) TransformAll(documents []string) ([]SparseVector, error) {
	out := make([]SparseVector, len(documents))
	for i, doc := range documents {
		vec, err := v.Transform(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", i)
		}
		out[i] = vec
	}
	return out, nil
}

// FitTransform is Fit followed by TransformAll.
func (v *TfidfVectorizer) FitTransform(documents []string) ([]SparseVector, error) {
	if err := v.Fit(documents); err != nil {
		return nil, err
	}
	return v.TransformAll(documents)
}

// Dim is the length of produced vectors.
func (v *TfidfVectorizer) Dim() int {
	return len(v.IDF)
}

// Tokenize splits lowercased text into word tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func (v *TfidfVectorizer) countTerms(document string) map[string]int {
	tokens := Tokenize(document)
	counts := make(map[string]int)
	for n := v.NgramMin; n <= v.NgramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			counts[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return counts
}
