// Package vectormodel implements a TF-IDF vector space fitted on a document
// corpus. The vocabulary and inverse-document-frequency weights are fixed at
// fit time; queries are projected against those corpus weights so scores stay
// comparable across calls on the same model.
package vectormodel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/errors"
)

// Model is a fitted (or untrained) TF-IDF vectorizer. A Model is immutable
// after Fit or Restore and safe for concurrent use.
type Model struct {
	vocab map[string]int
	terms []string
	idf   []float64
}

// Fit builds the vocabulary and smoothed IDF weights from texts, which are
// expected to be normalised already; tokens are split on whitespace. An
// empty corpus, or one without a single token, yields an untrained model.
func Fit(texts []string) *Model {
	if len(texts) == 0 {
		return &Model{}
	}
	docFreq := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range strings.Fields(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}
	if len(docFreq) == 0 {
		return &Model{}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(texts))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return &Model{vocab: vocab, terms: terms, idf: idf}
}

// Restore rebuilds a model from a persisted vocabulary and IDF table.
func Restore(terms []string, idf []float64) (*Model, error) {
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("restoring model: %d terms but %d idf weights", len(terms), len(idf))
	}
	if len(terms) == 0 {
		return &Model{}, nil
	}
	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		if _, dup := vocab[term]; dup {
			return nil, fmt.Errorf("restoring model: duplicate term %q", term)
		}
		vocab[term] = i
	}
	return &Model{
		vocab: vocab,
		terms: append([]string(nil), terms...),
		idf:   append([]float64(nil), idf...),
	}, nil
}

// Trained reports whether the model has a usable vocabulary.
func (m *Model) Trained() bool {
	return m != nil && len(m.terms) > 0
}

// Dim is the vocabulary size.
func (m *Model) Dim() int {
	if m == nil {
		return 0
	}
	return len(m.terms)
}

// Terms returns a copy of the vocabulary in index order.
func (m *Model) Terms() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.terms...)
}

// IDF returns a copy of the IDF weights in index order.
func (m *Model) IDF() []float64 {
	if m == nil {
		return nil
	}
	return append([]float64(nil), m.idf...)
}

// Transform projects text into the fitted space. Out-of-vocabulary tokens are
// dropped. The result is L2-normalised unless it is the zero vector.
func (m *Model) Transform(text string) (Vector, error) {
	if !m.Trained() {
		return Vector{}, apperrors.ErrModelNotReady
	}
	counts := make(map[int]float64)
	for _, tok := range strings.Fields(text) {
		if idx, ok := m.vocab[tok]; ok {
			counts[idx]++
		}
	}
	v := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)
	for _, idx := range v.Indices {
		v.Values = append(v.Values, counts[idx]*m.idf[idx])
	}
	v.normalize()
	return v, nil
}

// TransformAll projects every text, preserving order.
func (m *Model) TransformAll(texts []string) ([]Vector, error) {
	if !m.Trained() {
		return nil, apperrors.ErrModelNotReady
	}
	out := make([]Vector, len(texts))
	for i, text := range texts {
		v, err := m.Transform(text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
