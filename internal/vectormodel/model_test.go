package vectormodel

import (
	"math"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitEmptyCorpusIsUntrained(t *testing.T) {
	for _, corpus := range [][]string{nil, {}, {"", "   "}} {
		m := Fit(corpus)
		assert.False(t, m.Trained())

		_, err := m.Transform("python")
		assert.ErrorIs(t, err, apperrors.ErrModelNotReady)

		_, err = m.TransformAll([]string{"python"})
		assert.ErrorIs(t, err, apperrors.ErrModelNotReady)
	}
}

func TestFitBuildsSortedVocabularyAndSmoothedIDF(t *testing.T) {
	m := Fit([]string{"python sql", "java", "python"})
	require.True(t, m.Trained())
	assert.Equal(t, []string{"java", "python", "sql"}, m.Terms())

	idf := m.IDF()
	// n=3: java df=1, python df=2, sql df=1.
	assert.InDelta(t, math.Log(4.0/2.0)+1, idf[0], 1e-12)
	assert.InDelta(t, math.Log(4.0/3.0)+1, idf[1], 1e-12)
	assert.InDelta(t, idf[0], idf[2], 1e-12)
}

func TestTransformDropsUnknownTokensAndNormalises(t *testing.T) {
	m := Fit([]string{"python sql", "java"})

	v, err := m.Transform("python rust rust")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, v.Indices)
	assert.InDelta(t, 1.0, v.Values[0], 1e-12)

	zero, err := m.Transform("rust haskell")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestCosine(t *testing.T) {
	m := Fit([]string{"python sql", "java", "python go"})
	a, _ := m.Transform("python sql")
	b, _ := m.Transform("python sql")
	c, _ := m.Transform("java")
	z, _ := m.Transform("cobol")

	assert.InDelta(t, 1.0, Cosine(a, b), 1e-9)
	assert.Equal(t, 0.0, Cosine(a, c))
	assert.Equal(t, 0.0, Cosine(a, z))
	assert.Equal(t, 0.0, Cosine(z, z))

	d, _ := m.Transform("python go")
	sim := Cosine(a, d)
	assert.Greater(t, sim, 0.0)
	assert.Less(t, sim, 1.0)
}

func TestTransformAllPreservesOrder(t *testing.T) {
	m := Fit([]string{"python", "java"})
	vs, err := m.TransformAll([]string{"java", "python"})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, []int{0}, vs[0].Indices)
	assert.Equal(t, []int{1}, vs[1].Indices)
}

func TestRestoreRoundTrip(t *testing.T) {
	m := Fit([]string{"python sql", "java"})
	r, err := Restore(m.Terms(), m.IDF())
	require.NoError(t, err)

	a, _ := m.Transform("python java")
	b, _ := r.Transform("python java")
	assert.Equal(t, a, b)

	_, err = Restore([]string{"a"}, nil)
	assert.Error(t, err)
	_, err = Restore([]string{"a", "a"}, []float64{1, 1})
	assert.Error(t, err)
}

