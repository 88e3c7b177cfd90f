package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorizerFitTransform(t *testing.T) {
	v := NewVectorizer(0, 1, 2)
	m, err := v.FitTransform([]string{"The court and the appeal", "court"})
	require.NoError(t, err)

	// 停用词先去除再组成二元词组
	assert.Equal(t, []string{"appeal", "court", "court appeal"}, m.Vocabulary)

	assert.InDelta(t, 1.7127708, m.RowSum(0), 1e-6)
	assert.InDelta(t, 1.0, m.RowSum(1), 1e-9)
	assert.InDelta(t, 0.4494364, m.Rows[0][1], 1e-6)
	assert.InDelta(t, 0.6316672, m.Rows[0][0], 1e-6)
}

func TestVectorizerMaxFeatures(t *testing.T) {
	v := NewVectorizer(2, 1, 1)
	m, err := v.FitTransform([]string{"appeal appeal bail", "appeal writ", "zeal"})
	require.NoError(t, err)

	// appeal出现3次；其余各1次，按字母序取bail
	assert.Equal(t, []string{"appeal", "bail"}, m.Vocabulary)
	assert.Empty(t, m.Rows[2])
}

func TestVectorizerEmptyVocabulary(t *testing.T) {
	v := NewVectorizer(1000, 1, 2)
	_, err := v.FitTransform([]string{"it is", "a b c", ""})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestTFIDFScorer(t *testing.T) {
	scorer := NewTFIDFScorer(DefaultMaxFeatures)
	scores, err := scorer.Score([]string{"Appeal dismissed.", "Appeal dismissed with costs.", "It is."})
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Greater(t, scores[1], scores[0])
	assert.Zero(t, scores[2])

	_, err = scorer.Score(nil)
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestCosineSimilarity(t *testing.T) {
	a := map[int]float64{0: 1, 1: 1}
	assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity(a, map[int]float64{2: 1}), 1e-9)
	assert.InDelta(t, 0.7071068, CosineSimilarity(a, map[int]float64{0: 3}), 1e-6)
	assert.Zero(t, CosineSimilarity(nil, a))
}
