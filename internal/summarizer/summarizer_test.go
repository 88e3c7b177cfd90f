package summarizer

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var judgmentChunks = []string{
	"The court held that the appeal is dismissed.",
	"The petitioner argued jurisdiction.",
	"This case involves constitutional law.",
	"The bench observed due process violations.",
	"Final order: appeal dismissed with costs.",
}

// failingScorer 总是返回错误的打分器
type failingScorer struct{}

func (failingScorer) Score([]string) ([]float64, error) {
	return nil, ErrEmptyVocabulary
}

// fixedScorer 返回预设得分的打分器
type fixedScorer struct{ scores []float64 }

func (f fixedScorer) Score(sentences []string) ([]float64, error) {
	return f.scores[:len(sentences)], nil
}

func indexOf(t *testing.T, sentence string) int {
	for i, c := range judgmentChunks {
		if c == sentence {
			return i
		}
	}
	t.Fatalf("sentence %q not found in source", sentence)
	return -1
}

func TestSummarizeSelectsInOriginalOrder(t *testing.T) {
	s := New()
	result := s.Summarize(judgmentChunks, 2)

	assert.Equal(t, MethodTFIDF, result.Method)
	assert.NoError(t, result.Err)
	require.Len(t, result.Sentences, 2)

	first, second := indexOf(t, result.Sentences[0]), indexOf(t, result.Sentences[1])
	assert.Less(t, first, second, "摘要句子应保持原文顺序")
	assert.Equal(t, strings.Join(result.Sentences, " "), result.Text)
}

func TestSummarizeOrderIndependentOfRank(t *testing.T) {
	// 得分最高的是最后一句，但输出仍按原文顺序
	s := New(WithScorer(fixedScorer{scores: []float64{0.1, 0.5, 0.2, 0.3, 0.9}}))
	result := s.Summarize(judgmentChunks, 2)

	assert.Equal(t, []string{judgmentChunks[1], judgmentChunks[4]}, result.Sentences)
}

func TestSummarizeTiesAreStable(t *testing.T) {
	s := New(WithScorer(fixedScorer{scores: []float64{1, 1, 1, 1, 1}}))
	result := s.Summarize(judgmentChunks, 3)

	assert.Equal(t, judgmentChunks[:3], result.Sentences)
}

func TestSummarizeShortCircuit(t *testing.T) {
	s := New(WithScorer(failingScorer{}))

	chunks := []string{"First sentence here.", "Second   sentence here."}
	result := s.Summarize(chunks, 5)

	assert.Equal(t, MethodFullText, result.Method)
	assert.Equal(t, "First sentence here. Second   sentence here.", result.Text, "短文本应原样返回")
	assert.Len(t, result.Sentences, 2)

	result = s.Summarize(judgmentChunks, 5)
	assert.Equal(t, MethodFullText, result.Method)
	assert.Equal(t, strings.Join(judgmentChunks, " "), result.Text)
}

func TestSummarizeEmpty(t *testing.T) {
	s := New()

	for _, chunks := range [][]string{nil, {}, {"   "}} {
		result := s.Summarize(chunks, 3)
		assert.Equal(t, MethodEmpty, result.Method)
		assert.Equal(t, NoContentText, result.Text)
		assert.NotNil(t, result.Sentences)
	}
}

func TestSummarizePositionalFallback(t *testing.T) {
	s := New(WithScorer(failingScorer{}))
	result := s.Summarize(judgmentChunks, 2)

	assert.Equal(t, MethodPositional, result.Method)
	assert.True(t, errors.Is(result.Err, ErrEmptyVocabulary))
	assert.Equal(t, judgmentChunks[:2], result.Sentences)
}

// shortScorer 得分个数少于句子数
type shortScorer struct{}

func (shortScorer) Score(sentences []string) ([]float64, error) {
	return make([]float64, len(sentences)-1), nil
}

func TestSummarizeScoreCountMismatch(t *testing.T) {
	s := New(WithScorer(shortScorer{}))
	result := s.Summarize(judgmentChunks, 2)

	assert.Equal(t, MethodPositional, result.Method)
	assert.ErrorIs(t, result.Err, ErrScoreCount)
	assert.Equal(t, judgmentChunks[:2], result.Sentences)
}

func TestSummarizeStopwordOnlyCorpus(t *testing.T) {
	// 全是停用词，词表为空，退化为取前N句
	chunks := []string{"It is.", "We are.", "They were.", "It was."}
	result := New().Summarize(chunks, 2)

	assert.Equal(t, MethodPositional, result.Method)
	assert.ErrorIs(t, result.Err, ErrEmptyVocabulary)
	assert.Equal(t, "It is. We are.", result.Text)
}

func TestSummarizeLengthBound(t *testing.T) {
	var chunks []string
	for i := 0; i < 12; i++ {
		chunks = append(chunks, fmt.Sprintf("Paragraph %d discusses limitation period number %d in detail.", i, i*7))
	}
	s := New()
	for k := 1; k <= 14; k++ {
		result := s.Summarize(chunks, k)
		if k < 12 {
			assert.Len(t, result.Sentences, k)
		} else {
			assert.Len(t, result.Sentences, 12)
			assert.Equal(t, MethodFullText, result.Method)
		}
	}
}

func TestExtractKeyPoints(t *testing.T) {
	chunks := []string{
		"The court held that the appeal is dismissed. Short held that.",
		"It is clear that the High Court misdirected itself on the question of limitation, and we find that the delay stood explained.",
		"The facts of the case are simple and were not disputed by either of the parties before us.",
	}

	points := ExtractKeyPoints(chunks)
	require.Len(t, points, 1, "短于50个字符的句子应被忽略，多个提示词只记录一次")
	assert.True(t, strings.HasPrefix(points[0], "It is clear that"))

	assert.Empty(t, ExtractKeyPoints(nil))
	assert.NotNil(t, ExtractKeyPoints(nil))
}

func TestExtractKeyPointsCountsCharacters(t *testing.T) {
	// 恰好50个字符，UTF-8编码57字节
	short := "Le juge held that la décision était légère, é é é."
	require.Equal(t, 50, utf8.RuneCountInString(short))
	require.Greater(t, len(short), 50)

	long := "The Bench held that the accused was entitled to the benefit of doubt in full."
	points := ExtractKeyPoints([]string{short + " " + long})
	assert.Equal(t, []string{long}, points)
}

func TestExtractKeyPointsLimit(t *testing.T) {
	var chunks []string
	for i := 0; i < 15; i++ {
		chunks = append(chunks, fmt.Sprintf("In matter number %d the bench held that the impugned order deserves to be set aside.", i))
	}

	points := ExtractKeyPoints(chunks)
	require.Len(t, points, MaxKeyPoints)
	assert.Contains(t, points[0], "number 0 ")
	assert.Contains(t, points[9], "number 9 ")
}

func TestStructured(t *testing.T) {
	s := New()
	text := strings.Join([]string{
		"The appellant was tried for an offence under Section 302.",
		"The trial court convicted the appellant.",
		"The High Court affirmed the conviction.",
		"Counsel for the appellant argued that the evidence was circumstantial.",
		"The State opposed the appeal on every ground.",
		"The chain of circumstances was examined afresh.",
		"We find that the chain is incomplete.",
		"The conviction is set aside.",
		"The appeal is allowed.",
	}, " ")

	summary := s.Structured(text)
	assert.NotEmpty(t, summary.Overview)
	assert.NotEmpty(t, summary.Decision)
	// 概述来自前三句，裁决来自后三句
	assert.Equal(t, "The appellant was tried for an offence under Section 302. The trial court convicted the appellant. The High Court affirmed the conviction.", summary.Overview)
	assert.NotContains(t, summary.Decision, "Section 302")
}

func TestStructuredShortText(t *testing.T) {
	summary := New().Structured("The appeal is dismissed. No costs.")
	assert.Empty(t, summary.Overview)
	assert.Equal(t, "The appeal is dismissed. No costs.", summary.Decision)

	summary = New().Structured("")
	assert.Empty(t, summary.Overview)
	assert.Empty(t, summary.Decision)
}
