package summarizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fyerfyer/legal-summary/internal/document"
	"github.com/sirupsen/logrus"
)

// NoContentText 没有输入内容时返回的摘要文本
const NoContentText = "No content available for summarization"

// ErrScoreCount 打分器返回的得分个数与句子数不一致
var ErrScoreCount = errors.New("scorer returned wrong number of scores")

// Method 摘要的生成方式
type Method string

const (
	// MethodEmpty 输入为空
	MethodEmpty Method = "empty"
	// MethodFullText 句子数不超过目标数量，直接返回全文
	MethodFullText Method = "full_text"
	// MethodTFIDF 按TF-IDF得分选择句子
	MethodTFIDF Method = "tfidf"
	// MethodPositional 打分失败，退化为取前N句
	MethodPositional Method = "positional"
)

// Result 摘要结果
type Result struct {
	Text      string   `json:"text"`
	Sentences []string `json:"sentences"`
	Method    Method   `json:"method"`
	// Err 仅在退化为MethodPositional时非空，记录打分失败的原因
	Err error `json:"-"`
}

// Summarizer 抽取式摘要器
type Summarizer struct {
	scorer Scorer
	logger *logrus.Logger
}

// Option 摘要器配置选项
type Option func(*Summarizer)

// WithScorer 设置句子打分器
func WithScorer(scorer Scorer) Option {
	return func(s *Summarizer) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New 创建摘要器，默认使用TF-IDF打分
func New(opts ...Option) *Summarizer {
	s := &Summarizer{
		scorer: NewTFIDFScorer(DefaultMaxFeatures),
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize 从分块文本中选出k个最重要的句子，按原文顺序拼接
func (s *Summarizer) Summarize(chunks []string, k int) Result {
	if len(chunks) == 0 {
		return Result{Text: NoContentText, Sentences: []string{}, Method: MethodEmpty}
	}

	fullText := strings.Join(chunks, " ")
	sentences := document.SplitSentences(fullText)
	if len(sentences) == 0 {
		return Result{Text: NoContentText, Sentences: []string{}, Method: MethodEmpty}
	}

	if k <= 0 {
		k = 1
	}
	if len(sentences) <= k {
		return Result{Text: fullText, Sentences: sentences, Method: MethodFullText}
	}

	return s.selectSentences(sentences, k)
}

// selectSentences 对句子打分并选出前k句，打分失败时取前k句
func (s *Summarizer) selectSentences(sentences []string, k int) Result {
	scores, err := s.scorer.Score(sentences)
	if err == nil && len(scores) != len(sentences) {
		err = fmt.Errorf("%w: got %d for %d sentences", ErrScoreCount, len(scores), len(sentences))
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"sentences": len(sentences),
			"k":         k,
		}).WithError(err).Debug("Sentence scoring failed, falling back to leading sentences")

		picked := append([]string(nil), sentences[:k]...)
		return Result{
			Text:      strings.Join(picked, " "),
			Sentences: picked,
			Method:    MethodPositional,
			Err:       err,
		}
	}

	indices := make([]int, len(sentences))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	top := indices[:k]
	sort.Ints(top)

	picked := make([]string, 0, k)
	for _, i := range top {
		picked = append(picked, sentences[i])
	}

	return Result{
		Text:      strings.Join(picked, " "),
		Sentences: picked,
		Method:    MethodTFIDF,
	}
}
