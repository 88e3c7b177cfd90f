package summarizer

import "fmt"

// DefaultMaxFeatures 句子打分时的默认词表上限
const DefaultMaxFeatures = 1000

// Scorer 句子显著性打分接口
// 返回值与输入一一对应，顺序相同
type Scorer interface {
	Score(sentences []string) ([]float64, error)
}

// TFIDFScorer 以句子为文档计算TF-IDF，句子得分为所在行的权重之和
type TFIDFScorer struct {
	vectorizer *Vectorizer
}

// NewTFIDFScorer 创建TF-IDF打分器，使用一元和二元词组
func NewTFIDFScorer(maxFeatures int) *TFIDFScorer {
	return &TFIDFScorer{vectorizer: NewVectorizer(maxFeatures, 1, 2)}
}

// Score 为每个句子计算显著性得分
func (s *TFIDFScorer) Score(sentences []string) ([]float64, error) {
	if len(sentences) == 0 {
		return nil, ErrEmptyVocabulary
	}

	matrix, err := s.vectorizer.FitTransform(sentences)
	if err != nil {
		return nil, fmt.Errorf("failed to vectorize sentences: %w", err)
	}

	scores := make([]float64, len(sentences))
	for i := range sentences {
		scores[i] = matrix.RowSum(i)
	}
	return scores, nil
}
