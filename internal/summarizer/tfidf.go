package summarizer

import (
	"errors"
	"math"
	"sort"

	"github.com/fyerfyer/legal-summary/internal/document"
)

// ErrEmptyVocabulary 语料中没有任何可用词项（全是停用词或过短的词）
var ErrEmptyVocabulary = errors.New("empty vocabulary; perhaps the documents only contain stop words")

// Vectorizer TF-IDF向量化器
// 每次调用FitTransform都会基于传入语料重新建立词表，不在语料之间共享
type Vectorizer struct {
	MaxFeatures int // 词表上限，0表示不限制
	MinN        int // n元组下界
	MaxN        int // n元组上界
}

// NewVectorizer 创建向量化器
func NewVectorizer(maxFeatures, minN, maxN int) *Vectorizer {
	if minN <= 0 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	return &Vectorizer{MaxFeatures: maxFeatures, MinN: minN, MaxN: maxN}
}

// Matrix 稀疏TF-IDF矩阵，每行对应一个文档，已做L2归一化
type Matrix struct {
	Vocabulary []string
	Rows       []map[int]float64
}

// RowSum 返回第i行所有权重之和
func (m *Matrix) RowSum(i int) float64 {
	sum := 0.0
	for _, w := range m.Rows[i] {
		sum += w
	}
	return sum
}

// analyze 小写分词、去停用词后生成n元组
func (v *Vectorizer) analyze(doc string) []string {
	tokens := document.FilterStopWords(document.AnalyzerTokens(doc))
	var terms []string
	for n := v.MinN; n <= v.MaxN; n++ {
		terms = append(terms, document.NGrams(tokens, n)...)
	}
	return terms
}

// FitTransform 建立词表并返回语料的TF-IDF矩阵
func (v *Vectorizer) FitTransform(docs []string) (*Matrix, error) {
	counts := make([]map[string]int, len(docs))
	corpusTF := make(map[string]int)
	df := make(map[string]int)

	for i, doc := range docs {
		c := make(map[string]int)
		for _, term := range v.analyze(doc) {
			c[term]++
		}
		for term, n := range c {
			corpusTF[term] += n
			df[term]++
		}
		counts[i] = c
	}

	if len(corpusTF) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocab := make([]string, 0, len(corpusTF))
	for term := range corpusTF {
		vocab = append(vocab, term)
	}
	// 按语料词频降序截断，词频相同按字母序
	sort.Slice(vocab, func(i, j int) bool {
		if corpusTF[vocab[i]] != corpusTF[vocab[j]] {
			return corpusTF[vocab[i]] > corpusTF[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if v.MaxFeatures > 0 && len(vocab) > v.MaxFeatures {
		vocab = vocab[:v.MaxFeatures]
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([]map[int]float64, len(docs))
	for i, c := range counts {
		row := make(map[int]float64)
		norm := 0.0
		for term, tf := range c {
			j, ok := index[term]
			if !ok {
				continue
			}
			w := float64(tf) * idf[j]
			row[j] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		rows[i] = row
	}

	return &Matrix{Vocabulary: vocab, Rows: rows}, nil
}

// CosineSimilarity 计算两个稀疏向量的余弦相似度
func CosineSimilarity(a, b map[int]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	dot := 0.0
	for j, w := range a {
		dot += w * b[j]
	}
	na, nb := 0.0, 0.0
	for _, w := range a {
		na += w * w
	}
	for _, w := range b {
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
