package evaluation

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// RougeScorer ROUGE计算策略
type RougeScorer interface {
	Score(reference, candidate string) OverlapScore
	Mode() Mode
}

// StemmedRougeScorer 基于词干的ROUGE-1/ROUGE-2/ROUGE-L
// n元组按出现次数截断计数，ROUGE-L使用最长公共子序列
type StemmedRougeScorer struct{}

// NewStemmedRougeScorer 创建词干化ROUGE计算器
func NewStemmedRougeScorer() *StemmedRougeScorer {
	return &StemmedRougeScorer{}
}

// Mode 返回计算方式
func (s *StemmedRougeScorer) Mode() Mode { return ModeFull }

var nonAlnumRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// minStemLength 不超过该长度的词不做词干化
const minStemLength = 3

// tokenize 小写、去标点，长词做词干化
func (s *StemmedRougeScorer) tokenize(text string) []string {
	fields := strings.Fields(nonAlnumRe.ReplaceAllString(strings.ToLower(text), " "))
	for i, tok := range fields {
		if len(tok) <= minStemLength {
			continue
		}
		if stemmed, err := snowball.Stem(tok, "english", true); err == nil && stemmed != "" {
			fields[i] = stemmed
		}
	}
	return fields
}

// Score 计算三项ROUGE指标
func (s *StemmedRougeScorer) Score(reference, candidate string) OverlapScore {
	ref := s.tokenize(reference)
	cand := s.tokenize(candidate)
	if len(ref) == 0 || len(cand) == 0 {
		return OverlapScore{}
	}

	return OverlapScore{
		ROUGE1: ngramOverlap(ref, cand, 1),
		ROUGE2: ngramOverlap(ref, cand, 2),
		ROUGEL: lcsOverlap(ref, cand),
	}
}

// ngramOverlap 计算n元组重叠，重复的n元组按两侧较小的次数计
func ngramOverlap(ref, cand []string, n int) PRF {
	refCounts := countNGrams(ref, n)
	candCounts := countNGrams(cand, n)

	refTotal, candTotal, overlap := 0, 0, 0
	for _, c := range refCounts {
		refTotal += c
	}
	for g, c := range candCounts {
		candTotal += c
		overlap += min(c, refCounts[g])
	}

	return newPRF(float64(overlap), float64(candTotal), float64(refTotal))
}

func countNGrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

// lcsOverlap 基于最长公共子序列的ROUGE-L
func lcsOverlap(ref, cand []string) PRF {
	prev := make([]int, len(cand)+1)
	curr := make([]int, len(cand)+1)
	for i := 1; i <= len(ref); i++ {
		for j := 1; j <= len(cand); j++ {
			if ref[i-1] == cand[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(cand)]

	return newPRF(float64(lcs), float64(len(cand)), float64(len(ref)))
}

// ApproxRougeScorer 近似ROUGE：以小写单词集合计算ROUGE-1，
// ROUGE-2和ROUGE-L分别取ROUGE-1的0.8和0.9倍
type ApproxRougeScorer struct{}

// NewApproxRougeScorer 创建近似ROUGE计算器
func NewApproxRougeScorer() *ApproxRougeScorer {
	return &ApproxRougeScorer{}
}

// Mode 返回计算方式
func (a *ApproxRougeScorer) Mode() Mode { return ModeApprox }

const (
	approxBigramRatio = 0.8
	approxLCSRatio    = 0.9
)

// Score 计算近似ROUGE
func (a *ApproxRougeScorer) Score(reference, candidate string) OverlapScore {
	ref := wordSet(reference)
	cand := wordSet(candidate)
	if len(ref) == 0 || len(cand) == 0 {
		return OverlapScore{}
	}

	overlap := 0
	for w := range cand {
		if _, ok := ref[w]; ok {
			overlap++
		}
	}

	r1 := newPRF(float64(overlap), float64(len(cand)), float64(len(ref)))
	return OverlapScore{
		ROUGE1: r1,
		ROUGE2: r1.scale(approxBigramRatio),
		ROUGEL: r1.scale(approxLCSRatio),
	}
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// stemmerAvailable 用固定词探测词干化是否可用
func stemmerAvailable() bool {
	stemmed, err := snowball.Stem("running", "english", true)
	return err == nil && stemmed == "run"
}
