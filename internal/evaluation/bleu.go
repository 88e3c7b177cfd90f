package evaluation

import (
	"math"

	"github.com/fyerfyer/legal-summary/internal/document"
)

const (
	bleuMaxOrder = 4
	// smoothingK 平滑方法4中的常数k
	smoothingK = 5.0
)

// SentenceBLEU 计算单参考句子BLEU（4元组、均匀权重、长度惩罚）
// 零精度使用"method4"平滑：p_n = 1 / (2^i * k / ln(len(hyp))) / 分母
func SentenceBLEU(reference, candidate string) BLEUResult {
	ref := document.TreebankTokens(reference)
	hyp := document.TreebankTokens(candidate)
	if len(ref) == 0 || len(hyp) == 0 {
		return BLEUResult{Err: ErrEmptyInput}
	}

	numerators := make([]float64, bleuMaxOrder)
	denominators := make([]float64, bleuMaxOrder)
	for n := 1; n <= bleuMaxOrder; n++ {
		num, den := modifiedPrecision(ref, hyp, n)
		numerators[n-1] = num
		denominators[n-1] = den
	}

	// 没有任何一元组重叠时BLEU为0
	if numerators[0] == 0 {
		return BLEUResult{}
	}

	hypLen := float64(len(hyp))
	precisions := make([]float64, bleuMaxOrder)
	incvnt := 1
	for i := range precisions {
		if numerators[i] == 0 && len(hyp) > 1 {
			smoothed := 1 / (math.Pow(2, float64(incvnt)) * smoothingK / math.Log(hypLen))
			precisions[i] = smoothed / denominators[i]
			incvnt++
			continue
		}
		precisions[i] = numerators[i] / denominators[i]
	}

	logSum := 0.0
	weight := 1.0 / bleuMaxOrder
	for _, p := range precisions {
		if p <= 0 {
			return BLEUResult{Err: ErrBLEUUndefined}
		}
		logSum += weight * math.Log(p)
	}

	score := brevityPenalty(len(ref), len(hyp)) * math.Exp(logSum)
	return BLEUResult{Score: score}
}

// modifiedPrecision 返回截断后的n元组命中数和候选n元组总数（至少为1）
func modifiedPrecision(ref, hyp []string, n int) (float64, float64) {
	hypCounts := countNGrams(hyp, n)
	refCounts := countNGrams(ref, n)

	clipped, total := 0, 0
	for g, c := range hypCounts {
		total += c
		clipped += min(c, refCounts[g])
	}
	return float64(clipped), float64(max(1, total))
}

// brevityPenalty 候选短于参考时的惩罚因子
func brevityPenalty(refLen, hypLen int) float64 {
	if hypLen > refLen {
		return 1
	}
	if hypLen == 0 {
		return 0
	}
	return math.Exp(1 - float64(refLen)/float64(hypLen))
}
