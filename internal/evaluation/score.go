package evaluation

import "errors"

var (
	// ErrEmptyInput 参考文本或候选文本为空
	ErrEmptyInput = errors.New("reference or candidate is empty")
	// ErrBLEUUndefined 平滑后仍存在零精度，BLEU无法计算
	ErrBLEUUndefined = errors.New("bleu undefined: zero n-gram precision could not be smoothed")
)

// PRF 精确率、召回率与F值
type PRF struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	FMeasure  float64 `json:"fmeasure" yaml:"fmeasure"`
}

// newPRF 由重叠数和两侧总数计算PRF，分母为0时对应项为0
func newPRF(overlap, candidateTotal, referenceTotal float64) PRF {
	var p, r float64
	if candidateTotal > 0 {
		p = overlap / candidateTotal
	}
	if referenceTotal > 0 {
		r = overlap / referenceTotal
	}
	return PRF{Precision: p, Recall: r, FMeasure: fMeasure(p, r)}
}

func fMeasure(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// scale 按比例缩放三个指标
func (s PRF) scale(f float64) PRF {
	return PRF{Precision: s.Precision * f, Recall: s.Recall * f, FMeasure: s.FMeasure * f}
}

// OverlapScore 候选摘要相对参考摘要的ROUGE得分
type OverlapScore struct {
	ROUGE1 PRF `json:"rouge1" yaml:"rouge1"`
	ROUGE2 PRF `json:"rouge2" yaml:"rouge2"`
	ROUGEL PRF `json:"rougeL" yaml:"rougeL"`
}

// BLEUResult BLEU得分
// 计算失败时Score为0，Err记录原因；Err为nil时0分表示确实没有重叠
type BLEUResult struct {
	Score float64 `json:"score" yaml:"score"`
	Err   error   `json:"-" yaml:"-"`
}

// ComprehensiveScore 各项指标的F值汇总
type ComprehensiveScore struct {
	ROUGE1 float64 `json:"rouge1" yaml:"rouge1"`
	ROUGE2 float64 `json:"rouge2" yaml:"rouge2"`
	ROUGEL float64 `json:"rougeL" yaml:"rougeL"`
	BLEU   float64 `json:"bleu" yaml:"bleu"`
}
