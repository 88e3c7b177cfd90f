package evaluation

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mode ROUGE计算方式
type Mode string

const (
	// ModeAuto 启动时探测词干化能力，可用则用完整ROUGE
	ModeAuto Mode = "auto"
	// ModeFull 完整的n元组与LCS计算
	ModeFull Mode = "full"
	// ModeApprox 单词集合近似
	ModeApprox Mode = "approx"
)

// ParseMode 解析配置中的模式字符串，空串视为auto
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeFull, ModeApprox:
		return m, nil
	default:
		return "", fmt.Errorf("unknown rouge mode: %s", s)
	}
}

// Evaluator 摘要质量评估器
// ROUGE策略在创建时确定，之后不再变化
type Evaluator struct {
	rouge  RougeScorer
	mode   Mode
	logger *logrus.Logger
}

// Option 评估器配置选项
type Option func(*Evaluator)

// WithMode 指定ROUGE计算方式
func WithMode(mode Mode) Option {
	return func(e *Evaluator) {
		if mode != "" {
			e.mode = mode
		}
	}
}

// WithRougeScorer 直接指定ROUGE计算策略，优先于WithMode
func WithRougeScorer(scorer RougeScorer) Option {
	return func(e *Evaluator) {
		e.rouge = scorer
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEvaluator 创建评估器
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		mode:   ModeAuto,
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.rouge == nil {
		e.rouge = selectRougeScorer(e.mode, e.logger)
	}

	e.logger.WithField("mode", e.rouge.Mode()).Info("Summary evaluator initialized")
	return e
}

// selectRougeScorer 按配置和探测结果选择ROUGE实现
func selectRougeScorer(mode Mode, logger *logrus.Logger) RougeScorer {
	switch mode {
	case ModeApprox:
		return NewApproxRougeScorer()
	case ModeFull:
		if stemmerAvailable() {
			return NewStemmedRougeScorer()
		}
		logger.Warn("Stemmer unavailable, falling back to approximate ROUGE")
		return NewApproxRougeScorer()
	default:
		if stemmerAvailable() {
			return NewStemmedRougeScorer()
		}
		logger.Info("Stemmer unavailable, using approximate ROUGE")
		return NewApproxRougeScorer()
	}
}

// Mode 返回实际使用的ROUGE计算方式
func (e *Evaluator) Mode() Mode {
	return e.rouge.Mode()
}

// Evaluate 计算候选摘要相对参考摘要的ROUGE得分
// 任一侧为空时返回全零
func (e *Evaluator) Evaluate(reference, candidate string) OverlapScore {
	if strings.TrimSpace(reference) == "" || strings.TrimSpace(candidate) == "" {
		return OverlapScore{}
	}
	return e.rouge.Score(reference, candidate)
}

// BLEU 计算句子BLEU，失败时得分为0并记录原因
func (e *Evaluator) BLEU(reference, candidate string) BLEUResult {
	result := SentenceBLEU(reference, candidate)
	if result.Err != nil {
		e.logger.WithError(result.Err).Debug("BLEU computation returned zero")
	}
	return result
}

// Comprehensive 汇总ROUGE与BLEU的F值
func (e *Evaluator) Comprehensive(reference, candidate string) ComprehensiveScore {
	rouge := e.Evaluate(reference, candidate)
	bleu := e.BLEU(reference, candidate)
	return ComprehensiveScore{
		ROUGE1: rouge.ROUGE1.FMeasure,
		ROUGE2: rouge.ROUGE2.FMeasure,
		ROUGEL: rouge.ROUGEL.FMeasure,
		BLEU:   bleu.Score,
	}
}
