package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/fyerfyer/legal-summary/internal/cache"
	"github.com/fyerfyer/legal-summary/internal/evaluation"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/summarizer"
	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"
)

const (
	// ComparisonSentences 策略对比时每份摘要的句子数
	ComparisonSentences = 5
	// DefaultAggregateWorkers 聚合评估时并行处理案件的工作者数
	DefaultAggregateWorkers = 4
)

// ErrReferenceMissing 案件没有参考策略的分块数据
var ErrReferenceMissing = errors.New("reference strategy chunks not found")

// StrategyResult 单个策略的摘要及其相对参考摘要的得分
type StrategyResult struct {
	Summary string                  `json:"summary" yaml:"summary"`
	Method  summarizer.Method       `json:"method" yaml:"method"`
	Scores  evaluation.OverlapScore `json:"scores" yaml:"scores"`
	BLEU    float64                 `json:"bleu" yaml:"bleu"`
}

// Comparison 单个案件的策略对比结果
type Comparison struct {
	CaseID           string                             `json:"case_id" yaml:"case_id"`
	Reference        loader.Strategy                    `json:"reference" yaml:"reference"`
	ReferenceSummary string                             `json:"reference_summary" yaml:"reference_summary"`
	Strategies       map[loader.Strategy]StrategyResult `json:"strategies" yaml:"strategies"`
}

// MeanScore 某策略在多个案件上的平均得分
type MeanScore struct {
	ROUGE1    evaluation.PRF `json:"rouge1" yaml:"rouge1"`
	ROUGE2    evaluation.PRF `json:"rouge2" yaml:"rouge2"`
	ROUGEL    evaluation.PRF `json:"rougeL" yaml:"rougeL"`
	BLEU      float64        `json:"bleu" yaml:"bleu"`
	CaseCount int            `json:"case_count" yaml:"case_count"`
}

// Aggregate 跨案件的策略评估汇总
type Aggregate struct {
	Reference  loader.Strategy               `json:"reference" yaml:"reference"`
	Evaluated  []string                      `json:"evaluated" yaml:"evaluated"`
	Skipped    []string                      `json:"skipped" yaml:"skipped"`
	Strategies map[loader.Strategy]MeanScore `json:"strategies" yaml:"strategies"`
	Cases      map[string]Comparison         `json:"cases,omitempty" yaml:"cases,omitempty"`
}

// Best 返回平均ROUGE-1 F值最高的策略
// 并列时按固定策略顺序取第一个，没有任何策略时ok为false
func (a Aggregate) Best() (loader.Strategy, bool) {
	var best loader.Strategy
	bestScore := -1.0
	for _, st := range loader.Strategies {
		m, ok := a.Strategies[st]
		if !ok || m.CaseCount == 0 {
			continue
		}
		if m.ROUGE1.FMeasure > bestScore {
			best = st
			bestScore = m.ROUGE1.FMeasure
		}
	}
	return best, bestScore >= 0
}

// ChunkingStat 某策略下的分块统计
type ChunkingStat struct {
	Strategy       loader.Strategy `json:"strategy" yaml:"strategy"`
	Available      bool            `json:"available" yaml:"available"`
	ChunkCount     int             `json:"chunk_count" yaml:"chunk_count"`
	AvgChunkLength float64         `json:"avg_chunk_length" yaml:"avg_chunk_length"`
	TotalLength    int             `json:"total_length" yaml:"total_length"`
}

// ProgressFunc 批量评估进度回调
type ProgressFunc func(done, total int)

// ComparisonService 分块策略对比服务
type ComparisonService struct {
	loader     loader.CaseLoader
	summarizer *summarizer.Summarizer
	evaluator  *evaluation.Evaluator
	cache      cache.Cache
	sentences  int
	workers    int
	logger     *logrus.Logger
}

// ComparisonOption 对比服务配置选项
type ComparisonOption func(*ComparisonService)

// WithComparisonCache 缓存单个案件的对比结果
func WithComparisonCache(c cache.Cache) ComparisonOption {
	return func(s *ComparisonService) {
		s.cache = c
	}
}

// WithComparisonLogger 设置日志记录器
func WithComparisonLogger(logger *logrus.Logger) ComparisonOption {
	return func(s *ComparisonService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithComparisonSentences 设置对比摘要的句子数
func WithComparisonSentences(n int) ComparisonOption {
	return func(s *ComparisonService) {
		if n > 0 {
			s.sentences = n
		}
	}
}

// WithComparisonWorkers 设置聚合评估的并行度
func WithComparisonWorkers(n int) ComparisonOption {
	return func(s *ComparisonService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewComparisonService 创建对比服务
func NewComparisonService(l loader.CaseLoader, sum *summarizer.Summarizer, eval *evaluation.Evaluator, opts ...ComparisonOption) *ComparisonService {
	s := &ComparisonService{
		loader:     l,
		summarizer: sum,
		evaluator:  eval,
		sentences:  ComparisonSentences,
		workers:    DefaultAggregateWorkers,
		logger:     logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluator 返回使用的评估器
func (s *ComparisonService) Evaluator() *evaluation.Evaluator {
	return s.evaluator
}

// CompareStrategies 以参考策略的摘要为基准，对其余策略的摘要打分
// 缺少参考数据时返回ErrReferenceMissing，缺少的其他策略直接省略
func (s *ComparisonService) CompareStrategies(ctx context.Context, caseID string, reference loader.Strategy) (Comparison, error) {
	if _, err := loader.ParseStrategy(string(reference)); err != nil {
		return Comparison{}, err
	}

	cacheKey := cache.GenerateCacheKey("compare", string(s.evaluator.Mode()), caseID, string(reference), strconv.Itoa(s.sentences))
	if s.cache != nil {
		var cached Comparison
		if found, err := cache.GetJSON(ctx, s.cache, cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	refChunks, ok, err := s.loader.LoadChunks(caseID, reference)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to load reference chunks: %w", err)
	}
	if !ok {
		return Comparison{}, fmt.Errorf("case %s, strategy %s: %w", caseID, reference, ErrReferenceMissing)
	}

	refSummary := s.summarizer.Summarize(refChunks, s.sentences)
	comparison := Comparison{
		CaseID:           caseID,
		Reference:        reference,
		ReferenceSummary: refSummary.Text,
		Strategies:       make(map[loader.Strategy]StrategyResult),
	}

	for _, st := range loader.Strategies {
		if st == reference {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Comparison{}, err
		}

		chunks, ok, err := s.loader.LoadChunks(caseID, st)
		if err != nil {
			return Comparison{}, fmt.Errorf("failed to load %s chunks: %w", st, err)
		}
		if !ok {
			s.logger.WithFields(logrus.Fields{
				"case_id":  caseID,
				"strategy": st,
			}).Debug("Strategy chunks missing, omitted from comparison")
			continue
		}

		sum := s.summarizer.Summarize(chunks, s.sentences)
		bleu := s.evaluator.BLEU(refSummary.Text, sum.Text)
		if bleu.Err != nil {
			s.logger.WithError(bleu.Err).WithField("strategy", st).Debug("BLEU not computed")
		}

		comparison.Strategies[st] = StrategyResult{
			Summary: sum.Text,
			Method:  sum.Method,
			Scores:  s.evaluator.Evaluate(refSummary.Text, sum.Text),
			BLEU:    bleu.Score,
		}
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, cacheKey, comparison, 0); err != nil {
			s.logger.WithError(err).Warn("Failed to cache comparison")
		}
	}

	return comparison, nil
}

// Aggregate 对多个案件求各策略的平均得分
// caseIDs为空时评估全部案件；缺少参考数据的案件跳过并记入Skipped
func (s *ComparisonService) Aggregate(ctx context.Context, caseIDs []string, reference loader.Strategy) (Aggregate, error) {
	return s.AggregateWithProgress(ctx, caseIDs, reference, nil)
}

// AggregateWithProgress 与Aggregate相同，每处理完一个案件回调一次
// 回调串行执行，done单调递增
func (s *ComparisonService) AggregateWithProgress(ctx context.Context, caseIDs []string, reference loader.Strategy, progress ProgressFunc) (Aggregate, error) {
	if _, err := loader.ParseStrategy(string(reference)); err != nil {
		return Aggregate{}, err
	}
	if len(caseIDs) == 0 {
		caseIDs = s.loader.ListCaseIDs()
	}

	ids := make([]string, len(caseIDs))
	for i, id := range caseIDs {
		ids[i] = strings.TrimSpace(id)
	}

	// 案件并行比较，结果按输入顺序合并
	comparisons := make([]Comparison, len(ids))
	errs := make([]error, len(ids))
	var mu sync.Mutex
	done := 0

	wp := workerpool.New(s.workers)
	for i, caseID := range ids {
		wp.Submit(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
			} else {
				comparisons[i], errs[i] = s.CompareStrategies(ctx, caseID, reference)
			}

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(ids))
				mu.Unlock()
			}
		})
	}
	wp.StopWait()

	agg := Aggregate{
		Reference:  reference,
		Evaluated:  []string{},
		Skipped:    []string{},
		Strategies: make(map[loader.Strategy]MeanScore),
		Cases:      make(map[string]Comparison),
	}
	sums := make(map[loader.Strategy]*MeanScore)

	for i, caseID := range ids {
		switch err := errs[i]; {
		case errors.Is(err, ErrReferenceMissing):
			agg.Skipped = append(agg.Skipped, caseID)
		case err != nil:
			return Aggregate{}, fmt.Errorf("case %s: %w", caseID, err)
		default:
			agg.Evaluated = append(agg.Evaluated, caseID)
			agg.Cases[caseID] = comparisons[i]
			for st, res := range comparisons[i].Strategies {
				m, ok := sums[st]
				if !ok {
					m = &MeanScore{}
					sums[st] = m
				}
				m.add(res)
			}
		}
	}

	for st, m := range sums {
		agg.Strategies[st] = m.mean()
	}

	s.logger.WithFields(logrus.Fields{
		"reference": reference,
		"evaluated": len(agg.Evaluated),
		"skipped":   len(agg.Skipped),
	}).Info("Strategy aggregation completed")

	return agg, nil
}

func (m *MeanScore) add(r StrategyResult) {
	m.ROUGE1 = addPRF(m.ROUGE1, r.Scores.ROUGE1)
	m.ROUGE2 = addPRF(m.ROUGE2, r.Scores.ROUGE2)
	m.ROUGEL = addPRF(m.ROUGEL, r.Scores.ROUGEL)
	m.BLEU += r.BLEU
	m.CaseCount++
}

func (m *MeanScore) mean() MeanScore {
	if m.CaseCount == 0 {
		return MeanScore{}
	}
	n := float64(m.CaseCount)
	return MeanScore{
		ROUGE1:    divPRF(m.ROUGE1, n),
		ROUGE2:    divPRF(m.ROUGE2, n),
		ROUGEL:    divPRF(m.ROUGEL, n),
		BLEU:      m.BLEU / n,
		CaseCount: m.CaseCount,
	}
}

func addPRF(a, b evaluation.PRF) evaluation.PRF {
	return evaluation.PRF{
		Precision: a.Precision + b.Precision,
		Recall:    a.Recall + b.Recall,
		FMeasure:  a.FMeasure + b.FMeasure,
	}
}

func divPRF(a evaluation.PRF, n float64) evaluation.PRF {
	return evaluation.PRF{
		Precision: a.Precision / n,
		Recall:    a.Recall / n,
		FMeasure:  a.FMeasure / n,
	}
}

// ChunkingStats 统计案件在各策略下的分块情况，按固定策略顺序返回
func (s *ComparisonService) ChunkingStats(caseID string) ([]ChunkingStat, error) {
	stats := make([]ChunkingStat, 0, len(loader.Strategies))
	for _, st := range loader.Strategies {
		chunks, ok, err := s.loader.LoadChunks(caseID, st)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s chunks: %w", st, err)
		}

		stat := ChunkingStat{Strategy: st, Available: ok}
		if ok {
			for _, c := range chunks {
				stat.TotalLength += len([]rune(c))
			}
			stat.ChunkCount = len(chunks)
			if stat.ChunkCount > 0 {
				stat.AvgChunkLength = float64(stat.TotalLength) / float64(stat.ChunkCount)
			}
		}
		stats = append(stats, stat)
	}
	return stats, nil
}
