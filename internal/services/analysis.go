package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fyerfyer/legal-summary/internal/document"
	"github.com/fyerfyer/legal-summary/internal/entity"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/report"
	"github.com/fyerfyer/legal-summary/internal/summarizer"
	"github.com/fyerfyer/legal-summary/pkg/storage"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultAnalysisSentences 单案件分析的默认摘要句子数
	DefaultAnalysisSentences = 5
	// batchAnalysisSentences 批量分析时的摘要句子数
	batchAnalysisSentences = 3
	// reportSentences 综合报告中每个策略的摘要句子数
	reportSentences = 3
	// DefaultSimilarCases 相似案件默认返回数量
	DefaultSimilarCases = 5
	// topLegalTerms 批量分析中保留的高频术语数
	topLegalTerms = 10
)

// CaseAnalysis 单个案件的综合分析
type CaseAnalysis struct {
	CaseID        string               `json:"case_id"`
	Strategy      loader.Strategy      `json:"strategy"`
	Metadata      string               `json:"metadata,omitempty"`
	ChunkCount    int                  `json:"chunk_count"`
	Stats         document.TextStats   `json:"text_stats"`
	BasicInfo     entity.BasicInfo     `json:"basic_info"`
	Entities      entity.Bundle        `json:"entities"`
	LegalConcepts entity.LegalConcepts `json:"legal_concepts"`
	Summary       summarizer.Result    `json:"summary"`
	KeyPoints     []string             `json:"key_points"`
	Chunking      []ChunkingStat       `json:"chunking"`
}

// TermCount 法律术语及其出现的案件数
type TermCount struct {
	Term  string `json:"term"`
	Cases int    `json:"cases"`
}

// BatchResult 批量分析结果
type BatchResult struct {
	Strategy        loader.Strategy          `json:"strategy"`
	Cases           map[string]*CaseAnalysis `json:"cases"`
	Missing         []string                 `json:"missing"`
	TotalWords      int                      `json:"total_words"`
	AvgWordsPerCase float64                  `json:"avg_words_per_case"`
	CommonTerms     []TermCount              `json:"common_terms"`
}

// SimilarCase 相似案件
type SimilarCase struct {
	CaseID     string  `json:"case_id"`
	Similarity float64 `json:"similarity"`
}

// AnalysisService 案件分析服务
type AnalysisService struct {
	loader     *loader.Loader
	summarizer *summarizer.Summarizer
	extractor  *entity.Extractor
	comparison *ComparisonService
	storage    storage.Storage
	logger     *logrus.Logger
}

// AnalysisOption 分析服务配置选项
type AnalysisOption func(*AnalysisService)

// WithAnalysisStorage 保存生成的PDF报告
func WithAnalysisStorage(s storage.Storage) AnalysisOption {
	return func(srv *AnalysisService) {
		srv.storage = s
	}
}

// WithAnalysisLogger 设置日志记录器
func WithAnalysisLogger(logger *logrus.Logger) AnalysisOption {
	return func(srv *AnalysisService) {
		if logger != nil {
			srv.logger = logger
		}
	}
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(l *loader.Loader, sum *summarizer.Summarizer, extractor *entity.Extractor, comparison *ComparisonService, opts ...AnalysisOption) *AnalysisService {
	srv := &AnalysisService{
		loader:     l,
		summarizer: sum,
		extractor:  extractor,
		comparison: comparison,
		logger:     logrus.New(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// ListCases 按数字顺序列出案件
func (s *AnalysisService) ListCases() []string {
	return s.loader.ListCaseIDs()
}

// AnalyzeCase 对案件在指定策略下的分块做综合分析
func (s *AnalysisService) AnalyzeCase(ctx context.Context, caseID string, strategy loader.Strategy, length int) (*CaseAnalysis, error) {
	if length <= 0 {
		length = DefaultAnalysisSentences
	}

	chunks, ok, err := s.loader.LoadChunks(caseID, strategy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("case %s has no %s chunks: %w", caseID, strategy, loader.ErrCaseNotFound)
	}

	metadata, _, err := s.loader.LoadMetadata(caseID)
	if err != nil {
		return nil, err
	}

	chunking, err := s.comparison.ChunkingStats(caseID)
	if err != nil {
		return nil, err
	}

	fullText := strings.Join(chunks, " ")
	analysis := &CaseAnalysis{
		CaseID:        caseID,
		Strategy:      strategy,
		Metadata:      metadata,
		ChunkCount:    len(chunks),
		Stats:         document.Stats(fullText),
		BasicInfo:     entity.ExtractBasicInfo(fullText),
		Entities:      s.extractor.Extract(fullText),
		LegalConcepts: entity.ExtractLegalConcepts(fullText),
		Summary:       s.summarizer.Summarize(chunks, length),
		KeyPoints:     summarizer.ExtractKeyPoints(chunks),
		Chunking:      chunking,
	}

	if analysis.Summary.Err != nil {
		s.logger.WithError(analysis.Summary.Err).WithField("case_id", caseID).Warn("Summary fell back to positional selection")
	}

	return analysis, nil
}

// BatchAnalysis 批量分析多个案件，统计总词数和最常见的法律术语
// 没有该策略数据的案件记入Missing
func (s *AnalysisService) BatchAnalysis(ctx context.Context, caseIDs []string, strategy loader.Strategy) (*BatchResult, error) {
	if len(caseIDs) == 0 {
		caseIDs = s.loader.ListCaseIDs()
	}

	result := &BatchResult{
		Strategy:    strategy,
		Cases:       make(map[string]*CaseAnalysis),
		Missing:     []string{},
		CommonTerms: []TermCount{},
	}
	termCases := make(map[string]int)

	for _, caseID := range caseIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		analysis, err := s.AnalyzeCase(ctx, caseID, strategy, batchAnalysisSentences)
		if err != nil {
			if isNotFound(err) {
				result.Missing = append(result.Missing, caseID)
				continue
			}
			return nil, err
		}

		result.Cases[caseID] = analysis
		result.TotalWords += analysis.Stats.WordCount
		for _, term := range analysis.LegalConcepts.LegalTerms {
			termCases[term]++
		}
	}

	if len(result.Cases) > 0 {
		result.AvgWordsPerCase = float64(result.TotalWords) / float64(len(result.Cases))
	}
	result.CommonTerms = mostCommon(termCases, topLegalTerms)

	s.logger.WithFields(logrus.Fields{
		"analyzed": len(result.Cases),
		"missing":  len(result.Missing),
		"strategy": strategy,
	}).Info("Batch analysis completed")

	return result, nil
}

// mostCommon 按出现次数降序，次数相同按术语字母序
func mostCommon(counts map[string]int, n int) []TermCount {
	terms := make([]TermCount, 0, len(counts))
	for term, c := range counts {
		terms = append(terms, TermCount{Term: term, Cases: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Cases != terms[j].Cases {
			return terms[i].Cases > terms[j].Cases
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// SimilarCases 以语义分块全文的TF-IDF余弦相似度查找相似案件，结果不含目标案件
func (s *AnalysisService) SimilarCases(ctx context.Context, target string, topN int) ([]SimilarCase, error) {
	if topN <= 0 {
		topN = DefaultSimilarCases
	}

	var ids, texts []string
	for _, caseID := range s.loader.ListCaseIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks, ok, err := s.loader.LoadChunks(caseID, loader.Semantic)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, caseID)
			texts = append(texts, strings.Join(chunks, " "))
		}
	}

	targetIdx := -1
	for i, id := range ids {
		if id == target {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("case %s: %w", target, loader.ErrCaseNotFound)
	}

	matrix, err := summarizer.NewVectorizer(summarizer.DefaultMaxFeatures, 1, 1).FitTransform(texts)
	if err != nil {
		return []SimilarCase{}, nil
	}

	similar := make([]SimilarCase, 0, len(ids)-1)
	for i, id := range ids {
		if i == targetIdx {
			continue
		}
		similar = append(similar, SimilarCase{
			CaseID:     id,
			Similarity: summarizer.CosineSimilarity(matrix.Rows[targetIdx], matrix.Rows[i]),
		})
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})
	if len(similar) > topN {
		similar = similar[:topN]
	}
	return similar, nil
}

// Report 生成案件在所有策略下的综合报告
func (s *AnalysisService) Report(ctx context.Context, caseID string) (report.CaseReport, error) {
	if !s.loader.HasCase(caseID) {
		return report.CaseReport{}, fmt.Errorf("case %s: %w", caseID, loader.ErrCaseNotFound)
	}

	metadata, _, err := s.loader.LoadMetadata(caseID)
	if err != nil {
		return report.CaseReport{}, err
	}

	r := report.CaseReport{
		CaseID:      caseID,
		Metadata:    metadata,
		GeneratedAt: time.Now(),
		Sections:    []report.StrategySection{},
	}
	for _, st := range loader.Strategies {
		chunks, ok, err := s.loader.LoadChunks(caseID, st)
		if err != nil {
			return report.CaseReport{}, err
		}
		if !ok {
			continue
		}
		r.Sections = append(r.Sections, report.StrategySection{
			Strategy:   string(st),
			ChunkCount: len(chunks),
			WordCount:  document.Stats(strings.Join(chunks, " ")).WordCount,
			Summary:    s.summarizer.Summarize(chunks, reportSentences).Text,
		})
	}
	return r, nil
}

// PDFReport 生成摘要和要点的PDF报告
// 配置了存储时同时保存一份，返回的FileInfo.ID为空表示未保存
func (s *AnalysisService) PDFReport(ctx context.Context, caseID string, strategy loader.Strategy, length int) ([]byte, storage.FileInfo, error) {
	analysis, err := s.AnalyzeCase(ctx, caseID, strategy, length)
	if err != nil {
		return nil, storage.FileInfo{}, err
	}

	var buf bytes.Buffer
	err = report.WritePDF(&buf, report.SummaryDocument{
		CaseID:    caseID,
		Summary:   analysis.Summary.Text,
		KeyPoints: analysis.KeyPoints,
	})
	if err != nil {
		return nil, storage.FileInfo{}, err
	}

	var info storage.FileInfo
	if s.storage != nil {
		info, err = s.storage.Save(ctx, bytes.NewReader(buf.Bytes()), report.PDFFileName(caseID))
		if err != nil {
			s.logger.WithError(err).WithField("case_id", caseID).Warn("Failed to store pdf report")
			info = storage.FileInfo{}
		}
	}
	return buf.Bytes(), info, nil
}
