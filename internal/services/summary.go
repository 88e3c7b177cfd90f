package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fyerfyer/legal-summary/internal/cache"
	"github.com/fyerfyer/legal-summary/internal/document"
	"github.com/fyerfyer/legal-summary/internal/entity"
	"github.com/fyerfyer/legal-summary/internal/models"
	"github.com/fyerfyer/legal-summary/internal/repository"
	"github.com/fyerfyer/legal-summary/internal/summarizer"
	"github.com/fyerfyer/legal-summary/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var (
	// ErrEmptyText 没有提供需要摘要的文本
	ErrEmptyText = errors.New("no case text provided")
	// ErrFileTooLarge 上传文件超过大小限制
	ErrFileTooLarge = errors.New("uploaded file too large")
)

// MaxUploadSize 上传文件的最大字节数
const MaxUploadSize = 20 << 20

// TextSummary 文本摘要结果
type TextSummary struct {
	Summary  summarizer.StructuredSummary `json:"summary"`
	Entities entity.Bundle                `json:"entities"`
}

// UploadSummary 上传判决书的摘要结果
type UploadSummary struct {
	ID        string                       `json:"id,omitempty"`
	CaseName  string                       `json:"case_name"`
	Judges    []string                     `json:"judges"`
	Citations []string                     `json:"citations"`
	Acts      []string                     `json:"acts"`
	Sections  []string                     `json:"sections"`
	Summary   summarizer.StructuredSummary `json:"summary"`
	Timestamp time.Time                    `json:"timestamp"`
}

// SummaryService 判决书摘要服务
// 存储、仓储和缓存都是可选的，未配置时对应步骤跳过
type SummaryService struct {
	summarizer *summarizer.Summarizer
	extractor  *entity.Extractor
	storage    storage.Storage
	repo       repository.SummaryRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

// SummaryOption 摘要服务配置选项
type SummaryOption func(*SummaryService)

// WithSummaryStorage 保存上传原文和摘要文件
func WithSummaryStorage(s storage.Storage) SummaryOption {
	return func(srv *SummaryService) {
		srv.storage = s
	}
}

// WithSummaryRepository 持久化摘要记录
func WithSummaryRepository(repo repository.SummaryRepository) SummaryOption {
	return func(srv *SummaryService) {
		srv.repo = repo
	}
}

// WithSummaryCache 按文本内容缓存摘要结果
func WithSummaryCache(c cache.Cache, ttl time.Duration) SummaryOption {
	return func(srv *SummaryService) {
		srv.cache = c
		srv.cacheTTL = ttl
	}
}

// WithSummaryLogger 设置日志记录器
func WithSummaryLogger(logger *logrus.Logger) SummaryOption {
	return func(srv *SummaryService) {
		if logger != nil {
			srv.logger = logger
		}
	}
}

// NewSummaryService 创建摘要服务
func NewSummaryService(sum *summarizer.Summarizer, extractor *entity.Extractor, opts ...SummaryOption) *SummaryService {
	srv := &SummaryService{
		summarizer: sum,
		extractor:  extractor,
		logger:     logrus.New(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// SummarizeText 对一段判决书文本生成分段摘要并抽取实体
func (s *SummaryService) SummarizeText(ctx context.Context, text string) (*TextSummary, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	key := cache.HashKey("summary", text)
	if s.cache != nil {
		var cached TextSummary
		if found, err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil && found {
			s.logger.WithField("key", key).Debug("Summary cache hit")
			return &cached, nil
		}
	}

	result := &TextSummary{
		Summary:  s.summarizer.Structured(text),
		Entities: s.extractor.Extract(text),
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, result, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache summary")
		}
	}
	return result, nil
}

// SummarizeUpload 解析上传的判决书并生成摘要
// 配置了存储时保存原文和摘要JSON，配置了仓储时写入摘要记录
func (s *SummaryService) SummarizeUpload(ctx context.Context, r io.Reader, filename, userEmail string) (*UploadSummary, error) {
	if !document.IsSupported(filename) {
		return nil, fmt.Errorf("%s: %w", filename, document.ErrUnsupportedType)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, MaxUploadSize)
	}

	parser, err := document.ParserFactory(filename)
	if err != nil {
		return nil, err
	}
	text, err := parser.ParseReader(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, document.ErrEmptyContent
	}

	entities := s.extractor.Extract(text)
	result := &UploadSummary{
		CaseName:  filename,
		Judges:    entities.Judges,
		Citations: entities.Citations,
		Acts:      entities.Acts,
		Sections:  entities.Sections,
		Summary:   s.summarizer.Structured(text),
		Timestamp: time.Now(),
	}

	log := s.logger.WithFields(logrus.Fields{
		"filename":  filename,
		"judges":    len(entities.Judges),
		"citations": len(entities.Citations),
	})

	if s.repo == nil && s.storage == nil {
		log.Info("Upload summarized")
		return result, nil
	}

	result.ID = uuid.New().String()
	record := &models.SummaryRecord{
		ID:               result.ID,
		UserEmail:        userEmail,
		CaseName:         result.CaseName,
		OriginalFileName: filename,
		Overview:         result.Summary.Overview,
		Decision:         result.Summary.Decision,
		Judges:           toJSON(result.Judges),
		Citations:        toJSON(result.Citations),
		Acts:             toJSON(result.Acts),
		Sections:         toJSON(result.Sections),
		CreatedAt:        result.Timestamp,
	}

	if s.storage != nil {
		original, err := s.storage.Save(ctx, bytes.NewReader(data), filename)
		if err != nil {
			return nil, fmt.Errorf("failed to store original: %w", err)
		}
		record.OriginalFileID = original.ID

		payload, err := json.MarshalIndent(result, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode summary: %w", err)
		}
		record.SummaryFileName = SummaryFileName(filename)
		summaryFile, err := s.storage.Save(ctx, bytes.NewReader(payload), record.SummaryFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to store summary: %w", err)
		}
		record.SummaryFileID = summaryFile.ID
	}

	if s.repo != nil {
		if err := s.repo.Create(record); err != nil {
			return nil, fmt.Errorf("failed to save summary record: %w", err)
		}
	}

	log.WithField("record_id", result.ID).Info("Upload summarized and saved")
	return result, nil
}

// SummaryFileName 摘要JSON文件名
func SummaryFileName(filename string) string {
	return filename + "_summary.json"
}

// GetRecord 获取摘要记录
func (s *SummaryService) GetRecord(ctx context.Context, id string) (*models.SummaryRecord, error) {
	if s.repo == nil {
		return nil, models.ErrSummaryNotFound
	}
	return s.repo.GetByID(id)
}

// ListRecords 分页列出摘要记录，userEmail为空时不过滤
func (s *SummaryService) ListRecords(ctx context.Context, offset, limit int, userEmail string) ([]*models.SummaryRecord, int64, error) {
	if s.repo == nil {
		return []*models.SummaryRecord{}, 0, nil
	}
	var filters map[string]interface{}
	if userEmail != "" {
		filters = map[string]interface{}{"user_email": userEmail}
	}
	return s.repo.List(offset, limit, filters)
}

// OpenSummaryFile 打开记录对应的摘要JSON文件
func (s *SummaryService) OpenSummaryFile(ctx context.Context, id string) (*models.SummaryRecord, io.ReadCloser, error) {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.storage == nil || record.SummaryFileID == "" {
		return nil, nil, fmt.Errorf("summary %s: %w", id, storage.ErrFileNotFound)
	}
	rc, err := s.storage.Get(ctx, record.SummaryFileID)
	if err != nil {
		return nil, nil, err
	}
	return record, rc, nil
}

// DeleteRecord 删除摘要记录及其存储文件
func (s *SummaryService) DeleteRecord(ctx context.Context, id string) error {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	if s.storage != nil {
		for _, fileID := range []string{record.OriginalFileID, record.SummaryFileID} {
			if fileID == "" {
				continue
			}
			if err := s.storage.Delete(ctx, fileID); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
				s.logger.WithError(err).WithField("file_id", fileID).Warn("Failed to delete stored file")
			}
		}
	}

	return s.repo.Delete(id)
}

func toJSON(v []string) datatypes.JSON {
	if v == nil {
		v = []string{}
	}
	data, _ := json.Marshal(v)
	return datatypes.JSON(data)
}
