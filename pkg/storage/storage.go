package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrFileNotFound 文件不存在
var ErrFileNotFound = errors.New("file not found")

// FileInfo 文件元数据结构
type FileInfo struct {
	ID       string // 文件唯一标识符
	Name     string // 原始文件名
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型
	Path     string // 内部存储路径(实现相关)
}

// Storage 文件存储接口
// 保存上传的判决书原文以及生成的摘要文件
type Storage interface {
	// Save 保存文件并返回文件信息
	Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error)

	// Get 获取文件内容
	Get(ctx context.Context, id string) (io.ReadCloser, error)

	// Delete 删除文件
	Delete(ctx context.Context, id string) error

	// List 列出所有文件
	List(ctx context.Context) ([]FileInfo, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, id string) (bool, error)
}

// Config 存储配置
type Config struct {
	Type  string // local 或 minio
	Local LocalConfig
	Minio MinioConfig
}

// New 根据配置创建存储实现
func New(cfg Config) (Storage, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		return NewLocalStorage(cfg.Local)
	case "minio":
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ReadAll 读取整个文件内容
func ReadAll(ctx context.Context, s Storage, id string) ([]byte, error) {
	rc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", id, err)
	}
	return data, nil
}

// idFromName 从存储文件名中取出ID(去掉扩展名)
func idFromName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// getMimeType 根据文件扩展名判断MIME类型
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound)
}
