package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalStorage 本地文件存储实现
type LocalStorage struct {
	basePath string // 基础存储路径
}

// LocalConfig 本地存储配置
type LocalConfig struct {
	Path string // 本地存储路径
}

// NewLocalStorage 创建本地存储实例
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if cfg.Path == "" {
		cfg.Path = "uploads"
	}
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: absPath}, nil
}

// Save 保存文件到本地存储，按年/月/日组织目录
func (s *LocalStorage) Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}

	id := uuid.New().String()
	ext := filepath.Ext(filename)

	now := time.Now()
	datePath := filepath.Join(fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	dirPath := filepath.Join(s.basePath, datePath)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return FileInfo{}, fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(dirPath, id+ext)
	file, err := os.Create(filePath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		os.Remove(filePath)
		return FileInfo{}, fmt.Errorf("failed to write file: %w", err)
	}

	return FileInfo{
		ID:       id,
		Name:     filename,
		Size:     size,
		MimeType: getMimeType(filename),
		Path:     filepath.Join(datePath, id+ext),
	}, nil
}

// Get 获取文件内容
func (s *LocalStorage) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	filePath, err := s.findFilePathByID(ctx, id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete 删除文件
func (s *LocalStorage) Delete(ctx context.Context, id string) error {
	filePath, err := s.findFilePathByID(ctx, id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List 列出所有文件
func (s *LocalStorage) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			ID:       idFromName(path),
			Name:     d.Name(),
			Size:     info.Size(),
			MimeType: getMimeType(d.Name()),
			Path:     relPath,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Exists 检查文件是否存在
func (s *LocalStorage) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.findFilePathByID(ctx, id)
	if errors.Is(err, ErrFileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// errStopWalk 找到文件后中断遍历
var errStopWalk = errors.New("stop walk")

// findFilePathByID 根据ID查找文件路径
func (s *LocalStorage) findFilePathByID(ctx context.Context, id string) (string, error) {
	var filePath string

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && idFromName(path) == id {
			filePath = path
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return "", fmt.Errorf("error searching for file: %w", err)
	}

	if filePath == "" {
		return "", fmt.Errorf("file with id %s: %w", id, ErrFileNotFound)
	}
	return filePath, nil
}
