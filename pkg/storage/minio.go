package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage MinIO存储实现
type MinioStorage struct {
	client     *minio.Client // MinIO客户端
	bucketName string        // 存储桶名称
}

// MinioConfig MinIO存储配置
type MinioConfig struct {
	Endpoint  string // MinIO服务端点
	AccessKey string // 访问密钥ID
	SecretKey string // 秘密访问密钥
	UseSSL    bool   // 是否使用SSL
	Bucket    string // 存储桶名称
}

// NewMinioStorage 创建MinIO存储实例，存储桶不存在时自动创建
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioStorage{
		client:     client,
		bucketName: cfg.Bucket,
	}, nil
}

// Save 流式上传文件到MinIO
func (s *MinioStorage) Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error) {
	id := uuid.New().String()
	now := time.Now()
	objectName := fmt.Sprintf("%04d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), id, path.Ext(filename))
	contentType := getMimeType(filename)

	info, err := s.client.PutObject(ctx, s.bucketName, objectName, reader, -1,
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: map[string]string{"original-name": filename},
		})
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to upload file: %w", err)
	}

	return FileInfo{
		ID:       id,
		Name:     filename,
		Size:     info.Size,
		MimeType: contentType,
		Path:     objectName,
	}, nil
}

// Get 获取MinIO中的文件
func (s *MinioStorage) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	objectName, err := s.findObject(ctx, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, nil
}

// Delete 从MinIO中删除文件
func (s *MinioStorage) Delete(ctx context.Context, id string) error {
	objectName, err := s.findObject(ctx, id)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// List 列出MinIO中的所有文件
func (s *MinioStorage) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo

	for object := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		files = append(files, FileInfo{
			ID:       idFromName(object.Key),
			Name:     path.Base(object.Key),
			Size:     object.Size,
			MimeType: getMimeType(object.Key),
			Path:     object.Key,
		})
	}

	return files, nil
}

// Exists 检查MinIO中是否存在指定ID的文件
func (s *MinioStorage) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.findObject(ctx, id)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// findObject 按ID查找对象名
func (s *MinioStorage) findObject(ctx context.Context, id string) (string, error) {
	files, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.ID == id {
			return f.Path, nil
		}
	}
	return "", fmt.Errorf("file with id %s: %w", id, ErrFileNotFound)
}
