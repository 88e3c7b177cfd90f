package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cache 缓存接口
// 用于缓存文本摘要、策略对比等计算结果
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Factory 缓存工厂函数类型
type Factory func(config Config) (Cache, error)

// 注册的缓存实现
var registry = make(map[string]Factory)

// RegisterCache 注册缓存实现
func RegisterCache(name string, factory Factory) {
	registry[name] = factory
}

// NewCache 创建缓存实例，未知类型回退到内存缓存
func NewCache(config Config) (Cache, error) {
	if factory, ok := registry[config.Type]; ok {
		return factory(config)
	}
	return NewMemoryCache(config)
}

// Config 缓存配置
type Config struct {
	// 缓存类型: "memory", "redis"
	Type string
	// Redis连接地址 (仅Redis缓存使用)
	RedisAddr string
	// Redis密码 (仅Redis缓存使用)
	RedisPassword string
	// Redis数据库编号 (仅Redis缓存使用)
	RedisDB int
	// 键前缀，Clear只清理带前缀的键 (仅Redis缓存使用)
	KeyPrefix string
	// 默认缓存过期时间
	DefaultTTL time.Duration
	// 自动清理间隔时间 (仅内存缓存使用)
	CleanupInterval time.Duration
	// 最大条目数，0表示不限制 (仅内存缓存使用)
	MaxEntries int
}

// DefaultConfig 返回默认缓存配置
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		KeyPrefix:       "legal-summary",
		DefaultTTL:      time.Hour * 24,
		CleanupInterval: time.Minute * 10,
		MaxEntries:      10000,
	}
}

// GenerateCacheKey 生成标准化的缓存键
func GenerateCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// HashKey 以内容摘要生成缓存键，适合较长的文本输入
func HashKey(prefix string, content string) string {
	sum := sha256.Sum256([]byte(content))
	return GenerateCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// GetJSON 读取缓存并反序列化到v
func GetJSON(ctx context.Context, c Cache, key string, v interface{}) (bool, error) {
	raw, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode cached value %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 序列化v并写入缓存
func SetJSON(ctx context.Context, c Cache, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value %s: %w", key, err)
	}
	return c.Set(ctx, key, string(data), ttl)
}
