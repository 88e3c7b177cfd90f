package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 单进程部署时的内存缓存
// 摘要按上传文本的哈希做键，数量会随上传增长，所以设了条目上限；
// 策略对比按案件做键，数量有限
type MemoryCache struct {
	items      *gocache.Cache
	maxEntries int
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache(config Config) (Cache, error) {
	ttl := config.DefaultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	cleanup := config.CleanupInterval
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}

	return &MemoryCache{
		items:      gocache.New(ttl, cleanup),
		maxEntries: config.MaxEntries,
	}, nil
}

// Get 读取缓存的JSON结果
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	value, found := m.items.Get(key)
	if !found {
		return "", false, nil
	}
	str, ok := value.(string)
	return str, ok, nil
}

// Set 写入结果，ttl为0时使用默认过期时间
// 达到条目上限时先清掉过期项，仍然满则放弃写入，已有的键照常覆盖
func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	if m.full(key) {
		return nil
	}
	m.items.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) full(key string) bool {
	if m.maxEntries <= 0 {
		return false
	}
	if _, exists := m.items.Get(key); exists {
		return false
	}
	if m.items.ItemCount() < m.maxEntries {
		return false
	}
	m.items.DeleteExpired()
	return m.items.ItemCount() >= m.maxEntries
}

// Delete 删除缓存项
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Clear 清空缓存，用于重新加载案件数据之后
func (m *MemoryCache) Clear(_ context.Context) error {
	m.items.Flush()
	return nil
}

func init() {
	RegisterCache("memory", NewMemoryCache)
}
