package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// KeySource 是计算缓存键所需的最小请求视图。
type KeySource interface {
	Hostname() string
	OriginalURL() string
}

// page 是落盘的渲染结果，使用 msgpack 编码以保持文件紧凑。
type page struct {
	URL       string    `msgpack:"url"`
	Body      string    `msgpack:"body"`
	StoredAt  time.Time `msgpack:"stored_at"`
	ExpiresAt time.Time `msgpack:"expires_at"`
}

// Manager 是进程级的渲染结果缓存；生产标志在构造时确定，之后不再变化。
type Manager struct {
	store      Store
	logger     *logrus.Logger
	production bool
	defaultTTL time.Duration
	now        func() time.Time
}

// NewManager 构造缓存管理器。store 为空时所有读写都会退化为未命中。
func NewManager(store Store, logger *logrus.Logger, production bool, defaultTTL time.Duration) *Manager {
	return &Manager{
		store:      store,
		logger:     logger,
		production: production,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Production 返回构造时注入的生产模式标志。
func (m *Manager) Production() bool {
	return m != nil && m.production
}

// DefaultTTL 返回路由未声明 TTL 时使用的缓存时长。
func (m *Manager) DefaultTTL() time.Duration {
	if m == nil {
		return 0
	}
	return m.defaultTTL
}

// EnableComponentCaching 为当前请求生成独立的缓存视图。
// 重复调用得到等价的 Scope，且不会修改 Manager 自身状态。
func (m *Manager) EnableComponentCaching(cfg *ComponentsCachingConfig) *Scope {
	return newScope(cfg, m.Production())
}

// GetCachedIfProd 在生产模式下返回缓存的页面正文；非生产模式或未命中时返回空串。
func (m *Manager) GetCachedIfProd(ctx context.Context, src KeySource) (string, error) {
	if !m.Production() || src == nil {
		return "", nil
	}
	if m.store == nil {
		return "", ErrStoreUnavailable
	}

	locator := locatorFor(src)
	result, err := m.store.Get(ctx, locator)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	defer result.Reader.Close()

	var cached page
	if err := msgpack.NewDecoder(result.Reader).Decode(&cached); err != nil {
		return "", fmt.Errorf("decode cached page: %w", err)
	}
	if !cached.ExpiresAt.IsZero() && !m.now().Before(cached.ExpiresAt) {
		if err := m.store.Remove(ctx, locator); err != nil && m.logger != nil {
			m.logger.WithError(err).WithField("action", "cache_expire").Debug("cache_remove_failed")
		}
		return "", nil
	}
	return cached.Body, nil
}

// SetCacheIfProd 在生产模式下写入页面正文；ttl <= 0 时使用默认 TTL。
func (m *Manager) SetCacheIfProd(ctx context.Context, src KeySource, body string, ttl time.Duration) error {
	if !m.Production() || src == nil {
		return nil
	}
	if m.store == nil {
		return ErrStoreUnavailable
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	now := m.now().UTC()
	record := page{
		URL:      src.OriginalURL(),
		Body:     body,
		StoredAt: now,
	}
	if ttl > 0 {
		record.ExpiresAt = now.Add(ttl)
	}

	encoded, err := msgpack.Marshal(&record)
	if err != nil {
		return fmt.Errorf("encode cached page: %w", err)
	}
	_, err = m.store.Put(ctx, locatorFor(src), bytes.NewReader(encoded), PutOptions{ModTime: now})
	return err
}

// locatorFor 以 Host 作为命名空间、完整 URL 的摘要作为文件名。
func locatorFor(src KeySource) Locator {
	sum := sha1.Sum([]byte(src.OriginalURL()))
	return Locator{
		Namespace: src.Hostname(),
		Path:      "pages/" + hex.EncodeToString(sum[:]),
	}
}
