package cache

import (
	"strings"
	"time"
)

// ComponentCaching 描述单个组件（按 Entry 或路由名称）的缓存参数。
type ComponentCaching struct {
	TTL time.Duration
}

// ComponentsCachingConfig 声明哪些组件的渲染结果允许写入缓存。
type ComponentsCachingConfig struct {
	Components map[string]ComponentCaching
}

// Scope 是一次请求独享的缓存视图，由 Manager.EnableComponentCaching 生成。
type Scope struct {
	components map[string]ComponentCaching
	production bool
}

// Production 表示本次请求是否处于可写缓存的生产模式。
func (s *Scope) Production() bool {
	return s != nil && s.production
}

// Cacheable 判断指定组件是否在本次请求的缓存配置中。
func (s *Scope) Cacheable(name string) bool {
	if s == nil || len(s.components) == 0 {
		return false
	}
	_, ok := s.components[normalizeComponent(name)]
	return ok
}

// TTL 返回组件的缓存时长，未配置或配置为 0 时回退 fallback。
func (s *Scope) TTL(name string, fallback time.Duration) time.Duration {
	if s == nil {
		return fallback
	}
	if c, ok := s.components[normalizeComponent(name)]; ok && c.TTL > 0 {
		return c.TTL
	}
	return fallback
}

func newScope(cfg *ComponentsCachingConfig, production bool) *Scope {
	scope := &Scope{production: production}
	if cfg == nil || len(cfg.Components) == 0 {
		return scope
	}
	scope.components = make(map[string]ComponentCaching, len(cfg.Components))
	for name, c := range cfg.Components {
		if key := normalizeComponent(name); key != "" {
			scope.components[key] = c
		}
	}
	return scope
}

func normalizeComponent(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
