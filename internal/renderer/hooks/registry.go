package hooks

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrFrozen 表示注册表已冻结，不再接受新的变换。
	ErrFrozen = errors.New("hook registry is frozen")
	// ErrUnknownPoint 表示使用了零值 Point。
	ErrUnknownPoint = errors.New("unknown hook point")
)

// Registry 保存各扩展点的有序变换列表。启动阶段注册，Freeze 之后只读。
type Registry struct {
	mu     sync.RWMutex
	frozen bool
	hooks  map[string][]any
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string][]any)}
}

// Register 将 fn 追加到扩展点 p 的变换列表末尾。
func Register[T any](r *Registry, p Point[T], fn Transformer[T]) error {
	if r == nil {
		return errors.New("hook registry required")
	}
	if p.name == "" {
		return ErrUnknownPoint
	}
	if fn == nil {
		return fmt.Errorf("hook %s: transformer required", p.name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: %s", ErrFrozen, p.name)
	}
	r.hooks[p.name] = append(r.hooks[p.name], fn)
	return nil
}

// MustRegister panics on registration failure.
func MustRegister[T any](r *Registry, p Point[T], fn Transformer[T]) {
	if err := Register(r, p, fn); err != nil {
		panic(err)
	}
}

// Lookup 返回扩展点上的变换列表副本。
func Lookup[T any](r *Registry, p Point[T]) []Transformer[T] {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw := r.hooks[p.name]
	if len(raw) == 0 {
		return nil
	}
	out := make([]Transformer[T], 0, len(raw))
	for _, v := range raw {
		if fn, ok := v.(Transformer[T]); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Freeze 结束注册阶段；重复调用无副作用。
func (r *Registry) Freeze() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Count 返回扩展点上注册的变换数量。
func (r *Registry) Count(point string) int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[point])
}

// Snapshot 返回所有扩展点的注册数量，供诊断接口输出。
func (r *Registry) Snapshot() map[string]int {
	names := Points()
	out := make(map[string]int, len(names))
	for _, name := range names {
		out[name] = r.Count(name)
	}
	return out
}
