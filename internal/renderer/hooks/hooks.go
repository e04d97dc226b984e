// Package hooks 提供渲染管线各阶段之间的扩展点。
//
// 每个扩展点是带类型的 Point[T]，集合在本包内固定；注册的变换函数按注册顺序折叠执行，
// 未注册任何函数时原样返回输入值。
package hooks

import (
	"context"

	"github.com/any-hub/ssr-gateway/internal/entries"
	"github.com/any-hub/ssr-gateway/internal/render"
	"github.com/any-hub/ssr-gateway/internal/routing"
)

// Transformer 观察或改写流经扩展点的值；返回 error 会中止后续变换并交由调用方处理。
type Transformer[T any] func(ctx context.Context, value T) (T, error)

// Point 是一个扩展点；字段不导出，外部包无法构造新的扩展点。
type Point[T any] struct {
	name string
}

// Name 返回扩展点名称，用于日志与诊断。
func (p Point[T]) Name() string {
	return p.name
}

var (
	// PreRenderFromCache 处理缓存查找结果，空串表示未命中。
	PreRenderFromCache = Point[string]{name: "preRenderFromCache"}
	// PostRenderRequirements 在创建 store 之前改写应用配置。
	PostRenderRequirements = Point[*entries.AppConfig]{name: "postRenderRequirements"}
	// PostGetCurrentRoute 在计算响应头之前改写命中的路由。
	PostGetCurrentRoute = Point[*routing.Route]{name: "postGetCurrentRoute"}
	// PostRender 处理渲染结果。
	PostRender = Point[render.Output]{name: "postRender"}
	// PreRedirect 处理即将下发的重定向地址。
	PreRedirect = Point[string]{name: "preRedirect"}
	// Error 观察管线错误；返回 nil 不会吞掉原始错误。
	Error = Point[error]{name: "error"}
)

// Points 返回全部扩展点名称，顺序与管线执行顺序一致。
func Points() []string {
	return []string{
		PreRenderFromCache.name,
		PostRenderRequirements.name,
		PostGetCurrentRoute.name,
		PostRender.name,
		PreRedirect.name,
		Error.name,
	}
}

// Compose 以 value 为初值，按顺序执行 list 中的变换。list 为空时返回 value 本身。
func Compose[T any](ctx context.Context, value T, list []Transformer[T]) (T, error) {
	acc := value
	for _, fn := range list {
		next, err := fn(ctx, acc)
		if err != nil {
			return acc, err
		}
		acc = next
	}
	return acc, nil
}

// Apply 取出扩展点上注册的变换并执行 Compose；r 为 nil 时等价于空列表。
func Apply[T any](ctx context.Context, r *Registry, p Point[T], value T) (T, error) {
	return Compose(ctx, value, Lookup(r, p))
}
