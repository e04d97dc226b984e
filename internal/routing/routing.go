// Package routing 描述应用的路由表，并把请求路径匹配为 Route + Branch。
//
// 匹配规则：按声明顺序优先，静态段精确匹配，":name" 匹配单段，"*" 匹配剩余所有段（含零段）。
// 子路由的 Path 相对于父路由。
package routing

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// Params 是路径参数；"*" 键保存 catch-all 匹配到的剩余路径。
type Params map[string]string

// Location 描述当前请求在路由层面的位置信息。
type Location struct {
	Path   string
	Query  url.Values
	Params Params
}

// OnEnterFunc 在渲染前按 Branch 顺序执行，常用于预取数据或设置状态码。
type OnEnterFunc func(ctx context.Context, loc Location) error

// Route 是路由表中的一项。
type Route struct {
	Path      string
	Name      string
	Component templ.Component
	// Status 是路由声明的默认响应状态码，0 表示未声明。
	Status  int
	Headers map[string]string
	// Cache/CacheTTL 控制生产模式下是否缓存该路由的渲染结果。
	Cache    bool
	CacheTTL time.Duration
	// Redirect 非空时渲染层直接产出重定向目标。
	Redirect string
	OnEnter  OnEnterFunc
	Children []Route
}

// Table 是一个 Entry 的完整路由表。
type Table []Route

// BranchItem 是命中链路上的一个路由段。
type BranchItem struct {
	Route *Route
}

// Branch 从根到命中路由的有序路由段。
type Branch []BranchItem

// Result 是匹配结果：Found() 为 false 时表示未命中（包括路由表未声明兜底路由）。
type Result struct {
	Route  *Route
	Branch Branch
	Params Params
}

// Found 表示是否命中了路由。
func (r Result) Found() bool {
	return r.Route != nil
}

// Match 在路由表中查找 path 对应的路由。
func Match(table Table, path string) Result {
	res, ok := matchRoutes(table, splitPath(path), Params{}, nil)
	if !ok {
		return Result{}
	}
	return res
}

// Matcher 是路由匹配协作方。返回的 error 表示匹配过程本身失败，未命中不是错误。
type Matcher interface {
	Match(ctx context.Context, path string, table Table) (Result, error)
}

// MatcherFunc 将函数适配为 Matcher。
type MatcherFunc func(ctx context.Context, path string, table Table) (Result, error)

// Match makes MatcherFunc satisfy Matcher.
func (f MatcherFunc) Match(ctx context.Context, path string, table Table) (Result, error) {
	return f(ctx, path, table)
}

// DefaultMatcher 使用本包的匹配规则。
var DefaultMatcher Matcher = MatcherFunc(func(ctx context.Context, path string, table Table) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Match(table, path), nil
})

// RunOnEnter 按 Branch 顺序逐个执行 OnEnter，任一失败立即返回。
func RunOnEnter(ctx context.Context, branch Branch, loc Location) error {
	for _, item := range branch {
		if item.Route == nil || item.Route.OnEnter == nil {
			continue
		}
		if err := item.Route.OnEnter(ctx, loc); err != nil {
			return fmt.Errorf("on-enter %s: %w", routeLabel(item.Route), err)
		}
	}
	return nil
}

func matchRoutes(routes []Route, segs []string, params Params, branch Branch) (Result, bool) {
	for i := range routes {
		route := &routes[i]
		rest, matched, ok := consume(route.Path, segs, params)
		if !ok {
			continue
		}
		next := append(branch[:len(branch):len(branch)], BranchItem{Route: route})
		if len(route.Children) > 0 {
			if res, ok := matchRoutes(route.Children, rest, matched, next); ok {
				return res, true
			}
		}
		if len(rest) == 0 {
			return Result{Route: route, Branch: next, Params: matched}, true
		}
	}
	return Result{}, false
}

// consume 尝试用 pattern 匹配 segs 的前缀，返回剩余段与新的参数集合。
func consume(pattern string, segs []string, params Params) ([]string, Params, bool) {
	parts := splitPath(pattern)
	out := make(Params, len(params)+len(parts))
	for k, v := range params {
		out[k] = v
	}

	for i, part := range parts {
		switch {
		case part == "*":
			out["*"] = strings.Join(segs[i:], "/")
			return nil, out, true
		case i >= len(segs):
			return nil, nil, false
		case strings.HasPrefix(part, ":"):
			out[part[1:]] = segs[i]
		case part != segs[i]:
			return nil, nil, false
		}
	}
	return segs[len(parts):], out, true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	raw := strings.Split(trimmed, "/")
	segs := raw[:0]
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func routeLabel(r *Route) string {
	if r.Name != "" {
		return r.Name
	}
	if r.Path == "" {
		return "/"
	}
	return r.Path
}
