// Package render 是默认的渲染协作方：把 Entry 组件与命中路由组件渲染为完整 HTML 文档。
package render

import (
	"context"
	"time"

	"github.com/a-h/templ"

	"github.com/any-hub/ssr-gateway/internal/cache"
	"github.com/any-hub/ssr-gateway/internal/config"
	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/routing"
	"github.com/any-hub/ssr-gateway/internal/store"
)

// RouterContext 携带渲染过程中产生的重定向目标。
type RouterContext struct {
	URL string
}

// Output 是渲染结果：RouterContext.URL 非空时表示重定向，否则发送 ResponseString。
type Output struct {
	ResponseString string
	RouterContext  *RouterContext
}

// RedirectURL 返回重定向地址，无重定向时返回空串。
func (o Output) RedirectURL() string {
	if o.RouterContext == nil {
		return ""
	}
	return o.RouterContext.URL
}

// Result 是渲染方法的产物：正文 HTML 与需要注入 <head> 的片段。
type Result struct {
	Body string
	Head []string
}

// Method 把根组件渲染为 HTML，服务端插件可以提供自己的实现（例如收集样式）。
type Method func(ctx context.Context, root templ.Component, styleTags []string) (Result, error)

// Wrapper 由 Entry 插件提供，用于包裹根组件。
type Wrapper func(templ.Component) templ.Component

// AppContext 是渲染所需的请求级应用上下文。
type AppContext struct {
	EntryPoint   templ.Component
	AppName      string
	Key          string
	Store        *store.Store
	Routes       routing.Table
	HTTPClient   *httpclient.Client
	CurrentRoute *routing.Route
	Params       routing.Params
}

// DocumentProps 是文档包装组件的输入。
type DocumentProps struct {
	AppName   string
	Head      []string
	Body      templ.Component
	Styles    []string
	Scripts   []string
	EnvScript string
	LoadJS    string
	Config    map[string]string
}

// BodyFunc 将渲染出的正文放入页面主体容器。
type BodyFunc func(html string, config map[string]string) templ.Component

// BodyWrapperFunc 生成完整文档。
type BodyWrapperFunc func(doc DocumentProps) templ.Component

// EntryArgs 汇总文档包装与入口级插件。
type EntryArgs struct {
	Body         BodyFunc
	BodyWrapper  BodyWrapperFunc
	Wrappers     []Wrapper
	BodyConfig   map[string]string
	EnvVariables []string
}

// AssetsArgs 描述静态资源与 loadjs 配置。
type AssetsArgs struct {
	Assets       config.AssetsConfig
	LoadJSConfig map[string]string
}

// PageCache 是渲染结果缓存的写入端。
type PageCache interface {
	SetCacheIfProd(ctx context.Context, src cache.KeySource, body string, ttl time.Duration) error
	DefaultTTL() time.Duration
}

// Options 控制渲染方法与缓存写入。
type Options struct {
	RenderMethod Method
	Cache        *cache.Scope
	CacheManager PageCache
}

// Request 是渲染期间需要读取的请求视图。
type Request interface {
	Hostname() string
	OriginalURL() string
	Path() string
}
