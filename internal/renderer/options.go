package renderer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/ssr-gateway/internal/cache"
	"github.com/any-hub/ssr-gateway/internal/config"
	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/plugins"
	"github.com/any-hub/ssr-gateway/internal/render"
	"github.com/any-hub/ssr-gateway/internal/renderer/errorpage"
	"github.com/any-hub/ssr-gateway/internal/renderer/helptext"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
	"github.com/any-hub/ssr-gateway/internal/renderer/response"
	"github.com/any-hub/ssr-gateway/internal/routing"
	"github.com/any-hub/ssr-gateway/internal/store"
)

// Options 是调用方提供的渲染选项，零值字段按 DefaultOptions 处理。
type Options struct {
	EnvVariables       []string
	HTTPClient         *httpclient.Options
	EntryWrapperConfig map[string]string
	ReduxMiddlewares   []store.Middleware
	ThunkMiddleware    store.Middleware
}

// DefaultOptions 返回默认选项。
func DefaultOptions() Options {
	return Options{
		EnvVariables:       []string{},
		HTTPClient:         &httpclient.Options{},
		EntryWrapperConfig: map[string]string{},
		ReduxMiddlewares:   []store.Middleware{},
		ThunkMiddleware:    nil,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.EnvVariables == nil {
		o.EnvVariables = d.EnvVariables
	}
	if o.HTTPClient == nil {
		o.HTTPClient = d.HTTPClient
	}
	if o.EntryWrapperConfig == nil {
		o.EntryWrapperConfig = d.EntryWrapperConfig
	}
	if o.ReduxMiddlewares == nil {
		o.ReduxMiddlewares = d.ReduxMiddlewares
	}
	return o
}

// OptionsFromConfig 把配置文件中的选项转换为 Options。
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	opts := Options{
		EnvVariables:       append([]string(nil), cfg.Global.EnvVariables...),
		HTTPClient:         httpclient.OptionsFromConfig(&cfg.HTTPClient),
		EntryWrapperConfig: cfg.EntryWrapper,
	}
	return opts.withDefaults()
}

// Collaborators 是管线调用的外部协作方，未设置的字段使用默认实现。
type Collaborators struct {
	Matcher        routing.Matcher
	HTTPClient     func(opts *httpclient.Options, req Request, res Response) *httpclient.Client
	Store          func(client *httpclient.Client, reducers func() store.Reducers, middlewares []store.Middleware, subscribe store.SubscribeFn, devMode bool, thunk store.Middleware) *store.Store
	OnEnter        func(ctx context.Context, branch routing.Branch, loc routing.Location) error
	SetHeaders     func(res Response, route *routing.Route)
	StatusCode     func(st *store.Store, route *routing.Route) int
	Render         render.Func
	ErrorResponder func(rc Context, req Request, res Response, err error) error
	HelpText       func(text []string, logger *logrus.Logger)
}

func (c Collaborators) withDefaults() Collaborators {
	if c.Matcher == nil {
		c.Matcher = routing.DefaultMatcher
	}
	if c.HTTPClient == nil {
		c.HTTPClient = func(opts *httpclient.Options, req Request, res Response) *httpclient.Client {
			return httpclient.New(opts, req, res)
		}
	}
	if c.Store == nil {
		c.Store = store.New
	}
	if c.OnEnter == nil {
		c.OnEnter = routing.RunOnEnter
	}
	if c.SetHeaders == nil {
		c.SetHeaders = func(res Response, route *routing.Route) {
			response.SetHeaders(res, route)
		}
	}
	if c.StatusCode == nil {
		c.StatusCode = response.StatusCode
	}
	if c.Render == nil {
		c.Render = render.Render
	}
	if c.ErrorResponder == nil {
		c.ErrorResponder = func(rc Context, _ Request, res Response, err error) error {
			return errorpage.Respond(rc.Production(), res, err)
		}
	}
	if c.HelpText == nil {
		c.HelpText = helptext.Show
	}
	return c
}

// Params 汇总构造中间件所需的全部输入。
type Params struct {
	Context Context
	// Entries 携带入口定义及其配置（挂载路径、名称、入口级数据客户端）。
	Entries        EntryResolver
	EntriesPlugins []plugins.EntryPlugin
	Body           render.BodyFunc
	BodyWrapper    render.BodyWrapperFunc
	Assets         config.AssetsConfig
	LoadJSConfig   map[string]string
	Options        Options
	Hooks          *hooks.Registry
	ServerPlugins  []plugins.ServerPlugin
	CachingConfig  *cache.ComponentsCachingConfig
	CacheManager   *cache.Manager
	// HotReload 仅在热更新宿主下设置。
	HotReload     store.SubscribeFn
	Collaborators Collaborators
}
