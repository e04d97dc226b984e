package renderer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/ssr-gateway/internal/cache"
	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/logging"
	"github.com/any-hub/ssr-gateway/internal/plugins"
	"github.com/any-hub/ssr-gateway/internal/render"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
	"github.com/any-hub/ssr-gateway/internal/store"
)

// Middleware 是进程级的渲染中间件，Handle 可被多个请求并发调用。
type Middleware struct {
	rc            Context
	entries       EntryResolver
	entryPlugins  []plugins.EntryPlugin
	body          render.BodyFunc
	bodyWrapper   render.BodyWrapperFunc
	assets        render.AssetsArgs
	opts          Options
	hooks         *hooks.Registry
	renderMethod  render.Method
	cachingConfig *cache.ComponentsCachingConfig
	cacheManager  *cache.Manager
	hotReload     store.SubscribeFn
	collab        Collaborators
}

// New 校验参数并构造中间件。服务端插件的渲染方法在此处一次性选定。
func New(p Params) (*Middleware, error) {
	if p.Context.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if p.Entries == nil {
		return nil, errors.New("entry resolver is required")
	}
	if err := plugins.Validate(p.ServerPlugins, p.EntriesPlugins); err != nil {
		return nil, fmt.Errorf("validate plugins: %w", err)
	}

	collab := p.Collaborators.withDefaults()
	if p.Collaborators.Store == nil {
		collab.Store = newStoreWithThunk
	}

	return &Middleware{
		rc:           p.Context,
		entries:      p.Entries,
		entryPlugins: append([]plugins.EntryPlugin(nil), p.EntriesPlugins...),
		body:         p.Body,
		bodyWrapper:  p.BodyWrapper,
		assets: render.AssetsArgs{
			Assets:       p.Assets,
			LoadJSConfig: p.LoadJSConfig,
		},
		opts:          p.Options.withDefaults(),
		hooks:         p.Hooks,
		renderMethod:  plugins.RenderMethodFrom(p.Context.Logger, p.ServerPlugins),
		cachingConfig: p.CachingConfig,
		cacheManager:  p.CacheManager,
		hotReload:     p.HotReload,
		collab:        collab,
	}, nil
}

// newStoreWithThunk 在未指定 thunk 时使用内置 thunk middleware。
func newStoreWithThunk(
	client *httpclient.Client,
	reducers func() store.Reducers,
	middlewares []store.Middleware,
	subscribe store.SubscribeFn,
	devMode bool,
	thunk store.Middleware,
) *store.Store {
	if thunk == nil {
		thunk = store.Thunk()
	}
	return store.New(client, reducers, middlewares, subscribe, devMode, thunk)
}

// requestState 记录单个请求在管线中的进度，用于日志。
type requestState struct {
	entry    string
	cacheHit bool
	failing  bool
}

// Handle 处理一个请求。返回的 error 只包含错误边界无法处理的发送失败，
// 其余失败都已交给错误响应方。
func (m *Middleware) Handle(req Request, res Response) (err error) {
	started := time.Now()
	ctx := req.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	guarded := &guardedResponse{Response: res}
	state := &requestState{}

	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("%w: %v", ErrPanic, r)
			if state.failing {
				m.rc.Logger.WithFields(m.requestFields(req, state)).Errorf("error boundary panicked: %v", r)
				err = panicErr
				return
			}
			m.rc.Logger.WithFields(m.requestFields(req, state)).
				WithField("stack", string(debug.Stack())).
				Error("render_panic")
			err = m.fail(ctx, req, guarded, state, panicErr)
		}
	}()

	if runErr := m.run(ctx, req, guarded, state); runErr != nil {
		return m.fail(ctx, req, guarded, state, runErr)
	}

	m.rc.Logger.WithFields(m.requestFields(req, state)).
		WithFields(logrus.Fields{
			"status":     guarded.statusCode(),
			"elapsed_ms": time.Since(started).Milliseconds(),
		}).
		Info("render_completed")
	return nil
}

func (m *Middleware) run(ctx context.Context, req Request, res *guardedResponse, state *requestState) error {
	scope := m.cacheManager.EnableComponentCaching(m.cachingConfig)
	hit, err := m.serveFromCache(ctx, req, res, state)
	if err != nil || hit {
		return err
	}

	app, err := m.buildAppContext(ctx, req, res)
	if err != nil {
		return err
	}
	state.entry = app.config.Key
	return m.runLifecycle(ctx, req, res, app, scope)
}

func (m *Middleware) requestFields(req Request, state *requestState) logrus.Fields {
	return logging.RequestFields(state.entry, req.Path(), req.Method(), req.RequestID(), state.cacheHit)
}

// guardedResponse 记录终结动作是否已经发生，错误边界据此避免重复下发响应。
type guardedResponse struct {
	Response
	terminated bool
	status     int
}

func (g *guardedResponse) Status(code int) {
	g.status = code
	g.Response.Status(code)
}

func (g *guardedResponse) SendString(body string) error {
	g.terminated = true
	return g.Response.SendString(body)
}

func (g *guardedResponse) SendStatus(code int) error {
	g.terminated = true
	g.status = code
	return g.Response.SendStatus(code)
}

func (g *guardedResponse) Redirect(location string, code int) error {
	g.terminated = true
	g.status = code
	return g.Response.Redirect(location, code)
}

func (g *guardedResponse) statusCode() int {
	if g.status == 0 && g.terminated {
		return http.StatusOK
	}
	return g.status
}
