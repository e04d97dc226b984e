package renderer

import (
	"context"
	"fmt"

	"github.com/any-hub/ssr-gateway/internal/entries"
	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
	"github.com/any-hub/ssr-gateway/internal/routing"
	"github.com/any-hub/ssr-gateway/internal/store"
)

// appContext 是一次请求独享的应用上下文。
type appContext struct {
	config *entries.AppConfig
	client *httpclient.Client
	store  *store.Store
	routes routing.Table
}

func (m *Middleware) buildAppContext(ctx context.Context, req Request, res Response) (*appContext, error) {
	resolved, err := m.entries.Resolve(req.Path())
	if err != nil {
		return nil, fmt.Errorf("resolve app config: %w", err)
	}
	appConfig, err := hooks.Apply(ctx, m.hooks, hooks.PostRenderRequirements, resolved)
	if err != nil {
		return nil, fmt.Errorf("post-render-requirements hook: %w", err)
	}
	if appConfig == nil {
		return nil, fmt.Errorf("resolve app config: %w", ErrNilAppConfig)
	}

	client := m.collab.HTTPClient(m.httpClientOptions(appConfig), req, res)
	middlewares, thunk := m.storeOptions(appConfig)
	st := m.collab.Store(
		client,
		func() store.Reducers { return appConfig.Reducers },
		middlewares,
		m.hotReload,
		m.hotReload != nil,
		thunk,
	)

	if appConfig.Routes == nil {
		return nil, fmt.Errorf("build routes for %q: %w", appConfig.Key, ErrNoRoutes)
	}
	return &appContext{
		config: appConfig,
		client: client,
		store:  st,
		routes: appConfig.Routes(st, client),
	}, nil
}

// httpClientOptions 优先使用入口自带的非空配置。
func (m *Middleware) httpClientOptions(app *entries.AppConfig) *httpclient.Options {
	if app.Config != nil && !app.Config.HTTPClient.Empty() {
		return app.Config.HTTPClient
	}
	return m.opts.HTTPClient
}

// storeOptions 优先使用入口自带的 ReduxOptions，否则回退调用方的 middleware 与 thunk。
func (m *Middleware) storeOptions(app *entries.AppConfig) ([]store.Middleware, store.Middleware) {
	if app.Config != nil && app.Config.ReduxOptions != nil {
		return app.Config.ReduxOptions.Middlewares, app.Config.ReduxOptions.Thunk
	}
	return m.opts.ReduxMiddlewares, m.opts.ThunkMiddleware
}
