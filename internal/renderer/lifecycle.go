package renderer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/any-hub/ssr-gateway/internal/cache"
	"github.com/any-hub/ssr-gateway/internal/plugins"
	"github.com/any-hub/ssr-gateway/internal/render"
	"github.com/any-hub/ssr-gateway/internal/renderer/helptext"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
	"github.com/any-hub/ssr-gateway/internal/routing"
)

// runLifecycle 执行路由匹配之后的各个阶段。未命中路由时直接回复 404，不经过错误边界。
func (m *Middleware) runLifecycle(ctx context.Context, req Request, res Response, app *appContext, scope *cache.Scope) error {
	result, err := m.collab.Matcher.Match(ctx, req.Path(), app.routes)
	if err != nil {
		return fmt.Errorf("match route: %w", err)
	}
	if !result.Found() {
		m.collab.HelpText(helptext.Missing404Text, m.rc.Logger)
		if err := res.SendStatus(http.StatusNotFound); err != nil {
			return fmt.Errorf("send not found: %w", err)
		}
		return nil
	}

	loc := routing.Location{
		Path:   req.Path(),
		Query:  queryOf(req.OriginalURL()),
		Params: result.Params,
	}
	if err := m.collab.OnEnter(ctx, result.Branch, loc); err != nil {
		return fmt.Errorf("run on-enter hooks: %w", err)
	}

	route, err := hooks.Apply(ctx, m.hooks, hooks.PostGetCurrentRoute, result.Route)
	if err != nil {
		return fmt.Errorf("post-get-current-route hook: %w", err)
	}
	if route == nil {
		return ErrNilRoute
	}
	m.collab.SetHeaders(res, route)
	status := m.collab.StatusCode(app.store, route)

	out, err := m.collab.Render(ctx, m.rc.Logger, req,
		render.AppContext{
			EntryPoint:   app.config.Component,
			AppName:      app.config.Name,
			Key:          app.config.Key,
			Store:        app.store,
			Routes:       app.routes,
			HTTPClient:   app.client,
			CurrentRoute: route,
			Params:       result.Params,
		},
		m.entryArgs(app.config.Key),
		m.assets,
		m.renderOptions(scope),
	)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	out, err = hooks.Apply(ctx, m.hooks, hooks.PostRender, out)
	if err != nil {
		return fmt.Errorf("post-render hook: %w", err)
	}
	return m.dispatch(ctx, res, status, out)
}

func (m *Middleware) entryArgs(key string) render.EntryArgs {
	return render.EntryArgs{
		Body:         m.body,
		BodyWrapper:  m.bodyWrapper,
		Wrappers:     plugins.Wrappers(plugins.ForEntry(m.entryPlugins, key)),
		BodyConfig:   m.opts.EntryWrapperConfig,
		EnvVariables: m.opts.EnvVariables,
	}
}

func (m *Middleware) renderOptions(scope *cache.Scope) render.Options {
	opts := render.Options{
		RenderMethod: m.renderMethod,
		Cache:        scope,
	}
	if m.cacheManager != nil {
		opts.CacheManager = m.cacheManager
	}
	return opts
}

func queryOf(originalURL string) url.Values {
	u, err := url.Parse(originalURL)
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}
