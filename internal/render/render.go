package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/a-h/templ"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/ssr-gateway/internal/config"
)

const doctype = "<!DOCTYPE html>"

// Func 是渲染协作方的签名，Render 为默认实现。
type Func func(ctx context.Context, logger *logrus.Logger, req Request, app AppContext, entry EntryArgs, assets AssetsArgs, opts Options) (Output, error)

// Render 渲染命中路由。重定向路由不会渲染任何组件。
func Render(ctx context.Context, logger *logrus.Logger, req Request, app AppContext, entry EntryArgs, assets AssetsArgs, opts Options) (Output, error) {
	route := app.CurrentRoute
	if route == nil {
		return Output{}, fmt.Errorf("render %s: current route is nil", req.Path())
	}
	if route.Redirect != "" {
		return Output{RouterContext: &RouterContext{URL: route.Redirect}}, nil
	}

	root := buildRoot(app)
	for _, wrap := range entry.Wrappers {
		if wrap != nil {
			root = wrap(root)
		}
	}

	styles, scripts := entryAssets(assets.Assets, app.Key)
	method := opts.RenderMethod
	if method == nil {
		method = TemplMethod
	}
	result, err := method(ctx, root, styleTags(styles))
	if err != nil {
		return Output{}, fmt.Errorf("render %s: %w", app.Key, err)
	}

	envScript, err := envScript(entry.EnvVariables)
	if err != nil {
		return Output{}, err
	}
	loadJS, err := loadJSScript(assets.LoadJSConfig)
	if err != nil {
		return Output{}, err
	}

	bodyFn := entry.Body
	if bodyFn == nil {
		bodyFn = DefaultBody
	}
	wrapperFn := entry.BodyWrapper
	if wrapperFn == nil {
		wrapperFn = DefaultBodyWrapper
	}
	doc := wrapperFn(DocumentProps{
		AppName:   app.AppName,
		Head:      result.Head,
		Body:      bodyFn(result.Body, entry.BodyConfig),
		Styles:    styles,
		Scripts:   scripts,
		EnvScript: envScript,
		LoadJS:    loadJS,
		Config:    entry.BodyConfig,
	})

	var buf bytes.Buffer
	buf.WriteString(doctype)
	if err := doc.Render(ctx, &buf); err != nil {
		return Output{}, fmt.Errorf("render document: %w", err)
	}
	html := buf.String()

	storePage(ctx, logger, req, app, opts, html)
	return Output{ResponseString: html}, nil
}

// TemplMethod 是默认渲染方法：直接把 templ 组件写入缓冲区。
func TemplMethod(ctx context.Context, root templ.Component, styleTags []string) (Result, error) {
	var buf bytes.Buffer
	if err := root.Render(ctx, &buf); err != nil {
		return Result{}, err
	}
	return Result{Body: buf.String(), Head: styleTags}, nil
}

// buildRoot 将路由组件作为 children 注入 Entry 组件。
func buildRoot(app AppContext) templ.Component {
	child := app.CurrentRoute.Component
	if child == nil {
		child = templ.NopComponent
	}
	if app.EntryPoint == nil {
		return child
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return app.EntryPoint.Render(templ.WithChildren(ctx, child), w)
	})
}

func storePage(ctx context.Context, logger *logrus.Logger, req Request, app AppContext, opts Options, html string) {
	route := app.CurrentRoute
	if opts.CacheManager == nil {
		return
	}
	if !route.Cache && !opts.Cache.Cacheable(route.Name) && !opts.Cache.Cacheable(app.Key) {
		return
	}

	ttl := route.CacheTTL
	if ttl <= 0 {
		ttl = opts.Cache.TTL(route.Name, opts.Cache.TTL(app.Key, opts.CacheManager.DefaultTTL()))
	}
	if err := opts.CacheManager.SetCacheIfProd(ctx, req, html, ttl); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"action": "cache_set",
			"entry":  app.Key,
			"path":   req.Path(),
		}).Warn("cache_set_failed")
	}
}

func envScript(names []string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}
	values := make(map[string]string, len(names))
	for _, name := range names {
		values[name] = os.Getenv(name)
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode env variables: %w", err)
	}
	return "window.__ENV__ = " + string(encoded) + ";", nil
}

func loadJSScript(cfg map[string]string) (string, error) {
	if len(cfg) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode loadjs config: %w", err)
	}
	return "window.__LOADJS_CONFIG__ = " + string(encoded) + ";", nil
}

func styleTags(styles []string) []string {
	if len(styles) == 0 {
		return nil
	}
	tags := make([]string, len(styles))
	for i, href := range styles {
		tags[i] = fmt.Sprintf(`<link rel="stylesheet" href="%s">`, templ.EscapeString(href))
	}
	return tags
}

func entryAssets(assets config.AssetsConfig, key string) (styles, scripts []string) {
	group, ok := assets.Entries[strings.ToLower(key)]
	if !ok {
		return nil, nil
	}
	for _, css := range group.CSS {
		styles = append(styles, assetURL(assets.PublicPath, css))
	}
	for _, js := range group.JS {
		scripts = append(scripts, assetURL(assets.PublicPath, js))
	}
	return styles, scripts
}

func assetURL(publicPath, file string) string {
	if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || publicPath == "" {
		return file
	}
	return strings.TrimRight(publicPath, "/") + "/" + file
}
