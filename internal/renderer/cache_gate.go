package renderer

import (
	"context"
	"fmt"

	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
)

const htmlContentType = "text/html; charset=utf-8"

// serveFromCache 在缓存（或 preRenderFromCache 扩展点）给出正文时直接发送并结束管线。
// 非生产模式下 Manager 总是返回空串；扩展点注入的值按原样发送。
func (m *Middleware) serveFromCache(ctx context.Context, req Request, res Response, state *requestState) (bool, error) {
	cached, err := m.cacheManager.GetCachedIfProd(ctx, req)
	if err != nil {
		m.rc.Logger.WithError(err).
			WithFields(m.requestFields(req, state)).
			Warn("cache_get_failed")
		cached = ""
	}

	cached, err = hooks.Apply(ctx, m.hooks, hooks.PreRenderFromCache, cached)
	if err != nil {
		return false, fmt.Errorf("pre-render-from-cache hook: %w", err)
	}
	if cached == "" {
		return false, nil
	}

	state.cacheHit = true
	res.Set("Content-Type", htmlContentType)
	if err := res.SendString(cached); err != nil {
		return true, fmt.Errorf("send cached response: %w", err)
	}
	return true, nil
}
