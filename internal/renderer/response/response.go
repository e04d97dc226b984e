// Package response 计算响应头与状态码。
package response

import (
	"net/http"

	"github.com/any-hub/ssr-gateway/internal/routing"
	"github.com/any-hub/ssr-gateway/internal/store"
)

// HeaderSetter 是写响应头所需的最小视图。
type HeaderSetter interface {
	Set(key, value string)
}

// SetHeaders 把路由声明的响应头写入 res。
func SetHeaders(res HeaderSetter, route *routing.Route) {
	if res == nil || route == nil {
		return
	}
	for k, v := range route.Headers {
		res.Set(k, v)
	}
}

// StatusCode 依次取 store 记录的状态码、路由声明的状态码，最后回退 200。
func StatusCode(st *store.Store, route *routing.Route) int {
	if st != nil {
		if code := st.StatusCode(); code > 0 {
			return code
		}
	}
	if route != nil && route.Status > 0 {
		return route.Status
	}
	return http.StatusOK
}
