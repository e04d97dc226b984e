// Package welcome 注册内置的示例入口：首页 + 兜底 404 页面，保证未配置业务入口时服务可用。
package welcome

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/any-hub/ssr-gateway/internal/entries"
	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/routing"
	"github.com/any-hub/ssr-gateway/internal/store"
	"github.com/any-hub/ssr-gateway/internal/version"
)

// Key 是内置入口的键。
const Key = "welcome"

func init() {
	entries.MustRegister(Definition())
}

// Definition 返回内置入口定义，测试中可直接使用而无需依赖全局注册表。
func Definition() entries.Definition {
	return entries.Definition{
		Key:         Key,
		Name:        "Welcome",
		Description: "built-in landing page",
		Path:        "/",
		Component:   layout(),
		Routes:      routes,
	}
}

func routes(s *store.Store, _ *httpclient.Client) routing.Table {
	return routing.Table{
		{Path: "/", Name: "home", Component: home()},
		{Path: "/healthz", Name: "healthz", Component: text("ok"), Headers: map[string]string{"Cache-Control": "no-store"}},
		{
			Path:      "*",
			Name:      "not-found",
			Component: text("Page not found"),
			OnEnter: func(context.Context, routing.Location) error {
				return s.Dispatch(store.SetStatusCode(http.StatusNotFound))
			},
		},
	}
}

func layout() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main class="welcome">`); err != nil {
			return err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main>`)
		return err
	})
}

func home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<h1>ssr-gateway</h1><p>%s</p>", templ.EscapeString(version.Full()))
		return err
	})
}

func text(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<p>%s</p>", templ.EscapeString(msg))
		return err
	})
}
