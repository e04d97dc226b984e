package entries

import (
	"errors"

	"github.com/a-h/templ"

	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/routing"
	"github.com/any-hub/ssr-gateway/internal/store"
)

// RoutesFactory 基于请求级 store 与数据客户端生成路由表。
type RoutesFactory func(s *store.Store, client *httpclient.Client) routing.Table

// Definition 是代码注册的入口定义。
type Definition struct {
	Key         string
	Name        string
	Description string
	// Path 是配置文件未声明该入口时使用的默认挂载路径。
	Path      string
	Component templ.Component
	Reducers  store.Reducers
	Routes    RoutesFactory
	// ReduxOptions/HTTPClient 为入口自带的覆盖项，nil 表示沿用全局默认值。
	ReduxOptions *store.Options
	HTTPClient   *httpclient.Options
}

// EntryOptions 是入口级别的可选覆盖项。
type EntryOptions struct {
	HTTPClient   *httpclient.Options
	ReduxOptions *store.Options
}

func (o EntryOptions) clone() *EntryOptions {
	return &EntryOptions{
		HTTPClient:   o.HTTPClient.Clone(),
		ReduxOptions: o.ReduxOptions.Clone(),
	}
}

// AppConfig 是一次请求解析出的应用配置，仅属于当前请求。
type AppConfig struct {
	Component templ.Component
	Name      string
	Key       string
	Config    *EntryOptions
	Reducers  store.Reducers
	Routes    RoutesFactory
}

// ErrNoEntry 表示没有任何入口挂载在请求路径上。
var ErrNoEntry = errors.New("no entry mounted for path")
