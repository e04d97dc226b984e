// Package renderer 实现单个请求的服务端渲染管线。
//
// 流程：缓存闸门 → 构建应用上下文 → 路由匹配 →（未命中：404 + 提示 | 命中：on-enter →
// 路由后处理 → 响应头 → 状态码 → 渲染 → 下发响应）。各阶段之间穿插 hooks 扩展点，
// 除路由未命中外的所有失败都由同一个错误边界接管。
package renderer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/ssr-gateway/internal/config"
	"github.com/any-hub/ssr-gateway/internal/entries"
)

var (
	// ErrNilAppConfig 表示入口解析或 postRenderRequirements 扩展点产出了空配置。
	ErrNilAppConfig = errors.New("renderer: app config is nil")
	// ErrNoRoutes 表示应用配置缺少路由工厂。
	ErrNoRoutes = errors.New("renderer: app config has no routes factory")
	// ErrNilRoute 表示 postGetCurrentRoute 扩展点产出了空路由。
	ErrNilRoute = errors.New("renderer: current route is nil")
	// ErrPanic 包裹管线中被恢复的 panic。
	ErrPanic = errors.New("renderer: panic")
)

// Context 是进程级只读上下文，所有请求共享。
type Context struct {
	Config *config.Config
	Logger *logrus.Logger
}

// Production 返回配置是否处于生产模式。
func (rc Context) Production() bool {
	return rc.Config != nil && rc.Config.IsProduction()
}

// Request 是管线读取入站请求所需的方法集合，由宿主服务器适配。
type Request interface {
	Method() string
	Path() string
	OriginalURL() string
	Hostname() string
	Get(key string) string
	RequestID() string
	Context() context.Context
}

// Response 是管线写出响应所需的方法集合。
// SendString/SendStatus/Redirect 为终结动作，每个请求最多触发一次。
type Response interface {
	Set(key, value string)
	Append(key, value string)
	Status(code int)
	SendString(body string) error
	SendStatus(code int) error
	Redirect(location string, code int) error
}

// EntryResolver 根据请求路径解析应用配置，每次调用都返回新的 AppConfig。
type EntryResolver interface {
	Resolve(path string) (*entries.AppConfig, error)
}
