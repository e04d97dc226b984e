// Package plugins 定义服务端插件与 Entry 插件。
//
// 服务端插件可以替换默认的渲染方法；Entry 插件按 Entry 过滤后包裹根组件。
package plugins

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/any-hub/ssr-gateway/internal/render"
)

// ErrInvalidPlugin 表示插件定义不完整。
var ErrInvalidPlugin = errors.New("invalid plugin")

// ServerPlugin 作用于整个进程。RenderMethod 为空表示不参与渲染方法选择。
type ServerPlugin struct {
	Name         string
	RenderMethod render.Method
}

// EntryPlugin 作用于部分 Entry；Entries 为空时对所有 Entry 生效。
type EntryPlugin struct {
	Name    string
	Entries []string
	Wrap    render.Wrapper
}

// AppliesTo 判断插件是否作用于指定 Entry。
func (p EntryPlugin) AppliesTo(key string) bool {
	if len(p.Entries) == 0 {
		return true
	}
	for _, k := range p.Entries {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// RenderMethodFrom 返回第一个提供渲染方法的服务端插件的方法。
// 多个插件同时提供时保留第一个并输出警告；都没有时返回 nil，由渲染方使用默认方法。
func RenderMethodFrom(logger *logrus.Logger, list []ServerPlugin) render.Method {
	var (
		method   render.Method
		selected string
		ignored  []string
	)
	for _, p := range list {
		if p.RenderMethod == nil {
			continue
		}
		if method == nil {
			method = p.RenderMethod
			selected = p.Name
			continue
		}
		ignored = append(ignored, p.Name)
	}
	if len(ignored) > 0 && logger != nil {
		logger.WithFields(logrus.Fields{
			"action":   "render_method",
			"selected": selected,
			"ignored":  ignored,
		}).Warn("multiple server plugins provide a render method, using the first one")
	}
	return method
}

// ForEntry 返回作用于 key 的 Entry 插件，保持注册顺序。
func ForEntry(list []EntryPlugin, key string) []EntryPlugin {
	var out []EntryPlugin
	for _, p := range list {
		if p.AppliesTo(key) {
			out = append(out, p)
		}
	}
	return out
}

// Wrappers 提取插件的包裹函数，跳过未提供 Wrap 的插件。
func Wrappers(list []EntryPlugin) []render.Wrapper {
	var out []render.Wrapper
	for _, p := range list {
		if p.Wrap != nil {
			out = append(out, p.Wrap)
		}
	}
	return out
}

// Validate 一次性报告所有插件定义问题。
func Validate(servers []ServerPlugin, entries []EntryPlugin) error {
	var errs error
	seen := make(map[string]struct{})
	check := func(kind, name string) {
		if strings.TrimSpace(name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s plugin without name", ErrInvalidPlugin, kind))
			return
		}
		id := kind + "/" + name
		if _, ok := seen[id]; ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: duplicate %s plugin %q", ErrInvalidPlugin, kind, name))
		}
		seen[id] = struct{}{}
	}
	for _, p := range servers {
		check("server", p.Name)
	}
	for _, p := range entries {
		check("entry", p.Name)
		if p.Wrap == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: entry plugin %q has no wrapper", ErrInvalidPlugin, p.Name))
		}
	}
	return errs
}
