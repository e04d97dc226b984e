package renderer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
)

// fail 是管线的错误边界：执行 error 扩展点、记录日志，再把原始错误交给错误响应方一次。
// 终结动作已经发生时（例如发送正文失败）不会再次响应，而是把错误交还宿主。
func (m *Middleware) fail(ctx context.Context, req Request, res *guardedResponse, state *requestState, err error) error {
	state.failing = true
	fields := m.requestFields(req, state)
	reported := m.observeError(ctx, err, fields)
	m.rc.Logger.WithFields(fields).Errorf("render_failed: %+v", reported)

	if res.terminated {
		return err
	}
	if rerr := m.collab.ErrorResponder(m.rc, req, res, err); rerr != nil {
		return fmt.Errorf("error responder: %w", rerr)
	}
	return nil
}

// observeError 让 error 扩展点观察或标注错误。扩展点返回 nil、失败或 panic 时沿用原始错误。
func (m *Middleware) observeError(ctx context.Context, err error, fields logrus.Fields) (reported error) {
	reported = err
	defer func() {
		if r := recover(); r != nil {
			m.rc.Logger.WithFields(fields).Warnf("error hook panicked: %v", r)
			reported = err
		}
	}()

	annotated, hookErr := hooks.Apply(ctx, m.hooks, hooks.Error, err)
	if hookErr != nil {
		m.rc.Logger.WithFields(fields).WithError(hookErr).Warn("error hook failed")
		return err
	}
	if annotated == nil {
		return err
	}
	return annotated
}
