package renderer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/any-hub/ssr-gateway/internal/render"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
)

var errEmptyRedirect = errors.New("redirect location is empty")

// dispatch 根据渲染结果下发唯一的终结动作：重定向，或状态码 + 正文。
func (m *Middleware) dispatch(ctx context.Context, res Response, status int, out render.Output) error {
	if target := out.RedirectURL(); target != "" {
		location, err := hooks.Apply(ctx, m.hooks, hooks.PreRedirect, target)
		if err != nil {
			return fmt.Errorf("pre-redirect hook: %w", err)
		}
		if location == "" {
			return fmt.Errorf("pre-redirect hook: %w", errEmptyRedirect)
		}
		if err := res.Redirect(location, redirectStatus(status)); err != nil {
			return fmt.Errorf("send redirect: %w", err)
		}
		return nil
	}

	res.Set("Content-Type", htmlContentType)
	res.Status(status)
	if err := res.SendString(out.ResponseString); err != nil {
		return fmt.Errorf("send response: %w", err)
	}
	return nil
}

// redirectStatus 保留十进制首位为 3 的状态码（302、3、30 等），其余一律使用 301。
func redirectStatus(code int) int {
	if strings.HasPrefix(strconv.Itoa(code), "3") {
		return code
	}
	return http.StatusMovedPermanently
}
