package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/ssr-gateway/internal/renderer"
)

// RenderHandler describes the component that renders a page for a request.
// It allows injecting fake handlers during tests.
type RenderHandler interface {
	Handle(renderer.Request, renderer.Response) error
}

// RenderHandlerFunc adapts a function to the RenderHandler interface.
type RenderHandlerFunc func(renderer.Request, renderer.Response) error

// Handle makes RenderHandlerFunc satisfy RenderHandler.
func (f RenderHandlerFunc) Handle(req renderer.Request, res renderer.Response) error {
	return f(req, res)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger     *logrus.Logger
	Handler    RenderHandler
	ListenPort int
}

const (
	contextKeyRequestID = "_ssr_request_id"
	headerRequestID     = "X-Request-ID"
)

// NewApp builds a Fiber application that forwards every non-diagnostics
// request to the render handler.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Handler == nil {
		return nil, errors.New("render handler is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	app.All("/*", func(c fiber.Ctx) error {
		if isDiagnosticsPath(string(c.Request().URI().Path())) {
			return c.Next()
		}
		// Handle 返回的错误都发生在终结动作之后，只记录日志，
		// 交给 Fiber ErrorHandler 会覆盖已经写好的响应。
		if err := opts.Handler.Handle(NewRequest(c), NewResponse(c)); err != nil {
			opts.Logger.WithError(err).
				WithFields(logrus.Fields{
					"action":     "render",
					"path":       c.Path(),
					"request_id": RequestID(c),
				}).
				Warn("response_send_failed")
		}
		return nil
	})

	return app, nil
}

// requestContextMiddleware 负责生成请求 ID；上游已携带 X-Request-ID 时沿用。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := strings.TrimSpace(c.Get(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(contextKeyRequestID, reqID)
		c.Set(headerRequestID, reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
