package server

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/ssr-gateway/internal/renderer"
)

// fiberRequest 把 fiber.Ctx 适配为 renderer.Request。
type fiberRequest struct {
	c fiber.Ctx
}

// NewRequest wraps c for the render pipeline. The result must not outlive the handler.
func NewRequest(c fiber.Ctx) renderer.Request {
	return fiberRequest{c: c}
}

func (r fiberRequest) Method() string        { return r.c.Method() }
func (r fiberRequest) Path() string          { return r.c.Path() }
func (r fiberRequest) OriginalURL() string   { return r.c.OriginalURL() }
func (r fiberRequest) Hostname() string      { return r.c.Hostname() }
func (r fiberRequest) Get(key string) string { return r.c.Get(key) }
func (r fiberRequest) RequestID() string     { return RequestID(r.c) }

func (r fiberRequest) Context() context.Context {
	if ctx := r.c.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// fiberResponse 把 fiber.Ctx 适配为 renderer.Response。
type fiberResponse struct {
	c fiber.Ctx
}

// NewResponse wraps c for the render pipeline.
func NewResponse(c fiber.Ctx) renderer.Response {
	return fiberResponse{c: c}
}

func (r fiberResponse) Set(key, value string) { r.c.Set(key, value) }
func (r fiberResponse) Status(code int)       { r.c.Status(code) }

// Append 追加一条独立的响应头，多个 Set-Cookie 不会被合并成一行。
func (r fiberResponse) Append(key, value string) {
	r.c.Response().Header.Add(key, value)
}

func (r fiberResponse) SendString(body string) error {
	return r.c.SendString(body)
}

func (r fiberResponse) SendStatus(code int) error {
	return r.c.SendStatus(code)
}

func (r fiberResponse) Redirect(location string, code int) error {
	return r.c.Redirect().Status(code).To(location)
}
