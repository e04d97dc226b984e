// Package server hosts the Fiber HTTP service in front of the render pipeline.
// It installs panic recovery and request IDs, adapts fiber.Ctx to the
// renderer's Request/Response views, and leaves the /-/ prefix to the
// diagnostics routes registered by package routes.
package server
