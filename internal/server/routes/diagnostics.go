package routes

import (
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/ssr-gateway/internal/entries"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
)

// EntryLister 是诊断接口读取入口挂载信息所需的视图，*entries.Catalog 满足该接口。
type EntryLister interface {
	List() []entries.Mount
}

// RegisterDiagnosticsRoutes 暴露 /-/entries 与 /-/hooks 诊断接口，供 SRE 查询入口挂载与扩展点注册情况。
func RegisterDiagnosticsRoutes(app *fiber.App, catalog EntryLister, registry *hooks.Registry) {
	if app == nil || catalog == nil {
		return
	}

	app.Get("/-/entries", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"entries": encodeEntries(catalog.List()),
		})
	})

	app.Get("/-/entries/:key", func(c fiber.Ctx) error {
		key := strings.ToLower(strings.TrimSpace(c.Params("key")))
		if key == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "entry_key_required"})
		}
		for _, m := range catalog.List() {
			if m.Key == key {
				return c.JSON(encodeEntry(m))
			}
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "entry_not_found"})
	})

	app.Get("/-/hooks", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"frozen": registry.Frozen(),
			"points": registry.Snapshot(),
		})
	})
}

type entryPayload struct {
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	Path        string             `json:"path"`
	Description string             `json:"description,omitempty"`
	HTTPClient  *httpClientPayload `json:"http_client,omitempty"`
	CustomRedux bool               `json:"custom_redux_options"`
}

type httpClientPayload struct {
	BaseURL        string   `json:"base_url,omitempty"`
	TimeoutSeconds int64    `json:"timeout_seconds,omitempty"`
	ForwardHeaders []string `json:"forward_headers,omitempty"`
}

func encodeEntries(mounts []entries.Mount) []entryPayload {
	if len(mounts) == 0 {
		return nil
	}
	sort.Slice(mounts, func(i, j int) bool {
		return mounts[i].Key < mounts[j].Key
	})
	result := make([]entryPayload, 0, len(mounts))
	for _, m := range mounts {
		result = append(result, encodeEntry(m))
	}
	return result
}

func encodeEntry(m entries.Mount) entryPayload {
	payload := entryPayload{
		Key:         m.Key,
		Name:        m.Name,
		Path:        m.Path,
		Description: m.Definition.Description,
		CustomRedux: m.Options.ReduxOptions != nil,
	}
	if opts := m.Options.HTTPClient; !opts.Empty() {
		payload.HTTPClient = &httpClientPayload{
			BaseURL:        opts.BaseURL,
			TimeoutSeconds: int64(opts.Timeout / time.Second),
			ForwardHeaders: append([]string(nil), opts.ForwardHeaders...),
		}
	}
	return payload
}
