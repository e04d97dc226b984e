package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/ssr-gateway/internal/entries"
	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
)

type staticLister []entries.Mount

func (s staticLister) List() []entries.Mount { return append([]entries.Mount(nil), s...) }

func sampleMounts() staticLister {
	return staticLister{
		{Key: "shop", Name: "Shop", Path: "/shop", Options: entries.EntryOptions{
			HTTPClient: &httpclient.Options{BaseURL: "http://api.local", Timeout: 5 * time.Second},
		}},
		{Key: "blog", Name: "Blog", Path: "/blog", Definition: entries.Definition{Description: "articles"}},
	}
}

func TestEncodeEntriesSortsByKey(t *testing.T) {
	encoded := encodeEntries(sampleMounts().List())
	if len(encoded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(encoded))
	}
	if encoded[0].Key != "blog" || encoded[1].Key != "shop" {
		t.Fatalf("expected sorted keys, got %s,%s", encoded[0].Key, encoded[1].Key)
	}
	if encoded[0].HTTPClient != nil {
		t.Fatalf("blog has no http client override")
	}
	if encoded[1].HTTPClient == nil || encoded[1].HTTPClient.TimeoutSeconds != 5 {
		t.Fatalf("expected shop http client payload, got %+v", encoded[1].HTTPClient)
	}
}

func TestDiagnosticsEndpoints(t *testing.T) {
	registry := hooks.NewRegistry()
	hooks.MustRegister(registry, hooks.PreRedirect, func(_ context.Context, v string) (string, error) { return v, nil })
	registry.Freeze()

	app := fiber.New()
	RegisterDiagnosticsRoutes(app, sampleMounts(), registry)

	var list struct {
		Entries []entryPayload `json:"entries"`
	}
	getJSON(t, app, "/-/entries", fiber.StatusOK, &list)
	if len(list.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list.Entries))
	}

	var detail entryPayload
	getJSON(t, app, "/-/entries/SHOP", fiber.StatusOK, &detail)
	if detail.Path != "/shop" {
		t.Fatalf("unexpected entry detail %+v", detail)
	}

	var missing map[string]string
	getJSON(t, app, "/-/entries/nope", fiber.StatusNotFound, &missing)
	if missing["error"] != "entry_not_found" {
		t.Fatalf("unexpected error payload %v", missing)
	}

	var status struct {
		Frozen bool           `json:"frozen"`
		Points map[string]int `json:"points"`
	}
	getJSON(t, app, "/-/hooks", fiber.StatusOK, &status)
	if !status.Frozen {
		t.Fatalf("registry should be reported as frozen")
	}
	if status.Points["preRedirect"] != 1 || status.Points["postRender"] != 0 {
		t.Fatalf("unexpected hook counts %v", status.Points)
	}
}

func getJSON(t *testing.T, app *fiber.App, path string, wantStatus int, out any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("app.Test(%s) failed: %v", path, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s: expected %d, got %d", path, wantStatus, resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("%s: decode failed: %v (%s)", path, err, string(body))
	}
}
