package renderer

import (
	"context"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/any-hub/ssr-gateway/internal/config"
	"github.com/any-hub/ssr-gateway/internal/entries"
	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/render"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
	"github.com/any-hub/ssr-gateway/internal/routing"
	"github.com/any-hub/ssr-gateway/internal/store"
)

type fakeRequest struct {
	method  string
	path    string
	url     string
	headers map[string]string
}

func newRequest(path string) *fakeRequest {
	return &fakeRequest{method: "GET", path: path, url: path, headers: map[string]string{}}
}

func (r *fakeRequest) Method() string           { return r.method }
func (r *fakeRequest) Path() string             { return r.path }
func (r *fakeRequest) OriginalURL() string      { return r.url }
func (r *fakeRequest) Hostname() string         { return "shop.test" }
func (r *fakeRequest) Get(key string) string    { return r.headers[key] }
func (r *fakeRequest) RequestID() string        { return "req-1" }
func (r *fakeRequest) Context() context.Context { return context.Background() }

// action 记录一次终结动作。
type action struct {
	kind     string
	code     int
	body     string
	location string
}

type fakeResponse struct {
	headers map[string]string
	status  int
	actions []action
	sendErr error
}

func newResponse() *fakeResponse {
	return &fakeResponse{headers: map[string]string{}}
}

func (r *fakeResponse) Set(key, value string)    { r.headers[key] = value }
func (r *fakeResponse) Append(key, value string) { r.headers[key] = value }
func (r *fakeResponse) Status(code int)          { r.status = code }

func (r *fakeResponse) SendString(body string) error {
	r.actions = append(r.actions, action{kind: "send", code: r.status, body: body})
	return r.sendErr
}

func (r *fakeResponse) SendStatus(code int) error {
	r.status = code
	r.actions = append(r.actions, action{kind: "status", code: code})
	return r.sendErr
}

func (r *fakeResponse) Redirect(location string, code int) error {
	r.actions = append(r.actions, action{kind: "redirect", code: code, location: location})
	return r.sendErr
}

type resolverFunc func(path string) (*entries.AppConfig, error)

func (f resolverFunc) Resolve(path string) (*entries.AppConfig, error) { return f(path) }

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// harness 用桩协作方组装中间件，并记录每个协作方的调用情况。
type harness struct {
	t       *testing.T
	logger  *logrus.Logger
	logs    *test.Hook
	hooks   *hooks.Registry
	params  Params
	entry   *entries.EntryOptions
	reducer store.Reducers

	resolveCalls int
	storeCalls   int
	matchCalls   int
	renderCalls  int
	helpCalls    int
	responded    []error

	clientOpts  *httpclient.Options
	middlewares []store.Middleware
	thunk       store.Middleware
	devMode     bool
	renderOpts  render.Options
	entryArgs   render.EntryArgs
	appCtx      render.AppContext

	status    int
	out       render.Output
	renderErr error
	renderFn  func() (render.Output, error)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, logs := test.NewNullLogger()
	h := &harness{
		t:      t,
		logger: logger,
		logs:   logs,
		hooks:  hooks.NewRegistry(),
		status: 200,
		out:    render.Output{ResponseString: "<html/>"},
	}

	h.params = Params{
		Context: Context{Config: &config.Config{}, Logger: logger},
		Entries: resolverFunc(func(string) (*entries.AppConfig, error) {
			h.resolveCalls++
			return &entries.AppConfig{
				Component: text("layout"),
				Name:      "Shop",
				Key:       "shop",
				Config:    h.entry,
				Reducers:  h.reducer,
				Routes:    h.routes,
			}, nil
		}),
		Hooks: h.hooks,
		Collaborators: Collaborators{
			Matcher: routing.MatcherFunc(func(ctx context.Context, path string, table routing.Table) (routing.Result, error) {
				h.matchCalls++
				return routing.Match(table, path), nil
			}),
			HTTPClient: func(opts *httpclient.Options, req Request, res Response) *httpclient.Client {
				h.clientOpts = opts
				return httpclient.New(opts, req, res)
			},
			Store: func(client *httpclient.Client, reducers func() store.Reducers, middlewares []store.Middleware, subscribe store.SubscribeFn, devMode bool, thunk store.Middleware) *store.Store {
				h.storeCalls++
				h.middlewares = middlewares
				h.thunk = thunk
				h.devMode = devMode
				return store.New(client, reducers, middlewares, subscribe, devMode, thunk)
			},
			StatusCode: func(*store.Store, *routing.Route) int { return h.status },
			Render: func(_ context.Context, _ *logrus.Logger, _ render.Request, app render.AppContext, entry render.EntryArgs, _ render.AssetsArgs, opts render.Options) (render.Output, error) {
				h.renderCalls++
				h.appCtx = app
				h.entryArgs = entry
				h.renderOpts = opts
				if h.renderFn != nil {
					return h.renderFn()
				}
				return h.out, h.renderErr
			},
			ErrorResponder: func(_ Context, _ Request, res Response, err error) error {
				h.responded = append(h.responded, err)
				res.Status(500)
				return res.SendString("error page")
			},
			HelpText: func(text []string, logger *logrus.Logger) {
				h.helpCalls++
			},
		},
	}
	return h
}

func (h *harness) routes(st *store.Store, _ *httpclient.Client) routing.Table {
	return routing.Table{
		{Path: "/", Name: "home", Component: text("home")},
		{Path: "/products/:id", Name: "product", Component: text("product")},
		{
			Path: "/gone",
			Name: "gone",
			OnEnter: func(context.Context, routing.Location) error {
				return st.Dispatch(store.SetStatusCode(410))
			},
		},
	}
}

func (h *harness) middleware() *Middleware {
	h.t.Helper()
	m, err := New(h.params)
	if err != nil {
		h.t.Fatalf("New 失败: %v", err)
	}
	return m
}

func (h *harness) errorLogs() []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range h.logs.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			out = append(out, e)
		}
	}
	return out
}
