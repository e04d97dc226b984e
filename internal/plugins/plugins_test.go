package plugins

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/any-hub/ssr-gateway/internal/render"
)

func methodReturning(body string) render.Method {
	return func(context.Context, templ.Component, []string) (render.Result, error) {
		return render.Result{Body: body}, nil
	}
}

func TestRenderMethodFromFirstWins(t *testing.T) {
	logger, hook := test.NewNullLogger()
	method := RenderMethodFrom(logger, []ServerPlugin{
		{Name: "noop"},
		{Name: "styled", RenderMethod: methodReturning("styled")},
		{Name: "other", RenderMethod: methodReturning("other")},
	})
	require.NotNil(t, method)
	res, err := method(context.Background(), templ.NopComponent, nil)
	require.NoError(t, err)
	assert.Equal(t, "styled", res.Body)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "styled", hook.LastEntry().Data["selected"])
}

func TestRenderMethodFromNone(t *testing.T) {
	logger, hook := test.NewNullLogger()
	assert.Nil(t, RenderMethodFrom(logger, []ServerPlugin{{Name: "noop"}}))
	assert.Empty(t, hook.Entries)
	assert.Nil(t, RenderMethodFrom(nil, nil))
}

func TestForEntryFiltersByKey(t *testing.T) {
	wrap := func(c templ.Component) templ.Component { return c }
	list := []EntryPlugin{
		{Name: "all", Wrap: wrap},
		{Name: "shop-only", Entries: []string{"Shop"}, Wrap: wrap},
		{Name: "blog-only", Entries: []string{"blog"}},
	}

	shop := ForEntry(list, "shop")
	require.Len(t, shop, 2)
	assert.Equal(t, "all", shop[0].Name)
	assert.Equal(t, "shop-only", shop[1].Name)

	blog := ForEntry(list, "blog")
	assert.Len(t, blog, 2)
	assert.Len(t, Wrappers(blog), 1)
}

func TestWrappersPreserveOrder(t *testing.T) {
	tag := func(s string) render.Wrapper {
		return func(c templ.Component) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				if _, err := io.WriteString(w, s); err != nil {
					return err
				}
				return c.Render(ctx, w)
			})
		}
	}
	ws := Wrappers([]EntryPlugin{{Name: "a", Wrap: tag("a")}, {Name: "b", Wrap: tag("b")}})
	root := templ.Raw("x")
	for _, w := range ws {
		root = w(root)
	}
	var buf bytes.Buffer
	require.NoError(t, root.Render(context.Background(), &buf))
	assert.Equal(t, "bax", buf.String())
}

func TestValidateAggregatesProblems(t *testing.T) {
	err := Validate(
		[]ServerPlugin{{Name: "styled"}, {Name: "styled"}, {}},
		[]EntryPlugin{{Name: "wrap"}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPlugin)
	assert.Len(t, multierr.Errors(err), 3)

	assert.NoError(t, Validate([]ServerPlugin{{Name: "styled"}}, []EntryPlugin{{Name: "styled", Wrap: func(c templ.Component) templ.Component { return c }}}))
}
