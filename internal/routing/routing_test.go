package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var page = templ.NopComponent

func sampleTable(onEnter func(name string) OnEnterFunc) Table {
	return Table{
		{
			Path:    "/",
			Name:    "layout",
			OnEnter: onEnter("layout"),
			Children: []Route{
				{Path: "", Name: "home", Component: page},
				{Path: "products/:id", Name: "product", Component: page, OnEnter: onEnter("product")},
				{Path: "old", Name: "old", Redirect: "/new", Status: 302},
			},
		},
	}
}

func TestMatchStaticAndParams(t *testing.T) {
	table := sampleTable(func(string) OnEnterFunc { return nil })

	res := Match(table, "/")
	require.True(t, res.Found())
	assert.Equal(t, "home", res.Route.Name)
	assert.Len(t, res.Branch, 2)

	res = Match(table, "/products/42/")
	require.True(t, res.Found())
	assert.Equal(t, "product", res.Route.Name)
	assert.Equal(t, "42", res.Params["id"])
	assert.Equal(t, "layout", res.Branch[0].Route.Name)
}

func TestMatchWithoutCatchAllIsNotFound(t *testing.T) {
	table := sampleTable(func(string) OnEnterFunc { return nil })

	res := Match(table, "/missing/page")
	assert.False(t, res.Found())
	assert.Nil(t, res.Branch)
}

func TestCatchAllMatchesRemainder(t *testing.T) {
	table := append(sampleTable(func(string) OnEnterFunc { return nil }), Route{Path: "*", Name: "not-found", Component: page, Status: 404})

	res := Match(table, "/missing/page")
	require.True(t, res.Found())
	assert.Equal(t, "not-found", res.Route.Name)
	assert.Equal(t, "missing/page", res.Params["*"])
}

func TestRunOnEnterFollowsBranchOrder(t *testing.T) {
	var calls []string
	table := sampleTable(func(name string) OnEnterFunc {
		return func(_ context.Context, loc Location) error {
			calls = append(calls, name+":"+loc.Params["id"])
			return nil
		}
	})

	res := Match(table, "/products/7")
	require.True(t, res.Found())
	require.NoError(t, RunOnEnter(context.Background(), res.Branch, Location{Path: "/products/7", Params: res.Params}))
	assert.Equal(t, []string{"layout:7", "product:7"}, calls)
}

func TestRunOnEnterStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	table := sampleTable(func(name string) OnEnterFunc {
		return func(context.Context, Location) error {
			calls = append(calls, name)
			if name == "layout" {
				return boom
			}
			return nil
		}
	})

	res := Match(table, "/products/7")
	err := RunOnEnter(context.Background(), res.Branch, Location{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"layout"}, calls)
}

func TestDefaultMatcherHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DefaultMatcher.Match(ctx, "/", sampleTable(func(string) OnEnterFunc { return nil }))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	table := Table{
		{Path: "/*/x", Component: page},
		{Path: "/empty"},
		{Path: "/bad-status", Component: page, Status: 42},
	}

	err := table.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRoute)
	assert.Contains(t, err.Error(), "catch-all")
	assert.Contains(t, err.Error(), "needs a component")
	assert.Contains(t, err.Error(), "status 42")

	assert.NoError(t, sampleTable(func(string) OnEnterFunc { return nil }).Validate())
}
