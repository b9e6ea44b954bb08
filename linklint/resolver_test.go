package linklint

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleKinds(t *testing.T) {
	require.Equal(t, []string{KindClass, KindException, KindType}, RoleKinds("class"))
	require.Equal(t, []string{KindClass, KindException}, RoleKinds("exc"))
	require.Equal(t, []string{KindMethod, KindClassMethod, KindStaticMethod}, RoleKinds("meth"))
	require.Equal(t, []string{KindModule}, RoleKinds("mod"))
	require.Empty(t, RoleKinds("ref"))

	kinds := RoleKinds("func")
	kinds[0] = "changed"
	require.Equal(t, KindFunction, RoleKinds("func")[0])
}

func TestRoles(t *testing.T) {
	require.Equal(t, []string{
		"_prop", "attr", "class", "data", "exc", "func", "meth", "mod", "obj", "type",
	}, Roles())
}

func TestResolver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := NewResolver([]Region{
		{Kind: KindClass, Name: "Queue", Start: 1, EndMain: 3, EndTotal: 9},
		{Kind: KindMethod, Name: "Queue.put", Start: 4, EndMain: 6, EndTotal: 6},
		{Kind: KindException, Name: "Error", Start: 10, EndMain: 12, EndTotal: 12},
		{Kind: KindMethod, Name: "Queue.put", Start: 7, EndMain: 9, EndTotal: 9},
	}, WithLogger(logger))

	region, ok := r.FindRegion("class", "Queue")
	require.True(t, ok)
	require.Equal(t, 1, region.Start)

	// :class: falls back to exceptions.
	region, ok = r.FindRegion("class", "Error")
	require.True(t, ok)
	require.Equal(t, KindException, region.Kind)

	region, ok = r.FindRegion("meth", "Queue.put")
	require.True(t, ok)
	require.Equal(t, 7, region.Start, "later duplicate wins")
	require.Contains(t, buf.String(), "duplicate region")

	_, ok = r.FindRegion("func", "Queue")
	require.False(t, ok)
	_, ok = r.FindRegion("ref", "Queue")
	require.False(t, ok)
}

func TestRegionContains(t *testing.T) {
	r := Region{Start: 3, EndMain: 5, EndTotal: 8}
	require.False(t, r.Contains(2))
	require.True(t, r.Contains(3))
	require.True(t, r.Contains(8))
	require.False(t, r.Contains(9))
}
