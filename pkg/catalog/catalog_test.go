package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(_ context.Context, _ int64, _ json.RawMessage) (any, error) {
	return nil, nil
}

func TestRegister_ReturnsHandle(t *testing.T) {
	c := New()

	h, err := c.Register("math", "add", noopHandler)
	require.NoError(t, err)
	assert.Equal(t, "math", h.Connector)
	assert.Equal(t, "add", h.Operation)
	assert.Equal(t, 1, c.Len())
}

func TestRegister_DuplicatePairFails(t *testing.T) {
	c := New()

	_, err := c.Register("math", "add", noopHandler)
	require.NoError(t, err)

	_, err = c.Register("math", "add", noopHandler)
	require.ErrorIs(t, err, ErrDuplicateRegistration)

	// Catalog unchanged by the failed call.
	assert.Equal(t, 1, c.Len())
}

func TestRegister_SameOperationDifferentConnector(t *testing.T) {
	c := New()

	_, err := c.Register("math", "add", noopHandler)
	require.NoError(t, err)
	_, err = c.Register("strings", "add", noopHandler)
	require.NoError(t, err)
	_, err = c.Register("math", "sub", noopHandler)
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
}

func TestRegister_InvalidIdentity(t *testing.T) {
	c := New()

	_, err := c.Register("", "add", noopHandler)
	require.Error(t, err)

	_, err = c.Register("math", "", noopHandler)
	require.Error(t, err)

	_, err = c.Register("a/b", "add", noopHandler)
	require.Error(t, err)

	_, err = c.Register("math", "add", nil)
	require.Error(t, err)

	assert.Equal(t, 0, c.Len())
}

func TestSnapshot_FreezesCatalog(t *testing.T) {
	c := New()
	_, err := c.Register("math", "add", noopHandler)
	require.NoError(t, err)

	assert.False(t, c.Frozen())
	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, c.Frozen())

	_, err = c.Register("math", "sub", noopHandler)
	require.ErrorIs(t, err, ErrCatalogFrozen)

	// Later snapshots return the same frozen sequence.
	snap2 := c.Snapshot()
	require.Len(t, snap2, 1)
	assert.Same(t, &snap[0], &snap2[0])
}

func TestSnapshot_PreservesRegistrationOrder(t *testing.T) {
	c := New()
	pairs := [][2]string{
		{"math", "add"},
		{"strings", "upper"},
		{"math", "sub"},
		{"math", "mul"},
	}
	for _, p := range pairs {
		_, err := c.Register(p[0], p[1], noopHandler)
		require.NoError(t, err)
	}

	snap := c.Snapshot()
	require.Len(t, snap, len(pairs))
	for i, p := range pairs {
		assert.Equal(t, p[0], snap[i].Connector)
		assert.Equal(t, p[1], snap[i].Operation)
	}
}

func TestRecipe_DerivedRouteKey(t *testing.T) {
	r := Recipe{Connector: "math", Operation: "add"}
	assert.Equal(t, "math", r.RouteKey())
	assert.Equal(t, "/csp/math", r.Path())

	// Recipes of one connector share the route key.
	r2 := Recipe{Connector: "math", Operation: "sub"}
	assert.Equal(t, r.RouteKey(), r2.RouteKey())
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	c := New()
	c.MustRegister("math", "add", noopHandler)
	assert.Panics(t, func() { c.MustRegister("math", "add", noopHandler) })
}
