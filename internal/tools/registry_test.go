// ABOUTME: Tests for the tool registry: collisions, placeholder coverage, and the shipped catalog.

package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTool(name, path string, params []Param) HTTPTool {
	return HTTPTool{Definition{
		Name:         name,
		Description:  "a test tool",
		InputSchema:  json.RawMessage(`{"type":"object"}`),
		Method:       "GET",
		PathTemplate: path,
		Params:       params,
	}}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(testTool("alpha", "learn/v1/things", nil)))

	got, err := r.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Def().Name)

	_, err = r.Get("missing")
	require.ErrorIs(t, err, ErrToolNotFound)
}

func TestRegisterCollision(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(testTool("dup", "a", nil)))
	err := r.Register(testTool("dup", "b", nil))
	require.ErrorIs(t, err, ErrToolCollision)
}

func TestRegisterPlaceholderCoverage(t *testing.T) {
	r := NewRegistry(nil)

	t.Run("uncovered placeholder rejected", func(t *testing.T) {
		err := r.Register(testTool("bad1", "a/{x}/b", nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "{x}")
	})

	t.Run("path param without placeholder rejected", func(t *testing.T) {
		err := r.Register(testTool("bad2", "a/b", []Param{{Name: "x", In: InPath}}))
		require.Error(t, err)
	})

	t.Run("duplicate path param rejected", func(t *testing.T) {
		err := r.Register(testTool("bad3", "a/{x}", []Param{
			{Name: "x", In: InPath},
			{Name: "x", In: InPath},
		}))
		require.Error(t, err)
	})

	t.Run("covered placeholders accepted", func(t *testing.T) {
		err := r.Register(testTool("good", "a/{x}/b/{y}", []Param{
			{Name: "x", In: InPath},
			{Name: "y", In: InPath},
		}))
		require.NoError(t, err)
	})
}

func TestListSorted(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(testTool("zeta", "z", nil)))
	require.NoError(t, r.Register(testTool("alpha", "a", nil)))

	names := []string{}
	for _, tool := range r.List() {
		names = append(names, tool.Def().Name)
	}
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestCatalogRegisters(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.RegisterAll(Catalog()))

	// Every catalog schema must be valid JSON and every name unique.
	for _, tool := range r.List() {
		var schema map[string]any
		require.NoError(t, json.Unmarshal(tool.Def().InputSchema, &schema),
			"schema for %s", tool.Def().Name)
	}

	_, err := r.Get("list_courses")
	require.NoError(t, err)
	_, err = r.Get("platform_info")
	require.NoError(t, err)
}
