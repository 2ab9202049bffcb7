package tool

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/toolmesh/core"
	"github.com/stretchr/testify/assert"
)

func namedTool(name string, groups ...string) Tool {
	return NewFunctionTool(name, "test tool "+name, map[string]any{"type": "object", "properties": map[string]any{}}, groups, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return name, nil
	})
}

func TestContainer_RegisterAndGet(t *testing.T) {
	c := NewContainer()
	c.Register(namedTool("calc", "public"))

	got, err := c.Get("calc")
	assert.NoError(t, err)
	assert.Equal(t, "calc", got.Name())

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContainer_ListInsertionOrder(t *testing.T) {
	c := NewContainer()
	c.Register(namedTool("alpha"))
	c.Register(namedTool("beta"))
	c.Register(namedTool("gamma"))

	names := make([]string, 0, 3)
	for _, tl := range c.List() {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
}

func TestContainer_ReRegisterOverwritesKeepingPosition(t *testing.T) {
	c := NewContainer()
	c.Register(namedTool("alpha", "public"))
	c.Register(namedTool("beta"))
	c.Register(namedTool("alpha", "private")) // overwrite

	tools := c.List()
	assert.Len(t, tools, 2)
	assert.Equal(t, "alpha", tools[0].Name())
	assert.Equal(t, []string{"private"}, tools[0].Groups())
}

func TestContainer_Authorize(t *testing.T) {
	c := NewContainer()
	c.Register(namedTool("calc", "public"))
	c.Register(namedTool("wipe", "admin-only"))
	c.ConfigureRoles([]RoleDefinition{
		{Name: "user", Label: "User", AllowedGroups: []string{"public"}},
		{Name: "admin", Label: "Administrator", AllowedGroups: []string{WildcardGroup}},
	}, "user")

	assert.True(t, c.Authorize("user", "calc"))
	assert.False(t, c.Authorize("user", "wipe"))

	// Wildcard grants everything without group enumeration.
	assert.True(t, c.Authorize("admin", "calc"))
	assert.True(t, c.Authorize("admin", "wipe"))

	// Unknown role and unknown tool both answer false, not an error.
	assert.False(t, c.Authorize("ghost", "calc"))
	assert.False(t, c.Authorize("user", "missing"))

	// Empty role falls back to the configured default role.
	assert.True(t, c.Authorize("", "calc"))
	assert.False(t, c.Authorize("", "wipe"))
}

func TestContainer_RoleLookup(t *testing.T) {
	c := NewContainer()
	c.ConfigureRoles([]RoleDefinition{
		{Name: "user", Label: "User", AllowedGroups: []string{"public"}},
	}, "user")

	r, ok := c.Role("user")
	assert.True(t, ok)
	assert.Equal(t, "User", r.Label)

	r, ok = c.Role("")
	assert.True(t, ok)
	assert.Equal(t, "user", r.Name)

	_, ok = c.Role("ghost")
	assert.False(t, ok)
}

func TestContainer_ConfigureRolesReplacesTable(t *testing.T) {
	c := NewContainer()
	c.Register(namedTool("calc", "public"))
	c.ConfigureRoles([]RoleDefinition{
		{Name: "user", AllowedGroups: []string{"public"}},
	}, "user")
	assert.True(t, c.Authorize("user", "calc"))

	// Installing a new table drops roles absent from it.
	c.ConfigureRoles([]RoleDefinition{
		{Name: "auditor", AllowedGroups: []string{"reports"}},
	}, "auditor")
	assert.False(t, c.Authorize("user", "calc"))
	assert.False(t, c.Authorize("auditor", "calc"))
}

func TestContainer_ConcurrentReadersAndWriters(t *testing.T) {
	c := NewContainer()
	c.ConfigureRoles([]RoleDefinition{
		{Name: "user", AllowedGroups: []string{"public"}},
	}, "user")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Register(namedTool(fmt.Sprintf("tool-%d", i), "public"))
		}(i)
		go func(i int) {
			defer wg.Done()
			// Readers must never observe a half-updated table; Authorize
			// answers true or false but never panics mid-registration.
			_ = c.Authorize("user", fmt.Sprintf("tool-%d", i))
			_, _ = c.Get(fmt.Sprintf("tool-%d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.List(), 20)
}
