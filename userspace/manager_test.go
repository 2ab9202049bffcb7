package userspace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/mailbox"
	"github.com/hupe1980/toolmesh/token"
	"github.com/hupe1980/toolmesh/tool"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	container := tool.NewContainer()
	container.ConfigureRoles([]tool.RoleDefinition{
		{Name: "user", Label: "User", AllowedGroups: []string{"public"}},
		{Name: "admin", Label: "Administrator", AllowedGroups: []string{tool.WildcardGroup}},
	}, "user")

	container.Register(tool.NewFunctionTool(
		"echo", "Echoes its input.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		[]string{"public"},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return args["text"], nil
		},
	))

	m := NewManager(token.NewManager(), container, mailbox.NewQueue())
	t.Cleanup(func() { _ = m.Close() })

	return m
}

func TestCreateAndLookupSpace(t *testing.T) {
	m := newTestManager(t)

	space := m.CreateSpace("user", "Alice")
	assert.Equal(t, "user", space.Token().Role)
	assert.Equal(t, "Alice", space.Token().Label)
	assert.NotEmpty(t, space.Token().Value)

	found, err := m.Space(space.Token().Value)
	require.NoError(t, err)
	assert.Same(t, space, found)

	_, err = m.Space("no-such-token")
	assert.ErrorIs(t, err, ErrUnknownSpace)

	assert.Equal(t, 1, m.Count())
}

func TestSpaceExecutesTasks(t *testing.T) {
	m := newTestManager(t)
	space := m.CreateSpace("user", "Alice")

	submitted, err := space.Submit("echo", map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, submitted.Status)

	done, err := space.Wait(context.Background(), submitted.ID, time.Second)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, done.Status)
	assert.Equal(t, "hi", done.Result)

	call, err := space.OriginalCall(submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, space.Token().Value, call.Token)
}

func TestSpacesAreIsolated(t *testing.T) {
	m := newTestManager(t)
	alice := m.CreateSpace("user", "Alice")
	bob := m.CreateSpace("user", "Bob")

	task, err := alice.Submit("echo", map[string]any{"text": "private"})
	require.NoError(t, err)
	_, err = alice.Wait(context.Background(), task.ID, time.Second)
	require.NoError(t, err)

	// Bob's executor has no record of Alice's task.
	_, err = bob.Task(task.ID)
	assert.Error(t, err)

	assert.Equal(t, 1, alice.Stats().Total)
	assert.Equal(t, 0, bob.Stats().Total)
}

func TestSharedContainerVisibleToAllSpaces(t *testing.T) {
	m := newTestManager(t)
	alice := m.CreateSpace("user", "Alice")
	bob := m.CreateSpace("user", "Bob")

	// Register a tool after both spaces exist.
	m.container.Register(tool.NewFunctionTool(
		"ping", "Returns pong.",
		map[string]any{"type": "object"},
		[]string{"public"},
		func(_ *core.ToolContext, _ map[string]any) (any, error) { return "pong", nil },
	))

	for _, space := range []*Space{alice, bob} {
		task, err := space.Submit("ping", nil)
		require.NoError(t, err)
		done, err := space.Wait(context.Background(), task.ID, time.Second)
		require.NoError(t, err)
		assert.Equal(t, "pong", done.Result)
	}
}

func TestSpaceMessaging(t *testing.T) {
	m := newTestManager(t)
	alice := m.CreateSpace("user", "Alice")
	bob := m.CreateSpace("user", "Bob")

	alice.Send("greeting", bob.Token().Value, "hello bob", core.PriorityNormal)
	alice.Send("alert", bob.Token().Value, "urgent", core.PriorityHigh)

	assert.Equal(t, 2, bob.PendingMessages())
	assert.Equal(t, 0, alice.PendingMessages())

	first, ok := bob.Receive()
	require.True(t, ok)
	assert.Equal(t, "urgent", first.Content)
	assert.Equal(t, alice.Token().Value, first.From)

	second, err := bob.ReceiveWait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello bob", second.Content)

	_, ok = bob.Receive()
	assert.False(t, ok)
}

func TestRemoveSpaceRevokesToken(t *testing.T) {
	m := newTestManager(t)
	space := m.CreateSpace("user", "Alice")
	tokenValue := space.Token().Value

	require.NoError(t, m.RemoveSpace(tokenValue))
	assert.Equal(t, 0, m.Count())

	_, err := m.Space(tokenValue)
	assert.ErrorIs(t, err, ErrUnknownSpace)

	// The revoked token no longer authorizes submissions anywhere.
	err = m.RemoveSpace(tokenValue)
	assert.ErrorIs(t, err, ErrUnknownSpace)

	other := m.CreateSpace("user", "Bob")
	_, err = other.executor.Submit(tokenValue, "echo", map[string]any{"text": "x"})
	assert.ErrorIs(t, err, token.ErrUnknownToken)
}
