package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id generated")
		seen[id] = true
	}
}

func TestOriginalCallClone(t *testing.T) {
	call := OriginalCall{
		Token:    "tok",
		ToolName: "echo",
		Args:     map[string]any{"text": "original"},
		Metadata: map[string]string{"source": "test"},
	}

	cp := call.Clone()
	cp.Args["text"] = "mutated"
	cp.Metadata["source"] = "mutated"

	assert.Equal(t, "original", call.Args["text"])
	assert.Equal(t, "test", call.Metadata["source"])
}

func TestToolContextAccessors(t *testing.T) {
	tc := NewToolContext(
		context.Background(),
		"tok",
		RoleInfo{Role: "user", Label: "Alice"},
		"task-1",
		"req-1",
		map[string]string{"origin": "unit"},
		nil,
	)

	require.NoError(t, tc.Validate())
	assert.Equal(t, "tok", tc.Token())
	assert.Equal(t, "user", tc.Role().Role)
	assert.Equal(t, "task-1", tc.TaskID())
	assert.Equal(t, "req-1", tc.RequestID())
	assert.NotNil(t, tc.Logger(), "nil logger falls back to NoOpLogger")

	origin, ok := tc.Metadata("origin")
	assert.True(t, ok)
	assert.Equal(t, "unit", origin)

	_, ok = tc.Metadata("missing")
	assert.False(t, ok)
}

func TestToolContextValidateRejectsIncomplete(t *testing.T) {
	tc := NewToolContext(context.Background(), "", RoleInfo{}, "", "", nil, nil)
	assert.Error(t, tc.Validate())
}
