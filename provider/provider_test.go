package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/tool"
)

const sampleConfig = `
providers:
  - id: claude-main
    type: anthropic
    model: claude-3-5-sonnet-20241022
    capabilities: [completion, summarize]
    priority: 10
  - id: gpt-fallback
    type: openai
    model: gpt-4o-mini
    capabilities: [completion]
    priority: 5
  - id: gpt-batch
    type: openai
    model: gpt-4o-mini
    endpoint: https://batch.example.com/v1
    capabilities: [completion]
    priority: 5
`

func TestLoadConfig(t *testing.T) {
	cfgs, err := LoadConfig(strings.NewReader(sampleConfig))
	require.NoError(t, err)
	require.Len(t, cfgs, 3)

	assert.Equal(t, "claude-main", cfgs[0].ID)
	assert.Equal(t, "anthropic", cfgs[0].Type)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfgs[0].Model)
	assert.Equal(t, 10, cfgs[0].Priority)
	assert.True(t, cfgs[0].HasCapability("summarize"))
	assert.False(t, cfgs[0].HasCapability("transcribe"))

	assert.Equal(t, "https://batch.example.com/v1", cfgs[2].Endpoint)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"missing id", "providers:\n  - type: openai\n"},
		{"missing type", "providers:\n  - id: a\n"},
		{"duplicate id", "providers:\n  - id: a\n    type: openai\n  - id: a\n    type: anthropic\n"},
		{"unknown field", "providers:\n  - id: a\n    type: openai\n    shenanigans: true\n"},
		{"malformed yaml", "providers: ["},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestRegistrySelectOrdersByPriority(t *testing.T) {
	cfgs, err := LoadConfig(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.AddAll(cfgs))

	selected := r.Select("completion")
	require.Len(t, selected, 3)
	assert.Equal(t, "claude-main", selected[0].ID)
	// Equal priorities keep registration order.
	assert.Equal(t, "gpt-fallback", selected[1].ID)
	assert.Equal(t, "gpt-batch", selected[2].ID)

	summarizers := r.Select("summarize")
	require.Len(t, summarizers, 1)
	assert.Equal(t, "claude-main", summarizers[0].ID)

	assert.Empty(t, r.Select("transcribe"))
}

func TestRegistryAddAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(Config{ID: "a", Type: "openai"}))

	err := r.Add(Config{ID: "a", Type: "anthropic"})
	assert.ErrorIs(t, err, ErrDuplicateProvider)

	err = r.Add(Config{Type: "anthropic"})
	assert.Error(t, err)

	cfg, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Type)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegistryBuild(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(Config{ID: "a", Type: "fake", Model: "fake-1"}))
	require.NoError(t, r.Add(Config{ID: "b", Type: "unbuildable"}))

	r.RegisterBuilder("fake", func(cfg Config) (tool.Tool, error) {
		return tool.NewFunctionTool(
			cfg.ID, "Fake provider tool.",
			map[string]any{"type": "object"},
			[]string{"public"},
			func(_ *core.ToolContext, _ map[string]any) (any, error) {
				return cfg.Model, nil
			},
		), nil
	})

	built, err := r.Build("a")
	require.NoError(t, err)
	assert.Equal(t, "a", built.Name())

	_, err = r.Build("b")
	assert.ErrorIs(t, err, ErrNoBuilder)

	_, err = r.Build("missing")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
