// Package anthropic exposes the Anthropic Messages API as an invocable tool.
package anthropic

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/provider"
	"github.com/hupe1980/toolmesh/tool"
)

// Options configures the Anthropic completion tool (model id, max tokens,
// temperature, credentials). Extend via functional options to preserve
// stability.
type Options struct {
	Name        string
	Description string
	Groups      []string
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	BaseURL     string
}

// CompletionTool wraps the Anthropic Messages API behind the tool.Tool
// interface: a prompt goes in, the model's text comes back.
type CompletionTool struct {
	client *anthropic.Client
	opts   Options
}

var _ tool.Tool = (*CompletionTool)(nil)

// NewCompletionTool creates a completion tool using the official client.
func NewCompletionTool(optFns ...func(o *Options)) *CompletionTool {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)

	return &CompletionTool{
		client: &client,
		opts:   opts,
	}
}

// NewCompletionToolFromClient creates a completion tool from an existing client.
func NewCompletionToolFromClient(client *anthropic.Client, optFns ...func(o *Options)) *CompletionTool {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	return &CompletionTool{
		client: client,
		opts:   opts,
	}
}

// Build turns a provider config into a completion tool. It satisfies
// provider.BuildFunc for configs of type "anthropic".
func Build(cfg provider.Config) (tool.Tool, error) {
	return NewCompletionTool(func(o *Options) {
		o.Name = cfg.ID
		if cfg.Model != "" {
			o.Model = anthropic.Model(cfg.Model)
		}
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.Endpoint
	}), nil
}

func defaultOptions() Options {
	return Options{
		Name:        "anthropic_completion",
		Description: "Generates a text completion using an Anthropic Claude model.",
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Name returns the unique tool name.
func (t *CompletionTool) Name() string { return t.opts.Name }

// Description returns the tool description.
func (t *CompletionTool) Description() string { return t.opts.Description }

// Parameters returns the JSON schema for the completion arguments.
func (t *CompletionTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"prompt": map[string]interface{}{
				"type":        "string",
				"description": "The user prompt to complete",
			},
			"system": map[string]interface{}{
				"type":        "string",
				"description": "Optional system instruction",
			},
		},
		"required": []string{"prompt"},
	}
}

// Groups returns a copy of the permission groups the tool belongs to.
func (t *CompletionTool) Groups() []string {
	groups := make([]string, len(t.opts.Groups))
	copy(groups, t.opts.Groups)
	return groups
}

// Call sends the prompt to the Messages API and returns the concatenated
// text of the response.
func (t *CompletionTool) Call(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error) {
	prompt, ok := args["prompt"].(string)
	if !ok || prompt == "" {
		return nil, tool.NewToolError(t.opts.Name, "parameter 'prompt' must be a non-empty string", "VALIDATION_ERROR")
	}

	params := anthropic.MessageNewParams{
		Model:       t.opts.Model,
		MaxTokens:   t.opts.MaxTokens,
		Temperature: anthropic.Float(t.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if system, ok := args["system"].(string); ok && system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := t.client.Messages.New(toolCtx.Context(), params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return sb.String(), nil
}
