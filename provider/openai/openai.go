// Package openai exposes the OpenAI Chat Completions API as an invocable
// tool. It mirrors the anthropic adapter: a prompt goes in, the model's text
// comes back.
package openai

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/provider"
	"github.com/hupe1980/toolmesh/tool"
)

// Options configure the OpenAI completion tool. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Name                string
	Description         string
	Groups              []string
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
}

// CompletionTool wraps the OpenAI Chat Completions API behind the tool.Tool
// interface.
type CompletionTool struct {
	client *openai.Client
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

	client := openai.NewClient(clientOpts...)

	return &CompletionTool{
		client: &client,
		opts:   opts,
	}
}

// NewCompletionToolFromClient creates a completion tool from an existing client.
func NewCompletionToolFromClient(client *openai.Client, optFns ...func(o *Options)) *CompletionTool {
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
// provider.BuildFunc for configs of type "openai".
func Build(cfg provider.Config) (tool.Tool, error) {
	return NewCompletionTool(func(o *Options) {
		o.Name = cfg.ID
		if cfg.Model != "" {
			o.Model = cfg.Model
		}
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.Endpoint
	}), nil
}

func defaultOptions() Options {
	return Options{
		Name:                "openai_completion",
		Description:         "Generates a text completion using an OpenAI chat model.",
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
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

// Call sends the prompt to the Chat Completions API and returns the text of
// the first choice.
func (t *CompletionTool) Call(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error) {
	prompt, ok := args["prompt"].(string)
	if !ok || prompt == "" {
		return nil, tool.NewToolError(t.opts.Name, "parameter 'prompt' must be a non-empty string", "VALIDATION_ERROR")
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if system, ok := args["system"].(string); ok && system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               t.opts.Model,
		Temperature:         openai.Float(t.opts.Temperature),
		MaxCompletionTokens: openai.Int(t.opts.MaxCompletionTokens),
	}

	resp, err := t.client.Chat.Completions.New(toolCtx.Context(), params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
