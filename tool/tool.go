// Package tool implements the invocable capability subsystem: named tools
// with schema validated arguments, permission groups for coarse-grained
// access control, and the container that registers tools and resolves
// role based authorization.
package tool

import (
	"fmt"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/internal/util"
)

// Tool defines the interface for invocable capabilities.
//
// Tools are registered with a Container and submitted for execution by name
// through a task executor. Each tool belongs to one or more permission
// groups; a submitter's role must resolve to at least one of those groups
// (or hold the wildcard) for submission to be authorized.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe if used concurrently
//   - Follow consistent naming conventions
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// This schema is used for parameter validation before execution.
	Parameters() map[string]interface{}

	// Groups returns the permission groups this tool belongs to. A tool with
	// no groups is reachable only by roles holding the wildcard group.
	Groups() []string

	// Call executes the tool with structured arguments and ToolContext.
	// Arguments are validated against the tool's schema before invocation.
	Call(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string      `json:"tool"`              // Name of the tool that failed
	Message string      `json:"message"`           // Error message
	Code    string      `json:"code"`              // Error code for categorization
	Details interface{} `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
