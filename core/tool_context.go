package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/toolmesh/logging"
)

// ToolContext provides a constrained, auditable surface for tool / capability
// implementations invoked by the task executor. It carries the identity of
// the submitting token and the task correlation metadata without exposing the
// executor's internal task table.
type ToolContext struct {
	ctx       context.Context
	token     string
	roleInfo  RoleInfo
	taskID    string
	requestID string
	metadata  map[string]string

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to the submitting token and
// the task it executes under. A nil logger is replaced by a NoOpLogger.
func NewToolContext(
	ctx context.Context,
	token string,
	roleInfo RoleInfo,
	taskID, requestID string,
	metadata map[string]string,
	logger logging.Logger,
) *ToolContext {
	return &ToolContext{
		ctx:           ctx,
		token:         token,
		roleInfo:      roleInfo,
		taskID:        taskID,
		requestID:     requestID,
		metadata:      metadata,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Context returns the context associated with the tool invocation. It is
// cancelled when the owning executor shuts down.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// Token returns the value of the token that submitted the task.
func (tc *ToolContext) Token() string { return tc.token }

// Role returns the role bound to the submitting token at submission time.
func (tc *ToolContext) Role() RoleInfo { return tc.roleInfo }

// TaskID returns the task ID associated with the tool invocation.
func (tc *ToolContext) TaskID() string { return tc.taskID }

// RequestID returns the optional caller-supplied correlation id.
func (tc *ToolContext) RequestID() string { return tc.requestID }

// Metadata returns the value and existence flag for a metadata key attached
// to the submission.
func (tc *ToolContext) Metadata(key string) (string, bool) {
	v, ok := tc.metadata[key]
	return v, ok
}

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.ctx == nil || tc.token == "" || tc.taskID == "" {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}
