package core

import "time"

// TaskStatus describes the lifecycle position of a Task. Transitions are
// monotonic: pending -> running -> {completed | failed}, with cancelled as an
// alternative terminal state reachable from pending or running. Terminal
// states are sticky; a task never leaves one.
type TaskStatus string

const (
	// StatusPending marks a task accepted for execution but not yet started.
	StatusPending TaskStatus = "pending"
	// StatusRunning marks a task whose capability is currently executing.
	StatusRunning TaskStatus = "running"
	// StatusCompleted marks a task whose capability returned a result.
	StatusCompleted TaskStatus = "completed"
	// StatusFailed marks a task whose capability returned an error.
	StatusFailed TaskStatus = "failed"
	// StatusCancelled marks a task cancelled before its capability completed.
	StatusCancelled TaskStatus = "cancelled"
)

// Terminal reports whether the status is a terminal (sticky) state.
func (s TaskStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// OriginalCall is the immutable snapshot of a task's submission-time inputs,
// retained for audit after completion regardless of later task state.
type OriginalCall struct {
	Token     string            `json:"token"`
	ToolName  string            `json:"tool_name"`
	Args      map[string]any    `json:"args,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Submitted time.Time         `json:"submitted"`
}

// Clone returns a deep copy so callers can never mutate the retained snapshot.
func (c OriginalCall) Clone() OriginalCall {
	cp := c
	if c.Args != nil {
		cp.Args = make(map[string]any, len(c.Args))
		for k, v := range c.Args {
			cp.Args[k] = v
		}
	}
	if c.Metadata != nil {
		cp.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			cp.Metadata[k] = v
		}
	}
	return cp
}

// Task is the caller-visible record of one asynchronous tool invocation.
// Values returned from the executor are point-in-time copies; only the
// executor's own completion handlers mutate the underlying record.
//
// Seq is assigned in submission order and is strictly increasing per
// executor; execution and completion order are not guaranteed to match it.
type Task struct {
	ID            string            `json:"id"`
	Seq           uint64            `json:"seq"`
	Token         string            `json:"token"`
	ToolName      string            `json:"tool_name"`
	Args          map[string]any    `json:"args,omitempty"`
	Status        TaskStatus        `json:"status"`
	Priority      int               `json:"priority,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	Result        any               `json:"result,omitempty"`
	Error         string            `json:"error,omitempty"`
	ExecutionTime time.Duration     `json:"execution_time,omitempty"`
	Submitted     time.Time         `json:"submitted"`
}

// Stats aggregates the tasks submitted by a single token. The status counts
// always sum to Total.
type Stats struct {
	Total    int                `json:"total"`
	ByStatus map[TaskStatus]int `json:"by_status"`
}
