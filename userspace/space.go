package userspace

import (
	"context"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/mailbox"
	"github.com/hupe1980/toolmesh/task"
)

// Space is the isolated execution environment of one token: a task executor
// pinned to the token, plus a view onto the shared message queue addressed by
// the token value. Two spaces share tool definitions through the container
// but never see each other's tasks or mail.
type Space struct {
	token    core.Token
	executor *task.Executor
	queue    *mailbox.Queue
}

// Token returns the token this space is bound to.
func (s *Space) Token() core.Token { return s.token }

// Submit schedules a tool invocation under this space's token. See
// task.Executor.Submit for the authorization chain and failure modes.
func (s *Space) Submit(toolName string, args map[string]any, optFns ...func(o *task.SubmitOptions)) (core.Task, error) {
	return s.executor.Submit(s.token.Value, toolName, args, optFns...)
}

// Task returns a point-in-time copy of one of this space's tasks.
func (s *Space) Task(id string) (core.Task, error) {
	return s.executor.Get(id)
}

// Wait blocks until the task reaches a terminal status or the timeout
// elapses.
func (s *Space) Wait(ctx context.Context, id string, timeout time.Duration) (core.Task, error) {
	return s.executor.Wait(ctx, id, timeout)
}

// Cancel transitions a pending or running task of this space to cancelled.
func (s *Space) Cancel(id string) (core.Task, error) {
	return s.executor.Cancel(id)
}

// Stats aggregates the tasks submitted through this space.
func (s *Space) Stats() core.Stats {
	return s.executor.Stats(s.token.Value)
}

// OriginalCall returns the immutable submission snapshot of one of this
// space's tasks.
func (s *Space) OriginalCall(id string) (core.OriginalCall, error) {
	return s.executor.OriginalCall(id)
}

// Send publishes a message from this space's token to the recipient token.
func (s *Space) Send(topic, to string, content any, priority core.Priority) core.Message {
	return s.queue.Publish(topic, s.token.Value, to, content, priority)
}

// Receive removes and returns the highest-priority pending message addressed
// to this space, if any.
func (s *Space) Receive() (core.Message, bool) {
	return s.queue.Receive(s.token.Value)
}

// ReceiveWait blocks until a message arrives for this space, the timeout
// elapses, or ctx is cancelled.
func (s *Space) ReceiveWait(ctx context.Context, timeout time.Duration) (core.Message, error) {
	return s.queue.ReceiveWait(ctx, s.token.Value, timeout)
}

// PendingMessages reports the number of undelivered messages addressed to
// this space.
func (s *Space) PendingMessages() int {
	return s.queue.Pending(s.token.Value)
}

// Close shuts down the space's executor, waiting for running capabilities.
func (s *Space) Close() error {
	return s.executor.Close()
}
