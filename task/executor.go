// Package task implements the asynchronous task executor: submission of tool
// invocations scoped to a token, authorization against a shared tool
// container, concurrent execution, and polling / awaiting of results.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/logging"
	"github.com/hupe1980/toolmesh/tool"
)

// Options holds dependency + configuration overrides passed to NewExecutor.
type Options struct {
	// MaxConcurrentTasks limits how many tool capabilities execute
	// simultaneously. This prevents resource exhaustion and provides
	// backpressure. Set to 0 for unlimited (not recommended).
	MaxConcurrentTasks int

	// RetentionLimit caps how many terminal tasks are retained per token.
	// When the cap is exceeded the oldest terminal tasks are evicted;
	// pending and running tasks are never evicted. 0 means unbounded.
	RetentionLimit int

	// Logger provides structured logging. Defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// SubmitOptions carries the optional attributes of a submission.
type SubmitOptions struct {
	// Metadata is free-form submission metadata retained on the task and its
	// original-call snapshot.
	Metadata map[string]string
	// RequestID is an optional caller-supplied correlation id.
	RequestID string
	// Priority is recorded on the task for callers that order their own
	// bookkeeping; it does not influence scheduling.
	Priority int
}

// record is the executor-private mutable state of one task. All fields are
// guarded by the executor mutex; done is closed exactly once when the task
// reaches a terminal status.
type record struct {
	task     core.Task
	original core.OriginalCall
	done     chan struct{}
}

// Executor accepts task submissions scoped to tokens, authorizes them against
// the bound tool container, executes tool capabilities concurrently and
// exposes polling / await / stats operations. Public methods are safe for
// concurrent use.
//
// Submission itself never blocks on tool execution: Submit returns the task
// in StatusPending and a scheduler goroutine performs the pending -> running
// -> terminal transitions. Exactly one of {completion, failure, cancellation}
// wins the terminal transition.
type Executor struct {
	container *tool.Container
	validator core.TokenValidator
	logger    logging.Logger

	sem       chan struct{} // nil when unlimited
	retention int

	mu      sync.Mutex
	tasks   map[string]*record
	byToken map[string][]string // submission order per token, drives retention
	seq     uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewExecutor constructs an executor bound to one tool container and one
// token validator, with optional overrides.
func NewExecutor(container *tool.Container, validator core.TokenValidator, optFns ...func(o *Options)) *Executor {
	opts := Options{
		MaxConcurrentTasks: 10,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var sem chan struct{}
	if opts.MaxConcurrentTasks > 0 {
		sem = make(chan struct{}, opts.MaxConcurrentTasks)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Executor{
		container: container,
		validator: validator,
		logger:    opts.Logger,
		sem:       sem,
		retention: opts.RetentionLimit,
		tasks:     make(map[string]*record),
		byToken:   make(map[string][]string),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Submit validates the token, resolves and authorizes the tool, records the
// task and hands the capability to the scheduler. It returns the task record
// immediately in StatusPending; execution failures surface later through the
// task's terminal status, never through Submit.
//
// Failure order matches the authorization chain: token.ErrUnknownToken,
// then tool.ErrNotFound, then tool.ErrPermissionDenied. A failed submission
// creates no task.
func (e *Executor) Submit(tokenValue, toolName string, args map[string]any, optFns ...func(o *SubmitOptions)) (core.Task, error) {
	var subOpts SubmitOptions
	for _, fn := range optFns {
		fn(&subOpts)
	}

	roleInfo, err := e.validator.Validate(tokenValue)
	if err != nil {
		return core.Task{}, fmt.Errorf("submit %q: %w", toolName, err)
	}

	tl, err := e.container.Get(toolName)
	if err != nil {
		return core.Task{}, fmt.Errorf("submit %q: %w", toolName, err)
	}

	if !e.container.Authorize(roleInfo.Role, toolName) {
		return core.Task{}, fmt.Errorf("submit %q as role %q: %w", toolName, roleInfo.Role, tool.ErrPermissionDenied)
	}

	now := time.Now().UTC()

	e.mu.Lock()
	e.seq++
	rec := &record{
		task: core.Task{
			ID:        core.NewID(),
			Seq:       e.seq,
			Token:     tokenValue,
			ToolName:  toolName,
			Args:      cloneArgs(args),
			Status:    core.StatusPending,
			Priority:  subOpts.Priority,
			Metadata:  cloneMetadata(subOpts.Metadata),
			RequestID: subOpts.RequestID,
			Submitted: now,
		},
		original: core.OriginalCall{
			Token:     tokenValue,
			ToolName:  toolName,
			Args:      args,
			Metadata:  subOpts.Metadata,
			RequestID: subOpts.RequestID,
			Submitted: now,
		}.Clone(),
		done: make(chan struct{}),
	}
	e.tasks[rec.task.ID] = rec
	e.byToken[tokenValue] = append(e.byToken[tokenValue], rec.task.ID)
	snapshot := cloneTask(rec.task)
	e.mu.Unlock()

	e.logger.Debug("task.submitted", "task_id", snapshot.ID, "tool", toolName, "role", roleInfo.Role)

	e.wg.Add(1)
	go e.run(rec, tl, roleInfo)

	return snapshot, nil
}

// run drives one task through its lifecycle. It acquires the concurrency
// semaphore, performs the guarded pending -> running transition, invokes the
// capability and records the terminal outcome.
func (e *Executor) run(rec *record, tl tool.Tool, roleInfo core.RoleInfo) {
	defer e.wg.Done()

	if e.sem != nil {
		select {
		case <-e.ctx.Done():
			e.finish(rec, nil, fmt.Errorf("executor shut down before execution"), 0, core.StatusFailed)
			return
		case e.sem <- struct{}{}:
		}
		defer func() { <-e.sem }()
	}

	e.mu.Lock()
	if rec.task.Status != core.StatusPending {
		// Cancelled before the scheduler started it; the capability never runs.
		e.mu.Unlock()
		return
	}
	rec.task.Status = core.StatusRunning
	taskID := rec.task.ID
	toolCtx := core.NewToolContext(e.ctx, rec.task.Token, roleInfo, taskID, rec.task.RequestID, rec.task.Metadata, e.logger)
	// The capability gets its own copy so a mutating tool cannot corrupt the
	// retained snapshot.
	args := cloneArgs(rec.original.Args)
	e.mu.Unlock()

	e.logger.Debug("task.running", "task_id", taskID, "tool", tl.Name())

	start := time.Now()
	result, err := e.invoke(tl, toolCtx, args)
	dur := time.Since(start)

	if err != nil {
		e.finish(rec, nil, err, dur, core.StatusFailed)
		return
	}
	e.finish(rec, result, nil, dur, core.StatusCompleted)
}

// invoke calls the capability and converts a panic into a ToolExecutionError
// so a misbehaving tool is recorded as a failed task instead of crashing the
// executor.
func (e *Executor) invoke(tl tool.Tool, toolCtx *core.ToolContext, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = tool.NewToolError(tl.Name(), fmt.Sprintf("capability panicked: %v", r), "EXECUTION_ERROR")
		}
	}()

	return tl.Call(toolCtx, args)
}

// finish applies the single authoritative terminal transition. A task
// already terminal (a concurrent Cancel won) keeps its state; the late
// outcome is discarded.
func (e *Executor) finish(rec *record, result any, execErr error, dur time.Duration, status core.TaskStatus) {
	e.mu.Lock()

	if rec.task.Status.Terminal() {
		e.mu.Unlock()
		return
	}

	from := rec.task.Status
	rec.task.Status = status
	rec.task.ExecutionTime = dur
	if execErr != nil {
		rec.task.Error = execErr.Error()
	} else {
		rec.task.Result = result
	}
	close(rec.done)
	tokenValue := rec.task.Token
	taskID := rec.task.ID
	e.evictLocked(tokenValue)
	e.mu.Unlock()

	success := status == core.StatusCompleted
	e.logger.Info("task.finished", "task_id", taskID, "from", string(from), "status", string(status), "success", success, "duration_ms", dur.Milliseconds())
}

// Get returns a point-in-time copy of the task or ErrNotFound.
func (e *Executor) Get(id string) (core.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.tasks[id]
	if !ok {
		return core.Task{}, ErrNotFound
	}
	return cloneTask(rec.task), nil
}

// Wait suspends the caller until the task reaches a terminal status, the
// timeout elapses, or ctx is cancelled. Only the waiting call is affected by
// a timeout; the task keeps running. A timeout <= 0 waits until ctx is done.
// The returned task is always terminal and carries result / error plus the
// measured execution time.
func (e *Executor) Wait(ctx context.Context, id string, timeout time.Duration) (core.Task, error) {
	e.mu.Lock()
	rec, ok := e.tasks[id]
	e.mu.Unlock()

	if !ok {
		return core.Task{}, ErrNotFound
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case <-rec.done:
		e.mu.Lock()
		defer e.mu.Unlock()
		return cloneTask(rec.task), nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return core.Task{}, fmt.Errorf("wait for task %s: %w", id, ErrWaitTimeout)
		}
		return core.Task{}, ctx.Err()
	}
}

// Cancel transitions a pending or running task to StatusCancelled. The
// terminal transition is guarded: if the task already completed or failed,
// Cancel returns the task unchanged together with ErrAlreadyTerminal. A
// running capability is not interrupted; its late result is discarded.
func (e *Executor) Cancel(id string) (core.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.tasks[id]
	if !ok {
		return core.Task{}, ErrNotFound
	}

	if rec.task.Status.Terminal() {
		return cloneTask(rec.task), ErrAlreadyTerminal
	}

	from := rec.task.Status
	rec.task.Status = core.StatusCancelled
	close(rec.done)
	e.evictLocked(rec.task.Token)

	e.logger.Info("task.cancelled", "task_id", id, "from", string(from))

	return cloneTask(rec.task), nil
}

// Stats aggregates the tasks submitted by the given token. The counts are a
// consistent snapshot: no partially-updated task is visible because every
// status transition happens under the same lock.
func (e *Executor) Stats(tokenValue string) core.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := core.Stats{ByStatus: make(map[core.TaskStatus]int)}
	for _, id := range e.byToken[tokenValue] {
		rec, ok := e.tasks[id]
		if !ok {
			continue
		}
		stats.Total++
		stats.ByStatus[rec.task.Status]++
	}
	return stats
}

// OriginalCall returns the immutable submission snapshot of a task,
// independent of its current status, or ErrNotFound.
func (e *Executor) OriginalCall(id string) (core.OriginalCall, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.tasks[id]
	if !ok {
		return core.OriginalCall{}, ErrNotFound
	}
	return rec.original.Clone(), nil
}

// Close cancels in-flight scheduling, waits for running capabilities to
// return and releases the executor. Tasks still pending are failed.
func (e *Executor) Close() error {
	e.cancel()
	e.wg.Wait()
	return nil
}

// evictLocked enforces the retention cap for one token. Caller must hold the
// executor mutex. Only terminal tasks are evicted, oldest first.
func (e *Executor) evictLocked(tokenValue string) {
	if e.retention <= 0 {
		return
	}

	ids := e.byToken[tokenValue]
	terminal := 0
	for _, id := range ids {
		if rec, ok := e.tasks[id]; ok && rec.task.Status.Terminal() {
			terminal++
		}
	}

	if terminal <= e.retention {
		return
	}

	remaining := ids[:0]
	for _, id := range ids {
		rec, ok := e.tasks[id]
		if ok && rec.task.Status.Terminal() && terminal > e.retention {
			delete(e.tasks, id)
			terminal--
			continue
		}
		remaining = append(remaining, id)
	}
	e.byToken[tokenValue] = remaining
}

// cloneTask returns a defensive copy so callers can never mutate the
// executor's master record.
func cloneTask(t core.Task) core.Task {
	cp := t
	cp.Args = cloneArgs(t.Args)
	cp.Metadata = cloneMetadata(t.Metadata)
	return cp
}

func cloneArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	cp := make(map[string]any, len(args))
	for k, v := range args {
		cp[k] = v
	}
	return cp
}

func cloneMetadata(md map[string]string) map[string]string {
	if md == nil {
		return nil
	}
	cp := make(map[string]string, len(md))
	for k, v := range md {
		cp[k] = v
	}
	return cp
}
