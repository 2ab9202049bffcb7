// Package toolmesh provides a high-level façade over the token, tool, task
// and mailbox subsystems enabling rapid construction of per-identity isolated
// tool execution environments. Most applications interact with this package
// by:
//  1. Creating a Toolmesh via New() (optionally overriding roles and limits)
//  2. Registering one or more tools (function tools or provider-backed tools)
//  3. Creating user spaces and submitting tasks through them
//
// The façade delegates task execution to per-space task.Executor instances
// while keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply a
// structured logger and a role configuration.
package toolmesh

import (
	"context"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/logging"
	"github.com/hupe1980/toolmesh/mailbox"
	"github.com/hupe1980/toolmesh/task"
	"github.com/hupe1980/toolmesh/token"
	"github.com/hupe1980/toolmesh/tool"
	"github.com/hupe1980/toolmesh/userspace"
)

// Options configures the Toolmesh instance.
type Options struct {
	// Roles defines the role table mapping role names to allowed tool
	// groups. Defaults to a single "user" role allowed the "public" group.
	Roles []tool.RoleDefinition

	// DefaultRole is assumed for tokens whose role is not in the table.
	DefaultRole string

	// MaxConcurrentTasks limits the number of tool capabilities each space
	// executes simultaneously. Set to 0 for unlimited (not recommended).
	MaxConcurrentTasks int

	// RetentionLimit caps how many terminal tasks each space retains.
	// 0 means unbounded.
	RetentionLimit int

	// MaxMailboxSize caps the number of undelivered messages per recipient.
	// 0 means unbounded.
	MaxMailboxSize int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Toolmesh is the high-level façade aggregating the token manager, the shared
// tool container, the message queue and the user space manager.
type Toolmesh struct {
	opts      Options
	tokens    *token.Manager
	container *tool.Container
	queue     *mailbox.Queue
	spaces    *userspace.Manager
}

// New creates a new Toolmesh instance with optional overrides.
func New(optFns ...func(o *Options)) *Toolmesh {
	opts := Options{
		Roles: []tool.RoleDefinition{
			{Name: "user", Label: "User", AllowedGroups: []string{"public"}},
		},
		DefaultRole:        "user",
		MaxConcurrentTasks: 10,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	tokens := token.NewManager(func(o *token.Options) {
		o.Logger = opts.Logger
	})

	container := tool.NewContainer(func(o *tool.ContainerOptions) {
		o.Logger = opts.Logger
	})
	container.ConfigureRoles(opts.Roles, opts.DefaultRole)

	queue := mailbox.NewQueue(func(o *mailbox.Options) {
		o.MaxMailboxSize = opts.MaxMailboxSize
		o.Logger = opts.Logger
	})

	spaces := userspace.NewManager(tokens, container, queue, func(o *userspace.Options) {
		o.Logger = opts.Logger
		o.ExecutorOptions = []func(o *task.Options){func(o *task.Options) {
			o.MaxConcurrentTasks = opts.MaxConcurrentTasks
			o.RetentionLimit = opts.RetentionLimit
		}}
	})

	return &Toolmesh{
		opts:      opts,
		tokens:    tokens,
		container: container,
		queue:     queue,
		spaces:    spaces,
	}
}

// RegisterTool adds a tool to the shared container, visible to every space.
func (m *Toolmesh) RegisterTool(t tool.Tool) { m.container.Register(t) }

// Tools returns the registered tool names in registration order.
func (m *Toolmesh) Tools() []string {
	tools := m.container.List()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}

// CreateSpace issues a token for the role and returns its isolated space.
func (m *Toolmesh) CreateSpace(role, label string) *userspace.Space {
	return m.spaces.CreateSpace(role, label)
}

// Space returns the space bound to the token value.
func (m *Toolmesh) Space(tokenValue string) (*userspace.Space, error) {
	return m.spaces.Space(tokenValue)
}

// RemoveSpace revokes the token and shuts down its space.
func (m *Toolmesh) RemoveSpace(tokenValue string) error {
	return m.spaces.RemoveSpace(tokenValue)
}

// Validate resolves a token value to its role info via the token manager.
func (m *Toolmesh) Validate(tokenValue string) (core.RoleInfo, error) {
	return m.tokens.Validate(tokenValue)
}

// Submit is a convenience that schedules a tool invocation under the token's
// space.
func (m *Toolmesh) Submit(tokenValue, toolName string, args map[string]any, optFns ...func(o *task.SubmitOptions)) (core.Task, error) {
	space, err := m.spaces.Space(tokenValue)
	if err != nil {
		return core.Task{}, err
	}
	return space.Submit(toolName, args, optFns...)
}

// SubmitSync is a synchronous helper that submits a tool invocation and waits
// for its terminal state.
func (m *Toolmesh) SubmitSync(ctx context.Context, tokenValue, toolName string, args map[string]any, timeout time.Duration) (core.Task, error) {
	space, err := m.spaces.Space(tokenValue)
	if err != nil {
		return core.Task{}, err
	}

	submitted, err := space.Submit(toolName, args)
	if err != nil {
		return core.Task{}, err
	}

	return space.Wait(ctx, submitted.ID, timeout)
}

// Publish enqueues a message between two tokens on the shared queue.
func (m *Toolmesh) Publish(topic, from, to string, content any, priority core.Priority) core.Message {
	return m.queue.Publish(topic, from, to, content, priority)
}

// Receive removes and returns the highest-priority pending message for the
// token, if any.
func (m *Toolmesh) Receive(tokenValue string) (core.Message, bool) {
	return m.queue.Receive(tokenValue)
}

// Close shuts down every space, waiting for running capabilities.
func (m *Toolmesh) Close() error {
	return m.spaces.Close()
}
