// Package userspace manages per-token isolated execution environments. Each
// space bundles a token, a task executor pinned to that token and a mailbox
// view, all sharing one tool container and one message queue.
package userspace

import (
	"fmt"
	"sync"

	"github.com/hupe1980/toolmesh/logging"
	"github.com/hupe1980/toolmesh/mailbox"
	"github.com/hupe1980/toolmesh/task"
	"github.com/hupe1980/toolmesh/token"
	"github.com/hupe1980/toolmesh/tool"
)

var (
	// ErrUnknownSpace is returned when no space exists for the given token.
	ErrUnknownSpace = fmt.Errorf("unknown user space")
)

// Options holds configuration overrides passed to NewManager.
type Options struct {
	// ExecutorOptions is applied to every executor created for a space.
	ExecutorOptions []func(o *task.Options)

	// Logger provides structured logging. Defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Manager creates and tracks user spaces. It owns no tool definitions of its
// own: all spaces authorize against the shared container, so registering a
// tool or reconfiguring roles is immediately visible to every space.
type Manager struct {
	tokens    *token.Manager
	container *tool.Container
	queue     *mailbox.Queue
	logger    logging.Logger

	execOpts []func(o *task.Options)

	mu     sync.RWMutex
	spaces map[string]*Space
}

// NewManager constructs a manager on top of the shared collaborators.
func NewManager(tokens *token.Manager, container *tool.Container, queue *mailbox.Queue, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	execOpts := append([]func(o *task.Options){func(o *task.Options) {
		o.Logger = opts.Logger
	}}, opts.ExecutorOptions...)

	return &Manager{
		tokens:    tokens,
		container: container,
		queue:     queue,
		logger:    opts.Logger,
		execOpts:  execOpts,
		spaces:    make(map[string]*Space),
	}
}

// CreateSpace issues a fresh token for the role and builds the isolated
// space around it.
func (m *Manager) CreateSpace(role, label string) *Space {
	tok := m.tokens.Issue(role, label)

	space := &Space{
		token:    tok,
		executor: task.NewExecutor(m.container, m.tokens, m.execOpts...),
		queue:    m.queue,
	}

	m.mu.Lock()
	m.spaces[tok.Value] = space
	m.mu.Unlock()

	m.logger.Info("userspace.created", "token", tok.Value, "role", role, "label", label)

	return space
}

// Space returns the space bound to the token value or ErrUnknownSpace.
func (m *Manager) Space(tokenValue string) (*Space, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	space, ok := m.spaces[tokenValue]
	if !ok {
		return nil, ErrUnknownSpace
	}
	return space, nil
}

// RemoveSpace revokes the token, shuts down the space's executor and drops
// the space. Messages already queued for the token remain until received.
func (m *Manager) RemoveSpace(tokenValue string) error {
	m.mu.Lock()
	space, ok := m.spaces[tokenValue]
	delete(m.spaces, tokenValue)
	m.mu.Unlock()

	if !ok {
		return ErrUnknownSpace
	}

	if err := m.tokens.Revoke(tokenValue); err != nil {
		return fmt.Errorf("remove space: %w", err)
	}

	if err := space.Close(); err != nil {
		return fmt.Errorf("remove space: %w", err)
	}

	m.logger.Info("userspace.removed", "token", tokenValue)

	return nil
}

// Count reports the number of active spaces.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.spaces)
}

// Close shuts down every space. The first error is returned after all spaces
// were attempted.
func (m *Manager) Close() error {
	m.mu.Lock()
	spaces := make([]*Space, 0, len(m.spaces))
	for _, s := range m.spaces {
		spaces = append(spaces, s)
	}
	m.spaces = make(map[string]*Space)
	m.mu.Unlock()

	var firstErr error
	for _, s := range spaces {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
