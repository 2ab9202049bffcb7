package tool

import (
	"sync"

	"github.com/hupe1980/toolmesh/logging"
)

// WildcardGroup is the distinguished group granting access to every tool.
// It is checked before set intersection during authorization so an
// administrative role needs no group enumeration maintenance.
const WildcardGroup = "*"

// RoleDefinition names a permission level and the tool groups it may reach.
type RoleDefinition struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	AllowedGroups []string `json:"allowed_groups"`
}

// ContainerOptions holds configuration overrides passed to NewContainer.
type ContainerOptions struct {
	// Logger provides structured logging. Defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Container holds tool definitions and the role table used to authorize
// access to them. It is shared and read-mostly: many task executors resolve
// and authorize against one container concurrently while registration and
// role configuration are serialized by the write lock. ConfigureRoles
// installs the role table atomically so a reader never observes a
// half-updated mapping.
type Container struct {
	mu          sync.RWMutex
	tools       map[string]Tool
	order       []string // registration order; re-registration keeps the original position
	roles       map[string]RoleDefinition
	defaultRole string
	logger      logging.Logger
}

// NewContainer constructs an empty container with optional overrides.
func NewContainer(optFns ...func(o *ContainerOptions)) *Container {
	opts := ContainerOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Container{
		tools:  make(map[string]Tool),
		roles:  make(map[string]RoleDefinition),
		logger: opts.Logger,
	}
}

// Register adds or replaces a tool by name. Re-registration overwrites the
// previous definition without error and keeps the original insertion position.
func (c *Container) Register(t Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := t.Name()
	if _, exists := c.tools[name]; !exists {
		c.order = append(c.order, name)
	}
	c.tools[name] = t

	c.logger.Debug("container.tool.registered", "tool", name, "groups", t.Groups())
}

// Get returns the tool registered under name or ErrNotFound.
func (c *Container) Get(name string) (Tool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tools[name]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// List returns the registered tools in insertion order. The slice is a
// snapshot and safe for caller mutation.
func (c *Container) List() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tools := make([]Tool, 0, len(c.order))
	for _, name := range c.order {
		tools = append(tools, c.tools[name])
	}
	return tools
}

// ConfigureRoles installs the role -> allowed-groups mapping plus the default
// role used when a submission carries no role. The whole table is replaced in
// one step under the write lock.
func (c *Container) ConfigureRoles(roles []RoleDefinition, defaultRole string) {
	table := make(map[string]RoleDefinition, len(roles))
	for _, r := range roles {
		groups := make([]string, len(r.AllowedGroups))
		copy(groups, r.AllowedGroups)
		r.AllowedGroups = groups
		table[r.Name] = r
	}

	c.mu.Lock()
	c.roles = table
	c.defaultRole = defaultRole
	c.mu.Unlock()

	c.logger.Info("container.roles.configured", "roles", len(roles), "default_role", defaultRole)
}

// Role returns the definition installed for a role name, falling back to the
// default role for the empty string.
func (c *Container) Role(name string) (RoleDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name == "" {
		name = c.defaultRole
	}
	r, ok := c.roles[name]
	return r, ok
}

// Authorize reports whether the role may invoke the named tool. It returns
// false (not an error) when the tool does not exist or the role is unknown;
// callers distinguish "not found" from "not permitted" by resolving the tool
// first. The wildcard group is checked before set intersection.
func (c *Container) Authorize(role, toolName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if role == "" {
		role = c.defaultRole
	}

	def, ok := c.roles[role]
	if !ok {
		return false
	}

	t, ok := c.tools[toolName]
	if !ok {
		return false
	}

	allowed := make(map[string]bool, len(def.AllowedGroups))
	for _, g := range def.AllowedGroups {
		if g == WildcardGroup {
			return true
		}
		allowed[g] = true
	}

	for _, g := range t.Groups() {
		if allowed[g] {
			return true
		}
	}

	return false
}
