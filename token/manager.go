// Package token implements issuance and validation of the opaque identity
// tokens every other Toolmesh component is scoped to. Tokens are immutable
// once issued; the manager only ever adds or removes entries.
package token

import (
	"sync"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/logging"
)

// Options holds configuration overrides passed to NewManager.
type Options struct {
	// Logger provides structured logging. Defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Manager issues, validates and revokes identity tokens. It is safe for
// concurrent use; issued tokens are held in a process local map for the
// lifetime of the manager.
type Manager struct {
	mu     sync.RWMutex
	tokens map[string]core.Token
	logger logging.Logger
}

// NewManager constructs an empty token manager with optional overrides.
func NewManager(optFns ...func(o *Options)) *Manager {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Manager{
		tokens: make(map[string]core.Token),
		logger: opts.Logger,
	}
}

// Issue generates a fresh unique token bound to the given role and display
// label. Issuance has no failure conditions.
func (m *Manager) Issue(role, label string) core.Token {
	tok := core.Token{
		Value:   core.NewID(),
		Role:    role,
		Label:   label,
		Created: time.Now().UTC(),
	}

	m.mu.Lock()
	m.tokens[tok.Value] = tok
	m.mu.Unlock()

	m.logger.Info("token.issued", "role", role, "label", label)

	return tok
}

// Validate resolves the role bound to a token value. It returns
// ErrUnknownToken if the token was never issued or has been revoked.
func (m *Manager) Validate(tokenValue string) (core.RoleInfo, error) {
	m.mu.RLock()
	tok, ok := m.tokens[tokenValue]
	m.mu.RUnlock()

	if !ok {
		return core.RoleInfo{}, ErrUnknownToken
	}

	return core.RoleInfo{Role: tok.Role, Label: tok.Label}, nil
}

// Revoke invalidates a token. Subsequent Validate calls fail with
// ErrUnknownToken. Revoking an unknown token returns ErrUnknownToken so
// callers can distinguish a no-op from an actual revocation.
func (m *Manager) Revoke(tokenValue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, ok := m.tokens[tokenValue]
	if !ok {
		return ErrUnknownToken
	}

	delete(m.tokens, tokenValue)
	m.logger.Info("token.revoked", "role", tok.Role, "label", tok.Label)

	return nil
}

// Count returns the number of currently valid tokens.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}
