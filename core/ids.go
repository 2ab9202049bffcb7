package core

import "github.com/google/uuid"

// NewID generates a new unique identifier for tokens, tasks and messages.
func NewID() string { return uuid.NewString() }
