// Package logging provides a minimal logging interface and adapters for Toolmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the executor, container and mailbox use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - ToolmeshLogger with contextual helpers (component, token, task)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	exec := task.NewExecutor(container, tokens, func(o *task.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
