// Package core provides the foundational domain types and execution contexts
// used by Toolmesh. It defines the core abstractions for:
//
//   - Tokens (opaque identity handles bound to a role and display label)
//   - Tasks (asynchronous tool invocations with a monotonic status lifecycle)
//   - Messages (directed, priority-ordered deliveries between tokens)
//   - ToolContext (scoped execution surface handed to tool implementations)
//
// The package intentionally keeps implementation concerns (token issuance,
// scheduling, mailbox storage) out of scope, exposing small interfaces so the
// sibling packages (token, tool, task, mailbox, userspace) can supply concrete
// backends without import cycles.
package core
