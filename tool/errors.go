package tool

import "fmt"

var (
	// ErrNotFound is returned when a tool name is absent from the container.
	ErrNotFound = fmt.Errorf("tool not found")

	// ErrPermissionDenied is returned when the submitter's role lacks an
	// allowed group for the tool. Kept distinct from ErrNotFound because the
	// two change caller remediation (fix the name vs. escalate the role).
	ErrPermissionDenied = fmt.Errorf("permission denied")
)
