package task

import "fmt"

var (
	// ErrNotFound is returned when no task with the given id exists.
	ErrNotFound = fmt.Errorf("task not found")

	// ErrWaitTimeout is returned by Wait when the timeout elapses before the
	// task reaches a terminal status. The task itself keeps running.
	ErrWaitTimeout = fmt.Errorf("wait timed out")

	// ErrAlreadyTerminal is returned by Cancel when the task already
	// completed, failed or was cancelled; the existing state is preserved.
	ErrAlreadyTerminal = fmt.Errorf("task already terminal")
)
