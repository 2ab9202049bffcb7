package core

import "time"

// Priority orders message delivery within a mailbox. Higher values are
// delivered first; equal priorities are delivered in publish order.
type Priority int

// Common priority bands. Any int value is accepted; these exist so callers
// exchanging messages across packages agree on a baseline ordering.
const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 5
	PriorityHigh   Priority = 10
)

// Message is a directed delivery between two tokens. It is owned by the
// mailbox queue until received; receive stamps Delivered and removes it from
// the recipient's mailbox (at-most-once delivery).
type Message struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   any       `json:"content,omitempty"`
	Priority  Priority  `json:"priority"`
	Created   time.Time `json:"created"`
	Delivered time.Time `json:"delivered,omitempty"`
}
