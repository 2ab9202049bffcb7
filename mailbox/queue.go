// Package mailbox implements the inter-token message queue: per-recipient
// mailboxes ordered by priority (higher first) with FIFO delivery inside a
// priority band.
package mailbox

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/logging"
)

var (
	// ErrReceiveTimeout is returned by ReceiveWait when the timeout elapses
	// before a message arrives.
	ErrReceiveTimeout = fmt.Errorf("receive timed out")
)

// Options holds configuration overrides passed to NewQueue.
type Options struct {
	// MaxMailboxSize caps the number of undelivered messages per recipient.
	// On overflow the lowest-priority (then oldest) pending message is
	// dropped. 0 means unbounded.
	MaxMailboxSize int

	// Logger provides structured logging. Defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// item pairs a message with its global arrival sequence so ordering inside a
// priority band stays first-in first-out.
type item struct {
	msg core.Message
	seq uint64
}

// msgHeap orders items by descending priority, then ascending sequence.
type msgHeap []item

func (h msgHeap) Len() int { return len(h) }

func (h msgHeap) Less(i, j int) bool {
	if h[i].msg.Priority != h[j].msg.Priority {
		return h[i].msg.Priority > h[j].msg.Priority
	}
	return h[i].seq < h[j].seq
}

func (h msgHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *msgHeap) Push(x any) { *h = append(*h, x.(item)) }

func (h *msgHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// box is the pending state of one recipient. wake is closed and replaced on
// every publish so blocked receivers re-check the heap.
type box struct {
	heap msgHeap
	wake chan struct{}
}

// Queue routes messages between tokens. Each recipient owns an independent
// mailbox; activity in one mailbox never blocks or reorders another. All
// methods are safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	boxes   map[string]*box
	seq     uint64
	maxSize int
	logger  logging.Logger
}

// NewQueue constructs an empty message queue.
func NewQueue(optFns ...func(o *Options)) *Queue {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Queue{
		boxes:   make(map[string]*box),
		maxSize: opts.MaxMailboxSize,
		logger:  opts.Logger,
	}
}

// Publish enqueues a message for the recipient token and returns the stored
// record. Messages with a higher priority are delivered before lower ones;
// equal priorities deliver in publish order.
func (q *Queue) Publish(topic, from, to string, content any, priority core.Priority) core.Message {
	msg := core.Message{
		ID:       core.NewID(),
		Topic:    topic,
		From:     from,
		To:       to,
		Content:  content,
		Priority: priority,
		Created:  time.Now().UTC(),
	}

	q.mu.Lock()
	b := q.boxInLocked(to)
	q.seq++
	heap.Push(&b.heap, item{msg: msg, seq: q.seq})

	var dropped *core.Message
	if q.maxSize > 0 && b.heap.Len() > q.maxSize {
		dropped = q.dropLowestLocked(b)
	}

	close(b.wake)
	b.wake = make(chan struct{})
	q.mu.Unlock()

	q.logger.Debug("mailbox.published", "message_id", msg.ID, "topic", topic, "from", from, "to", to, "priority", int(priority))
	if dropped != nil {
		q.logger.Warn("mailbox.overflow", "to", to, "dropped_id", dropped.ID, "dropped_priority", int(dropped.Priority))
	}

	return msg
}

// Receive removes and returns the highest-priority pending message for the
// recipient. An empty mailbox yields ok == false; that is not an error.
func (q *Queue) Receive(to string) (core.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked(to)
}

// ReceiveWait blocks until a message is available for the recipient, the
// timeout elapses, or ctx is cancelled. A timeout <= 0 waits on ctx only.
func (q *Queue) ReceiveWait(ctx context.Context, to string, timeout time.Duration) (core.Message, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	for {
		q.mu.Lock()
		if msg, ok := q.popLocked(to); ok {
			q.mu.Unlock()
			return msg, nil
		}
		wake := q.boxInLocked(to).wake
		q.mu.Unlock()

		select {
		case <-wake:
			// Something arrived; loop and race for it.
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return core.Message{}, fmt.Errorf("receive for %s: %w", to, ErrReceiveTimeout)
			}
			return core.Message{}, ctx.Err()
		}
	}
}

// Pending reports the number of undelivered messages for the recipient.
func (q *Queue) Pending(to string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	b, ok := q.boxes[to]
	if !ok {
		return 0
	}
	return b.heap.Len()
}

// boxInLocked returns the recipient's mailbox, creating it on first use.
// Caller must hold the queue mutex.
func (q *Queue) boxInLocked(to string) *box {
	b, ok := q.boxes[to]
	if !ok {
		b = &box{wake: make(chan struct{})}
		q.boxes[to] = b
	}
	return b
}

// popLocked removes the head of the recipient's mailbox and stamps the
// delivery time. Caller must hold the queue mutex.
func (q *Queue) popLocked(to string) (core.Message, bool) {
	b, ok := q.boxes[to]
	if !ok || b.heap.Len() == 0 {
		return core.Message{}, false
	}

	it := heap.Pop(&b.heap).(item)
	it.msg.Delivered = time.Now().UTC()

	q.logger.Debug("mailbox.delivered", "message_id", it.msg.ID, "to", to, "priority", int(it.msg.Priority))

	return it.msg, true
}

// dropLowestLocked removes the lowest-priority, oldest message from the box
// and returns it. Caller must hold the queue mutex.
func (q *Queue) dropLowestLocked(b *box) *core.Message {
	worst := 0
	for i := 1; i < len(b.heap); i++ {
		w, c := b.heap[worst], b.heap[i]
		if c.msg.Priority < w.msg.Priority || (c.msg.Priority == w.msg.Priority && c.seq < w.seq) {
			worst = i
		}
	}

	dropped := heap.Remove(&b.heap, worst).(item)
	return &dropped.msg
}
