// Package frame provides a per-frame callback queue with request/cancel
// semantics. Hosts call Flush once per display refresh.
package frame

import (
	"sync"
	"time"
)

// Handle identifies an outstanding frame request. Zero is never issued.
type Handle uint64

// Callback receives the host timestamp of the frame being flushed.
type Callback func(ts time.Duration)

type Scheduler interface {
	RequestFrame(cb Callback) Handle
	CancelFrame(h Handle)
}

type Queue struct {
	mu      sync.Mutex
	next    Handle
	order   []Handle
	pending map[Handle]Callback
}

func NewQueue() *Queue {
	return &Queue{pending: make(map[Handle]Callback)}
}

// RequestFrame schedules cb for the next Flush.
func (q *Queue) RequestFrame(cb Callback) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = make(map[Handle]Callback)
	}
	q.next++
	q.pending[q.next] = cb
	q.order = append(q.order, q.next)
	return q.next
}

// CancelFrame drops a pending request. Unknown or already-run handles are ignored.
func (q *Queue) CancelFrame(h Handle) {
	q.mu.Lock()
	delete(q.pending, h)
	q.mu.Unlock()
}

// Pending reports the number of outstanding requests.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs every callback requested before the call. Callbacks requested
// during the flush wait for the next one. Returns the number of callbacks run.
func (q *Queue) Flush(ts time.Duration) int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, h := range batch {
		q.mu.Lock()
		cb, ok := q.pending[h]
		delete(q.pending, h)
		q.mu.Unlock()
		if !ok || cb == nil {
			continue
		}
		cb(ts)
		ran++
	}
	return ran
}
