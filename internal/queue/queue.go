package queue

import (
	"time"

	"sortline/internal/figure"
)

// Queue is the FIFO of dropped figures. The zero value is not usable; call New.
type Queue struct {
	items  []*Item
	head   int
	nextID int64
	now    func() time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// New returns an empty queue whose first item receives ID 1.
func New(opts ...Option) *Queue {
	q := &Queue{nextID: 1, now: time.Now}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends a figure at the tail and returns the stored item.
func (q *Queue) Enqueue(handle figure.Handle, kind figure.Kind) *Item {
	now := q.now().UTC()
	item := &Item{
		ID:        q.nextID,
		Handle:    handle,
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	q.nextID++
	q.items = append(q.items, item)
	return item
}

// PeekHead returns the head item without removing it.
func (q *Queue) PeekHead() (*Item, bool) {
	if q.head >= len(q.items) {
		return nil, false
	}
	return q.items[q.head], true
}

// DequeueHead removes the head item and returns it. The second result is
// false when the queue was already empty.
func (q *Queue) DequeueHead() (*Item, bool) {
	if q.head >= len(q.items) {
		return nil, false
	}
	item := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	q.compact()
	return item, true
}

// Len reports the number of queued items, including an in-flight head.
func (q *Queue) Len() int { return len(q.items) - q.head }

// Empty reports whether no items are queued.
func (q *Queue) Empty() bool { return q.Len() == 0 }

// List returns a snapshot of the queued items in FIFO order.
func (q *Queue) List() []Item {
	out := make([]Item, 0, q.Len())
	for _, item := range q.items[q.head:] {
		out = append(out, *item)
	}
	return out
}

// Touch updates an item's status and stage, stamping UpdatedAt.
func (q *Queue) Touch(item *Item, status Status, stage string) {
	if item == nil {
		return
	}
	item.Status = status
	item.Stage = stage
	item.UpdatedAt = q.now().UTC()
}

// Stats returns queued item counts per status.
func (q *Queue) Stats() map[Status]int {
	stats := make(map[Status]int, len(allStatuses))
	for _, item := range q.items[q.head:] {
		stats[item.Status]++
	}
	return stats
}

// compact reclaims the consumed prefix once it dominates the backing slice.
func (q *Queue) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head >= 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}
