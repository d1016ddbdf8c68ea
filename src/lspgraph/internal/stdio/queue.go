package stdio

import "sync"

// entry is either an encoded frame or a marker closed once every earlier frame is written.
type entry struct {
	frame   []byte
	flushed chan struct{}
}

// queue is an unbounded FIFO of outbound entries.
// A stalled server lets it grow without limit.
type queue struct {
	mu    sync.Mutex
	items []entry
	ready chan struct{}
}

func newQueue() *queue {
	return &queue{ready: make(chan struct{}, 1)}
}

func (q *queue) push(item entry) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *queue) pop() (entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return entry{}, false
	}
	item := q.items[0]
	q.items[0] = entry{}
	q.items = q.items[1:]
	return item, true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
