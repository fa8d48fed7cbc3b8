package editor

import "sync"

// queue is a FIFO consumed by a single worker. Unlike a channel it lets the
// dispatcher take back messages that no worker has picked up yet.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*message
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(m *message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrNotRunning
	}
	q.items = append(q.items, m)
	q.cond.Signal()
	return nil
}

// pop blocks until a message is available. It returns false once the queue
// is closed, even when messages are left.
func (q *queue) pop() (*message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}
	m := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return m, true
}

// removeIf takes every queued message matching fn out of the queue
func (q *queue) removeIf(fn func(*message) bool) []*message {
	q.mu.Lock()
	defer q.mu.Unlock()
	var removed []*message
	kept := q.items[:0]
	for _, m := range q.items {
		if fn(m) {
			removed = append(removed, m)
		} else {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = nil
	}
	q.items = kept
	return removed
}

// close wakes the worker and refuses further pushes
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// drain returns the messages left behind after close
func (q *queue) drain() []*message {
	q.mu.Lock()
	defer q.mu.Unlock()
	left := q.items
	q.items = nil
	return left
}
