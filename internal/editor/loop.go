package editor

import "sync"

// loop runs posted functions one at a time on a single goroutine. post never
// blocks, so code running on the loop may post to it again.
type loop struct {
	mu      sync.Mutex
	tasks   []func()
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

func newLoop() *loop {
	return &loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// post schedules fn. It returns false once the loop is stopping.
func (l *loop) post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

func (l *loop) run() {
	defer close(l.stopped)
	for {
		l.mu.Lock()
		batch := l.tasks
		l.tasks = nil
		closed := l.closed
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-l.wake
	}
}

// stop refuses further posts, runs what is already posted and returns once
// the loop goroutine has exited.
func (l *loop) stop() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.stopped
}
