package editor

import (
	"context"
	"sync"
	"sync/atomic"
)

type jobKind int

const (
	jobExport jobKind = iota
	jobDownload
)

// job is a detached helper goroutine working for a pending request
type job struct {
	request   string
	path      string
	kind      jobKind
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// jobs tracks the detached helpers so they can be cancelled and joined
type jobs struct {
	mu     sync.Mutex
	byID   map[string]*job
	wg     sync.WaitGroup
	parent context.Context
}

func newJobs(parent context.Context) *jobs {
	return &jobs{byID: make(map[string]*job), parent: parent}
}

// start runs fn on a new goroutine and forgets the job when fn returns
func (j *jobs) start(request, path string, kind jobKind, fn func(ctx context.Context, jb *job)) {
	ctx, cancel := context.WithCancel(j.parent)
	jb := &job{request: request, path: path, kind: kind, cancel: cancel}

	j.mu.Lock()
	j.byID[request] = jb
	j.mu.Unlock()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer func() {
			j.mu.Lock()
			delete(j.byID, request)
			j.mu.Unlock()
			cancel()
		}()
		fn(ctx, jb)
	}()
}

// cancel flags and cancels every job of kind for path. It reports whether any was found.
func (j *jobs) cancel(path string, kind jobKind) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	found := false
	for _, jb := range j.byID {
		if jb.path == path && jb.kind == kind {
			jb.cancelled.Store(true)
			jb.cancel()
			found = true
		}
	}
	return found
}

func (j *jobs) cancelAll() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, jb := range j.byID {
		jb.cancelled.Store(true)
		jb.cancel()
	}
}

func (j *jobs) wait() {
	j.wg.Wait()
}
