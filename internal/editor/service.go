package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ytget/movie-editor/internal/catalog"
	"github.com/ytget/movie-editor/internal/engine"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/project"
)

// Export defaults
const (
	DefaultExportHeight  = 720
	DefaultExportBitrate = 5000
)

// Options configures a Service
type Options struct {
	Engine     engine.Engine
	Catalog    Catalog    // optional
	Downloader Downloader // optional; DownloadMedia fails without it

	// Gallery registers finished movies with the system media library
	Gallery func(path string) error

	// ExportDir receives movies exported without an explicit output path
	ExportDir     string
	ExportHeight  int
	ExportBitrate int

	IdleGrace time.Duration
	// OnIdle runs on its own goroutine once the grace period passes with no
	// pending command. It may call Stop.
	OnIdle func()

	// DisableThumbnailDedup keeps superseded thumbnail requests queued
	DisableThumbnailDedup bool
}

// Service dispatches commands to the worker queues and owns the active project
type Service struct {
	opts    Options
	session *session
	pool    *pool
	idle    *idleTimer

	pendingMu sync.Mutex
	pending   map[string]*message

	observersMu  sync.RWMutex
	observers    []observerEntry
	nextObserver int

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	loop    *loop
	queues  [affinityCount]*queue
	group   *errgroup.Group
	jobs    *jobs

	// owned by the loop
	active *project.Project
	busy   map[string]bool
}

type observerEntry struct {
	id int
	o  Observer
}

// New creates a stopped Service
func New(opts Options) *Service {
	if opts.ExportHeight <= 0 {
		opts.ExportHeight = DefaultExportHeight
	}
	if opts.ExportBitrate <= 0 {
		opts.ExportBitrate = DefaultExportBitrate
	}
	s := &Service{
		opts:    opts,
		session: newSession(opts.Engine),
		pool:    newPool(),
		pending: make(map[string]*message),
		busy:    make(map[string]bool),
	}
	s.idle = newIdleTimer(opts.IdleGrace, s.idleFired)
	return s
}

// Start launches the coordination loop and the three workers
func (s *Service) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("editor service already running")
	}
	if s.opts.Engine == nil {
		return errors.New("editor service has no engine")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.jobs = newJobs(s.ctx)
	s.loop = newLoop()
	go s.loop.run()

	g, gctx := errgroup.WithContext(s.ctx)
	for i := range s.queues {
		q := newQueue()
		s.queues[i] = q
		g.Go(func() error {
			s.work(gctx, q)
			return nil
		})
	}
	s.group = g
	s.running.Store(true)

	s.loop.post(func() {
		if s.pendingCount() == 0 {
			s.idle.arm()
		}
	})
	return nil
}

// Stop cancels background jobs, lets running commands finish and fails the
// commands still queued. It returns ErrQueuedAtShutdown when there were any.
func (s *Service) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrNotRunning
	}
	s.idle.cancel()

	// helpers post their final status through the still open queues
	s.jobs.cancelAll()
	s.jobs.wait()

	s.cancel()
	for _, q := range s.queues {
		q.close()
	}
	if err := s.group.Wait(); err != nil {
		log.Printf("Editor worker stopped with error: %v", err)
	}

	var left, status []*message
	for _, q := range s.queues {
		for _, m := range q.drain() {
			if _, ok := m.cmd.(statusCommand); ok {
				status = append(status, m)
			} else {
				left = append(left, m)
			}
		}
	}
	if len(left) > 0 {
		log.Printf("%d command(s) still queued at shutdown", len(left))
	}
	s.loop.post(func() {
		// status reports need no worker; they only forward a job's result
		for _, m := range status {
			s.terminate(m.id, nil, nil, false)
		}
		for _, m := range left {
			s.terminate(m.id, nil, ErrQueuedAtShutdown, false)
		}
	})
	s.loop.stop()

	// Nothing runs on the loop any more; fail what is left in its place.
	for _, m := range s.pendingMessages() {
		s.terminate(m.id, nil, ErrNotRunning, false)
	}
	s.session.close()
	s.idle.cancel()

	if len(left) > 0 {
		return fmt.Errorf("%w: %d", ErrQueuedAtShutdown, len(left))
	}
	return nil
}

// Submit queues cmd and returns its request id
func (s *Service) Submit(cmd Command) (string, error) {
	if !s.running.Load() {
		return "", ErrNotRunning
	}
	return s.submit(cmd)
}

// submit skips the running check so background jobs can report while the
// service is stopping.
func (s *Service) submit(cmd Command) (string, error) {
	if a := cmd.Affinity(); a < 0 || a >= affinityCount {
		log.Printf("Dropping %T: %v %d", cmd, ErrUnhandledCommand, a)
		return "", ErrUnhandledCommand
	}

	m := s.pool.get(cmd)
	id := m.id
	s.pendingMu.Lock()
	s.pending[id] = m
	s.pendingMu.Unlock()
	s.idle.cancel()

	if !s.loop.post(func() { s.enqueue(m) }) {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()
		s.pool.put(m)
		return "", ErrNotRunning
	}
	return id, nil
}

// enqueue runs on the loop
func (s *Service) enqueue(m *message) {
	if p := s.active; p != nil && p.Path() == m.cmd.Project() {
		m.staged = m.cmd.prepare(p)
	}
	s.refreshBusy(m.cmd.Project())

	if th, ok := m.cmd.(thumbnailCommand); ok && !s.opts.DisableThumbnailDedup {
		s.supersede(m, th)
	}
	if err := s.queues[m.cmd.Affinity()].push(m); err != nil {
		s.terminate(m.id, nil, err, false)
	}
}

// supersede drops queued thumbnail requests for the same owner made with
// another token. Requests a worker already picked up are left alone.
func (s *Service) supersede(m *message, th thumbnailCommand) {
	owner, token := th.thumbnailKey()
	removed := s.queues[AffinityThumbnail].removeIf(func(q *message) bool {
		other, ok := q.cmd.(thumbnailCommand)
		if !ok || q.cmd.Project() != m.cmd.Project() {
			return false
		}
		o, t := other.thumbnailKey()
		return o == owner && t != token
	})
	for _, old := range removed {
		if s.takePending(old.id) == nil {
			continue
		}
		log.Printf("Dropped thumbnail request %s for %s, superseded by %s", old.id, owner, m.id)
		s.pool.put(old)
	}
}

func (s *Service) work(ctx context.Context, q *queue) {
	for {
		m, ok := q.pop()
		if !ok {
			return
		}
		s.execute(ctx, m)
	}
}

func (s *Service) execute(ctx context.Context, m *message) {
	s.pendingMu.Lock()
	m.state = model.CommandRunning
	s.pendingMu.Unlock()

	id := m.id
	result, err := s.safeRun(ctx, m)
	if errors.Is(err, errDetached) {
		return
	}
	s.finish(id, result, err, false)
}

// safeRun turns a panicking command into a failed one
func (s *Service) safeRun(ctx context.Context, m *message) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Command %T panicked: %v", m.cmd, r)
			err = fmt.Errorf("command %T panicked: %v", m.cmd, r)
		}
	}()
	return m.cmd.run(&execution{ctx: ctx, svc: s, msg: m})
}

// finish posts the terminal completion of a request to the loop
func (s *Service) finish(id string, result any, err error, cancelled bool) {
	if !s.loop.post(func() { s.terminate(id, result, err, cancelled) }) {
		log.Printf("Request %s finished after shutdown: %v", id, err)
	}
}

// terminate runs on the loop. It is a no-op for requests no longer pending,
// which makes the release of each message happen exactly once.
func (s *Service) terminate(id string, result any, err error, cancelled bool) {
	m := s.takePending(id)
	if m == nil {
		return
	}
	path := m.cmd.Project()
	s.refreshBusy(path)

	if cancelled {
		err = nil
	}
	c := &completion{svc: s, path: path, staged: m.staged, result: result, err: err, cancelled: cancelled}
	ev := m.cmd.complete(c)
	s.pool.put(m)

	if ev != nil {
		o := ev.outcome()
		o.Path, o.RequestID, o.Error, o.Final, o.Cancelled = path, id, err, true, cancelled
		s.fanOut(ev)
	}
	if s.pendingCount() == 0 && s.running.Load() {
		s.idle.arm()
	}
}

// progress posts a non-final event for a running request
func (s *Service) progress(id string, ev Event) {
	if !s.loop.post(func() { s.deliver(id, ev) }) {
		releaseUnclaimed(ev)
	}
}

// deliver runs on the loop
func (s *Service) deliver(id string, ev Event) {
	defer releaseUnclaimed(ev)

	s.pendingMu.Lock()
	m := s.pending[id]
	s.pendingMu.Unlock()
	if m == nil {
		return
	}
	o := ev.outcome()
	o.Path, o.RequestID, o.Final = m.cmd.Project(), id, false
	s.fanOut(ev)
}

// refreshBusy runs on the loop
func (s *Service) refreshBusy(path string) {
	busy := false
	s.pendingMu.Lock()
	for _, m := range s.pending {
		if m.cmd.exclusive() && m.cmd.Project() == path {
			busy = true
			break
		}
	}
	s.pendingMu.Unlock()

	if busy == s.busy[path] {
		return
	}
	if busy {
		s.busy[path] = true
	} else {
		delete(s.busy, path)
	}
	s.fanOut(&ProjectEditStateChanged{Outcome: Outcome{Path: path, Final: true}, Busy: busy})
}

func (s *Service) fanOut(ev Event) {
	s.observersMu.RLock()
	observers := s.observers
	s.observersMu.RUnlock()
	for _, e := range observers {
		e.o.OnEvent(ev)
	}
}

func (s *Service) takePending(id string) *message {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	m := s.pending[id]
	delete(s.pending, id)
	return m
}

func (s *Service) pendingCount() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return len(s.pending)
}

func (s *Service) pendingMessages() []*message {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	out := make([]*message, 0, len(s.pending))
	for _, m := range s.pending {
		out = append(out, m)
	}
	return out
}

func (s *Service) idleFired(gen uint64) {
	s.loop.post(func() {
		if !s.idle.current(gen) || s.pendingCount() > 0 {
			return
		}
		if s.opts.OnIdle != nil {
			go s.opts.OnIdle()
		}
	})
}

// Pending returns the number of requests without a terminal event yet
func (s *Service) Pending() int {
	return s.pendingCount()
}

// State returns the lifecycle state of a pending request
func (s *Service) State(requestID string) (model.CommandState, bool) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	m, ok := s.pending[requestID]
	if !ok {
		return "", false
	}
	return m.state, true
}

// AddObserver registers o and returns a function that removes it
func (s *Service) AddObserver(o Observer) (remove func()) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	s.nextObserver++
	id := s.nextObserver
	s.observers = append(append([]observerEntry(nil), s.observers...), observerEntry{id: id, o: o})

	return func() {
		s.observersMu.Lock()
		defer s.observersMu.Unlock()
		kept := make([]observerEntry, 0, len(s.observers))
		for _, e := range s.observers {
			if e.id != id {
				kept = append(kept, e)
			}
		}
		s.observers = kept
	}
}

// View runs fn on the loop with the active project, which may be nil, and
// waits for it. It must not be called from an observer.
func (s *Service) View(fn func(p *project.Project)) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	done := make(chan struct{})
	if !s.loop.post(func() {
		defer close(done)
		fn(s.active)
	}) {
		return ErrNotRunning
	}
	<-done
	return nil
}

// Current returns the active project. Only observers, which run on the
// loop, may call it.
func (s *Service) Current() *project.Project {
	return s.active
}

// Projects lists the catalogued projects, most recently saved first
func (s *Service) Projects(ctx context.Context) ([]catalog.Entry, error) {
	if s.opts.Catalog == nil {
		return nil, errors.New("no project catalog configured")
	}
	return s.opts.Catalog.List(ctx)
}

// catalogUpsert records the project summary; catalog errors are not fatal
func (s *Service) catalogUpsert(ctx context.Context, path string, md model.Metadata) {
	if s.opts.Catalog == nil {
		return
	}
	if err := s.opts.Catalog.Upsert(ctx, catalog.EntryFromMetadata(path, md)); err != nil {
		log.Printf("Failed to update catalog for %s: %v", path, err)
	}
}
