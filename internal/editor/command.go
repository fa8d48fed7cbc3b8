package editor

import (
	"context"

	"github.com/ytget/movie-editor/internal/engine"
	"github.com/ytget/movie-editor/internal/project"
)

// Affinity selects the worker queue a command runs on
type Affinity int

const (
	AffinityTimeline Affinity = iota
	AffinityAudio
	AffinityThumbnail

	affinityCount
)

func (a Affinity) String() string {
	switch a {
	case AffinityTimeline:
		return "timeline"
	case AffinityAudio:
		return "audio"
	case AffinityThumbnail:
		return "thumbnail"
	}
	return "unknown"
}

// Command is an edit request. The set of commands is closed: every command
// is declared in this package and states its own routing, optimistic update,
// engine call and completion.
type Command interface {
	// Project is the folder of the project the command addresses
	Project() string
	Affinity() Affinity

	// exclusive commands mark their project busy while pending
	exclusive() bool

	// prepare runs on the loop at submission with the active project, which
	// it may update optimistically. The returned value is handed to run and
	// complete.
	prepare(p *project.Project) any

	// run performs the engine call on the worker
	run(x *execution) (any, error)

	// complete runs on the loop once the command is finished. It applies or
	// rolls back the project change and returns the event to fan out; nil
	// means the command has no observable outcome of its own.
	complete(c *completion) Event
}

// Target addresses a project by folder
type Target struct {
	Path string
}

// Project returns the project folder
func (t Target) Project() string { return t.Path }

// SetProject points the command at another project folder
func (t *Target) SetProject(path string) { t.Path = path }

type timelineOp struct{}

func (timelineOp) Affinity() Affinity { return AffinityTimeline }
func (timelineOp) exclusive() bool { return true }
func (timelineOp) prepare(*project.Project) any { return nil }

// sharedOp runs on the timeline queue without marking the project busy
type sharedOp struct{}

func (sharedOp) Affinity() Affinity { return AffinityTimeline }
func (sharedOp) exclusive() bool { return false }
func (sharedOp) prepare(*project.Project) any { return nil }

type audioOp struct{}

func (audioOp) Affinity() Affinity { return AffinityAudio }
func (audioOp) exclusive() bool { return false }
func (audioOp) prepare(*project.Project) any { return nil }

type thumbnailOp struct{}

func (thumbnailOp) Affinity() Affinity { return AffinityThumbnail }
func (thumbnailOp) exclusive() bool { return false }
func (thumbnailOp) prepare(*project.Project) any { return nil }

// execution is what a worker hands to Command.run
type execution struct {
	ctx context.Context
	svc *Service
	msg *message
}

// editor returns the engine session of the addressed project
func (x *execution) editor() (engine.Editor, error) {
	return x.svc.session.current(x.msg.cmd.Project())
}

func (x *execution) staged() any { return x.msg.staged }

// onLoop runs fn on the loop and waits for its result. fn gets the active
// project, or nil when the addressed project is not the active one. Every
// completion posted before the call has been applied by then.
func (x *execution) onLoop(fn func(p *project.Project) any) (any, error) {
	path := x.msg.cmd.Project()
	out := make(chan any, 1)
	if !x.svc.loop.post(func() {
		var p *project.Project
		if a := x.svc.active; a != nil && a.Path() == path {
			p = a
		}
		out <- fn(p)
	}) {
		return nil, ErrNotRunning
	}
	select {
	case v := <-out:
		return v, nil
	case <-x.ctx.Done():
		return nil, x.ctx.Err()
	}
}

// emit delivers a progress event for the running request
func (x *execution) emit(ev Event) {
	x.svc.progress(x.msg.id, ev)
}

// completion is what the loop hands to Command.complete
type completion struct {
	svc       *Service
	path      string
	staged    any
	result    any
	err       error
	cancelled bool
}

// project returns the active project when it is the addressed one
func (c *completion) project() *project.Project {
	if p := c.svc.active; p != nil && p.Path() == c.path {
		return p
	}
	return nil
}

func (c *completion) ok() bool { return c.err == nil }
