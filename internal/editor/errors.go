package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRunning is returned by Submit before Start and after Stop
	ErrNotRunning = errors.New("editor service is not running")

	// ErrUnhandledCommand is returned for a command without a worker queue
	ErrUnhandledCommand = errors.New("unhandled command")

	// ErrNoProject is reported by commands that need an open project
	ErrNoProject = errors.New("no project is open")

	// ErrCancelled marks a background job stopped on request
	ErrCancelled = errors.New("cancelled")

	// ErrQueuedAtShutdown is returned by Stop, wrapped with the number of
	// commands that never reached a worker.
	ErrQueuedAtShutdown = errors.New("commands still queued at shutdown")

	// errDetached tells the worker that a background job owns the request now
	errDetached = errors.New("command continues in the background")
)

// ProjectMismatchError reports a command addressed to a project other than the open one
type ProjectMismatchError struct {
	Want string
	Got  string
}

func (e *ProjectMismatchError) Error() string {
	return fmt.Sprintf("project %s is not open (open project: %s)", e.Got, e.Want)
}
