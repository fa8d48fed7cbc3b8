package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/ytget/movie-editor/internal/engine"
)

// session owns the engine handle of the open project. The handle is swapped
// only under mu, so no worker ever sees a half-opened project.
type session struct {
	mu     sync.Mutex
	engine engine.Engine
	editor engine.Editor
}

func newSession(e engine.Engine) *session {
	return &session{engine: e}
}

// current returns the handle when path is the open project
func (s *session) current(path string) (engine.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return nil, ErrNoProject
	}
	if s.editor.Path() != path {
		return nil, &ProjectMismatchError{Want: s.editor.Path(), Got: path}
	}
	return s.editor, nil
}

// openPath returns the folder of the open project, empty when none is
func (s *session) openPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return ""
	}
	return s.editor.Path()
}

// create opens a new project in path, replacing the open one. init runs with
// the new handle before it is published; when init fails the handle is
// released and a folder created here is removed.
func (s *session) create(ctx context.Context, path string, spec engine.ProjectSpec, init func(engine.Editor) error) (engine.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()

	_, statErr := os.Stat(path)
	existed := statErr == nil

	ed, err := s.engine.Create(ctx, path, spec)
	if err == nil {
		if err = init(ed); err != nil {
			if relErr := ed.Release(); relErr != nil {
				log.Printf("Failed to release editor for %s: %v", path, relErr)
			}
		}
	}
	if err != nil {
		if !existed {
			if rmErr := os.RemoveAll(path); rmErr != nil {
				log.Printf("Failed to remove project folder %s: %v", path, rmErr)
			}
		}
		return nil, fmt.Errorf("failed to create project %s: %w", path, err)
	}
	s.editor = ed
	return ed, nil
}

// load opens the project in path, replacing the open one
func (s *session) load(ctx context.Context, path string, init func(engine.Editor) error) (engine.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor != nil && s.editor.Path() == path {
		return s.editor, init(s.editor)
	}
	s.releaseLocked()

	ed, err := s.engine.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", path, err)
	}
	if err := init(ed); err != nil {
		if relErr := ed.Release(); relErr != nil {
			log.Printf("Failed to release editor for %s: %v", path, relErr)
		}
		return nil, fmt.Errorf("failed to load project %s: %w", path, err)
	}
	s.editor = ed
	return ed, nil
}

// release closes path when it is the open project
func (s *session) release(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return ErrNoProject
	}
	if s.editor.Path() != path {
		return &ProjectMismatchError{Want: s.editor.Path(), Got: path}
	}
	return s.releaseLocked()
}

// remove closes path if open and deletes its folder
func (s *session) remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor != nil && s.editor.Path() == path {
		if err := s.releaseLocked(); err != nil && !errors.Is(err, engine.ErrReleased) {
			return err
		}
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// close releases whatever is open; used at shutdown
func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.releaseLocked(); err != nil && !errors.Is(err, engine.ErrReleased) {
		log.Printf("Failed to release editor: %v", err)
	}
}

func (s *session) releaseLocked() error {
	if s.editor == nil {
		return nil
	}
	ed := s.editor
	s.editor = nil
	return ed.Release()
}
