package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/movie-editor/internal/export"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/platform"
	"github.com/ytget/movie-editor/internal/waveform"
)

// Engine defaults
const (
	TimelineFileName     = "timeline.json"
	DefaultImageDuration = 3 * time.Second
	MaxVolume            = 100
)

// Options wires the Memory engine to its media tooling
type Options struct {
	Renderer Renderer
	Prober   Prober
	Decoder  AudioDecoder
	Waveform waveform.Options
}

// Memory keeps each open timeline in memory and persists it as JSON inside
// the project folder.
type Memory struct {
	opts Options
}

// NewMemory creates a Memory engine
func NewMemory(opts Options) *Memory {
	return &Memory{opts: opts}
}

// NewFFmpegMemory creates a Memory engine that probes, decodes and renders with ffmpeg
func NewFFmpegMemory(svc *export.Service, wf waveform.Options) *Memory {
	return NewMemory(Options{Renderer: svc, Prober: svc, Decoder: svc, Waveform: wf})
}

// Create starts a new project in path, which must not hold one already
func (m *Memory) Create(ctx context.Context, path string, spec ProjectSpec) (Editor, error) {
	if _, err := os.Stat(filepath.Join(path, TimelineFileName)); err == nil {
		return nil, fmt.Errorf("project already exists in %s", path)
	}
	if spec.Theme != "" {
		if _, ok := LookupTheme(spec.Theme); !ok {
			return nil, &model.NotFoundError{Kind: "theme", ID: spec.Theme}
		}
	}
	if spec.AspectRatio != model.AspectRatioUndefined && !isSupportedAspect(spec.AspectRatio) {
		return nil, fmt.Errorf("unsupported aspect ratio %q", spec.AspectRatio)
	}
	if err := platform.CreateDirectoryIfNotExists(path); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	e := &memoryEditor{
		engine: m,
		path:   path,
		tl: timeline{
			Name:        spec.Name,
			Theme:       spec.Theme,
			AspectRatio: spec.AspectRatio,
		},
	}
	if err := e.persist(); err != nil {
		return nil, err
	}
	return e, nil
}

// Load opens the project in path
func (m *Memory) Load(ctx context.Context, path string) (Editor, error) {
	data, err := os.ReadFile(filepath.Join(path, TimelineFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &model.NotFoundError{Kind: "project", ID: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline: %w", err)
	}

	var tl timeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("failed to parse timeline: %w", err)
	}
	tl.relink()
	return &memoryEditor{engine: m, path: path, tl: tl}, nil
}

type timeline struct {
	Name        string              `json:"name"`
	Theme       string              `json:"theme,omitempty"`
	AspectRatio model.AspectRatio   `json:"aspectRatio,omitempty"`
	Items       []*model.MediaItem  `json:"items"`
	AudioTracks []*model.AudioTrack `json:"audioTracks"`
}

// relink restores the shared transition between neighbors after decoding,
// which writes the value once per referencing item.
func (tl *timeline) relink() {
	for i := 0; i+1 < len(tl.Items); i++ {
		end, next := tl.Items[i].EndTransition, tl.Items[i+1]
		if end != nil && next.BeginTransition != nil && next.BeginTransition.ID == end.ID {
			next.BeginTransition = end
		}
	}
}

type memoryEditor struct {
	engine *Memory
	path   string

	mu       sync.Mutex
	tl       timeline
	released bool
}

func (e *memoryEditor) lock() error {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return ErrReleased
	}
	return nil
}

func (e *memoryEditor) Path() string { return e.path }

func (e *memoryEditor) Snapshot() (*Snapshot, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	return e.snapshot(), nil
}

func (e *memoryEditor) Save(ctx context.Context) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	return e.persist()
}

func (e *memoryEditor) Release() error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	e.released = true
	return nil
}

func (e *memoryEditor) ApplyTheme(ctx context.Context, id string) (*Snapshot, error) {
	theme, ok := LookupTheme(id)
	if !ok {
		return nil, &model.NotFoundError{Kind: "theme", ID: id}
	}
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	items := e.tl.Items
	for i := 0; i+1 < len(items); i++ {
		t := theme.newTransition(newID())
		if limit := min(items[i].TimelineDuration(), items[i+1].TimelineDuration()) / 2; t.Duration.Committed > limit {
			t.Duration = model.NewEditable(limit)
		}
		items[i].EndTransition = t
		items[i+1].BeginTransition = t
	}
	if len(items) > 0 && theme.TitleLayout != "" {
		first := items[0]
		first.Overlay = &model.Overlay{
			ID:        newID(),
			StartTime: model.NewEditable(time.Duration(0)),
			Duration:  model.NewEditable(min(theme.TitleDuration, first.TimelineDuration())),
			Title:     e.tl.Name,
			Layout:    theme.TitleLayout,
		}
	}
	if theme.Effect != "" {
		for _, item := range items {
			if item.Effect == nil {
				item.Effect = &model.Effect{ID: newID(), Kind: theme.Effect, Duration: item.TimelineDuration()}
			}
		}
	}
	e.tl.Theme = id
	return e.snapshot(), nil
}

func (e *memoryEditor) SetAspectRatio(ctx context.Context, ratio model.AspectRatio) (*Snapshot, error) {
	if !isSupportedAspect(ratio) {
		return nil, fmt.Errorf("unsupported aspect ratio %q", ratio)
	}
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	e.tl.AspectRatio = ratio
	return e.snapshot(), nil
}

func (e *memoryEditor) Export(ctx context.Context, spec ExportSpec, progress func(int)) error {
	if e.engine.opts.Renderer == nil {
		return errors.New("engine has no renderer")
	}
	if err := e.lock(); err != nil {
		return err
	}
	req := export.Request{
		OutputPath: spec.OutputPath,
		Height:     spec.Height,
		Bitrate:    spec.Bitrate,
		Title:      e.tl.Name,
	}
	for _, item := range e.tl.Items {
		span := item.Boundaries.Committed
		req.Clips = append(req.Clips, export.Clip{
			Filename: item.Filename,
			Begin:    span.Begin,
			End:      span.End,
			Still:    !item.IsVideo(),
		})
	}
	for _, t := range e.tl.AudioTracks {
		if t.Muted.Committed {
			continue
		}
		span := t.Boundaries.Committed
		req.Audio = &export.Track{
			Filename: t.Filename,
			Begin:    span.Begin,
			End:      span.End,
			Volume:   t.Volume.Committed,
			Loop:     t.Loop.Committed,
		}
		break
	}
	e.mu.Unlock()

	return e.engine.opts.Renderer.Export(ctx, req, progress)
}

// persist writes the timeline; callers hold mu
func (e *memoryEditor) persist() error {
	data, err := json.MarshalIndent(e.tl, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode timeline: %w", err)
	}
	tmp := filepath.Join(e.path, TimelineFileName+".tmp")
	if err := os.WriteFile(tmp, data, platform.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write timeline: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(e.path, TimelineFileName)); err != nil {
		return fmt.Errorf("failed to write timeline: %w", err)
	}
	return nil
}

// snapshot deep-copies the timeline; callers hold mu
func (e *memoryEditor) snapshot() *Snapshot {
	return &Snapshot{
		Name:        e.tl.Name,
		Theme:       e.tl.Theme,
		AspectRatio: e.tl.AspectRatio,
		Items:       cloneItems(e.tl.Items),
		AudioTracks: cloneTracks(e.tl.AudioTracks),
	}
}

// cloneItems copies items keeping one shared copy per transition
func cloneItems(items []*model.MediaItem) []*model.MediaItem {
	seen := make(map[*model.Transition]*model.Transition)
	cloneT := func(t *model.Transition) *model.Transition {
		if t == nil {
			return nil
		}
		if c, ok := seen[t]; ok {
			return c
		}
		c := t.Clone()
		seen[t] = c
		return c
	}

	out := make([]*model.MediaItem, 0, len(items))
	for _, item := range items {
		c := cloneItem(item)
		c.BeginTransition = cloneT(item.BeginTransition)
		c.EndTransition = cloneT(item.EndTransition)
		out = append(out, c)
	}
	return out
}

func cloneItem(item *model.MediaItem) *model.MediaItem {
	c := *item
	c.Overlay = item.Overlay.Clone()
	c.Effect = item.Effect.Clone()
	c.BeginTransition = item.BeginTransition.Clone()
	c.EndTransition = item.EndTransition.Clone()
	return &c
}

func cloneTracks(tracks []*model.AudioTrack) []*model.AudioTrack {
	out := make([]*model.AudioTrack, 0, len(tracks))
	for _, t := range tracks {
		c := *t
		out = append(out, &c)
	}
	return out
}

func isSupportedAspect(r model.AspectRatio) bool {
	switch r {
	case model.AspectRatio3x2, model.AspectRatio16x9, model.AspectRatio4x3, model.AspectRatio5x3, model.AspectRatio11x9:
		return true
	}
	return false
}

// nearestAspect maps a frame size to the closest supported aspect ratio
func nearestAspect(width, height int) model.AspectRatio {
	if width <= 0 || height <= 0 {
		return model.AspectRatioUndefined
	}
	candidates := []struct {
		ratio model.AspectRatio
		value float64
	}{
		{model.AspectRatio3x2, 3.0 / 2},
		{model.AspectRatio16x9, 16.0 / 9},
		{model.AspectRatio4x3, 4.0 / 3},
		{model.AspectRatio5x3, 5.0 / 3},
		{model.AspectRatio11x9, 11.0 / 9},
	}
	v := float64(width) / float64(height)
	if v < 1 {
		v = 1 / v
	}
	best, bestDiff := candidates[0].ratio, 1e9
	for _, c := range candidates {
		diff := v - c.value
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = c.ratio, diff
		}
	}
	return best
}

func newID() string {
	return uuid.NewString()
}
