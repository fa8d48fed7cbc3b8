package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/movie-editor/internal/download"
	"github.com/ytget/movie-editor/internal/engine"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/platform"
	"github.com/ytget/movie-editor/internal/project"
)

// ExportExtension is the container of exported movies
const ExportExtension = ".mp4"

// opened is the result of a successful create or load
type opened struct {
	md   model.Metadata
	snap *engine.Snapshot
}

// open makes the opened project the active one; runs on the loop
func (s *Service) open(path string, o *opened) *project.Project {
	s.active = project.New(path, o.md, o.snap.Items, o.snap.AudioTracks)
	return s.active
}

// syncActive drops the active project once the session no longer holds it
func (s *Service) syncActive() {
	if s.active != nil && s.session.openPath() != s.active.Path() {
		s.active = nil
	}
}

// report submits a status command for a background job
func (s *Service) report(cmd Command) {
	if _, err := s.submit(cmd); err != nil {
		log.Printf("Failed to report %T for %s: %v", cmd, cmd.Project(), err)
	}
}

// CreateProject creates a project in a new folder and makes it the active one
type CreateProject struct {
	Target
	timelineOp
	Name        string
	Theme       string
	AspectRatio model.AspectRatio
}

func (cmd CreateProject) run(x *execution) (any, error) {
	now := time.Now()
	md := model.Metadata{
		Name:        cmd.Name,
		Theme:       cmd.Theme,
		AspectRatio: cmd.AspectRatio,
		CreatedAt:   now,
		SavedAt:     now,
	}
	if md.Name == "" {
		md.Name = filepath.Base(cmd.Path)
	}
	spec := engine.ProjectSpec{Name: md.Name, Theme: cmd.Theme, AspectRatio: cmd.AspectRatio}

	var snap *engine.Snapshot
	_, err := x.svc.session.create(x.ctx, cmd.Path, spec, func(ed engine.Editor) error {
		var err error
		if snap, err = ed.Snapshot(); err != nil {
			return err
		}
		return project.WriteMetadata(cmd.Path, md)
	})
	if err != nil {
		return nil, err
	}
	x.svc.catalogUpsert(x.ctx, cmd.Path, md)
	return &opened{md: md, snap: snap}, nil
}

func (cmd CreateProject) complete(c *completion) Event {
	ev := &ProjectCreated{}
	if o, ok := c.result.(*opened); ok && c.ok() {
		ev.Metadata = c.svc.open(cmd.Path, o).Metadata()
	} else {
		c.svc.syncActive()
	}
	return ev
}

// LoadProject opens an existing project and makes it the active one
type LoadProject struct {
	Target
	sharedOp
}

func (cmd LoadProject) run(x *execution) (any, error) {
	var md model.Metadata
	var snap *engine.Snapshot
	_, err := x.svc.session.load(x.ctx, cmd.Path, func(ed engine.Editor) error {
		var err error
		if md, err = project.ReadMetadata(cmd.Path); err != nil {
			return err
		}
		snap, err = ed.Snapshot()
		return err
	})
	if err != nil {
		return nil, err
	}
	x.svc.catalogUpsert(x.ctx, cmd.Path, md)
	return &opened{md: md, snap: snap}, nil
}

func (cmd LoadProject) complete(c *completion) Event {
	ev := &ProjectLoaded{}
	if o, ok := c.result.(*opened); ok && c.ok() {
		ev.Metadata = c.svc.open(cmd.Path, o).Metadata()
	} else {
		c.svc.syncActive()
	}
	return ev
}

// SaveProject persists the engine timeline and the project metadata
type SaveProject struct {
	Target
	sharedOp
}

func (cmd SaveProject) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	v, err := x.onLoop(func(p *project.Project) any {
		if p == nil {
			return nil
		}
		return p.Metadata()
	})
	if err != nil {
		return nil, err
	}
	md, ok := v.(model.Metadata)
	if !ok {
		return nil, ErrNoProject
	}
	if err := ed.Save(x.ctx); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	md.SavedAt = time.Now()
	if err := project.WriteMetadata(cmd.Path, md); err != nil {
		return nil, err
	}
	x.svc.catalogUpsert(x.ctx, cmd.Path, md)
	return md.SavedAt, nil
}

func (cmd SaveProject) complete(c *completion) Event {
	ev := &ProjectSaved{}
	if at, ok := c.result.(time.Time); ok && c.ok() {
		ev.SavedAt = at
		if p := c.project(); p != nil {
			p.MarkSaved(at)
		}
	}
	return ev
}

// ReleaseProject closes the active project without saving
type ReleaseProject struct {
	Target
	timelineOp
}

func (cmd ReleaseProject) run(x *execution) (any, error) {
	return nil, x.svc.session.release(cmd.Path)
}

func (cmd ReleaseProject) complete(c *completion) Event {
	c.svc.syncActive()
	return &ProjectReleased{}
}

// DeleteProject closes the project if it is open and removes its folder
type DeleteProject struct {
	Target
	timelineOp
}

func (cmd DeleteProject) run(x *execution) (any, error) {
	if err := x.svc.session.remove(cmd.Path); err != nil {
		return nil, err
	}
	if cat := x.svc.opts.Catalog; cat != nil {
		if err := cat.Remove(x.ctx, cmd.Path); err != nil {
			log.Printf("Failed to remove %s from catalog: %v", cmd.Path, err)
		}
	}
	return nil, nil
}

func (cmd DeleteProject) complete(c *completion) Event {
	c.svc.syncActive()
	return &ProjectDeleted{}
}

// ApplyTheme restyles the whole timeline with a built-in theme
type ApplyTheme struct {
	Target
	timelineOp
	Theme string
}

func (cmd ApplyTheme) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return ed.ApplyTheme(x.ctx, cmd.Theme)
}

func (cmd ApplyTheme) complete(c *completion) Event {
	if snap, ok := c.result.(*engine.Snapshot); ok && c.ok() {
		if p := c.project(); p != nil {
			p.SetTheme(snap.Theme)
			p.ReplaceTimeline(snap.Items, snap.AudioTracks)
		}
	}
	return &ThemeApplied{Theme: cmd.Theme}
}

// SetAspectRatio changes the movie frame shape
type SetAspectRatio struct {
	Target
	timelineOp
	AspectRatio model.AspectRatio
}

func (cmd SetAspectRatio) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return ed.SetAspectRatio(x.ctx, cmd.AspectRatio)
}

func (cmd SetAspectRatio) complete(c *completion) Event {
	ev := &MetadataChanged{Property: PropertyAspectRatio}
	if p := c.project(); p != nil {
		if snap, ok := c.result.(*engine.Snapshot); ok && c.ok() {
			p.SetAspectRatio(snap.AspectRatio)
			p.ReplaceTimeline(snap.Items, snap.AudioTracks)
		}
		ev.Metadata = p.Metadata()
	}
	return ev
}

// SetPlayhead stores the playhead position in the project metadata
type SetPlayhead struct {
	Target
	sharedOp
	Position time.Duration
}

func (cmd SetPlayhead) run(x *execution) (any, error) {
	_, err := x.editor()
	return nil, err
}

func (cmd SetPlayhead) complete(c *completion) Event {
	return changeMetadata(c, PropertyPlayhead, func(p *project.Project) { p.SetPlayhead(cmd.Position) })
}

// SetZoom stores the timeline zoom level in the project metadata
type SetZoom struct {
	Target
	sharedOp
	Level int
}

func (cmd SetZoom) run(x *execution) (any, error) {
	_, err := x.editor()
	return nil, err
}

func (cmd SetZoom) complete(c *completion) Event {
	return changeMetadata(c, PropertyZoom, func(p *project.Project) { p.SetZoom(cmd.Level) })
}

// RemoveDownload forgets a download record; the file itself is kept
type RemoveDownload struct {
	Target
	sharedOp
	Filename string
}

func (cmd RemoveDownload) run(x *execution) (any, error) {
	if _, err := x.editor(); err != nil {
		return nil, err
	}
	v, err := x.onLoop(func(p *project.Project) any {
		if p == nil {
			return false
		}
		for _, d := range p.Downloads() {
			if d.Filename == cmd.Filename {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if found, _ := v.(bool); !found {
		return nil, &model.NotFoundError{Kind: "download", ID: cmd.Filename}
	}
	return nil, nil
}

func (cmd RemoveDownload) complete(c *completion) Event {
	return changeMetadata(c, PropertyDownloads, func(p *project.Project) { p.RemoveDownload(cmd.Filename) })
}

func changeMetadata(c *completion, prop Property, apply func(*project.Project)) Event {
	ev := &MetadataChanged{Property: prop}
	if p := c.project(); p != nil {
		if c.ok() {
			apply(p)
		}
		ev.Metadata = p.Metadata()
	}
	return ev
}

// ExportMovie renders the timeline into a movie file on a background job.
// The request stays pending until the job finishes or is cancelled.
type ExportMovie struct {
	Target
	timelineOp
	OutputPath string // defaults to a new file in Options.ExportDir
	Height     int
	Bitrate    int // kbit/s
}

func (cmd ExportMovie) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	name, err := x.onLoop(func(p *project.Project) any {
		if p == nil {
			return ""
		}
		return p.Name()
	})
	if err != nil {
		return nil, err
	}
	out, err := cmd.outputPath(x.svc.opts.ExportDir, name.(string))
	if err != nil {
		return nil, err
	}
	spec := engine.ExportSpec{OutputPath: out, Height: cmd.Height, Bitrate: cmd.Bitrate}
	if spec.Height <= 0 {
		spec.Height = x.svc.opts.ExportHeight
	}
	if spec.Bitrate <= 0 {
		spec.Bitrate = x.svc.opts.ExportBitrate
	}

	svc, request, target := x.svc, x.msg.id, cmd.Target
	svc.jobs.start(request, cmd.Path, jobExport, func(ctx context.Context, jb *job) {
		err := ed.Export(ctx, spec, func(percent int) {
			svc.report(exportStatus{Target: target, request: request, percent: percent})
		})
		cancelled := jb.cancelled.Load() || errors.Is(err, context.Canceled)
		switch {
		case cancelled:
			if err == nil {
				// finished before the cancellation reached the renderer
				if rmErr := os.Remove(out); rmErr != nil && !os.IsNotExist(rmErr) {
					log.Printf("Failed to remove cancelled export %s: %v", out, rmErr)
				}
			}
			err = ErrCancelled
		case err == nil && svc.opts.Gallery != nil:
			if gErr := svc.opts.Gallery(out); gErr != nil {
				log.Printf("Failed to register %s with the gallery: %v", out, gErr)
			}
		}
		svc.report(exportStatus{Target: target, request: request, final: true, filename: out, err: err, cancelled: cancelled})
	})
	return nil, errDetached
}

func (cmd ExportMovie) outputPath(dir, name string) (string, error) {
	if cmd.OutputPath != "" {
		return cmd.OutputPath, nil
	}
	if dir == "" {
		var err error
		if dir, err = platform.GetHomeMoviesDir(); err != nil {
			return "", err
		}
	}
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if name == "" {
		name = filepath.Base(cmd.Path)
	}
	return platform.UniqueFilename(dir, name+ExportExtension)
}

func (cmd ExportMovie) complete(c *completion) Event {
	filename, _ := c.result.(string)
	if c.ok() && !c.cancelled && filename != "" {
		if p := c.project(); p != nil {
			p.SetExportedMovie(filename)
		}
	}
	return &ExportCompleted{Filename: filename}
}

// CancelExport stops the running export of the project
type CancelExport struct {
	Target
	sharedOp
}

func (cmd CancelExport) run(x *execution) (any, error) {
	if !x.svc.jobs.cancel(cmd.Path, jobExport) {
		return nil, &model.NotFoundError{Kind: "export", ID: cmd.Path}
	}
	return nil, nil
}

func (cmd CancelExport) complete(c *completion) Event {
	return &ExportCancelRequested{}
}

// statusCommand marks the internal reports of background jobs
type statusCommand interface {
	Command
	status()
}

// exportStatus forwards export progress and the final result to the loop
type exportStatus struct {
	Target
	sharedOp
	request   string
	percent   int
	final     bool
	filename  string
	err       error
	cancelled bool
}

func (exportStatus) status() {}

func (cmd exportStatus) run(*execution) (any, error) { return nil, nil }

func (cmd exportStatus) complete(c *completion) Event {
	if !cmd.final {
		c.svc.deliver(cmd.request, &ExportProgress{Percent: cmd.percent})
		return nil
	}
	c.svc.terminate(cmd.request, cmd.filename, cmd.err, cmd.cancelled)
	return nil
}

// DownloadMedia fetches a content reference into the project folder on a
// background job and adds every fetched file to the project. Playlist
// references bring in one file per entry, placed one after another.
type DownloadMedia struct {
	Target
	timelineOp
	URI     string
	AfterID string
}

func (cmd DownloadMedia) run(x *execution) (any, error) {
	dl := x.svc.opts.Downloader
	if dl == nil {
		return nil, errors.New("no downloader configured")
	}
	if _, err := x.editor(); err != nil {
		return nil, err
	}

	svc, request, target := x.svc, x.msg.id, cmd.Target
	svc.jobs.start(request, cmd.Path, jobDownload, func(ctx context.Context, jb *job) {
		final := downloadStatus{Target: target, request: request, final: true}
		uris, err := dl.Expand(ctx, cmd.URI)
		if err != nil {
			final.err = err
			svc.report(final)
			return
		}

		after := cmd.AfterID
		for i, uri := range uris {
			res, err := dl.Fetch(ctx, uri, cmd.Path)
			if err == nil {
				_, _, err = res.Kind()
			}
			if err != nil {
				if ctx.Err() != nil {
					final.err = ctx.Err()
					break
				}
				log.Printf("Failed to download %s into %s: %v", uri, cmd.Path, err)
				if final.err == nil {
					final.err = err
				}
				continue
			}

			st := downloadStatus{
				Target:  target,
				request: request,
				result:  res,
				itemID:  uuid.NewString(),
				afterID: after,
				index:   i,
				total:   len(uris),
			}
			if _, audio, _ := res.Kind(); !audio {
				after = st.itemID
			}
			svc.report(st)
			final.files++
		}
		final.cancelled = jb.cancelled.Load()
		svc.report(final)
	})
	return nil, errDetached
}

func (cmd DownloadMedia) complete(c *completion) Event {
	files, _ := c.result.(int)
	return &DownloadCompleted{Files: files}
}

// downloadStatus records one fetched file, or ends the download request
type downloadStatus struct {
	Target
	sharedOp
	request   string
	result    *download.Result
	itemID    string
	afterID   string
	index     int
	total     int
	final     bool
	files     int
	err       error
	cancelled bool
}

func (downloadStatus) status() {}

func (cmd downloadStatus) run(*execution) (any, error) { return nil, nil }

func (cmd downloadStatus) complete(c *completion) Event {
	if cmd.final {
		c.svc.terminate(cmd.request, cmd.files, cmd.err, cmd.cancelled)
		return nil
	}

	res := cmd.result
	d := model.Download{SourceURI: res.SourceURI, MimeType: res.MimeType, Filename: res.Filename, Time: time.Now()}
	if p := c.project(); p != nil {
		p.AddDownload(d)
	}

	var add Command
	kind, audio, _ := res.Kind()
	switch {
	case audio:
		add = AddAudioTrack{Target: cmd.Target, TrackID: cmd.itemID, Filename: res.Filename}
	case kind == model.MediaKindImage:
		add = AddImage{Target: cmd.Target, ItemID: cmd.itemID, Filename: res.Filename, AfterID: cmd.afterID}
	default:
		add = AddVideo{Target: cmd.Target, ItemID: cmd.itemID, Filename: res.Filename, AfterID: cmd.afterID}
	}
	if _, err := c.svc.submit(add); err != nil {
		log.Printf("Failed to add downloaded %s: %v", res.Filename, err)
	}
	c.svc.deliver(cmd.request, &DownloadProgress{Download: d, Index: cmd.index + 1, Total: cmd.total})
	return nil
}
