package project

import (
	"time"

	"github.com/ytget/movie-editor/internal/model"
)

// Project is the application-side mirror of one engine project
type Project struct {
	path   string
	md     model.Metadata
	items  []*model.MediaItem
	tracks []*model.AudioTrack
	clean  bool
}

// New builds a clean project from persisted metadata and an engine snapshot.
func New(path string, md model.Metadata, items []*model.MediaItem, tracks []*model.AudioTrack) *Project {
	md.Downloads = append([]model.Download(nil), md.Downloads...)
	return &Project{
		path:   path,
		md:     md,
		items:  append([]*model.MediaItem(nil), items...),
		tracks: append([]*model.AudioTrack(nil), tracks...),
		clean:  true,
	}
}

// Path returns the project folder
func (p *Project) Path() string { return p.path }

// Name returns the user-visible project name
func (p *Project) Name() string { return p.md.Name }

// SetName renames the project
func (p *Project) SetName(name string) {
	p.md.Name = name
	p.clean = false
}

// Theme returns the applied theme, empty when none
func (p *Project) Theme() string { return p.md.Theme }

// SetTheme records the applied theme
func (p *Project) SetTheme(theme string) {
	p.md.Theme = theme
	p.clean = false
}

// AspectRatio returns the movie aspect ratio
func (p *Project) AspectRatio() model.AspectRatio { return p.md.AspectRatio }

// SetAspectRatio records the movie aspect ratio
func (p *Project) SetAspectRatio(ratio model.AspectRatio) {
	p.md.AspectRatio = ratio
	p.clean = false
}

// Playhead returns the last playhead position
func (p *Project) Playhead() time.Duration { return p.md.Playhead }

// SetPlayhead stores the playhead position
func (p *Project) SetPlayhead(pos time.Duration) {
	p.md.Playhead = pos
	p.clean = false
}

// Zoom returns the timeline zoom level
func (p *Project) Zoom() int { return p.md.Zoom }

// SetZoom stores the timeline zoom level
func (p *Project) SetZoom(level int) {
	p.md.Zoom = level
	p.clean = false
}

// ExportedMovie returns the last exported movie file, if any
func (p *Project) ExportedMovie() string { return p.md.ExportedMovie }

// SetExportedMovie records a finished export
func (p *Project) SetExportedMovie(filename string) {
	p.md.ExportedMovie = filename
	p.clean = false
}

// Downloads returns a copy of the download records
func (p *Project) Downloads() []model.Download {
	return append([]model.Download(nil), p.md.Downloads...)
}

// AddDownload records a fetched file
func (p *Project) AddDownload(d model.Download) {
	p.md.Downloads = append(p.md.Downloads, d)
	p.clean = false
}

// RemoveDownload forgets the record for filename. It reports whether one existed.
func (p *Project) RemoveDownload(filename string) bool {
	for i, d := range p.md.Downloads {
		if d.Filename == filename {
			p.md.Downloads = append(p.md.Downloads[:i], p.md.Downloads[i+1:]...)
			p.clean = false
			return true
		}
	}
	return false
}

// MarkChanged flags an in-place edit of one of the project's entities
func (p *Project) MarkChanged() { p.clean = false }

// IsClean reports whether nothing changed since the last save or load
func (p *Project) IsClean() bool { return p.clean }

// MarkSaved records a successful save
func (p *Project) MarkSaved(at time.Time) {
	p.md.SavedAt = at
	p.clean = true
}

// SavedAt returns the time of the last save
func (p *Project) SavedAt() time.Time { return p.md.SavedAt }

// Metadata returns the persistable record with the duration recomputed
func (p *Project) Metadata() model.Metadata {
	md := p.md
	md.Downloads = p.Downloads()
	md.Duration = p.ComputeDuration()
	return md
}

// ReplaceTimeline swaps in a fresh engine snapshot, e.g. after a theme change
func (p *Project) ReplaceTimeline(items []*model.MediaItem, tracks []*model.AudioTrack) {
	p.items = append([]*model.MediaItem(nil), items...)
	p.tracks = append([]*model.AudioTrack(nil), tracks...)
	p.clean = false
}

// ComputeDuration returns the movie length as the user sees it: the sum of the
// item durations minus the overlap of every transition between two items.
func (p *Project) ComputeDuration() time.Duration {
	var total time.Duration
	for i, item := range p.items {
		total += item.AppTimelineDuration()
		if i < len(p.items)-1 && item.EndTransition != nil {
			total -= item.EndTransition.Duration.Pending
		}
	}
	return total
}
