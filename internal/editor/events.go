package editor

import (
	"time"

	"github.com/ytget/movie-editor/internal/model"
)

// Event is implemented by every event type of this package
type Event interface {
	outcome() *Outcome
}

// Outcome is the part shared by all events
type Outcome struct {
	Path      string `json:"-"`
	RequestID string `json:"-"`
	Error     error  `json:"-"`
	Final     bool   `json:"-"` // false for progress events
	Cancelled bool   `json:"-"`
}

func (o *Outcome) outcome() *Outcome { return o }

// OutcomeOf returns the shared part of ev
func OutcomeOf(ev Event) *Outcome { return ev.outcome() }

// Succeeded reports a final event without error or cancellation
func (o *Outcome) Succeeded() bool {
	return o.Final && o.Error == nil && !o.Cancelled
}

// Property names the field a generic update event refers to
type Property string

const (
	PropertyRenderingMode Property = "rendering-mode"
	PropertyDuration      Property = "duration"
	PropertyBoundaries    Property = "boundaries"
	PropertyVolume        Property = "volume"
	PropertyMute          Property = "mute"
	PropertyLoop          Property = "loop"
	PropertyDucking       Property = "ducking"
	PropertyTiming        Property = "timing"
	PropertyAttributes    Property = "attributes"
	PropertyAspectRatio   Property = "aspect-ratio"
	PropertyPlayhead      Property = "playhead"
	PropertyZoom          Property = "zoom"
	PropertyDownloads     Property = "downloads"
)

// ProjectEditStateChanged is sent when a project starts or stops having
// exclusive commands in flight.
type ProjectEditStateChanged struct {
	Outcome
	Busy bool
}

type ProjectCreated struct {
	Outcome
	Metadata model.Metadata
}

type ProjectLoaded struct {
	Outcome
	Metadata model.Metadata
}

type ProjectSaved struct {
	Outcome
	SavedAt time.Time
}

type ProjectReleased struct {
	Outcome
}

type ProjectDeleted struct {
	Outcome
}

type ThemeApplied struct {
	Outcome
	Theme string
}

// MetadataChanged covers aspect ratio, playhead, zoom and download history changes
type MetadataChanged struct {
	Outcome
	Property Property
	Metadata model.Metadata
}

type ExportProgress struct {
	Outcome
	Percent int
}

// ExportCompleted ends an export; Outcome.Cancelled is set for a cancelled one
type ExportCompleted struct {
	Outcome
	Filename string
}

type ExportCancelRequested struct {
	Outcome
}

// DownloadProgress is sent for every file a download request brings in
type DownloadProgress struct {
	Outcome
	Download model.Download
	Index    int
	Total    int
}

type DownloadCompleted struct {
	Outcome
	Files int
}

type MediaItemAdded struct {
	Outcome
	Item    *model.MediaItem
	AfterID string
}

type MediaItemMoved struct {
	Outcome
	ItemID      string
	AfterID     string
	Replacement *model.Transition
}

type MediaItemRemoved struct {
	Outcome
	ItemID      string
	Replacement *model.Transition
}

type MediaItemUpdated struct {
	Outcome
	ItemID   string
	Property Property
}

type TransitionInserted struct {
	Outcome
	Transition *model.Transition
	AfterID    string
}

type TransitionRemoved struct {
	Outcome
	TransitionID string
}

type TransitionUpdated struct {
	Outcome
	TransitionID string
	Property     Property
}

type OverlayAdded struct {
	Outcome
	ItemID  string
	Overlay *model.Overlay
}

type OverlayRemoved struct {
	Outcome
	ItemID    string
	OverlayID string
}

type OverlayUpdated struct {
	Outcome
	ItemID    string
	OverlayID string
	Property  Property
}

type EffectAdded struct {
	Outcome
	ItemID string
	Effect *model.Effect
}

type EffectRemoved struct {
	Outcome
	ItemID   string
	EffectID string
}

type EffectUpdated struct {
	Outcome
	ItemID   string
	EffectID string
	Property Property
}

type AudioTrackAdded struct {
	Outcome
	Track *model.AudioTrack
}

type AudioTrackRemoved struct {
	Outcome
	TrackID string
}

type AudioTrackUpdated struct {
	Outcome
	TrackID  string
	Property Property
}

// WaveformProgress reports extraction progress of a media item or audio track
type WaveformProgress struct {
	Outcome
	OwnerID string
	Percent int
}

type WaveformExtracted struct {
	Outcome
	OwnerID  string
	Waveform *model.Waveform
}

// ThumbnailReady carries one decoded frame. Observers that keep the image
// must Claim the thumbnail; unclaimed ones are released after delivery.
type ThumbnailReady struct {
	Outcome
	OwnerID   string
	Token     string
	Thumbnail *model.Thumbnail
}

// ThumbnailsCompleted ends a thumbnail request
type ThumbnailsCompleted struct {
	Outcome
	OwnerID string
	Token   string
}

// releaseUnclaimed frees the image of a thumbnail nobody took
func releaseUnclaimed(ev Event) {
	if t, ok := ev.(*ThumbnailReady); ok && t.Thumbnail != nil && !t.Thumbnail.Claimed() {
		t.Thumbnail.Release()
	}
}
