// Package engine defines the boundary to the media composition engine and
// ships Memory, a file-backed engine that keeps the timeline in memory and
// renders through ffmpeg.
//
// Editor implementations are called from at most three goroutines at once,
// one per worker class of the editor processor, and must synchronize their
// own state accordingly.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/ytget/movie-editor/internal/export"
	"github.com/ytget/movie-editor/internal/model"
)

// ErrReleased is returned by an Editor after Release
var ErrReleased = errors.New("editor released")

// ProjectSpec describes a new project
type ProjectSpec struct {
	Name        string
	Theme       string
	AspectRatio model.AspectRatio
}

// Snapshot is a deep copy of the engine timeline
type Snapshot struct {
	Name        string
	Theme       string
	AspectRatio model.AspectRatio
	Items       []*model.MediaItem
	AudioTracks []*model.AudioTrack
}

// ExportSpec configures a movie export
type ExportSpec struct {
	OutputPath string
	Height     int
	Bitrate    int // kbit/s
}

// ThumbnailRequest selects the frames to decode. Start and End are ignored
// for transitions, whose frames span the whole transition.
type ThumbnailRequest struct {
	Width  int
	Height int
	Start  time.Duration
	End    time.Duration
	Count  int
}

// OverlayAttributes are the non-timing properties of an overlay
type OverlayAttributes struct {
	Title    string
	Subtitle string
	Layout   model.OverlayLayout
}

// Engine opens editing sessions on project folders
type Engine interface {
	Create(ctx context.Context, path string, spec ProjectSpec) (Editor, error)
	Load(ctx context.Context, path string) (Editor, error)
}

// Editor is a live editing session on one project
type Editor interface {
	Path() string
	Snapshot() (*Snapshot, error)
	Save(ctx context.Context) error
	Release() error

	ApplyTheme(ctx context.Context, theme string) (*Snapshot, error)
	SetAspectRatio(ctx context.Context, ratio model.AspectRatio) (*Snapshot, error)
	Export(ctx context.Context, spec ExportSpec, progress func(percent int)) error

	AddMediaItem(ctx context.Context, item *model.MediaItem, afterID string) (*model.MediaItem, error)
	MoveMediaItem(ctx context.Context, id, afterID string) (*model.Transition, error)
	RemoveMediaItem(ctx context.Context, id string) (*model.Transition, error)
	SetMediaItemRenderingMode(ctx context.Context, id string, mode model.RenderingMode) error
	SetMediaItemDuration(ctx context.Context, id string, d time.Duration) (*model.MediaItem, error)
	SetMediaItemBoundaries(ctx context.Context, id string, span model.Span) (*model.MediaItem, error)
	SetMediaItemVolume(ctx context.Context, id string, volume int) error
	SetMediaItemMute(ctx context.Context, id string, muted bool) error
	ExtractMediaItemWaveform(ctx context.Context, id string, progress func(percent int)) (*model.Waveform, error)
	MediaItemThumbnails(ctx context.Context, id string, req ThumbnailRequest, emit func(*model.Thumbnail)) error

	InsertTransition(ctx context.Context, t *model.Transition, afterID string) (*model.Transition, error)
	RemoveTransition(ctx context.Context, id string) error
	SetTransitionDuration(ctx context.Context, id string, d time.Duration) error
	TransitionThumbnails(ctx context.Context, id string, req ThumbnailRequest, emit func(*model.Thumbnail)) error

	AddOverlay(ctx context.Context, itemID string, o *model.Overlay) (*model.Overlay, error)
	RemoveOverlay(ctx context.Context, itemID, id string) error
	SetOverlayTiming(ctx context.Context, itemID, id string, start, d time.Duration) error
	SetOverlayAttributes(ctx context.Context, itemID, id string, attrs OverlayAttributes) error

	AddEffect(ctx context.Context, itemID string, e *model.Effect) (*model.Effect, error)
	RemoveEffect(ctx context.Context, itemID, id string) error
	SetEffectTiming(ctx context.Context, itemID, id string, start, d time.Duration) error

	AddAudioTrack(ctx context.Context, t *model.AudioTrack) (*model.AudioTrack, error)
	RemoveAudioTrack(ctx context.Context, id string) error
	SetAudioTrackBoundaries(ctx context.Context, id string, span model.Span) error
	SetAudioTrackVolume(ctx context.Context, id string, volume int) error
	SetAudioTrackMute(ctx context.Context, id string, muted bool) error
	SetAudioTrackLoop(ctx context.Context, id string, loop bool) error
	SetAudioTrackDucking(ctx context.Context, id string, duck bool) error
	ExtractAudioTrackWaveform(ctx context.Context, id string, progress func(percent int)) (*model.Waveform, error)
}

// Renderer encodes a timeline into a movie file
type Renderer interface {
	Export(ctx context.Context, req export.Request, progress func(percent int)) error
}

// Prober reads stream properties of source files
type Prober interface {
	Probe(ctx context.Context, filename string) (*export.MediaInfo, error)
}

// AudioDecoder converts the audio stream of a media file to a PCM WAV file
type AudioDecoder interface {
	DecodeAudio(ctx context.Context, src, dst string) error
}
