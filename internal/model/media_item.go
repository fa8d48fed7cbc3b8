package model

import "time"

// MediaKind tells videos and still images apart
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindImage MediaKind = "image"
)

// RenderingMode describes how a clip is fitted into the movie frame
type RenderingMode string

const (
	RenderingBlackBorders RenderingMode = "black-borders"
	RenderingStretch      RenderingMode = "stretch"
	RenderingCropping     RenderingMode = "cropping"
)

// AspectRatio of a project or a source clip
type AspectRatio string

const (
	AspectRatioUndefined AspectRatio = ""
	AspectRatio3x2       AspectRatio = "3:2"
	AspectRatio16x9      AspectRatio = "16:9"
	AspectRatio4x3       AspectRatio = "4:3"
	AspectRatio5x3       AspectRatio = "5:3"
	AspectRatio11x9      AspectRatio = "11:9"
)

// DefaultVolume is the volume of a freshly added clip, in percent.
const DefaultVolume = 100

// MediaItem is one clip on the timeline
type MediaItem struct {
	ID          string        `json:"id"`
	Kind        MediaKind     `json:"kind"`
	Filename    string        `json:"filename"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	AspectRatio AspectRatio   `json:"aspectRatio"`
	Duration    time.Duration `json:"duration"` // full source duration

	Boundaries    Editable[Span]          `json:"boundaries"`
	RenderingMode Editable[RenderingMode] `json:"renderingMode"`
	Volume        Editable[int]           `json:"volume"`
	Muted         Editable[bool]          `json:"muted"`

	Overlay         *Overlay    `json:"overlay,omitempty"`
	Effect          *Effect     `json:"effect,omitempty"`
	BeginTransition *Transition `json:"beginTransition,omitempty"`
	EndTransition   *Transition `json:"endTransition,omitempty"`
	Waveform        *Waveform   `json:"waveform,omitempty"`
}

// IsVideo reports whether the item has an audio/video stream
func (m *MediaItem) IsVideo() bool {
	return m.Kind == MediaKindVideo
}

// TimelineDuration is the engine-confirmed length the item occupies
func (m *MediaItem) TimelineDuration() time.Duration {
	return m.Boundaries.Committed.Len()
}

// AppTimelineDuration is the length the user currently sees
func (m *MediaItem) AppTimelineDuration() time.Duration {
	return m.Boundaries.Pending.Len()
}
