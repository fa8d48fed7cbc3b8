package model

import "time"

// AudioTrack is a background audio clip mixed under the timeline
type AudioTrack struct {
	ID       string        `json:"id"`
	Filename string        `json:"filename"`
	Duration time.Duration `json:"duration"` // full source duration

	Boundaries Editable[Span] `json:"boundaries"`
	Volume     Editable[int]  `json:"volume"`
	Muted      Editable[bool] `json:"muted"`
	Loop       Editable[bool] `json:"loop"`
	Ducking    Editable[bool] `json:"ducking"`

	Waveform *Waveform `json:"waveform,omitempty"`
}

// TimelineDuration is the engine-confirmed length of the track
func (a *AudioTrack) TimelineDuration() time.Duration {
	return a.Boundaries.Committed.Len()
}

// Waveform holds per-frame peak gains of an audio stream
type Waveform struct {
	FrameDuration time.Duration `json:"frameDuration"`
	Gains         []float64     `json:"gains"` // 0.0 to 1.0
}

// Duration returns the audio length covered by the gains
func (w *Waveform) Duration() time.Duration {
	if w == nil {
		return 0
	}
	return time.Duration(len(w.Gains)) * w.FrameDuration
}
