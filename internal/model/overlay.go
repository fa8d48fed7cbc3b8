package model

import "time"

// OverlayLayout positions the title card
type OverlayLayout string

const (
	OverlayCenter         OverlayLayout = "center"
	OverlayBottom         OverlayLayout = "bottom"
	OverlayCenterSubtitle OverlayLayout = "center-subtitle"
	OverlayBottomSubtitle OverlayLayout = "bottom-subtitle"
)

// Overlay is a title card drawn over a media item. An item has at most one.
type Overlay struct {
	ID        string                  `json:"id"`
	StartTime Editable[time.Duration] `json:"startTime"`
	Duration  Editable[time.Duration] `json:"duration"`
	Title     string                  `json:"title"`
	Subtitle  string                  `json:"subtitle"`
	Layout    OverlayLayout           `json:"layout"`
}

// Clone returns a copy that does not share state with o
func (o *Overlay) Clone() *Overlay {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

// EffectKind selects the visual effect
type EffectKind string

const (
	EffectKenBurns EffectKind = "ken-burns"
	EffectGradient EffectKind = "gradient"
	EffectSepia    EffectKind = "sepia"
	EffectNegative EffectKind = "negative"
)

// Rect is a pixel rectangle in source coordinates
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Empty reports whether r has no area
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Effect is a visual effect applied to a media item. An item has at most one.
// Start and end rectangles are meaningful for Ken Burns only.
type Effect struct {
	ID        string        `json:"id"`
	Kind      EffectKind    `json:"kind"`
	StartTime time.Duration `json:"startTime"`
	Duration  time.Duration `json:"duration"`
	StartRect Rect          `json:"startRect,omitempty"`
	EndRect   Rect          `json:"endRect,omitempty"`
}

// Clone returns a copy that does not share state with e
func (e *Effect) Clone() *Effect {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
