package model

import "time"

// TransitionKind selects the transition rendering
type TransitionKind string

const (
	TransitionCrossfade TransitionKind = "crossfade"
	TransitionFadeBlack TransitionKind = "fade-black"
	TransitionAlpha     TransitionKind = "alpha"
	TransitionSliding   TransitionKind = "sliding"
)

// SlideDirection applies to sliding transitions only
type SlideDirection string

const (
	SlideRightOutLeftIn SlideDirection = "right-out-left-in"
	SlideLeftOutRightIn SlideDirection = "left-out-right-in"
	SlideTopOutBottomIn SlideDirection = "top-out-bottom-in"
	SlideBottomOutTopIn SlideDirection = "bottom-out-top-in"
)

// Transition joins the end of one media item with the beginning of the next.
// The same value is referenced from both neighbors.
type Transition struct {
	ID       string                  `json:"id"`
	Kind     TransitionKind          `json:"kind"`
	Duration Editable[time.Duration] `json:"duration"`

	// alpha
	MaskFilename string `json:"maskFilename,omitempty"`
	BlendPercent int    `json:"blendPercent,omitempty"`
	Invert       bool   `json:"invert,omitempty"`

	// sliding
	Direction SlideDirection `json:"direction,omitempty"`
}

// Clone returns a copy that does not share state with t
func (t *Transition) Clone() *Transition {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
