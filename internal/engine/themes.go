package engine

import (
	"sort"
	"time"

	"github.com/ytget/movie-editor/internal/model"
)

// Theme bundles the transitions and title style applied to a whole project
type Theme struct {
	ID                 string
	Name               string
	Transition         model.TransitionKind
	TransitionDuration time.Duration
	Direction          model.SlideDirection
	TitleLayout        model.OverlayLayout
	TitleDuration      time.Duration
	Effect             model.EffectKind
}

var themes = map[string]Theme{
	"travel": {
		ID: "travel", Name: "Travel",
		Transition: model.TransitionCrossfade, TransitionDuration: time.Second,
		TitleLayout: model.OverlayCenter, TitleDuration: 3 * time.Second,
	},
	"film": {
		ID: "film", Name: "Film",
		Transition: model.TransitionFadeBlack, TransitionDuration: 500 * time.Millisecond,
		TitleLayout: model.OverlayBottomSubtitle, TitleDuration: 2 * time.Second,
		Effect: model.EffectSepia,
	},
	"surfing": {
		ID: "surfing", Name: "Surfing",
		Transition: model.TransitionSliding, TransitionDuration: 750 * time.Millisecond,
		Direction:   model.SlideRightOutLeftIn,
		TitleLayout: model.OverlayBottom, TitleDuration: 2 * time.Second,
	},
	"rockandroll": {
		ID: "rockandroll", Name: "Rock and Roll",
		Transition: model.TransitionFadeBlack, TransitionDuration: 250 * time.Millisecond,
		TitleLayout: model.OverlayCenterSubtitle, TitleDuration: 2 * time.Second,
		Effect: model.EffectNegative,
	},
}

// Themes returns the built-in themes ordered by ID
func Themes() []Theme {
	out := make([]Theme, 0, len(themes))
	for _, t := range themes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupTheme returns the theme with id
func LookupTheme(id string) (Theme, bool) {
	t, ok := themes[id]
	return t, ok
}

func (t Theme) newTransition(id string) *model.Transition {
	return &model.Transition{
		ID:        id,
		Kind:      t.Transition,
		Duration:  model.NewEditable(t.TransitionDuration),
		Direction: t.Direction,
	}
}
