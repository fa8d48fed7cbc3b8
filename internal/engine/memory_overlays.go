package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ytget/movie-editor/internal/model"
)

func (e *memoryEditor) InsertTransition(ctx context.Context, tmpl *model.Transition, afterID string) (*model.Transition, error) {
	if err := validateTransition(tmpl); err != nil {
		return nil, err
	}
	t := tmpl.Clone()
	t.Duration = model.NewEditable(tmpl.Duration.Committed)

	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if e.transition(t.ID) != nil {
		return nil, fmt.Errorf("transition %q already exists", t.ID)
	}
	items := e.tl.Items
	if afterID == "" {
		if len(items) == 0 {
			return nil, errors.New("cannot add a start transition to an empty timeline")
		}
		if t.Duration.Committed > items[0].TimelineDuration() {
			return nil, fmt.Errorf("transition of %v is longer than the first clip", t.Duration.Committed)
		}
		items[0].BeginTransition = t
		return t.Clone(), nil
	}

	i := e.indexOf(afterID)
	if i < 0 {
		return nil, &model.NotFoundError{Kind: "media item", ID: afterID}
	}
	limit := items[i].TimelineDuration()
	if i+1 < len(items) {
		limit = min(limit, items[i+1].TimelineDuration())
	}
	if t.Duration.Committed > limit {
		return nil, fmt.Errorf("transition of %v is longer than an adjacent clip", t.Duration.Committed)
	}
	items[i].EndTransition = t
	if i+1 < len(items) {
		items[i+1].BeginTransition = t
	}
	return t.Clone(), nil
}

func validateTransition(t *model.Transition) error {
	if t.ID == "" {
		return errors.New("transition id is empty")
	}
	if t.Duration.Committed <= 0 {
		return fmt.Errorf("invalid transition duration %v", t.Duration.Committed)
	}
	switch t.Kind {
	case model.TransitionCrossfade, model.TransitionFadeBlack:
	case model.TransitionAlpha:
		if t.MaskFilename == "" {
			return errors.New("alpha transition needs a mask")
		}
		if t.BlendPercent < 0 || t.BlendPercent > 100 {
			return fmt.Errorf("blend %d%% out of range", t.BlendPercent)
		}
	case model.TransitionSliding:
		switch t.Direction {
		case model.SlideRightOutLeftIn, model.SlideLeftOutRightIn, model.SlideTopOutBottomIn, model.SlideBottomOutTopIn:
		default:
			return fmt.Errorf("unknown slide direction %q", t.Direction)
		}
	default:
		return fmt.Errorf("unknown transition kind %q", t.Kind)
	}
	return nil
}

func (e *memoryEditor) RemoveTransition(ctx context.Context, id string) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	found := false
	for _, item := range e.tl.Items {
		if item.BeginTransition != nil && item.BeginTransition.ID == id {
			item.BeginTransition = nil
			found = true
		}
		if item.EndTransition != nil && item.EndTransition.ID == id {
			item.EndTransition = nil
			found = true
		}
	}
	if !found {
		return &model.NotFoundError{Kind: "transition", ID: id}
	}
	return nil
}

func (e *memoryEditor) SetTransitionDuration(ctx context.Context, id string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid transition duration %v", d)
	}
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	t := e.transition(id)
	if t == nil {
		return &model.NotFoundError{Kind: "transition", ID: id}
	}
	t.Duration = model.NewEditable(d)
	return nil
}

func (e *memoryEditor) TransitionThumbnails(ctx context.Context, id string, req ThumbnailRequest, emit func(*model.Thumbnail)) error {
	if err := e.lock(); err != nil {
		return err
	}
	t := e.transition(id)
	var d time.Duration
	if t != nil {
		d = t.Duration.Committed
	}
	e.mu.Unlock()

	if t == nil {
		return &model.NotFoundError{Kind: "transition", ID: id}
	}
	req.Start, req.End = 0, d
	return renderThumbnails(ctx, req, emit)
}

// transition finds a transition by id; callers hold mu
func (e *memoryEditor) transition(id string) *model.Transition {
	for _, item := range e.tl.Items {
		if item.BeginTransition != nil && item.BeginTransition.ID == id {
			return item.BeginTransition
		}
		if item.EndTransition != nil && item.EndTransition.ID == id {
			return item.EndTransition
		}
	}
	return nil
}

func (e *memoryEditor) AddOverlay(ctx context.Context, itemID string, tmpl *model.Overlay) (*model.Overlay, error) {
	if tmpl.ID == "" {
		return nil, errors.New("overlay id is empty")
	}
	if !isOverlayLayout(tmpl.Layout) {
		return nil, fmt.Errorf("unknown overlay layout %q", tmpl.Layout)
	}
	var out *model.Overlay
	err := e.withItem(itemID, func(item *model.MediaItem) error {
		start, d := tmpl.StartTime.Committed, tmpl.Duration.Committed
		if err := checkTiming(start, d, item.TimelineDuration()); err != nil {
			return err
		}
		o := tmpl.Clone()
		o.StartTime, o.Duration = model.NewEditable(start), model.NewEditable(d)
		item.Overlay = o
		out = o.Clone()
		return nil
	})
	return out, err
}

func (e *memoryEditor) RemoveOverlay(ctx context.Context, itemID, id string) error {
	return e.withOverlay(itemID, id, func(item *model.MediaItem, _ *model.Overlay) error {
		item.Overlay = nil
		return nil
	})
}

func (e *memoryEditor) SetOverlayTiming(ctx context.Context, itemID, id string, start, d time.Duration) error {
	return e.withOverlay(itemID, id, func(item *model.MediaItem, o *model.Overlay) error {
		if err := checkTiming(start, d, item.TimelineDuration()); err != nil {
			return err
		}
		o.StartTime, o.Duration = model.NewEditable(start), model.NewEditable(d)
		return nil
	})
}

func (e *memoryEditor) SetOverlayAttributes(ctx context.Context, itemID, id string, attrs OverlayAttributes) error {
	if !isOverlayLayout(attrs.Layout) {
		return fmt.Errorf("unknown overlay layout %q", attrs.Layout)
	}
	return e.withOverlay(itemID, id, func(_ *model.MediaItem, o *model.Overlay) error {
		o.Title, o.Subtitle, o.Layout = attrs.Title, attrs.Subtitle, attrs.Layout
		return nil
	})
}

func (e *memoryEditor) withOverlay(itemID, id string, fn func(*model.MediaItem, *model.Overlay) error) error {
	return e.withItem(itemID, func(item *model.MediaItem) error {
		if item.Overlay == nil || item.Overlay.ID != id {
			return &model.NotFoundError{Kind: "overlay", ID: id}
		}
		return fn(item, item.Overlay)
	})
}

func (e *memoryEditor) AddEffect(ctx context.Context, itemID string, tmpl *model.Effect) (*model.Effect, error) {
	if tmpl.ID == "" {
		return nil, errors.New("effect id is empty")
	}
	switch tmpl.Kind {
	case model.EffectKenBurns:
		if tmpl.StartRect.Empty() || tmpl.EndRect.Empty() {
			return nil, errors.New("ken burns effect needs start and end rectangles")
		}
	case model.EffectGradient, model.EffectSepia, model.EffectNegative:
	default:
		return nil, fmt.Errorf("unknown effect kind %q", tmpl.Kind)
	}

	var out *model.Effect
	err := e.withItem(itemID, func(item *model.MediaItem) error {
		if err := checkTiming(tmpl.StartTime, tmpl.Duration, item.TimelineDuration()); err != nil {
			return err
		}
		item.Effect = tmpl.Clone()
		out = tmpl.Clone()
		return nil
	})
	return out, err
}

func (e *memoryEditor) RemoveEffect(ctx context.Context, itemID, id string) error {
	return e.withEffect(itemID, id, func(item *model.MediaItem, _ *model.Effect) error {
		item.Effect = nil
		return nil
	})
}

func (e *memoryEditor) SetEffectTiming(ctx context.Context, itemID, id string, start, d time.Duration) error {
	return e.withEffect(itemID, id, func(item *model.MediaItem, fx *model.Effect) error {
		if err := checkTiming(start, d, item.TimelineDuration()); err != nil {
			return err
		}
		fx.StartTime, fx.Duration = start, d
		return nil
	})
}

func (e *memoryEditor) withEffect(itemID, id string, fn func(*model.MediaItem, *model.Effect) error) error {
	return e.withItem(itemID, func(item *model.MediaItem) error {
		if item.Effect == nil || item.Effect.ID != id {
			return &model.NotFoundError{Kind: "effect", ID: id}
		}
		return fn(item, item.Effect)
	})
}

func checkTiming(start, d, length time.Duration) error {
	if start < 0 || d <= 0 || start+d > length {
		return fmt.Errorf("timing [%v, +%v] does not fit a %v clip", start, d, length)
	}
	return nil
}

func isOverlayLayout(l model.OverlayLayout) bool {
	switch l {
	case model.OverlayCenter, model.OverlayBottom, model.OverlayCenterSubtitle, model.OverlayBottomSubtitle:
		return true
	}
	return false
}
