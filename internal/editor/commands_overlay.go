package editor

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/movie-editor/internal/engine"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/project"
)

// AddOverlay puts a title card on an item, replacing the one already there
type AddOverlay struct {
	Target
	timelineOp
	ItemID    string
	OverlayID string // generated when empty
	Title     string
	Subtitle  string
	Layout    model.OverlayLayout
	StartTime time.Duration
	Duration  time.Duration
}

func (cmd AddOverlay) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	id := cmd.OverlayID
	if id == "" {
		id = uuid.NewString()
	}
	return ed.AddOverlay(x.ctx, cmd.ItemID, &model.Overlay{
		ID:        id,
		StartTime: model.NewEditable(cmd.StartTime),
		Duration:  model.NewEditable(cmd.Duration),
		Title:     cmd.Title,
		Subtitle:  cmd.Subtitle,
		Layout:    cmd.Layout,
	})
}

func (cmd AddOverlay) complete(c *completion) Event {
	ev := &OverlayAdded{ItemID: cmd.ItemID}
	o, ok := c.result.(*model.Overlay)
	if !ok || !c.ok() {
		return ev
	}
	ev.Overlay = o
	if p := c.project(); p != nil {
		if err := p.AddOverlay(cmd.ItemID, o); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return ev
}

// RemoveOverlay takes the title card off an item
type RemoveOverlay struct {
	Target
	timelineOp
	ItemID    string
	OverlayID string
}

func (cmd RemoveOverlay) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.RemoveOverlay(x.ctx, cmd.ItemID, cmd.OverlayID)
}

func (cmd RemoveOverlay) complete(c *completion) Event {
	if p := c.project(); p != nil && c.ok() {
		if err := p.RemoveOverlay(cmd.ItemID, cmd.OverlayID); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return &OverlayRemoved{ItemID: cmd.ItemID, OverlayID: cmd.OverlayID}
}

func overlayStartOf(o *model.Overlay) *model.Editable[time.Duration] { return &o.StartTime }

func overlayDurationOf(o *model.Overlay) *model.Editable[time.Duration] { return &o.Duration }

func overlayOf(p *project.Project, itemID, id string) *model.Overlay {
	if p == nil {
		return nil
	}
	return p.Overlay(itemID, id)
}

// SetOverlayTiming moves the title card within its item
type SetOverlayTiming struct {
	Target
	timelineOp
	ItemID    string
	OverlayID string
	StartTime time.Duration
	Duration  time.Duration
}

func (cmd SetOverlayTiming) prepare(p *project.Project) any {
	o := p.Overlay(cmd.ItemID, cmd.OverlayID)
	request(o, overlayDurationOf, cmd.Duration)
	return request(o, overlayStartOf, cmd.StartTime)
}

func (cmd SetOverlayTiming) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetOverlayTiming(x.ctx, cmd.ItemID, cmd.OverlayID, cmd.StartTime, cmd.Duration)
}

func (cmd SetOverlayTiming) complete(c *completion) Event {
	o := overlayOf(c.project(), cmd.ItemID, cmd.OverlayID)
	settle(c, o, overlayStartOf, cmd.StartTime)
	settle(c, o, overlayDurationOf, cmd.Duration)
	return &OverlayUpdated{ItemID: cmd.ItemID, OverlayID: cmd.OverlayID, Property: PropertyTiming}
}

// SetOverlayAttributes changes the text and layout of a title card
type SetOverlayAttributes struct {
	Target
	timelineOp
	ItemID    string
	OverlayID string
	Title     string
	Subtitle  string
	Layout    model.OverlayLayout
}

func (cmd SetOverlayAttributes) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetOverlayAttributes(x.ctx, cmd.ItemID, cmd.OverlayID, engine.OverlayAttributes{
		Title:    cmd.Title,
		Subtitle: cmd.Subtitle,
		Layout:   cmd.Layout,
	})
}

func (cmd SetOverlayAttributes) complete(c *completion) Event {
	if p := c.project(); p != nil && c.ok() {
		if o := p.Overlay(cmd.ItemID, cmd.OverlayID); o != nil {
			o.Title, o.Subtitle, o.Layout = cmd.Title, cmd.Subtitle, cmd.Layout
			p.MarkChanged()
		}
	}
	return &OverlayUpdated{ItemID: cmd.ItemID, OverlayID: cmd.OverlayID, Property: PropertyAttributes}
}

// AddKenBurnsEffect pans and zooms from StartRect to EndRect, replacing any
// effect already on the item.
type AddKenBurnsEffect struct {
	Target
	timelineOp
	ItemID    string
	EffectID  string // generated when empty
	StartTime time.Duration
	Duration  time.Duration
	StartRect model.Rect
	EndRect   model.Rect
}

func (cmd AddKenBurnsEffect) run(x *execution) (any, error) {
	return addEffect(x, cmd.ItemID, &model.Effect{
		ID:        cmd.EffectID,
		Kind:      model.EffectKenBurns,
		StartTime: cmd.StartTime,
		Duration:  cmd.Duration,
		StartRect: cmd.StartRect,
		EndRect:   cmd.EndRect,
	})
}

func (cmd AddKenBurnsEffect) complete(c *completion) Event {
	return effectAdded(c, cmd.ItemID)
}

// AddColorEffect applies a gradient, sepia or negative effect, replacing any
// effect already on the item.
type AddColorEffect struct {
	Target
	timelineOp
	ItemID    string
	EffectID  string
	Kind      model.EffectKind
	StartTime time.Duration
	Duration  time.Duration
}

func (cmd AddColorEffect) run(x *execution) (any, error) {
	return addEffect(x, cmd.ItemID, &model.Effect{
		ID:        cmd.EffectID,
		Kind:      cmd.Kind,
		StartTime: cmd.StartTime,
		Duration:  cmd.Duration,
	})
}

func (cmd AddColorEffect) complete(c *completion) Event {
	return effectAdded(c, cmd.ItemID)
}

func addEffect(x *execution, itemID string, e *model.Effect) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return ed.AddEffect(x.ctx, itemID, e)
}

func effectAdded(c *completion, itemID string) Event {
	ev := &EffectAdded{ItemID: itemID}
	e, ok := c.result.(*model.Effect)
	if !ok || !c.ok() {
		return ev
	}
	ev.Effect = e
	if p := c.project(); p != nil {
		if err := p.AddEffect(itemID, e); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return ev
}

// RemoveEffect takes the effect off an item
type RemoveEffect struct {
	Target
	timelineOp
	ItemID   string
	EffectID string
}

func (cmd RemoveEffect) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.RemoveEffect(x.ctx, cmd.ItemID, cmd.EffectID)
}

func (cmd RemoveEffect) complete(c *completion) Event {
	if p := c.project(); p != nil && c.ok() {
		if err := p.RemoveEffect(cmd.ItemID, cmd.EffectID); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return &EffectRemoved{ItemID: cmd.ItemID, EffectID: cmd.EffectID}
}

// SetEffectTiming moves the effect within its item
type SetEffectTiming struct {
	Target
	timelineOp
	ItemID    string
	EffectID  string
	StartTime time.Duration
	Duration  time.Duration
}

func (cmd SetEffectTiming) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetEffectTiming(x.ctx, cmd.ItemID, cmd.EffectID, cmd.StartTime, cmd.Duration)
}

func (cmd SetEffectTiming) complete(c *completion) Event {
	if p := c.project(); p != nil && c.ok() {
		if e := p.Effect(cmd.ItemID, cmd.EffectID); e != nil {
			e.StartTime, e.Duration = cmd.StartTime, cmd.Duration
			p.MarkChanged()
		}
	}
	return &EffectUpdated{ItemID: cmd.ItemID, EffectID: cmd.EffectID, Property: PropertyTiming}
}
