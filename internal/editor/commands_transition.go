package editor

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/movie-editor/internal/engine"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/project"
)

// InsertTransition places a transition at the seam after AfterID, or at the
// movie start when AfterID is empty. Kind selects which of the optional
// fields apply: MaskFilename, BlendPercent and Invert for alpha, Direction
// for sliding.
type InsertTransition struct {
	Target
	timelineOp
	TransitionID string // generated when empty
	AfterID      string
	Kind         model.TransitionKind
	Duration     time.Duration
	MaskFilename string
	BlendPercent int
	Invert       bool
	Direction    model.SlideDirection
}

func (cmd InsertTransition) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	id := cmd.TransitionID
	if id == "" {
		id = uuid.NewString()
	}
	return ed.InsertTransition(x.ctx, &model.Transition{
		ID:           id,
		Kind:         cmd.Kind,
		Duration:     model.NewEditable(cmd.Duration),
		MaskFilename: cmd.MaskFilename,
		BlendPercent: cmd.BlendPercent,
		Invert:       cmd.Invert,
		Direction:    cmd.Direction,
	}, cmd.AfterID)
}

func (cmd InsertTransition) complete(c *completion) Event {
	ev := &TransitionInserted{AfterID: cmd.AfterID}
	t, ok := c.result.(*model.Transition)
	if !ok || !c.ok() {
		return ev
	}
	ev.Transition = t
	if p := c.project(); p != nil {
		if err := p.AddTransition(t, cmd.AfterID); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return ev
}

// RemoveTransition clears a transition from both sides of its seam
type RemoveTransition struct {
	Target
	timelineOp
	TransitionID string
}

func (cmd RemoveTransition) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.RemoveTransition(x.ctx, cmd.TransitionID)
}

func (cmd RemoveTransition) complete(c *completion) Event {
	if p := c.project(); p != nil && c.ok() {
		p.RemoveTransition(cmd.TransitionID)
	}
	return &TransitionRemoved{TransitionID: cmd.TransitionID}
}

func transitionDurationOf(t *model.Transition) *model.Editable[time.Duration] { return &t.Duration }

func transitionOf(p *project.Project, id string) *model.Transition {
	if p == nil {
		return nil
	}
	return p.Transition(id)
}

// SetTransitionDuration changes how long a transition overlaps its neighbors
type SetTransitionDuration struct {
	Target
	timelineOp
	TransitionID string
	Duration     time.Duration
}

func (cmd SetTransitionDuration) prepare(p *project.Project) any {
	return request(p.Transition(cmd.TransitionID), transitionDurationOf, cmd.Duration)
}

func (cmd SetTransitionDuration) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetTransitionDuration(x.ctx, cmd.TransitionID, cmd.Duration)
}

func (cmd SetTransitionDuration) complete(c *completion) Event {
	settle(c, transitionOf(c.project(), cmd.TransitionID), transitionDurationOf, cmd.Duration)
	return &TransitionUpdated{TransitionID: cmd.TransitionID, Property: PropertyDuration}
}

// GetTransitionThumbnails decodes Count frames spread over a transition
type GetTransitionThumbnails struct {
	Target
	thumbnailOp
	TransitionID string
	Width        int
	Height       int
	Count        int
	Token        string
}

func (cmd GetTransitionThumbnails) thumbnailKey() (string, string) { return cmd.TransitionID, cmd.Token }

func (cmd GetTransitionThumbnails) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	req := engine.ThumbnailRequest{Width: cmd.Width, Height: cmd.Height, Count: cmd.Count}
	return nil, ed.TransitionThumbnails(x.ctx, cmd.TransitionID, req, func(th *model.Thumbnail) {
		x.emit(&ThumbnailReady{OwnerID: cmd.TransitionID, Token: cmd.Token, Thumbnail: th})
	})
}

func (cmd GetTransitionThumbnails) complete(c *completion) Event {
	return &ThumbnailsCompleted{OwnerID: cmd.TransitionID, Token: cmd.Token}
}
