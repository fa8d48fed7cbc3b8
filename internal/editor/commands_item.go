package editor

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/movie-editor/internal/engine"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/platform"
	"github.com/ytget/movie-editor/internal/project"
)

// request records v as the optimistic value of the field. It returns whether
// the field existed, which complete passes to settle.
func request[E any, T comparable](entity *E, field func(*E) *model.Editable[T], v T) any {
	if entity == nil {
		return false
	}
	field(entity).Request(v)
	return true
}

// settle applies v on success and rolls the field back on failure. A field
// that had no optimistic request, e.g. because the entity was added after
// submission, is simply set.
func settle[E any, T comparable](c *completion, entity *E, field func(*E) *model.Editable[T], v T) {
	if entity == nil {
		return
	}
	f := field(entity)
	if requested, _ := c.staged.(bool); requested {
		model.Settle(f, v, c.err)
	} else if c.ok() {
		*f = model.NewEditable(v)
	}
	if c.ok() {
		if p := c.project(); p != nil {
			p.MarkChanged()
		}
	}
}

func itemOf(p *project.Project, id string) *model.MediaItem {
	if p == nil {
		return nil
	}
	return p.MediaItem(id)
}

// AddVideo appends a local video file to the timeline after AfterID, or at
// the head when AfterID is empty.
type AddVideo struct {
	Target
	timelineOp
	ItemID        string // generated when empty
	Filename      string
	AfterID       string
	RenderingMode model.RenderingMode
}

func (cmd AddVideo) run(x *execution) (any, error) {
	return addMediaItem(x, &model.MediaItem{
		ID:            cmd.ItemID,
		Kind:          model.MediaKindVideo,
		Filename:      cmd.Filename,
		RenderingMode: model.NewEditable(cmd.RenderingMode),
	}, cmd.AfterID)
}

func (cmd AddVideo) complete(c *completion) Event {
	return mediaItemAdded(c, cmd.AfterID)
}

// AddImage appends a still image shown for Duration
type AddImage struct {
	Target
	timelineOp
	ItemID        string
	Filename      string
	AfterID       string
	Duration      time.Duration
	RenderingMode model.RenderingMode
}

func (cmd AddImage) run(x *execution) (any, error) {
	return addMediaItem(x, &model.MediaItem{
		ID:            cmd.ItemID,
		Kind:          model.MediaKindImage,
		Filename:      cmd.Filename,
		Duration:      cmd.Duration,
		RenderingMode: model.NewEditable(cmd.RenderingMode),
	}, cmd.AfterID)
}

func (cmd AddImage) complete(c *completion) Event {
	return mediaItemAdded(c, cmd.AfterID)
}

func addMediaItem(x *execution, tmpl *model.MediaItem, afterID string) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	local, ok := platform.LocalPath(tmpl.Filename)
	if !ok {
		return nil, errors.New("remote media must be downloaded first")
	}
	tmpl.Filename = local
	if tmpl.ID == "" {
		tmpl.ID = uuid.NewString()
	}
	return ed.AddMediaItem(x.ctx, tmpl, afterID)
}

func mediaItemAdded(c *completion, afterID string) Event {
	ev := &MediaItemAdded{AfterID: afterID}
	item, ok := c.result.(*model.MediaItem)
	if !ok || !c.ok() {
		return ev
	}
	ev.Item = item
	if p := c.project(); p != nil {
		if err := p.InsertMediaItem(item, afterID); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return ev
}

// MoveMediaItem moves an item after AfterID, or to the head when AfterID is empty
type MoveMediaItem struct {
	Target
	timelineOp
	ItemID  string
	AfterID string
}

func (cmd MoveMediaItem) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return ed.MoveMediaItem(x.ctx, cmd.ItemID, cmd.AfterID)
}

func (cmd MoveMediaItem) complete(c *completion) Event {
	ev := &MediaItemMoved{ItemID: cmd.ItemID, AfterID: cmd.AfterID}
	if !c.ok() {
		return ev
	}
	ev.Replacement, _ = c.result.(*model.Transition)
	if p := c.project(); p != nil {
		if err := p.MoveMediaItem(cmd.ItemID, cmd.AfterID, ev.Replacement); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return ev
}

// RemoveMediaItem takes an item off the timeline. The engine may join the
// neighbors with a replacement transition.
type RemoveMediaItem struct {
	Target
	timelineOp
	ItemID string
}

func (cmd RemoveMediaItem) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return ed.RemoveMediaItem(x.ctx, cmd.ItemID)
}

func (cmd RemoveMediaItem) complete(c *completion) Event {
	ev := &MediaItemRemoved{ItemID: cmd.ItemID}
	if !c.ok() {
		return ev
	}
	ev.Replacement, _ = c.result.(*model.Transition)
	if p := c.project(); p != nil {
		if _, err := p.RemoveMediaItem(cmd.ItemID, ev.Replacement); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return ev
}

func renderingModeOf(m *model.MediaItem) *model.Editable[model.RenderingMode] { return &m.RenderingMode }
func boundariesOf(m *model.MediaItem) *model.Editable[model.Span] { return &m.Boundaries }
func volumeOf(m *model.MediaItem) *model.Editable[int] { return &m.Volume }
func mutedOf(m *model.MediaItem) *model.Editable[bool] { return &m.Muted }

// SetRenderingMode changes how the item is fitted into the movie frame
type SetRenderingMode struct {
	Target
	timelineOp
	ItemID string
	Mode   model.RenderingMode
}

func (cmd SetRenderingMode) prepare(p *project.Project) any {
	return request(p.MediaItem(cmd.ItemID), renderingModeOf, cmd.Mode)
}

func (cmd SetRenderingMode) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetMediaItemRenderingMode(x.ctx, cmd.ItemID, cmd.Mode)
}

func (cmd SetRenderingMode) complete(c *completion) Event {
	settle(c, itemOf(c.project(), cmd.ItemID), renderingModeOf, cmd.Mode)
	return &MediaItemUpdated{ItemID: cmd.ItemID, Property: PropertyRenderingMode}
}

// SetMediaItemDuration sets how long an image stays on screen
type SetMediaItemDuration struct {
	Target
	timelineOp
	ItemID   string
	Duration time.Duration
}

func (cmd SetMediaItemDuration) prepare(p *project.Project) any {
	return request(p.MediaItem(cmd.ItemID), boundariesOf, model.Span{End: cmd.Duration})
}

func (cmd SetMediaItemDuration) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return ed.SetMediaItemDuration(x.ctx, cmd.ItemID, cmd.Duration)
}

func (cmd SetMediaItemDuration) complete(c *completion) Event {
	applyTrim(c, cmd.ItemID, model.Span{End: cmd.Duration})
	return &MediaItemUpdated{ItemID: cmd.ItemID, Property: PropertyDuration}
}

// SetMediaItemBoundaries trims a video to [Begin, End) of its source
type SetMediaItemBoundaries struct {
	Target
	timelineOp
	ItemID string
	Begin  time.Duration
	End    time.Duration
}

func (cmd SetMediaItemBoundaries) span() model.Span {
	return model.Span{Begin: cmd.Begin, End: cmd.End}
}

func (cmd SetMediaItemBoundaries) prepare(p *project.Project) any {
	return request(p.MediaItem(cmd.ItemID), boundariesOf, cmd.span())
}

func (cmd SetMediaItemBoundaries) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return ed.SetMediaItemBoundaries(x.ctx, cmd.ItemID, cmd.span())
}

func (cmd SetMediaItemBoundaries) complete(c *completion) Event {
	applyTrim(c, cmd.ItemID, cmd.span())
	return &MediaItemUpdated{ItemID: cmd.ItemID, Property: PropertyBoundaries}
}

// applyTrim settles a length change and takes over the overlay and effect
// timing the engine fitted into the new length.
func applyTrim(c *completion, itemID string, span model.Span) {
	item := itemOf(c.project(), itemID)
	settle(c, item, boundariesOf, span)
	updated, ok := c.result.(*model.MediaItem)
	if item == nil || !ok || !c.ok() {
		return
	}
	item.Duration = updated.Duration
	if item.Overlay != nil && updated.Overlay != nil {
		item.Overlay.StartTime = updated.Overlay.StartTime
		item.Overlay.Duration = updated.Overlay.Duration
	}
	if item.Effect != nil && updated.Effect != nil {
		item.Effect.StartTime = updated.Effect.StartTime
		item.Effect.Duration = updated.Effect.Duration
	}
}

// SetMediaItemVolume sets the clip volume in percent
type SetMediaItemVolume struct {
	Target
	audioOp
	ItemID string
	Volume int
}

func (cmd SetMediaItemVolume) prepare(p *project.Project) any {
	return request(p.MediaItem(cmd.ItemID), volumeOf, cmd.Volume)
}

func (cmd SetMediaItemVolume) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetMediaItemVolume(x.ctx, cmd.ItemID, cmd.Volume)
}

func (cmd SetMediaItemVolume) complete(c *completion) Event {
	settle(c, itemOf(c.project(), cmd.ItemID), volumeOf, cmd.Volume)
	return &MediaItemUpdated{ItemID: cmd.ItemID, Property: PropertyVolume}
}

// SetMediaItemMute silences or restores the clip audio
type SetMediaItemMute struct {
	Target
	audioOp
	ItemID string
	Muted  bool
}

func (cmd SetMediaItemMute) prepare(p *project.Project) any {
	return request(p.MediaItem(cmd.ItemID), mutedOf, cmd.Muted)
}

func (cmd SetMediaItemMute) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetMediaItemMute(x.ctx, cmd.ItemID, cmd.Muted)
}

func (cmd SetMediaItemMute) complete(c *completion) Event {
	settle(c, itemOf(c.project(), cmd.ItemID), mutedOf, cmd.Muted)
	return &MediaItemUpdated{ItemID: cmd.ItemID, Property: PropertyMute}
}

// ExtractMediaItemWaveform computes the waveform of a video's audio
type ExtractMediaItemWaveform struct {
	Target
	timelineOp
	ItemID string
}

func (cmd ExtractMediaItemWaveform) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return ed.ExtractMediaItemWaveform(x.ctx, cmd.ItemID, func(percent int) {
		x.emit(&WaveformProgress{OwnerID: cmd.ItemID, Percent: percent})
	})
}

func (cmd ExtractMediaItemWaveform) complete(c *completion) Event {
	ev := &WaveformExtracted{OwnerID: cmd.ItemID}
	if wf, ok := c.result.(*model.Waveform); ok && c.ok() {
		ev.Waveform = wf
		if item := itemOf(c.project(), cmd.ItemID); item != nil {
			item.Waveform = wf
		}
	}
	return ev
}

// thumbnailCommand is implemented by the thumbnail requests. Requests with
// the same owner but another token supersede each other while queued.
type thumbnailCommand interface {
	Command
	thumbnailKey() (owner, token string)
}

// GetMediaItemThumbnails decodes Count frames of an item between Start and
// End; with End not after Start the whole trimmed item is covered. Token
// identifies the view asking, see thumbnailCommand.
type GetMediaItemThumbnails struct {
	Target
	thumbnailOp
	ItemID string
	Width  int
	Height int
	Start  time.Duration
	End    time.Duration
	Count  int
	Token  string
}

func (cmd GetMediaItemThumbnails) thumbnailKey() (string, string) { return cmd.ItemID, cmd.Token }

func (cmd GetMediaItemThumbnails) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	req := engine.ThumbnailRequest{Width: cmd.Width, Height: cmd.Height, Start: cmd.Start, End: cmd.End, Count: cmd.Count}
	return nil, ed.MediaItemThumbnails(x.ctx, cmd.ItemID, req, func(th *model.Thumbnail) {
		x.emit(&ThumbnailReady{OwnerID: cmd.ItemID, Token: cmd.Token, Thumbnail: th})
	})
}

func (cmd GetMediaItemThumbnails) complete(c *completion) Event {
	return &ThumbnailsCompleted{OwnerID: cmd.ItemID, Token: cmd.Token}
}
