package project

import (
	"time"

	"github.com/ytget/movie-editor/internal/model"
)

// MediaItems returns the ordered media items
func (p *Project) MediaItems() []*model.MediaItem {
	return append([]*model.MediaItem(nil), p.items...)
}

// MediaItemCount returns the number of media items
func (p *Project) MediaItemCount() int { return len(p.items) }

// MediaItem returns the item with id, or nil
func (p *Project) MediaItem(id string) *model.MediaItem {
	if i := p.indexOf(id); i >= 0 {
		return p.items[i]
	}
	return nil
}

// FirstMediaItem returns the head of the timeline, or nil
func (p *Project) FirstMediaItem() *model.MediaItem {
	if len(p.items) == 0 {
		return nil
	}
	return p.items[0]
}

// LastMediaItem returns the tail of the timeline, or nil
func (p *Project) LastMediaItem() *model.MediaItem {
	if len(p.items) == 0 {
		return nil
	}
	return p.items[len(p.items)-1]
}

// PreviousMediaItem returns the item before id, or nil
func (p *Project) PreviousMediaItem(id string) *model.MediaItem {
	if i := p.indexOf(id); i > 0 {
		return p.items[i-1]
	}
	return nil
}

// NextMediaItem returns the item after id, or nil
func (p *Project) NextMediaItem(id string) *model.MediaItem {
	if i := p.indexOf(id); i >= 0 && i+1 < len(p.items) {
		return p.items[i+1]
	}
	return nil
}

// MediaItemBeginTime returns where the item starts on the movie timeline
func (p *Project) MediaItemBeginTime(id string) (time.Duration, bool) {
	var start time.Duration
	for _, item := range p.items {
		if item.ID == id {
			return start, true
		}
		start += item.AppTimelineDuration()
		if item.EndTransition != nil {
			start -= item.EndTransition.Duration.Pending
		}
	}
	return 0, false
}

// MediaItemAt returns the item playing at pos, or nil past the end
func (p *Project) MediaItemAt(pos time.Duration) *model.MediaItem {
	var start time.Duration
	for _, item := range p.items {
		end := start + item.AppTimelineDuration()
		if pos >= start && pos < end {
			return item
		}
		start = end
		if item.EndTransition != nil {
			start -= item.EndTransition.Duration.Pending
		}
	}
	return nil
}

// NextMediaItemAt returns the first item that starts strictly after pos
func (p *Project) NextMediaItemAt(pos time.Duration) *model.MediaItem {
	var start time.Duration
	for _, item := range p.items {
		if start > pos {
			return item
		}
		start += item.AppTimelineDuration()
		if item.EndTransition != nil {
			start -= item.EndTransition.Duration.Pending
		}
	}
	return nil
}

// InsertMediaItem places item after afterID, or at the head when afterID is
// empty. Transitions on the seam the item lands in are dropped.
func (p *Project) InsertMediaItem(item *model.MediaItem, afterID string) error {
	item.BeginTransition = nil
	item.EndTransition = nil

	at := 0
	if afterID != "" {
		i := p.indexOf(afterID)
		if i < 0 {
			return &model.NotFoundError{Kind: "media item", ID: afterID}
		}
		p.items[i].EndTransition = nil
		at = i + 1
	}
	if at < len(p.items) {
		p.items[at].BeginTransition = nil
	}

	p.items = append(p.items, nil)
	copy(p.items[at+1:], p.items[at:])
	p.items[at] = item
	p.clean = false
	return nil
}

// RemoveMediaItem takes the item out of the timeline and joins its neighbors
// with replacement, which may be nil.
func (p *Project) RemoveMediaItem(id string, replacement *model.Transition) (*model.MediaItem, error) {
	i := p.indexOf(id)
	if i < 0 {
		return nil, &model.NotFoundError{Kind: "media item", ID: id}
	}
	removed := p.items[i]
	if i > 0 {
		p.items[i-1].EndTransition = replacement
	}
	if i+1 < len(p.items) {
		p.items[i+1].BeginTransition = replacement
	}
	p.items = append(p.items[:i], p.items[i+1:]...)
	p.clean = false
	return removed, nil
}

// MoveMediaItem relocates the item after afterID, joining the vacated seam with replacement
func (p *Project) MoveMediaItem(id, afterID string, replacement *model.Transition) error {
	if afterID == id {
		return &model.NotFoundError{Kind: "media item", ID: afterID}
	}
	if afterID != "" && p.indexOf(afterID) < 0 {
		return &model.NotFoundError{Kind: "media item", ID: afterID}
	}
	item, err := p.RemoveMediaItem(id, replacement)
	if err != nil {
		return err
	}
	return p.InsertMediaItem(item, afterID)
}

// Transition returns the transition with id, or nil
func (p *Project) Transition(id string) *model.Transition {
	for _, item := range p.items {
		if item.BeginTransition != nil && item.BeginTransition.ID == id {
			return item.BeginTransition
		}
		if item.EndTransition != nil && item.EndTransition.ID == id {
			return item.EndTransition
		}
	}
	return nil
}

// AddTransition places t after afterID, or before the first item when afterID is empty
func (p *Project) AddTransition(t *model.Transition, afterID string) error {
	if afterID == "" {
		if len(p.items) == 0 {
			return &model.NotFoundError{Kind: "media item", ID: "first"}
		}
		p.items[0].BeginTransition = t
		p.clean = false
		return nil
	}

	i := p.indexOf(afterID)
	if i < 0 {
		return &model.NotFoundError{Kind: "media item", ID: afterID}
	}
	p.items[i].EndTransition = t
	if i+1 < len(p.items) {
		p.items[i+1].BeginTransition = t
	}
	p.clean = false
	return nil
}

// RemoveTransition clears every slot referencing id. It reports whether any did.
func (p *Project) RemoveTransition(id string) bool {
	found := false
	for _, item := range p.items {
		if item.BeginTransition != nil && item.BeginTransition.ID == id {
			item.BeginTransition = nil
			found = true
		}
		if item.EndTransition != nil && item.EndTransition.ID == id {
			item.EndTransition = nil
			found = true
		}
	}
	if found {
		p.clean = false
	}
	return found
}

// AddOverlay attaches o to the item, evicting any overlay already there
func (p *Project) AddOverlay(itemID string, o *model.Overlay) error {
	item := p.MediaItem(itemID)
	if item == nil {
		return &model.NotFoundError{Kind: "media item", ID: itemID}
	}
	item.Overlay = o
	p.clean = false
	return nil
}

// Overlay returns the overlay with id on the item, or nil
func (p *Project) Overlay(itemID, id string) *model.Overlay {
	item := p.MediaItem(itemID)
	if item == nil || item.Overlay == nil || item.Overlay.ID != id {
		return nil
	}
	return item.Overlay
}

// RemoveOverlay detaches the overlay with id from the item
func (p *Project) RemoveOverlay(itemID, id string) error {
	if p.Overlay(itemID, id) == nil {
		return &model.NotFoundError{Kind: "overlay", ID: id}
	}
	p.MediaItem(itemID).Overlay = nil
	p.clean = false
	return nil
}

// AddEffect attaches e to the item, evicting any effect already there
func (p *Project) AddEffect(itemID string, e *model.Effect) error {
	item := p.MediaItem(itemID)
	if item == nil {
		return &model.NotFoundError{Kind: "media item", ID: itemID}
	}
	item.Effect = e
	p.clean = false
	return nil
}

// Effect returns the effect with id on the item, or nil
func (p *Project) Effect(itemID, id string) *model.Effect {
	item := p.MediaItem(itemID)
	if item == nil || item.Effect == nil || item.Effect.ID != id {
		return nil
	}
	return item.Effect
}

// RemoveEffect detaches the effect with id from the item
func (p *Project) RemoveEffect(itemID, id string) error {
	if p.Effect(itemID, id) == nil {
		return &model.NotFoundError{Kind: "effect", ID: id}
	}
	p.MediaItem(itemID).Effect = nil
	p.clean = false
	return nil
}

// AudioTracks returns the audio tracks in mixing order
func (p *Project) AudioTracks() []*model.AudioTrack {
	return append([]*model.AudioTrack(nil), p.tracks...)
}

// AudioTrack returns the track with id, or nil
func (p *Project) AudioTrack(id string) *model.AudioTrack {
	for _, t := range p.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AddAudioTrack appends a track
func (p *Project) AddAudioTrack(t *model.AudioTrack) {
	p.tracks = append(p.tracks, t)
	p.clean = false
}

// RemoveAudioTrack drops the track with id
func (p *Project) RemoveAudioTrack(id string) error {
	for i, t := range p.tracks {
		if t.ID == id {
			p.tracks = append(p.tracks[:i], p.tracks[i+1:]...)
			p.clean = false
			return nil
		}
	}
	return &model.NotFoundError{Kind: "audio track", ID: id}
}

func (p *Project) indexOf(id string) int {
	for i, item := range p.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
