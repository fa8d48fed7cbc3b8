package editor

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/platform"
	"github.com/ytget/movie-editor/internal/project"
)

// AddAudioTrack adds a background music track starting at the movie head
type AddAudioTrack struct {
	Target
	timelineOp
	TrackID  string // generated when empty
	Filename string
	Loop     bool
	Ducking  bool
}

func (cmd AddAudioTrack) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	local, ok := platform.LocalPath(cmd.Filename)
	if !ok {
		return nil, errors.New("remote media must be downloaded first")
	}
	id := cmd.TrackID
	if id == "" {
		id = uuid.NewString()
	}
	return ed.AddAudioTrack(x.ctx, &model.AudioTrack{
		ID:       id,
		Filename: local,
		Volume:   model.NewEditable(model.DefaultVolume),
		Loop:     model.NewEditable(cmd.Loop),
		Ducking:  model.NewEditable(cmd.Ducking),
	})
}

func (cmd AddAudioTrack) complete(c *completion) Event {
	ev := &AudioTrackAdded{}
	t, ok := c.result.(*model.AudioTrack)
	if !ok || !c.ok() {
		return ev
	}
	ev.Track = t
	if p := c.project(); p != nil {
		p.AddAudioTrack(t)
	}
	return ev
}

// RemoveAudioTrack drops a track from the movie
type RemoveAudioTrack struct {
	Target
	timelineOp
	TrackID string
}

func (cmd RemoveAudioTrack) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.RemoveAudioTrack(x.ctx, cmd.TrackID)
}

func (cmd RemoveAudioTrack) complete(c *completion) Event {
	if p := c.project(); p != nil && c.ok() {
		if err := p.RemoveAudioTrack(cmd.TrackID); err != nil {
			log.Printf("Project %s out of sync with engine: %v", c.path, err)
		}
	}
	return &AudioTrackRemoved{TrackID: cmd.TrackID}
}

func trackBoundariesOf(t *model.AudioTrack) *model.Editable[model.Span] { return &t.Boundaries }
func trackVolumeOf(t *model.AudioTrack) *model.Editable[int] { return &t.Volume }
func trackMutedOf(t *model.AudioTrack) *model.Editable[bool] { return &t.Muted }
func trackLoopOf(t *model.AudioTrack) *model.Editable[bool] { return &t.Loop }
func trackDuckingOf(t *model.AudioTrack) *model.Editable[bool] { return &t.Ducking }

func trackOf(p *project.Project, id string) *model.AudioTrack {
	if p == nil {
		return nil
	}
	return p.AudioTrack(id)
}

// SetAudioTrackBoundaries trims a track to [Begin, End) of its source
type SetAudioTrackBoundaries struct {
	Target
	timelineOp
	TrackID string
	Begin   time.Duration
	End     time.Duration
}

func (cmd SetAudioTrackBoundaries) span() model.Span {
	return model.Span{Begin: cmd.Begin, End: cmd.End}
}

func (cmd SetAudioTrackBoundaries) prepare(p *project.Project) any {
	return request(p.AudioTrack(cmd.TrackID), trackBoundariesOf, cmd.span())
}

func (cmd SetAudioTrackBoundaries) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetAudioTrackBoundaries(x.ctx, cmd.TrackID, cmd.span())
}

func (cmd SetAudioTrackBoundaries) complete(c *completion) Event {
	settle(c, trackOf(c.project(), cmd.TrackID), trackBoundariesOf, cmd.span())
	return &AudioTrackUpdated{TrackID: cmd.TrackID, Property: PropertyBoundaries}
}

// SetAudioTrackVolume sets the track volume in percent
type SetAudioTrackVolume struct {
	Target
	audioOp
	TrackID string
	Volume  int
}

func (cmd SetAudioTrackVolume) prepare(p *project.Project) any {
	return request(p.AudioTrack(cmd.TrackID), trackVolumeOf, cmd.Volume)
}

func (cmd SetAudioTrackVolume) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetAudioTrackVolume(x.ctx, cmd.TrackID, cmd.Volume)
}

func (cmd SetAudioTrackVolume) complete(c *completion) Event {
	settle(c, trackOf(c.project(), cmd.TrackID), trackVolumeOf, cmd.Volume)
	return &AudioTrackUpdated{TrackID: cmd.TrackID, Property: PropertyVolume}
}

// SetAudioTrackMute silences or restores a track
type SetAudioTrackMute struct {
	Target
	audioOp
	TrackID string
	Muted   bool
}

func (cmd SetAudioTrackMute) prepare(p *project.Project) any {
	return request(p.AudioTrack(cmd.TrackID), trackMutedOf, cmd.Muted)
}

func (cmd SetAudioTrackMute) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetAudioTrackMute(x.ctx, cmd.TrackID, cmd.Muted)
}

func (cmd SetAudioTrackMute) complete(c *completion) Event {
	settle(c, trackOf(c.project(), cmd.TrackID), trackMutedOf, cmd.Muted)
	return &AudioTrackUpdated{TrackID: cmd.TrackID, Property: PropertyMute}
}

// SetAudioTrackLoop makes a track repeat until the movie ends
type SetAudioTrackLoop struct {
	Target
	audioOp
	TrackID string
	Loop    bool
}

func (cmd SetAudioTrackLoop) prepare(p *project.Project) any {
	return request(p.AudioTrack(cmd.TrackID), trackLoopOf, cmd.Loop)
}

func (cmd SetAudioTrackLoop) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetAudioTrackLoop(x.ctx, cmd.TrackID, cmd.Loop)
}

func (cmd SetAudioTrackLoop) complete(c *completion) Event {
	settle(c, trackOf(c.project(), cmd.TrackID), trackLoopOf, cmd.Loop)
	return &AudioTrackUpdated{TrackID: cmd.TrackID, Property: PropertyLoop}
}

// SetAudioTrackDuck lowers the track while clip audio plays
type SetAudioTrackDuck struct {
	Target
	audioOp
	TrackID string
	Ducking bool
}

func (cmd SetAudioTrackDuck) prepare(p *project.Project) any {
	return request(p.AudioTrack(cmd.TrackID), trackDuckingOf, cmd.Ducking)
}

func (cmd SetAudioTrackDuck) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return nil, ed.SetAudioTrackDucking(x.ctx, cmd.TrackID, cmd.Ducking)
}

func (cmd SetAudioTrackDuck) complete(c *completion) Event {
	settle(c, trackOf(c.project(), cmd.TrackID), trackDuckingOf, cmd.Ducking)
	return &AudioTrackUpdated{TrackID: cmd.TrackID, Property: PropertyDucking}
}

// ExtractAudioTrackWaveform computes the waveform of a track
type ExtractAudioTrackWaveform struct {
	Target
	timelineOp
	TrackID string
}

func (cmd ExtractAudioTrackWaveform) run(x *execution) (any, error) {
	ed, err := x.editor()
	if err != nil {
		return nil, err
	}
	return ed.ExtractAudioTrackWaveform(x.ctx, cmd.TrackID, func(percent int) {
		x.emit(&WaveformProgress{OwnerID: cmd.TrackID, Percent: percent})
	})
}

func (cmd ExtractAudioTrackWaveform) complete(c *completion) Event {
	ev := &WaveformExtracted{OwnerID: cmd.TrackID}
	if wf, ok := c.result.(*model.Waveform); ok && c.ok() {
		ev.Waveform = wf
		if t := trackOf(c.project(), cmd.TrackID); t != nil {
			t.Waveform = wf
		}
	}
	return ev
}
