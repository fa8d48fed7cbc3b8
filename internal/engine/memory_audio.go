package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ytget/movie-editor/internal/model"
)

func (e *memoryEditor) AddAudioTrack(ctx context.Context, tmpl *model.AudioTrack) (*model.AudioTrack, error) {
	if tmpl.ID == "" {
		return nil, errors.New("audio track id is empty")
	}
	if e.engine.opts.Prober == nil {
		return nil, errors.New("engine has no media prober")
	}
	info, err := e.engine.opts.Prober.Probe(ctx, tmpl.Filename)
	if err != nil {
		return nil, err
	}
	if !info.HasAudio || info.Duration <= 0 {
		return nil, fmt.Errorf("%s has no audio stream", tmpl.Filename)
	}

	t := &model.AudioTrack{
		ID:         tmpl.ID,
		Filename:   tmpl.Filename,
		Duration:   info.Duration,
		Boundaries: model.NewEditable(model.Span{End: info.Duration}),
		Volume:     model.NewEditable(model.DefaultVolume),
		Muted:      model.NewEditable(false),
		Loop:       model.NewEditable(tmpl.Loop.Committed),
		Ducking:    model.NewEditable(tmpl.Ducking.Committed),
	}

	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if e.trackIndex(t.ID) >= 0 {
		return nil, fmt.Errorf("audio track %q already exists", t.ID)
	}
	e.tl.AudioTracks = append(e.tl.AudioTracks, t)
	c := *t
	return &c, nil
}

func (e *memoryEditor) RemoveAudioTrack(ctx context.Context, id string) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	i := e.trackIndex(id)
	if i < 0 {
		return &model.NotFoundError{Kind: "audio track", ID: id}
	}
	e.tl.AudioTracks = append(e.tl.AudioTracks[:i], e.tl.AudioTracks[i+1:]...)
	return nil
}

func (e *memoryEditor) SetAudioTrackBoundaries(ctx context.Context, id string, span model.Span) error {
	return e.withTrack(id, func(t *model.AudioTrack) error {
		if span.Begin < 0 || span.End <= span.Begin || span.End > t.Duration {
			return fmt.Errorf("invalid boundaries [%v, %v) for %v track", span.Begin, span.End, t.Duration)
		}
		t.Boundaries = model.NewEditable(span)
		return nil
	})
}

func (e *memoryEditor) SetAudioTrackVolume(ctx context.Context, id string, volume int) error {
	if volume < 0 || volume > MaxVolume {
		return fmt.Errorf("volume %d out of range", volume)
	}
	return e.withTrack(id, func(t *model.AudioTrack) error {
		t.Volume = model.NewEditable(volume)
		return nil
	})
}

func (e *memoryEditor) SetAudioTrackMute(ctx context.Context, id string, muted bool) error {
	return e.withTrack(id, func(t *model.AudioTrack) error {
		t.Muted = model.NewEditable(muted)
		return nil
	})
}

func (e *memoryEditor) SetAudioTrackLoop(ctx context.Context, id string, loop bool) error {
	return e.withTrack(id, func(t *model.AudioTrack) error {
		t.Loop = model.NewEditable(loop)
		return nil
	})
}

func (e *memoryEditor) SetAudioTrackDucking(ctx context.Context, id string, duck bool) error {
	return e.withTrack(id, func(t *model.AudioTrack) error {
		t.Ducking = model.NewEditable(duck)
		return nil
	})
}

func (e *memoryEditor) ExtractAudioTrackWaveform(ctx context.Context, id string, progress func(int)) (*model.Waveform, error) {
	var filename string
	if err := e.withTrack(id, func(t *model.AudioTrack) error {
		filename = t.Filename
		return nil
	}); err != nil {
		return nil, err
	}

	wf, err := e.extractWaveform(ctx, filename, progress)
	if err != nil {
		return nil, err
	}
	err = e.withTrack(id, func(t *model.AudioTrack) error {
		t.Waveform = wf
		return nil
	})
	return wf, err
}

func (e *memoryEditor) withTrack(id string, fn func(*model.AudioTrack) error) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	i := e.trackIndex(id)
	if i < 0 {
		return &model.NotFoundError{Kind: "audio track", ID: id}
	}
	return fn(e.tl.AudioTracks[i])
}

func (e *memoryEditor) trackIndex(id string) int {
	for i, t := range e.tl.AudioTracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
