package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/waveform"
)

func (e *memoryEditor) AddMediaItem(ctx context.Context, tmpl *model.MediaItem, afterID string) (*model.MediaItem, error) {
	if tmpl.ID == "" {
		return nil, errors.New("media item id is empty")
	}
	item, err := e.buildMediaItem(ctx, tmpl)
	if err != nil {
		return nil, err
	}

	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if e.indexOf(tmpl.ID) >= 0 {
		return nil, fmt.Errorf("media item %q already exists", tmpl.ID)
	}
	if err := e.insertItem(item, afterID); err != nil {
		return nil, err
	}
	return cloneItem(item), nil
}

// buildMediaItem reads the source file; it runs without holding mu
func (e *memoryEditor) buildMediaItem(ctx context.Context, tmpl *model.MediaItem) (*model.MediaItem, error) {
	mode := tmpl.RenderingMode.Committed
	if mode == "" {
		mode = model.RenderingBlackBorders
	}
	item := &model.MediaItem{
		ID:            tmpl.ID,
		Kind:          tmpl.Kind,
		Filename:      tmpl.Filename,
		RenderingMode: model.NewEditable(mode),
		Volume:        model.NewEditable(model.DefaultVolume),
		Muted:         model.NewEditable(false),
	}

	switch tmpl.Kind {
	case model.MediaKindVideo:
		if e.engine.opts.Prober == nil {
			return nil, errors.New("engine has no media prober")
		}
		info, err := e.engine.opts.Prober.Probe(ctx, tmpl.Filename)
		if err != nil {
			return nil, err
		}
		if !info.HasVideo || info.Duration <= 0 {
			return nil, fmt.Errorf("%s has no playable video stream", tmpl.Filename)
		}
		item.Duration, item.Width, item.Height = info.Duration, info.Width, info.Height
	case model.MediaKindImage:
		f, err := os.Open(tmpl.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %s: %w", tmpl.Filename, err)
		}
		item.Width, item.Height = cfg.Width, cfg.Height
		item.Duration = tmpl.Duration
		if item.Duration <= 0 {
			item.Duration = DefaultImageDuration
		}
	default:
		return nil, fmt.Errorf("unknown media kind %q", tmpl.Kind)
	}

	item.AspectRatio = nearestAspect(item.Width, item.Height)
	item.Boundaries = model.NewEditable(model.Span{End: item.Duration})
	return item, nil
}

func (e *memoryEditor) MoveMediaItem(ctx context.Context, id, afterID string) (*model.Transition, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if afterID == id {
		return nil, fmt.Errorf("cannot move media item %q after itself", id)
	}
	if afterID != "" && e.indexOf(afterID) < 0 {
		return nil, &model.NotFoundError{Kind: "media item", ID: afterID}
	}
	item, replacement, err := e.removeItem(id)
	if err != nil {
		return nil, err
	}
	if err := e.insertItem(item, afterID); err != nil {
		return nil, err
	}
	return replacement.Clone(), nil
}

func (e *memoryEditor) RemoveMediaItem(ctx context.Context, id string) (*model.Transition, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	_, replacement, err := e.removeItem(id)
	if err != nil {
		return nil, err
	}
	return replacement.Clone(), nil
}

func (e *memoryEditor) SetMediaItemRenderingMode(ctx context.Context, id string, mode model.RenderingMode) error {
	switch mode {
	case model.RenderingBlackBorders, model.RenderingStretch, model.RenderingCropping:
	default:
		return fmt.Errorf("unknown rendering mode %q", mode)
	}
	return e.withItem(id, func(item *model.MediaItem) error {
		item.RenderingMode = model.NewEditable(mode)
		return nil
	})
}

func (e *memoryEditor) SetMediaItemDuration(ctx context.Context, id string, d time.Duration) (*model.MediaItem, error) {
	var out *model.MediaItem
	err := e.withItem(id, func(item *model.MediaItem) error {
		if item.IsVideo() {
			return errors.New("video duration is set through boundaries")
		}
		if d <= 0 {
			return fmt.Errorf("invalid image duration %v", d)
		}
		item.Duration = d
		item.Boundaries = model.NewEditable(model.Span{End: d})
		fitToItem(item)
		out = cloneItem(item)
		return nil
	})
	return out, err
}

func (e *memoryEditor) SetMediaItemBoundaries(ctx context.Context, id string, span model.Span) (*model.MediaItem, error) {
	var out *model.MediaItem
	err := e.withItem(id, func(item *model.MediaItem) error {
		if !item.IsVideo() {
			return errors.New("image length is set through duration")
		}
		if span.Begin < 0 || span.End <= span.Begin || span.End > item.Duration {
			return fmt.Errorf("invalid boundaries [%v, %v) for %v clip", span.Begin, span.End, item.Duration)
		}
		item.Boundaries = model.NewEditable(span)
		fitToItem(item)
		out = cloneItem(item)
		return nil
	})
	return out, err
}

func (e *memoryEditor) SetMediaItemVolume(ctx context.Context, id string, volume int) error {
	if volume < 0 || volume > MaxVolume {
		return fmt.Errorf("volume %d out of range", volume)
	}
	return e.withItem(id, func(item *model.MediaItem) error {
		if !item.IsVideo() {
			return errors.New("images have no audio")
		}
		item.Volume = model.NewEditable(volume)
		return nil
	})
}

func (e *memoryEditor) SetMediaItemMute(ctx context.Context, id string, muted bool) error {
	return e.withItem(id, func(item *model.MediaItem) error {
		if !item.IsVideo() {
			return errors.New("images have no audio")
		}
		item.Muted = model.NewEditable(muted)
		return nil
	})
}

func (e *memoryEditor) ExtractMediaItemWaveform(ctx context.Context, id string, progress func(int)) (*model.Waveform, error) {
	var filename string
	if err := e.withItem(id, func(item *model.MediaItem) error {
		if !item.IsVideo() {
			return errors.New("images have no audio")
		}
		filename = item.Filename
		return nil
	}); err != nil {
		return nil, err
	}

	wf, err := e.extractWaveform(ctx, filename, progress)
	if err != nil {
		return nil, err
	}
	err = e.withItem(id, func(item *model.MediaItem) error {
		item.Waveform = wf
		return nil
	})
	return wf, err
}

func (e *memoryEditor) MediaItemThumbnails(ctx context.Context, id string, req ThumbnailRequest, emit func(*model.Thumbnail)) error {
	var span model.Span
	if err := e.withItem(id, func(item *model.MediaItem) error {
		span = item.Boundaries.Committed
		if !item.IsVideo() {
			// a still looks the same at every position
			span = model.Span{}
		}
		return nil
	}); err != nil {
		return err
	}
	if req.End <= req.Start {
		req.Start, req.End = span.Begin, span.End
	}
	return renderThumbnails(ctx, req, emit)
}

// extractWaveform runs without holding mu
func (e *memoryEditor) extractWaveform(ctx context.Context, filename string, progress func(int)) (*model.Waveform, error) {
	if strings.EqualFold(filepath.Ext(filename), ".wav") {
		return waveform.Extract(ctx, filename, e.engine.opts.Waveform, progress)
	}
	if e.engine.opts.Decoder == nil {
		return nil, fmt.Errorf("cannot decode audio of %s: engine has no decoder", filename)
	}

	tmp, err := os.CreateTemp("", "waveform-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create waveform scratch file: %w", err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := e.engine.opts.Decoder.DecodeAudio(ctx, filename, tmp.Name()); err != nil {
		return nil, err
	}
	return waveform.Extract(ctx, tmp.Name(), e.engine.opts.Waveform, progress)
}

// withItem runs fn on the item under mu
func (e *memoryEditor) withItem(id string, fn func(*model.MediaItem) error) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return &model.NotFoundError{Kind: "media item", ID: id}
	}
	return fn(e.tl.Items[i])
}

// insertItem places item after afterID and drops the transitions of the seam it splits
func (e *memoryEditor) insertItem(item *model.MediaItem, afterID string) error {
	at := 0
	if afterID != "" {
		i := e.indexOf(afterID)
		if i < 0 {
			return &model.NotFoundError{Kind: "media item", ID: afterID}
		}
		e.tl.Items[i].EndTransition = nil
		at = i + 1
	}
	if at < len(e.tl.Items) {
		e.tl.Items[at].BeginTransition = nil
	}
	item.BeginTransition, item.EndTransition = nil, nil

	items := append(e.tl.Items, nil)
	copy(items[at+1:], items[at:])
	items[at] = item
	e.tl.Items = items
	return nil
}

// removeItem takes the item out; with a theme applied the vacated seam gets a fresh theme transition
func (e *memoryEditor) removeItem(id string) (*model.MediaItem, *model.Transition, error) {
	i := e.indexOf(id)
	if i < 0 {
		return nil, nil, &model.NotFoundError{Kind: "media item", ID: id}
	}
	items := e.tl.Items
	removed := items[i]

	var replacement *model.Transition
	if theme, ok := LookupTheme(e.tl.Theme); ok && i > 0 && i+1 < len(items) {
		replacement = theme.newTransition(newID())
	}
	if i > 0 {
		items[i-1].EndTransition = replacement
	}
	if i+1 < len(items) {
		items[i+1].BeginTransition = replacement
	}
	e.tl.Items = append(items[:i], items[i+1:]...)
	return removed, replacement, nil
}

func (e *memoryEditor) indexOf(id string) int {
	for i, item := range e.tl.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// fitToItem shrinks overlay and effect timing to the item length
func fitToItem(item *model.MediaItem) {
	length := item.TimelineDuration()
	if o := item.Overlay; o != nil {
		start, d := fit(o.StartTime.Committed, o.Duration.Committed, length)
		o.StartTime, o.Duration = model.NewEditable(start), model.NewEditable(d)
	}
	if fx := item.Effect; fx != nil {
		fx.StartTime, fx.Duration = fit(fx.StartTime, fx.Duration, length)
	}
}

func fit(start, d, length time.Duration) (time.Duration, time.Duration) {
	if d > length {
		d = length
	}
	if start+d > length {
		start = length - d
	}
	return start, d
}
