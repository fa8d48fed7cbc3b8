package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ytget/movie-editor/internal/editor"
)

// Request is one line of run input. Args holds the command fields by their
// Go names; durations are nanoseconds.
type Request struct {
	Op      string          `json:"op"`
	Project string          `json:"project"`
	Ref     string          `json:"ref,omitempty"` // echoed back to correlate the request id
	Args    json.RawMessage `json:"args,omitempty"`
}

type projectCommand[C any] interface {
	*C
	editor.Command
	SetProject(path string)
}

func decodeAs[C any, P projectCommand[C]](path string, args json.RawMessage) (editor.Command, error) {
	var c C
	if len(args) > 0 {
		if err := json.Unmarshal(args, &c); err != nil {
			return nil, err
		}
	}
	p := P(&c)
	p.SetProject(path)
	return p, nil
}

type decoder func(path string, args json.RawMessage) (editor.Command, error)

var ops = map[string]decoder{
	"create-project":  decodeAs[editor.CreateProject],
	"load-project":    decodeAs[editor.LoadProject],
	"save-project":    decodeAs[editor.SaveProject],
	"release-project": decodeAs[editor.ReleaseProject],
	"delete-project":  decodeAs[editor.DeleteProject],
	"apply-theme":     decodeAs[editor.ApplyTheme],
	"set-aspect":      decodeAs[editor.SetAspectRatio],
	"set-playhead":    decodeAs[editor.SetPlayhead],
	"set-zoom":        decodeAs[editor.SetZoom],
	"export":          decodeAs[editor.ExportMovie],
	"cancel-export":   decodeAs[editor.CancelExport],
	"download":        decodeAs[editor.DownloadMedia],
	"remove-download": decodeAs[editor.RemoveDownload],

	"add-video":             decodeAs[editor.AddVideo],
	"add-image":             decodeAs[editor.AddImage],
	"move-item":             decodeAs[editor.MoveMediaItem],
	"remove-item":           decodeAs[editor.RemoveMediaItem],
	"set-rendering-mode":    decodeAs[editor.SetRenderingMode],
	"set-item-duration":     decodeAs[editor.SetMediaItemDuration],
	"set-item-boundaries":   decodeAs[editor.SetMediaItemBoundaries],
	"set-item-volume":       decodeAs[editor.SetMediaItemVolume],
	"set-item-mute":         decodeAs[editor.SetMediaItemMute],
	"extract-item-waveform": decodeAs[editor.ExtractMediaItemWaveform],
	"item-thumbnails":       decodeAs[editor.GetMediaItemThumbnails],

	"insert-transition":       decodeAs[editor.InsertTransition],
	"remove-transition":       decodeAs[editor.RemoveTransition],
	"set-transition-duration": decodeAs[editor.SetTransitionDuration],
	"transition-thumbnails":   decodeAs[editor.GetTransitionThumbnails],

	"add-overlay":            decodeAs[editor.AddOverlay],
	"remove-overlay":         decodeAs[editor.RemoveOverlay],
	"set-overlay-timing":     decodeAs[editor.SetOverlayTiming],
	"set-overlay-attributes": decodeAs[editor.SetOverlayAttributes],
	"add-ken-burns":          decodeAs[editor.AddKenBurnsEffect],
	"add-color-effect":       decodeAs[editor.AddColorEffect],
	"remove-effect":          decodeAs[editor.RemoveEffect],
	"set-effect-timing":      decodeAs[editor.SetEffectTiming],

	"add-audio-track":        decodeAs[editor.AddAudioTrack],
	"remove-audio-track":     decodeAs[editor.RemoveAudioTrack],
	"set-track-boundaries":   decodeAs[editor.SetAudioTrackBoundaries],
	"set-track-volume":       decodeAs[editor.SetAudioTrackVolume],
	"set-track-mute":         decodeAs[editor.SetAudioTrackMute],
	"set-track-loop":         decodeAs[editor.SetAudioTrackLoop],
	"set-track-ducking":      decodeAs[editor.SetAudioTrackDuck],
	"extract-track-waveform": decodeAs[editor.ExtractAudioTrackWaveform],
}

// Ops returns the request operation names in order
func Ops() []string {
	out := make([]string, 0, len(ops))
	for op := range ops {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// parseRequest decodes one input line into a command for the resolved project
func (a *App) parseRequest(line []byte) (Request, editor.Command, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return req, nil, fmt.Errorf("invalid request: %w", err)
	}
	dec, ok := ops[strings.TrimSpace(req.Op)]
	if !ok {
		return req, nil, fmt.Errorf("unknown op %q", req.Op)
	}
	if strings.TrimSpace(req.Project) == "" {
		return req, nil, fmt.Errorf("%s: project is required", req.Op)
	}
	cmd, err := dec(a.projectPath(req.Project), req.Args)
	if err != nil {
		return req, nil, fmt.Errorf("%s: invalid args: %w", req.Op, err)
	}
	return req, cmd, nil
}
