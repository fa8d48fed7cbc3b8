package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/ytget/movie-editor/internal/editor"
)

// eventLine is the JSON form of an editor event
type eventLine struct {
	Event     string `json:"event"`
	Path      string `json:"path,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Ref       string `json:"ref,omitempty"`
	Final     bool   `json:"final"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Error     string `json:"error,omitempty"`
	Data      any    `json:"data,omitempty"`
}

type thumbnailData struct {
	OwnerID string `json:"ownerId"`
	Token   string `json:"token"`
	Index   int    `json:"index"`
	TimeMs  int64  `json:"timeMs"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func toLine(ev editor.Event, o *editor.Outcome) eventLine {
	line := eventLine{
		Event:     strings.TrimPrefix(fmt.Sprintf("%T", ev), "*editor."),
		Path:      o.Path,
		RequestID: o.RequestID,
		Final:     o.Final,
		Cancelled: o.Cancelled,
		Data:      ev,
	}
	if o.Error != nil {
		line.Error = o.Error.Error()
	}
	if t, ok := ev.(*editor.ThumbnailReady); ok {
		d := thumbnailData{OwnerID: t.OwnerID, Token: t.Token}
		if th := t.Thumbnail; th != nil {
			d.Index, d.TimeMs = th.Index, th.Time.Milliseconds()
			if th.Image != nil {
				b := th.Image.Bounds()
				d.Width, d.Height = b.Dx(), b.Dy()
			}
		}
		line.Data = d
	}
	return line
}

// eventWriter encodes events on its own goroutine so observers never block
// the editor loop.
type eventWriter struct {
	mu     sync.Mutex
	lines  []eventLine
	closed bool
	wake   chan struct{}
	done   chan struct{}
	enc    *json.Encoder
}

func newEventWriter(w io.Writer, pretty bool) *eventWriter {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	ew := &eventWriter{wake: make(chan struct{}, 1), done: make(chan struct{}), enc: enc}
	go ew.run()
	return ew
}

// OnEvent implements editor.Observer
func (w *eventWriter) OnEvent(ev editor.Event) {
	w.write(toLine(ev, editor.OutcomeOf(ev)))
}

func (w *eventWriter) write(line eventLine) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.lines = append(w.lines, line)
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *eventWriter) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		batch := w.lines
		w.lines = nil
		closed := w.closed
		w.mu.Unlock()

		for _, line := range batch {
			if err := w.enc.Encode(line); err != nil {
				log.Printf("Failed to write event %s: %v", line.Event, err)
			}
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-w.wake
	}
}

// close flushes what was written and stops the writer
func (w *eventWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
	<-w.done
}
