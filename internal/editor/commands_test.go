package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/movie-editor/internal/catalog"
	"github.com/ytget/movie-editor/internal/download"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/project"
)

func addTestVideo(t *testing.T, env *testEnv, path, id, file, after string) *model.MediaItem {
	t.Helper()
	ev := env.mustRun(t, AddVideo{Target: Target{Path: path}, ItemID: id, Filename: file, AfterID: after})
	return ev.(*MediaItemAdded).Item
}

func TestCreateProject_AddVideos(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.path("trip")

	created := env.mustRun(t, CreateProject{Target: Target{Path: path}}).(*ProjectCreated)
	if created.Metadata.Name != "trip" {
		t.Errorf("name = %q, expected folder name", created.Metadata.Name)
	}
	if _, err := os.Stat(filepath.Join(path, project.MetadataFileName)); err != nil {
		t.Errorf("metadata not written: %v", err)
	}

	a := addTestVideo(t, env, path, "a", "/media/a.mp4", "")
	if a.Duration != 10*time.Second || a.Boundaries.Committed.End != 10*time.Second {
		t.Errorf("item = %+v", a)
	}
	addTestVideo(t, env, path, "b", "/media/b.mp4", "a")

	env.view(t, func(p *project.Project) {
		if p == nil || p.Path() != path {
			t.Fatalf("active project = %v", p)
		}
		items := p.MediaItems()
		if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
			t.Errorf("items = %v", items)
		}
		if p.IsClean() {
			t.Error("project clean after edits")
		}
	})

	var busy []bool
	for _, ev := range env.rec.all() {
		if st, ok := ev.(*ProjectEditStateChanged); ok && st.Path == path {
			busy = append(busy, st.Busy)
		}
	}
	if len(busy) == 0 || !busy[0] || busy[len(busy)-1] {
		t.Errorf("busy transitions = %v, expected to start busy and end idle", busy)
	}
	if n := env.svc.pool.outstanding(); n != 0 {
		t.Errorf("outstanding messages = %d, expected 0", n)
	}
}

func TestAddVideo_RemoteRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")

	ev := env.run(t, AddVideo{Target: Target{Path: path}, Filename: "https://example.com/a.mp4"})
	if ev.outcome().Error == nil {
		t.Error("adding a remote file succeeded")
	}
}

func TestSetVolume_OptimisticAndRollback(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")

	gate := make(chan struct{})
	env.submit(t, gateCmd{Target: Target{Path: path}, aff: AffinityAudio, gate: gate})
	id := env.submit(t, SetMediaItemVolume{Target: Target{Path: path}, ItemID: "a", Volume: 150})

	env.view(t, func(p *project.Project) {
		v := p.MediaItem("a").Volume
		if v.Pending != 150 || v.Committed != model.DefaultVolume {
			t.Errorf("volume before completion = %+v", v)
		}
	})

	close(gate)
	if ev := env.rec.final(t, id); ev.outcome().Error == nil {
		t.Fatal("out of range volume succeeded")
	}
	env.view(t, func(p *project.Project) {
		if v := p.MediaItem("a").Volume; !v.Settled() || v.Committed != model.DefaultVolume {
			t.Errorf("volume after failure = %+v", v)
		}
	})

	env.mustRun(t, SetMediaItemVolume{Target: Target{Path: path}, ItemID: "a", Volume: 40})
	env.mustRun(t, SetMediaItemMute{Target: Target{Path: path}, ItemID: "a", Muted: true})
	env.view(t, func(p *project.Project) {
		item := p.MediaItem("a")
		if item.Volume.Committed != 40 || !item.Volume.Settled() {
			t.Errorf("volume = %+v", item.Volume)
		}
		if !item.Muted.Committed {
			t.Error("item not muted")
		}
	})
}

func TestMediaItemEdits(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	target := Target{Path: path}
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")
	addTestVideo(t, env, path, "b", "/media/b.mp4", "a")

	env.mustRun(t, SetRenderingMode{Target: target, ItemID: "a", Mode: model.RenderingCropping})
	env.mustRun(t, SetMediaItemBoundaries{Target: target, ItemID: "a", Begin: 2 * time.Second, End: 6 * time.Second})
	env.mustRun(t, MoveMediaItem{Target: target, ItemID: "b"})

	env.view(t, func(p *project.Project) {
		items := p.MediaItems()
		if len(items) != 2 || items[0].ID != "b" {
			t.Errorf("items after move = %v", items)
		}
		a := p.MediaItem("a")
		if a.RenderingMode.Committed != model.RenderingCropping {
			t.Errorf("rendering mode = %v", a.RenderingMode)
		}
		if got := a.Boundaries.Committed; got.Begin != 2*time.Second || got.End != 6*time.Second {
			t.Errorf("boundaries = %+v", got)
		}
	})

	removed := env.mustRun(t, RemoveMediaItem{Target: target, ItemID: "b"}).(*MediaItemRemoved)
	if removed.ItemID != "b" {
		t.Errorf("removed = %+v", removed)
	}
	env.view(t, func(p *project.Project) {
		if p.MediaItemCount() != 1 || p.MediaItem("b") != nil {
			t.Errorf("items after remove = %v", p.MediaItems())
		}
	})
}

func TestTransitionsOverlaysEffects(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	target := Target{Path: path}
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")
	addTestVideo(t, env, path, "b", "/media/b.mp4", "a")

	ins := env.mustRun(t, InsertTransition{
		Target:       target,
		TransitionID: "t1",
		AfterID:      "a",
		Kind:         model.TransitionCrossfade,
		Duration:     time.Second,
	}).(*TransitionInserted)
	if ins.Transition == nil || ins.Transition.ID != "t1" {
		t.Fatalf("inserted = %+v", ins)
	}
	env.mustRun(t, SetTransitionDuration{Target: target, TransitionID: "t1", Duration: 2 * time.Second})

	env.mustRun(t, AddOverlay{
		Target:    target,
		ItemID:    "a",
		OverlayID: "o1",
		Title:     "Day one",
		Layout:    model.OverlayCenter,
		Duration:  3 * time.Second,
	})
	env.mustRun(t, SetOverlayTiming{Target: target, ItemID: "a", OverlayID: "o1", StartTime: time.Second, Duration: 2 * time.Second})
	env.mustRun(t, SetOverlayAttributes{Target: target, ItemID: "a", OverlayID: "o1", Title: "Day two", Layout: model.OverlayBottom})

	env.mustRun(t, AddColorEffect{Target: target, ItemID: "b", EffectID: "e1", Kind: model.EffectSepia, Duration: 2 * time.Second})
	env.mustRun(t, SetEffectTiming{Target: target, ItemID: "b", EffectID: "e1", StartTime: time.Second, Duration: time.Second})

	env.view(t, func(p *project.Project) {
		tr := p.Transition("t1")
		if tr == nil || tr.Duration.Committed != 2*time.Second || !tr.Duration.Settled() {
			t.Errorf("transition = %+v", tr)
		}
		o := p.Overlay("a", "o1")
		if o == nil {
			t.Fatal("overlay missing")
		}
		if o.StartTime.Committed != time.Second || o.Duration.Committed != 2*time.Second {
			t.Errorf("overlay timing = %v/%v", o.StartTime, o.Duration)
		}
		if o.Title != "Day two" || o.Layout != model.OverlayBottom {
			t.Errorf("overlay attributes = %q %q", o.Title, o.Layout)
		}
		e := p.Effect("b", "e1")
		if e == nil || e.StartTime != time.Second || e.Duration != time.Second {
			t.Errorf("effect = %+v", e)
		}
	})

	ev := env.run(t, AddKenBurnsEffect{Target: target, ItemID: "a", Duration: time.Second})
	if ev.outcome().Error == nil {
		t.Error("ken burns without rectangles succeeded")
	}

	env.mustRun(t, RemoveEffect{Target: target, ItemID: "b", EffectID: "e1"})
	env.mustRun(t, RemoveOverlay{Target: target, ItemID: "a", OverlayID: "o1"})
	env.mustRun(t, RemoveTransition{Target: target, TransitionID: "t1"})
	env.view(t, func(p *project.Project) {
		if p.Transition("t1") != nil || p.Overlay("a", "o1") != nil || p.Effect("b", "e1") != nil {
			t.Error("removed elements still present")
		}
	})
}

func TestSetTransitionDuration_Rollback(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	target := Target{Path: path}
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")
	env.mustRun(t, InsertTransition{Target: target, TransitionID: "t1", Kind: model.TransitionFadeBlack, Duration: time.Second})

	ev := env.run(t, SetTransitionDuration{Target: target, TransitionID: "t1", Duration: -time.Second})
	if ev.outcome().Error == nil {
		t.Fatal("negative duration succeeded")
	}
	env.view(t, func(p *project.Project) {
		d := p.Transition("t1").Duration
		if !d.Settled() || d.Committed != time.Second {
			t.Errorf("duration = %+v", d)
		}
	})
}

func TestAudioTracks(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	target := Target{Path: path}

	added := env.mustRun(t, AddAudioTrack{Target: target, TrackID: "m", Filename: "/media/music.mp3", Loop: true}).(*AudioTrackAdded)
	if added.Track == nil || added.Track.Duration != time.Minute || !added.Track.Loop.Committed {
		t.Fatalf("track = %+v", added.Track)
	}

	env.mustRun(t, SetAudioTrackVolume{Target: target, TrackID: "m", Volume: 30})
	env.mustRun(t, SetAudioTrackMute{Target: target, TrackID: "m", Muted: true})
	env.mustRun(t, SetAudioTrackLoop{Target: target, TrackID: "m", Loop: false})
	env.mustRun(t, SetAudioTrackDuck{Target: target, TrackID: "m", Ducking: true})
	env.mustRun(t, SetAudioTrackBoundaries{Target: target, TrackID: "m", Begin: 5 * time.Second, End: 20 * time.Second})

	env.view(t, func(p *project.Project) {
		tr := p.AudioTrack("m")
		if tr == nil {
			t.Fatal("track missing")
		}
		if tr.Volume.Committed != 30 || !tr.Muted.Committed || tr.Loop.Committed || !tr.Ducking.Committed {
			t.Errorf("track = %+v", tr)
		}
		if span := tr.Boundaries.Committed; span.Begin != 5*time.Second || span.End != 20*time.Second {
			t.Errorf("boundaries = %+v", span)
		}
	})

	env.mustRun(t, RemoveAudioTrack{Target: target, TrackID: "m"})
	env.view(t, func(p *project.Project) {
		if len(p.AudioTracks()) != 0 {
			t.Error("track still present")
		}
	})
}

func TestProjectLifecycle_WithCatalog(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cat.Close() })

	env := newTestEnv(t, func(o *Options) { o.Catalog = cat })
	path := env.path("holiday")
	target := Target{Path: path}
	env.mustRun(t, CreateProject{Target: target, Name: "Holiday", Theme: "film"})
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")

	changed := env.mustRun(t, SetPlayhead{Target: target, Position: 3 * time.Second}).(*MetadataChanged)
	if changed.Metadata.Playhead != 3*time.Second {
		t.Errorf("playhead = %v", changed.Metadata.Playhead)
	}
	env.mustRun(t, SetZoom{Target: target, Level: 4})

	saved := env.mustRun(t, SaveProject{Target: target}).(*ProjectSaved)
	if saved.SavedAt.IsZero() {
		t.Error("SavedAt not set")
	}
	env.view(t, func(p *project.Project) {
		if !p.IsClean() {
			t.Error("project dirty after save")
		}
	})

	env.mustRun(t, ReleaseProject{Target: target})
	env.view(t, func(p *project.Project) {
		if p != nil {
			t.Errorf("active project after release = %s", p.Path())
		}
	})

	loaded := env.mustRun(t, LoadProject{Target: target}).(*ProjectLoaded)
	if loaded.Metadata.Name != "Holiday" || loaded.Metadata.Playhead != 3*time.Second || loaded.Metadata.Zoom != 4 {
		t.Errorf("loaded metadata = %+v", loaded.Metadata)
	}
	env.view(t, func(p *project.Project) {
		if p.MediaItemCount() != 1 || p.Theme() != "film" {
			t.Errorf("loaded project: %d items, theme %q", p.MediaItemCount(), p.Theme())
		}
	})

	entries, err := env.svc.Projects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Path != path || entries[0].Name != "Holiday" {
		t.Errorf("catalog = %+v", entries)
	}

	env.mustRun(t, DeleteProject{Target: target})
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("project folder still exists: %v", err)
	}
	env.view(t, func(p *project.Project) {
		if p != nil {
			t.Error("deleted project still active")
		}
	})
	if entries, _ := env.svc.Projects(ctx); len(entries) != 0 {
		t.Errorf("catalog after delete = %+v", entries)
	}
}

func TestApplyThemeAndAspectRatio(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	target := Target{Path: path}
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")

	env.mustRun(t, ApplyTheme{Target: target, Theme: "film"})
	changed := env.mustRun(t, SetAspectRatio{Target: target, AspectRatio: model.AspectRatio4x3}).(*MetadataChanged)
	if changed.Metadata.AspectRatio != model.AspectRatio4x3 {
		t.Errorf("aspect ratio = %q", changed.Metadata.AspectRatio)
	}
	env.view(t, func(p *project.Project) {
		if p.Theme() != "film" {
			t.Errorf("theme = %q", p.Theme())
		}
	})

	if ev := env.run(t, ApplyTheme{Target: target, Theme: "nope"}); ev.outcome().Error == nil {
		t.Error("unknown theme succeeded")
	}
}

func TestRemoveDownload_Unknown(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")

	ev := env.run(t, RemoveDownload{Target: Target{Path: path}, Filename: "nothing.mp4"})
	var nf *model.NotFoundError
	if !errors.As(ev.outcome().Error, &nf) {
		t.Errorf("error = %v, expected NotFoundError", ev.outcome().Error)
	}
}

func TestThumbnails_Delivered(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")

	id := env.submit(t, GetMediaItemThumbnails{Target: Target{Path: path}, ItemID: "a", Width: 16, Height: 9, Count: 4, Token: "strip"})
	done := env.rec.final(t, id).(*ThumbnailsCompleted)
	if !done.Succeeded() || done.Token != "strip" {
		t.Errorf("completed = %+v", done)
	}

	frames := 0
	for _, ev := range env.rec.all() {
		if r, ok := ev.(*ThumbnailReady); ok && r.RequestID == id {
			if r.Final {
				t.Error("thumbnail marked final")
			}
			frames++
		}
	}
	if frames != 4 {
		t.Errorf("frames = %d, expected 4", frames)
	}
}

// gatedThumbnails is a thumbnail request that holds its worker
type gatedThumbnails struct {
	gateCmd
	owner string
	token string
}

func (c gatedThumbnails) thumbnailKey() (string, string) { return c.owner, c.token }

func TestThumbnails_QueuedRequestSuperseded(t *testing.T) {
	tests := []struct {
		name          string
		disableDedup  bool
		wantSupersede bool
	}{
		{name: "dedup", wantSupersede: true},
		{name: "disabled", disableDedup: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(o *Options) { o.DisableThumbnailDedup = tt.disableDedup })
			path := env.createProject(t, "p")
			target := Target{Path: path}
			addTestVideo(t, env, path, "a", "/media/a.mp4", "")

			gate := make(chan struct{})
			env.submit(t, gateCmd{Target: target, aff: AffinityThumbnail, gate: gate})
			first := env.submit(t, GetMediaItemThumbnails{Target: target, ItemID: "a", Width: 16, Height: 9, Count: 2, Token: "old"})
			second := env.submit(t, GetMediaItemThumbnails{Target: target, ItemID: "a", Width: 16, Height: 9, Count: 2, Token: "new"})
			env.view(t, func(*project.Project) {})

			_, pending := env.svc.State(first)
			if pending == tt.wantSupersede {
				t.Errorf("first request pending = %v", pending)
			}

			close(gate)
			env.rec.final(t, second)
			old := env.rec.find(func(ev Event) bool { return ev.outcome().RequestID == first })
			if tt.wantSupersede && old != nil {
				t.Errorf("superseded request produced %T", old)
			}
			if !tt.wantSupersede && old == nil {
				t.Error("first request produced no events")
			}
			if n := env.svc.pool.outstanding(); n != 0 {
				t.Errorf("outstanding messages = %d, expected 0", n)
			}
		})
	}
}

func TestThumbnails_RunningRequestNotSuperseded(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	target := Target{Path: path}
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")

	gate := make(chan struct{})
	running := env.submit(t, gatedThumbnails{
		gateCmd: gateCmd{Target: target, aff: AffinityThumbnail, gate: gate},
		owner:   "a",
		token:   "old",
	})
	waitUntil(t, func() bool {
		st, _ := env.svc.State(running)
		return st == model.CommandRunning
	})
	next := env.submit(t, GetMediaItemThumbnails{Target: target, ItemID: "a", Width: 16, Height: 9, Count: 2, Token: "new"})

	close(gate)
	if ev := env.rec.final(t, running); !ev.outcome().Succeeded() {
		t.Errorf("running request failed: %v", ev.outcome().Error)
	}
	env.rec.final(t, next)
}

func TestTransitionThumbnails(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	target := Target{Path: path}
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")
	addTestVideo(t, env, path, "b", "/media/b.mp4", "a")
	env.mustRun(t, InsertTransition{Target: target, TransitionID: "t1", AfterID: "a", Kind: model.TransitionCrossfade, Duration: time.Second})

	done := env.mustRun(t, GetTransitionThumbnails{Target: target, TransitionID: "t1", Width: 8, Height: 8, Count: 3, Token: "x"}).(*ThumbnailsCompleted)
	if done.OwnerID != "t1" {
		t.Errorf("owner = %q", done.OwnerID)
	}
}

func TestExportMovie_Completes(t *testing.T) {
	var gallery atomic.Int32
	env := newTestEnv(t, func(o *Options) {
		o.Gallery = func(string) error {
			gallery.Add(1)
			return nil
		}
	})
	close(env.renderer.release)
	path := env.createProject(t, "trip")
	addTestVideo(t, env, path, "a", "/media/a.mp4", "")

	id := env.submit(t, ExportMovie{Target: Target{Path: path}})
	done := env.rec.final(t, id).(*ExportCompleted)
	if !done.Succeeded() {
		t.Fatalf("export failed: %v", done.Error)
	}
	want := filepath.Join(env.root, "movies", "trip"+ExportExtension)
	if done.Filename != want {
		t.Errorf("filename = %q, expected %q", done.Filename, want)
	}
	if n := gallery.Load(); n != 1 {
		t.Errorf("gallery called %d times, expected 1", n)
	}
	progress := env.rec.find(func(ev Event) bool {
		p, ok := ev.(*ExportProgress)
		return ok && p.RequestID == id && p.Percent == 100
	})
	if progress == nil {
		t.Error("no progress event")
	}
	env.view(t, func(p *project.Project) {
		if p.ExportedMovie() != want {
			t.Errorf("exported movie = %q", p.ExportedMovie())
		}
	})
}

func TestExportMovie_Cancel(t *testing.T) {
	var gallery atomic.Int32
	env := newTestEnv(t, func(o *Options) {
		o.Gallery = func(string) error {
			gallery.Add(1)
			return nil
		}
	})
	path := env.createProject(t, "trip")
	target := Target{Path: path}

	id := env.submit(t, ExportMovie{Target: target, OutputPath: filepath.Join(env.root, "out.mp4")})
	env.rec.waitFor(t, func(ev Event) bool {
		p, ok := ev.(*ExportProgress)
		return ok && p.RequestID == id
	})
	if st, ok := env.svc.State(id); !ok || st != model.CommandRunning {
		t.Errorf("export state = %v, %v", st, ok)
	}

	env.mustRun(t, CancelExport{Target: target})
	done := env.rec.final(t, id).(*ExportCompleted)
	if !done.Cancelled || done.Error != nil || done.Succeeded() {
		t.Errorf("outcome = %+v, expected cancelled without error", done.Outcome)
	}
	if n := gallery.Load(); n != 0 {
		t.Errorf("gallery called %d times for a cancelled export", n)
	}
	env.view(t, func(p *project.Project) {
		if p.ExportedMovie() != "" {
			t.Errorf("exported movie = %q", p.ExportedMovie())
		}
	})

	ev := env.run(t, CancelExport{Target: target})
	var nf *model.NotFoundError
	if !errors.As(ev.outcome().Error, &nf) {
		t.Errorf("second cancel = %v, expected NotFoundError", ev.outcome().Error)
	}
}

type fakeDownloader struct {
	entries map[string][]string
	files   map[string]download.Result
}

func (d *fakeDownloader) Expand(ctx context.Context, uri string) ([]string, error) {
	if entries, ok := d.entries[uri]; ok {
		return entries, nil
	}
	return []string{uri}, nil
}

func (d *fakeDownloader) Fetch(ctx context.Context, uri, destDir string) (*download.Result, error) {
	res, ok := d.files[uri]
	if !ok {
		return nil, errors.New("not found")
	}
	return &res, nil
}

func TestDownloadMedia_AddsFiles(t *testing.T) {
	dl := &fakeDownloader{
		entries: map[string][]string{"https://example.com/list": {"https://example.com/v", "https://example.com/m"}},
		files: map[string]download.Result{
			"https://example.com/v": {SourceURI: "https://example.com/v", Filename: "/media/a.mp4", MimeType: "video/mp4"},
			"https://example.com/m": {SourceURI: "https://example.com/m", Filename: "/media/music.mp3", MimeType: "audio/mpeg"},
		},
	}
	env := newTestEnv(t, func(o *Options) { o.Downloader = dl })
	path := env.createProject(t, "p")

	id := env.submit(t, DownloadMedia{Target: Target{Path: path}, URI: "https://example.com/list"})
	done := env.rec.final(t, id).(*DownloadCompleted)
	if !done.Succeeded() || done.Files != 2 {
		t.Fatalf("download = %+v", done)
	}

	env.rec.waitFor(t, func(ev Event) bool {
		a, ok := ev.(*MediaItemAdded)
		return ok && a.Succeeded() && a.Item.Filename == "/media/a.mp4"
	})
	env.rec.waitFor(t, func(ev Event) bool {
		a, ok := ev.(*AudioTrackAdded)
		return ok && a.Succeeded()
	})

	progress := 0
	for _, ev := range env.rec.all() {
		if p, ok := ev.(*DownloadProgress); ok && p.RequestID == id {
			progress++
			if p.Total != 2 {
				t.Errorf("total = %d", p.Total)
			}
		}
	}
	if progress != 2 {
		t.Errorf("progress events = %d, expected 2", progress)
	}
	env.view(t, func(p *project.Project) {
		if len(p.Downloads()) != 2 || p.MediaItemCount() != 1 || len(p.AudioTracks()) != 1 {
			t.Errorf("project: %d downloads, %d items, %d tracks", len(p.Downloads()), p.MediaItemCount(), len(p.AudioTracks()))
		}
	})

	env.mustRun(t, RemoveDownload{Target: Target{Path: path}, Filename: "/media/music.mp3"})
	env.view(t, func(p *project.Project) {
		if len(p.Downloads()) != 1 {
			t.Errorf("downloads after remove = %v", p.Downloads())
		}
	})
}

func TestDownloadMedia_PartialFailure(t *testing.T) {
	dl := &fakeDownloader{
		entries: map[string][]string{"list": {"ok", "missing"}},
		files:   map[string]download.Result{"ok": {SourceURI: "ok", Filename: "/media/b.mp4", MimeType: "video/mp4"}},
	}
	env := newTestEnv(t, func(o *Options) { o.Downloader = dl })
	path := env.createProject(t, "p")

	done := env.run(t, DownloadMedia{Target: Target{Path: path}, URI: "list"}).(*DownloadCompleted)
	if done.Error == nil || done.Files != 1 {
		t.Errorf("download = %+v, expected one file and an error", done)
	}
}

func TestDownloadMedia_NoDownloader(t *testing.T) {
	env := newTestEnv(t, nil)
	path := env.createProject(t, "p")
	if ev := env.run(t, DownloadMedia{Target: Target{Path: path}, URI: "x"}); ev.outcome().Error == nil {
		t.Error("download without downloader succeeded")
	}
}
