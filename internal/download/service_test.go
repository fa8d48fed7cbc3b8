package download

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ytget/movie-editor/internal/model"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestNewService(t *testing.T) {
	service := NewService()

	if len(service.jobs) != 0 {
		t.Errorf("Expected empty jobs map, got %d items", len(service.jobs))
	}
	if service.maxRetries != DefaultMaxRetries {
		t.Errorf("maxRetries = %d, expected %d", service.maxRetries, DefaultMaxRetries)
	}
}

func TestFetch_LocalFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, src)
	dest := filepath.Join(t.TempDir(), "project")

	service := NewService()
	var states []model.CommandState
	service.SetUpdateCallback(func(job *model.Job) { states = append(states, job.State) })

	res, err := service.Fetch(context.Background(), src, dest)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if filepath.Dir(res.Filename) != dest {
		t.Errorf("Filename = %s, expected inside %s", res.Filename, dest)
	}
	if res.MimeType != "image/png" {
		t.Errorf("MimeType = %s, expected image/png", res.MimeType)
	}
	if res.Title != "photo" {
		t.Errorf("Title = %s, expected photo", res.Title)
	}
	kind, audio, err := res.Kind()
	if err != nil || audio || kind != model.MediaKindImage {
		t.Errorf("Kind() = %s, %v, %v", kind, audio, err)
	}
	if len(states) != 2 || states[1] != model.CommandSucceeded {
		t.Errorf("job states = %v", states)
	}

	// A second fetch of the same file must not overwrite the first copy
	again, err := service.Fetch(context.Background(), "file://"+src, dest)
	if err != nil {
		t.Fatal(err)
	}
	if again.Filename == res.Filename {
		t.Error("second fetch overwrote the first copy")
	}
}

func TestFetch_MissingLocalFile(t *testing.T) {
	service := NewService()
	_, err := service.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"), t.TempDir())
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	for _, job := range service.jobs {
		if job.State != model.CommandFailed || job.LastError == "" {
			t.Errorf("job = %+v, expected failed with error", job)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mime  string
		kind  model.MediaKind
		audio bool
		err   bool
	}{
		{"video/mp4", model.MediaKindVideo, false, false},
		{"image/jpeg", model.MediaKindImage, false, false},
		{"audio/mpeg", "", true, false},
		{"text/plain; charset=utf-8", "", false, true},
	}

	for _, test := range tests {
		kind, audio, err := Classify(test.mime)
		if kind != test.kind || audio != test.audio || (err != nil) != test.err {
			t.Errorf("Classify(%s) = %s, %v, %v", test.mime, kind, audio, err)
		}
		if test.err && !errors.Is(err, ErrUnsupportedMedia) {
			t.Errorf("Classify(%s) error %v is not ErrUnsupportedMedia", test.mime, err)
		}
	}
}

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.youtube.com/playlist?list=PL123", "PL123"},
		{"https://www.youtube.com/watch?v=abc&list=PL456&index=2", "PL456"},
		{"https://www.youtube.com/watch?v=abc", ""},
		{"/local/clip.mp4", ""},
	}

	for _, test := range tests {
		if got := extractPlaylistID(test.url); got != test.expected {
			t.Errorf("extractPlaylistID(%s) = %q, expected %q", test.url, got, test.expected)
		}
	}
}

func TestExpand_SingleURI(t *testing.T) {
	service := NewService()
	uris, err := service.Expand(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(uris) != 1 || uris[0] != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("Expand() = %v", uris)
	}
}
