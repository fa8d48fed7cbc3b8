package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ytget/movie-editor/internal/model"
)

// fakeFFmpeg installs a shell script standing in for ffmpeg. The script gets
// the output path as its last argument.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleRequest(t *testing.T) Request {
	return Request{
		Clips: []Clip{
			{Filename: "/media/a.mp4", Begin: time.Second, End: 3 * time.Second},
			{Filename: "/media/b.jpg", End: 2 * time.Second, Still: true},
		},
		OutputPath: filepath.Join(t.TempDir(), "movie.mp4"),
		Height:     480,
		Bitrate:    2000,
	}
}

func TestNewService(t *testing.T) {
	service := NewService()

	if len(service.jobs) != 0 {
		t.Errorf("Expected empty jobs map, got %d items", len(service.jobs))
	}
	if service.ffmpeg != FFmpegCommand {
		t.Errorf("ffmpeg = %q, expected %q", service.ffmpeg, FFmpegCommand)
	}
}

func TestRequest_Duration(t *testing.T) {
	req := Request{Clips: []Clip{
		{Begin: time.Second, End: 3 * time.Second},
		{End: 2 * time.Second, Still: true},
		{Begin: 5 * time.Second, End: 4 * time.Second},
	}}
	if got := req.Duration(); got != 4*time.Second {
		t.Errorf("Duration() = %v, expected 4s", got)
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	service := NewService()
	req := Request{
		Clips:      []Clip{{Filename: "/a.mp4", End: 2 * time.Second}},
		OutputPath: "/out.mp4",
		Height:     720,
		Bitrate:    5000,
	}
	args := service.BuildFFmpegArgs("/list.ffconcat", req)

	expectedArgs := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", "/list.ffconcat",
		"-vf", "scale=-2:720,format=yuv420p",
		"-c:v", VideoCodec,
		"-preset", VideoPreset,
		"-b:v", "5000k",
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-t", "2.000",
		"-movflags", FastStartFlag,
		"-progress", "pipe:2",
		"-nostats",
		"/out.mp4",
	}

	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d: %v", len(expectedArgs), len(args), args)
	}
	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

func TestBuildFFmpegArgs_WithLoopedAudio(t *testing.T) {
	service := NewService()
	req := Request{
		Clips:      []Clip{{Filename: "/a.mp4", End: 2 * time.Second}},
		Audio:      &Track{Filename: "/music.mp3", End: 30 * time.Second, Volume: 50, Loop: true},
		OutputPath: "/out.mp4",
	}
	joined := strings.Join(service.BuildFFmpegArgs("/list", req), " ")

	for _, want := range []string{"-stream_loop -1", "-i /music.mp3", "volume=0.50", "-map [aout]"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestWriteConcatList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.ffconcat")
	clips := []Clip{
		{Filename: "/m/a.mp4", Begin: 1500 * time.Millisecond, End: 4 * time.Second},
		{Filename: "/m/it's.jpg", End: 2 * time.Second, Still: true},
	}
	if err := WriteConcatList(path, clips); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	expected := strings.Join([]string{
		ConcatHeader,
		"file '/m/a.mp4'",
		"inpoint 1.500",
		"outpoint 4.000",
		`file '/m/it'\''s.jpg'`,
		"duration 2.000",
		`file '/m/it'\''s.jpg'`,
		"",
	}, "\n")
	if string(data) != expected {
		t.Errorf("concat list =\n%s\nexpected\n%s", data, expected)
	}
}

func TestExport_EmptyTimeline(t *testing.T) {
	service := NewService()
	err := service.Export(context.Background(), Request{OutputPath: "/tmp/x.mp4"}, nil)
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("Expected empty timeline error, got %v", err)
	}
}

func TestExport_ReportsProgress(t *testing.T) {
	service := NewService()
	service.ffmpeg = fakeFFmpeg(t, `echo "out_time_us=2000000" >&2
echo movie > "$last"`)

	var mu sync.Mutex
	var updates []*model.Job
	service.SetUpdateCallback(func(job *model.Job) {
		mu.Lock()
		updates = append(updates, job)
		mu.Unlock()
	})

	var percents []int
	req := sampleRequest(t)
	if err := service.Export(context.Background(), req, func(p int) { percents = append(percents, p) }); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if len(percents) < 2 || percents[0] != 50 || percents[len(percents)-1] != 100 {
		t.Errorf("progress = %v, expected 50 then 100", percents)
	}
	if _, err := os.Stat(req.OutputPath); err != nil {
		t.Errorf("output missing: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	last := updates[len(updates)-1]
	if last.State != model.CommandSucceeded {
		t.Errorf("final job state = %s, expected %s", last.State, model.CommandSucceeded)
	}
	if job, ok := service.GetJob(last.ID); !ok || job.Percent != 100 {
		t.Errorf("GetJob(%s) = %+v, %v", last.ID, job, ok)
	}
}

func TestExport_FailureRemovesOutput(t *testing.T) {
	service := NewService()
	service.ffmpeg = fakeFFmpeg(t, `echo partial > "$last"
exit 1`)

	req := sampleRequest(t)
	if err := service.Export(context.Background(), req, nil); err == nil {
		t.Fatal("Expected ffmpeg failure")
	}
	if _, err := os.Stat(req.OutputPath); !os.IsNotExist(err) {
		t.Errorf("partial output left behind: %v", err)
	}
}

func TestExport_CancelRemovesOutput(t *testing.T) {
	service := NewService()
	service.ffmpeg = fakeFFmpeg(t, `echo partial > "$last"
exec sleep 10`)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	req := sampleRequest(t)
	start := time.Now()
	err := service.Export(ctx, req, nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Export did not stop promptly after cancellation")
	}
	if _, err := os.Stat(req.OutputPath); !os.IsNotExist(err) {
		t.Errorf("partial output left behind: %v", err)
	}
}

func TestParseProbeOutput(t *testing.T) {
	out := []byte(`{
		"streams": [
			{"codec_type": "video", "width": 1920, "height": 1080},
			{"codec_type": "audio"}
		],
		"format": {"duration": "12.500000"}
	}`)
	info, err := parseProbeOutput(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Duration != 12500*time.Millisecond {
		t.Errorf("Duration = %v", info.Duration)
	}
	if info.Width != 1920 || info.Height != 1080 || !info.HasVideo || !info.HasAudio {
		t.Errorf("info = %+v", info)
	}

	if _, err := parseProbeOutput([]byte("not json")); err == nil {
		t.Error("Expected parse error")
	}
}
