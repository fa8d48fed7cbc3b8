package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/movie-editor/internal/model"
)

// FFmpeg constants for export settings
const (
	// Video codec settings
	VideoCodec  = "libx264"
	VideoPreset = "medium"
	PixelFormat = "yuv420p"

	// Audio codec settings
	AudioCodec   = "aac"
	AudioBitrate = "128k"

	// Container flags
	FastStartFlag = "+faststart"

	// Defaults
	DefaultHeight  = 720
	DefaultBitrate = 5000 // kbit/s

	// Executable and I/O constants
	FFmpegCommand      = "ffmpeg"
	FFprobeCommand     = "ffprobe"
	ConcatHeader       = "ffconcat version 1.0"
	ConcatListName     = "export.ffconcat"
	ProgressPipeTarget = "pipe:2"
	ProgressTimePrefix = "out_time_us="
	JobIDPrefix        = "export-"
)

// Clip is one timeline segment. Stills are shown for End-Begin.
type Clip struct {
	Filename string
	Begin    time.Duration
	End      time.Duration
	Still    bool
}

// Track is the background audio mixed under the clips
type Track struct {
	Filename string
	Begin    time.Duration
	End      time.Duration
	Volume   int // percent
	Loop     bool
}

// Request describes one export
type Request struct {
	Clips      []Clip
	Audio      *Track
	OutputPath string
	Height     int
	Bitrate    int // kbit/s
	Title      string
}

// Duration returns the rendered movie length
func (r Request) Duration() time.Duration {
	var total time.Duration
	for _, c := range r.Clips {
		if c.End > c.Begin {
			total += c.End - c.Begin
		}
	}
	return total
}

// Service handles movie export operations
type Service struct {
	ffmpeg    string
	ffprobe   string
	jobs      map[string]*model.Job
	jobsMutex sync.RWMutex
	onUpdate  func(*model.Job) // callback for progress reporting
}

// NewService creates a new export service
func NewService() *Service {
	return &Service{
		ffmpeg:  FFmpegCommand,
		ffprobe: FFprobeCommand,
		jobs:    make(map[string]*model.Job),
	}
}

// SetUpdateCallback sets the callback function for job updates
func (s *Service) SetUpdateCallback(callback func(*model.Job)) {
	s.onUpdate = callback
}

// GetJob returns an export job by ID
func (s *Service) GetJob(jobID string) (*model.Job, bool) {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()
	job, exists := s.jobs[jobID]
	return job, exists
}

// Export renders req and blocks until ffmpeg exits. On cancellation the partial
// output is removed and ctx.Err() is returned.
func (s *Service) Export(ctx context.Context, req Request, progress func(percent int)) error {
	if len(req.Clips) == 0 {
		return errors.New("nothing to export: timeline is empty")
	}
	if req.OutputPath == "" {
		return errors.New("export output path is empty")
	}
	if req.Height <= 0 {
		req.Height = DefaultHeight
	}
	if req.Bitrate <= 0 {
		req.Bitrate = DefaultBitrate
	}

	job := &model.Job{
		ID:         generateJobID(),
		Kind:       model.JobExport,
		OutputPath: req.OutputPath,
		Title:      req.Title,
		State:      model.CommandRunning,
		ETASec:     -1,
		StartedAt:  time.Now(),
	}
	s.jobsMutex.Lock()
	s.jobs[job.ID] = job
	s.jobsMutex.Unlock()
	s.notifyUpdate(job)

	err := s.run(ctx, req, job, progress)

	s.jobsMutex.Lock()
	switch {
	case ctx.Err() != nil:
		job.State = model.CommandCancelled
		err = ctx.Err()
	case err != nil:
		job.State = model.CommandFailed
		job.LastError = err.Error()
	default:
		job.State = model.CommandSucceeded
		job.Percent = 100
	}
	job.FinishedAt = time.Now()
	s.jobsMutex.Unlock()
	s.notifyUpdate(job)

	if err != nil {
		// Remove partial output file
		os.Remove(req.OutputPath)
		return err
	}
	if progress != nil {
		progress(100)
	}
	return nil
}

func (s *Service) run(ctx context.Context, req Request, job *model.Job, progress func(int)) error {
	workDir, err := os.MkdirTemp("", "movie-export-")
	if err != nil {
		return fmt.Errorf("failed to create export work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	listPath := filepath.Join(workDir, ConcatListName)
	if err := WriteConcatList(listPath, req.Clips); err != nil {
		return err
	}

	args := s.BuildFFmpegArgs(listPath, req)
	cmd := exec.CommandContext(ctx, s.ffmpeg, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	s.monitorProgress(stderr, job, req.Duration(), progress)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg export failed: %w", err)
	}
	return nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func (s *Service) BuildFFmpegArgs(listPath string, req Request) []string {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	}
	if req.Audio != nil {
		if req.Audio.Loop {
			args = append(args, "-stream_loop", "-1")
		}
		args = append(args,
			"-ss", formatSeconds(req.Audio.Begin),
			"-to", formatSeconds(req.Audio.End),
			"-i", req.Audio.Filename,
		)
	}

	args = append(args,
		"-vf", fmt.Sprintf("scale=-2:%d,format=%s", req.Height, PixelFormat),
		"-c:v", VideoCodec,
		"-preset", VideoPreset,
		"-b:v", fmt.Sprintf("%dk", req.Bitrate),
	)
	if req.Audio != nil {
		args = append(args,
			"-filter_complex", fmt.Sprintf("[1:a]volume=%.2f[bg];[0:a][bg]amix=inputs=2:duration=first[aout]", float64(req.Audio.Volume)/100),
			"-map", "0:v",
			"-map", "[aout]",
		)
	}
	args = append(args,
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-t", formatSeconds(req.Duration()),
		"-movflags", FastStartFlag,
		"-progress", ProgressPipeTarget,
		"-nostats",
		req.OutputPath,
	)
	return args
}

// WriteConcatList writes the ffconcat description of clips to path
func WriteConcatList(path string, clips []Clip) error {
	var b strings.Builder
	b.WriteString(ConcatHeader + "\n")
	for _, c := range clips {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(c.Filename))
		if c.Still {
			fmt.Fprintf(&b, "duration %s\n", formatSeconds(c.End-c.Begin))
			continue
		}
		if c.Begin > 0 {
			fmt.Fprintf(&b, "inpoint %s\n", formatSeconds(c.Begin))
		}
		fmt.Fprintf(&b, "outpoint %s\n", formatSeconds(c.End))
	}
	// The concat demuxer ignores the duration of a trailing still.
	if n := len(clips); n > 0 && clips[n-1].Still {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(clips[n-1].Filename))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	return nil
}

// monitorProgress reads ffmpeg progress output until the pipe closes
func (s *Service) monitorProgress(stderr io.Reader, job *model.Job, total time.Duration, progress func(int)) {
	scanner := bufio.NewScanner(stderr)
	last := -1

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ProgressTimePrefix) || total <= 0 {
			continue
		}

		us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
		if err != nil {
			continue
		}
		ratio := float64(us) / float64(total.Microseconds())
		if ratio > 1.0 {
			ratio = 1.0
		}
		percent := int(ratio * 100)
		if percent == last {
			continue
		}
		last = percent

		s.jobsMutex.Lock()
		job.Percent = percent
		if elapsed := time.Since(job.StartedAt); ratio > 0 {
			job.ETASec = int((elapsed.Seconds() / ratio) - elapsed.Seconds())
		}
		s.jobsMutex.Unlock()

		s.notifyUpdate(job)
		if progress != nil {
			progress(percent)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Export progress stream closed: %v", err)
	}
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(job *model.Job) {
	if s.onUpdate != nil {
		s.onUpdate(job)
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func escapeConcatPath(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}

// generateJobID generates a unique job ID using UUID v7 for time ordering
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(JobIDPrefix+"%d", time.Now().UnixNano())
	}
	return JobIDPrefix + id.String()
}
