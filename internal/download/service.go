package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
	"github.com/wailsapp/mimetype"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/platform"
)

// Defaults
const (
	DefaultMaxRetries      = 1
	DefaultRetryDelay      = 2 * time.Second
	DefaultPlaylistTimeout = 60 * time.Second
	ProgressInterval       = 500 * time.Millisecond
	OutputTemplate         = "%(title)s.%(ext)s"
	JobIDPrefix            = "download-"
)

// ErrUnsupportedMedia is returned for files that are neither video, image nor audio
var ErrUnsupportedMedia = errors.New("unsupported media type")

// Result describes one fetched file
type Result struct {
	SourceURI string
	Filename  string
	MimeType  string
	Title     string
}

// Kind classifies the fetched file by its MIME type
func (r *Result) Kind() (model.MediaKind, bool, error) {
	return Classify(r.MimeType)
}

// Classify maps a MIME type to a timeline media kind. audio is true for
// files that belong on an audio track instead.
func Classify(mimeType string) (kind model.MediaKind, audio bool, err error) {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return model.MediaKindVideo, false, nil
	case strings.HasPrefix(mimeType, "image/"):
		return model.MediaKindImage, false, nil
	case strings.HasPrefix(mimeType, "audio/"):
		return "", true, nil
	}
	return "", false, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
}

// Service handles download operations
type Service struct {
	jobs            map[string]*model.Job
	jobsMutex       sync.RWMutex
	maxRetries      int
	retryDelay      time.Duration
	playlistTimeout time.Duration
	onUpdate        func(*model.Job) // callback for progress reporting
}

// NewService creates a new download service
func NewService() *Service {
	return &Service{
		jobs:            make(map[string]*model.Job),
		maxRetries:      DefaultMaxRetries,
		retryDelay:      DefaultRetryDelay,
		playlistTimeout: DefaultPlaylistTimeout,
	}
}

// SetUpdateCallback sets the callback function for job updates
func (s *Service) SetUpdateCallback(callback func(*model.Job)) {
	s.onUpdate = callback
}

// GetJob returns a download job by ID
func (s *Service) GetJob(id string) (*model.Job, bool) {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()
	job, exists := s.jobs[id]
	return job, exists
}

// Fetch stores the media behind uri in destDir
func (s *Service) Fetch(ctx context.Context, uri, destDir string) (*Result, error) {
	if err := platform.CreateDirectoryIfNotExists(destDir); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	job := &model.Job{
		ID:        generateJobID(),
		Kind:      model.JobDownload,
		Source:    uri,
		State:     model.CommandRunning,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
	s.jobsMutex.Lock()
	s.jobs[job.ID] = job
	s.jobsMutex.Unlock()
	s.notifyUpdate(job)

	var outputPath string
	var err error
	if local, ok := platform.LocalPath(uri); ok {
		outputPath, err = s.copyLocal(local, destDir)
	} else {
		outputPath, err = s.fetchRemote(ctx, uri, destDir, job)
	}

	var result *Result
	if err == nil {
		result, err = describe(uri, outputPath)
	}

	s.jobsMutex.Lock()
	switch {
	case err != nil && ctx.Err() != nil:
		job.State = model.CommandCancelled
		err = ctx.Err()
	case err != nil:
		job.State = model.CommandFailed
		job.LastError = err.Error()
	default:
		job.State = model.CommandSucceeded
		job.Percent = 100
		job.OutputPath = outputPath
		if job.Title != "" {
			result.Title = job.Title
		}
	}
	job.FinishedAt = time.Now()
	s.jobsMutex.Unlock()
	s.notifyUpdate(job)

	return result, err
}

func (s *Service) copyLocal(src, destDir string) (string, error) {
	dest, err := platform.UniqueFilename(destDir, filepath.Base(src))
	if err != nil {
		return "", err
	}
	if err := platform.CopyFile(src, dest); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return dest, nil
}

func (s *Service) fetchRemote(ctx context.Context, uri, destDir string, job *model.Job) (string, error) {
	dl := ytdlp.New().
		NoPlaylist().
		ForceOverwrites().
		RestrictFilenames().
		Output(filepath.Join(destDir, OutputTemplate))

	dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
		s.updateJobProgress(job, &update)
	})

	result, err := s.downloadWithRetry(ctx, dl, job)
	if err != nil {
		return "", err
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return "", fmt.Errorf("failed to read download info: %w", err)
	}
	if len(info) == 0 || info[0].Filename == nil {
		return "", fmt.Errorf("yt-dlp reported no file for %s", uri)
	}
	return *info[0].Filename, nil
}

// downloadWithRetry attempts download with retry logic
func (s *Service) downloadWithRetry(ctx context.Context, dl *ytdlp.Command, job *model.Job) (*ytdlp.Result, error) {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			log.Printf("Retrying download for job %s, attempt %d", job.ID, attempt+1)
		}

		res, err := dl.Run(ctx, job.Source)
		if err == nil {
			return res, nil
		}

		lastErr = err
		log.Printf("Download attempt %d failed for job %s: %v", attempt+1, job.ID, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// updateJobProgress updates job progress from yt-dlp info
func (s *Service) updateJobProgress(job *model.Job, update *ytdlp.ProgressUpdate) {
	s.jobsMutex.Lock()
	if update.TotalBytes > 0 {
		job.Percent = int(float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100)
	}
	if eta := update.ETA(); eta > 0 {
		job.ETASec = int(eta.Seconds())
	}
	if update.Info != nil && update.Info.Title != nil && *update.Info.Title != "" && job.Title == "" {
		job.Title = *update.Info.Title
	}
	s.jobsMutex.Unlock()

	s.notifyUpdate(job)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(job *model.Job) {
	if s.onUpdate != nil {
		s.onUpdate(job)
	}
}

func describe(uri, path string) (*Result, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect media type of %s: %w", path, err)
	}
	return &Result{
		SourceURI: uri,
		Filename:  path,
		MimeType:  mt.String(),
		Title:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}, nil
}

// generateJobID generates a unique job ID using UUID v7 for time ordering
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(JobIDPrefix+"%d", time.Now().UnixNano())
	}
	return JobIDPrefix + id.String()
}
