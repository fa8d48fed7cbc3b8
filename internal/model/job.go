package model

import (
	"fmt"
	"strings"
	"time"
)

// JobKind tells long-running helpers apart
type JobKind string

const (
	JobExport   JobKind = "export"
	JobDownload JobKind = "download"
)

// Job tracks a long-running helper (movie export or media download) that
// outlives the worker call that started it.
type Job struct {
	ID         string
	Kind       JobKind
	Source     string // URI for downloads, project path for exports
	OutputPath string
	State      CommandState
	Percent    int    // 0 to 100
	ETASec     int    // ETA in seconds, -1 if unknown
	LastError  string // last error message if any
	StartedAt  time.Time
	FinishedAt time.Time
	Title      string
}

// ETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (j *Job) ETAString() string {
	if j.ETASec <= 0 {
		return "—"
	}

	hours := j.ETASec / 3600
	minutes := (j.ETASec % 3600) / 60
	seconds := j.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// DisplayTitle returns title, output filename, or source in order of preference
func (j *Job) DisplayTitle() string {
	if j.Title != "" && !strings.HasPrefix(j.Title, "http") {
		return j.Title
	}

	if j.OutputPath != "" {
		parts := strings.FieldsFunc(j.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return j.Source
}

// Elapsed returns how long the job ran, or has been running so far
func (j *Job) Elapsed() time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	if j.FinishedAt.IsZero() {
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
