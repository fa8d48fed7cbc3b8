package config

import (
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"github.com/ytget/movie-editor/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyProjectsDir      = "projects_directory"
	KeyExportHeight     = "export_height"
	KeyExportBitrate    = "export_bitrate_kbps"
	KeyIdleGraceSeconds = "idle_grace_seconds"
	KeyWaveformFrameMs  = "waveform_frame_ms"
	KeyThumbnailDedup   = "thumbnail_dedup"
	KeyDefaultTheme     = "default_theme"
)

// Default values
const (
	DefaultExportHeight     = 720
	DefaultExportBitrate    = 5000
	DefaultIdleGraceSeconds = 5
	DefaultWaveformFrameMs  = 30
	DefaultThumbnailDedup   = true
	DefaultTheme            = ""
)

// Limits
const (
	MinExportBitrate    = 500
	MaxExportBitrate    = 50000
	MinIdleGraceSeconds = 1
	MaxIdleGraceSeconds = 300
	MinWaveformFrameMs  = 10
	MaxWaveformFrameMs  = 1000
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetProjectsDirectory returns the folder holding one subfolder per project
func (s *Settings) GetProjectsDirectory() string {
	dir := s.app.Preferences().String(KeyProjectsDir)
	if dir == "" {
		defaultDir, err := platform.GetDefaultProjectsDir()
		if err != nil {
			defaultDir = filepath.Join("/tmp", platform.ProjectsDirName)
		}
		s.SetProjectsDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetProjectsDirectory sets the projects folder
func (s *Settings) SetProjectsDirectory(dir string) {
	s.app.Preferences().SetString(KeyProjectsDir, dir)
}

// GetExportHeight returns the movie frame height used for exports
func (s *Settings) GetExportHeight() int {
	value := s.app.Preferences().Int(KeyExportHeight)
	if !isSupportedHeight(value) {
		s.SetExportHeight(DefaultExportHeight)
		return DefaultExportHeight
	}
	return value
}

// SetExportHeight sets the export height; unsupported values fall back to the default
func (s *Settings) SetExportHeight(height int) {
	if !isSupportedHeight(height) {
		height = DefaultExportHeight
	}
	s.app.Preferences().SetInt(KeyExportHeight, height)
}

// GetExportHeightOptions returns the supported export heights
func (s *Settings) GetExportHeightOptions() []int {
	return []int{480, 720, 1080}
}

// GetExportBitrate returns the video bitrate in kbit/s
func (s *Settings) GetExportBitrate() int {
	value := s.app.Preferences().Int(KeyExportBitrate)
	if value <= 0 {
		s.SetExportBitrate(DefaultExportBitrate)
		return DefaultExportBitrate
	}
	return value
}

// SetExportBitrate sets the video bitrate in kbit/s
func (s *Settings) SetExportBitrate(kbps int) {
	s.app.Preferences().SetInt(KeyExportBitrate, clamp(kbps, MinExportBitrate, MaxExportBitrate))
}

// GetIdleGrace returns how long the processor waits idle before shutting down
func (s *Settings) GetIdleGrace() time.Duration {
	value := s.app.Preferences().Int(KeyIdleGraceSeconds)
	if value <= 0 {
		s.SetIdleGraceSeconds(DefaultIdleGraceSeconds)
		value = DefaultIdleGraceSeconds
	}
	return time.Duration(value) * time.Second
}

// SetIdleGraceSeconds sets the idle grace period
func (s *Settings) SetIdleGraceSeconds(seconds int) {
	s.app.Preferences().SetInt(KeyIdleGraceSeconds, clamp(seconds, MinIdleGraceSeconds, MaxIdleGraceSeconds))
}

// GetWaveformFrame returns the audio length covered by one waveform gain
func (s *Settings) GetWaveformFrame() time.Duration {
	value := s.app.Preferences().Int(KeyWaveformFrameMs)
	if value <= 0 {
		s.SetWaveformFrameMs(DefaultWaveformFrameMs)
		value = DefaultWaveformFrameMs
	}
	return time.Duration(value) * time.Millisecond
}

// SetWaveformFrameMs sets the waveform resolution
func (s *Settings) SetWaveformFrameMs(ms int) {
	s.app.Preferences().SetInt(KeyWaveformFrameMs, clamp(ms, MinWaveformFrameMs, MaxWaveformFrameMs))
}

// GetThumbnailDedup returns whether superseded thumbnail requests are dropped
func (s *Settings) GetThumbnailDedup() bool {
	return s.app.Preferences().BoolWithFallback(KeyThumbnailDedup, DefaultThumbnailDedup)
}

// SetThumbnailDedup sets whether superseded thumbnail requests are dropped
func (s *Settings) SetThumbnailDedup(enabled bool) {
	s.app.Preferences().SetBool(KeyThumbnailDedup, enabled)
}

// GetDefaultTheme returns the theme applied to new projects
func (s *Settings) GetDefaultTheme() string {
	return s.app.Preferences().StringWithFallback(KeyDefaultTheme, DefaultTheme)
}

// SetDefaultTheme sets the theme applied to new projects
func (s *Settings) SetDefaultTheme(theme string) {
	s.app.Preferences().SetString(KeyDefaultTheme, theme)
}

func isSupportedHeight(h int) bool {
	return h == 480 || h == 720 || h == 1080
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
