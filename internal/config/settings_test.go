package config

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestProjectsDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	dir := settings.GetProjectsDirectory()
	if dir == "" {
		t.Error("Projects directory should not be empty")
	}

	// Test setting custom value
	customDir := "/custom/projects"
	settings.SetProjectsDirectory(customDir)

	if got := settings.GetProjectsDirectory(); got != customDir {
		t.Errorf("Expected projects directory %s, got %s", customDir, got)
	}
}

func TestExportHeight(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetExportHeight(); got != DefaultExportHeight {
		t.Errorf("Expected default export height %d, got %d", DefaultExportHeight, got)
	}

	settings.SetExportHeight(1080)
	if got := settings.GetExportHeight(); got != 1080 {
		t.Errorf("Expected export height 1080, got %d", got)
	}

	settings.SetExportHeight(999) // Unsupported, falls back to default
	if got := settings.GetExportHeight(); got != DefaultExportHeight {
		t.Errorf("Unsupported height should fall back to %d, got %d", DefaultExportHeight, got)
	}

	if len(settings.GetExportHeightOptions()) != 3 {
		t.Error("Expected three export height options")
	}
}

func TestExportBitrate(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetExportBitrate(); got != DefaultExportBitrate {
		t.Errorf("Expected default bitrate %d, got %d", DefaultExportBitrate, got)
	}

	// Test boundary values
	settings.SetExportBitrate(10)
	if got := settings.GetExportBitrate(); got != MinExportBitrate {
		t.Errorf("Bitrate should be clamped to %d, got %d", MinExportBitrate, got)
	}
	settings.SetExportBitrate(1 << 20)
	if got := settings.GetExportBitrate(); got != MaxExportBitrate {
		t.Errorf("Bitrate should be clamped to %d, got %d", MaxExportBitrate, got)
	}
}

func TestIdleGrace(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetIdleGrace(); got != DefaultIdleGraceSeconds*time.Second {
		t.Errorf("Expected default idle grace %ds, got %v", DefaultIdleGraceSeconds, got)
	}

	settings.SetIdleGraceSeconds(12)
	if got := settings.GetIdleGrace(); got != 12*time.Second {
		t.Errorf("Expected idle grace 12s, got %v", got)
	}

	settings.SetIdleGraceSeconds(0) // Should be clamped to 1
	if got := settings.GetIdleGrace(); got != time.Second {
		t.Errorf("Idle grace should be clamped to 1s, got %v", got)
	}
}

func TestWaveformFrame(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetWaveformFrame(); got != DefaultWaveformFrameMs*time.Millisecond {
		t.Errorf("Expected default waveform frame, got %v", got)
	}

	settings.SetWaveformFrameMs(5000)
	if got := settings.GetWaveformFrame(); got != MaxWaveformFrameMs*time.Millisecond {
		t.Errorf("Waveform frame should be clamped, got %v", got)
	}
}

func TestThumbnailDedupAndTheme(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if !settings.GetThumbnailDedup() {
		t.Error("Thumbnail dedup should default to true")
	}
	settings.SetThumbnailDedup(false)
	if settings.GetThumbnailDedup() {
		t.Error("Thumbnail dedup should be false after SetThumbnailDedup(false)")
	}

	if got := settings.GetDefaultTheme(); got != DefaultTheme {
		t.Errorf("Expected empty default theme, got %q", got)
	}
	settings.SetDefaultTheme("travel")
	if got := settings.GetDefaultTheme(); got != "travel" {
		t.Errorf("Expected theme travel, got %q", got)
	}
}
