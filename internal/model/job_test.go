package model

import (
	"testing"
	"time"
)

func TestJob_ETAString(t *testing.T) {
	tests := []struct {
		etaSec   int
		expected string
	}{
		{-1, "—"},
		{0, "—"},
		{30, "00:30"},
		{90, "01:30"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{7323, "02:02:03"},
	}

	for _, test := range tests {
		job := &Job{ETASec: test.etaSec}
		result := job.ETAString()
		if result != test.expected {
			t.Errorf("ETAString() with ETASec=%d = %s, expected %s", test.etaSec, result, test.expected)
		}
	}
}

func TestJob_DisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		job      Job
		expected string
	}{
		{"title wins", Job{Title: "Holiday", Source: "https://example.com/v"}, "Holiday"},
		{"url-like title skipped", Job{Title: "https://example.com/v", OutputPath: "/p/clip.mp4"}, "clip"},
		{"windows separators", Job{OutputPath: `C:\movies\final.mp4`}, "final"},
		{"source fallback", Job{Source: "https://example.com/v"}, "https://example.com/v"},
		{"empty", Job{}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.job.DisplayTitle(); got != test.expected {
				t.Errorf("DisplayTitle() = %q, expected %q", got, test.expected)
			}
		})
	}
}

func TestJob_Elapsed(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	job := &Job{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}
	if got := job.Elapsed(); got != 90*time.Second {
		t.Errorf("Elapsed() = %v, expected 90s", got)
	}

	if got := (&Job{}).Elapsed(); got != 0 {
		t.Errorf("Elapsed() for unstarted job = %v, expected 0", got)
	}
}
