package waveform

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const testRate = 8000

// writeWAV writes a mono 16-bit file: a second of silence followed by a second at full scale.
func writeWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	data := make([]int, 2*testRate)
	for i := testRate; i < len(data); i++ {
		if i%2 == 0 {
			data[i] = 32767
		} else {
			data[i] = -32767
		}
	}

	enc := wav.NewEncoder(f, testRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: testRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_Gains(t *testing.T) {
	path := writeWAV(t)

	var percents []int
	wf, err := Extract(context.Background(), path, Options{FrameDuration: 100 * time.Millisecond}, func(p int) {
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(wf.Gains) != 20 {
		t.Fatalf("len(Gains) = %d, expected 20", len(wf.Gains))
	}
	if wf.Duration() != 2*time.Second {
		t.Errorf("Duration() = %v, expected 2s", wf.Duration())
	}
	if wf.Gains[0] != 0 {
		t.Errorf("silent gain = %v, expected 0", wf.Gains[0])
	}
	if math.Abs(wf.Gains[19]-1) > 1e-9 {
		t.Errorf("full scale gain = %v, expected 1", wf.Gains[19])
	}
	if len(percents) == 0 || percents[len(percents)-1] != 100 {
		t.Errorf("progress = %v, expected to end at 100", percents)
	}
}

func TestExtract_Cancelled(t *testing.T) {
	path := writeWAV(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Extract(ctx, path, Options{}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestExtract_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(context.Background(), path, Options{}, nil); err == nil {
		t.Error("Expected error for non-WAV input")
	}
	if _, err := Extract(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), Options{}, nil); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestScale(t *testing.T) {
	opts := Options{}.withDefaults()
	tests := []struct {
		linear   float64
		expected float64
	}{
		{0, 0},
		{1, 1},
		{0.001, 0}, // -60dB
		{math.Pow(10, -30.0/20), 0.5},
	}
	for _, test := range tests {
		if got := scale(test.linear, opts); math.Abs(got-test.expected) > 1e-9 {
			t.Errorf("scale(%v) = %v, expected %v", test.linear, got, test.expected)
		}
	}
}
