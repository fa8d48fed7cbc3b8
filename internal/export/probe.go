package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// WaveformSampleRate is the rate audio is resampled to for waveform extraction
const WaveformSampleRate = "16000"

// MediaInfo holds the stream properties the editor needs from a source file
type MediaInfo struct {
	Duration time.Duration
	Width    int
	Height   int
	HasVideo bool
	HasAudio bool
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads duration and frame size of filename using ffprobe
func (s *Service) Probe(ctx context.Context, filename string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx, s.ffprobe,
		"-v", "error",
		"-show_entries", "stream=codec_type,width,height:format=duration",
		"-of", "json",
		filename,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (*MediaInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{}
	if out.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}
	for _, st := range out.Streams {
		switch st.CodecType {
		case "video":
			if !info.HasVideo {
				info.Width, info.Height = st.Width, st.Height
			}
			info.HasVideo = true
		case "audio":
			info.HasAudio = true
		}
	}
	return info, nil
}

// DecodeAudio writes the first audio stream of src to dst as mono 16-bit PCM WAV
func (s *Service) DecodeAudio(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, s.ffmpeg,
		"-y",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", WaveformSampleRate,
		"-c:a", "pcm_s16le",
		"-f", "wav",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to decode audio of %s: %w: %s", src, err, lastLine(out))
	}
	return nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return lines[len(lines)-1]
}
