// Package waveform extracts display gains from PCM WAV audio.
package waveform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ytget/movie-editor/internal/model"
)

const (
	DefaultFrameDuration = 30 * time.Millisecond
	DefaultMinDB         = -60.0
	DefaultMaxDB         = 0.0

	pcmFormat = 1
	chunkSize = 8192
	silence   = 0.000001 // about -120dB
)

// Options tune the gain computation
type Options struct {
	FrameDuration time.Duration // audio covered by one gain
	MinDB         float64
	MaxDB         float64
}

func (o Options) withDefaults() Options {
	if o.FrameDuration <= 0 {
		o.FrameDuration = DefaultFrameDuration
	}
	if o.MinDB == 0 && o.MaxDB == 0 {
		o.MinDB, o.MaxDB = DefaultMinDB, DefaultMaxDB
	}
	return o
}

// Extract reads the WAV file at path and returns one gain per frame, scaled
// logarithmically into [0, 1]. progress, when set, receives percentages.
func Extract(ctx context.Context, path string, opts Options, progress func(percent int)) (*model.Waveform, error) {
	opts = opts.withDefaults()
	if opts.MinDB >= opts.MaxDB {
		return nil, fmt.Errorf("invalid dB range [%v, %v]", opts.MinDB, opts.MaxDB)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file %q: %w", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%q is not a valid WAV file", path)
	}
	if decoder.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("unsupported WAV format %d: only PCM is supported", decoder.WavAudioFormat)
	}
	depth := int(decoder.BitDepth)
	if depth != 8 && depth != 16 && depth != 24 && depth != 32 {
		return nil, fmt.Errorf("unsupported WAV bit depth %d", depth)
	}

	format := decoder.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, fmt.Errorf("could not read audio format of %q", path)
	}
	channels := format.NumChannels

	var totalFrames int
	if d, err := decoder.Duration(); err != nil {
		log.Printf("Could not read duration of %s: %v", path, err)
	} else {
		totalFrames = int(d.Seconds() * float64(format.SampleRate))
	}

	samplesPerGain := int(opts.FrameDuration.Seconds() * float64(format.SampleRate))
	if samplesPerGain < 1 {
		samplesPerGain = 1
	}
	fullScale := float64(int64(1)<<(depth-1) - 1)

	size := chunkSize
	if size%channels != 0 {
		size = (size/channels + 1) * channels
	}
	buf := &audio.IntBuffer{Format: format, Data: make([]int, size)}

	wf := &model.Waveform{FrameDuration: opts.FrameDuration}
	var blockPeak, inBlock, framesDone, lastPercent int

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := decoder.PCMBuffer(buf)
		if errors.Is(err, io.EOF) || n == 0 {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading PCM chunk: %w", err)
		}

		frames := n / channels
		for i := 0; i < frames; i++ {
			for ch := 0; ch < channels; ch++ {
				v := buf.Data[i*channels+ch]
				if depth == 8 {
					// 8-bit WAV is unsigned
					v -= 128
				}
				if v < 0 {
					v = -v
				}
				if v > blockPeak {
					blockPeak = v
				}
			}
			inBlock++
			if inBlock >= samplesPerGain {
				wf.Gains = append(wf.Gains, scale(float64(blockPeak)/fullScale, opts))
				blockPeak, inBlock = 0, 0
			}
		}

		framesDone += frames
		if progress != nil && totalFrames > 0 {
			if p := min(framesDone*100/totalFrames, 99); p > lastPercent {
				lastPercent = p
				progress(p)
			}
		}
	}
	if inBlock > 0 {
		wf.Gains = append(wf.Gains, scale(float64(blockPeak)/fullScale, opts))
	}
	if progress != nil {
		progress(100)
	}
	return wf, nil
}

// scale maps a linear peak to a [0, 1] display height on a dB scale
func scale(linear float64, opts Options) float64 {
	db := opts.MinDB
	if linear >= silence {
		db = 20 * math.Log10(linear)
	}
	db = math.Max(opts.MinDB, math.Min(opts.MaxDB, db))
	return (db - opts.MinDB) / (opts.MaxDB - opts.MinDB)
}
