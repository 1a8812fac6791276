// Package metronome overlays a decaying click sinusoid onto an audio
// buffer at beat and downbeat sample indices, per spec.md §6. Grounded in
// original_source/src/metronome.cpp, translated into a small struct with
// pure functions in place of the original's member functions.
package metronome

import (
	"math"

	"github.com/a1bertle/music-bpm-detection/audio"
)

const (
	defaultClickVolume = 0.5
	defaultClickFreq   = 1000.0
	clickDuration      = 0.02 // 20 ms
	clickDecay         = 200.0
)

// Options configures the click overlay.
type Options struct {
	ClickVolume    float64
	ClickFreq      float64
	DownbeatFreq   float64
	AccentDownbeat bool
}

// DefaultOptions mirrors the original's default click volume and
// frequency.
func DefaultOptions() Options {
	return Options{ClickVolume: defaultClickVolume, ClickFreq: defaultClickFreq}
}

// Overlay adds a short decaying sinusoid at each beat (and, when
// AccentDownbeat is set, a distinct one at each downbeat) sample index
// across all channels of buf, clipping the result to [-1, 1]. Beats whose
// sample index is at or past num_frames are skipped. buf is mutated
// in place.
func Overlay(buf *audio.Buffer, beatSamples, downbeatSamples []int, opts Options) {
	if buf.SampleRate <= 0 || buf.Channels <= 0 || len(buf.Samples) == 0 {
		return
	}

	click := synthClick(buf.SampleRate, opts.ClickVolume, opts.ClickFreq)
	if len(click) == 0 {
		return
	}

	downbeatSet := make(map[int]bool, len(downbeatSamples))
	if opts.AccentDownbeat {
		for _, s := range downbeatSamples {
			downbeatSet[s] = true
		}
	}

	downbeatFreq := opts.DownbeatFreq
	if downbeatFreq <= 0 {
		downbeatFreq = opts.ClickFreq
	}
	downbeatClick := synthClick(buf.SampleRate, opts.ClickVolume, downbeatFreq)

	frames := buf.NumFrames()
	channels := buf.Channels

	for _, beat := range beatSamples {
		if beat < 0 || beat >= frames {
			continue
		}
		c := click
		if opts.AccentDownbeat && downbeatSet[beat] {
			c = downbeatClick
		}
		addClick(buf.Samples, c, beat, frames, channels)
	}

	for i, s := range buf.Samples {
		buf.Samples[i] = clip(s)
	}
}

func addClick(samples []float64, click []float64, beat, frames, channels int) {
	for i, v := range click {
		frame := beat + i
		if frame >= frames {
			break
		}
		base := frame * channels
		for ch := 0; ch < channels; ch++ {
			samples[base+ch] += v
		}
	}
}

// synthClick generates the 20ms decaying-sinusoid click.
func synthClick(sampleRate int, volume, freq float64) []float64 {
	if sampleRate <= 0 {
		return nil
	}
	length := int(math.Round(clickDuration * float64(sampleRate)))
	if length < 1 {
		length = 1
	}
	click := make([]float64, length)
	for i := range click {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-clickDecay * t)
		click[i] = volume * math.Sin(2*math.Pi*freq*t) * env
	}
	return click
}

func clip(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
