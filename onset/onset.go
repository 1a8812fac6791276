// Package onset extracts a normalised onset-strength envelope from a
// mono audio buffer: a mel-filtered log-power spectrogram whose positive
// spectral flux across frames approximates note-onset likelihood.
// Grounded in the teacher's algorithms/temporal/onset_detection.go
// (flux-based onset detection) combined with its
// algorithms/spectral/mel_scale.go filter bank, generalised to the
// fixed-parameter mel-log-flux pipeline spec.md §4.1 requires.
package onset

import (
	"math"

	"github.com/a1bertle/music-bpm-detection/audio"
	"github.com/a1bertle/music-bpm-detection/dsp/fft"
	"github.com/a1bertle/music-bpm-detection/dsp/melscale"
	dspstat "github.com/a1bertle/music-bpm-detection/dsp/stat"
	"github.com/a1bertle/music-bpm-detection/dsp/window"
)

// Fixed parameters from spec.md §4.1.
const (
	FFTSize  = 2048
	HopSize  = 512
	MelBands = 40
	MelLowHz = 30.0
	MelHighHz = 8000.0

	zScoreEps = 1e-6
	logFloor  = 1e-10
)

// Result is the envelope and the parameters that produced it.
type Result struct {
	Strength []float64
	HopSize  int
	FFTSize  int
}

// Extractor computes onset-strength envelopes.
type Extractor struct {
	fft *fft.FFT
	win *window.Hann
}

// New creates an onset extractor.
func New() *Extractor {
	return &Extractor{
		fft: fft.New(),
		win: window.NewHann(FFTSize),
	}
}

// Extract computes the onset-strength envelope of a mono buffer.
func (e *Extractor) Extract(buf *audio.Buffer) (*Result, error) {
	if buf.Channels != 1 {
		return nil, audio.New(audio.ErrInvalidChannels, "onset extraction requires mono input")
	}
	if buf.SampleRate <= 0 {
		return nil, audio.New(audio.ErrInvalidSampleRate, "sample rate must be positive")
	}
	if FFTSize%2 != 0 {
		return nil, audio.New(audio.ErrInvalidFFTSize, "fft size must be even")
	}

	mono := buf.Samples
	sampleRate := buf.SampleRate
	numSamples := len(mono)
	if numSamples < FFTSize {
		return &Result{Strength: []float64{}, HopSize: HopSize, FFTSize: FFTSize}, nil
	}

	numFrames := 1 + (numSamples-FFTSize)/HopSize
	bank := melscale.FilterBank(MelBands, FFTSize, sampleRate, MelLowHz, MelHighHz)

	flux := make([]float64, numFrames)
	prevMel := make([]float64, MelBands)

	frame := make([]float64, FFTSize)
	for t := 0; t < numFrames; t++ {
		start := t * HopSize
		copy(frame, mono[start:start+FFTSize])
		e.win.ApplyInPlace(frame)

		power := powerSpectrum(e.fft.Real(frame))
		mel := melscale.Apply(power, bank)
		for b := range mel {
			mel[b] = math.Log10(mel[b] + logFloor)
		}

		if t > 0 {
			sum := 0.0
			for b := range mel {
				diff := mel[b] - prevMel[b]
				if diff > 0 {
					sum += diff
				}
			}
			flux[t] = sum
		}
		copy(prevMel, mel)
	}

	return &Result{
		Strength: dspstat.ZScore(flux, zScoreEps),
		HopSize:  HopSize,
		FFTSize:  FFTSize,
	}, nil
}

// powerSpectrum forms DC, Nyquist and re^2+im^2 interior bins from a full
// complex FFT output, returning fftSize/2+1 values.
func powerSpectrum(spectrum []complex128) []float64 {
	n := len(spectrum)
	if n == 0 {
		return nil
	}
	bins := n/2 + 1
	power := make([]float64, bins)
	for k := 0; k < bins; k++ {
		re := real(spectrum[k])
		im := imag(spectrum[k])
		power[k] = re*re + im*im
	}
	return power
}
