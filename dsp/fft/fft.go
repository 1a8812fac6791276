// Package fft wraps the real-input FFT used by the onset extractor and
// key detector. Extracted from the teacher's algorithms/spectral/fft.go.
package fft

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT computes forward real-valued fast Fourier transforms.
type FFT struct{}

// New creates an FFT calculator. It holds no state: go-dsp's FFTReal
// allocates its own plan per call and handles non-power-of-2 sizes, so
// there is no persistent plan to cache or release here.
func New() *FFT {
	return &FFT{}
}

// Real computes the FFT of a real-valued signal and returns the full
// complex spectrum (length len(x)).
func (f *FFT) Real(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}
