// Package window provides analysis window functions. Extracted from the
// teacher's algorithms/windowing/hann.go.
package window

import "math"

// Hann is a Hann window: w[i] = 0.5 - 0.5*cos(2*pi*i/(size-1)).
type Hann struct {
	size         int
	coefficients []float64
}

// NewHann builds a Hann window of the given size.
func NewHann(size int) *Hann {
	h := &Hann{size: size}
	h.generate()
	return h
}

func (h *Hann) generate() {
	h.coefficients = make([]float64, h.size)
	denom := float64(h.size - 1)
	for i := 0; i < h.size; i++ {
		h.coefficients[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denom)
	}
}

// ApplyInPlace multiplies signal by the window coefficients in place.
// signal must have the same length as the window.
func (h *Hann) ApplyInPlace(signal []float64) {
	for i := range signal {
		signal[i] *= h.coefficients[i]
	}
}

// Size returns the window length.
func (h *Hann) Size() int {
	return h.size
}
