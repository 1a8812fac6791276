// Package melscale converts between Hz and the mel scale and builds
// triangular mel filter banks, adapted from the teacher's
// algorithms/spectral/mel_scale.go.
package melscale

import "math"

// HzToMel converts a frequency in Hz to the mel scale.
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts a mel value back to Hz.
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// FilterBank builds numFilters overlapping triangular filters spanning
// [lowFreq, highFreq], mapped onto fftSize/2+1 power-spectrum bins.
//
// Bin indices are floor((fftSize+1)*hz/sampleRate), clipped to
// [0, fftSize/2]. When a filter's centre bin collides with its left edge
// the centre is nudged right by one bin (and likewise the right edge is
// nudged right by one bin when it collides with the centre), so
// degenerate zero-width triangles never occur at low frequencies.
func FilterBank(numFilters, fftSize, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	if numFilters <= 0 || fftSize <= 0 {
		return nil
	}

	maxBin := fftSize / 2

	lowMel := HzToMel(lowFreq)
	highMel := HzToMel(highFreq)

	melPoints := make([]float64, numFilters+2)
	step := (highMel - lowMel) / float64(numFilters+1)
	for i := range melPoints {
		melPoints[i] = lowMel + float64(i)*step
	}

	bins := make([]int, len(melPoints))
	for i, mel := range melPoints {
		hz := MelToHz(mel)
		bin := int(math.Floor(float64(fftSize+1) * hz / float64(sampleRate)))
		bins[i] = clip(bin, 0, maxBin)
	}

	for m := 1; m <= numFilters; m++ {
		if bins[m] <= bins[m-1] && bins[m] < maxBin {
			bins[m] = bins[m-1] + 1
		}
		if bins[m+1] <= bins[m] && bins[m] < maxBin {
			bins[m+1] = bins[m] + 1
		}
	}

	bank := make([][]float64, numFilters)
	for m := 1; m <= numFilters; m++ {
		left, center, right := bins[m-1], bins[m], bins[m+1]
		filter := make([]float64, maxBin+1)

		for k := left; k < center && k <= maxBin; k++ {
			if center != left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k < right && k <= maxBin; k++ {
			if right != center {
				filter[k] = float64(right-k) / float64(right-center)
			}
		}

		bank[m-1] = filter
	}

	return bank
}

// Apply projects a power spectrum through a filter bank, summing each
// filter's weighted contribution into one mel-band energy value.
func Apply(powerSpectrum []float64, bank [][]float64) []float64 {
	out := make([]float64, len(bank))
	for i, filter := range bank {
		sum := 0.0
		for k := 0; k < len(filter) && k < len(powerSpectrum); k++ {
			sum += powerSpectrum[k] * filter[k]
		}
		out[i] = sum
	}
	return out
}

func clip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
