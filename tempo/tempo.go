// Package tempo estimates the dominant periodicity of an onset-strength
// envelope via autocorrelation under a log-Gaussian prior, with iterative
// octave-halving correction, a high-tempo guard, and parabolic sub-lag
// refinement. Grounded in the teacher's
// algorithms/temporal/tempo_estimation.go (autocorrelation-driven tempo
// search), generalised to spec.md §4.2's priored, octave-corrected
// variant.
package tempo

import (
	"math"

	dspstat "github.com/a1bertle/music-bpm-detection/dsp/stat"
)

const priorSigma = 1.0

// Result mirrors spec.md's TempoResult.
type Result struct {
	BPM              float64
	PeriodFrames     int
	CandidatePeriods []int
}

// Params bounds the lag search.
type Params struct {
	SampleRate int
	HopSize    int
	MinBPM     float64
	MaxBPM     float64
}

// Estimate computes the best period, its BPM, and octave-alternative
// candidate periods from an onset envelope.
func Estimate(envelope []float64, p Params) Result {
	if len(envelope) < 2 {
		return Result{}
	}

	frameRate := float64(p.SampleRate) / float64(p.HopSize)

	maxLag := int(math.Floor(60.0 * frameRate / p.MinBPM))
	minLag := int(math.Ceil(60.0 * frameRate / p.MaxBPM))

	maxLag = clip(maxLag, 1, len(envelope)-1)
	minLag = clip(minLag, 1, len(envelope)-1)

	if minLag >= maxLag {
		return Result{}
	}

	r := autocorrelation(envelope, minLag, maxLag)
	weighted := make(map[int]float64, maxLag-minLag+1)
	weightedSlice := make([]float64, 0, maxLag-minLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		w := r[lag] * logGaussianPrior(bpmForLag(lag, frameRate))
		weighted[lag] = w
		weightedSlice = append(weightedSlice, w)
	}

	bestLag := argmaxMap(weighted, minLag, maxLag)
	medianWeighted := dspstat.Median(weightedSlice)

	bestLag = correctOctave(weighted, bestLag, minLag, maxLag, medianWeighted)

	if bpmForLag(bestLag, frameRate) > 200 && 2*bestLag <= maxLag {
		bestLag = 2 * bestLag
	}

	refinedBPM := refinedBPMForLag(r, bestLag, minLag, maxLag, frameRate)

	return Result{
		BPM:              refinedBPM,
		PeriodFrames:     bestLag,
		CandidatePeriods: candidatePeriods(bestLag, minLag, maxLag),
	}
}

// autocorrelation computes the unbiased-normalised autocorrelation of x
// for lags in [minLag, maxLag], keyed by lag.
func autocorrelation(x []float64, minLag, maxLag int) map[int]float64 {
	r := make(map[int]float64, maxLag-minLag+1)
	n := len(x)
	for lag := minLag; lag <= maxLag; lag++ {
		sum := 0.0
		for i := lag; i < n; i++ {
			sum += x[i] * x[i-lag]
		}
		r[lag] = sum / float64(n-lag)
	}
	return r
}

func logGaussianPrior(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	z := math.Log2(bpm/120.0) / priorSigma
	return math.Exp(-0.5 * z * z)
}

func bpmForLag(lag int, frameRate float64) float64 {
	if lag <= 0 {
		return 0
	}
	return 60.0 * frameRate / float64(lag)
}

func argmaxMap(weighted map[int]float64, lo, hi int) int {
	best := lo
	bestVal := math.Inf(-1)
	for lag := lo; lag <= hi; lag++ {
		if v := weighted[lag]; v > bestVal {
			bestVal = v
			best = lag
		}
	}
	return best
}

// correctOctave repeatedly halves bestLag while a local maximum near
// bestLag/2 clears both the noise floor and a fixed fraction of the
// current best weighted score (spec.md §4.2).
func correctOctave(weighted map[int]float64, bestLag, minLag, maxLag int, medianWeighted float64) int {
	for {
		halfCenter := bestLag / 2
		lo := clip(halfCenter-2, minLag, maxLag)
		hi := clip(halfCenter+2, minLag, maxLag)
		if lo > hi {
			return bestLag
		}

		bestHalf := lo
		bestHalfVal := math.Inf(-1)
		for lag := lo; lag <= hi; lag++ {
			if v, ok := weighted[lag]; ok && v > bestHalfVal {
				bestHalfVal = v
				bestHalf = lag
			}
		}

		if bestHalfVal > medianWeighted && bestHalfVal > 0.5*weighted[bestLag] {
			bestLag = bestHalf
			continue
		}
		return bestLag
	}
}

// refinedBPMForLag applies parabolic interpolation around bestLag in the
// raw autocorrelation (not the priored/weighted series) to sub-lag
// precision, then converts the refined lag to BPM.
func refinedBPMForLag(r map[int]float64, bestLag, minLag, maxLag int, frameRate float64) float64 {
	delta := 0.0
	if bestLag-1 >= minLag && bestLag+1 <= maxLag {
		a, b, c := r[bestLag-1], r[bestLag], r[bestLag+1]
		denom := a - 2*b + c
		if math.Abs(denom) >= 1e-12 {
			delta = 0.5 * (a - c) / denom
		}
	}
	lag := float64(bestLag) + delta
	if lag <= 0 {
		return 0
	}
	return 60.0 * frameRate / lag
}

// candidatePeriods returns {lag, 2*lag, 3*lag, lag/2, lag/3} filtered to
// [minLag, maxLag] and de-duplicated, preserving that priority order.
func candidatePeriods(lag, minLag, maxLag int) []int {
	raw := []int{lag, 2 * lag, 3 * lag, lag / 2, lag / 3}
	seen := make(map[int]bool, len(raw))
	out := make([]int, 0, len(raw))
	for _, c := range raw {
		if c < minLag || c > maxLag {
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
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
