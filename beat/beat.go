// Package beat tracks beat positions from an onset-strength envelope and
// a target period using dynamic programming with a log-ratio tempo
// penalty, so the chosen chain stays close to the estimated tempo while
// following the strongest local onsets. Grounded in the teacher's
// temporal-analysis style (algorithms/temporal/onset_detection.go,
// envelope.go) generalised to the DP beat tracker spec.md §4.3 requires;
// there is no teacher DP tracker to adapt directly, so this follows
// Ellis (2007)'s formulation as described by the spec.
package beat

import (
	"math"
)

// DefaultAlpha is the tempo-penalty weight from spec.md §4.3.
const DefaultAlpha = 680.0

// Result mirrors spec.md's BeatResult.
type Result struct {
	BeatSamples []int
	Score       float64
}

// Track runs the DP beat tracker over an onset envelope for a given
// period (in onset frames) and hop size (samples per frame).
func Track(envelope []float64, periodFrames, hopSize int, alpha float64) Result {
	n := len(envelope)
	if n == 0 || periodFrames <= 0 {
		return Result{BeatSamples: []int{}}
	}
	if n == 1 {
		return Result{BeatSamples: []int{0}, Score: envelope[0]}
	}

	minLag := maxInt(1, roundInt(0.5*float64(periodFrames)))
	maxLag := maxInt(minLag+1, roundInt(2.0*float64(periodFrames)))

	score := make([]float64, n)
	prev := make([]int, n)

	for t := 0; t < n; t++ {
		score[t] = envelope[t]
		prev[t] = -1

		lo := t - maxLag
		hi := t - minLag
		if lo < 0 {
			lo = 0
		}

		best := 0.0
		bestP := -1
		for p := lo; p <= hi && p >= 0; p++ {
			lag := t - p
			penalty := alpha * logRatioSq(lag, periodFrames)
			candidate := score[p] - penalty
			if candidate > best {
				best = candidate
				bestP = p
			}
		}

		if bestP >= 0 {
			score[t] = envelope[t] + best
			prev[t] = bestP
		}
	}

	tailStart := int(0.9 * float64(n))
	if tailStart >= n {
		tailStart = n - 1
	}
	best := score[tailStart]
	bestIdx := tailStart
	for t := tailStart; t < n; t++ {
		if score[t] > best {
			best = score[t]
			bestIdx = t
		}
	}

	var frames []int
	for f := bestIdx; f >= 0; f = prev[f] {
		frames = append(frames, f)
		if prev[f] < 0 {
			break
		}
	}
	reverse(frames)

	samples := make([]int, len(frames))
	for i, f := range frames {
		samples[i] = f * hopSize
	}

	return Result{BeatSamples: samples, Score: best}
}

func logRatioSq(lag, period int) float64 {
	ratio := float64(lag) / float64(period)
	if ratio <= 0 {
		return math.Inf(1)
	}
	v := math.Log(ratio)
	return v * v
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
