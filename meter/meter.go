// Package meter infers a time signature, downbeat phase and confidence
// from a beat sequence and its underlying onset envelope, by scoring
// candidate beat groupings on accent contrast and beat-level
// autocorrelation, then checking for ternary (compound-meter)
// subdivision between beats. Grounded in the teacher's statistical
// style (algorithms/stats/correlation.go, algorithms/common/math.go);
// there is no direct teacher analogue for meter detection, so this
// follows spec.md §4.4's accent/autocorrelation formulation directly.
package meter

import (
	"math"

	dspstat "github.com/a1bertle/music-bpm-detection/dsp/stat"
)

// TimeSignature enumerates the four signatures spec.md §3 allows.
type TimeSignature int

const (
	TwoFour TimeSignature = iota
	ThreeFour
	FourFour
	SixEight
)

func (t TimeSignature) String() string {
	switch t {
	case TwoFour:
		return "2/4"
	case ThreeFour:
		return "3/4"
	case FourFour:
		return "4/4"
	case SixEight:
		return "6/8"
	default:
		return "unknown"
	}
}

// Result mirrors spec.md's MeterResult.
type Result struct {
	TimeSignature    TimeSignature
	BeatsPerMeasure  int
	DownbeatPhase    int
	Confidence       float64
	DownbeatSamples  []int
}

const (
	lowConfidenceThreshold = 0.15
	fourOverrideMargin     = 0.8
	fourAccentThreshold    = 0.1
	fallbackMargin         = 1.10
	ternaryMargin          = 1.1
	minBeatsForMeter       = 8
)

// Detect infers the meter of a beat sequence.
func Detect(beatSamples []int, envelope []float64, hopSize int) Result {
	if len(beatSamples) < minBeatsForMeter {
		return Result{TimeSignature: FourFour, BeatsPerMeasure: 4, DownbeatPhase: 0, Confidence: 0, DownbeatSamples: downbeats(beatSamples, 0, 4)}
	}

	onsetAtBeat := sampleEnvelopeAtBeats(beatSamples, envelope, hopSize)
	sigma := dspstat.StdDev(onsetAtBeat)

	bestG, bestPhi, bestScore, bestAccent := bestGrouping(onsetAtBeat, sigma, []int{2, 3, 4})

	if bestG == 2 {
		phi4, score4, accent4 := bestGroupingForSize(onsetAtBeat, sigma, 4)
		if accent4 > fourAccentThreshold || score4 > fourOverrideMargin*bestScore {
			bestG, bestPhi, bestScore, bestAccent = 4, phi4, score4, accent4
		}
	}

	confidence := clip01(bestAccent / 2.0)

	if confidence < lowConfidenceThreshold && bestG != 4 {
		phi4, score4, accent4 := bestGroupingForSize(onsetAtBeat, sigma, 4)
		if !(bestScore > fallbackMargin*score4) {
			bestG, bestPhi = 4, phi4
			confidence = clip01(accent4 / 2.0)
		}
	}

	sig, beatsPerMeasure := simpleSignature(bestG)

	if ternaryWins(beatSamples, envelope, hopSize) {
		if bestG == 2 {
			sig, beatsPerMeasure = SixEight, 2
		} else if bestG == 3 {
			sig, beatsPerMeasure = SixEight, 6
		}
	}

	return Result{
		TimeSignature:   sig,
		BeatsPerMeasure: beatsPerMeasure,
		DownbeatPhase:   bestPhi,
		Confidence:      confidence,
		DownbeatSamples: downbeats(beatSamples, bestPhi, beatsPerMeasure),
	}
}

func simpleSignature(g int) (TimeSignature, int) {
	switch g {
	case 2:
		return TwoFour, 2
	case 3:
		return ThreeFour, 3
	default:
		return FourFour, 4
	}
}

func sampleEnvelopeAtBeats(beatSamples []int, envelope []float64, hopSize int) []float64 {
	out := make([]float64, len(beatSamples))
	for i, s := range beatSamples {
		frame := s / hopSize
		if frame >= 0 && frame < len(envelope) {
			out[i] = envelope[frame]
		}
	}
	return out
}

// bestGrouping searches every (g, phi) across the supplied candidate
// groupings and returns the argmax.
func bestGrouping(onsetAtBeat []float64, sigma float64, groupings []int) (g, phi int, score, accent float64) {
	bestScore := math.Inf(-1)
	var bestG, bestPhi int
	var bestAccent float64

	for _, cand := range groupings {
		for phi := 0; phi < cand; phi++ {
			a := accentContrast(onsetAtBeat, sigma, cand, phi)
			r := beatAutocorrelation(onsetAtBeat, cand)
			s := 0.7*a + 0.3*r
			if s > bestScore {
				bestScore = s
				bestG = cand
				bestPhi = phi
				bestAccent = a
			}
		}
	}
	return bestG, bestPhi, bestScore, bestAccent
}

// bestGroupingForSize returns the best phase, score and accent for one
// fixed grouping size g.
func bestGroupingForSize(onsetAtBeat []float64, sigma float64, g int) (phi int, score, accent float64) {
	_, phi, score, accent = bestGrouping(onsetAtBeat, sigma, []int{g})
	return phi, score, accent
}

func accentContrast(onsetAtBeat []float64, sigma float64, g, phi int) float64 {
	var downbeatSum, otherSum float64
	var downbeatCount, otherCount int

	for i := range onsetAtBeat {
		pos := (((i - phi) % g) + g) % g
		if pos == 0 {
			downbeatSum += onsetAtBeat[i]
			downbeatCount++
		} else {
			otherSum += onsetAtBeat[i]
			otherCount++
		}
	}

	downbeatMean := safeMean(downbeatSum, downbeatCount)
	otherMean := safeMean(otherSum, otherCount)

	return (downbeatMean - otherMean) / (sigma + 1e-6)
}

func beatAutocorrelation(onsetAtBeat []float64, g int) float64 {
	n := len(onsetAtBeat)
	if n <= g {
		return 0
	}

	var num, denom float64
	for i := 0; i < n; i++ {
		denom += onsetAtBeat[i] * onsetAtBeat[i]
	}
	for i := 0; i < n-g; i++ {
		num += onsetAtBeat[i] * onsetAtBeat[i+g]
	}

	if denom <= 0 {
		return 0
	}

	return (float64(n) / float64(n-g)) * (num / denom)
}

// ternaryWins checks the compound-meter subdivision test between every
// consecutive beat pair (spec.md §4.4) and reports whether ternary
// subdivision dominates binary subdivision overall.
func ternaryWins(beatSamples []int, envelope []float64, hopSize int) bool {
	var tSum, bSum float64
	var count int

	for i := 0; i+1 < len(beatSamples); i++ {
		bi, bi1 := beatSamples[i], beatSamples[i+1]
		s := bi1 - bi
		if s <= 0 {
			continue
		}

		t1 := sampleAt(envelope, hopSize, bi, float64(s)/3.0)
		t2 := sampleAt(envelope, hopSize, bi, 2.0*float64(s)/3.0)
		b := sampleAt(envelope, hopSize, bi, float64(s)/2.0)

		tSum += (t1 + t2) / 2.0
		bSum += b
		count++
	}

	if count < 4 {
		return false
	}

	T := tSum / float64(count)
	B := bSum / float64(count)

	return T > 0 && (B <= 0 || T > ternaryMargin*B)
}

func sampleAt(envelope []float64, hopSize int, base int, offset float64) float64 {
	frame := int(math.Round((float64(base) + offset) / float64(hopSize)))
	if frame < 0 || frame >= len(envelope) {
		return 0
	}
	return envelope[frame]
}

func downbeats(beatSamples []int, phase, beatsPerMeasure int) []int {
	if beatsPerMeasure <= 0 {
		return nil
	}
	var out []int
	for i := phase; i < len(beatSamples); i += beatsPerMeasure {
		out = append(out, beatSamples[i])
	}
	return out
}

func safeMean(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
