// Package key detects the musical key of a mono buffer from a
// per-octave interpolated chromagram correlated against Krumhansl–Kessler
// major/minor profiles. Grounded in the teacher's
// algorithms/tonal/key_estimation.go (profile-correlation key estimator,
// Krumhansl-Schmuckler template constants) and
// algorithms/chroma/pitch_class.go (per-pitch-class energy accumulation),
// generalised to spec.md §4.5's per-octave normalisation scheme.
package key

import (
	"math"

	"github.com/a1bertle/music-bpm-detection/audio"
	"github.com/a1bertle/music-bpm-detection/dsp/fft"
	dspstat "github.com/a1bertle/music-bpm-detection/dsp/stat"
	"github.com/a1bertle/music-bpm-detection/dsp/window"
)

// Mode is the major/minor distinction.
type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// Result mirrors spec.md's KeyResult.
type Result struct {
	Root        int
	Mode        Mode
	Correlation float64
	Confidence  float64
}

const (
	fftSize  = 4096
	lowHz    = 65.4
	highHz   = 2093.0
	c0       = 16.3516
	chromaEps = 1e-12
)

// Krumhansl–Kessler profiles (spec glossary).
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// Detector computes chromagrams and correlates them against key profiles.
type Detector struct {
	fft *fft.FFT
	win *window.Hann
}

// New creates a key detector.
func New() *Detector {
	return &Detector{fft: fft.New(), win: window.NewHann(fftSize)}
}

// Detect estimates the key of a mono buffer.
func (d *Detector) Detect(buf *audio.Buffer) (Result, error) {
	if buf.Channels != 1 {
		return Result{}, audio.New(audio.ErrInvalidChannels, "key detection requires mono input")
	}
	if buf.SampleRate <= 0 {
		return Result{}, audio.New(audio.ErrInvalidSampleRate, "sample rate must be positive")
	}

	chroma := d.chromagram(buf.Samples, buf.SampleRate)
	return correlateProfiles(chroma), nil
}

// chromagram builds the final 12-bin chroma vector, averaged over
// contributing octaves, per spec.md §4.5.
func (d *Detector) chromagram(mono []float64, sampleRate int) [12]float64 {
	var final [12]float64
	if len(mono) < fftSize {
		return final
	}

	minOctave, maxOctave := octaveRange()
	numOctaves := maxOctave - minOctave + 1
	if numOctaves <= 0 {
		return final
	}

	octaveAccum := make([][12]float64, numOctaves)

	numFrames := 1 + (len(mono)-fftSize)/fftSize
	frame := make([]float64, fftSize)

	for t := 0; t < numFrames; t++ {
		start := t * fftSize
		copy(frame, mono[start:start+fftSize])
		d.win.ApplyInPlace(frame)

		spectrum := d.fft.Real(frame)
		bins := fftSize/2 + 1

		for k := 1; k < bins; k++ {
			freq := float64(k) * float64(sampleRate) / float64(fftSize)
			if freq < lowHz || freq > highHz {
				continue
			}

			re, im := real(spectrum[k]), imag(spectrum[k])
			power := re*re + im*im

			p := 12.0 * math.Log2(freq/c0)
			pLoFloat := math.Floor(p)
			octave := int(pLoFloat/12.0) - minOctave
			if octave < 0 || octave >= numOctaves {
				continue
			}

			pcLo := mod12(int(pLoFloat))
			pcHi := mod12(pcLo + 1)
			frac := p - pLoFloat

			octaveAccum[octave][pcLo] += power * (1 - frac)
			octaveAccum[octave][pcHi] += power * frac
		}
	}

	contributing := 0
	for _, acc := range octaveAccum {
		total := 0.0
		for _, v := range acc {
			total += v
		}
		if total <= chromaEps {
			continue
		}
		contributing++
		for pc := range acc {
			final[pc] += acc[pc] / total
		}
	}

	if contributing > 0 {
		for pc := range final {
			final[pc] /= float64(contributing)
		}
	}

	return final
}

func octaveRange() (minOctave, maxOctave int) {
	minP := 12.0 * math.Log2(lowHz/c0)
	maxP := 12.0 * math.Log2(highHz/c0)
	minOctave = int(math.Floor(minP / 12.0))
	maxOctave = int(math.Floor(maxP / 12.0))
	return minOctave, maxOctave
}

// correlateProfiles tests all 24 (root, mode) hypotheses and returns the
// winner with its confidence (best minus second-best correlation).
func correlateProfiles(chroma [12]float64) Result {
	c := chroma[:]

	best := Result{Correlation: -2}
	secondBest := -2.0

	for root := 0; root < 12; root++ {
		majorCorr := dspstat.PearsonCorrelation(c, rotate(majorProfile, root))
		if majorCorr > best.Correlation {
			secondBest = best.Correlation
			best = Result{Root: root, Mode: Major, Correlation: majorCorr}
		} else if majorCorr > secondBest {
			secondBest = majorCorr
		}

		minorCorr := dspstat.PearsonCorrelation(c, rotate(minorProfile, root))
		if minorCorr > best.Correlation {
			secondBest = best.Correlation
			best = Result{Root: root, Mode: Minor, Correlation: minorCorr}
		} else if minorCorr > secondBest {
			secondBest = minorCorr
		}
	}

	best.Confidence = best.Correlation - secondBest
	return best
}

// rotate shifts a profile so index i holds the template weight for
// pitch class (i - root) mod 12, i.e. aligns the tonic to root.
func rotate(profile []float64, root int) []float64 {
	out := make([]float64, len(profile))
	for i := range profile {
		out[i] = profile[mod12(i-root)]
	}
	return out
}

func mod12(v int) int {
	v %= 12
	if v < 0 {
		v += 12
	}
	return v
}
