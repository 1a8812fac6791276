// Package pipeline glues the analysis core into a single controller that
// downmixes, extracts onsets, estimates tempo, resolves tempo ambiguity by
// evaluating every candidate period's beat tracker against a per-beat
// normalised score, then runs the meter and key detectors. Grounded in the
// teacher's fingerprint/fingerprint.go orchestrator (structured-logger
// stage sequencing, config-driven generator struct) and its
// algorithms/spectral/stft.go worker-pool pattern for the permitted
// stage-level parallelism.
package pipeline

import (
	"sync"

	"github.com/a1bertle/music-bpm-detection/audio"
	"github.com/a1bertle/music-bpm-detection/beat"
	"github.com/a1bertle/music-bpm-detection/key"
	"github.com/a1bertle/music-bpm-detection/logging"
	"github.com/a1bertle/music-bpm-detection/meter"
	"github.com/a1bertle/music-bpm-detection/onset"
	"github.com/a1bertle/music-bpm-detection/tempo"
)

// candidateMargin is the ±30% acceptance band around the primary period's
// BPM that a candidate period must fall within to be considered.
const candidateMargin = 0.3

// winnerMargin is the per-beat normalised score a non-primary candidate
// must exceed, relative to the primary's, to win.
const winnerMargin = 1.05

// Config bounds the tempo search and the beat-tracker penalty weight.
type Config struct {
	MinBPM float64
	MaxBPM float64
	Alpha  float64
}

// DefaultConfig mirrors spec.md's default tempo search band and the
// beat tracker's default penalty weight.
func DefaultConfig() Config {
	return Config{MinBPM: 60, MaxBPM: 200, Alpha: beat.DefaultAlpha}
}

// Result is the controller's aggregate output.
type Result struct {
	BPM         float64
	BeatSamples []int
	Meter       meter.Result
	Key         key.Result
}

// Controller runs the full analysis pipeline.
type Controller struct {
	config Config
	onset  *onset.Extractor
	key    *key.Detector
	logger logging.Logger
}

// New creates an analysis controller with the given config.
func New(cfg Config) *Controller {
	return &Controller{
		config: cfg,
		onset:  onset.New(),
		key:    key.New(),
		logger: logging.WithFields(logging.Fields{"component": "pipeline_controller"}),
	}
}

// Analyze runs OnsetExtractor, KeyDetector, tempo-candidate evaluation,
// MeterDetector and returns the aggregate result.
func (c *Controller) Analyze(buf *audio.Buffer) (Result, error) {
	mono, err := buf.Downmix()
	if err != nil {
		return Result{}, err
	}

	logger := c.logger.WithFields(logging.Fields{
		"sample_rate": mono.SampleRate,
		"num_frames":  mono.NumFrames(),
	})
	logger.Debug("starting analysis")

	var onsetResult *onset.Result
	var keyResult key.Result
	var onsetErr, keyErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		onsetResult, onsetErr = c.onset.Extract(mono)
	}()
	go func() {
		defer wg.Done()
		keyResult, keyErr = c.key.Detect(mono)
	}()
	wg.Wait()

	if onsetErr != nil {
		return Result{}, onsetErr
	}
	if keyErr != nil {
		return Result{}, keyErr
	}

	tempoParams := tempo.Params{
		SampleRate: mono.SampleRate,
		HopSize:    onsetResult.HopSize,
		MinBPM:     c.config.MinBPM,
		MaxBPM:     c.config.MaxBPM,
	}
	primary := tempo.Estimate(onsetResult.Strength, tempoParams)

	winningPeriod, winningBeats := c.resolveTempo(onsetResult, primary)

	bpm := primary.BPM
	if winningPeriod != primary.PeriodFrames {
		frameRate := float64(mono.SampleRate) / float64(onsetResult.HopSize)
		bpm = 60.0 * frameRate / float64(winningPeriod)
	}

	meterResult := meter.Detect(winningBeats.BeatSamples, onsetResult.Strength, onsetResult.HopSize)

	logger.Debug("analysis complete", logging.Fields{
		"bpm":            bpm,
		"num_beats":      len(winningBeats.BeatSamples),
		"time_signature": meterResult.TimeSignature.String(),
	})

	return Result{
		BPM:         bpm,
		BeatSamples: winningBeats.BeatSamples,
		Meter:       meterResult,
		Key:         keyResult,
	}, nil
}

// resolveTempo evaluates every candidate period concurrently against a
// read-only onset envelope and picks the winner by per-beat normalised DP
// score, per spec.md §4.6.
func (c *Controller) resolveTempo(onsetResult *onset.Result, primary tempo.Result) (int, beat.Result) {
	candidates := primary.CandidatePeriods
	if len(candidates) == 0 {
		candidates = []int{primary.PeriodFrames}
	}

	type evaluation struct {
		period int
		result beat.Result
		norm   float64
		valid  bool
	}

	evaluations := make([]evaluation, len(candidates))

	var wg sync.WaitGroup
	for i, period := range candidates {
		if !c.inBand(period, primary) {
			continue
		}
		wg.Add(1)
		go func(i, period int) {
			defer wg.Done()
			result := beat.Track(onsetResult.Strength, period, onsetResult.HopSize, c.config.Alpha)
			norm := 0.0
			if len(result.BeatSamples) > 0 {
				norm = result.Score / float64(len(result.BeatSamples))
			}
			evaluations[i] = evaluation{period: period, result: result, norm: norm, valid: true}
		}(i, period)
	}
	wg.Wait()

	var primaryEval evaluation
	for _, e := range evaluations {
		if e.valid && e.period == primary.PeriodFrames {
			primaryEval = e
		}
	}
	if !primaryEval.valid {
		result := beat.Track(onsetResult.Strength, primary.PeriodFrames, onsetResult.HopSize, c.config.Alpha)
		norm := 0.0
		if len(result.BeatSamples) > 0 {
			norm = result.Score / float64(len(result.BeatSamples))
		}
		primaryEval = evaluation{period: primary.PeriodFrames, result: result, norm: norm, valid: true}
	}

	winner := primaryEval
	for _, e := range evaluations {
		if !e.valid || e.period == primary.PeriodFrames {
			continue
		}
		if e.norm > winnerMargin*primaryEval.norm {
			winner = e
		}
	}

	return winner.period, winner.result
}

// inBand reports whether a candidate period's BPM lies within ±30% of the
// primary period's BPM.
func (c *Controller) inBand(period int, primary tempo.Result) bool {
	if primary.PeriodFrames <= 0 || period <= 0 {
		return false
	}
	ratio := float64(primary.PeriodFrames) / float64(period)
	return ratio >= 1-candidateMargin && ratio <= 1+candidateMargin
}
