package pipeline

import (
	"math"
	"testing"

	"github.com/a1bertle/music-bpm-detection/audio"
	"github.com/a1bertle/music-bpm-detection/tempo"
)

// clickTrain synthesises numFrames of mono audio at sampleRate with a short
// decaying percussive click every 60/bpm seconds, optionally accenting every
// accentEvery-th click to expose meter structure.
func clickTrain(sampleRate int, bpm float64, duration float64, accentEvery int, accentGain float64) *audio.Buffer {
	n := int(float64(sampleRate) * duration)
	samples := make([]float64, n)

	clickPeriod := 60.0 / bpm
	clickLen := int(0.01 * float64(sampleRate))

	beatIdx := 0
	for start := 0; start < n; start += int(clickPeriod * float64(sampleRate)) {
		gain := 1.0
		if accentEvery > 0 && beatIdx%accentEvery == 0 {
			gain = accentGain
		}
		for i := 0; i < clickLen && start+i < n; i++ {
			t := float64(i) / float64(sampleRate)
			samples[start+i] += gain * math.Exp(-300*t) * math.Sin(2*math.Pi*2000*t)
		}
		beatIdx++
	}

	return &audio.Buffer{Samples: samples, SampleRate: sampleRate, Channels: 1}
}

func TestAnalyzeRecovers120BPM(t *testing.T) {
	buf := clickTrain(44100, 120, 20, 4, 2.0)
	c := New(DefaultConfig())
	result, err := c.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.BPM < 119 || result.BPM > 121 {
		t.Errorf("BPM = %f, want close to 120", result.BPM)
	}
}

func TestAnalyzeRecovers90BPM(t *testing.T) {
	buf := clickTrain(44100, 90, 20, 4, 2.0)
	c := New(DefaultConfig())
	result, err := c.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.BPM < 88.5 || result.BPM > 91.5 {
		t.Errorf("BPM = %f, want close to 90", result.BPM)
	}
}

func TestAnalyzeGuardsAgainstOctaveErrorAtHighTempo(t *testing.T) {
	buf := clickTrain(44100, 240, 15, 4, 2.0)
	c := New(DefaultConfig())
	result, err := c.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.BPM <= 0 {
		t.Fatalf("expected a positive BPM, got %f", result.BPM)
	}
	if result.BPM > 200 {
		t.Errorf("BPM = %f, want clamped under the 200 BPM guard", result.BPM)
	}
}

func TestAnalyzeReturnsBeatsWithinBufferRange(t *testing.T) {
	buf := clickTrain(44100, 120, 10, 4, 2.0)
	c := New(DefaultConfig())
	result, err := c.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	for i, s := range result.BeatSamples {
		if s < 0 || s >= buf.NumFrames() {
			t.Errorf("beat %d sample %d out of buffer range [0, %d)", i, s, buf.NumFrames())
		}
	}
}

func TestAnalyzeRejectsInvalidBuffer(t *testing.T) {
	c := New(DefaultConfig())
	buf := &audio.Buffer{Samples: []float64{0, 0}, SampleRate: 44100, Channels: 0}
	if _, err := c.Analyze(buf); err == nil {
		t.Fatal("expected error for zero-channel buffer")
	}
}

func TestAnalyzeHandlesShortBuffer(t *testing.T) {
	c := New(DefaultConfig())
	buf := &audio.Buffer{Samples: make([]float64, 1000), SampleRate: 44100, Channels: 1}
	result, err := c.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze returned error for short buffer: %v", err)
	}
	if len(result.BeatSamples) != 0 {
		t.Errorf("expected no beats for a buffer shorter than one onset frame, got %v", result.BeatSamples)
	}
}

func TestInBandRejectsNonPositivePeriods(t *testing.T) {
	c := New(DefaultConfig())
	if c.inBand(0, tempo.Result{PeriodFrames: 20}) {
		t.Error("inBand(0) = true, want false")
	}
	if c.inBand(20, tempo.Result{PeriodFrames: 0}) {
		t.Error("inBand with zero primary period = true, want false")
	}
}

func TestInBandAcceptsWithinMargin(t *testing.T) {
	c := New(DefaultConfig())
	if !c.inBand(22, tempo.Result{PeriodFrames: 20}) {
		t.Error("expected period within 30% margin to be in band")
	}
	if c.inBand(40, tempo.Result{PeriodFrames: 20}) {
		t.Error("expected period double the primary to be out of band")
	}
}
