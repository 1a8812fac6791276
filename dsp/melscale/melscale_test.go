package melscale

import (
	"math"
	"testing"
)

func TestHzToMelZero(t *testing.T) {
	if got := HzToMel(0); got != 0 {
		t.Errorf("HzToMel(0) = %f, want 0", got)
	}
}

func TestHzMelRoundTrip(t *testing.T) {
	for _, hz := range []float64{100, 440, 1000, 4000, 8000} {
		mel := HzToMel(hz)
		back := MelToHz(mel)
		if math.Abs(back-hz) > 1e-6 {
			t.Errorf("round trip %f -> %f -> %f", hz, mel, back)
		}
	}
}

func TestFilterBankShape(t *testing.T) {
	bank := FilterBank(26, 2048, 44100, 0, 22050)
	if len(bank) != 26 {
		t.Fatalf("expected 26 filters, got %d", len(bank))
	}
	maxBin := 2048 / 2
	for i, filter := range bank {
		if len(filter) != maxBin+1 {
			t.Fatalf("filter %d length = %d, want %d", i, len(filter), maxBin+1)
		}
	}
}

func TestFilterBankWeightsAreNonNegative(t *testing.T) {
	bank := FilterBank(26, 2048, 44100, 0, 22050)
	for i, filter := range bank {
		for k, w := range filter {
			if w < 0 {
				t.Errorf("filter %d bin %d = %f, want >= 0", i, k, w)
			}
		}
	}
}

func TestFilterBankInvalidArgs(t *testing.T) {
	if bank := FilterBank(0, 2048, 44100, 0, 22050); bank != nil {
		t.Errorf("expected nil bank for numFilters=0, got %v", bank)
	}
	if bank := FilterBank(26, 0, 44100, 0, 22050); bank != nil {
		t.Errorf("expected nil bank for fftSize=0, got %v", bank)
	}
}

func TestApplyProjectsSpectrum(t *testing.T) {
	bank := [][]float64{
		{1, 0, 0, 0},
		{0, 1, 1, 0},
	}
	spectrum := []float64{2, 3, 4, 5}
	out := Apply(spectrum, bank)
	if len(out) != 2 {
		t.Fatalf("expected 2 bands, got %d", len(out))
	}
	if out[0] != 2 {
		t.Errorf("band 0 = %f, want 2", out[0])
	}
	if out[1] != 7 {
		t.Errorf("band 1 = %f, want 7", out[1])
	}
}

func TestApplyHandlesShortSpectrum(t *testing.T) {
	bank := [][]float64{{1, 1, 1, 1}}
	spectrum := []float64{1, 2}
	out := Apply(spectrum, bank)
	if out[0] != 3 {
		t.Errorf("band 0 = %f, want 3", out[0])
	}
}
