package beat

import "testing"

func TestTrackEmptyEnvelope(t *testing.T) {
	got := Track(nil, 10, 512, DefaultAlpha)
	if len(got.BeatSamples) != 0 {
		t.Errorf("expected empty beat samples, got %v", got.BeatSamples)
	}
}

func TestTrackNonPositivePeriod(t *testing.T) {
	got := Track([]float64{1, 2, 3}, 0, 512, DefaultAlpha)
	if len(got.BeatSamples) != 0 {
		t.Errorf("expected empty beat samples for non-positive period, got %v", got.BeatSamples)
	}
}

func TestTrackSingleFrame(t *testing.T) {
	got := Track([]float64{0.5}, 10, 512, DefaultAlpha)
	if len(got.BeatSamples) != 1 || got.BeatSamples[0] != 0 {
		t.Fatalf("BeatSamples = %v, want [0]", got.BeatSamples)
	}
	if got.Score != 0.5 {
		t.Errorf("Score = %f, want 0.5", got.Score)
	}
}

func TestTrackBeatSequenceInvariants(t *testing.T) {
	periodFrames := 20
	hopSize := 512
	numFrames := 500

	envelope := make([]float64, numFrames)
	for i := 0; i < numFrames; i += periodFrames {
		envelope[i] = 1.0
	}

	got := Track(envelope, periodFrames, hopSize, DefaultAlpha)
	if len(got.BeatSamples) < 2 {
		t.Fatalf("expected multiple beats, got %v", got.BeatSamples)
	}

	minGap := 0.5 * float64(periodFrames) * float64(hopSize)
	maxGap := 2.0 * float64(periodFrames) * float64(hopSize)

	for i, s := range got.BeatSamples {
		if s < 0 || s >= numFrames*hopSize {
			t.Errorf("beat %d sample %d out of range [0, %d)", i, s, numFrames*hopSize)
		}
		if i > 0 {
			if got.BeatSamples[i] <= got.BeatSamples[i-1] {
				t.Errorf("beat samples not strictly increasing at index %d: %d <= %d", i, got.BeatSamples[i], got.BeatSamples[i-1])
			}
			gap := float64(got.BeatSamples[i] - got.BeatSamples[i-1])
			if gap < minGap-float64(hopSize) || gap > maxGap+float64(hopSize) {
				t.Errorf("gap at index %d = %f, want within [%f, %f]", i, gap, minGap, maxGap)
			}
		}
	}
}
