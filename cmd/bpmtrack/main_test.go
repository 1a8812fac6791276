package main

import (
	"errors"
	"testing"

	"github.com/a1bertle/music-bpm-detection/decode"
)

func TestPitchClassName(t *testing.T) {
	cases := map[int]string{0: "C", 1: "C#", 9: "A", 11: "B"}
	for pc, want := range cases {
		if got := pitchClassName(pc); got != want {
			t.Errorf("pitchClassName(%d) = %q, want %q", pc, got, want)
		}
	}
}

func TestPitchClassNameOutOfRange(t *testing.T) {
	if got := pitchClassName(-1); got != "?" {
		t.Errorf("pitchClassName(-1) = %q, want ?", got)
	}
	if got := pitchClassName(12); got != "?" {
		t.Errorf("pitchClassName(12) = %q, want ?", got)
	}
}

func TestDecodeInputSelectsWAVDecoderByExtension(t *testing.T) {
	// A nonexistent .wav path should fail inside the WAV decoder (file
	// open error), not the FFmpeg decoder, confirming the extension
	// dispatch routes correctly.
	_, err := decodeInput("missing.WAV")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var decErr *decode.Error
	if !errors.As(err, &decErr) || decErr.Message != "failed to open WAV file" {
		t.Errorf("err = %v, want the WAV decoder's file open error", err)
	}
}
