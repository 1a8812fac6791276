// Package wav writes the RIFF/WAVE PCM-16 format spec.md §6 uses as its
// external interchange format (decode.WAVDecoder reads it back). Grounded
// in original_source/src/wav_writer.cpp, translated from
// manual little-endian byte assembly into encoding/binary, in the
// teacher's preference for small struct + pure functions over inheritance.
package wav

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/a1bertle/music-bpm-detection/audio"
)

const (
	bitsPerSample = 16
	pcmFormat     = 1
	maxInt16      = 32767.0
)

// Write encodes buf as a little-endian PCM-16 WAV file at path.
func Write(path string, buf *audio.Buffer) error {
	if buf.SampleRate <= 0 || buf.Channels <= 0 {
		return audio.New(audio.ErrInvalidSampleRate, "invalid audio buffer for WAV output")
	}

	f, err := os.Create(path)
	if err != nil {
		return audio.Wrap(audio.ErrEmptySamples, "failed to open output WAV", err)
	}
	defer f.Close()

	return encode(f, buf)
}

func encode(w io.Writer, buf *audio.Buffer) error {
	numSamples := uint32(len(buf.Samples))
	dataBytes := numSamples * 2
	channels := uint16(buf.Channels)
	sampleRate := uint32(buf.SampleRate)
	blockAlign := channels * (bitsPerSample / 8)
	byteRate := sampleRate * uint32(blockAlign)

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+dataBytes)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVE")); err != nil {
		return err
	}
	if _, err := w.Write([]byte("fmt ")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(pcmFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, channels); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, sampleRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataBytes); err != nil {
		return err
	}

	for _, sample := range buf.Samples {
		clamped := clip(sample)
		value := int16(math.Round(clamped * maxInt16))
		if err := binary.Write(w, binary.LittleEndian, value); err != nil {
			return err
		}
	}

	return nil
}

func clip(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
