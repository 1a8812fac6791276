package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/a1bertle/music-bpm-detection/audio"
)

var (
	errNotPCM      = errors.New("WAV file is not PCM format")
	errNot16Bit    = errors.New("WAV file is not 16-bit")
	errNoDataChunk = errors.New("WAV file has no data chunk")
)

func errBadTag(expected, got string) error {
	return fmt.Errorf("WAV parse error: expected %q tag, got %q", expected, got)
}

// WAVDecoder reads the native RIFF/WAVE/PCM-16 format wav.Write produces,
// the mirror image of the WAV writer interface, grounded in
// original_source/src/wav_reader.cpp.
type WAVDecoder struct{}

// NewWAVDecoder constructs a native WAV decoder.
func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{}
}

// Decode opens path and parses it as a PCM-16 WAV file.
func (d *WAVDecoder) Decode(source string) (*audio.Buffer, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, newError(source, ErrIO, "failed to open WAV file", err)
	}
	defer f.Close()

	sampleRate, channels, samples, err := parseWAV(f)
	if err != nil {
		return nil, newError(source, ErrFormat, "failed to parse WAV file", err)
	}

	return &audio.Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

func parseWAV(r io.Reader) (sampleRate, channels int, samples []float64, err error) {
	if err = expectTag(r, "RIFF"); err != nil {
		return 0, 0, nil, err
	}
	if _, err = readU32(r); err != nil { // chunk size, ignored
		return 0, 0, nil, err
	}
	if err = expectTag(r, "WAVE"); err != nil {
		return 0, 0, nil, err
	}
	if err = expectTag(r, "fmt "); err != nil {
		return 0, 0, nil, err
	}

	fmtSize, err := readU32(r)
	if err != nil {
		return 0, 0, nil, err
	}
	audioFormat, err := readU16(r)
	if err != nil {
		return 0, 0, nil, err
	}
	ch, err := readU16(r)
	if err != nil {
		return 0, 0, nil, err
	}
	sr, err := readU32(r)
	if err != nil {
		return 0, 0, nil, err
	}
	if _, err = readU32(r); err != nil { // byte rate, ignored
		return 0, 0, nil, err
	}
	if _, err = readU16(r); err != nil { // block align, ignored
		return 0, 0, nil, err
	}
	bitsPerSample, err := readU16(r)
	if err != nil {
		return 0, 0, nil, err
	}
	if fmtSize > 16 {
		if _, err = io.CopyN(io.Discard, r, int64(fmtSize-16)); err != nil {
			return 0, 0, nil, err
		}
	}
	if audioFormat != 1 {
		return 0, 0, nil, errNotPCM
	}
	if bitsPerSample != 16 {
		return 0, 0, nil, errNot16Bit
	}

	var dataSize uint32
	for {
		tag, terr := readTag(r)
		if terr != nil {
			return 0, 0, nil, errNoDataChunk
		}
		size, serr := readU32(r)
		if serr != nil {
			return 0, 0, nil, serr
		}
		if tag == "data" {
			dataSize = size
			break
		}
		if _, err = io.CopyN(io.Discard, r, int64(size)); err != nil {
			return 0, 0, nil, err
		}
	}

	numSamples := int(dataSize / 2)
	raw := make([]int16, numSamples)
	if err = binary.Read(r, binary.LittleEndian, raw); err != nil {
		return 0, 0, nil, err
	}

	out := make([]float64, numSamples)
	for i, v := range raw {
		out[i] = float64(v) / 32768.0
	}

	return int(sr), int(ch), out, nil
}

func readTag(r io.Reader) (string, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func expectTag(r io.Reader, expected string) error {
	tag, err := readTag(r)
	if err != nil {
		return err
	}
	if tag != expected {
		return errBadTag(expected, tag)
	}
	return nil
}

func readU16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
