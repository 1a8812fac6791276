package decode

import (
	"bytes"
	"errors"
	"math"
	"os"
	"testing"
)

func TestParseWAVRoundTripsThroughEncoding(t *testing.T) {
	samples := []float64{0, 0.25, -0.25, 0.99, -0.99}
	written := encodeTestWAV(t, samples, 22050, 1)

	sampleRate, channels, out, err := parseWAV(bytes.NewReader(written))
	if err != nil {
		t.Fatalf("parseWAV returned error: %v", err)
	}
	if sampleRate != 22050 {
		t.Errorf("sampleRate = %d, want 22050", sampleRate)
	}
	if channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	if len(out) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(out), len(samples))
	}
	for i, want := range samples {
		if math.Abs(out[i]-want) > 1e-3 {
			t.Errorf("sample %d = %f, want ~%f", i, out[i], want)
		}
	}
}

func TestParseWAVRejectsNonPCMFormat(t *testing.T) {
	raw := buildMinimalWAVHeader(3, 16, 1, 44100) // format tag 3 = IEEE float
	_, _, _, err := parseWAV(bytes.NewReader(raw))
	if err != errNotPCM {
		t.Errorf("err = %v, want errNotPCM", err)
	}
}

func TestParseWAVRejectsNon16Bit(t *testing.T) {
	raw := buildMinimalWAVHeader(1, 8, 1, 44100)
	_, _, _, err := parseWAV(bytes.NewReader(raw))
	if err != errNot16Bit {
		t.Errorf("err = %v, want errNot16Bit", err)
	}
}

func TestDecodeWrapsFileOpenError(t *testing.T) {
	d := NewWAVDecoder()
	_, err := d.Decode("/nonexistent/path/to/file.wav")
	var decErr *Error
	if !errors.As(err, &decErr) || decErr.Code != ErrIO || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want an IO *Error wrapping the file open failure", err)
	}
}

// encodeTestWAV builds a minimal PCM-16 WAV byte stream without depending
// on the wav package, to keep decode's tests self-contained.
func encodeTestWAV(t *testing.T, samples []float64, sampleRate, channels int) []byte {
	t.Helper()
	var out bytes.Buffer

	dataBytes := uint32(len(samples) * 2)
	blockAlign := uint16(channels * 2)
	byteRate := uint32(sampleRate) * uint32(blockAlign)

	out.WriteString("RIFF")
	writeU32(&out, 36+dataBytes)
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	writeU32(&out, 16)
	writeU16(&out, 1)
	writeU16(&out, uint16(channels))
	writeU32(&out, uint32(sampleRate))
	writeU32(&out, byteRate)
	writeU16(&out, blockAlign)
	writeU16(&out, 16)
	out.WriteString("data")
	writeU32(&out, dataBytes)

	for _, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		writeU16(&out, uint16(int16(s*32767.0)))
	}

	return out.Bytes()
}

func buildMinimalWAVHeader(format, bits uint16, channels uint16, sampleRate uint32) []byte {
	var out bytes.Buffer
	blockAlign := channels * (bits / 8)
	byteRate := sampleRate * uint32(blockAlign)

	out.WriteString("RIFF")
	writeU32(&out, 36)
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	writeU32(&out, 16)
	writeU16(&out, format)
	writeU16(&out, channels)
	writeU32(&out, sampleRate)
	writeU32(&out, byteRate)
	writeU16(&out, blockAlign)
	writeU16(&out, bits)
	out.WriteString("data")
	writeU32(&out, 0)

	return out.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}

func writeU32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}
