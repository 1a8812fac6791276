package wav

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/a1bertle/music-bpm-detection/audio"
)

func TestEncodeWritesRIFFHeader(t *testing.T) {
	buf := &audio.Buffer{Samples: []float64{0, 0.5, -0.5}, SampleRate: 44100, Channels: 1}
	var out bytes.Buffer
	if err := encode(&out, buf); err != nil {
		t.Fatalf("encode returned error: %v", err)
	}

	b := out.Bytes()
	if string(b[0:4]) != "RIFF" {
		t.Errorf("chunk ID = %q, want RIFF", b[0:4])
	}
	if string(b[8:12]) != "WAVE" {
		t.Errorf("format = %q, want WAVE", b[8:12])
	}
	if string(b[12:16]) != "fmt " {
		t.Errorf("subchunk1 ID = %q, want \"fmt \"", b[12:16])
	}
	if string(b[36:40]) != "data" {
		t.Errorf("subchunk2 ID = %q, want data", b[36:40])
	}

	channels := binary.LittleEndian.Uint16(b[22:24])
	if channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	sampleRate := binary.LittleEndian.Uint32(b[24:28])
	if sampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", sampleRate)
	}
	bits := binary.LittleEndian.Uint16(b[34:36])
	if bits != 16 {
		t.Errorf("bits per sample = %d, want 16", bits)
	}

	dataSize := binary.LittleEndian.Uint32(b[40:44])
	if dataSize != uint32(len(buf.Samples)*2) {
		t.Errorf("data size = %d, want %d", dataSize, len(buf.Samples)*2)
	}
}

func TestEncodeClampsOutOfRangeSamples(t *testing.T) {
	buf := &audio.Buffer{Samples: []float64{2.0, -2.0}, SampleRate: 8000, Channels: 1}
	var out bytes.Buffer
	if err := encode(&out, buf); err != nil {
		t.Fatalf("encode returned error: %v", err)
	}

	b := out.Bytes()
	dataStart := 44
	first := int16(binary.LittleEndian.Uint16(b[dataStart : dataStart+2]))
	second := int16(binary.LittleEndian.Uint16(b[dataStart+2 : dataStart+4]))
	if first != maxInt16 {
		t.Errorf("first sample = %d, want %d", first, int(maxInt16))
	}
	if second != -maxInt16 {
		t.Errorf("second sample = %d, want %d", second, -int(maxInt16))
	}
}

func TestClip(t *testing.T) {
	if clip(2.0) != 1.0 {
		t.Errorf("clip(2.0) = %f, want 1.0", clip(2.0))
	}
	if clip(-2.0) != -1.0 {
		t.Errorf("clip(-2.0) = %f, want -1.0", clip(-2.0))
	}
	if clip(0.3) != 0.3 {
		t.Errorf("clip(0.3) = %f, want 0.3", clip(0.3))
	}
}
