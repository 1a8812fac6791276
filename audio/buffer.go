// Package audio defines the buffer type that flows between analysis
// stages and the errors raised when a buffer fails validation.
package audio

// Buffer is a block of interleaved floating-point samples in [-1, 1].
//
// Ownership: produced by a decoder, consumed read-only by every analysis
// stage. No stage mutates a Buffer it did not create.
type Buffer struct {
	Samples    []float64
	SampleRate int
	Channels   int
	Title      string
}

// NumFrames returns the number of per-channel sample frames in the buffer.
func (b *Buffer) NumFrames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Downmix averages all channels per frame into a new mono buffer. The
// source buffer is left untouched.
func (b *Buffer) Downmix() (*Buffer, error) {
	if b.Channels <= 0 {
		return nil, &Error{Code: ErrInvalidChannels, Message: "channel count must be positive"}
	}
	if b.SampleRate <= 0 {
		return nil, &Error{Code: ErrInvalidSampleRate, Message: "sample rate must be positive"}
	}

	frames := b.NumFrames()
	mono := make([]float64, frames)

	if b.Channels == 1 {
		copy(mono, b.Samples[:frames])
		return &Buffer{Samples: mono, SampleRate: b.SampleRate, Channels: 1, Title: b.Title}, nil
	}

	for f := 0; f < frames; f++ {
		sum := 0.0
		base := f * b.Channels
		for c := 0; c < b.Channels; c++ {
			sum += b.Samples[base+c]
		}
		mono[f] = sum / float64(b.Channels)
	}

	return &Buffer{Samples: mono, SampleRate: b.SampleRate, Channels: 1, Title: b.Title}, nil
}
