// Package decode implements spec.md §6's decoder interface: turning an
// opaque source string (file path or URL) into an *audio.Buffer of
// interleaved float64 PCM in [-1, 1]. Grounded in the teacher's
// transcode/decoder.go (FFmpegDecoder) and original_source's
// wav_reader.cpp (WAVDecoder).
package decode

import "github.com/a1bertle/music-bpm-detection/audio"

// Decoder turns an opaque source into a decoded audio buffer.
type Decoder interface {
	Decode(source string) (*audio.Buffer, error)
}

// Error codes for the DecodeError/IOError taxonomy (spec §7).
const (
	ErrIO     = "IO_ERROR"
	ErrFormat = "DECODE_ERROR"
)

// Error is a structured decode failure carrying the offending source,
// grounded in the teacher's StreamError (pkg/stream/common/errors.go).
type Error struct {
	Source  string
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Source + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(source, code, message string, cause error) *Error {
	return &Error{Source: source, Code: code, Message: message, Cause: cause}
}
