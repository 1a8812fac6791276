package audio

// Error codes for the InvalidAudio / NumericFailure taxonomy (spec §7).
const (
	ErrInvalidChannels   = "INVALID_CHANNELS"
	ErrInvalidSampleRate = "INVALID_SAMPLE_RATE"
	ErrEmptySamples      = "EMPTY_SAMPLES"
	ErrInvalidFFTSize    = "INVALID_FFT_SIZE"
	ErrFFTFailure        = "FFT_FAILURE"
)

// Error is a structured error carrying the offending parameter, grounded
// in the teacher's StreamError (pkg/stream/common/errors.go).
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error with no underlying cause.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an *Error that wraps cause.
func Wrap(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
