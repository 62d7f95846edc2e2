package ff

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Failure kinds. Every error returned by Merge is marked with exactly one of
// these, test with errors.Is.
var (
	ErrEngineUnavailable   = errors.New("ffmpeg is not available. Please install it first.")
	ErrDirectoryNotFound   = errors.New("directory not found")
	ErrNoSupportedFiles    = errors.New("no supported files found")
	ErrMixedMediaKinds     = errors.New("mixed video and audio files")
	ErrProbeFailed         = errors.New("probe failed")
	ErrNormalizationFailed = errors.New("fps normalization failed")
	ErrMergeFailed         = errors.New("merge failed")
)

// EngineError describes a failed ffmpeg invocation: which step, on which
// file, and what ffmpeg printed.
type EngineError struct {
	Op     string
	Path   string
	Output string
	Err    error
}

func (e *EngineError) Error() string {
	msg := e.Op + ": " + e.Path
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if last := lastLine(e.Output); last != "" {
		msg += ": " + last
	}
	return msg
}

func (e *EngineError) Unwrap() error { return e.Err }

// engineFailure wraps an engine call failure and marks it with kind.
func engineFailure(kind error, op, path, output string, err error) error {
	return errors.Mark(&EngineError{Op: op, Path: path, Output: output, Err: err}, kind)
}

// EngineOutput returns the captured ffmpeg output carried by err, if any.
func EngineOutput(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Output
	}
	return ""
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
