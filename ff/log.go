package ff

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// NewLogger returns the console logger passed through a run. Debug output is
// only shown when verbose.
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      color.NoColor,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(cw).Level(level)
}

var (
	successStyle = color.New(color.FgGreen)
	errorStyle   = color.New(color.FgRed)
)

// PrintGenerated reports the finished artifact.
func PrintGenerated(w io.Writer, path string) {
	successStyle.Fprintf(w, "🐣 Generated %s\n", path)
}

// PrintError reports a failed run as a single line.
func PrintError(w io.Writer, err error) {
	errorStyle.Fprintln(w, fmt.Sprintf("❌ %s", err))
}
