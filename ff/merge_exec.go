package ff

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// outputPath is the merged artifact inside the target dir.
func (m *merger) outputPath(dir string, k Kind) string {
	return filepath.Join(dir, artifactName+"."+m.Config.outputExt(k))
}

// mergeFiles runs the single concat invocation. The output only exists
// afterwards if ffmpeg succeeded.
func (m *merger) mergeFiles(ctx context.Context, manifest, metadata, output string, total time.Duration) error {
	if err := m.removeStale(output); err != nil {
		return errors.Mark(err, ErrMergeFailed)
	}
	m.log.Info().Str("output", output).Msg("Output to")
	job := ConcatJob{Manifest: manifest, Metadata: metadata, Output: output, Duration: total}
	out, err := m.engine.Concat(ctx, job)
	if err != nil {
		if rmErr := os.Remove(output); rmErr != nil && !os.IsNotExist(rmErr) {
			m.log.Warn().Err(rmErr).Str("output", output).Msg("cannot remove partial output")
		}
		return engineFailure(ErrMergeFailed, "merge", output, out, err)
	}
	if _, err := os.Stat(output); err != nil {
		return engineFailure(ErrMergeFailed, "merge", output, out, errors.New("ffmpeg produced no output"))
	}
	return nil
}

// removeStale deletes the artifact of a previous run.
func (m *merger) removeStale(output string) error {
	if _, err := os.Stat(output); err != nil {
		return nil
	}
	m.log.Debug().Str("file", filepath.Base(output)).Msg("Removing old data")
	return errors.Wrap(os.Remove(output), "remove old output")
}
