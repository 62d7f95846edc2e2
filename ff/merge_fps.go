package ff

import (
	"context"
	"path/filepath"
)

// normalizeFiles re-encodes every planned file into ws at the target rate and
// returns the path to merge for each input. Files outside the plan map to
// themselves.
func (m *merger) normalizeFiles(ctx context.Context, ws *workspace, files mediaFiles, p fpsPlan) ([]string, error) {
	effective := map[string]string{}
	for _, f := range p.Normalize {
		//the entry name, not the resolved one, is unique within the target dir
		out := filepath.Join(ws.Dir, f.Name+f.Ext)
		m.log.Info().Str("file", f.Name+f.Ext).
			Str("from", formatRate(f.FPS)).Str("to", formatRate(p.Target)).
			Msg("changing fps")
		job := NormalizeJob{
			Input:    f.Path,
			Output:   out,
			FPS:      p.Target,
			Duration: f.Duration,
		}
		if output, err := m.engine.Normalize(ctx, job); err != nil {
			return nil, engineFailure(ErrNormalizationFailed, "change fps", f.Path, output, err)
		}
		effective[f.Path] = out
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
		if out, ok := effective[f.Path]; ok {
			paths[i] = out
		}
	}
	return paths, nil
}
