package ff

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
)

// rates closer than this are the same rate
const fpsEpsilon = 0.001

func (m *merger) probeFiles(ctx context.Context, files mediaFiles) error {
	for _, f := range files {
		if err := m.probeFile(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (m *merger) probeFile(ctx context.Context, f *mediaFile) error {
	if f.probed {
		return nil
	}
	m.log.Debug().Str("file", f.Path).Msg("probe")
	out, err := m.engine.Probe(ctx, f.Path)
	if err != nil {
		return engineFailure(ErrProbeFailed, "probe", f.Path, out, err)
	}
	//audio is only probed for its duration
	if f.Kind == Video {
		fps, ok := parseFrameRate(out)
		if !ok {
			return engineFailure(ErrProbeFailed, "probe", f.Path, out, errors.New("no frame rate reported"))
		}
		f.FPS = fps
	}
	f.Duration = parseDuration(out)
	f.probed = true
	m.log.Debug().Str("file", f.Name+f.Ext).Float64("fps", f.FPS).Dur("duration", f.Duration).Msg("probed")
	return nil
}

// fpsPlan is the inspector's decision: the target rate and which files must be
// re-encoded to reach it.
type fpsPlan struct {
	Target    float64
	Normalize mediaFiles
}

func (p fpsPlan) needed() bool {
	return len(p.Normalize) > 0
}

// planFrameRate decides the target frame rate for probed video files.
// An explicit fps wins over the inputs, otherwise the highest rate wins so no
// input loses frames.
func planFrameRate(files mediaFiles, c Config) fpsPlan {
	p := fpsPlan{}
	for _, f := range files {
		p.Target = math.Max(p.Target, f.FPS)
	}
	if c.SkipFpsChanger {
		return p
	}
	if c.FPS > 0 {
		p.Target = float64(c.FPS)
	}
	for _, f := range files {
		if !sameRate(f.FPS, p.Target) {
			p.Normalize = append(p.Normalize, f)
		}
	}
	return p
}

func sameRate(a, b float64) bool {
	return math.Abs(a-b) < fpsEpsilon
}
