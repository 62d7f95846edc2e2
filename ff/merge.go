package ff

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jpillora/longestcommon"
	"github.com/rs/zerolog"
)

// Merge merges every video or audio file in c.TargetDir into
// <TargetDir>/output.<ext> using engine. The confirmation line is written
// to stdout, everything else goes to log.
func Merge(ctx context.Context, c Config, engine Engine, log zerolog.Logger, stdout io.Writer) error {
	m := merger{Config: c, engine: engine, log: log, stdout: stdout}
	return m.Merge(ctx)
}

type merger struct {
	Config
	engine Engine
	log    zerolog.Logger
	stdout io.Writer
	//parent of the workspace, defaults to os.TempDir()
	tempDir string
	stage   stage
}

type stage int

const (
	stageInit stage = iota
	stageEngineCheck
	stageScan
	stageInspect
	stageNormalize
	stageManifest
	stageMerge
	stageCleanup
	stageDone
	stageFailed
)

var stageNames = [...]string{"init", "engine-check", "scan", "inspect", "normalize", "manifest", "merge", "cleanup", "done", "failed"}

func (s stage) String() string {
	return stageNames[s]
}

func (m *merger) enter(s stage) {
	m.stage = s
	m.log.Debug().Stringer("stage", s).Msg("enter")
}

func (m *merger) fail(err error) error {
	m.log.Debug().Stringer("stage", m.stage).Err(err).Msg("failed")
	m.stage = stageFailed
	return err
}

func (m *merger) Merge(ctx context.Context) error {
	m.enter(stageEngineCheck)
	if !m.engine.Available() {
		return m.fail(ErrEngineUnavailable)
	}
	m.enter(stageScan)
	files, err := scanDir(m.TargetDir, m.NaturalSort, m.log)
	if err != nil {
		return m.fail(err)
	}
	kind, err := classify(files)
	if err != nil {
		return m.fail(err)
	}
	dir, err := canonical(m.TargetDir)
	if err != nil {
		return m.fail(errors.Mark(err, ErrDirectoryNotFound))
	}
	m.logInputs(files, kind)
	plan := fpsPlan{}
	if kind == Video || m.Chapters {
		m.enter(stageInspect)
		if err := m.probeFiles(ctx, files); err != nil {
			return m.fail(err)
		}
	}
	if kind == Video {
		plan = planFrameRate(files, m.Config)
		m.logPlan(files, plan)
	}
	output := m.outputPath(dir, kind)
	err = m.withWorkspace(plan.needed(), func(ws *workspace) error {
		paths := files.paths()
		listDir := dir
		if ws != nil {
			m.enter(stageNormalize)
			var err error
			if paths, err = m.normalizeFiles(ctx, ws, files, plan); err != nil {
				return err
			}
			listDir = ws.root
		}
		m.enter(stageManifest)
		manifest, err := writeManifest(listDir, paths)
		if err != nil {
			return err
		}
		if ws == nil {
			defer m.removeTemp(manifest)
		}
		m.log.Debug().Str("list", manifest).Msg("merge list written")
		metadata := ""
		if m.Chapters {
			if metadata, err = writeMetadata(listDir, files); err != nil {
				return err
			}
			if ws == nil {
				defer m.removeTemp(metadata)
			}
		}
		m.enter(stageMerge)
		return m.mergeFiles(ctx, manifest, metadata, output, files.duration())
	})
	m.enter(stageCleanup)
	if err != nil {
		return m.fail(err)
	}
	m.enter(stageDone)
	PrintGenerated(m.stdout, output)
	return nil
}

// removeTemp deletes a list file written into the target dir.
func (m *merger) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.log.Warn().Err(err).Str("file", path).Msg("cannot remove temp file")
	}
}

func (m *merger) logInputs(files mediaFiles, kind Kind) {
	common := longestcommon.Prefix(files.paths())
	dir := common[:strings.LastIndex(common, string(filepath.Separator))+1]
	m.log.Info().Msgf("Input %s files #%d under '%s'", kind, len(files), dir)
	for i, f := range files {
		m.log.Debug().Msgf("[#%3d] %s", i+1, strings.TrimPrefix(f.Path, dir))
	}
}

func (m *merger) logPlan(files mediaFiles, p fpsPlan) {
	switch {
	case m.SkipFpsChanger:
		m.log.Info().Msg("Skipping fps changer")
	case !p.needed():
		m.log.Info().Msgf("All videos at %s fps", formatRate(p.Target))
	default:
		m.log.Info().Msgf("Changing fps of #%d of #%d videos to %s", len(p.Normalize), len(files), formatRate(p.Target))
	}
}
