package ff

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/facette/natsort"
	"github.com/rs/zerolog"
)

// Kind is the media kind of an input file, derived from its extension.
type Kind int

const (
	Video Kind = iota + 1
	Audio
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	}
	return "unknown"
}

// artifactName is the base name of every merged output.
const artifactName = "output"

type mediaFile struct {
	Path string
	Name string
	Ext  string
	Kind Kind
	//set by the inspector
	FPS      float64
	Duration time.Duration
	probed   bool
}

type mediaFiles []*mediaFile

func (files mediaFiles) paths() []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func (files mediaFiles) duration() time.Duration {
	var d time.Duration
	for _, f := range files {
		d += f.Duration
	}
	return d
}

// scanDir lists the supported, non-hidden files directly inside dir, with
// canonical paths in a deterministic order.
// Entries that cannot be resolved, like dangling symlinks, are skipped.
func scanDir(dir string, naturalSort bool, log zerolog.Logger) (mediaFiles, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Mark(err, ErrDirectoryNotFound)
	}
	if !info.IsDir() {
		return nil, errors.Mark(errors.Newf("%s: not a directory", dir), ErrDirectoryNotFound)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Mark(err, ErrDirectoryNotFound)
	}
	files := mediaFiles{}
	for _, e := range entries {
		name := e.Name()
		if isHidden(name) {
			continue
		}
		kind, ok := kindOf(name)
		if !ok || isArtifact(name) {
			continue
		}
		path, err := canonical(filepath.Join(dir, name))
		if err != nil {
			log.Debug().Err(err).Str("file", name).Msg("skipped")
			continue
		}
		//symlinks are followed, anything but a regular file is skipped
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		ext := filepath.Ext(name)
		files = append(files, &mediaFile{
			Path: path,
			Name: strings.TrimSuffix(name, ext),
			Ext:  ext,
			Kind: kind,
		})
	}
	sortFiles(files, naturalSort)
	return files, nil
}

func sortFiles(files mediaFiles, naturalSort bool) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i].Path, files[j].Path
		if naturalSort && a != b {
			if natsort.Compare(a, b) {
				return true
			}
			if natsort.Compare(b, a) {
				return false
			}
		}
		return a < b
	})
}

// classify returns the single media kind present in files.
func classify(files mediaFiles) (Kind, error) {
	if len(files) == 0 {
		return 0, ErrNoSupportedFiles
	}
	kind := files[0].Kind
	for _, f := range files[1:] {
		if f.Kind != kind {
			return 0, errors.Wrapf(ErrMixedMediaKinds, "%s is %s but %s is %s",
				files[0].Name+files[0].Ext, kind, f.Name+f.Ext, f.Kind)
		}
	}
	return kind, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isArtifact reports whether name is a previous merge result
func isArtifact(name string) bool {
	return strings.TrimSuffix(name, filepath.Ext(name)) == artifactName
}

// canonical returns the absolute, symlink-free form of path.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
