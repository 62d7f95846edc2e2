package ff

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// manifestName is hidden so a manifest left in the target dir by a killed
// run is never scanned as input.
const manifestName = ".vidmerge-list.txt"

// manifestContents renders paths in ffmpeg concat demuxer syntax.
func manifestContents(paths []string) string {
	sb := strings.Builder{}
	for _, p := range paths {
		sb.WriteString("file '")
		sb.WriteString(escapeQuote(p))
		sb.WriteString("'\n")
	}
	return sb.String()
}

func escapeQuote(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

// writeManifest writes the concat list for paths into dir.
func writeManifest(dir string, paths []string) (string, error) {
	file := filepath.Join(dir, manifestName)
	if err := os.WriteFile(file, []byte(manifestContents(paths)), 0o644); err != nil {
		return "", errors.Wrap(err, "write merge list")
	}
	return file, nil
}
