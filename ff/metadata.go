package ff

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jpillora/longestcommon"
)

const timebase = "1/1000" //milliseconds

const metadataName = ".vidmerge-meta.txt"

// chapterNames strips the prefix and suffix shared by all names, so
// "Part 1 - Intro", "Part 2 - Setup" become "1 - Intro", "2 - Setup".
func chapterNames(files mediaFiles) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	if len(names) > 1 {
		longestcommon.TrimPrefix(names)
		longestcommon.TrimSuffix(names)
	}
	for i, f := range files {
		n := strings.TrimSpace(nonAlpha.ReplaceAllString(names[i], ""))
		if n == "" {
			n = f.Name
		}
		names[i] = n
	}
	return names
}

// metadataContents renders an ffmetadata file with one chapter per input.
func metadataContents(files mediaFiles) ([]byte, error) {
	b := bytes.Buffer{}
	b.WriteString(";FFMETADATA1\n")
	b.WriteString("encoded_by=vidmerge\n")
	names := chapterNames(files)
	offset := time.Duration(0)
	for i, f := range files {
		if f.Duration <= 0 {
			return nil, errors.Newf("unknown duration: %s", f.Path)
		}
		b.WriteString("[CHAPTER]\n")
		b.WriteString("TIMEBASE=" + timebase + "\n")
		b.WriteString("START=" + strconv.FormatInt(offset.Milliseconds(), 10) + "\n")
		offset += f.Duration
		b.WriteString("END=" + strconv.FormatInt(offset.Milliseconds(), 10) + "\n")
		b.WriteString("title=" + escapeMetadata(names[i]) + "\n")
	}
	return b.Bytes(), nil
}

// escapeMetadata escapes the characters ffmetadata treats as special.
func escapeMetadata(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "=", `\=`, ";", `\;`, "#", `\#`, "\n", `\`+"\n")
	return r.Replace(s)
}

func writeMetadata(dir string, files mediaFiles) (string, error) {
	contents, err := metadataContents(files)
	if err != nil {
		return "", err
	}
	file := filepath.Join(dir, metadataName)
	if err := os.WriteFile(file, contents, 0o644); err != nil {
		return "", errors.Wrap(err, "write metadata")
	}
	return file, nil
}
