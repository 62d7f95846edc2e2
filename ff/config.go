package ff

import (
	"strings"

	"github.com/cockroachdb/errors"
)

type Config struct {
	TargetDir      string `opts:"mode=arg, help=directory holding the video or audio files to merge"`
	Format         string `help:"Output file extension (defaults to mp4 for video, mp3 for audio)"`
	FPS            int    `opts:"name=fps" help:"Frame rate every video is normalized to before merging"`
	SkipFpsChanger bool   `help:"Merge videos as-is even when their frame rates differ"`
	Chapters       bool   `help:"Add a chapter per input file to the output"`
	NaturalSort    bool   `help:"Order files by natural number order (2.mp4 before 10.mp4)"`
	NoProgress     bool   `help:"Hide the ffmpeg progress bar"`
	Verbose        bool   `help:"Show debug output"`
}

// Validate normalizes c in place and rejects values the pipeline cannot use.
func (c *Config) Validate() error {
	if c.TargetDir == "" {
		return errors.New("target directory is required")
	}
	if c.FPS < 0 {
		return errors.Newf("fps must be positive, got %d", c.FPS)
	}
	c.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Format), "."))
	if strings.ContainsAny(c.Format, `/\`) {
		return errors.Newf("invalid format: %q", c.Format)
	}
	return nil
}

// outputExt is the extension of the merged artifact for a run of kind k.
func (c Config) outputExt(k Kind) string {
	if c.Format != "" {
		return c.Format
	}
	if k == Audio {
		return "mp3"
	}
	return "mp4"
}
