package ff

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Engine is the external media engine. Each call blocks until the engine
// exits and returns whatever it printed on its diagnostic stream.
type Engine interface {
	// Available reports whether the engine can be run at all.
	Available() bool
	// Probe returns the engine's description of the file at path.
	Probe(ctx context.Context, path string) (string, error)
	// Normalize re-encodes a video at a new frame rate.
	Normalize(ctx context.Context, job NormalizeJob) (string, error)
	// Concat stream-copies every file listed in a manifest into one output.
	Concat(ctx context.Context, job ConcatJob) (string, error)
}

type NormalizeJob struct {
	Input    string
	Output   string
	FPS      float64
	Duration time.Duration //expected, for progress only
}

type ConcatJob struct {
	Manifest string
	Metadata string //optional ffmetadata file
	Output   string
	Duration time.Duration //expected, for progress only
}

// FFmpeg runs the ffmpeg binary found on PATH.
type FFmpeg struct {
	Bin      string
	Verbose  bool //tee ffmpeg output to stderr
	Progress bool //progress bar when stderr is a terminal
	Log      zerolog.Logger
}

func NewFFmpeg(c Config, log zerolog.Logger) *FFmpeg {
	return &FFmpeg{
		Bin:      "ffmpeg",
		Verbose:  c.Verbose,
		Progress: !c.NoProgress,
		Log:      log,
	}
}

func (f *FFmpeg) bin() string {
	if f.Bin == "" {
		return "ffmpeg"
	}
	return f.Bin
}

func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.bin())
	return err == nil
}

// Probe runs "ffmpeg -i path". ffmpeg always exits non-zero without an
// output file, so only a failure to run at all is an error.
func (f *FFmpeg) Probe(ctx context.Context, path string) (string, error) {
	out, err := f.run(ctx, "", 0, probeArgs(path)...)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		err = nil
	}
	return out, err
}

func (f *FFmpeg) Normalize(ctx context.Context, job NormalizeJob) (string, error) {
	return f.run(ctx, "fps", job.Duration, normalizeArgs(job)...)
}

func (f *FFmpeg) Concat(ctx context.Context, job ConcatJob) (string, error) {
	return f.run(ctx, "merge", job.Duration, concatArgs(job)...)
}

func probeArgs(path string) []string {
	return []string{"-hide_banner", "-nostdin", "-i", path}
}

func normalizeArgs(job NormalizeJob) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", job.Input,
		"-filter:v", "fps=" + filterRate(job.FPS),
		"-c:a", "copy",
		job.Output,
	}
}

func concatArgs(job ConcatJob) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-f", "concat", "-safe", "0",
		"-i", job.Manifest,
	}
	if job.Metadata != "" {
		args = append(args, "-i", job.Metadata, "-map_metadata", "1", "-map_chapters", "1")
	}
	return append(args, "-c", "copy", job.Output)
}

func (f *FFmpeg) run(ctx context.Context, label string, total time.Duration, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, f.bin(), args...)
	errbytes := bytes.Buffer{}
	var w io.Writer = &errbytes
	if f.Verbose {
		w = io.MultiWriter(&errbytes, os.Stderr)
	}
	bar := f.startBar(label, total)
	if bar != nil {
		w = &progressWriter{w: w, bar: bar}
	}
	cmd.Stderr = w
	f.Log.Debug().Str("cmd", cmd.String()).Msg("exec")
	t0 := time.Now()
	err := cmd.Run()
	if bar != nil {
		bar.Finish()
	}
	f.Log.Debug().Dur("took", time.Since(t0)).Err(err).Msg("exec done")
	return errbytes.String(), err
}

func (f *FFmpeg) startBar(label string, total time.Duration) *pb.ProgressBar {
	if !f.Progress || f.Verbose || label == "" || total <= 0 || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	bar := pb.New64(int64(total / (10 * time.Millisecond)))
	bar.Output = os.Stderr
	bar.ShowCounters = false
	bar.ShowFinalTime = true
	bar.Prefix(label + " ")
	return bar.Start()
}

type progressBar interface {
	Set64(int64) *pb.ProgressBar
}

// progressWriter passes ffmpeg stderr through to w and moves the bar to the
// last reported "time=".
type progressWriter struct {
	w   io.Writer
	bar progressBar
}

func (p *progressWriter) Write(b []byte) (int, error) {
	if d, ok := parseProgress(string(b)); ok {
		p.bar.Set64(int64(d / (10 * time.Millisecond)))
	}
	return p.w.Write(b)
}
