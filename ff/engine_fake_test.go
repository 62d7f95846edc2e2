package ff

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeEngine stands in for ffmpeg. Frame rates are keyed by file base name.
type fakeEngine struct {
	unavailable   bool
	rates         map[string]float64
	noRate        map[string]bool
	failNormalize bool
	failConcat    bool

	probed     []string
	normalized []NormalizeJob
	concats    []ConcatJob
	manifests  []string //manifest contents at concat time
	metadata   []string //metadata contents at concat time
}

func (e *fakeEngine) Available() bool { return !e.unavailable }

func (e *fakeEngine) Probe(ctx context.Context, path string) (string, error) {
	e.probed = append(e.probed, path)
	name := filepath.Base(path)
	if e.noRate[name] {
		return fmt.Sprintf("%s: Invalid data found when processing input\n", path), nil
	}
	rate, ok := e.rates[name]
	if !ok {
		rate = 25
	}
	if strings.HasSuffix(name, ".mp3") {
		return audioSample(path), nil
	}
	return videoSample(path, formatRate(rate)), nil
}

func (e *fakeEngine) Normalize(ctx context.Context, job NormalizeJob) (string, error) {
	e.normalized = append(e.normalized, job)
	if e.failNormalize {
		return "Error while opening encoder for output stream #0:0\n", errors.New("exit status 1")
	}
	return "", os.WriteFile(job.Output, []byte("normalized"), 0o644)
}

func (e *fakeEngine) Concat(ctx context.Context, job ConcatJob) (string, error) {
	e.concats = append(e.concats, job)
	b, err := os.ReadFile(job.Manifest)
	if err != nil {
		return "", err
	}
	e.manifests = append(e.manifests, string(b))
	if job.Metadata != "" {
		meta, err := os.ReadFile(job.Metadata)
		if err != nil {
			return "", err
		}
		e.metadata = append(e.metadata, string(meta))
	}
	if e.failConcat {
		//ffmpeg leaves a partial file behind
		_ = os.WriteFile(job.Output, []byte("partial"), 0o644)
		return "[mp4 @ 0x1] Non-monotonous DTS in output stream 0:0\nConversion failed!\n", errors.New("exit status 1")
	}
	return "", os.WriteFile(job.Output, []byte("merged"), 0o644)
}

// effectiveRates returns the frame rate of each manifest entry of the last
// concat: the target rate for normalized copies, the probed rate otherwise.
func (e *fakeEngine) effectiveRates(t *testing.T) []float64 {
	t.Helper()
	require.NotEmpty(t, e.manifests)
	normalized := map[string]float64{}
	for _, j := range e.normalized {
		normalized[j.Output] = j.FPS
	}
	rates := []float64{}
	for _, p := range manifestPaths(e.manifests[len(e.manifests)-1]) {
		if fps, ok := normalized[p]; ok {
			rates = append(rates, fps)
			continue
		}
		rate, ok := e.rates[filepath.Base(p)]
		if !ok {
			rate = 25
		}
		rates = append(rates, rate)
	}
	return rates
}

func manifestPaths(contents string) []string {
	paths := []string{}
	for _, l := range strings.Split(strings.TrimSpace(contents), "\n") {
		l = strings.TrimSuffix(strings.TrimPrefix(l, "file '"), "'")
		paths = append(paths, strings.ReplaceAll(l, `'\''`, "'"))
	}
	return paths
}

func videoSample(path, rate string) string {
	return "Input #0, mov,mp4,m4a,3gp,3g2,mj2, from '" + path + "':\n" +
		"  Metadata:\n" +
		"    major_brand     : isom\n" +
		"  Duration: 00:00:05.00, start: 0.000000, bitrate: 1010 kb/s\n" +
		"  Stream #0:0[0x1](und): Video: h264 (High) (avc1 / 0x31637661), yuv420p(progressive), 640x360 [SAR 1:1 DAR 16:9], 880 kb/s, " +
		rate + " fps, " + rate + " tbr, 12800 tbn (default)\n" +
		"  Stream #0:1[0x2](und): Audio: aac (LC) (mp4a / 0x6134706D), 44100 Hz, stereo, fltp, 128 kb/s (default)\n" +
		"At least one output file must be specified\n"
}

func audioSample(path string) string {
	return "Input #0, mp3, from '" + path + "':\n" +
		"  Duration: 00:00:03.50, start: 0.025057, bitrate: 128 kb/s\n" +
		"  Stream #0:0: Audio: mp3, 44100 Hz, stereo, fltp, 128 kb/s\n" +
		"  Stream #0:1: Video: mjpeg (Baseline), yuvj420p(pc, bt470bg/unknown/unknown), 500x500, 90k tbr, 90k tbn (attached pic)\n" +
		"At least one output file must be specified\n"
}

// newTestMerger returns a merger writing its workspace under a private temp
// dir and its confirmation into the returned buffer.
func newTestMerger(t *testing.T, c Config, e Engine) (*merger, *bytes.Buffer) {
	t.Helper()
	stdout := &bytes.Buffer{}
	return &merger{
		Config:  c,
		engine:  e,
		log:     zerolog.Nop(),
		stdout:  stdout,
		tempDir: t.TempDir(),
	}, stdout
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644))
	}
}
