package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jpillora/opts"
	"github.com/jpillora/vidmerge/ff"
)

var version = "0.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	c := ff.Config{}
	opts.New(&c).
		Name("vidmerge").
		Summary("Merges all videos (or all audio files) of a directory into output.<ext>").
		Version(version).
		Parse()
	if err := c.Validate(); err != nil {
		ff.PrintError(os.Stderr, err)
		return 1
	}
	log := ff.NewLogger(os.Stderr, c.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := ff.NewFFmpeg(c, log)
	if err := ff.Merge(ctx, c, engine, log, os.Stdout); err != nil {
		if out := ff.EngineOutput(err); out != "" && c.Verbose {
			for _, l := range tail(out, 20) {
				log.Debug().Msg(l)
			}
		}
		ff.PrintError(os.Stderr, err)
		return 1
	}
	return 0
}

// tail returns the last n non-empty lines of s.
func tail(s string, n int) []string {
	lines := []string{}
	for _, l := range strings.Split(strings.TrimSpace(s), "\n") {
		if l = strings.TrimRight(l, "\r "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
