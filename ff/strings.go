package ff

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// time=00:01:39.28
var timeRe = regexp.MustCompile(`time=(\d\d):(\d\d):(\d\d)\.(\d\d)`)

// Duration: 00:00:05.00, start: 0.000000, bitrate: 1010 kb/s
var durationRe = regexp.MustCompile(`Duration: (\d+):(\d\d):(\d\d)\.(\d\d)`)

// Stream #0:0(und): Video: h264 (High), yuv420p, 640x360, 880 kb/s, 29.97 fps, 29.97 tbr, 30k tbn
var (
	videoStreamRe = regexp.MustCompile(`Stream #\d+:\d+.*: Video: `)
	fpsRe         = regexp.MustCompile(`[,\s](\d+(?:\.\d+)?)(k?) fps\b`)
	tbrRe         = regexp.MustCompile(`[,\s](\d+(?:\.\d+)?)(k?) tbr\b`)
)

var nonAlpha = regexp.MustCompile(`[^\s\p{L}\p{N}_\-]`)

var videoExts = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".avi": true, ".m4v": true,
	".webm": true, ".flv": true, ".wmv": true, ".mpg": true, ".mpeg": true,
	".ts": true, ".m2ts": true, ".3gp": true, ".ogv": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".m4a": true, ".m4b": true, ".aac": true, ".wav": true,
	".flac": true, ".ogg": true, ".opus": true, ".wma": true, ".aiff": true,
}

func mustInt(s string) (i int) {
	i, _ = strconv.Atoi(s)
	return
}

// kindOf classifies path by extension, ok is false for unsupported files.
func kindOf(path string) (k Kind, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExts[ext]:
		return Video, true
	case audioExts[ext]:
		return Audio, true
	}
	return 0, false
}

// parseFrameRate extracts the frame rate of the first real video stream from
// ffmpeg's "-i" diagnostics. Cover art streams are skipped. When the stream
// does not report fps, its tbr is used instead.
func parseFrameRate(output string) (float64, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !videoStreamRe.MatchString(line) || strings.Contains(line, "attached pic") {
			continue
		}
		if fps, ok := matchRate(fpsRe, line); ok {
			return fps, true
		}
		if tbr, ok := matchRate(tbrRe, line); ok {
			return tbr, true
		}
	}
	return 0, false
}

func matchRate(re *regexp.Regexp, line string) (float64, bool) {
	m := re.FindStringSubmatch(line)
	if len(m) == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	if m[2] == "k" {
		f *= 1000
	}
	return f, true
}

// parseDuration returns the input duration reported by ffmpeg, zero when
// unknown (e.g. "Duration: N/A").
func parseDuration(output string) time.Duration {
	m := durationRe.FindStringSubmatch(output)
	if len(m) == 0 {
		return 0
	}
	return clock(m[1:])
}

// parseProgress returns the position from the last "time=" stat in b.
func parseProgress(b string) (time.Duration, bool) {
	all := timeRe.FindAllStringSubmatch(b, -1)
	if len(all) == 0 {
		return 0, false
	}
	return clock(all[len(all)-1][1:]), true
}

// clock converts hours, minutes, seconds, centiseconds.
func clock(m []string) time.Duration {
	return time.Duration(mustInt(m[0]))*time.Hour +
		time.Duration(mustInt(m[1]))*time.Minute +
		time.Duration(mustInt(m[2]))*time.Second +
		time.Duration(mustInt(m[3])*10)*time.Millisecond
}

// formatRate renders a frame rate the way ffmpeg options expect it.
func formatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}

// filterRate renders fps for the fps filter. NTSC rates (29.97, 59.94, 23.976)
// are written as N/1001 so copies match untouched inputs exactly.
func filterRate(fps float64) string {
	n := math.Round(fps * 1.001)
	ntsc := n * 1000 / 1001
	if n > 0 && math.Abs(fps-ntsc) < 0.005 && math.Abs(fps-n) > 0.005 {
		return strconv.FormatFloat(n*1000, 'f', 0, 64) + "/1001"
	}
	return formatRate(fps)
}
