package ffmpegcontainer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/user/stills/pkg/ports"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	TimeBase   string `json:"time_base"`
	StartPTS   *int64 `json:"start_pts"`
	DurationTS *int64 `json:"duration_ts"`
}

// probeStreamInfo asks ffprobe for the first video stream of path.
func probeStreamInfo(ffprobe, path string) (ports.StreamInfo, int64, error) {
	cmd := exec.Command(ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=index,codec_name,width,height,time_base,start_pts,duration_ts",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return ports.StreamInfo{}, 0, fmt.Errorf("%w: %v: %s", ErrProbeFailed, err, strings.TrimSpace(stderr.String()))
	}
	return parseStreamInfo(out)
}

func parseStreamInfo(data []byte) (ports.StreamInfo, int64, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return ports.StreamInfo{}, 0, fmt.Errorf("%w: decode ffprobe output: %v", ErrProbeFailed, err)
	}
	if len(out.Streams) == 0 {
		return ports.StreamInfo{}, 0, ports.ErrNoVideoStream
	}
	s := out.Streams[0]

	tb, err := parseRational(s.TimeBase)
	if err != nil {
		return ports.StreamInfo{}, 0, fmt.Errorf("%w: time base: %v", ErrProbeFailed, err)
	}

	info := ports.StreamInfo{
		Index:     s.Index,
		CodecName: s.CodecName,
		TimeBase:  tb,
		Width:     s.Width,
		Height:    s.Height,
	}
	if s.DurationTS != nil {
		info.Duration = ports.TS(*s.DurationTS)
	}
	var start int64
	if s.StartPTS != nil {
		start = *s.StartPTS
	}
	return info, start, nil
}

// parseRational parses "num/den" as printed by ffprobe.
func parseRational(s string) (ports.Rational, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return ports.Rational{}, fmt.Errorf("malformed rational %q", s)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return ports.Rational{}, fmt.Errorf("malformed rational %q: %w", s, err)
	}
	d, err := strconv.ParseInt(den, 10, 64)
	if err != nil {
		return ports.Rational{}, fmt.Errorf("malformed rational %q: %w", s, err)
	}
	r := ports.Rational{Num: n, Den: d}
	if !r.Valid() {
		return ports.Rational{}, fmt.Errorf("non-positive rational %q", s)
	}
	return r, nil
}

// parseFrameLine parses one "key_frame,pts" CSV line of ffprobe -show_entries
// frame=key_frame,pts. An N/A pts yields an undefined timestamp. ok is false
// for lines that carry no frame.
func parseFrameLine(line string) (ports.Frame, bool, error) {
	var fields []string
	for _, f := range strings.Split(line, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return ports.Frame{}, false, nil
	}
	if len(fields) < 2 {
		return ports.Frame{}, false, fmt.Errorf("malformed frame line %q", line)
	}

	f := ports.Frame{Keyframe: fields[0] == "1"}
	if fields[1] != "N/A" {
		pts, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return ports.Frame{}, false, fmt.Errorf("malformed frame line %q: %w", line, err)
		}
		f.PTS = ports.TS(pts)
	}
	return f, true, nil
}
