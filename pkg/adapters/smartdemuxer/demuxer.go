// Package smartdemuxer picks a container implementation per file: the native
// ISO-BMFF index reader for MP4 and MOV, ffprobe for everything else.
package smartdemuxer

import (
	"fmt"
	"sync"

	"github.com/user/stills/pkg/adapters/containerdetect"
	"github.com/user/stills/pkg/ports"
)

// Mode selects how files are opened.
type Mode string

const (
	// ModeAuto uses the native reader for ISO-BMFF files and falls back to
	// ffmpeg when it fails.
	ModeAuto Mode = "auto"
	// ModeFFmpeg always uses ffprobe and ffmpeg.
	ModeFFmpeg Mode = "ffmpeg"
	// ModeMP4 always uses the native reader.
	ModeMP4 Mode = "mp4"
)

// ParseMode parses a mode name. The empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeFFmpeg, ModeMP4:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown demuxer %q", s)
	}
}

// Backend names the implementation chosen for a file.
type Backend string

const (
	BackendMP4    Backend = "mp4"
	BackendFFmpeg Backend = "ffmpeg"
)

// Demuxer dispatches Open to the native or ffmpeg demuxer. The choice for a
// path is remembered, so concurrent tasks on one file agree and a fallback
// is only reported once.
type Demuxer struct {
	mode   Mode
	native ports.Demuxer
	ffmpeg ports.Demuxer
	detect func(path string) (containerdetect.Format, error)
	logger ports.Logger

	mu     sync.Mutex
	chosen map[string]Backend
}

// New creates a Demuxer. native may be nil in ModeFFmpeg.
func New(mode Mode, native, ffmpeg ports.Demuxer, logger ports.Logger) *Demuxer {
	return &Demuxer{
		mode:   mode,
		native: native,
		ffmpeg: ffmpeg,
		detect: containerdetect.DetectFromFile,
		logger: logger.WithComponent("demux"),
		chosen: make(map[string]Backend),
	}
}

// Open implements ports.Demuxer.
func (d *Demuxer) Open(path string) (ports.Container, error) {
	switch d.mode {
	case ModeFFmpeg:
		return d.ffmpeg.Open(path)
	case ModeMP4:
		return d.native.Open(path)
	}

	backend, known := d.backend(path)
	if !known {
		backend = BackendFFmpeg
		if format, err := d.detect(path); err == nil && format == containerdetect.FormatISOBMFF && d.native != nil {
			backend = BackendMP4
		}
		d.logger.Debug("Opening %s with %s demuxer", path, string(backend))
	}

	if backend == BackendMP4 {
		c, err := d.native.Open(path)
		if err == nil {
			d.remember(path, BackendMP4)
			return c, nil
		}
		if d.remember(path, BackendFFmpeg) {
			d.logger.Warn("Native demux failed for %s, falling back to ffmpeg: %v", path, err)
		}
	} else {
		d.remember(path, BackendFFmpeg)
	}
	return d.ffmpeg.Open(path)
}

// Backend reports which implementation was used for path, if it was opened.
func (d *Demuxer) Backend(path string) (Backend, bool) {
	return d.backend(path)
}

func (d *Demuxer) backend(path string) (Backend, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.chosen[path]
	return b, ok
}

// remember records b for path and reports whether this changed the record.
func (d *Demuxer) remember(path string, b Backend) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.chosen[path] == b {
		return false
	}
	d.chosen[path] = b
	return true
}

var _ ports.Demuxer = (*Demuxer)(nil)
