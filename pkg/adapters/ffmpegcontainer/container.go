// Package ffmpegcontainer implements ports.Container on top of the ffprobe and
// ffmpeg command line tools, which read every container format ffmpeg knows.
//
// Stream metadata comes from one ffprobe call. Frames are scanned by streaming
// the frame timestamps printed by ffprobe, so no pixels are decoded until a
// frame is rasterized with ffmpeg.
package ffmpegcontainer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"

	"github.com/user/stills/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg is not found.
	ErrFFmpegNotFound = errors.New("ffmpegcontainer: ffmpeg not found")

	// ErrFFprobeNotFound is returned when ffprobe is not found.
	ErrFFprobeNotFound = errors.New("ffmpegcontainer: ffprobe not found")

	// ErrProbeFailed is returned when ffprobe cannot read the file.
	ErrProbeFailed = errors.New("ffmpegcontainer: probe failed")

	// ErrRasterFailed is returned when ffmpeg produces no image for a frame.
	ErrRasterFailed = errors.New("ffmpegcontainer: rasterize failed")
)

// Options selects the tool binaries. Empty paths are looked up.
type Options struct {
	FFmpegPath  string
	FFprobePath string
}

// Demuxer opens containers through ffprobe and ffmpeg.
type Demuxer struct {
	ffprobe string
	raster  *Rasterizer
}

// New locates ffprobe and ffmpeg.
func New(opts Options) (*Demuxer, error) {
	ffprobe, err := FindFFprobe(opts.FFprobePath)
	if err != nil {
		return nil, err
	}
	raster, err := NewRasterizer(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	return &Demuxer{ffprobe: ffprobe, raster: raster}, nil
}

// Rasterizer returns the ffmpeg rasterizer, shared with other demuxers.
func (d *Demuxer) Rasterizer() *Rasterizer {
	return d.raster
}

// Open probes path and returns a handle positioned at the start of the stream.
func (d *Demuxer) Open(path string) (ports.Container, error) {
	info, start, err := probeStreamInfo(d.ffprobe, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Container{
		path:     path,
		ffprobe:  d.ffprobe,
		raster:   d.raster,
		info:     info,
		startPTS: start,
	}, nil
}

var _ ports.Demuxer = (*Demuxer)(nil)

// Container is an open video handle. Not safe for concurrent use.
type Container struct {
	path     string
	ffprobe  string
	raster   *Rasterizer
	info     ports.StreamInfo
	startPTS int64

	seek    *int64
	cancel  context.CancelFunc
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	done    bool
}

// Stream returns the selected video stream.
func (c *Container) Stream() ports.StreamInfo {
	return c.info
}

// Seek restarts the frame scan from the keyframe at or before pts.
func (c *Container) Seek(pts int64) error {
	c.stop()
	c.seek = &pts
	return nil
}

// ReadFrame returns the next frame timestamp printed by ffprobe.
func (c *Container) ReadFrame() (ports.Frame, error) {
	if c.done {
		return ports.Frame{}, io.EOF
	}
	if c.scanner == nil {
		if err := c.start(); err != nil {
			return ports.Frame{}, err
		}
	}

	for c.scanner.Scan() {
		f, ok, err := parseFrameLine(c.scanner.Text())
		if err != nil {
			return ports.Frame{}, err
		}
		if ok {
			return f, nil
		}
	}

	c.done = true
	scanErr := c.scanner.Err()
	waitErr := c.cmd.Wait()
	c.cmd = nil
	if scanErr != nil {
		return ports.Frame{}, fmt.Errorf("read frames: %w", scanErr)
	}
	if waitErr != nil {
		return ports.Frame{}, fmt.Errorf("%w: frame scan: %v", ErrProbeFailed, waitErr)
	}
	return ports.Frame{}, io.EOF
}

// Rasterize renders f with ffmpeg.
func (c *Container) Rasterize(f ports.Frame) (image.Image, error) {
	if !f.PTS.Valid {
		return nil, fmt.Errorf("%w: frame has no timestamp", ErrRasterFailed)
	}
	return c.raster.Frame(c.path, c.info.TimeBase, f.PTS.Value, c.info.TimeBase.Seconds(c.startPTS))
}

// Close stops a running frame scan.
func (c *Container) Close() error {
	c.stop()
	return nil
}

func (c *Container) start() error {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "frame=key_frame,pts",
		"-of", "csv=p=0",
	}
	if c.seek != nil {
		sec := c.info.TimeBase.Seconds(*c.seek)
		args = append(args, "-read_intervals", strconv.FormatFloat(sec, 'f', 6, 64)+"%")
	}
	args = append(args, c.path)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, c.ffprobe, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("frame scan: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("%w: start frame scan: %v", ErrProbeFailed, err)
	}

	c.cancel = cancel
	c.cmd = cmd
	c.scanner = bufio.NewScanner(stdout)
	c.done = false
	return nil
}

func (c *Container) stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.cmd != nil {
		_ = c.cmd.Wait()
		c.cmd = nil
	}
	c.scanner = nil
	c.done = false
}

var _ ports.Container = (*Container)(nil)
