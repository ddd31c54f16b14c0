package mocks

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/user/stills/pkg/ports"
)

// Video scripts the stream seen through a mock Container.
// Frames are listed in presentation order.
type Video struct {
	Stream ports.StreamInfo
	Frames []ports.Frame

	SeekErr      error
	RasterizeErr error
	// ReadErr is returned instead of io.EOF once Frames are exhausted.
	ReadErr error
}

// ConstantRateVideo builds a video of n frames, one every step units, with a
// keyframe every gop frames.
func ConstantRateVideo(tb ports.Rational, n int, step int64, gop int, declared bool) *Video {
	v := &Video{Stream: ports.StreamInfo{CodecName: "h264", TimeBase: tb, Width: 64, Height: 36}}
	for i := 0; i < n; i++ {
		v.Frames = append(v.Frames, ports.Frame{
			PTS:      ports.TS(int64(i) * step),
			Keyframe: gop > 0 && i%gop == 0,
		})
	}
	if declared {
		v.Stream.Duration = ports.TS(int64(n) * step)
	}
	return v
}

// Demuxer is a mock implementation of ports.Demuxer serving scripted videos.
type Demuxer struct {
	mu     sync.Mutex
	videos map[string]*Video

	opens   int
	closes  int
	active  int
	peak    int
	OpenErr error
}

// NewDemuxer creates a new mock Demuxer.
func NewDemuxer() *Demuxer {
	return &Demuxer{videos: make(map[string]*Video)}
}

// Add registers a video under path.
func (m *Demuxer) Add(path string, v *Video) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[path] = v
}

func (m *Demuxer) Open(path string) (ports.Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	v, ok := m.videos[path]
	if !ok {
		return nil, fmt.Errorf("no such video: %s", path)
	}
	m.opens++
	m.active++
	if m.active > m.peak {
		m.peak = m.active
	}
	return &Container{video: v, owner: m}, nil
}

// Opens returns how many handles were opened.
func (m *Demuxer) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

// Closes returns how many handles were closed.
func (m *Demuxer) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// PeakOpen returns the largest number of simultaneously open handles.
func (m *Demuxer) PeakOpen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

func (m *Demuxer) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	m.active--
}

var _ ports.Demuxer = (*Demuxer)(nil)

// Container is a mock implementation of ports.Container.
type Container struct {
	video  *Video
	owner  *Demuxer
	pos    int
	closed bool
}

func (c *Container) Stream() ports.StreamInfo {
	return c.video.Stream
}

// Seek moves to the last keyframe at or before pts, or to the first frame.
func (c *Container) Seek(pts int64) error {
	if c.video.SeekErr != nil {
		return c.video.SeekErr
	}
	c.pos = 0
	for i, f := range c.video.Frames {
		if f.Keyframe && f.PTS.Valid && f.PTS.Value <= pts {
			c.pos = i
		}
	}
	return nil
}

func (c *Container) ReadFrame() (ports.Frame, error) {
	if c.closed {
		return ports.Frame{}, errors.New("container closed")
	}
	if c.pos >= len(c.video.Frames) {
		if c.video.ReadErr != nil {
			return ports.Frame{}, c.video.ReadErr
		}
		return ports.Frame{}, io.EOF
	}
	f := c.video.Frames[c.pos]
	c.pos++
	return f, nil
}

// Rasterize returns a small image whose red channel is the low byte of the pts.
func (c *Container) Rasterize(f ports.Frame) (image.Image, error) {
	if c.video.RasterizeErr != nil {
		return nil, c.video.RasterizeErr
	}
	w, h := c.video.Stream.Width, c.video.Stream.Height
	if w == 0 || h == 0 {
		w, h = 4, 4
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: uint8(f.PTS.Value), A: 255})
	return img, nil
}

func (c *Container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.owner.release()
	return nil
}

var _ ports.Container = (*Container)(nil)
