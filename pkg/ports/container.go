package ports

import (
	"errors"
	"image"
	"math"
)

// ErrNoVideoStream is returned by a Demuxer when the container has no video stream.
var ErrNoVideoStream = errors.New("ports: no video stream")

// Rational is a stream time-base: one timestamp unit equals Num/Den seconds.
type Rational struct {
	Num int64
	Den int64
}

// Valid reports whether both terms are positive.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// Float returns the time-base as seconds per unit.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Seconds converts a timestamp in stream units to seconds.
func (r Rational) Seconds(ts int64) float64 {
	return float64(ts) * r.Float()
}

// Units converts seconds to stream units, truncating toward zero.
func (r Rational) Units(seconds float64) int64 {
	tb := r.Float()
	if tb == 0 {
		return 0
	}
	return int64(math.Trunc(seconds / tb))
}

// Timestamp is an optional presentation timestamp in stream units.
// Decoded frames may carry no timestamp at all; Valid is false then.
type Timestamp struct {
	Value int64
	Valid bool
}

// TS returns a valid Timestamp.
func TS(v int64) Timestamp {
	return Timestamp{Value: v, Valid: true}
}

// NoTS is the undefined timestamp.
var NoTS = Timestamp{}

// StreamInfo describes the video stream selected from a container.
type StreamInfo struct {
	Index     int
	CodecName string
	TimeBase  Rational
	// Duration is the declared stream duration in TimeBase units, when the
	// container records one.
	Duration Timestamp
	Width    int
	Height   int
}

// Frame is a decoded video frame as seen by the sampling scan.
// Pixels are produced lazily through Container.Rasterize, so scanning many
// frames to find the nearest one stays cheap.
type Frame struct {
	PTS      Timestamp
	Keyframe bool
}

// Container is an open handle to a video file, positioned on its first
// video stream. A Container is not safe for concurrent use; callers open one
// handle per task.
type Container interface {
	// Stream returns the selected video stream.
	Stream() StreamInfo

	// Seek positions the decoder on the nearest keyframe at or before pts.
	// The next ReadFrame returns that keyframe or the frame after it.
	Seek(pts int64) error

	// ReadFrame decodes the next frame in presentation order.
	// It returns io.EOF once the stream is exhausted.
	ReadFrame() (Frame, error)

	// Rasterize converts a frame previously returned by ReadFrame to an image.
	Rasterize(f Frame) (image.Image, error)

	// Close releases the handle.
	Close() error
}

// Demuxer opens containers.
type Demuxer interface {
	Open(path string) (Container, error)
}
