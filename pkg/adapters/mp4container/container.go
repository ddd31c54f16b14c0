// Package mp4container implements ports.Container for ISO-BMFF files (MP4,
// MOV, fragmented MP4) by reading the sample tables with mp4ff. Timestamps and
// keyframes come straight from the index, so probing and scanning never
// decode video; only the chosen frame is rasterized, through ffmpeg.
package mp4container

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/stills/pkg/adapters/ffmpegcontainer"
	"github.com/user/stills/pkg/ports"
)

var (
	// ErrNoSampleTable is returned for a video track without timing tables.
	ErrNoSampleTable = errors.New("mp4container: no sample table")

	// ErrNoRasterizer is returned by Rasterize when no ffmpeg is configured.
	ErrNoRasterizer = errors.New("mp4container: no rasterizer configured")
)

// unknownDuration32 is the version 0 mdhd marker for an unknown duration.
const unknownDuration32 = 0xFFFFFFFF

// Demuxer opens ISO-BMFF files.
type Demuxer struct {
	raster *ffmpegcontainer.Rasterizer
}

// New creates a Demuxer. raster renders chosen frames; it may be nil when
// only timing is needed.
func New(raster *ffmpegcontainer.Rasterizer) *Demuxer {
	return &Demuxer{raster: raster}
}

// Open parses the file index and builds the presentation timeline of the
// first video track.
func (d *Demuxer) Open(path string) (ports.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}
	if mp4File.IsFragmented() {
		// fragment sample data is needed to resolve per-sample defaults
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind: %w", err)
		}
		if mp4File, err = mp4.DecodeFile(f); err != nil {
			return nil, fmt.Errorf("decode fragmented mp4: %w", err)
		}
	}

	return build(path, mp4File, d.raster)
}

var _ ports.Demuxer = (*Demuxer)(nil)

func build(path string, mp4File *mp4.File, raster *ffmpegcontainer.Rasterizer) (*Container, error) {
	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return nil, fmt.Errorf("%w: no moov box", ports.ErrNoVideoStream)
	}

	var trak *mp4.TrakBox
	index := -1
	for i, t := range moov.Traks {
		if t.Mdia != nil && t.Mdia.Hdlr != nil && t.Mdia.Hdlr.HandlerType == "vide" {
			trak, index = t, i
			break
		}
	}
	if trak == nil || trak.Mdia.Mdhd == nil || trak.Mdia.Mdhd.Timescale == 0 {
		return nil, ports.ErrNoVideoStream
	}

	mdhd := trak.Mdia.Mdhd
	info := ports.StreamInfo{
		Index:    index,
		TimeBase: ports.Rational{Num: 1, Den: int64(mdhd.Timescale)},
	}
	if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil {
		for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
				info.CodecName = vse.Type()
				info.Width = int(vse.Width)
				info.Height = int(vse.Height)
				break
			}
		}
	}

	var (
		samples []sample
		err     error
	)
	if mp4File.IsFragmented() {
		samples, err = fragmentedSamples(mp4File, trak.Tkhd.TrackID, editShift(trak))
	} else {
		samples, err = progressiveSamples(trak)
		if mdhd.Duration != 0 && mdhd.Duration != unknownDuration32 {
			info.Duration = ports.TS(int64(mdhd.Duration))
		}
	}
	if err != nil {
		return nil, err
	}

	return newContainer(path, info, samples, raster), nil
}

// Container walks the presentation timeline of one video track.
type Container struct {
	path    string
	info    ports.StreamInfo
	samples []sample
	pos     int
	raster  *ffmpegcontainer.Rasterizer
	// start is the earliest presentation time, which ffmpeg reports as the
	// stream start time. Fragmented files often start far from zero.
	start int64
}

func newContainer(path string, info ports.StreamInfo, samples []sample, raster *ffmpegcontainer.Rasterizer) *Container {
	c := &Container{path: path, info: info, samples: samples, raster: raster}
	if len(samples) > 0 {
		c.start = samples[0].pts
	}
	return c
}

// Stream returns the video track description.
func (c *Container) Stream() ports.StreamInfo {
	return c.info
}

// Seek moves to the last sync sample whose time is at or before pts, or to
// the first sample when there is none.
func (c *Container) Seek(pts int64) error {
	c.pos = 0
	for i, s := range c.samples {
		if s.pts > pts {
			break
		}
		if s.sync {
			c.pos = i
		}
	}
	return nil
}

// ReadFrame returns the next sample in presentation order.
func (c *Container) ReadFrame() (ports.Frame, error) {
	if c.pos >= len(c.samples) {
		return ports.Frame{}, io.EOF
	}
	s := c.samples[c.pos]
	c.pos++
	return ports.Frame{PTS: ports.TS(s.pts), Keyframe: s.sync}, nil
}

// Rasterize renders the frame with ffmpeg.
func (c *Container) Rasterize(f ports.Frame) (image.Image, error) {
	if c.raster == nil {
		return nil, ErrNoRasterizer
	}
	if !f.PTS.Valid {
		return nil, fmt.Errorf("%w: frame has no timestamp", ffmpegcontainer.ErrRasterFailed)
	}
	return c.raster.Frame(c.path, c.info.TimeBase, f.PTS.Value, c.info.TimeBase.Seconds(c.start))
}

// Close is a no-op; the file is closed once the index is read.
func (c *Container) Close() error {
	return nil
}

var _ ports.Container = (*Container)(nil)
