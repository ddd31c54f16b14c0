// Package extract implements the frame sampling stage: seek near a target
// time, pick the decoded frame closest to it and persist it as an image.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/user/stills/pkg/pipeline"
	"github.com/user/stills/pkg/ports"
)

// Options controls how stills are encoded.
type Options struct {
	Format  ports.ImageFormat
	Quality int
	// MaxWidth downscales wider frames, keeping the aspect ratio. Zero keeps
	// the native size.
	MaxWidth int
	// KeepImage retains the encoded raster in the result.
	KeepImage bool
}

// Stage extracts one still per Execute call.
type Stage struct {
	demuxer  ports.Demuxer
	renderer ports.Renderer
	fs       ports.FileSystem
	sink     ports.DebugSink
	logger   ports.Logger
	opts     Options
}

// NewStage creates a new extract stage.
func NewStage(demuxer ports.Demuxer, renderer ports.Renderer, fs ports.FileSystem, sink ports.DebugSink, logger ports.Logger, opts Options) *Stage {
	return &Stage{
		demuxer:  demuxer,
		renderer: renderer,
		fs:       fs,
		sink:     sink,
		logger:   logger.WithComponent("extract"),
		opts:     opts,
	}
}

// Execute opens its own handle on the video, so concurrent calls share nothing.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
	c, err := s.demuxer.Open(input.VideoPath)
	if err != nil {
		return pipeline.ExtractResult{}, fmt.Errorf("open %s: %w", input.VideoPath, err)
	}
	defer c.Close()

	tb := c.Stream().TimeBase
	target := tb.Units(input.TargetSeconds)
	s.logger.Debug("Still %d: target %.3fs (pts %d)", input.Index, input.TargetSeconds, target)

	if err := c.Seek(target); err != nil {
		return pipeline.ExtractResult{}, fmt.Errorf("still %d: seek to %d: %w", input.Index, target, err)
	}

	scan, err := ScanNearest(c, target)
	if err != nil {
		return pipeline.ExtractResult{}, fmt.Errorf("still %d: %w", input.Index, err)
	}
	s.saveTrace(input, target, scan)
	if !scan.Found {
		return pipeline.ExtractResult{}, fmt.Errorf("still %d at %.3fs: %w", input.Index, input.TargetSeconds, pipeline.ErrFrameExtractionFailed)
	}
	s.logger.Debug("Still %d: picked pts %d after %d frames", input.Index, scan.Best.PTS.Value, len(scan.Seen))

	img, err := c.Rasterize(scan.Best)
	if err != nil {
		return pipeline.ExtractResult{}, fmt.Errorf("still %d: rasterize pts %d: %w", input.Index, scan.Best.PTS.Value, err)
	}
	img = s.fit(img)

	data, err := s.renderer.EncodeImage(img, s.opts.Format, s.opts.Quality)
	if err != nil {
		return pipeline.ExtractResult{}, fmt.Errorf("still %d: %w: %w", input.Index, pipeline.ErrIOWrite, err)
	}
	if err := s.fs.WriteFile(input.OutputPath, data); err != nil {
		return pipeline.ExtractResult{}, fmt.Errorf("still %d: %s: %w: %w", input.Index, input.OutputPath, pipeline.ErrIOWrite, err)
	}

	result := pipeline.ExtractResult{
		Index:        input.Index,
		Path:         input.OutputPath,
		TargetPTS:    target,
		FramePTS:     scan.Best.PTS.Value,
		FrameSeconds: tb.Seconds(scan.Best.PTS.Value),
		Scanned:      len(scan.Seen),
	}
	if s.opts.KeepImage {
		result.Image = img
	}
	return result, nil
}

func (s *Stage) fit(img image.Image) image.Image {
	b := img.Bounds()
	if s.opts.MaxWidth <= 0 || b.Dx() <= s.opts.MaxWidth {
		return img
	}
	h := b.Dy() * s.opts.MaxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	return s.renderer.ResizeImage(img, s.opts.MaxWidth, h)
}

// Scan is the outcome of ScanNearest.
type Scan struct {
	Best  ports.Frame
	Found bool
	// Seen lists every frame read, including those without a timestamp.
	Seen []ports.Timestamp
}

// ScanNearest reads frames from the current position and keeps the one whose
// timestamp is closest to target. Ties keep the earlier frame. Frames without
// a timestamp are skipped. The scan stops at the first frame at or past target.
func ScanNearest(c ports.Container, target int64) (Scan, error) {
	var (
		scan     Scan
		bestDiff int64
	)
	for {
		f, err := c.ReadFrame()
		if errors.Is(err, io.EOF) {
			return scan, nil
		}
		if err != nil {
			return scan, fmt.Errorf("decode after seek: %w", err)
		}
		scan.Seen = append(scan.Seen, f.PTS)
		if !f.PTS.Valid {
			continue
		}
		diff := f.PTS.Value - target
		if diff < 0 {
			diff = -diff
		}
		if !scan.Found || diff < bestDiff {
			scan.Best = f
			scan.Found = true
			bestDiff = diff
		}
		if f.PTS.Value >= target {
			return scan, nil
		}
	}
}

type traceFrame struct {
	PTS *int64 `json:"pts"`
}

func (s *Stage) saveTrace(input pipeline.ExtractInput, target int64, scan Scan) {
	if !s.sink.Enabled() {
		return
	}
	trace := struct {
		Index         int          `json:"index"`
		TargetSeconds float64      `json:"targetSeconds"`
		TargetPTS     int64        `json:"targetPts"`
		Frames        []traceFrame `json:"frames"`
		ChosenPTS     *int64       `json:"chosenPts"`
	}{
		Index:         input.Index,
		TargetSeconds: input.TargetSeconds,
		TargetPTS:     target,
		Frames:        make([]traceFrame, len(scan.Seen)),
	}
	for i, ts := range scan.Seen {
		if ts.Valid {
			v := ts.Value
			trace.Frames[i].PTS = &v
		}
	}
	if scan.Found {
		v := scan.Best.PTS.Value
		trace.ChosenPTS = &v
	}
	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return
	}
	if err := s.sink.SaveScanTrace(input.VideoPath, input.Index, data); err != nil {
		s.logger.Warn("Failed to write debug output: %v", err)
	}
}
