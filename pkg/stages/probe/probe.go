// Package probe implements the duration probing stage.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/user/stills/pkg/pipeline"
	"github.com/user/stills/pkg/ports"
)

// Strategy tries to determine the duration of the selected stream of an open
// container. It returns ok=false when it has no answer, so the next strategy
// runs on the same handle.
type Strategy interface {
	Source() pipeline.DurationSource
	Probe(c ports.Container) (result pipeline.ProbeResult, ok bool, err error)
}

// MetadataStrategy uses the duration declared by the container.
type MetadataStrategy struct{}

// Source implements Strategy.
func (MetadataStrategy) Source() pipeline.DurationSource { return pipeline.SourceMetadata }

// Probe implements Strategy.
func (MetadataStrategy) Probe(c ports.Container) (pipeline.ProbeResult, bool, error) {
	st := c.Stream()
	if !st.Duration.Valid || st.Duration.Value == 0 {
		return pipeline.ProbeResult{}, false, nil
	}
	return pipeline.ProbeResult{
		Seconds:  st.TimeBase.Seconds(st.Duration.Value),
		Source:   pipeline.SourceMetadata,
		TimeBase: st.TimeBase,
	}, true, nil
}

// LastFrameStrategy decodes the whole stream and uses the timestamp of the
// last frame. The last frame counts even when its timestamp is undefined, in
// which case there is no answer.
type LastFrameStrategy struct{}

// Source implements Strategy.
func (LastFrameStrategy) Source() pipeline.DurationSource { return pipeline.SourceDecode }

// Probe implements Strategy.
func (LastFrameStrategy) Probe(c ports.Container) (pipeline.ProbeResult, bool, error) {
	var (
		last  ports.Frame
		count int
	)
	for {
		f, err := c.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pipeline.ProbeResult{}, false, fmt.Errorf("decode frame %d: %w", count, err)
		}
		last = f
		count++
	}

	if count == 0 || !last.PTS.Valid || last.PTS.Value == 0 {
		return pipeline.ProbeResult{FramesDecoded: count}, false, nil
	}
	tb := c.Stream().TimeBase
	return pipeline.ProbeResult{
		Seconds:       tb.Seconds(last.PTS.Value),
		Source:        pipeline.SourceDecode,
		TimeBase:      tb,
		FramesDecoded: count,
	}, true, nil
}

// DefaultStrategies is the order used by NewStage.
func DefaultStrategies() []Strategy {
	return []Strategy{MetadataStrategy{}, LastFrameStrategy{}}
}

// Stage determines the duration of a video.
type Stage struct {
	demuxer    ports.Demuxer
	sink       ports.DebugSink
	logger     ports.Logger
	strategies []Strategy
}

// NewStage creates a new probe stage with the default strategies.
func NewStage(demuxer ports.Demuxer, sink ports.DebugSink, logger ports.Logger) *Stage {
	return NewStageWithStrategies(demuxer, sink, logger, DefaultStrategies()...)
}

// NewStageWithStrategies creates a probe stage that tries strategies in order.
func NewStageWithStrategies(demuxer ports.Demuxer, sink ports.DebugSink, logger ports.Logger, strategies ...Strategy) *Stage {
	return &Stage{
		demuxer:    demuxer,
		sink:       sink,
		logger:     logger.WithComponent("probe"),
		strategies: strategies,
	}
}

// Execute opens the video once, runs the strategies and closes it again.
func (s *Stage) Execute(ctx context.Context, input pipeline.ProbeInput) (pipeline.ProbeResult, error) {
	c, err := s.demuxer.Open(input.VideoPath)
	if err != nil {
		return pipeline.ProbeResult{}, fmt.Errorf("open %s: %w", input.VideoPath, err)
	}
	defer c.Close()

	for _, strategy := range s.strategies {
		if strategy.Source() == pipeline.SourceDecode {
			s.logger.Debug("No declared duration, decoding to last frame")
		}
		result, ok, err := strategy.Probe(c)
		if err != nil {
			return pipeline.ProbeResult{}, fmt.Errorf("probe %s: %w", input.VideoPath, err)
		}
		if strategy.Source() == pipeline.SourceDecode {
			s.logger.Debug("Decoded %d frames", result.FramesDecoded)
		}
		if ok && result.Seconds > 0 {
			s.logger.Debug("Duration %.3fs from %s", result.Seconds, string(result.Source))
			s.saveDebug(input.VideoPath, result)
			return result, nil
		}
	}

	return pipeline.ProbeResult{}, fmt.Errorf("probe %s: %w", input.VideoPath, pipeline.ErrDurationUnavailable)
}

func (s *Stage) saveDebug(video string, result pipeline.ProbeResult) {
	if !s.sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(struct {
		Seconds       float64 `json:"seconds"`
		Source        string  `json:"source"`
		TimeBase      string  `json:"timeBase"`
		FramesDecoded int     `json:"framesDecoded,omitempty"`
	}{result.Seconds, string(result.Source), fmt.Sprintf("%d/%d", result.TimeBase.Num, result.TimeBase.Den), result.FramesDecoded}, "", "  ")
	if err != nil {
		return
	}
	if err := s.sink.SaveProbeJSON(video, data); err != nil {
		s.logger.Warn("Failed to write debug output: %v", err)
	}
}
