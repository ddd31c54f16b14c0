// Package sample implements the per-video sampling stage: probe the duration,
// spread the targets evenly and extract one still per target concurrently.
package sample

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/user/stills/pkg/pipeline"
	"github.com/user/stills/pkg/ports"
)

// Targets returns n time offsets spread over [0, duration]: the midpoint for
// n == 1, otherwise i*duration/(n-1) so the first is 0 and the last is duration.
func Targets(duration float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{duration / 2}
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * duration / float64(n-1)
	}
	return times
}

// StillName returns the file name of the index-th still of a video.
func StillName(videoPath string, index int, ext string) string {
	base := filepath.Base(videoPath)
	base = strings.TrimSuffix(base, filepath.Ext(strings.TrimLeft(base, ".")))
	return fmt.Sprintf("%s_%04d.%s", base, index, ext)
}

// Stage samples one video.
type Stage struct {
	probe    pipeline.Stage[pipeline.ProbeInput, pipeline.ProbeResult]
	extract  pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult]
	progress ports.Progress
	logger   ports.Logger
	ext      string
	workers  int
}

// NewStage creates a new sample stage. numWorkers <= 0 uses one worker per CPU.
func NewStage(
	probe pipeline.Stage[pipeline.ProbeInput, pipeline.ProbeResult],
	extract pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult],
	progress ports.Progress,
	logger ports.Logger,
	format ports.ImageFormat,
	numWorkers int,
) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		probe:    probe,
		extract:  extract,
		progress: progress,
		logger:   logger.WithComponent("sample"),
		ext:      format.Extension(),
		workers:  numWorkers,
	}
}

// Execute probes the video and extracts NumStills stills into OutputDir.
//
// Every extraction runs to completion even when another one fails; the error
// returned is the one of the lowest failing index. Stills written by the
// successful tasks stay on disk.
func (s *Stage) Execute(ctx context.Context, input pipeline.SampleInput) (pipeline.SampleResult, error) {
	if input.NumStills < 1 {
		return pipeline.SampleResult{}, fmt.Errorf("%d: %w", input.NumStills, pipeline.ErrInvalidStillCount)
	}

	duration, err := s.probe.Execute(ctx, pipeline.ProbeInput{VideoPath: input.VideoPath})
	if err != nil {
		return pipeline.SampleResult{}, err
	}

	targets := Targets(duration.Seconds, input.NumStills)
	results := make([]pipeline.ExtractResult, len(targets))
	errs := make([]error, len(targets))

	s.logger.Debug("Sampling %d stills with %d workers", len(targets), s.workers)
	s.progress.Begin(filepath.Base(input.VideoPath), len(targets))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, t := range targets {
		i := i
		req := pipeline.ExtractInput{
			VideoPath:     input.VideoPath,
			Index:         i,
			TargetSeconds: t,
			OutputPath:    filepath.Join(input.OutputDir, StillName(input.VideoPath, i, s.ext)),
		}
		g.Go(func() error {
			results[i], errs[i] = s.extract.Execute(ctx, req)
			s.progress.Step()
			return nil
		})
	}
	_ = g.Wait()
	s.progress.End()

	for i, err := range errs {
		if err != nil {
			return pipeline.SampleResult{}, fmt.Errorf("sample %s: still %d of %d: %w", filepath.Base(input.VideoPath), i, len(targets), err)
		}
	}

	return pipeline.SampleResult{
		Duration: duration,
		Targets:  targets,
		Stills:   results,
	}, nil
}
