// Package orchestrator runs the sampling stages over every video of a step.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/user/stills/pkg/pipeline"
	"github.com/user/stills/pkg/ports"
)

// Steps lists the accepted step names.
var Steps = []string{"step1", "step2"}

// ErrUnknownStep is returned for a step outside Steps.
var ErrUnknownStep = errors.New("unknown step")

// DefaultExtensions returns the file extensions treated as videos.
func DefaultExtensions() []string {
	return []string{".mp4", ".mov", ".avi", ".mkv", ".mxf", ".webm"}
}

// Config contains all configuration for a run.
type Config struct {
	// Root is the directory holding the step directories.
	Root      string
	Step      string
	NumStills int

	// Extensions are matched case-insensitively, with the leading dot.
	Extensions []string

	// ContactSheet renders a sheet per video through the debug sink.
	ContactSheet bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Root:       ".",
		Extensions: DefaultExtensions(),
	}
}

// InputDir is <root>/<step>/input.
func (c Config) InputDir() string {
	return filepath.Join(c.Root, c.Step, "input")
}

// OutputDir is <root>/<step>/output.
func (c Config) OutputDir() string {
	return filepath.Join(c.Root, c.Step, "output")
}

// Validate checks the step and still count.
func (c Config) Validate() error {
	if !slices.Contains(Steps, c.Step) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStep, c.Step, strings.Join(Steps, ", "))
	}
	if c.NumStills < 1 {
		return fmt.Errorf("%d: %w", c.NumStills, pipeline.ErrInvalidStillCount)
	}
	return nil
}

// IsVideo reports whether name carries one of the configured extensions.
// Leading dots never start an extension, so ".mp4" is not a video.
func (c Config) IsVideo(name string) bool {
	ext := filepath.Ext(strings.TrimLeft(name, "."))
	if ext == "" {
		return false
	}
	for _, e := range c.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// Orchestrator coordinates the execution of the stages for every video.
type Orchestrator struct {
	sampleStage pipeline.Stage[pipeline.SampleInput, pipeline.SampleResult]
	sheetStage  pipeline.Stage[pipeline.SheetInput, pipeline.SheetResult]
	fs          ports.FileSystem
	logger      ports.Logger
}

// New creates a new Orchestrator. sheetStage may be nil.
func New(
	sampleStage pipeline.Stage[pipeline.SampleInput, pipeline.SampleResult],
	sheetStage pipeline.Stage[pipeline.SheetInput, pipeline.SheetResult],
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		sampleStage: sampleStage,
		sheetStage:  sheetStage,
		fs:          fs,
		logger:      logger,
	}
}

// Run resets the output directory, then samples the videos of the input
// directory one after another in name order. It stops at the first video
// that fails, and before starting a video once ctx is done.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	started := time.Now()
	if err := config.Validate(); err != nil {
		return RunResult{}, err
	}

	inputDir, outputDir := config.InputDir(), config.OutputDir()
	result := RunResult{
		Step:      config.Step,
		NumStills: config.NumStills,
		InputDir:  inputDir,
		OutputDir: outputDir,
	}

	if err := o.fs.MkdirAll(outputDir); err != nil {
		return result, fmt.Errorf("create output dir: %w: %w", pipeline.ErrIOWrite, err)
	}
	cleared, err := o.fs.ClearFiles(outputDir)
	if err != nil {
		return result, fmt.Errorf("clear output dir: %w: %w", pipeline.ErrIOWrite, err)
	}
	result.Cleared = cleared
	if cleared > 0 {
		o.logger.Debug("Cleared %d files from %s", cleared, outputDir)
	}

	videos, err := o.listVideos(config, inputDir)
	if err != nil {
		return result, err
	}
	if len(videos) == 0 {
		o.logger.Info("No videos found in %s", inputDir)
		result.Elapsed = time.Since(started)
		return result, nil
	}

	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			result.Elapsed = time.Since(started)
			return result, err
		}

		vr, err := o.processVideo(ctx, config, video, outputDir)
		if err != nil {
			o.logger.Error("Failed to sample %s: %v", filepath.Base(video), err)
			result.Elapsed = time.Since(started)
			return result, err
		}
		result.Videos = append(result.Videos, vr)
	}

	result.Elapsed = time.Since(started)
	o.logger.Info("Run completed: %d videos, %d stills", len(result.Videos), result.TotalStills())
	return result, nil
}

func (o *Orchestrator) listVideos(config Config, inputDir string) ([]string, error) {
	entries, err := o.fs.ListDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("list input dir: %w", err)
	}
	var videos []string
	for _, e := range entries {
		if e.IsDir || !config.IsVideo(e.Name) {
			continue
		}
		videos = append(videos, filepath.Join(inputDir, e.Name))
	}
	return videos, nil
}

func (o *Orchestrator) processVideo(ctx context.Context, config Config, video, outputDir string) (VideoResult, error) {
	started := time.Now()
	name := filepath.Base(video)
	o.logger.Info("Processing %s...", name)

	sampled, err := o.sampleStage.Execute(ctx, pipeline.SampleInput{
		VideoPath: video,
		NumStills: config.NumStills,
		OutputDir: outputDir,
	})
	if err != nil {
		return VideoResult{}, err
	}
	o.logger.Info("Saved %d stills to %s", len(sampled.Stills), outputDir)

	if config.ContactSheet && o.sheetStage != nil {
		if _, err := o.sheetStage.Execute(ctx, pipeline.SheetInput{VideoPath: video, Stills: sampled.Stills}); err != nil {
			o.logger.Warn("Failed to write debug output: %v", err)
		}
	}

	return VideoResult{
		Name:     name,
		Duration: sampled.Duration.Seconds,
		Source:   sampled.Duration.Source,
		Stills:   len(sampled.Stills),
		Paths:    sampled.Paths(),
		Elapsed:  time.Since(started),
	}, nil
}

// VideoResult describes one sampled video.
type VideoResult struct {
	Name     string
	Duration float64
	Source   pipeline.DurationSource
	Stills   int
	Paths    []string
	Elapsed  time.Duration
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	Step      string
	NumStills int
	InputDir  string
	OutputDir string
	// Cleared is the number of files removed from OutputDir before sampling.
	Cleared int
	Videos  []VideoResult
	Elapsed time.Duration
}

// TotalStills returns the number of stills written.
func (r RunResult) TotalStills() int {
	n := 0
	for _, v := range r.Videos {
		n += v.Stills
	}
	return n
}
