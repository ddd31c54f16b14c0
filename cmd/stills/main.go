// Package main provides the CLI entry point for stills.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/stills/pkg/adapters/ffmpegcontainer"
	"github.com/user/stills/pkg/adapters/filesink"
	"github.com/user/stills/pkg/adapters/ggrenderer"
	"github.com/user/stills/pkg/adapters/logger"
	"github.com/user/stills/pkg/adapters/mp4container"
	"github.com/user/stills/pkg/adapters/nullsink"
	"github.com/user/stills/pkg/adapters/osfilesystem"
	"github.com/user/stills/pkg/adapters/progress"
	"github.com/user/stills/pkg/adapters/smartdemuxer"
	"github.com/user/stills/pkg/config"
	"github.com/user/stills/pkg/orchestrator"
	"github.com/user/stills/pkg/ports"
	"github.com/user/stills/pkg/stages/extract"
	"github.com/user/stills/pkg/stages/probe"
	"github.com/user/stills/pkg/stages/sample"
	"github.com/user/stills/pkg/stages/sheet"
	"github.com/user/stills/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Run     RunCmd     `cmd:"" help:"Extract evenly spaced stills from every video of a step."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// RunCmd defines the run subcommand.
type RunCmd struct {
	// Required arguments
	Step      string `arg:"" enum:"step1,step2" help:"Step whose input directory is sampled (step1 or step2)."`
	NumStills int    `arg:"" name:"num_stills" help:"Number of stills per video."`

	Root   string `default:"." help:"Directory containing the step directories."`
	Config string `short:"C" type:"existingfile" help:"YAML configuration file."`

	// Sampling options (override the config file)
	Workers  *int   `short:"w" help:"Concurrent extractions per video (default: number of CPUs)."`
	Format   string `help:"Still image format (png or jpeg)."`
	Quality  *int   `help:"JPEG quality (1-100)."`
	MaxWidth *int   `help:"Downscale stills wider than this many pixels."`

	// Decoding options
	Demuxer     string `help:"Container reader (auto, ffmpeg or mp4)."`
	FFmpegPath  string `name:"ffmpeg-path" help:"Path to the ffmpeg executable."`
	FFprobePath string `name:"ffprobe-path" help:"Path to the ffprobe executable."`

	// Output options
	Summary string `help:"Write a run summary to this file (Markdown format)."`

	// Debug options
	Debug    bool   `short:"d" help:"Enable debug output."`
	DebugDir string `help:"Directory for debug output."`

	// Logging options
	LogLevel string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("stills"),
		kong.Description(l10n.T("Extract still frames from videos at evenly spaced timestamps.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the run command.
func (cmd *RunCmd) Run() error {
	cfg, loadedFrom, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	// Create logger
	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(cfg.LogLevel)
	}
	if loadedFrom != "" {
		log.Debug("Loaded config from %s", loadedFrom)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	demuxer, err := newDemuxer(cfg, log)
	if err != nil {
		return err
	}

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Create stages
	probeStage := probe.NewStage(demuxer, sink, log)
	extractStage := extract.NewStage(demuxer, renderer, fs, sink, log, cfg.ExtractOptions())
	sampleStage := sample.NewStage(probeStage, extractStage, progress.New(cmd.Quiet), log, cfg.Format(), workers)
	sheetStage := sheet.NewStage(renderer, sink, log, cfg.SheetTheme())

	// Create orchestrator
	orch := orchestrator.New(sampleStage, sheetStage, fs, log)

	orchConfig := cfg.ToOrchestratorConfig(cmd.Root, cmd.Step, cmd.NumStills)
	result, runErr := orch.Run(ctx, orchConfig)

	// The summary covers the videos finished before a failure too.
	if cmd.Summary != "" && (runErr == nil || len(result.Videos) > 0) {
		s := buildSummary(result, cfg, workers)
		w := summarizer.NewWriter(fs, summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		))
		if err := w.Write(cmd.Summary, s); err != nil {
			log.Warn("Failed to write summary: %v", err)
		} else {
			log.Info("Summary written to %s", cmd.Summary)
		}
	}

	return runErr
}

// buildConfig loads the config file, if any, and applies the flags over it.
func (cmd *RunCmd) buildConfig() (config.Config, string, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, "", fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Workers != nil {
		cfg.Workers = *cmd.Workers
	}
	if cmd.Format != "" {
		cfg.ImageFormat = cmd.Format
	}
	if cmd.Quality != nil {
		cfg.JPEGQuality = *cmd.Quality
	}
	if cmd.MaxWidth != nil {
		cfg.MaxWidth = *cmd.MaxWidth
	}
	if cmd.Demuxer != "" {
		cfg.Demuxer = cmd.Demuxer
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	if cmd.FFprobePath != "" {
		cfg.FFprobePath = cmd.FFprobePath
	}
	if cmd.Debug {
		cfg.Debug = true
	}
	if cmd.DebugDir != "" {
		cfg.DebugDir = cmd.DebugDir
	}
	if cmd.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(cmd.LogLevel)); err != nil {
			return cfg, "", err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, cmd.Config, nil
}

// newDemuxer wires the container readers for the configured mode. ffmpeg is
// needed in every mode for rasterization; ffprobe only when it may be used.
func newDemuxer(cfg config.Config, log ports.Logger) (ports.Demuxer, error) {
	mode, err := smartdemuxer.ParseMode(cfg.Demuxer)
	if err != nil {
		return nil, err
	}

	if mode == smartdemuxer.ModeMP4 {
		raster, err := ffmpegcontainer.NewRasterizer(cfg.FFmpegPath)
		if err != nil {
			return nil, err
		}
		return smartdemuxer.New(mode, mp4container.New(raster), nil, log), nil
	}

	ff, err := ffmpegcontainer.New(ffmpegcontainer.Options{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
	})
	if err != nil {
		return nil, err
	}
	var native ports.Demuxer
	if mode == smartdemuxer.ModeAuto {
		native = mp4container.New(ff.Rasterizer())
	}
	return smartdemuxer.New(mode, native, ff, log), nil
}

func buildSummary(result orchestrator.RunResult, cfg config.Config, workers int) *summarizer.Summary {
	b := summarizer.NewBuilder().
		WithRun(summarizer.RunInfo{
			Step:      result.Step,
			InputDir:  result.InputDir,
			OutputDir: result.OutputDir,
			NumStills: result.NumStills,
			Cleared:   result.Cleared,
			Elapsed:   result.Elapsed,
		}).
		WithSettings(summarizer.Settings{
			Workers:  workers,
			Format:   cfg.Format().String(),
			Demuxer:  cfg.Demuxer,
			MaxWidth: cfg.MaxWidth,
		})
	for _, v := range result.Videos {
		b.AddVideo(summarizer.VideoInfo{
			Name:     v.Name,
			Duration: v.Duration,
			Source:   string(v.Source),
			Stills:   v.Stills,
			Elapsed:  v.Elapsed,
		})
	}
	return b.Build()
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("stills version %s", version))
	return nil
}
