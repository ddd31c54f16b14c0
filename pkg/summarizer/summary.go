// Package summarizer produces a human-readable report of a sampling run.
package summarizer

import "time"

// Summary contains all data collected during a run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	Run      RunInfo
	Settings Settings
	Videos   []VideoInfo
}

// RunInfo describes the directories and totals of a run.
type RunInfo struct {
	Step      string
	InputDir  string
	OutputDir string
	NumStills int
	// Cleared is the number of stale files removed from OutputDir.
	Cleared int
	Elapsed time.Duration
}

// Settings contains the sampling configuration.
type Settings struct {
	Workers  int
	Format   string
	Demuxer  string
	MaxWidth int // 0 = native size
}

// VideoInfo describes one sampled video.
type VideoInfo struct {
	Name     string
	Duration float64 // seconds
	Source   string
	Stills   int
	Elapsed  time.Duration
}

// TotalStills returns the number of stills over all videos.
func (s *Summary) TotalStills() int {
	n := 0
	for _, v := range s.Videos {
		n += v.Stills
	}
	return n
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRun sets the run information.
func (b *Builder) WithRun(run RunInfo) *Builder {
	b.summary.Run = run
	return b
}

// WithSettings sets the sampling settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// AddVideo appends a video row.
func (b *Builder) AddVideo(video VideoInfo) *Builder {
	b.summary.Videos = append(b.summary.Videos, video)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
