package pipeline

import (
	"image"

	"github.com/user/stills/pkg/ports"
)

// =============================================================================
// Probe Stage Types
// =============================================================================

// ProbeInput identifies the video whose duration is wanted.
type ProbeInput struct {
	VideoPath string
}

// DurationSource records how a duration was obtained.
type DurationSource string

const (
	// SourceMetadata means the stream declared its own duration.
	SourceMetadata DurationSource = "metadata"
	// SourceDecode means the stream was decoded to its last frame.
	SourceDecode DurationSource = "decode"
)

// ProbeResult is the duration of a video's first video stream.
type ProbeResult struct {
	Seconds  float64
	Source   DurationSource
	TimeBase ports.Rational
	// FramesDecoded is the number of frames read by the decode fallback.
	FramesDecoded int
}

// =============================================================================
// Extract Stage Types
// =============================================================================

// ExtractInput requests the still nearest to TargetSeconds, written to OutputPath.
type ExtractInput struct {
	VideoPath     string
	Index         int
	TargetSeconds float64
	OutputPath    string
}

// ExtractResult describes the still that was written.
type ExtractResult struct {
	Index        int
	Path         string
	TargetPTS    int64
	FramePTS     int64
	FrameSeconds float64
	// Scanned is the number of frames read after the seek.
	Scanned int
	// Image is the raster that was encoded, kept for the debug contact sheet.
	Image image.Image
}

// =============================================================================
// Sample Stage Types
// =============================================================================

// SampleInput requests NumStills stills of one video, written under OutputDir.
type SampleInput struct {
	VideoPath string
	NumStills int
	OutputDir string
}

// SampleResult holds the stills of one video in target order.
type SampleResult struct {
	Duration ProbeResult
	Targets  []float64
	Stills   []ExtractResult
}

// Paths returns the output paths in target order.
func (r SampleResult) Paths() []string {
	paths := make([]string, len(r.Stills))
	for i, s := range r.Stills {
		paths[i] = s.Path
	}
	return paths
}

// =============================================================================
// Sheet Stage Types
// =============================================================================

// SheetInput lists the stills of one video for the contact sheet.
type SheetInput struct {
	VideoPath string
	Stills    []ExtractResult
}

// SheetResult is the rendered contact sheet.
type SheetResult struct {
	Image image.Image
}
