package ports

import (
	"image"
)

// DebugSink receives intermediate sampling results when debug output is on.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveProbeJSON saves the duration probe result of a video.
	SaveProbeJSON(video string, data []byte) error

	// SaveScanTrace saves the frame scan performed for one still.
	SaveScanTrace(video string, index int, data []byte) error

	// SaveContactSheet saves the overview image of all stills of a video.
	SaveContactSheet(video string, img image.Image) error
}
