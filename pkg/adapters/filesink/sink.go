// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/user/stills/pkg/ports"
)

// Sink saves debug output under baseDir, one subdirectory per video.
//
//	<baseDir>/<video>/probe.json
//	<baseDir>/<video>/scan/scan-0000.json
//	<baseDir>/<video>/sheet.png
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveProbeJSON saves the duration probe result.
func (s *Sink) SaveProbeJSON(video string, data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.videoDir(video), "probe.json"), data)
}

// SaveScanTrace saves the scan of one still.
func (s *Sink) SaveScanTrace(video string, index int, data []byte) error {
	dir := filepath.Join(s.videoDir(video), "scan")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("scan-%04d.json", index))
	return s.fs.WriteFile(path, data)
}

// SaveContactSheet saves the contact sheet as PNG.
func (s *Sink) SaveContactSheet(video string, img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode contact sheet: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.videoDir(video), "sheet.png"), data)
}

func (s *Sink) videoDir(video string) string {
	base := filepath.Base(video)
	return filepath.Join(s.baseDir, strings.TrimSuffix(base, filepath.Ext(base)))
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
