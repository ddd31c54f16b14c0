package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/stills/pkg/ports"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stills.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Format() != ports.FormatPNG {
		t.Errorf("expected png by default, got %v", cfg.Format())
	}
	if len(cfg.Extensions) != 6 {
		t.Errorf("expected 6 default extensions, got %v", cfg.Extensions)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
workers: 3
extensions: [MP4, .ts]
image_format: jpeg
jpeg_quality: 75
max_width: 1280
demuxer: ffmpeg
log_level: debug
sheet:
  columns: 6
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	if cfg.Workers != 3 || cfg.JPEGQuality != 75 || cfg.MaxWidth != 1280 {
		t.Errorf("unexpected numeric fields: %+v", cfg)
	}
	if cfg.Format() != ports.FormatJPEG {
		t.Errorf("expected jpeg, got %v", cfg.Format())
	}
	if cfg.LogLevel != ports.LevelDebug {
		t.Errorf("expected debug log level, got %v", cfg.LogLevel)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != ".mp4" || cfg.Extensions[1] != ".ts" {
		t.Errorf("extensions not normalized: %v", cfg.Extensions)
	}
	if cfg.Sheet.Columns != 6 || cfg.Sheet.ThumbWidth != 240 {
		t.Errorf("sheet settings not merged over defaults: %+v", cfg.Sheet)
	}
	if cfg.DebugDir != "./debug" {
		t.Errorf("unset keys should keep defaults, got debug_dir %q", cfg.DebugDir)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFromFile(writeConfig(t, "log_level: chatty\n")); err == nil {
		t.Error("expected error for unknown log level")
	}
	if _, err := LoadFromFile(writeConfig(t, "workers: [1, 2\n")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"unknown format", func(c *Config) { c.ImageFormat = "gif" }},
		{"quality too high", func(c *Config) { c.JPEGQuality = 101 }},
		{"negative max width", func(c *Config) { c.MaxWidth = -5 }},
		{"unknown demuxer", func(c *Config) { c.Demuxer = "vlc" }},
		{"no extensions", func(c *Config) { c.Extensions = []string{" "} }},
		{"zero sheet columns", func(c *Config) { c.Sheet.Columns = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#ff8000", color.RGBA{R: 255, G: 128, B: 0, A: 255}},
		{"0A0b0C", color.RGBA{R: 10, G: 11, B: 12, A: 255}},
		{"#fff", color.Black},
		{"", color.Black},
	}

	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConversions(t *testing.T) {
	cfg := Defaults()
	cfg.Debug = true
	cfg.ImageFormat = "jpg"
	cfg.JPEGQuality = 60
	cfg.Sheet.Columns = 2

	oc := cfg.ToOrchestratorConfig("/data", "step2", 5)
	if oc.Root != "/data" || oc.Step != "step2" || oc.NumStills != 5 || !oc.ContactSheet {
		t.Errorf("unexpected orchestrator config: %+v", oc)
	}

	opts := cfg.ExtractOptions()
	if opts.Format != ports.FormatJPEG || opts.Quality != 60 || !opts.KeepImage {
		t.Errorf("unexpected extract options: %+v", opts)
	}

	if theme := cfg.SheetTheme(); theme.Columns != 2 {
		t.Errorf("expected 2 sheet columns, got %d", theme.Columns)
	}
}
