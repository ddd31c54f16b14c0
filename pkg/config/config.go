// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/stills/pkg/adapters/smartdemuxer"
	"github.com/user/stills/pkg/orchestrator"
	"github.com/user/stills/pkg/ports"
	"github.com/user/stills/pkg/stages/extract"
	"github.com/user/stills/pkg/stages/sheet"
)

// Config represents the full configuration for stills.
type Config struct {
	// Sampling
	Workers    int      `yaml:"workers"`
	Extensions []string `yaml:"extensions"`

	// Output
	ImageFormat string `yaml:"image_format"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	MaxWidth    int    `yaml:"max_width"`

	// Decoding
	Demuxer     string `yaml:"demuxer"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Logging
	LogLevel ports.LogLevel `yaml:"log_level"`

	// Debug
	Debug    bool        `yaml:"debug"`
	DebugDir string      `yaml:"debug_dir"`
	Sheet    SheetConfig `yaml:"sheet"`
}

// SheetConfig styles the debug contact sheet.
type SheetConfig struct {
	Columns         int    `yaml:"columns"`
	ThumbWidth      int    `yaml:"thumb_width"`
	BackgroundColor string `yaml:"background_color"`
	LabelColor      string `yaml:"label_color"`
	FontPath        string `yaml:"font_path"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Extensions: orchestrator.DefaultExtensions(),

		ImageFormat: "png",
		JPEGQuality: 90,

		Demuxer: string(smartdemuxer.ModeAuto),

		LogLevel: ports.LevelInfo,

		DebugDir: "./debug",
		Sheet: SheetConfig{
			Columns:         4,
			ThumbWidth:      240,
			BackgroundColor: "#202020",
			LabelColor:      "#ffffff",
		},
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges and normalizes the extension list.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	}
	if _, err := ports.ParseImageFormat(c.ImageFormat); err != nil {
		return err
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be within 1..100: %d", c.JPEGQuality)
	}
	if c.MaxWidth < 0 {
		return fmt.Errorf("max_width must not be negative: %d", c.MaxWidth)
	}
	if _, err := smartdemuxer.ParseMode(c.Demuxer); err != nil {
		return err
	}
	if c.Sheet.Columns < 1 {
		return fmt.Errorf("sheet columns must be positive: %d", c.Sheet.Columns)
	}

	exts := make([]string, 0, len(c.Extensions))
	for _, e := range c.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	if len(exts) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	c.Extensions = exts
	return nil
}

// Format returns the parsed image format, PNG when unset or invalid.
func (c Config) Format() ports.ImageFormat {
	f, err := ports.ParseImageFormat(c.ImageFormat)
	if err != nil {
		return ports.FormatPNG
	}
	return f
}

// ParseColor parses a hex color string to color.Color.
// Anything other than #rrggbb or rrggbb yields black.
func ParseColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.Black
	}

	var rgb [3]uint8
	for i := range rgb {
		rgb[i] = hexValue(hex[2*i])<<4 | hexValue(hex[2*i+1])
	}

	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config for one run.
func (c Config) ToOrchestratorConfig(root, step string, numStills int) orchestrator.Config {
	return orchestrator.Config{
		Root:         root,
		Step:         step,
		NumStills:    numStills,
		Extensions:   c.Extensions,
		ContactSheet: c.Debug,
	}
}

// ExtractOptions returns the still encoding options.
func (c Config) ExtractOptions() extract.Options {
	return extract.Options{
		Format:    c.Format(),
		Quality:   c.JPEGQuality,
		MaxWidth:  c.MaxWidth,
		KeepImage: c.Debug,
	}
}

// SheetTheme returns the contact sheet theme.
func (c Config) SheetTheme() sheet.Theme {
	theme := sheet.DefaultTheme()
	if c.Sheet.Columns > 0 {
		theme.Columns = c.Sheet.Columns
	}
	if c.Sheet.ThumbWidth > 0 {
		theme.ThumbWidth = c.Sheet.ThumbWidth
	}
	if c.Sheet.BackgroundColor != "" {
		theme.Background = ParseColor(c.Sheet.BackgroundColor)
	}
	if c.Sheet.LabelColor != "" {
		theme.LabelColor = ParseColor(c.Sheet.LabelColor)
	}
	theme.FontPath = c.Sheet.FontPath
	return theme
}
