// Package sheet renders a contact sheet of the stills of one video, with the
// timestamp of each frame printed under its thumbnail. It is a debug aid.
package sheet

import (
	"context"
	"fmt"
	"image/color"

	"github.com/user/stills/pkg/pipeline"
	"github.com/user/stills/pkg/ports"
)

// Theme holds the sheet geometry and colors.
type Theme struct {
	Columns    int
	ThumbWidth int
	Gap        int
	LabelSize  int
	Background color.Color
	LabelColor color.Color
	FontPath   string
}

// DefaultTheme returns the theme used by the CLI.
func DefaultTheme() Theme {
	return Theme{
		Columns:    4,
		ThumbWidth: 240,
		Gap:        8,
		LabelSize:  18,
		Background: color.RGBA{R: 32, G: 32, B: 32, A: 255},
		LabelColor: color.White,
	}
}

// Stage renders contact sheets.
type Stage struct {
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
	theme    Theme
}

// NewStage creates a new sheet stage.
func NewStage(renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger, theme Theme) *Stage {
	if theme.Columns <= 0 {
		theme.Columns = DefaultTheme().Columns
	}
	if theme.ThumbWidth <= 0 {
		theme.ThumbWidth = DefaultTheme().ThumbWidth
	}
	return &Stage{
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("sheet"),
		theme:    theme,
	}
}

// Execute draws the stills that carry an image and hands the sheet to the sink.
func (s *Stage) Execute(ctx context.Context, input pipeline.SheetInput) (pipeline.SheetResult, error) {
	var stills []pipeline.ExtractResult
	for _, st := range input.Stills {
		if st.Image != nil {
			stills = append(stills, st)
		}
	}
	if len(stills) == 0 {
		return pipeline.SheetResult{}, nil
	}

	t := s.theme
	first := stills[0].Image.Bounds()
	thumbH := first.Dy() * t.ThumbWidth / first.Dx()
	if thumbH < 1 {
		thumbH = 1
	}
	cols := t.Columns
	if len(stills) < cols {
		cols = len(stills)
	}
	rows := (len(stills) + cols - 1) / cols
	cellW := t.ThumbWidth + t.Gap
	cellH := thumbH + t.LabelSize + t.Gap

	canvas := s.renderer.CreateCanvas(cols*cellW+t.Gap, rows*cellH+t.Gap, t.Background)
	style := ports.TextStyle{
		FontSize: float64(t.LabelSize) * 0.7,
		FontPath: t.FontPath,
		Color:    t.LabelColor,
		Align:    ports.AlignCenter,
	}

	for i, st := range stills {
		x := t.Gap + (i%cols)*cellW
		y := t.Gap + (i/cols)*cellH
		canvas.DrawImageScaled(st.Image, x, y, t.ThumbWidth, thumbH)
		canvas.DrawText(FormatTimestamp(st.FrameSeconds), x+t.ThumbWidth/2, y+thumbH+t.LabelSize/2, style)
	}

	img := canvas.ToImage()
	if s.sink.Enabled() {
		if err := s.sink.SaveContactSheet(input.VideoPath, img); err != nil {
			return pipeline.SheetResult{}, fmt.Errorf("save contact sheet: %w", err)
		}
		s.logger.Debug("Contact sheet saved for %s", input.VideoPath)
	}
	return pipeline.SheetResult{Image: img}, nil
}

// FormatTimestamp renders seconds as mm:ss.mmm, or h:mm:ss.mmm past an hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds*1000 + 0.5)
	ms := total % 1000
	sec := total / 1000 % 60
	mins := total / 60000 % 60
	h := total / 3600000
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, mins, sec, ms)
	}
	return fmt.Sprintf("%02d:%02d.%03d", mins, sec, ms)
}
