package ffmpegcontainer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/user/stills/pkg/ports"
)

func init() {
	ffmpeg.LogCompiledCommand = false
}

// seekMargin is how far before a frame the input seek lands, in seconds.
// The select filter then skips to the exact frame.
const seekMargin = 1.0

// Rasterizer renders single frames of a file to images with ffmpeg.
type Rasterizer struct {
	FFmpegPath string
}

// NewRasterizer locates ffmpeg and returns a Rasterizer using it.
func NewRasterizer(customPath string) (*Rasterizer, error) {
	p, err := FindFFmpeg(customPath)
	if err != nil {
		return nil, err
	}
	return &Rasterizer{FFmpegPath: p}, nil
}

// Frame decodes the first frame of the first video stream of path whose
// timestamp is at or after pts. startSeconds is the stream start time, used
// to turn pts into a seek offset relative to the start of the file.
func (r *Rasterizer) Frame(path string, tb ports.Rational, pts int64, startSeconds float64) (image.Image, error) {
	ss := tb.Seconds(pts) - startSeconds - seekMargin
	if ss < 0 {
		ss = 0
	}

	var out, stderr bytes.Buffer
	err := ffmpeg.Input(path, ffmpeg.KwArgs{
		"ss":              strconv.FormatFloat(ss, 'f', 6, 64),
		"noaccurate_seek": "",
		"copyts":          "",
		"v":               "error",
		"nostdin":         "",
	}).
		Output("pipe:1", ffmpeg.KwArgs{
			"map":      "0:v:0",
			"vf":       fmt.Sprintf(`select=gte(pts\,%d)`, pts),
			"frames:v": 1,
			"f":        "image2pipe",
			"c:v":      "png",
		}).
		SetFfmpegPath(r.FFmpegPath).
		WithOutput(&out).
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrRasterFailed, err, strings.TrimSpace(stderr.String()))
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: no frame at pts %d", ErrRasterFailed, pts)
	}

	img, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("%w: decode png: %v", ErrRasterFailed, err)
	}
	return img, nil
}
