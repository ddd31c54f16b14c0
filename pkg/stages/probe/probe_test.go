package probe

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/user/stills/pkg/adapters/logger"
	"github.com/user/stills/pkg/mocks"
	"github.com/user/stills/pkg/pipeline"
	"github.com/user/stills/pkg/ports"
)

var ms = ports.Rational{Num: 1, Den: 1000}

func newStage(d *mocks.Demuxer, sink ports.DebugSink) *Stage {
	return NewStage(d, sink, logger.NewNoop())
}

func TestStage_Execute_Metadata(t *testing.T) {
	d := mocks.NewDemuxer()
	d.Add("clip.mp4", mocks.ConstantRateVideo(ms, 250, 40, 25, true))

	result, err := newStage(d, mocks.NewDebugSink(false)).Execute(context.Background(), pipeline.ProbeInput{VideoPath: "clip.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Seconds != 10.0 {
		t.Errorf("expected 10.0s, got %v", result.Seconds)
	}
	if result.Source != pipeline.SourceMetadata {
		t.Errorf("expected metadata source, got %s", result.Source)
	}
	if d.Opens() != 1 || d.Closes() != 1 {
		t.Errorf("expected one open and one close, got %d/%d", d.Opens(), d.Closes())
	}
}

func TestStage_Execute_DecodeFallback(t *testing.T) {
	tests := []struct {
		name  string
		video *mocks.Video
		want  float64
	}{
		{
			name:  "no declared duration, last frame at 8s",
			video: mocks.ConstantRateVideo(ms, 9, 1000, 3, false),
			want:  8.0,
		},
		{
			name: "declared duration of zero",
			video: func() *mocks.Video {
				v := mocks.ConstantRateVideo(ports.Rational{Num: 1, Den: 90000}, 31, 3000, 10, false)
				v.Stream.Duration = ports.TS(0)
				return v
			}(),
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mocks.NewDemuxer()
			d.Add("clip.mkv", tt.video)

			result, err := newStage(d, mocks.NewDebugSink(false)).Execute(context.Background(), pipeline.ProbeInput{VideoPath: "clip.mkv"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(result.Seconds-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, result.Seconds)
			}
			if result.Source != pipeline.SourceDecode {
				t.Errorf("expected decode source, got %s", result.Source)
			}
			if result.FramesDecoded != len(tt.video.Frames) {
				t.Errorf("expected %d frames decoded, got %d", len(tt.video.Frames), result.FramesDecoded)
			}
		})
	}
}

func TestStage_Execute_Unavailable(t *testing.T) {
	lastUndefined := mocks.ConstantRateVideo(ms, 5, 1000, 1, false)
	lastUndefined.Frames[4].PTS = ports.NoTS

	onlyZero := &mocks.Video{
		Stream: ports.StreamInfo{TimeBase: ms},
		Frames: []ports.Frame{{PTS: ports.TS(0), Keyframe: true}},
	}

	tests := []struct {
		name  string
		video *mocks.Video
	}{
		{"empty stream", &mocks.Video{Stream: ports.StreamInfo{TimeBase: ms}}},
		{"last frame without timestamp", lastUndefined},
		{"single frame at zero", onlyZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mocks.NewDemuxer()
			d.Add("clip.avi", tt.video)

			_, err := newStage(d, mocks.NewDebugSink(false)).Execute(context.Background(), pipeline.ProbeInput{VideoPath: "clip.avi"})
			if !errors.Is(err, pipeline.ErrDurationUnavailable) {
				t.Fatalf("expected ErrDurationUnavailable, got %v", err)
			}
			if d.Closes() != 1 {
				t.Errorf("expected handle to be closed")
			}
		})
	}
}

func TestStage_Execute_OpenError(t *testing.T) {
	d := mocks.NewDemuxer()
	d.OpenErr = ports.ErrNoVideoStream

	_, err := newStage(d, mocks.NewDebugSink(false)).Execute(context.Background(), pipeline.ProbeInput{VideoPath: "audio.mp4"})
	if !errors.Is(err, ports.ErrNoVideoStream) {
		t.Fatalf("expected ErrNoVideoStream, got %v", err)
	}
	if errors.Is(err, pipeline.ErrDurationUnavailable) {
		t.Error("open failures should not be reported as unavailable duration")
	}
}

func TestStage_Execute_DecodeError(t *testing.T) {
	decodeErr := errors.New("invalid NAL unit")
	v := mocks.ConstantRateVideo(ms, 5, 1000, 1, false)
	v.ReadErr = decodeErr
	d := mocks.NewDemuxer()
	d.Add("clip.mkv", v)

	_, err := newStage(d, mocks.NewDebugSink(false)).Execute(context.Background(), pipeline.ProbeInput{VideoPath: "clip.mkv"})
	if !errors.Is(err, decodeErr) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if errors.Is(err, pipeline.ErrDurationUnavailable) {
		t.Error("decode failures should propagate without being reported as unavailable duration")
	}
	if d.Closes() != 1 {
		t.Error("expected handle to be closed")
	}
}

func TestStage_Execute_CustomStrategyOrder(t *testing.T) {
	d := mocks.NewDemuxer()
	v := mocks.ConstantRateVideo(ms, 5, 1000, 1, true)
	d.Add("clip.mp4", v)

	stage := NewStageWithStrategies(d, mocks.NewDebugSink(false), logger.NewNoop(), LastFrameStrategy{})
	result, err := stage.Execute(context.Background(), pipeline.ProbeInput{VideoPath: "clip.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != pipeline.SourceDecode || result.Seconds != 4.0 {
		t.Errorf("expected 4.0s from decode, got %v from %s", result.Seconds, result.Source)
	}
}

func TestStage_Execute_DebugOutput(t *testing.T) {
	d := mocks.NewDemuxer()
	d.Add("clip.mp4", mocks.ConstantRateVideo(ms, 10, 100, 5, true))
	sink := mocks.NewDebugSink(true)

	if _, err := newStage(d, sink).Execute(context.Background(), pipeline.ProbeInput{VideoPath: "clip.mp4"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.Probes["clip.mp4"]; !ok {
		t.Error("expected probe result in debug sink")
	}
}
