package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/stills/pkg/adapters/logger"
	"github.com/user/stills/pkg/mocks"
	"github.com/user/stills/pkg/pipeline"
	"github.com/user/stills/pkg/ports"
	"github.com/user/stills/pkg/stages/extract"
	"github.com/user/stills/pkg/stages/probe"
	"github.com/user/stills/pkg/stages/sample"
)

// mockSampleStage records the videos it was asked to sample.
type mockSampleStage struct {
	calls  []pipeline.SampleInput
	failOn string
	err    error
	before func(input pipeline.SampleInput)
}

func (m *mockSampleStage) Execute(ctx context.Context, input pipeline.SampleInput) (pipeline.SampleResult, error) {
	if m.before != nil {
		m.before(input)
	}
	m.calls = append(m.calls, input)
	if m.failOn != "" && filepath.Base(input.VideoPath) == m.failOn {
		return pipeline.SampleResult{}, m.err
	}
	stills := make([]pipeline.ExtractResult, input.NumStills)
	for i := range stills {
		stills[i] = pipeline.ExtractResult{
			Index: i,
			Path:  filepath.Join(input.OutputDir, sample.StillName(input.VideoPath, i, "png")),
		}
	}
	return pipeline.SampleResult{
		Duration: pipeline.ProbeResult{Seconds: 10, Source: pipeline.SourceMetadata},
		Stills:   stills,
	}, nil
}

// mockSheetStage counts contact sheet requests.
type mockSheetStage struct {
	calls int
	err   error
}

func (m *mockSheetStage) Execute(ctx context.Context, input pipeline.SheetInput) (pipeline.SheetResult, error) {
	m.calls++
	return pipeline.SheetResult{}, m.err
}

func setupStep(fs *mocks.FileSystem, root string, names ...string) {
	fs.AddDir(filepath.Join(root, "step1", "input"))
	for _, n := range names {
		fs.WriteFile(filepath.Join(root, "step1", "input", n), []byte("video"))
	}
}

func testConfig(root string, n int) Config {
	cfg := DefaultConfig()
	cfg.Root = root
	cfg.Step = "step1"
	cfg.NumStills = n
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		step    string
		n       int
		wantErr error
	}{
		{"step1", "step1", 3, nil},
		{"step2", "step2", 1, nil},
		{"unknown step", "step3", 3, ErrUnknownStep},
		{"zero stills", "step1", 0, pipeline.ErrInvalidStillCount},
		{"negative stills", "step2", -2, pipeline.ErrInvalidStillCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Step: tt.step, NumStills: tt.n}
			err := cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_IsVideo(t *testing.T) {
	cfg := DefaultConfig()
	for name, want := range map[string]bool{
		"a.mp4":           true,
		"B.MOV":           true,
		"c.Mkv":           true,
		"d.webm":          true,
		"e.mxf":           true,
		"f.avi":           true,
		"notes.txt":       false,
		"mp4":             false,
		"archive.mp4.zip": false,
		".mp4":            false,
		"..MKV":           false,
		".hidden.mp4":     true,
	} {
		if got := cfg.IsVideo(name); got != want {
			t.Errorf("IsVideo(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestConfig_Dirs(t *testing.T) {
	cfg := testConfig("/data", 3)
	if got := cfg.InputDir(); got != filepath.Join("/data", "step1", "input") {
		t.Errorf("unexpected input dir %s", got)
	}
	if got := cfg.OutputDir(); got != filepath.Join("/data", "step1", "output") {
		t.Errorf("unexpected output dir %s", got)
	}
}

func TestOrchestrator_Run(t *testing.T) {
	fs := mocks.NewFileSystem()
	root := "/work"
	setupStep(fs, root, "b.mp4", "notes.txt", "a.MOV")
	fs.AddDir(filepath.Join(root, "step1", "input", "nested.mp4"))

	sampleStage := &mockSampleStage{}
	orch := New(sampleStage, nil, fs, logger.NewNoop())

	result, err := orch.Run(context.Background(), testConfig(root, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sampleStage.calls) != 2 {
		t.Fatalf("expected 2 videos sampled, got %d", len(sampleStage.calls))
	}
	if filepath.Base(sampleStage.calls[0].VideoPath) != "a.MOV" || filepath.Base(sampleStage.calls[1].VideoPath) != "b.mp4" {
		t.Errorf("videos not processed in name order: %+v", sampleStage.calls)
	}
	for _, c := range sampleStage.calls {
		if c.OutputDir != filepath.Join(root, "step1", "output") {
			t.Errorf("unexpected output dir %s", c.OutputDir)
		}
		if c.NumStills != 3 {
			t.Errorf("expected 3 stills requested, got %d", c.NumStills)
		}
	}

	if len(result.Videos) != 2 || result.TotalStills() != 6 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Videos[0].Name != "a.MOV" || result.Videos[0].Source != pipeline.SourceMetadata {
		t.Errorf("unexpected first video: %+v", result.Videos[0])
	}
	if ok, _ := fs.Exists(filepath.Join(root, "step1", "output")); !ok {
		t.Error("output directory was not created")
	}
}

func TestOrchestrator_ClearsOutputBeforeSampling(t *testing.T) {
	fs := mocks.NewFileSystem()
	root := "/work"
	setupStep(fs, root, "clip.mp4")
	outDir := filepath.Join(root, "step1", "output")
	fs.AddDir(outDir)
	fs.AddDir(filepath.Join(outDir, "old"))
	fs.WriteFile(filepath.Join(outDir, "stale_0000.png"), []byte("x"))
	fs.WriteFile(filepath.Join(outDir, "old", "stale_0001.png"), []byte("x"))

	sampleStage := &mockSampleStage{
		before: func(pipeline.SampleInput) {
			for p := range fs.GetAllFiles() {
				if filepath.Dir(p) != filepath.Join(root, "step1", "input") {
					t.Errorf("file %s still present when sampling started", p)
				}
			}
		},
	}
	orch := New(sampleStage, nil, fs, logger.NewNoop())

	result, err := orch.Run(context.Background(), testConfig(root, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cleared != 2 {
		t.Errorf("expected 2 cleared files, got %d", result.Cleared)
	}
	if ok, _ := fs.Exists(filepath.Join(outDir, "old")); !ok {
		t.Error("subdirectory of output should be kept")
	}
}

func TestOrchestrator_NoVideos(t *testing.T) {
	fs := mocks.NewFileSystem()
	root := "/work"
	setupStep(fs, root, "readme.txt")

	var out, errOut recorder
	sampleStage := &mockSampleStage{}
	orch := New(sampleStage, nil, fs, logger.NewWriter(ports.LevelInfo, &out, &errOut))

	result, err := orch.Run(context.Background(), testConfig(root, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sampleStage.calls) != 0 || len(result.Videos) != 0 {
		t.Error("expected nothing to be sampled")
	}
	if !out.contains("No videos found in " + filepath.Join(root, "step1", "input")) {
		t.Errorf("expected no-videos message, got %q", out.String())
	}
}

func TestOrchestrator_MissingInputDir(t *testing.T) {
	fs := mocks.NewFileSystem()
	orch := New(&mockSampleStage{}, nil, fs, logger.NewNoop())

	if _, err := orch.Run(context.Background(), testConfig("/nowhere", 3)); err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestOrchestrator_StopsAtFirstFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	root := "/work"
	setupStep(fs, root, "a.mp4", "b.mp4", "c.mp4")

	boom := errors.New("boom")
	sampleStage := &mockSampleStage{failOn: "b.mp4", err: boom}
	orch := New(sampleStage, nil, fs, logger.NewNoop())

	result, err := orch.Run(context.Background(), testConfig(root, 2))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(sampleStage.calls) != 2 {
		t.Errorf("expected c.mp4 not to be attempted, got %d calls", len(sampleStage.calls))
	}
	if len(result.Videos) != 1 {
		t.Errorf("expected 1 completed video, got %d", len(result.Videos))
	}
}

func TestOrchestrator_CancelledBetweenVideos(t *testing.T) {
	fs := mocks.NewFileSystem()
	root := "/work"
	setupStep(fs, root, "a.mp4", "b.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sampleStage := &mockSampleStage{before: func(pipeline.SampleInput) { cancel() }}
	orch := New(sampleStage, nil, fs, logger.NewNoop())

	_, err := orch.Run(ctx, testConfig(root, 2))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(sampleStage.calls) != 1 {
		t.Errorf("expected the running video to finish and no other to start, got %d calls", len(sampleStage.calls))
	}
}

func TestOrchestrator_ContactSheet(t *testing.T) {
	fs := mocks.NewFileSystem()
	root := "/work"
	setupStep(fs, root, "a.mp4", "b.mp4")

	sheet := &mockSheetStage{err: errors.New("disk full")}
	orch := New(&mockSampleStage{}, sheet, fs, logger.NewNoop())

	cfg := testConfig(root, 2)
	cfg.ContactSheet = true
	if _, err := orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("sheet failure should not fail the run: %v", err)
	}
	if sheet.calls != 2 {
		t.Errorf("expected 2 sheets, got %d", sheet.calls)
	}
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	fs := mocks.NewFileSystem()
	root := "/work"
	setupStep(fs, root, "video.mp4", "notes.txt")
	videoPath := filepath.Join(root, "step1", "input", "video.mp4")

	demuxer := mocks.NewDemuxer()
	demuxer.Add(videoPath, mocks.ConstantRateVideo(ports.Rational{Num: 1, Den: 1000}, 250, 40, 25, true))

	renderer := &mocks.Renderer{}
	sink := mocks.NewDebugSink(false)
	log := logger.NewNoop()
	probeStage := probe.NewStage(demuxer, sink, log)
	extractStage := extract.NewStage(demuxer, renderer, fs, sink, log, extract.Options{Format: ports.FormatPNG})
	sampleStage := sample.NewStage(probeStage, extractStage, &mocks.Progress{}, log, ports.FormatPNG, 2)

	orch := New(sampleStage, nil, fs, log)
	result, err := orch.Run(context.Background(), testConfig(root, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Videos) != 1 || result.Videos[0].Duration != 10 {
		t.Fatalf("unexpected result: %+v", result.Videos)
	}
	for i := 0; i < 3; i++ {
		p := filepath.Join(root, "step1", "output", sample.StillName(videoPath, i, "png"))
		if _, ok := fs.GetFile(p); !ok {
			t.Errorf("expected still %s", p)
		}
	}
	if demuxer.Opens() != demuxer.Closes() {
		t.Errorf("handles leaked: %d opened, %d closed", demuxer.Opens(), demuxer.Closes())
	}
}
