package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/stills/pkg/mocks"
	"github.com/user/stills/pkg/ports"
)

var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{})
	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveProbeJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	data := []byte(`{"seconds": 10}`)
	if err := sink.SaveProbeJSON(filepath.Join("in", "clip.mp4"), data); err != nil {
		t.Fatalf("SaveProbeJSON failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "clip", "probe.json")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SaveScanTrace(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	if err := sink.SaveScanTrace("clip.mov", 7, []byte("{}")); err != nil {
		t.Fatalf("SaveScanTrace failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "clip", "scan", "scan-0007.json")
	if _, ok := fs.GetFile(expectedPath); !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
}

func TestSink_SaveContactSheet(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			if format != ports.FormatPNG {
				t.Errorf("expected PNG, got %v", format)
			}
			return []byte("png"), nil
		},
	}
	sink := New(testBaseDir, fs, renderer)

	if err := sink.SaveContactSheet("clip.mkv", image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("SaveContactSheet failed: %v", err)
	}
	if _, ok := fs.GetFile(filepath.Join(testBaseDir, "clip", "sheet.png")); !ok {
		t.Error("expected contact sheet to be saved")
	}
}

func TestSink_SaveContactSheetEncodeError(t *testing.T) {
	encodeErr := errors.New("boom")
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, encodeErr
		},
	}
	sink := New(testBaseDir, mocks.NewFileSystem(), renderer)

	err := sink.SaveContactSheet("clip.mp4", image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, encodeErr) {
		t.Errorf("expected wrapped encode error, got %v", err)
	}
}
