package containerdetect

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFromBytes(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   Format
	}{
		{"mp4 ftyp", []byte("\x00\x00\x00\x20ftypisom\x00\x00\x02\x00"), FormatISOBMFF},
		{"quicktime moov first", []byte("\x00\x00\x10\x00moov"), FormatISOBMFF},
		{"matroska", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81}, FormatMatroska},
		{"avi", []byte("RIFF\x10\x00\x00\x00AVI LIST"), FormatAVI},
		{"wav is not avi", []byte("RIFF\x10\x00\x00\x00WAVEfmt "), FormatUnknown},
		{"mxf", []byte{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01, 0x0D, 0x01}, FormatMXF},
		{"text", []byte("hello world, not a video"), FormatUnknown},
		{"short", []byte{0x1A}, FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromBytes(tt.header); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDetectFromReader_ShortInput(t *testing.T) {
	got, err := DetectFromReader(bytes.NewReader([]byte{0x1A, 0x45, 0xDF, 0xA3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != FormatMatroska {
		t.Errorf("expected matroska, got %s", got)
	}
}

func TestDetectFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mov")
	os.WriteFile(path, []byte("\x00\x00\x00\x14ftypqt  \x00\x00\x00\x00"), 0644)

	got, err := DetectFromFile(path)
	if err != nil {
		t.Fatalf("DetectFromFile failed: %v", err)
	}
	if got != FormatISOBMFF {
		t.Errorf("expected isobmff, got %s", got)
	}

	if _, err := DetectFromFile(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}
