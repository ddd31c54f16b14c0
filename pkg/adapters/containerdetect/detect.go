// Package containerdetect identifies video container formats from their
// leading bytes.
package containerdetect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Format represents a container format family.
type Format string

const (
	// FormatISOBMFF covers MP4, MOV, M4V and 3GP.
	FormatISOBMFF Format = "isobmff"
	// FormatMatroska covers MKV and WebM.
	FormatMatroska Format = "matroska"
	FormatAVI      Format = "avi"
	FormatMXF      Format = "mxf"
	FormatUnknown  Format = "unknown"
)

// headerSize is enough for every signature below.
const headerSize = 16

var (
	ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}
	mxfMagic  = []byte{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01}
)

// isoTopLevel lists box types that may open an ISO-BMFF file. QuickTime
// files written without ftyp start with one of the others.
var isoTopLevel = map[string]bool{
	"ftyp": true, "moov": true, "mdat": true, "free": true,
	"skip": true, "wide": true, "pnot": true, "styp": true,
}

// DetectFromFile reads the start of path and detects its format.
func DetectFromFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return DetectFromReader(f)
}

// DetectFromReader detects the format from the first bytes of r.
func DetectFromReader(r io.Reader) (Format, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, fmt.Errorf("read header: %w", err)
	}
	return DetectFromBytes(buf[:n]), nil
}

// DetectFromBytes detects the format from a file header.
func DetectFromBytes(header []byte) Format {
	switch {
	case len(header) >= 8 && isoTopLevel[string(header[4:8])]:
		return FormatISOBMFF
	case bytes.HasPrefix(header, ebmlMagic):
		return FormatMatroska
	case len(header) >= 12 && string(header[0:4]) == "RIFF" && string(header[8:12]) == "AVI ":
		return FormatAVI
	case bytes.HasPrefix(header, mxfMagic):
		return FormatMXF
	default:
		return FormatUnknown
	}
}
