package pipeline

import "errors"

var (
	// ErrDurationUnavailable is returned when neither the stream metadata nor a
	// full decode yields a positive duration.
	ErrDurationUnavailable = errors.New("duration unavailable")

	// ErrFrameExtractionFailed is returned when no frame with a defined
	// timestamp could be decoded after seeking.
	ErrFrameExtractionFailed = errors.New("frame extraction failed")

	// ErrIOWrite is returned when a still cannot be persisted.
	ErrIOWrite = errors.New("write failed")

	// ErrInvalidStillCount is returned for a still count below one.
	ErrInvalidStillCount = errors.New("number of stills must be at least 1")
)
