package mocks

import (
	"image"
	"sync"

	"github.com/user/stills/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Probes     map[string][]byte
	ScanTraces map[string]map[int][]byte
	Sheets     map[string]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:    enabled,
		Probes:     make(map[string][]byte),
		ScanTraces: make(map[string]map[int][]byte),
		Sheets:     make(map[string]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveProbeJSON(video string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Probes[video] = data
	return nil
}

func (m *DebugSink) SaveScanTrace(video string, index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScanTraces[video] == nil {
		m.ScanTraces[video] = make(map[int][]byte)
	}
	m.ScanTraces[video][index] = data
	return nil
}

func (m *DebugSink) SaveContactSheet(video string, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sheets[video] = img
	return nil
}

// Trace returns the scan trace saved for a still.
func (m *DebugSink) Trace(video string, index int) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.ScanTraces[video][index]
	return data, ok
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                           { return false }
func (m *NullSink) SaveProbeJSON(video string, data []byte) error            { return nil }
func (m *NullSink) SaveScanTrace(video string, index int, data []byte) error { return nil }
func (m *NullSink) SaveContactSheet(video string, img image.Image) error     { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
