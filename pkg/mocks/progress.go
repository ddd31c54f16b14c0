package mocks

import (
	"sync"

	"github.com/user/stills/pkg/ports"
)

// Progress is a mock implementation of ports.Progress.
type Progress struct {
	mu     sync.Mutex
	Labels []string
	Totals []int
	Steps  int
	Ended  int
}

func (m *Progress) Begin(label string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Labels = append(m.Labels, label)
	m.Totals = append(m.Totals, total)
}

func (m *Progress) Step() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Steps++
}

func (m *Progress) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ended++
}

var _ ports.Progress = (*Progress)(nil)
