package orchestrator

import (
	"bytes"
	"strings"
	"sync"
)

// recorder is a goroutine-safe log sink for assertions.
type recorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

func (r *recorder) contains(s string) bool {
	return strings.Contains(r.String(), s)
}
