// Package progress renders per-video sampling progress on a terminal.
package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/user/stills/pkg/ports"
)

// Bar implements ports.Progress with a progressbar on a writer.
type Bar struct {
	out io.Writer

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBar creates a Bar writing to out.
func NewBar(out io.Writer) *Bar {
	return &Bar{out: out}
}

// New returns a Bar on stderr when stderr is a terminal and quiet is unset,
// and a Noop otherwise.
func New(quiet bool) ports.Progress {
	if quiet {
		return Noop{}
	}
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return Noop{}
	}
	return NewBar(os.Stderr)
}

func (b *Bar) Begin(label string, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Finish()
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (b *Bar) Step() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Add(1)
	}
}

func (b *Bar) End() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}

// Noop discards progress.
type Noop struct{}

func (Noop) Begin(string, int) {}
func (Noop) Step()             {}
func (Noop) End()              {}

var (
	_ ports.Progress = (*Bar)(nil)
	_ ports.Progress = Noop{}
)
