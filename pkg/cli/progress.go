package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running estimations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

// SimpleProgress implements a single-line text progress bar.
type SimpleProgress struct {
	mu      sync.Mutex
	total   int64
	current int64
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress reporter that writes to w. A nil
// writer defaults to os.Stderr so piped table output stays clean.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{writer: w}
}

// Start initializes the reporter with the total number of steps.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.render()
}

// Update updates the current progress.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish completes the bar and moves to a fresh line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	elapsed := time.Since(p.started)
	rate := float64(p.current) / elapsed.Seconds()

	fmt.Fprintf(p.writer, "\r[%s] %.1f%% (%d/%d) %.0f draws/s",
		bar, percent, p.current, p.total, rate)
}

// NopProgress discards all progress updates. Used when output is not a
// terminal or in quiet mode.
type NopProgress struct{}

func (NopProgress) Start(int64)  {}
func (NopProgress) Update(int64) {}
func (NopProgress) Finish()      {}
