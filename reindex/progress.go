package reindex

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress receives notifications as a reindex run advances.
type Progress interface {
	// Start is called once before the first batch with the number of
	// sources in the corpus.
	Start(total int)

	// Advance is called after each batch with the cumulative number of
	// sources handled so far.
	Advance(done, total int)

	// Done is called with the final report when the run finishes or is
	// stopped by cancellation.
	Done(report Report)
}

// nopProgress discards all progress events.
type nopProgress struct{}

func (nopProgress) Start(int)        {}
func (nopProgress) Advance(int, int) {}
func (nopProgress) Done(Report)      {}

// ConsoleProgress renders a run as a single self-overwriting console
// line, typically on os.Stderr.
type ConsoleProgress struct {
	writer         io.Writer
	reportInterval int

	mu           sync.Mutex
	total        int
	lastReported int
	startTime    time.Time
	started      bool
}

// NewConsoleProgress creates a console renderer that prints at most one
// progress line every reportInterval sources.
func NewConsoleProgress(writer io.Writer, reportInterval int) *ConsoleProgress {
	if reportInterval <= 0 {
		reportInterval = 1
	}

	return &ConsoleProgress{
		writer:         writer,
		reportInterval: reportInterval,
	}
}

// Start begins a new run.
func (p *ConsoleProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.lastReported = 0
	p.startTime = time.Now()
	p.started = true
}

// Advance reports cumulative progress, printing when a report interval
// has been crossed since the last line.
func (p *ConsoleProgress) Advance(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	if done > total {
		done = total
	}

	if done-p.lastReported < p.reportInterval {
		return
	}

	p.report(done)
	p.lastReported = done
}

// Done prints the final progress line and a one-line summary.
func (p *ConsoleProgress) Done(report Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report(report.Embedded + report.Skipped + report.Failed)
	fmt.Fprintf(p.writer, "\nReindex finished in %v: %d embedded, %d skipped, %d failed\n",
		report.Elapsed.Round(time.Millisecond), report.Embedded, report.Skipped, report.Failed)
	p.started = false
}

// report prints the current progress. Must be called with the lock held.
func (p *ConsoleProgress) report(done int) {
	rate := 0.0
	if elapsed := time.Since(p.startTime); elapsed > 0 {
		rate = float64(done) / elapsed.Seconds()
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(done) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f sources/s",
		done, p.total, percentage, rate)
}
