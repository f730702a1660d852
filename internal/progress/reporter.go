// Package progress provides feedback during startup emote loading.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback for multi-step operations.
type Reporter interface {
	Start(total int, description string)
	Step(message string)
	Finish()
}

// NewReporter returns a TerminalReporter, or a PlainReporter when
// running non-interactively (CI or piped output).
func NewReporter() Reporter {
	if os.Getenv("CI") != "" {
		return &PlainReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int, description string) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Step(message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Add(1)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// PlainReporter prints line-by-line progress suitable for logs.
type PlainReporter struct {
	total, done int
}

func (r *PlainReporter) Start(total int, description string) {
	r.total = total
	r.done = 0
	fmt.Fprintf(os.Stderr, "%s (%d steps)\n", description, total)
}

func (r *PlainReporter) Step(message string) {
	r.done++
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", r.done, r.total, message)
}

func (r *PlainReporter) Finish() {}

// NopReporter discards all progress. Used in tests.
type NopReporter struct{}

func (NopReporter) Start(int, string) {}
func (NopReporter) Step(string)       {}
func (NopReporter) Finish()           {}
