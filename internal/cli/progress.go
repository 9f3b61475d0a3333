package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// StageProgress shows how many pipeline stages have finished.
type StageProgress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
	done   int
	total  int
}

// NewStageProgress creates a progress bar over total stages. When disabled every method is a no-op.
func NewStageProgress(w io.Writer, total int, enabled bool) *StageProgress {
	p := &StageProgress{writer: w, total: total}
	if !enabled || w == nil {
		return p
	}

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Starting...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Start labels the bar with the stage about to run.
func (p *StageProgress) Start(stage string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("[cyan][bold]%s[reset]", stage))
}

// Done marks one stage as finished.
func (p *StageProgress) Done() {
	p.done++
	if p.bar == nil {
		return
	}
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Completed returns how many stages have finished.
func (p *StageProgress) Completed() int {
	return p.done
}

// Close clears the bar so following output starts on a clean line.
func (p *StageProgress) Close() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Clear(); err != nil {
		slog.Warn("Failed to clear progress bar", "error", err)
	}
}
