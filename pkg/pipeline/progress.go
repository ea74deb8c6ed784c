package pipeline

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// progressReporter emits cosmetic per-iteration progress. It never affects
// data flow or error behaviour.
type progressReporter interface {
	start(name string, total int) progressRun
}

type progressRun interface {
	advance()
	finish()
}

type nopProgress struct{}

func (nopProgress) start(string, int) progressRun {
	return nopProgressRun{}
}

type nopProgressRun struct{}

func (nopProgressRun) advance() {}
func (nopProgressRun) finish()  {}

type barProgress struct{}

func (barProgress) start(name string, total int) progressRun {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Processing "+name),
		progressbar.OptionSetItsString("item"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	return &barProgressRun{bar: bar}
}

type barProgressRun struct {
	bar *progressbar.ProgressBar
}

func (r *barProgressRun) advance() {
	_ = r.bar.Add(1)
}

func (r *barProgressRun) finish() {
	_ = r.bar.Finish()
}

var (
	_ progressReporter = nopProgress{}
	_ progressReporter = barProgress{}
)
