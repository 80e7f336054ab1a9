package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/quran-downloader/internal/download"
	"github.com/handiism/quran-downloader/internal/model"
	"github.com/schollz/progressbar/v3"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4D96FF"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
)

// console prints progress events and keeps a batch progress bar at the
// bottom of the output.
type console struct {
	out     io.Writer
	verbose bool

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newConsole(out io.Writer, verbose bool) *console {
	return &console{out: out, verbose: verbose}
}

// Event prints a progress event.
func (c *console) Event(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !c.verbose {
		return
	}

	var line string
	switch event.Level {
	case download.LevelError:
		line = errorStyle.Render("✗ " + event.Message)
	case download.LevelWarning:
		line = warningStyle.Render("! " + event.Message)
	case download.LevelSuccess:
		line = successStyle.Render("✓ " + event.Message)
	case download.LevelInfo:
		line = infoStyle.Render("• " + event.Message)
	default:
		line = dimStyle.Render("  " + event.Message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar != nil {
		c.bar.Clear()
	}
	fmt.Fprintln(c.out, line)
	if c.bar != nil {
		c.bar.RenderBlank()
	}
}

// StartBatch shows a progress bar for n items.
func (c *console) StartBatch(n int, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bar = progressbar.NewOptions(n,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetItsString("file"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	c.bar.RenderBlank()
}

// Tick implements download.ProgressReporter.
func (c *console) Tick(model.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar != nil {
		c.bar.Add(1)
	}
}

// EndBatch removes the progress bar.
func (c *console) EndBatch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar != nil {
		c.bar.Finish()
		fmt.Fprintln(c.out)
		c.bar = nil
	}
}
