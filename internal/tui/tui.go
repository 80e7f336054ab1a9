// Package tui provides the Bubble Tea interactive shell of quran-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/quran-downloader/internal/catalog"
	"github.com/handiism/quran-downloader/internal/config"
	"github.com/handiism/quran-downloader/internal/download"
	"github.com/handiism/quran-downloader/internal/model"
)

// State represents the current UI state.
type State int

const (
	StateLoading State = iota
	StateMenu
	StateChapterPrompt
	StateReciterPrompt
	StatePathPrompt
	StateReciterList
	StateDownloading
	StateRetryPrompt
	StateFatal
)

// action is the menu entry being carried out.
type action int

const (
	actionNone action = iota
	actionDownloadOne
	actionDownloadAll
)

const maxLogs = 10

// Downloader is what the shell drives. *download.Manager satisfies it.
type Downloader interface {
	Initialize(ctx context.Context) error
	Catalog() *catalog.Catalog
	Session() *config.Session
	Download(ctx context.Context, items []model.WorkItem, reporter download.ProgressReporter) *download.BatchResult
	GetProgress() (received, total int64, filesReceived, filesTotal int32)
	FinishedFiles() int32
}

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	input    textinput.Model
	list     viewport.Model
	spinner  spinner.Model
	progress progress.Model

	manager Downloader
	events  <-chan download.ProgressEvent
	logs    []LogEntry
	verbose bool

	// status is the feedback line shown above the menu.
	status LogEntry

	// Pending download
	action  action
	chapter model.Chapter
	reciter *model.Reciter
	items   []model.WorkItem
	result  *download.BatchResult

	ctx         context.Context
	cancel      context.CancelFunc
	batchCancel context.CancelFunc

	// Download progress
	totalFiles      int32
	downloadedFiles int32
	finishedFiles   int32
	receivedBytes   int64

	err      error
	quitting bool
	width    int
	height   int
}

// NewModel creates a new TUI model driving manager. events receives the
// manager's progress events; it may be nil.
func NewModel(manager Downloader, events <-chan download.ProgressEvent) Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60
	ti.ShowSuggestions = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateLoading,
		input:    ti,
		list:     viewport.New(70, 15),
		spinner:  sp,
		progress: prog,
		manager:  manager,
		events:   events,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initialize(), m.waitForEvent())
}

// Message types
type (
	// ProgressMsg carries a progress event from the manager.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent once the reciter listing is loaded.
	InitDoneMsg struct {
		Err error
	}

	// BatchDoneMsg is sent when a batch has finished.
	BatchDoneMsg struct {
		Result *download.BatchResult
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		m.list.Width = max(msg.Width-4, 20)
		m.list.Height = max(msg.Height-8, 5)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
			if len(m.logs) > maxLogs {
				m.logs = m.logs[len(m.logs)-maxLogs:]
			}
		}
		cmds = append(cmds, m.waitForEvent())

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateFatal
			m.err = msg.Err
			return m, nil
		}
		m.state = StateMenu

	case BatchDoneMsg:
		m = m.finishBatch(msg.Result)

	case TickMsg:
		if m.state == StateDownloading {
			received, _, files, totalFiles := m.manager.GetProgress()
			m.receivedBytes = received
			m.downloadedFiles = files
			m.totalFiles = totalFiles
			m.finishedFiles = m.manager.FinishedFiles()

			var percent float64
			if totalFiles > 0 {
				percent = float64(m.finishedFiles) / float64(totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateMenu:
		return m.handleMenu(msg.String())

	case StateChapterPrompt, StateReciterPrompt, StatePathPrompt:
		switch msg.Type {
		case tea.KeyEsc:
			m.state = StateMenu
			m.input.Blur()
			return m, nil
		case tea.KeyEnter:
			return m.submitPrompt()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case StateReciterList:
		switch msg.String() {
		case "esc", "q", "enter":
			m.state = StateMenu
			return m, nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case StateDownloading:
		if msg.Type == tea.KeyEsc && m.batchCancel != nil {
			m.batchCancel()
		}

	case StateRetryPrompt:
		switch msg.String() {
		case "y", "Y":
			m.logs = nil
			m = m.withStatus(download.LevelInfo, "Retrying failed surahs...")
			return m.startBatch(m.result.Failed)
		case "n", "N", "esc":
			m.state = StateMenu
			m = m.withStatus(download.LevelWarning, "Exiting download of failed surahs.")
		}

	case StateFatal:
		if msg.String() == "q" || msg.Type == tea.KeyEsc {
			return m.quit()
		}
	}

	return m, nil
}

func (m Model) handleMenu(key string) (tea.Model, tea.Cmd) {
	m.status = LogEntry{}

	switch key {
	case "1":
		m.action = actionDownloadOne
		return m.prompt(StateChapterPrompt, "Al-Fatiha or 1", catalog.Chapters().Completions())
	case "2":
		m.action = actionDownloadAll
		return m.prompt(StateReciterPrompt, "Reciter name", m.manager.Catalog().SortedNames())
	case "3":
		m.list.SetContent(reciterList(m.manager.Catalog().SortedNames()))
		m.list.GotoTop()
		m.state = StateReciterList
	case "4":
		return m.prompt(StatePathPrompt, m.manager.Session().DownloadRoot(), nil)
	case "5":
		m = m.withStatus(download.LevelVerbose, "Current download path: "+m.manager.Session().DownloadRoot())
	case "6", "q":
		return m.quit()
	case "v":
		m.verbose = !m.verbose
	default:
		m = m.withStatus(download.LevelError, "Invalid choice, please try again.")
	}

	return m, nil
}

// prompt switches to a text prompt completing from suggestions.
func (m Model) prompt(state State, placeholder string, suggestions []string) (tea.Model, tea.Cmd) {
	m.state = state
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.SetSuggestions(suggestions)
	return m, tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	m.input.Blur()

	switch m.state {
	case StateChapterPrompt:
		chapter, ok := catalog.Chapters().Lookup(value)
		if !ok {
			m.state = StateMenu
			return m.withStatus(download.LevelError, "Invalid surah. Please try again."), nil
		}
		m.chapter = chapter
		return m.prompt(StateReciterPrompt, "Reciter name", m.manager.Catalog().SortedNames())

	case StateReciterPrompt:
		reciter, err := m.manager.Catalog().FindReciter(value)
		if err != nil {
			m.state = StateMenu
			return m.withStatus(download.LevelError, "Given reciter does not exist. Please try again."), nil
		}
		m.reciter = reciter

		var items []model.WorkItem
		if m.action == actionDownloadAll {
			items = download.AllChapters(reciter.ID)
		} else {
			items = []model.WorkItem{{Chapter: m.chapter.Number, ReciterID: reciter.ID}}
		}
		m.logs = nil
		m.status = LogEntry{}
		return m.startBatch(items)

	case StatePathPrompt:
		m.state = StateMenu
		path, err := m.manager.Session().SetDownloadRoot(value)
		if err != nil {
			return m.withStatus(download.LevelError, fmt.Sprintf("Invalid path: %v", err)), nil
		}
		return m.withStatus(download.LevelSuccess, "Download location set to: "+path), nil
	}

	return m, nil
}

func (m Model) startBatch(items []model.WorkItem) (tea.Model, tea.Cmd) {
	batchCtx, cancel := context.WithCancel(m.ctx)
	m.state = StateDownloading
	m.items = items
	m.batchCancel = cancel
	m.downloadedFiles = 0
	m.finishedFiles = 0
	m.totalFiles = int32(len(items))
	m.receivedBytes = 0

	manager := m.manager
	run := func() tea.Msg {
		defer cancel()
		return BatchDoneMsg{Result: manager.Download(batchCtx, items, nil)}
	}

	return m, tea.Batch(run, m.spinner.Tick, m.tickProgress(), m.progress.SetPercent(0))
}

func (m Model) finishBatch(result *download.BatchResult) Model {
	cancelled := m.ctx.Err() != nil || batchCancelled(result)
	m.batchCancel = nil

	m.result = result
	m.downloadedFiles = int32(result.Succeeded)
	m.finishedFiles = int32(len(result.Outcomes))
	m.totalFiles = int32(result.Total)

	switch {
	case result.OK():
		m.state = StateMenu
		return m.withStatus(download.LevelSuccess, "Download Complete!")
	case cancelled:
		m.state = StateMenu
		return m.withStatus(download.LevelWarning, fmt.Sprintf("Download cancelled, %d of %d file(s) done.", result.Succeeded, result.Total))
	default:
		m.state = StateRetryPrompt
		return m
	}
}

// batchCancelled reports whether every failure of result comes from a
// cancelled context.
func batchCancelled(result *download.BatchResult) bool {
	n := 0
	for _, o := range result.Outcomes {
		if o.OK() {
			continue
		}
		if !errors.Is(o.Err, context.Canceled) {
			return false
		}
		n++
	}
	return n > 0
}

func (m Model) withStatus(level download.ProgressLevel, message string) Model {
	m.status = LogEntry{Message: message, Level: level}
	return m
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent turns the next progress event into a message.
func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

func (m Model) initialize() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		return InitDoneMsg{Err: manager.Initialize(ctx)}
	}
}

// Forward returns a progress callback feeding events. Events are dropped
// while the channel is full.
func Forward(events chan<- download.ProgressEvent) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		select {
		case events <- event:
		default:
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	events := make(chan download.ProgressEvent, 256)
	session := config.NewSession(settings.DownloadsPath)
	manager := download.NewManager(settings, session, Forward(events))

	p := tea.NewProgram(NewModel(manager, events), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(Model)
	if !ok {
		return nil
	}
	if m.err != nil {
		return m.err
	}
	fmt.Println(exitMessage())
	return nil
}
