package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/quran-downloader/internal/catalog"
	"github.com/handiism/quran-downloader/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 2)

	reciterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

var menuEntries = []string{
	"1 - Download one surah",
	"2 - Download all surahs",
	"3 - List reciters",
	"4 - Set download location",
	"5 - Show current download path",
	"6 - Exit",
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return exitMessage() + "\n"
	}

	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("-- Quran Audio Downloader --"))
	b.WriteString("\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Fetching reciters..."))
		b.WriteString("\n")
	case StateMenu:
		b.WriteString(m.viewMenu())
	case StateChapterPrompt:
		b.WriteString(m.viewPrompt("Enter the surah name or number:"))
	case StateReciterPrompt:
		b.WriteString(m.viewPrompt("Enter the reciter name:"))
	case StatePathPrompt:
		b.WriteString(m.viewPrompt("Enter the new download location:"))
	case StateReciterList:
		b.WriteString(subtitleStyle.Render("Reciters List:"))
		b.WriteString("\n")
		b.WriteString(m.list.View())
		b.WriteString("\n")
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateRetryPrompt:
		b.WriteString(m.viewRetry())
	case StateFatal:
		b.WriteString(errorStyle.Render("Error occurred:"))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString("  " + m.err.Error())
		}
		b.WriteString("\n")
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewMenu() string {
	var b strings.Builder

	if m.status.Message != "" {
		b.WriteString(renderEntry(m.status))
		b.WriteString("\n\n")
	}

	b.WriteString(subtitleStyle.Render("Menu:"))
	b.WriteString("\n")
	for _, entry := range menuEntries {
		b.WriteString(infoStyle.Render("  " + entry))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s Verbose output (v)", verboseCheck)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewPrompt(label string) string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(label))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if matches := matchSuggestions(m.input.Value(), m.suggestionsFor(), 5); len(matches) > 0 {
		b.WriteString("\n")
		for _, s := range matches {
			b.WriteString(dimStyle.Render("  " + s))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) suggestionsFor() []string {
	switch m.state {
	case StateChapterPrompt:
		return catalog.Chapters().Completions()
	case StateReciterPrompt:
		return m.manager.Catalog().SortedNames()
	}
	return nil
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.reciter != nil {
		b.WriteString(reciterStyle.Render("♪ " + m.reciter.Name))
		b.WriteString("\n\n")
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Downloading surahs"))
	b.WriteString("\n")

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.finishedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d (%d saved) | Downloaded: %.2f MB",
		m.finishedFiles,
		m.totalFiles,
		m.downloadedFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewRetry() string {
	var b strings.Builder

	b.WriteString(m.renderLogs())
	b.WriteString("\n")

	failed := make([]string, 0, len(m.result.Failed))
	for _, item := range m.result.Failed {
		if ch, ok := catalog.Chapters().ByNumber(item.Chapter); ok {
			failed = append(failed, fmt.Sprintf("%d. %s", ch.Number, ch.Name))
		} else {
			failed = append(failed, item.String())
		}
	}

	b.WriteString(boxStyle.Render(
		warningStyle.Render("The following surahs have failed to download:") + "\n" +
			strings.Join(failed, "\n")))
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Do you want to retry? (y/n)"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder
	for _, entry := range m.logs {
		b.WriteString(renderEntry(entry))
		b.WriteString("\n")
	}
	return b.String()
}

func renderEntry(entry LogEntry) string {
	var style lipgloss.Style
	prefix := "•"
	switch entry.Level {
	case download.LevelError:
		style = errorStyle
		prefix = "✗"
	case download.LevelWarning:
		style = warningStyle
		prefix = "!"
	case download.LevelSuccess:
		style = successStyle
		prefix = "✓"
	case download.LevelInfo:
		style = infoStyle
		prefix = "›"
	default:
		style = dimStyle
	}
	return style.Render(prefix + " " + entry.Message)
}

func (m Model) helpText() string {
	switch m.state {
	case StateMenu:
		return "1-6: choose • v: verbose • q: quit"
	case StateChapterPrompt, StateReciterPrompt:
		return "tab: complete • enter: confirm • esc: back"
	case StatePathPrompt:
		return "enter: confirm • esc: back"
	case StateReciterList:
		return "↑/↓: scroll • esc: back"
	case StateDownloading:
		return "esc: cancel"
	case StateRetryPrompt:
		return "y: retry • n: back to menu"
	case StateFatal:
		return "q: quit"
	}
	return ""
}

// reciterList numbers names from 1.
func reciterList(names []string) string {
	var b strings.Builder
	for i, name := range names {
		fmt.Fprintf(&b, "%4d. %s\n", i+1, name)
	}
	return b.String()
}

// matchSuggestions returns up to limit suggestions starting with value,
// ignoring case. An empty value matches nothing.
func matchSuggestions(value string, suggestions []string, limit int) []string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return nil
	}

	var out []string
	for _, s := range suggestions {
		if strings.HasPrefix(strings.ToLower(s), value) {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func exitMessage() string {
	return warningStyle.Render("Exiting the application...") + "\n" +
		dimStyle.Render("As-Salamu Alaikum wa Rahmatullahi wa Barakatuh!")
}
