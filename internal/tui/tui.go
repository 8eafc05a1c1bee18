// Package tui provides a Bubble Tea terminal user interface for musicq.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/musicq/internal/download"
	"github.com/handiism/musicq/internal/status"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
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

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const (
	refreshInterval = 500 * time.Millisecond
	maxLogs         = 10
	recentItems     = 3
)

// Coordinator is the part of download.Coordinator the TUI drives.
type Coordinator interface {
	Submit(sourceRef string) (string, error)
	StatusSnapshot() status.Snapshot
	QueueLen() int
	Workers() int
	Shutdown(ctx context.Context) error
	Stop(ctx context.Context) error
	Kill()
}

// State represents the current UI state.
type State int

const (
	// StateRunning accepts new URLs.
	StateRunning State = iota
	// StateDraining finishes every queued and active item.
	StateDraining
	// StateStopping finishes active items only.
	StateStopping
	// StateDone means every worker has exited.
	StateDone
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
	Time    time.Time
}

// Options configures the TUI.
type Options struct {
	Coordinator Coordinator

	// Events carries coordinator events. May be nil.
	Events <-chan download.ProgressEvent

	// DownloadsPath is shown under the input.
	DownloadsPath string

	// Verbose shows verbose events from the start.
	Verbose bool
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	coord         Coordinator
	events        <-chan download.ProgressEvent
	downloadsPath string

	snapshot   status.Snapshot
	logs       []LogEntry
	notice     string
	noticeErr  bool
	interrupts int
	verbose    bool
	err        error

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 30

	return Model{
		state:         StateRunning,
		textInput:     ti,
		spinner:       sp,
		progress:      prog,
		coord:         opts.Coordinator,
		events:        opts.Events,
		downloadsPath: opts.DownloadsPath,
		snapshot:      opts.Coordinator.StatusSnapshot(),
		verbose:       opts.Verbose,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, tick(), m.waitForEvent())
}

// Message types
type (
	// EventMsg carries one coordinator event.
	EventMsg struct {
		Event download.ProgressEvent
	}

	// TickMsg refreshes the status panel.
	TickMsg struct{}

	// DoneMsg is sent once the coordinator has stopped.
	DoneMsg struct {
		Err error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width/3, 20), 50)
		m.textInput.Width = min(max(msg.Width-10, 20), 100)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.interrupt()

		case "esc":
			if m.state == StateRunning {
				return m.beginShutdown()
			}
			return m, nil

		case "ctrl+v":
			m.verbose = !m.verbose
			return m, nil

		case "enter":
			if m.state == StateRunning {
				return m.submit()
			}
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		m.addLog(msg.Event)
		cmds = append(cmds, m.waitForEvent())

	case TickMsg:
		m.snapshot = m.coord.StatusSnapshot()
		if m.state != StateDone {
			cmds = append(cmds, tick())
		}

	case DoneMsg:
		if m.state == StateDone {
			return m, nil
		}
		m.state = StateDone
		m.err = msg.Err
		m.snapshot = m.coord.StatusSnapshot()
		return m, tea.Quit
	}

	if m.state == StateRunning {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit handles a line typed into the input.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.textInput.Value())
	m.textInput.SetValue("")

	switch strings.ToLower(line) {
	case "":
		return m, nil
	case "q", "quit", "exit":
		return m.beginShutdown()
	case "s", "status":
		m.snapshot = m.coord.StatusSnapshot()
		m.setNotice(false, "Status refreshed")
		return m, nil
	}

	if _, err := m.coord.Submit(line); err != nil {
		m.setNotice(true, fmt.Sprintf("Not queued: %v", err))
		return m, nil
	}
	m.snapshot = m.coord.StatusSnapshot()
	m.setNotice(false, fmt.Sprintf("Queued %s (queue size: %d)", line, m.coord.QueueLen()))
	return m, nil
}

// beginShutdown stops input and drains every queued item.
func (m Model) beginShutdown() (tea.Model, tea.Cmd) {
	m.state = StateDraining
	m.textInput.Blur()
	m.setNotice(false, "No new downloads accepted")

	coord := m.coord
	return m, func() tea.Msg {
		return DoneMsg{Err: coord.Shutdown(context.Background())}
	}
}

// interrupt handles ctrl+c: the first press drops the backlog, the second
// aborts active downloads.
func (m Model) interrupt() (tea.Model, tea.Cmd) {
	m.interrupts++
	coord := m.coord

	if m.interrupts == 1 && m.state != StateDone {
		m.state = StateStopping
		m.textInput.Blur()
		m.setNotice(true, "Interrupted: finishing active downloads, press ctrl+c again to abort them")
		return m, func() tea.Msg {
			return DoneMsg{Err: coord.Stop(context.Background())}
		}
	}

	coord.Kill()
	m.setNotice(true, "Aborting active downloads")
	return m, nil
}

func (m *Model) setNotice(isErr bool, text string) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) addLog(e download.ProgressEvent) {
	m.logs = append(m.logs, LogEntry{Message: e.Message, Level: e.Level, Time: e.Time})
	// Keep a little more than shown so toggling verbose has history.
	if len(m.logs) > maxLogs*5 {
		m.logs = m.logs[len(m.logs)-maxLogs*5:]
	}
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// State returns the current UI state.
func (m Model) State() State {
	return m.state
}

// Summary returns counts from the last snapshot the model saw.
func (m Model) Summary() status.Counts {
	return m.snapshot.Counts()
}

// Err returns the error the coordinator stopped with, if any.
func (m Model) Err() error {
	return m.err
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ musicq"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Queue audio downloads, converted to MP3"))
	b.WriteString("\n\n")

	switch m.state {
	case StateRunning:
		b.WriteString(subtitleStyle.Render("Enter a URL:"))
		b.WriteString("\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("Saving to %s", m.downloadsPath)))
		b.WriteString("\n")
	case StateDraining:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Waiting for downloads to complete..."))
		b.WriteString("\n")
	case StateStopping:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(warningStyle.Render("Finishing active downloads..."))
		b.WriteString("\n")
	case StateDone:
		b.WriteString(successStyle.Render("All workers stopped."))
		b.WriteString("\n")
	}

	if m.notice != "" {
		style := infoStyle
		if m.noticeErr {
			style = warningStyle
		}
		b.WriteString(style.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) renderStatus() string {
	var b strings.Builder
	counts := m.snapshot.Counts()

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Workers: %d | Pending: %d | Active: %d | Completed: %d | Failed: %d",
		m.coord.Workers(), counts.Pending, counts.Active, counts.Completed, counts.Failed,
	)))
	b.WriteString("\n")

	if len(m.snapshot.Active) > 0 {
		b.WriteString("\n")
		for _, item := range m.snapshot.Active {
			b.WriteString(fmt.Sprintf("%s %s %3.0f%% %s\n",
				m.spinner.View(),
				m.progress.ViewAs(item.Progress),
				item.Progress*100,
				trackStyle.Render(truncate(item.Title(), 60)),
			))
		}
	}

	completed := m.snapshot.LastCompleted(recentItems)
	failed := m.snapshot.LastFailed(recentItems)
	if len(completed) == 0 && len(failed) == 0 {
		return b.String()
	}

	var recent strings.Builder
	for _, item := range completed {
		recent.WriteString(successStyle.Render("✓ " + truncate(item.Title(), 50)))
		recent.WriteString(dimStyle.Render(fmt.Sprintf("  %s (%s)", item.OutputPath, item.Elapsed().Round(time.Second))))
		recent.WriteString("\n")
	}
	for _, item := range failed {
		recent.WriteString(errorStyle.Render("✗ " + truncate(item.Title(), 50)))
		recent.WriteString(dimStyle.Render("  " + truncate(item.Error, 80)))
		recent.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(boxStyle.Render(strings.TrimRight(recent.String(), "\n")))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderLogs() string {
	var visible []LogEntry
	for _, log := range m.logs {
		if log.Level == download.LevelVerbose && !m.verbose {
			continue
		}
		visible = append(visible, log)
	}
	if len(visible) > maxLogs {
		visible = visible[len(visible)-maxLogs:]
	}

	var b strings.Builder
	for _, log := range visible {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
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
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	verbose := "ctrl+v: verbose"
	if m.verbose {
		verbose = "ctrl+v: quiet"
	}
	switch m.state {
	case StateRunning:
		return "enter: queue • q/esc: finish and quit • ctrl+c: stop • " + verbose
	case StateDraining:
		return "ctrl+c: drop queued downloads • " + verbose
	case StateStopping:
		return "ctrl+c: abort active downloads • " + verbose
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ForwardEvents returns an event callback that feeds ch without blocking.
// Events are dropped when ch is full.
func ForwardEvents(ch chan<- download.ProgressEvent) func(download.ProgressEvent) {
	return func(e download.ProgressEvent) {
		select {
		case ch <- e:
		default:
		}
	}
}

// Run starts the TUI and blocks until the coordinator has stopped. It
// returns the final model so callers can print a summary.
func Run(opts Options) (Model, error) {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		return m, err
	}
	return Model{snapshot: opts.Coordinator.StatusSnapshot()}, err
}

// Summary renders the goodbye message printed after the TUI exits.
func Summary(counts status.Counts) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Goodbye!"))
	b.WriteString("\n")
	b.WriteString(successStyle.Render(fmt.Sprintf("Completed: %d", counts.Completed)))
	b.WriteString("\n")
	if counts.Failed > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Failed: %d", counts.Failed)))
		b.WriteString("\n")
	}
	if counts.Pending > 0 {
		b.WriteString(warningStyle.Render(fmt.Sprintf("Not started: %d", counts.Pending)))
		b.WriteString("\n")
	}
	return b.String()
}

var _ Coordinator = (*download.Coordinator)(nil)
