// Package tui provides a Bubble Tea terminal user interface for
// resolving Spotify playlists into downloaded audio.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sonicsync/sonicsync/internal/model"
	"github.com/sonicsync/sonicsync/internal/pipeline"
	"github.com/sonicsync/sonicsync/internal/spotify"
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

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// Provider reads playlist metadata.
type Provider interface {
	PlaylistTracks(ctx context.Context, reference string) ([]model.TrackDescriptor, error)
	PlaylistInfo(ctx context.Context, reference string) (*spotify.PlaylistInfo, error)
}

// Resolver runs the resolution pipeline.
type Resolver interface {
	Resolve(ctx context.Context, tracks []model.TrackDescriptor) (*model.PipelineSummary, error)
}

// Deps wires the TUI to the application. NewResolver builds a pipeline
// whose progress events feed the given callback; the TUI polls the
// collected state on a timer.
type Deps struct {
	Provider    Provider
	NewResolver func(onProgress func(pipeline.ProgressEvent)) Resolver
	DestDir     string
}

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateFetching
	StateResolving
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Failed  bool
}

// tracker collects progress from pipeline worker goroutines. The model
// polls it on TickMsg rather than receiving events directly.
type tracker struct {
	mu    sync.Mutex
	done  int
	total int
	logs  []LogEntry
}

func (t *tracker) observe(ev pipeline.ProgressEvent) {
	if !ev.State.Terminal() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.done++
	entry := LogEntry{
		Message: fmt.Sprintf("%s - %s", ev.Track.Title, ev.Track.Artist),
		Failed:  ev.State == model.StateFailed,
	}
	if entry.Failed && ev.Message != "" {
		entry.Message += " (" + ev.Message + ")"
	}
	t.logs = append(t.logs, entry)
	if len(t.logs) > 10 {
		t.logs = t.logs[len(t.logs)-10:]
	}
}

func (t *tracker) snapshot() (done, total int, logs []LogEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done, t.total, append([]LogEntry(nil), t.logs...)
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	deps      Deps
	err       error

	info    *spotify.PlaylistInfo
	tracks  []model.TrackDescriptor
	summary *model.PipelineSummary
	tracker *tracker

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "https://open.spotify.com/playlist/..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		deps:      deps,
		tracker:   &tracker{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// FetchDoneMsg is sent when playlist metadata arrived.
	FetchDoneMsg struct {
		Info   *spotify.PlaylistInfo
		Tracks []model.TrackDescriptor
		Err    error
	}

	// ResolveDoneMsg is sent when the pipeline finished.
	ResolveDoneMsg struct {
		Summary *model.PipelineSummary
		Err     error
	}

	// TickMsg drives periodic progress polling.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateFetching || m.state == StateResolving {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StateFetching
				return m, tea.Batch(m.fetchPlaylist(), m.spinner.Tick)
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.err = nil
				m.info = nil
				m.tracks = nil
				m.summary = nil
				m.tracker = &tracker{}
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case FetchDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.info = msg.Info
			m.tracks = msg.Tracks
			m.tracker.total = len(msg.Tracks)
			m.state = StateResolving
			cmds = append(cmds, m.startResolve(), m.tickProgress())
		}

	case ResolveDoneMsg:
		m.summary = msg.Summary
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateResolving {
			done, total, _ := m.tracker.snapshot()
			var percent float64
			if total > 0 {
				percent = float64(done) / float64(total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎵 SonicSync"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Resolve Spotify playlists into audio files"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateFetching:
		b.WriteString(m.viewFetching())
	case StateResolving:
		b.WriteString(m.viewResolving())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter Spotify playlist URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.deps.DestDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewFetching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching playlist info..."))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewResolving() string {
	var b strings.Builder

	if m.info != nil {
		b.WriteString(successStyle.Render(fmt.Sprintf("%s by %s (%d tracks)",
			m.info.Name, m.info.Owner, len(m.tracks))))
		b.WriteString("\n\n")
	}

	done, total, logs := m.tracker.snapshot()

	var percent float64
	if total > 0 {
		percent = float64(done) / float64(total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", done, total)))
	b.WriteString("\n\n")

	for _, log := range logs {
		if log.Failed {
			b.WriteString(errorStyle.Render("✗ " + log.Message))
		} else {
			b.WriteString(trackStyle.Render("✓ " + log.Message))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewComplete() string {
	if m.summary == nil {
		return boxStyle.Render("✨ Done!")
	}

	content := fmt.Sprintf(
		"✨ Playlist Resolved!\n\n"+
			"Tracks: %d/%d\n"+
			"Elapsed: %s",
		m.summary.Succeeded,
		m.summary.Attempted,
		m.summary.Elapsed.Round(time.Second),
	)
	if m.summary.ArchivePath != "" {
		content += fmt.Sprintf("\nArchive: %s", m.summary.ArchivePath)
	}
	return boxStyle.Render(content)
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • esc: quit"
	case StateFetching, StateResolving:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new playlist • q: quit"
	}
	return ""
}

// fetchPlaylist loads playlist metadata in the background.
func (m *Model) fetchPlaylist() tea.Cmd {
	ref := m.textInput.Value()
	ctx := m.ctx
	provider := m.deps.Provider

	return func() tea.Msg {
		info, err := provider.PlaylistInfo(ctx, ref)
		if err != nil {
			return FetchDoneMsg{Err: err}
		}
		tracks, err := provider.PlaylistTracks(ctx, ref)
		if err != nil {
			return FetchDoneMsg{Err: err}
		}
		return FetchDoneMsg{Info: info, Tracks: tracks}
	}
}

// startResolve runs the pipeline in the background.
func (m *Model) startResolve() tea.Cmd {
	ctx := m.ctx
	tracks := m.tracks
	resolver := m.deps.NewResolver(m.tracker.observe)

	return func() tea.Msg {
		summary, err := resolver.Resolve(ctx, tracks)
		return ResolveDoneMsg{Summary: summary, Err: err}
	}
}

// Run starts the TUI application.
func Run(deps Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
