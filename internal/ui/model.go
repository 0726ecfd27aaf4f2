// ABOUTME: Bubbletea model for the preview player TUI
// ABOUTME: Defines note list display, transport state, and update logic
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harmonia-editor/preview-go/internal/notes"
	"github.com/harmonia-editor/preview-go/internal/preview"
	"github.com/harmonia-editor/preview-go/internal/scale"
)

// StatusMsg updates the TUI from the player. Nil fields leave the
// corresponding state unchanged.
type StatusMsg struct {
	Position *float64
	Playing  *bool
	Volume   *int
	Muted    *bool
	Stats    *preview.Stats
	Sessions *int
}

// Model represents the TUI state
type Model struct {
	// Notes
	noteList notes.Notes

	// Transport
	position float64
	playing  bool

	// Output
	volume int
	muted  bool

	// Scheduler stats
	stats preview.Stats

	// Remote feed
	sessions int

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int

	ctrl *Control
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	activeNoteStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// handleKey routes key presses to the transport and volume controls.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.ctrl != nil {
			select {
			case m.ctrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit

	case " ":
		m.send(TransportMsg{TogglePlay: true})

	case "left":
		m.send(TransportMsg{SeekBy: -1.0})

	case "right":
		m.send(TransportMsg{SeekBy: 1.0})

	case "up", "+":
		m.sendVolume(VolumeChangeMsg{Delta: 5})

	case "down", "-":
		m.sendVolume(VolumeChangeMsg{Delta: -5})

	case "m":
		m.sendVolume(VolumeChangeMsg{ToggleMute: true})

	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) send(msg TransportMsg) {
	if m.ctrl == nil {
		return
	}
	select {
	case m.ctrl.Transport <- msg:
	default:
	}
}

func (m Model) sendVolume(msg VolumeChangeMsg) {
	if m.ctrl == nil {
		return
	}
	select {
	case m.ctrl.Volume <- msg:
	default:
	}
}

// applyStatus merges a status update into the model.
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Position != nil {
		m.position = *msg.Position
	}
	if msg.Playing != nil {
		m.playing = *msg.Playing
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
	if msg.Muted != nil {
		m.muted = *msg.Muted
	}
	if msg.Stats != nil {
		m.stats = *msg.Stats
	}
	if msg.Sessions != nil {
		m.sessions = *msg.Sessions
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("preview-go"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTransport())
	b.WriteString(m.renderNotes())
	b.WriteString(m.renderOutput())

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(helpStyle.Render("space play/pause · ←/→ seek · ↑/↓ volume · m mute · d debug · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderTransport() string {
	state := "paused"
	if m.playing {
		state = "playing"
	}
	return fmt.Sprintf("%s  %s at %6.2fs\n\n",
		headerStyle.Render("Transport:"), state, m.position)
}

func (m Model) renderNotes() string {
	if len(m.noteList) == 0 {
		return headerStyle.Render("Notes:") + "  (none loaded)\n\n"
	}

	next, hasNext := m.noteList.NextAt(m.position)

	var b strings.Builder
	b.WriteString(headerStyle.Render("Notes:"))
	b.WriteString(fmt.Sprintf("  %d total, %.1fs\n", len(m.noteList), m.noteList.Duration()))

	shown := 0
	for _, n := range m.noteList {
		if shown >= m.maxNoteRows() {
			b.WriteString("  ...\n")
			break
		}
		line := fmt.Sprintf("  %-3s %7.2fs  %5.2fs",
			scale.PitchClassName(n.Note), n.Begin, n.Length)
		if hasNext && n.Begin == next.Begin {
			line = activeNoteStyle.Render(line + "  <- next")
		}
		b.WriteString(line)
		b.WriteString("\n")
		shown++
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderOutput() string {
	muted := ""
	if m.muted {
		muted = " (muted)"
	}
	return fmt.Sprintf("%s  volume %d%%%s\n\n",
		headerStyle.Render("Output:"), m.volume, muted)
}

func (m Model) renderDebug() string {
	return fmt.Sprintf("%s  ticks=%d rendered=%d played=%d sessions=%d\n\n",
		headerStyle.Render("Debug:"),
		m.stats.Ticks, m.stats.Rendered, m.stats.Played, m.sessions)
}

func (m Model) maxNoteRows() int {
	rows := m.height - 12
	if rows < 4 {
		rows = 4
	}
	return rows
}
