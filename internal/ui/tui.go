// ABOUTME: TUI initialization and control channels
// ABOUTME: Wraps the bubbletea program for the preview player
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harmonia-editor/preview-go/internal/notes"
)

// TransportMsg requests a transport change from the player.
type TransportMsg struct {
	TogglePlay bool
	SeekBy     float64 // seconds, relative
}

// VolumeChangeMsg requests an output volume change.
type VolumeChangeMsg struct {
	Delta      int
	ToggleMute bool
}

// QuitMsg asks the player to shut down.
type QuitMsg struct{}

// Control holds channels for TUI-to-player communication
type Control struct {
	Transport chan TransportMsg
	Volume    chan VolumeChangeMsg
	Quit      chan QuitMsg
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Transport: make(chan TransportMsg, 10),
		Volume:    make(chan VolumeChangeMsg, 10),
		Quit:      make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control, ns notes.Notes) Model {
	return Model{
		noteList: ns,
		volume:   100,
		ctrl:     ctrl,
	}
}

// Run starts the TUI
func Run(ctrl *Control, ns notes.Notes) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl, ns), tea.WithAltScreen())
	return p, nil
}
