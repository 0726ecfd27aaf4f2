// ABOUTME: Editor feed message type definitions
// ABOUTME: Defines structs for the WebSocket tick protocol
package protocol

import "github.com/harmonia-editor/preview-go/internal/notes"

// Message is the top-level wrapper for all feed messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EditorHello is sent by an editor to open a feed session
type EditorHello struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// PreviewHello is the preview player's response to editor/hello
type PreviewHello struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
}

// Tick carries the editor's playback position and current note list.
// It replaces the previous state wholesale; the last tick always wins.
type Tick struct {
	PositionMs int64             `json:"position_ms"`
	Notes      []notes.TimedNote `json:"notes"`
}

// Goodbye closes a feed session cleanly
type Goodbye struct {
	Reason string `json:"reason,omitempty"`
}
