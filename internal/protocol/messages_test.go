// ABOUTME: Tests for feed protocol messages
// ABOUTME: Tests JSON encoding and decoding of tick messages
package protocol

import (
	"encoding/json"
	"testing"

	"github.com/harmonia-editor/preview-go/internal/notes"
)

func TestTickRoundTrip(t *testing.T) {
	tick := Tick{
		PositionMs: 1500,
		Notes: []notes.TimedNote{
			{Note: 24, Begin: 0.0, Length: 0.5},
			{Note: 26, Begin: 2.0, Length: 0.5},
		},
	}

	data, err := json.Marshal(Message{Type: "editor/tick", Payload: tick})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if msg.Type != "editor/tick" {
		t.Errorf("expected type editor/tick, got %s", msg.Type)
	}

	payload, _ := json.Marshal(msg.Payload)
	var decoded Tick
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}

	if decoded.PositionMs != 1500 {
		t.Errorf("expected position 1500, got %d", decoded.PositionMs)
	}
	if len(decoded.Notes) != 2 || decoded.Notes[1].Begin != 2.0 {
		t.Errorf("unexpected notes: %+v", decoded.Notes)
	}
}

func TestHelloFieldNames(t *testing.T) {
	data, err := json.Marshal(PreviewHello{SessionID: "abc", Name: "preview", Version: 1})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if raw["session_id"] != "abc" {
		t.Errorf("expected session_id field, got %v", raw)
	}
}
