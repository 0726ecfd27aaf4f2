// ABOUTME: Tests for Standard MIDI File import
// ABOUTME: Tests note pairing, tempo conversion, and ordering
package notes

import (
	"math"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func writeTestSMF(t *testing.T, path string) {
	t.Helper()

	s := smf.New()
	mt := s.TimeFormat.(smf.MetricTicks)
	quarter := mt.Ticks4th()

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 69, 100)) // A4, one quarter
	tr.Add(quarter, midi.NoteOff(0, 69))
	tr.Add(quarter, midi.NoteOn(0, 72, 100)) // C5, one quarter, one quarter later
	tr.Add(quarter, midi.NoteOff(0, 72))
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		t.Fatalf("failed to add track: %v", err)
	}
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("failed to write SMF: %v", err)
	}
}

func TestLoadSMF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mid")
	writeTestSMF(t, path)

	ns, err := LoadSMF(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ns) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(ns))
	}

	// At 120 BPM a quarter note is 0.5 seconds.
	first := ns[0]
	if first.Note != 69-midiStepOffset {
		t.Errorf("expected scale step %d for A4, got %d", 69-midiStepOffset, first.Note)
	}
	if math.Abs(first.Begin) > 1e-6 {
		t.Errorf("expected first note at 0, got %f", first.Begin)
	}
	if math.Abs(first.Length-0.5) > 1e-6 {
		t.Errorf("expected length 0.5, got %f", first.Length)
	}

	second := ns[1]
	if math.Abs(second.Begin-1.0) > 1e-6 {
		t.Errorf("expected second note at 1.0, got %f", second.Begin)
	}
	if math.Abs(second.Length-0.5) > 1e-6 {
		t.Errorf("expected length 0.5, got %f", second.Length)
	}
}

func TestLoadSMFSortedOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mid")
	writeTestSMF(t, path)

	ns, err := LoadSMF(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(ns); i++ {
		if ns[i].Begin < ns[i-1].Begin {
			t.Fatalf("notes not sorted at index %d", i)
		}
	}
}

func TestLoadSMFMissingFile(t *testing.T) {
	if _, err := LoadSMF(filepath.Join(t.TempDir(), "absent.mid")); err == nil {
		t.Error("expected error for missing file")
	}
}
