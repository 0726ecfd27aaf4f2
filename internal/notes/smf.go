// ABOUTME: Standard MIDI File import for preview note lists
// ABOUTME: Pairs note-on/off events and converts ticks to seconds
package notes

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// midiStepOffset aligns MIDI key numbers with scale steps: MIDI 69 (A4)
// maps to step 33.
const midiStepOffset = 36

const defaultBPM = 120.0

type tempoChange struct {
	tick uint64
	bpm  float64
}

// LoadSMF reads a Standard MIDI File and returns its notes as a sorted
// preview note list.
func LoadSMF(path string) (Notes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI file: %w", err)
	}
	defer f.Close()

	ns, err := ReadSMF(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ns, nil
}

// ReadSMF parses SMF data from r. Note-on/note-off pairs become TimedNotes;
// tick times are converted to seconds against the file's tempo map.
func ReadSMF(r io.Reader) (Notes, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SMF: %w", err)
	}

	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported SMF time format: %s", s.TimeFormat)
	}

	// Collect the tempo map first. Format 1 files keep tempo events in
	// track 0, but scan every track to be safe.
	var tempos []tempoChange
	for _, tr := range s.Tracks {
		var tick uint64
		for _, ev := range tr {
			tick += uint64(ev.Delta)
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				tempos = append(tempos, tempoChange{tick: tick, bpm: bpm})
			}
		}
	}
	sort.Slice(tempos, func(i, j int) bool { return tempos[i].tick < tempos[j].tick })

	toSeconds := func(tick uint64) float64 {
		secs := 0.0
		bpm := defaultBPM
		prev := uint64(0)
		for _, tc := range tempos {
			if tc.tick >= tick {
				break
			}
			secs += mt.Duration(bpm, uint32(tc.tick-prev)).Seconds()
			bpm = tc.bpm
			prev = tc.tick
		}
		return secs + mt.Duration(bpm, uint32(tick-prev)).Seconds()
	}

	var ns Notes
	for _, tr := range s.Tracks {
		var tick uint64
		active := make(map[uint8]uint64)

		for _, ev := range tr {
			tick += uint64(ev.Delta)

			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteStart(&ch, &key, &vel):
				active[key] = tick
			case ev.Message.GetNoteEnd(&ch, &key):
				start, held := active[key]
				if !held {
					continue
				}
				delete(active, key)

				begin := toSeconds(start)
				ns = append(ns, TimedNote{
					Note:   int(key) - midiStepOffset,
					Begin:  begin,
					Length: toSeconds(tick) - begin,
				})
			}
		}
	}

	ns.Sort()
	return ns, nil
}
