// ABOUTME: Timed note model for the preview scheduler
// ABOUTME: Holds the note list, ordering, and next-due lookup
package notes

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// TimedNote is one scheduled tone. Note is an absolute scale step; only
// its pitch class affects the synthesized timbre.
type TimedNote struct {
	Note   int     `json:"note"`
	Begin  float64 `json:"begin"`
	Length float64 `json:"length"`
}

// Notes is a note list ordered by Begin ascending. The scheduler replaces
// it wholesale on every update and never mutates individual notes.
type Notes []TimedNote

// Sort orders the list by begin time.
func (ns Notes) Sort() {
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].Begin < ns[j].Begin })
}

// NextAt returns the first note whose begin time is at or after pos, or
// false if every note begins earlier.
func (ns Notes) NextAt(pos float64) (TimedNote, bool) {
	for _, n := range ns {
		if n.Begin >= pos {
			return n, true
		}
	}
	return TimedNote{}, false
}

// Duration returns the end time of the last note, or zero for an empty list.
func (ns Notes) Duration() float64 {
	end := 0.0
	for _, n := range ns {
		if t := n.Begin + n.Length; t > end {
			end = t
		}
	}
	return end
}

// LoadFile reads a JSON note list (an array of {note, begin, length}
// objects) and returns it sorted by begin time.
func LoadFile(path string) (Notes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes file: %w", err)
	}

	var ns Notes
	if err := json.Unmarshal(data, &ns); err != nil {
		return nil, fmt.Errorf("failed to parse notes file: %w", err)
	}

	ns.Sort()
	return ns, nil
}
