// ABOUTME: Musical scale frequency lookup
// ABOUTME: Maps absolute scale steps to equal-temperament frequencies
package scale

import "math"

const (
	// BaseFreq is the tuning reference (A4).
	BaseFreq = 440.0

	// BaseStep is the absolute scale step of A4.
	BaseStep = 33
)

var pitchClassNames = [12]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// NoteFreq returns the equal-temperament frequency in Hz for an absolute
// scale step. Each step is one semitone; step 33 is A4 at 440 Hz.
func NoteFreq(step int) float64 {
	return BaseFreq * math.Pow(2.0, float64(step-BaseStep)/12.0)
}

// PitchClass reduces an absolute scale step to its pitch class in [0,11].
func PitchClass(step int) int {
	pc := step % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// PitchClassName returns the note name for a pitch class ("C" .. "B").
func PitchClassName(pc int) string {
	return pitchClassNames[PitchClass(pc)]
}
