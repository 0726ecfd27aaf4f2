// ABOUTME: Additive-synthesis tone generation for note previews
// ABOUTME: Renders a pitch class to an 8-bit mono WAV buffer
package synth

import (
	"math"

	"github.com/harmonia-editor/preview-go/internal/scale"
	"github.com/harmonia-editor/preview-go/internal/wav"
)

// SampleRate is the fixed preview sample rate. Mono, low rate and 8-bit
// resolution keep the buffers quick to create with a small memory footprint;
// this is a beep, not production audio.
const SampleRate = 8000

// referenceOctave offsets the pitch class into a fixed octave for the
// frequency lookup, keeping the generator octave-agnostic.
const referenceOctave = 12

// Tone renders a preview tone for a pitch class in [0,11] as a complete
// WAV buffer (header plus 8-bit unsigned mono samples). Output is
// deterministic for identical inputs.
//
// The waveform is a three-partial additive mix whose brightness shifts
// with the pitch class:
//
//	0.2*d*sin(p) + 0.2*sin(2p) + 0.2*(1-d)*sin(4p), d = (pc+1)/13
//
// The coefficients bound the peak amplitude at 0.6, so the 8-bit mapping
// below never clips.
func Tone(pitchClass int, seconds float64) []byte {
	n := int(seconds * SampleRate)
	if n < 0 {
		// Note lengths arrive from untrusted feeds; a non-positive
		// duration renders as a header-only buffer instead of panicking.
		n = 0
	}

	buf := make([]byte, 0, wav.HeaderSize+n)
	buf = append(buf, wav.Header(8, 1, SampleRate, n)...)

	d := float64(pitchClass+1) / 13.0
	freq := scale.NoteFreq(pitchClass + referenceOctave)

	phase := 0.0
	for i := 0; i < n; i++ {
		v := 0.2*d*math.Sin(phase) + 0.2*math.Sin(2*phase) + 0.2*(1.0-d)*math.Sin(4*phase)
		phase += 2.0 * math.Pi * freq / SampleRate

		buf = append(buf, uint8(math.Round((v+1.0)*0.5*255.0)))
	}

	return buf
}
