// ABOUTME: Entry point for the tonegen utility
// ABOUTME: Renders a single preview tone to a WAV file
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harmonia-editor/preview-go/internal/scale"
	"github.com/harmonia-editor/preview-go/internal/synth"
)

var (
	note    = flag.Int("note", 9, "Scale step to render (pitch class is note mod 12)")
	length  = flag.Float64("length", 0.5, "Tone length in seconds")
	outFile = flag.String("o", "tone.wav", "Output WAV file")
)

func main() {
	flag.Parse()

	if *length <= 0 {
		log.Fatalf("length must be positive, got %f", *length)
	}

	pc := scale.PitchClass(*note)
	buf := synth.Tone(pc, *length)

	if err := os.WriteFile(*outFile, buf, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outFile, err)
	}

	fmt.Printf("Wrote %s: %s, %.2fs, %d bytes\n", *outFile, scale.PitchClassName(pc), *length, len(buf))
}
