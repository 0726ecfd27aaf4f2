// ABOUTME: Tests for WAV header encoding
// ABOUTME: Tests exact field layout, declared sizes, and header round-trip
package wav

import (
	"encoding/binary"
	"testing"
)

func TestHeaderLayout(t *testing.T) {
	h := Header(8, 1, 8000, 4000)

	if len(h) != HeaderSize {
		t.Fatalf("expected %d byte header, got %d", HeaderSize, len(h))
	}

	if string(h[0:4]) != "RIFF" {
		t.Errorf("expected RIFF tag, got %q", h[0:4])
	}
	if string(h[8:16]) != "WAVEfmt " {
		t.Errorf("expected WAVEfmt tag, got %q", h[8:16])
	}
	if string(h[36:40]) != "data" {
		t.Errorf("expected data tag, got %q", h[36:40])
	}

	if got := binary.LittleEndian.Uint16(h[20:22]); got != 1 {
		t.Errorf("expected PCM format tag 1, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(h[22:24]); got != 1 {
		t.Errorf("expected 1 channel, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(h[24:28]); got != 8000 {
		t.Errorf("expected sample rate 8000, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(h[28:32]); got != 8000 {
		t.Errorf("expected byte rate 8000, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(h[32:34]); got != 1 {
		t.Errorf("expected 1 byte per frame, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(h[34:36]); got != 8 {
		t.Errorf("expected 8 bits per sample, got %d", got)
	}
}

func TestHeaderDeclaredSizes(t *testing.T) {
	samples := 1234
	h := Header(8, 1, 8000, samples)

	dataSize := binary.LittleEndian.Uint32(h[40:44])
	if dataSize != uint32(samples) {
		t.Errorf("expected dataSize %d, got %d", samples, dataSize)
	}

	riffSize := binary.LittleEndian.Uint32(h[4:8])
	if riffSize != dataSize+36 {
		t.Errorf("expected riffSize = dataSize+36 = %d, got %d", dataSize+36, riffSize)
	}
}

func TestHeaderStereo16Bit(t *testing.T) {
	h := Header(16, 2, 44100, 100)

	if got := binary.LittleEndian.Uint16(h[32:34]); got != 4 {
		t.Errorf("expected 4 bytes per frame, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(h[28:32]); got != 176400 {
		t.Errorf("expected byte rate 176400, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(h[40:44]); got != 400 {
		t.Errorf("expected dataSize 400, got %d", got)
	}
}

func TestParseHeaderRoundTrip(t *testing.T) {
	h := Header(8, 1, 8000, 500)

	f, err := ParseHeader(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.Channels != 1 || f.SampleRate != 8000 || f.BitsPerSample != 8 || f.DataSize != 500 {
		t.Errorf("unexpected format: %+v", f)
	}
}

func TestParseHeaderRejectsGarbage(t *testing.T) {
	if _, err := ParseHeader([]byte("too short")); err == nil {
		t.Error("expected error for short buffer")
	}

	h := Header(8, 1, 8000, 10)
	h[0] = 'X'
	if _, err := ParseHeader(h); err == nil {
		t.Error("expected error for bad RIFF tag")
	}
}
