// ABOUTME: Minimal RIFF/WAVE PCM container encoding
// ABOUTME: Writes and parses the fixed 44-byte uncompressed PCM header
package wav

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the length of the fixed PCM header this package produces.
const HeaderSize = 44

// Format describes the PCM stream declared by a header.
type Format struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataSize      int
}

// Header builds a RIFF/WAVE header for uncompressed PCM. All fields are
// little-endian. The returned slice is exactly HeaderSize bytes and must be
// followed by dataSize = bytesPerSample * samples bytes of raw samples.
func Header(bits, channels, sampleRate, samples int) []byte {
	bps := channels * bits / 8
	dataSize := bps * samples

	buf := make([]byte, HeaderSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(dataSize+HeaderSize-8))
	copy(buf[8:16], "WAVEfmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(bps*sampleRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(bps))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bits))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return buf
}

// ParseHeader reads back a header produced by Header. It rejects anything
// that is not plain uncompressed PCM with the fixed 16-byte format chunk.
func ParseHeader(buf []byte) (Format, error) {
	if len(buf) < HeaderSize {
		return Format{}, fmt.Errorf("buffer too short for WAV header: %d bytes", len(buf))
	}
	if string(buf[0:4]) != "RIFF" || string(buf[8:16]) != "WAVEfmt " {
		return Format{}, fmt.Errorf("not a RIFF/WAVE header")
	}
	if binary.LittleEndian.Uint32(buf[16:20]) != 16 {
		return Format{}, fmt.Errorf("unexpected format chunk size")
	}
	if binary.LittleEndian.Uint16(buf[20:22]) != 1 {
		return Format{}, fmt.Errorf("not uncompressed PCM")
	}
	if string(buf[36:40]) != "data" {
		return Format{}, fmt.Errorf("missing data chunk")
	}

	f := Format{
		Channels:      int(binary.LittleEndian.Uint16(buf[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(buf[24:28])),
		BitsPerSample: int(binary.LittleEndian.Uint16(buf[34:36])),
		DataSize:      int(binary.LittleEndian.Uint32(buf[40:44])),
	}

	if f.Channels == 0 || f.SampleRate == 0 {
		return Format{}, fmt.Errorf("invalid format: %d channels, %d Hz", f.Channels, f.SampleRate)
	}

	return f, nil
}
