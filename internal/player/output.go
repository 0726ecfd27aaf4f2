// ABOUTME: Audio output using oto library
// ABOUTME: Plays finished WAV preview buffers with software volume control
package player

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"

	"github.com/ebitengine/oto/v3"
	"github.com/harmonia-editor/preview-go/internal/wav"
)

// Output plays complete WAV buffers through the platform audio device.
// Each buffer is short-lived, so playback uses a one-shot player per
// buffer rather than a persistent stream.
type Output struct {
	otoCtx     *oto.Context
	sampleRate int
	channels   int
	volume     int
	muted      bool
	ready      bool
}

// NewOutput creates an audio output.
func NewOutput() *Output {
	return &Output{
		volume: 100,
		muted:  false,
	}
}

// Play decodes a WAV buffer and plays it. The device context is created
// lazily from the first buffer's declared format.
func (o *Output) Play(buf []byte) error {
	f, err := wav.ParseHeader(buf)
	if err != nil {
		return fmt.Errorf("bad preview buffer: %w", err)
	}

	if err := o.ensure(f); err != nil {
		return err
	}

	pcm, err := toInt16LE(buf[wav.HeaderSize:], f.BitsPerSample)
	if err != nil {
		return err
	}
	pcm = applyVolume(pcm, o.volume, o.muted)

	player := o.otoCtx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	return nil
}

// ensure initializes oto on first use. oto allows only one context per
// process, so a later format change keeps the existing context.
func (o *Output) ensure(f wav.Format) error {
	if o.otoCtx != nil {
		if f.SampleRate != o.sampleRate || f.Channels != o.channels {
			log.Printf("Warning: format change (%dHz %dch -> %dHz %dch) ignored, oto context cannot be reinitialized",
				o.sampleRate, o.channels, f.SampleRate, f.Channels)
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = f.SampleRate
	o.channels = f.Channels
	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels", f.SampleRate, f.Channels)

	return nil
}

// SetVolume sets the volume (0-100).
func (o *Output) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	o.volume = volume
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state.
func (o *Output) SetMuted(muted bool) {
	o.muted = muted
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume.
func (o *Output) GetVolume() int {
	return o.volume
}

// IsMuted returns mute state.
func (o *Output) IsMuted() bool {
	return o.muted
}

// Close closes the audio output.
func (o *Output) Close() {
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
		o.ready = false
	}
}

// toInt16LE converts raw WAV sample bytes to 16-bit little-endian PCM.
// 8-bit WAV samples are unsigned and centered at 128; 16-bit samples pass
// through unchanged.
func toInt16LE(samples []byte, bits int) ([]byte, error) {
	switch bits {
	case 16:
		out := make([]byte, len(samples))
		copy(out, samples)
		return out, nil
	case 8:
		out := make([]byte, len(samples)*2)
		for i, s := range samples {
			v := (int16(s) - 128) << 8
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d", bits)
	}
}

// applyVolume scales 16-bit little-endian PCM in place.
func applyVolume(pcm []byte, volume int, muted bool) []byte {
	multiplier := getVolumeMultiplier(volume, muted)
	if multiplier == 1.0 {
		return pcm
	}

	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16(float64(sample)*multiplier)))
	}

	return pcm
}

// getVolumeMultiplier calculates volume multiplier.
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
