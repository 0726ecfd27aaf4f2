// ABOUTME: Main preview player application orchestration
// ABOUTME: Coordinates notes, scheduler, audio output, feed server, and UI
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harmonia-editor/preview-go/internal/feed"
	"github.com/harmonia-editor/preview-go/internal/notes"
	"github.com/harmonia-editor/preview-go/internal/player"
	"github.com/harmonia-editor/preview-go/internal/preview"
	"github.com/harmonia-editor/preview-go/internal/ui"
)

// tickInterval is how often the local transport advances the cursor and
// feeds the scheduler, standing in for an editor's position updates.
const tickInterval = 100 * time.Millisecond

// Config holds player configuration
type Config struct {
	NotesFile  string // JSON note list
	MIDIFile   string // Standard MIDI File (takes precedence)
	ListenAddr string // feed server address, empty disables
	Volume     int
	UseTUI     bool
}

// BufferSink plays a finished preview buffer. *player.Output satisfies
// this; tests substitute their own.
type BufferSink interface {
	Play(buf []byte) error
}

// Player wires the preview scheduler to its collaborators: a note
// source, an audio sink, an optional remote feed, and an optional TUI.
type Player struct {
	config    Config
	noteList  notes.Notes
	scheduler *preview.Scheduler
	output    *player.Output
	sink      BufferSink
	feedSrv   *feed.Server
	ctrl      *ui.Control
	tuiProg   *tea.Program

	mu         sync.Mutex
	positionMs int64
	playing    bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a player and loads its note list.
func New(config Config) (*Player, error) {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Player{
		config:    config,
		scheduler: preview.New(preview.DefaultConfig()),
		output:    player.NewOutput(),
		ctx:       ctx,
		cancel:    cancel,
	}
	p.sink = p.output

	if config.Volume > 0 {
		p.output.SetVolume(config.Volume)
	}

	var err error
	switch {
	case config.MIDIFile != "":
		p.noteList, err = notes.LoadSMF(config.MIDIFile)
	case config.NotesFile != "":
		p.noteList, err = notes.LoadFile(config.NotesFile)
	}
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	return p, nil
}

// Start runs the player until Stop is called or the TUI quits.
func (p *Player) Start() error {
	if p.config.ListenAddr != "" {
		srv, err := feed.NewServer(feed.Config{Addr: p.config.ListenAddr}, p.scheduler)
		if err != nil {
			return fmt.Errorf("failed to create feed server: %w", err)
		}
		p.feedSrv = srv
		if err := p.feedSrv.Start(); err != nil {
			return fmt.Errorf("failed to start feed server: %w", err)
		}
	}

	if p.config.UseTUI {
		p.ctrl = ui.NewControl()
		prog, err := ui.Run(p.ctrl, p.noteList)
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		p.tuiProg = prog
		go p.tuiProg.Run()
		go p.handleControls()
	}

	go p.pumpBuffers()
	go p.runTransport()

	log.Printf("Preview player started: %d notes, %.1fs", len(p.noteList), p.noteList.Duration())

	<-p.ctx.Done()
	return nil
}

// Stop shuts everything down. Idempotent.
func (p *Player) Stop() {
	p.cancel()
	p.scheduler.Stop()
	if p.feedSrv != nil {
		p.feedSrv.Stop()
	}
	if p.tuiProg != nil {
		p.tuiProg.Quit()
	}
	p.output.Close()
}

// pumpBuffers delivers finished buffers from the scheduler to the sink.
func (p *Player) pumpBuffers() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case buf := <-p.scheduler.Output():
			if err := p.sink.Play(buf); err != nil {
				log.Printf("Playback error: %v", err)
			}
		}
	}
}

// runTransport advances the local playback cursor and feeds the
// scheduler, the same way an editor would tick it during playback.
func (p *Player) runTransport() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick advances the cursor by one interval while playing and pushes the
// latest state to the scheduler and TUI.
func (p *Player) tick() {
	p.mu.Lock()
	if p.playing {
		p.positionMs += int64(tickInterval / time.Millisecond)

		// Stop at the end of the note list, with a little slack for
		// the final note to sound.
		endMs := int64(p.noteList.Duration()*1000) + 2000
		if p.positionMs > endMs {
			p.playing = false
			p.positionMs = 0
		}
	}
	playing := p.playing
	posMs := p.positionMs
	p.mu.Unlock()

	if playing {
		p.scheduler.Update(posMs, p.noteList)
	}

	p.sendStatus()
}

// togglePlay flips the transport state. Pausing idles the scheduler by
// handing it an empty schedule, so no pending note fires mid-pause.
func (p *Player) togglePlay() {
	p.mu.Lock()
	p.playing = !p.playing
	playing := p.playing
	posMs := p.positionMs
	p.mu.Unlock()

	if playing {
		p.scheduler.Update(posMs, p.noteList)
	} else {
		p.scheduler.Update(posMs, nil)
	}
}

// seekBy moves the cursor by a relative number of seconds.
func (p *Player) seekBy(seconds float64) {
	p.mu.Lock()
	p.positionMs += int64(seconds * 1000)
	if p.positionMs < 0 {
		p.positionMs = 0
	}
	playing := p.playing
	posMs := p.positionMs
	p.mu.Unlock()

	if playing {
		p.scheduler.Update(posMs, p.noteList)
	}
}

// handleControls applies TUI control messages.
func (p *Player) handleControls() {
	for {
		select {
		case <-p.ctx.Done():
			return

		case msg := <-p.ctrl.Transport:
			if msg.TogglePlay {
				p.togglePlay()
			}
			if msg.SeekBy != 0 {
				p.seekBy(msg.SeekBy)
			}

		case msg := <-p.ctrl.Volume:
			if msg.ToggleMute {
				p.output.SetMuted(!p.output.IsMuted())
			}
			if msg.Delta != 0 {
				p.output.SetVolume(p.output.GetVolume() + msg.Delta)
			}

		case <-p.ctrl.Quit:
			p.Stop()
			return
		}
	}
}

// sendStatus pushes current state to the TUI, if one is running.
func (p *Player) sendStatus() {
	if p.tuiProg == nil {
		return
	}

	p.mu.Lock()
	pos := float64(p.positionMs) / 1000.0
	playing := p.playing
	p.mu.Unlock()

	stats := p.scheduler.Stats()
	volume := p.output.GetVolume()
	muted := p.output.IsMuted()

	sessions := 0
	if p.feedSrv != nil {
		sessions = len(p.feedSrv.Sessions())
	}

	p.tuiProg.Send(ui.StatusMsg{
		Position: &pos,
		Playing:  &playing,
		Volume:   &volume,
		Muted:    &muted,
		Stats:    &stats,
		Sessions: &sessions,
	})
}
