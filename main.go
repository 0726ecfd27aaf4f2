// ABOUTME: Entry point for the note preview player
// ABOUTME: Parses CLI flags and starts the player application
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harmonia-editor/preview-go/internal/app"
	"github.com/harmonia-editor/preview-go/internal/version"
)

var (
	notesFile  = flag.String("notes", "", "JSON note list to preview")
	midiFile   = flag.String("midi", "", "Standard MIDI File to preview (overrides -notes)")
	listenAddr = flag.String("listen", "", "Feed server address for remote editor ticks (e.g. :8937), empty disables")
	volume     = flag.Int("volume", 100, "Output volume (0-100)")
	logFile    = flag.String("log-file", "preview-player.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s", version.Product, version.Version)

	config := app.Config{
		NotesFile:  *notesFile,
		MIDIFile:   *midiFile,
		ListenAddr: *listenAddr,
		Volume:     *volume,
		UseTUI:     useTUI,
	}

	player, err := app.New(config)
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down", sig)
		player.Stop()
	}()

	if err := player.Start(); err != nil {
		log.Fatalf("Player error: %v", err)
	}
}
