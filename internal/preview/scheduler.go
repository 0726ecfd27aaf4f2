// ABOUTME: Note-preview scheduler with an interruptible timing loop
// ABOUTME: Pre-renders the next due note and emits buffers at their begin time
package preview

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/harmonia-editor/preview-go/internal/notes"
	"github.com/harmonia-editor/preview-go/internal/scale"
	"github.com/harmonia-editor/preview-go/internal/synth"
)

// noNotePending is the wait used when no note is at or after the cursor.
// The next Update wakes the worker long before it ever expires.
const noNotePending = time.Duration(math.MaxInt64)

// Config holds the scheduler timing constants. The defaults tolerate a
// feed that ticks a few times per second; tune them if the feed rate is
// very different, and re-check for double-triggered or missed notes.
type Config struct {
	// CursorNudge is added to the cursor after a note fires so the next
	// scan strictly skips it even before a fresher position arrives.
	CursorNudge float64

	// MinDelay is the lower bound in seconds for any computed wait.
	MinDelay float64

	// RetriggerFloor is the minimum wait in seconds after a note fires,
	// preventing rapid re-triggering until the next real update.
	RetriggerFloor float64
}

// DefaultConfig returns the standard timing constants.
func DefaultConfig() Config {
	return Config{
		CursorNudge:    0.2,
		MinDelay:       0.001,
		RetriggerFloor: 1.0,
	}
}

// Stats tracks scheduler activity.
type Stats struct {
	Ticks    int64 // external updates received
	Rendered int64 // tone buffers synthesized
	Played   int64 // buffers handed to playback
}

// Scheduler owns the note list and playback cursor, decides which note is
// due next, and emits a pre-rendered buffer on its output channel exactly
// when that note's begin time is reached. A single worker goroutine runs
// the timing loop; Update and Stop are safe from any goroutine.
type Scheduler struct {
	cfg    Config
	render func(pitchClass int, seconds float64) []byte

	mu      sync.Mutex
	notes   notes.Notes
	pos     float64
	running bool
	stats   Stats

	wake   chan struct{}
	out    chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Worker-owned state, only touched on the loop goroutine.
	//
	// The double buffer works as a two-state protocol: buffers[cur] is
	// always the slot rendered for the next due note and the one handed
	// off when the wait times out; cur advances only at that hand-off,
	// so a buffer still in flight with the sink is never overwritten.
	wait      time.Duration
	noteBegin float64
	buffers   [2][]byte
	cur       int
}

// New creates a scheduler. The worker starts on the first Update call.
func New(cfg Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cfg:    cfg,
		render: synth.Tone,

		// Start below any real begin time so the first prepared note
		// always renders, including one at exactly 0.0.
		noteBegin: math.Inf(-1),

		wake:   make(chan struct{}, 1),
		out:    make(chan []byte, 4),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Update replaces the playback cursor and note list. The first call starts
// the worker; later calls wake any in-progress wait so the new state takes
// effect immediately. The latest caller always wins.
func (s *Scheduler) Update(positionMillis int64, ns notes.Notes) {
	s.mu.Lock()
	// Checked under the lock so a concurrent Stop either sees running
	// already set and joins the worker, or cancels before this check and
	// the worker never starts.
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}

	s.pos = float64(positionMillis) / 1000.0
	s.notes = ns
	s.stats.Ticks++
	started := s.running
	s.running = true
	s.mu.Unlock()

	if !started {
		go s.run()
		return
	}

	select {
	case s.wake <- struct{}{}:
	default: // a wake-up is already pending
	}
}

// Output returns the channel on which finished preview buffers are
// delivered. Each buffer is a complete WAV byte sequence.
func (s *Scheduler) Output() <-chan []byte {
	return s.out
}

// Stats returns a snapshot of scheduler statistics.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Stop terminates the timing loop and waits for it to exit. Safe to call
// more than once.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if running {
		<-s.done
	}
}

// run is the timing loop. A timed-out wait means the due note has arrived
// and its buffer is played; a wake-up means the schedule or cursor changed
// and everything is re-evaluated without playing.
func (s *Scheduler) run() {
	defer close(s.done)

	s.prepareNext()
	for {
		timer := time.NewTimer(s.wait)

		select {
		case <-s.ctx.Done():
			timer.Stop()
			return

		case <-s.wake:
			timer.Stop()
			s.prepareNext()

		case <-timer.C:
			s.fire()
		}
	}
}

// fire hands the current buffer to the sink, flips the buffer slots,
// nudges the cursor past the note begin, and pre-renders the next note.
func (s *Scheduler) fire() {
	buf := s.buffers[s.cur]
	s.cur = (s.cur + 1) % 2

	s.mu.Lock()
	// Advance past the note begin so the next scan cannot re-select the
	// note we just played, even if the feed's position update lags.
	s.pos = math.Max(s.pos, s.noteBegin) + s.cfg.CursorNudge
	if buf != nil {
		s.stats.Played++
	}
	s.mu.Unlock()

	if buf != nil {
		select {
		case s.out <- buf:
		case <-s.ctx.Done():
			return
		}
	}

	s.prepareNext()

	// Hold off re-triggering until the next tick corrects the cursor.
	if floor := secondsToDuration(s.cfg.RetriggerFloor); s.wait < floor {
		s.wait = floor
	}
}

// prepareNext scans for the next due note, renders it into the current
// slot if it changed, and computes the wait until its begin time.
func (s *Scheduler) prepareNext() {
	start := time.Now()

	s.mu.Lock()
	n, ok := s.notes.NextAt(s.pos)
	pos := s.pos
	s.mu.Unlock()

	if !ok {
		s.wait = noNotePending
		return
	}

	delay := n.Begin - pos

	if n.Begin != s.noteBegin {
		s.noteBegin = n.Begin
		// Synthesis happens outside the lock so it never blocks Update.
		s.buffers[s.cur] = s.render(scale.PitchClass(n.Note), n.Length)

		s.mu.Lock()
		s.stats.Rendered++
		s.mu.Unlock()

		log.Printf("Prepared note: step=%d begin=%.3fs length=%.3fs", n.Note, n.Begin, n.Length)
	}

	// Compensate for time spent in this function, bounded so repeated
	// recomputation can never produce a non-positive wait.
	delay -= time.Since(start).Seconds()
	if delay < s.cfg.MinDelay {
		delay = s.cfg.MinDelay
	}
	s.wait = secondsToDuration(delay)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
