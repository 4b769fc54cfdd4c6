// Package spinner draws a one-line progress indicator on stderr while themes
// are being summarized.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Spinner represents a spinning progress indicator with an optional
// "done/total" counter after its message.
type Spinner struct {
	frames  []string
	delay   time.Duration
	writer  io.Writer
	message string
	done    int
	total   int

	mu     sync.RWMutex
	active bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a spinner that writes to writer. Cancelling ctx stops the animation.
func New(ctx context.Context, writer io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		frames:  []string{"◜", "◠", "◝", "◞", "◡", "◟"},
		delay:   100 * time.Millisecond,
		writer:  writer,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
	}
}

// Enabled reports whether w is an interactive terminal worth animating on.
func Enabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true

	s.wg.Add(1)
	go s.run()
}

// Stop stops the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	if Enabled(s.writer) {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		fmt.Fprint(s.writer, "\r")
	}
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// UpdateMessage replaces the spinner message.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Progress sets the counter shown after the message. A zero total hides it.
func (s *Spinner) Progress(done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = done
	s.total = total
}

// line renders the current frame, message and counter.
func (s *Spinner) line(frame int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	glyph := s.frames[frame%len(s.frames)]
	if s.total > 0 {
		return fmt.Sprintf("\r%s %s (%d/%d)", glyph, s.message, s.done, s.total)
	}
	return fmt.Sprintf("\r%s %s", glyph, s.message)
}

func (s *Spinner) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(s.writer, s.line(frame))
		}
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
