package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates the current stage of a command on a terminal line.
// A nil *Spinner is valid and does nothing, so commands can skip the
// animation when their output goes to stdout.
type Spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stage   string
	width   int // widest line drawn so far
	started bool
	stopped chan struct{}
}

// newSpinner creates a spinner that starts at stage and stops when ctx is
// cancelled.
func newSpinner(ctx context.Context, w io.Writer, stage string) *Spinner {
	spinCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		parent:  ctx,
		ctx:     spinCtx,
		cancel:  cancel,
		stage:   stage,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Stage replaces the message shown next to the animation.
func (s *Spinner) Stage(format string, args ...any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.stage = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(s.stage)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.stage))
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
	}
}

// Stop ends the animation and clears its line. It may be called more
// than once, and on a spinner that never started.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.cancel()
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.stopped
	}
}

// Cancelled reports whether the command's context ended the spinner.
func (s *Spinner) Cancelled() bool {
	return s != nil && s.parent.Err() != nil
}
