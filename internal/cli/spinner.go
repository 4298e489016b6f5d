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

// spinner animates the current stage of a slow step on one terminal line. It
// stops on Stop or when its context ends.
type spinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	start   time.Time

	once    sync.Once
	elapsed time.Duration

	mu    sync.Mutex
	stage string
	width int
}

// startSpinner draws stage on w and keeps animating it until Stop.
func startSpinner(ctx context.Context, w io.Writer, stage string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		start:   time.Now(),
		stage:   stage,
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
		}
	}
}

// Stage replaces the message shown from the next frame on, e.g.
// "Encoding png".
func (s *spinner) Stage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

// Stop ends the animation, clears the line and returns the time since the
// spinner started. Later calls return the same duration.
func (s *spinner) Stop() time.Duration {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		s.elapsed = time.Since(s.start)
	})
	return s.elapsed
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(s.stage)+6)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.stage+"..."))
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}
