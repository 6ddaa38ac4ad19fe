package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// stderr receives progress lines and error reports so they never mix with
// exported data on stdout. Tests replace it.
var stderr io.Writer = os.Stderr

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a one-line progress indicator on stderr while a graph
// renders. After startSpinner returns, only the animation goroutine writes.
type spinner struct {
	label string
	out   io.Writer
	width int
	stop  context.CancelFunc
	done  chan struct{}
}

// startSpinner draws the first frame and animates until ctx is done or Stop
// is called, then erases the line.
func startSpinner(ctx context.Context, label string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{label: label, out: stderr, stop: cancel, done: make(chan struct{})}
	s.draw(0)
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	defer s.erase()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for frame := 1; ; frame++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.draw(frame)
		}
	}
}

func (s *spinner) draw(frame int) {
	line := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]) + " " + StyleDim.Render(s.label)
	s.width = lipgloss.Width(line)
	fmt.Fprint(s.out, "\r"+line)
}

func (s *spinner) erase() {
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
}

// Stop ends the animation and waits for the line to be erased. It is safe to
// call more than once.
func (s *spinner) Stop() {
	s.stop()
	<-s.done
}
