package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar shows the percentage of one operation.
// Example: [=========>          ]  45% Installing app/org.example.App (Downloading)
type ProgressBar struct {
	mu          sync.Mutex
	writer      io.Writer
	width       int
	percent     int
	description string
	status      string
	finished    bool
}

// NewProgress creates a progress bar writing to stdout.
func NewProgress(description string) *ProgressBar {
	return &ProgressBar{
		writer:      os.Stdout,
		width:       30,
		description: description,
	}
}

// SetWidth sets the width of the bar in characters.
func (p *ProgressBar) SetWidth(width int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width = width
}

// SetWriter sets the output writer (useful for testing).
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Set records the percentage and status and redraws on a TTY. Values
// outside 0..100 are clamped.
func (p *ProgressBar) Set(percent int, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.percent = min(max(percent, 0), 100)
	p.status = status
	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r%s", p.line())
	}
}

// Percent returns the last percentage set.
func (p *ProgressBar) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}

// Finish draws the bar at 100% and ends the line. Non-TTY writers get a
// single line here and nothing from Set.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	p.percent = 100
	p.status = ""
	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r%s\n", p.line())
		return
	}
	fmt.Fprintln(p.writer, p.line())
}

// Abandon ends the bar where it stands. On a TTY the partial bar is kept
// on its own line.
func (p *ProgressBar) Abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	if writerIsTTY(p.writer) {
		fmt.Fprintln(p.writer)
	}
}

// line formats the bar (must be called with lock held).
func (p *ProgressBar) line() string {
	filled := p.percent * p.width / 100

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < p.width; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")

	s := fmt.Sprintf("%s %3d%% %s", bar.String(), p.percent, p.description)
	if p.status != "" {
		s += " (" + p.status + ")"
	}
	return s
}

// Spinner displays an animated spinner with a message.
// Example: |  Fetching flathub (3s elapsed)
type Spinner struct {
	mu      sync.Mutex
	writer  io.Writer
	message string
	frames  []string
	running bool
	done    chan struct{}
	started time.Time
}

// NewSpinner creates a spinner writing to stdout. Call Start to show it.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		writer:  os.Stdout,
		message: message,
		frames:  []string{"|", "/", "-", "\\"},
	}
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the animation. On a non-TTY writer the message is printed
// once and no goroutine is started.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.done = make(chan struct{})
	go s.animate(s.done)
}

func (s *Spinner) animate(done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-ticker.C:
			s.mu.Lock()
			if !s.running {
				s.mu.Unlock()
				return
			}
			elapsed := int(time.Since(s.started).Seconds())
			fmt.Fprintf(s.writer, "\r%s  %s (%ds elapsed)", s.frames[i%len(s.frames)], s.message, elapsed)
			s.mu.Unlock()
		case <-done:
			return
		}
	}
}

// Stop stops the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	if s.done != nil {
		close(s.done)
		s.done = nil
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+24))
	}
}

// StopWithMessage stops the spinner and prints a final message.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}
