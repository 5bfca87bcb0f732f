// Package spinner shows a one-line activity indicator on the terminal while
// the CLI waits, for example between re-exports in watch mode. On writers
// that are not terminals it prints plain status lines instead.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"

	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"

	symbolSuccess = "✓"
	symbolFailure = "✗"
)

// CharSet is the sequence of animation frames.
type CharSet []string

var (
	Braille = CharSet{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	Line    = CharSet{"|", "/", "-", "\\"}
)

// Config configures a Spinner.
type Config struct {
	CharSet     CharSet
	Message     string
	RefreshRate time.Duration

	// ShowElapsed appends "(1.2s)" to the message.
	ShowElapsed bool

	// Writer defaults to os.Stderr.
	Writer io.Writer

	// IsTTY overrides terminal detection on Writer.
	IsTTY *bool
}

// Spinner is safe for concurrent use. Start and Stop may be called any
// number of times.
type Spinner struct {
	mu     sync.Mutex
	cfg    Config
	tty    bool
	active bool
	start  time.Time
	frame  int
	width  int
	stop   chan struct{}
	done   chan struct{}
}

// New creates a spinner on stderr with message.
func New(message string) *Spinner {
	return NewWithConfig(Config{Message: message, ShowElapsed: true})
}

// NewWithConfig creates a spinner, filling unset fields with defaults.
func NewWithConfig(cfg Config) *Spinner {
	if len(cfg.CharSet) == 0 {
		cfg.CharSet = Braille
	}
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = 80 * time.Millisecond
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	tty := false
	if f, ok := cfg.Writer.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	if cfg.IsTTY != nil {
		tty = *cfg.IsTTY
	}
	return &Spinner{cfg: cfg, tty: tty}
}

// IsActive reports whether the spinner is running.
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Message
}

// Update replaces the message shown by the running or next spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Message = message
}

// Start begins animating. Without a terminal it prints "message..." once.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.start = time.Now()
	s.frame = 0

	if !s.tty {
		fmt.Fprintf(s.cfg.Writer, "%s...\n", s.cfg.Message)
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	fmt.Fprint(s.cfg.Writer, hideCursor)
	go s.spin(s.stop, s.done)
}

func (s *Spinner) spin(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.RefreshRate)
	defer ticker.Stop()

	s.render()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	frame := s.cfg.CharSet[s.frame%len(s.cfg.CharSet)]
	s.frame++

	line := frame + " " + s.cfg.Message
	if s.cfg.ShowElapsed {
		line += " " + formatElapsed(time.Since(s.start))
	}
	s.clear()
	fmt.Fprint(s.cfg.Writer, line)
	s.width = len([]rune(line))
}

// clear blanks the current line. Caller holds mu.
func (s *Spinner) clear() {
	if s.width > 0 {
		fmt.Fprint(s.cfg.Writer, "\r"+strings.Repeat(" ", s.width)+"\r")
		s.width = 0
	}
}

// halt stops the animation goroutine and returns the elapsed time. It
// reports false if the spinner was not running.
func (s *Spinner) halt() (time.Duration, bool) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return 0, false
	}
	s.active = false
	elapsed := time.Since(s.start)
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
		s.mu.Lock()
		s.clear()
		fmt.Fprint(s.cfg.Writer, showCursor)
		s.mu.Unlock()
	}
	return elapsed, true
}

// Stop ends the animation and clears its line.
func (s *Spinner) Stop() {
	s.halt()
}

// Success stops the spinner and prints "✓ message". An empty message
// reuses the spinner's.
func (s *Spinner) Success(message string) {
	s.finish(message, symbolSuccess, colorGreen)
}

// Fail stops the spinner and prints "✗ message".
func (s *Spinner) Fail(message string) {
	s.finish(message, symbolFailure, colorRed)
}

func (s *Spinner) finish(message, symbol, color string) {
	elapsed, wasActive := s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" {
		message = s.cfg.Message
	}
	if s.tty {
		symbol = color + symbol + colorReset
	}
	line := symbol + " " + message
	if s.cfg.ShowElapsed && wasActive {
		line += " " + formatElapsed(elapsed)
	}
	fmt.Fprintln(s.cfg.Writer, line)
}

// formatElapsed renders "(1.2s)" below a minute and "(1m 30s)" above.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%.1fs)", d.Seconds())
	}
	return fmt.Sprintf("(%dm %ds)", int(d.Minutes()), int(d.Seconds())%60)
}
