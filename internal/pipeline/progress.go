package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives notifications while a batch of files is
// analyzed.
type ProgressCallback interface {
	// OnStart is called once with the total number of files.
	OnStart(total int)

	// OnProgress is called after each file completes.
	OnProgress(current, total int, source string)

	// OnError is called when a file fails; processing continues.
	OnError(source string, err error)

	// OnComplete is called when the batch is finished.
	OnComplete()
}

// NoOpProgress ignores all notifications.
type NoOpProgress struct{}

func (NoOpProgress) OnStart(int)                 {}
func (NoOpProgress) OnProgress(int, int, string) {}
func (NoOpProgress) OnError(string, error)       {}
func (NoOpProgress) OnComplete()                 {}

// ConsoleProgress renders a single-line progress bar.
type ConsoleProgress struct {
	writer   io.Writer
	width    int
	interval time.Duration

	mu       sync.Mutex
	started  time.Time
	lastDraw time.Time
}

// NewConsoleProgress creates a console progress bar writing to w
// (stderr when nil).
func NewConsoleProgress(w io.Writer) *ConsoleProgress {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleProgress{
		writer:   w,
		width:    40,
		interval: 100 * time.Millisecond,
	}
}

func (c *ConsoleProgress) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = time.Now()
	c.lastDraw = time.Time{}
}

func (c *ConsoleProgress) OnProgress(current, total int, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if now.Sub(c.lastDraw) < c.interval && current < total {
		return
	}
	c.lastDraw = now

	filled := 0
	if total > 0 {
		filled = current * c.width / total
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", c.width-filled)
	fmt.Fprintf(c.writer, "\r[%s] %d/%d %s", bar, current, total, source)
	if current >= total {
		fmt.Fprintln(c.writer)
	}
}

func (c *ConsoleProgress) OnError(source string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.writer, "\n%s: %v\n", source, err)
}

func (c *ConsoleProgress) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.writer, "done in %s\n", time.Since(c.started).Round(time.Millisecond))
}
