package observability

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TraceWriter outputs human-readable trace lines with timestamps relative to
// session start. Verbosity levels:
//   - 0: silent
//   - 1: session events (bootstrap, refresh, navigation)
//   - 2: session events + individual HTTP requests
type TraceWriter struct {
	mu        sync.Mutex
	writer    io.Writer
	level     int
	startTime time.Time
}

// NewTraceWriter creates a TraceWriter that writes to stderr.
func NewTraceWriter(level int) *TraceWriter {
	return &TraceWriter{writer: os.Stderr, level: level, startTime: time.Now()}
}

// NewTraceWriterTo creates a TraceWriter that writes to the given writer.
func NewTraceWriterTo(w io.Writer, level int) *TraceWriter {
	return &TraceWriter{writer: w, level: level, startTime: time.Now()}
}

// SetLevel changes the verbosity after construction; flags are parsed after
// the writer is wired into the session subsystem.
func (t *TraceWriter) SetLevel(level int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.level = level
	t.mu.Unlock()
}

func (t *TraceWriter) write(min int, format string, args ...any) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.level < min {
		return
	}
	elapsed := time.Since(t.startTime).Seconds()
	fmt.Fprintf(t.writer, "[%.3fs] "+format+"\n", append([]any{elapsed}, args...)...)
}

// Event writes a session-level event (level 1).
func (t *TraceWriter) Event(format string, args ...any) {
	t.write(1, format, args...)
}

// Request writes a per-request trace line (level 2).
func (t *TraceWriter) Request(method, path string, status int, d time.Duration) {
	t.write(2, "  -> %s %s (%d, %dms)", method, path, status, d.Milliseconds())
}
