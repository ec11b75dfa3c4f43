package logging

import (
	"strings"
	"sync"
)

// captureDepth is how many recent lines a LogCaptureWriter keeps.
const captureDepth = 50

// LogCaptureWriter is a thread-safe writer that keeps the most recent lines.
type LogCaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// GlobalLogCapture captures server log lines (INFO+).
var GlobalLogCapture = &LogCaptureWriter{}

// GlobalEventCapture captures recorder event log lines.
var GlobalEventCapture = &LogCaptureWriter{}

// Write implements io.Writer. Each call is stored as one line.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimRight(string(p), "\n")
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lines == nil {
		w.lines = make([]string, captureDepth)
	}
	w.lines[w.next] = line
	w.next = (w.next + 1) % captureDepth
	if w.next == 0 {
		w.full = true
	}
	return len(p), nil
}

// GetLastLine returns the most recent line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lines == nil || (!w.full && w.next == 0) {
		return ""
	}
	return w.lines[(w.next-1+captureDepth)%captureDepth]
}

// Tail returns up to n recent lines, oldest first.
func (w *LogCaptureWriter) Tail(n int) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	count := w.next
	if w.full {
		count = captureDepth
	}
	if n <= 0 || n > count {
		n = count
	}
	out := make([]string, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, w.lines[(w.next-i+captureDepth)%captureDepth])
	}
	return out
}
