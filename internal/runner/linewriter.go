package runner

import (
	"bytes"
	"sync"

	"github.com/sirupsen/logrus"
)

// lineWriter logs each complete line written to it as one info entry.
// Logging happens inside Write, so once the command has been waited on every
// line is already in the log.
type lineWriter struct {
	mu    sync.Mutex
	entry *logrus.Entry
	buf   []byte
}

// Write logs every complete line in p and keeps the trailing partial line.
func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush logs a trailing line that had no newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	w.entry.Info(string(bytes.TrimRight(line, "\r")))
}
