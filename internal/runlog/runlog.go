// Package runlog owns the per-invocation run log.
package runlog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Log is a logrus logger bound to the run log file.
type Log struct {
	*logrus.Logger
	Path string
	file *os.File
}

// Open truncates the log at path and returns a logger appending to it.
// path's parent directory is created when missing. Close the Log when the run ends.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Log{Logger: newLogger(file), Path: path, file: file}, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return newLogger(io.Discard)
}

func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	return logger
}

// Close flushes and closes the log file.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
