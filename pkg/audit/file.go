// pkg/audit/file.go
// FileLogger is a Logger backed by a regular file, with an atomic
// rotation operation so a crash mid-rotation never leaves a
// half-written log behind for whatever ships it onward.

package audit

import (
	"bytes"
	"os"

	"github.com/natefinch/atomic"
)

// FileLogger appends audit events to a live file and can atomically
// snapshot them out to a rotated path.
type FileLogger struct {
	*Logger
	path string
	file *os.File
}

// NewFileLogger opens (creating if necessary) path for append and
// returns a FileLogger writing JSON lines to it.
func NewFileLogger(path string) (*FileLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		Logger: NewLogger(file),
		path:   path,
		file:   file,
	}, nil
}

// Rotate copies the current contents of the live log to destPath using
// an atomic rename-on-write (via github.com/natefinch/atomic), then
// truncates the live file. A reader of destPath never observes a
// partially written file, even if the process dies mid-rotation.
func (l *FileLogger) Rotate(destPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Sync(); err != nil {
		return err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(destPath, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := l.file.Truncate(0); err != nil {
		return err
	}
	_, err = l.file.Seek(0, 0)
	return err
}

// Close closes the underlying file.
func (l *FileLogger) Close() error {
	return l.file.Close()
}

// Sync flushes writes to disk.
func (l *FileLogger) Sync() error {
	return l.file.Sync()
}
