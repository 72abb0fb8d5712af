package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

const DefaultFailureLogPath = "not_imported.txt"

// FailureLog appends one path per line. The sibling .lock file is held while the log is open.
type FailureLog struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *bufio.Writer
	lock   *flock.Flock
	count  int
}

func OpenFailureLog(path string) (*FailureLog, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultFailureLogPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create failure log dir: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire failure log lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("failure log %s is locked by another run", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open failure log: %w", err)
	}

	return &FailureLog{
		path:   path,
		file:   file,
		writer: bufio.NewWriter(file),
		lock:   lock,
	}, nil
}

func (l *FailureLog) Path() string {
	return l.path
}

// Record writes path and flushes so that an interrupted run keeps what it logged.
func (l *FailureLog) Record(path string) error {
	path = strings.TrimSpace(strings.ReplaceAll(path, "\n", " "))
	if path == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("failure log %s is closed", l.path)
	}
	if _, err := l.writer.WriteString(path + "\n"); err != nil {
		return fmt.Errorf("write failure log: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("flush failure log: %w", err)
	}
	l.count++
	return nil
}

func (l *FailureLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

func (l *FailureLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}

	flushErr := l.writer.Flush()
	closeErr := l.file.Close()
	unlockErr := l.lock.Unlock()
	l.file = nil

	switch {
	case flushErr != nil:
		return fmt.Errorf("flush failure log: %w", flushErr)
	case closeErr != nil:
		return fmt.Errorf("close failure log: %w", closeErr)
	case unlockErr != nil:
		return fmt.Errorf("release failure log lock: %w", unlockErr)
	}
	return nil
}
