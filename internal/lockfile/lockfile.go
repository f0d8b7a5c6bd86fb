// Package lockfile keeps two foodplannery processes from writing the same
// file-backed store at once.
package lockfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/foodplannery/internal/logger"
)

// ErrLocked is returned when another live process holds the lock
var ErrLocked = errors.New("storage is in use by another foodplannery process")

var (
	findProcessFunc = ps.FindProcess
	executableFunc  = currentExecutable
)

// Lock is a held instance lock. Release it when the store is closed.
type Lock struct {
	path string
}

// Acquire creates path holding "pid|executable". A lockfile left behind by a
// process that is gone, or whose pid now belongs to another program, is
// removed and creation is retried once.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	content := strconv.Itoa(os.Getpid()) + "|" + executableFunc()
	for attempt := 0; attempt < 2; attempt++ {
		err := create(path, content)
		if err == nil {
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to write lockfile: %w", err)
		}

		holder, ok := readHolder(path)
		if ok && holder.pid != os.Getpid() && isAlive(holder) {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, holder.pid)
		}
		logger.Debug("Replacing stale lockfile", "path", path, "pid", holder.pid)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	// Another process took the lock between removal and retry
	return nil, ErrLocked
}

// create fails with fs.ErrExist when path is already there
func create(path, content string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// Release removes the lockfile if it still belongs to this process
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	holder, ok := readHolder(l.path)
	if !ok || holder.pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

func (l *Lock) Path() string {
	return l.path
}

type holder struct {
	pid        int
	executable string
}

func readHolder(path string) (holder, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return holder{}, false
	}

	parts := strings.SplitN(strings.TrimSpace(string(content)), "|", 2)
	if len(parts) != 2 {
		return holder{}, false
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return holder{}, false
	}
	return holder{pid: pid, executable: parts[1]}, true
}

func isAlive(h holder) bool {
	process, err := findProcessFunc(h.pid)
	if err != nil || process == nil {
		return false
	}
	return sameExecutable(process.Executable(), h.executable)
}

// commLen is the length Linux truncates process names to
const commLen = 15

func sameExecutable(running, recorded string) bool {
	if running == recorded {
		return true
	}
	if len(running) == commLen && len(recorded) > commLen {
		return recorded[:commLen] == running
	}
	return false
}

func currentExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}
	return filepath.Base(exe)
}
