// Package lock keeps two sensormon processes off the same serial port.
//
// A lock is a directory created with mkdir, which fails atomically when the
// directory exists. An info.json inside names the holder. Locks left behind
// by a crashed process are detected by PID (same host) or age, and removed.
package lock

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rileyhilliard/sensormon/internal/errors"
)

// DefaultStale is the age after which a lock is considered abandoned even
// when its PID can't be checked.
const DefaultStale = 24 * time.Hour

// writeGrace is how long a lock without a readable info.json counts as
// held: its owner may be between mkdir and writing the file.
const writeGrace = 10 * time.Second

// Lock is an acquired port lock.
type Lock struct {
	Dir  string    // The lock directory
	Info *LockInfo // Info about the lock holder (us)
}

// DefaultDir is where port locks live.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "sensormon-locks")
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PathFor returns the lock directory for port under baseDir.
// "/dev/ttyACM0" becomes "<baseDir>/dev_ttyACM0.lock".
func PathFor(baseDir, port string) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(port, "_"), "_")
	if name == "" {
		name = "port"
	}
	return filepath.Join(baseDir, name+".lock")
}

// TryAcquire takes the lock for port without waiting. It returns an error
// wrapping ErrLocked when a live process holds it. Stale locks (dead PID on
// this host, or older than stale) are removed first.
func TryAcquire(baseDir, port string, stale time.Duration) (*Lock, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConnection,
			fmt.Sprintf("Can't create lock directory %s", baseDir),
			"Check permissions on the temp directory")
	}

	dir := PathFor(baseDir, port)
	info := NewLockInfo(port)

	// Two attempts: the second follows removing a stale lock.
	for attempt := 0; attempt < 2; attempt++ {
		err := os.Mkdir(dir, 0755)
		if err == nil {
			data, err := info.Marshal()
			if err == nil {
				err = os.WriteFile(filepath.Join(dir, "info.json"), data, 0644)
			}
			if err != nil {
				_ = os.RemoveAll(dir)
				return nil, errors.WrapWithCode(err, errors.ErrConnection,
					"Failed to write lock info file",
					"Check disk space and permissions on "+baseDir)
			}
			return &Lock{Dir: dir, Info: info}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConnection,
				fmt.Sprintf("Can't create lock %s", dir),
				"Check permissions on "+baseDir)
		}

		if holder, ok := heldBy(dir, stale); ok {
			return nil, errors.WrapWithCode(ErrLocked, errors.ErrConnection,
				fmt.Sprintf("%s is in use by %s", port, holder),
				"Close the other sensormon, or wait for it to disconnect")
		}
		_ = os.RemoveAll(dir)
	}

	return nil, errors.WrapWithCode(ErrLocked, errors.ErrConnection,
		fmt.Sprintf("%s is in use", port),
		"Another process took the lock first; try again")
}

// Release removes the lock. It is safe on a nil Lock and safe to repeat.
func (l *Lock) Release() error {
	if l == nil || l.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrConnection,
			fmt.Sprintf("Failed to remove lock directory: %s", l.Dir),
			"Remove it by hand if sensormon reports the port busy")
	}
	return nil
}

// Holder describes the live process holding port, or "" when the port is free.
func Holder(baseDir, port string, stale time.Duration) string {
	holder, _ := heldBy(PathFor(baseDir, port), stale)
	return holder
}

// heldBy reports whether the lock at dir belongs to a live holder. A lock
// whose info file can't be read is held until it is older than writeGrace.
func heldBy(dir string, stale time.Duration) (string, bool) {
	info, err := readInfo(dir)
	if err == nil {
		if isStale(info, stale) {
			return "", false
		}
		return info.String(), true
	}

	st, statErr := os.Stat(dir)
	if statErr != nil {
		return "", false
	}
	if time.Since(st.ModTime()) < writeGrace {
		return "another process", true
	}
	return "", false
}

func readInfo(dir string) (*LockInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, "info.json"))
	if err != nil {
		return nil, err
	}
	return ParseLockInfo(data)
}

// isStale reports whether the holder is gone: a dead PID on this host, or
// an age past the threshold.
func isStale(info *LockInfo, stale time.Duration) bool {
	if stale > 0 && info.Age() > stale {
		return true
	}
	hostname, _ := os.Hostname()
	if info.Hostname == hostname && info.PID > 0 {
		return !processAlive(info.PID)
	}
	return false
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		// FindProcess already failed for a dead PID.
		return true
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || stderrors.Is(err, os.ErrPermission)
}
