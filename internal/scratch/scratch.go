// Package scratch manages the per-run and per-candidate working directories.
package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// RunPrefix is the name prefix of every run working area.
const RunPrefix = "multiparagraph-"

// Error reports a failure to create or remove scratch space.
type Error struct {
	Op   string // "acquire", "sub", "release"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scratch: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Dir is the working area of one run. Sub-directories are named from the
// candidate index, so concurrent workers never collide and no locking is
// needed around the namespace.
type Dir struct {
	path string
	keep bool

	once     sync.Once
	released error
}

// Acquire creates a fresh run area beneath root. root is created if it does
// not exist yet.
func Acquire(root string, keep bool) (*Dir, error) {
	if root == "" {
		return nil, &Error{Op: "acquire", Err: errors.New("no root directory")}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &Error{Op: "acquire", Path: root, Err: err}
	}
	path := filepath.Join(root, RunPrefix+uuid.NewString())
	if err := os.Mkdir(path, 0o700); err != nil {
		return nil, &Error{Op: "acquire", Path: path, Err: err}
	}
	return &Dir{path: path, keep: keep}, nil
}

// Path returns the run area.
func (d *Dir) Path() string { return d.path }

// Keep reports whether the area survives Release.
func (d *Dir) Keep() bool { return d.keep }

// Sub creates the private directory for the candidate at index. It fails if
// the directory already exists.
func (d *Dir) Sub(index int) (string, error) {
	path := filepath.Join(d.path, fmt.Sprintf("candidate-%06d", index))
	if err := os.Mkdir(path, 0o700); err != nil {
		return "", &Error{Op: "sub", Path: path, Err: err}
	}
	return path, nil
}

// ReleaseSub removes a candidate directory unless the run keeps scratch.
func (d *Dir) ReleaseSub(path string) error {
	if d.keep {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return &Error{Op: "release", Path: path, Err: err}
	}
	return nil
}

// Release removes the run area, or leaves it in place when keep is set. It
// returns the retained path ("" when removed). Calling it more than once is
// safe.
func (d *Dir) Release() (string, error) {
	if d.keep {
		return d.path, nil
	}
	d.once.Do(func() {
		if err := os.RemoveAll(d.path); err != nil {
			d.released = &Error{Op: "release", Path: d.path, Err: err}
		}
	})
	return "", d.released
}
