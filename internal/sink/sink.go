// Package sink writes build outputs so that a reader never observes a
// partially written file.
package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/eddie-c-davis/gt4py/internal/errors"
)

// File buffers writes in a temporary file next to its destination. Commit
// renames it into place; Close without Commit discards it.
type File struct {
	path      string
	tmp       *os.File
	committed bool
	closed    bool
}

// Create opens a sink for path. The destination directory must exist.
func Create(path string) (*File, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, errors.ResourceFailure("create", path, err)
	}
	return &File{path: path, tmp: tmp}, nil
}

// Path is the final destination of the file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, errors.ResourceFailure("write", f.path, os.ErrClosed)
	}
	n, err := f.tmp.Write(p)
	if err != nil {
		return n, errors.ResourceFailure("write", f.path, err)
	}
	return n, nil
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Commit flushes the data and atomically replaces the destination.
func (f *File) Commit() error {
	if f.closed {
		return errors.ResourceFailure("commit", f.path, os.ErrClosed)
	}
	f.closed = true

	if err := f.tmp.Sync(); err != nil {
		f.discard()
		return errors.ResourceFailure("sync", f.path, err)
	}
	if err := f.tmp.Chmod(0644); err != nil {
		f.discard()
		return errors.ResourceFailure("chmod", f.path, err)
	}
	if err := f.tmp.Close(); err != nil {
		os.Remove(f.tmp.Name())
		return errors.ResourceFailure("close", f.path, err)
	}
	if err := os.Rename(f.tmp.Name(), f.path); err != nil {
		os.Remove(f.tmp.Name())
		return errors.ResourceFailure("commit", f.path, err)
	}
	f.committed = true
	return nil
}

// Close releases the sink. Uncommitted data is removed. Closing a committed
// sink is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.discard()
}

func (f *File) discard() error {
	f.tmp.Close()
	if err := os.Remove(f.tmp.Name()); err != nil && !os.IsNotExist(err) {
		return errors.ResourceFailure("remove", f.tmp.Name(), err)
	}
	return nil
}

// WriteFile stores data at path through a File.
func WriteFile(path string, data []byte) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Commit()
}

// CopyFile stores the content of r at path through a File.
func CopyFile(path string, r io.Reader) (int64, error) {
	f, err := Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("copy to %s: %w", path, err)
	}
	return n, f.Commit()
}
