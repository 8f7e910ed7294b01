// Package input opens the measurement file as a read-only Source that many
// workers can read from concurrently.
package input

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/exp/mmap"
)

// Source is a read-only, random-access view of the input. ReadAt must be
// safe for concurrent use.
type Source interface {
	ReadAt(p []byte, off int64) (int, error)
	Size() int64
	Close() error
}

type Mode string

const (
	ModeMapped Mode = "mmap"
	ModePread  Mode = "pread"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeMapped:
		return ModeMapped, nil
	case ModePread:
		return ModePread, nil
	}
	return "", fmt.Errorf("unknown input mode %q", s)
}

func Open(path string, mode Mode) (Source, error) {
	switch mode {
	case ModeMapped, "":
		return OpenMapped(path)
	case ModePread:
		return OpenFile(path)
	}
	return nil, fmt.Errorf("unknown input mode %q", mode)
}

// Mapped shares one memory mapping of the file between all readers.
type Mapped struct {
	path string
	r    *mmap.ReaderAt
	once sync.Once
	err  error
}

func OpenMapped(path string) (*Mapped, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	return &Mapped{path: path, r: r}, nil
}

func (m *Mapped) ReadAt(p []byte, off int64) (int, error) {
	n, err := m.r.ReadAt(p, off)
	if err != nil && n < len(p) && off+int64(n) < m.Size() {
		return n, fmt.Errorf("failed to read %s at %d: %w", m.path, off, err)
	}
	return n, err
}

func (m *Mapped) Size() int64 {
	return int64(m.r.Len())
}

// Close unmaps the file. It is safe to call more than once.
func (m *Mapped) Close() error {
	m.once.Do(func() {
		m.err = m.r.Close()
	})
	return m.err
}

// File reads the input with positional reads on a single descriptor.
type File struct {
	path string
	f    *os.File
	size int64
	once sync.Once
	err  error
}

func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !st.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return &File{path: path, f: f, size: st.Size()}, nil
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	adviseSequential(f.f, off, int64(len(p)))
	n, err := f.f.ReadAt(p, off)
	if err != nil && n < len(p) && off+int64(n) < f.size {
		return n, fmt.Errorf("failed to read %s at %d: %w", f.path, off, err)
	}
	return n, err
}

func (f *File) Size() int64 {
	return f.size
}

func (f *File) Close() error {
	f.once.Do(func() {
		f.err = f.f.Close()
	})
	return f.err
}
