//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// New creates a new memory mapping for the given file descriptor.
// The offset must be page-aligned.
func New(fd int, offset int64, length int, writable bool) (*Map, error) {
	if length <= 0 {
		return nil, ErrInvalidSize
	}

	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(fd, offset, length, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, &Error{Op: "mmap", Err: err}
	}

	return &Map{
		data:     data,
		fd:       fd,
		size:     int64(length),
		writable: writable,
	}, nil
}

// MapFile opens a file and creates a memory mapping covering its entire
// current size.
func MapFile(path string, writable bool) (*Map, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		f.Close()
		return nil, ErrEmptyFile
	}

	m, err := New(int(f.Fd()), 0, int(size), writable)
	if err != nil {
		f.Close()
		return nil, err
	}

	return m, nil
}

// Sync flushes changes to disk synchronously.
func (m *Map) Sync() error {
	if m.data == nil {
		return ErrNotMapped
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// SyncRange flushes a specific range to disk.
func (m *Map) SyncRange(offset, length int64) error {
	if m.data == nil {
		return ErrNotMapped
	}
	if offset < 0 || length < 0 || offset+length > m.size {
		return ErrInvalidRange
	}
	return unix.Msync(m.data[offset:offset+length], unix.MS_SYNC)
}

// Close releases the memory mapping.
func (m *Map) Close() error {
	if m.data == nil {
		return nil
	}

	err := unix.Munmap(m.data)
	m.data = nil
	m.size = 0
	return err
}
