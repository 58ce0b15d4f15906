package hma

import "os"

// FileExclusiveLocker is a ready-made ExclusiveLocker backed by a
// whole-file advisory lock on the database file itself, for callers
// that do not already have their own exclusive-lock primitive.
type FileExclusiveLocker struct {
	f *os.File
}

// NewFileExclusiveLocker opens path for locking purposes only.
func NewFileExclusiveLocker(path string) (*FileExclusiveLocker, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &FileExclusiveLocker{f: f}, nil
}

// LockExclusive takes a non-blocking exclusive lock on the whole file.
func (l *FileExclusiveLocker) LockExclusive() error {
	fi, err := l.f.Stat()
	if err != nil {
		return err
	}
	return osLockByteRange(l.f.Fd(), 0, fi.Size(), LockWrite, false)
}

// Unlock releases the lock and closes the underlying file handle.
func (l *FileExclusiveLocker) Unlock() error {
	fi, err := l.f.Stat()
	if err == nil {
		osLockByteRange(l.f.Fd(), 0, fi.Size(), LockNone, false)
	}
	return l.f.Close()
}
