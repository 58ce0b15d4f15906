//go:build unix

package hma

import (
	"io"
	"syscall"
)

// osLockByteRange applies a POSIX advisory lock on the byte range
// [start, start+length) via fcntl, following the same syscall.Flock_t{Start, Len, Type, Whence}
// / syscall.FcntlFlock shape used to manipulate SQLite's own lock
// bytes in superfly/sqlite3-restore.
func osLockByteRange(fd uintptr, start, length int64, mode LockMode, blocking bool) error {
	var lockType int16
	switch mode {
	case LockNone:
		lockType = syscall.F_UNLCK
	case LockRead:
		lockType = syscall.F_RDLCK
	case LockWrite:
		lockType = syscall.F_WRLCK
	}

	flock := syscall.Flock_t{
		Type:   lockType,
		Start:  start,
		Len:    length,
		Whence: io.SeekStart,
	}

	cmd := syscall.F_SETLK
	if blocking {
		cmd = syscall.F_SETLKW
	}

	if err := syscall.FcntlFlock(fd, cmd, &flock); err != nil {
		if err == syscall.EDEADLK {
			return NewError(ErrBusyDeadlock)
		}
		if err == syscall.EAGAIN || err == syscall.EACCES {
			return NewError(ErrBusy)
		}
		return WrapError(ErrGeneric, err)
	}
	return nil
}
