//go:build windows

package hma

import (
	"golang.org/x/sys/windows"
)

// osLockByteRange applies a single byte-range advisory lock via
// LockFileEx/UnlockFileEx, the windows counterpart to the unix fcntl
// path, following the same build-tag split the teacher repo uses for
// its own lock file.
func osLockByteRange(fd uintptr, start, length int64, mode LockMode, blocking bool) error {
	handle := windows.Handle(fd)

	offsetLow := uint32(start)
	offsetHigh := uint32(start >> 32)
	lengthLow := uint32(length)
	lengthHigh := uint32(length >> 32)

	if mode == LockNone {
		err := windows.UnlockFileEx(handle, 0, lengthLow, lengthHigh, &windows.Overlapped{
			Offset:     offsetLow,
			OffsetHigh: offsetHigh,
		})
		if err != nil {
			return WrapError(ErrGeneric, err)
		}
		return nil
	}

	var flags uint32
	if mode == LockWrite {
		flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	if !blocking {
		flags |= windows.LOCKFILE_FAIL_IMMEDIATELY
	}

	overlapped := &windows.Overlapped{
		Offset:     offsetLow,
		OffsetHigh: offsetHigh,
	}

	err := windows.LockFileEx(handle, flags, 0, lengthLow, lengthHigh, overlapped)
	if err != nil {
		if err == windows.ERROR_LOCK_VIOLATION {
			return NewError(ErrBusy)
		}
		return WrapError(ErrGeneric, err)
	}
	return nil
}
