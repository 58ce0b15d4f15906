//go:build unix

package hma

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileIdentity is the (device, inode) pair the registry uses as a
// process-wide key for a database file (§4.2 step 2).
type fileIdentity struct {
	device uint64
	inode  uint64
}

func statIdentity(path string) (fileIdentity, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{device: uint64(st.Dev), inode: uint64(st.Ino)}, nil
}

func fdIdentity(f *os.File) (fileIdentity, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{device: uint64(st.Dev), inode: uint64(st.Ino)}, nil
}
