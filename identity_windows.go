//go:build windows

package hma

import (
	"os"

	"golang.org/x/sys/windows"
)

// fileIdentity is the windows equivalent of a (device, inode) pair:
// the volume serial number plus the 64-bit file index, which together
// uniquely identify a file the way device/inode does on unix.
type fileIdentity struct {
	volumeSerial uint64
	fileIndex    uint64
}

func statIdentity(path string) (fileIdentity, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileIdentity{}, err
	}
	defer f.Close()
	return fdIdentity(f)
}

func fdIdentity(f *os.File) (fileIdentity, error) {
	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(windows.Handle(f.Fd()), &info); err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{
		volumeSerial: uint64(info.VolumeSerialNumber),
		fileIndex:    uint64(info.FileIndexHigh)<<32 | uint64(info.FileIndexLow),
	}, nil
}
