//go:build linux

package fsutil

import (
	"os"

	"golang.org/x/sys/unix"
)

// Datasync flushes file data (not necessarily metadata) to stable storage.
func Datasync(f *os.File) error {
	if f == nil {
		return nil
	}
	for {
		err := unix.Fdatasync(int(f.Fd()))
		if err != unix.EINTR {
			return err
		}
	}
}
