//go:build !linux

package fsutil

import "os"

// Datasync flushes file contents to stable storage.
func Datasync(f *os.File) error {
	if f == nil {
		return nil
	}
	return f.Sync()
}
