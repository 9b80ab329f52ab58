// Package sink appends transcoded text to the output file.
package sink

import (
	"fmt"
	"os"

	"github.com/yukimemi/mjhnkn/internal/fsutil"
)

// Options configures the output file.
type Options struct {
	// Durable fdatasyncs after every append so the text reaches disk before
	// the caller records progress.
	Durable bool
}

// File is an append-only writer over the output path.
type File struct {
	path    string
	file    *os.File
	durable bool
}

// Open creates the parent directory if needed and opens path for appending.
func Open(path string, opts Options) (*File, error) {
	if err := fsutil.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("prepare output: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return &File{path: path, file: f, durable: opts.Durable}, nil
}

// Path returns the output location.
func (s *File) Path() string {
	return s.path
}

// Append writes p in a single call.
func (s *File) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if _, err := s.file.Write(p); err != nil {
		return fmt.Errorf("append output: %w", err)
	}
	if s.durable {
		if err := fsutil.Datasync(s.file); err != nil {
			return fmt.Errorf("sync output: %w", err)
		}
	}
	return nil
}

// Size reports the current output file size.
func (s *File) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat output: %w", err)
	}
	return info.Size(), nil
}

// Close closes the underlying file.
func (s *File) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
