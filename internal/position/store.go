package position

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/yukimemi/mjhnkn/internal/fsutil"
)

// ErrCorrupt reports a record whose contents are not a non-negative integer.
var ErrCorrupt = errors.New("position record is corrupt")

// Store reads and writes the persisted cursor for one input file.
type Store struct {
	path    string
	durable bool
}

// Option customizes a Store.
type Option func(*Store)

// WithDurableWrites fsyncs each record before it replaces the old one.
func WithDurableWrites(enabled bool) Option {
	return func(s *Store) {
		s.durable = enabled
	}
}

// NewStore returns a store backed by the file at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the record location.
func (s *Store) Path() string {
	return s.path
}

// Read returns the persisted offset, or 0 when no usable record exists.
func (s *Store) Read() uint64 {
	offset, _, err := s.Load()
	if err != nil {
		return 0
	}
	return offset
}

// Load reports the persisted offset and whether a record was present.
// A missing record is not an error; an unparsable one wraps ErrCorrupt.
func (s *Store) Load() (uint64, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read position record: %w", err)
	}
	text := strings.TrimSpace(string(data))
	offset, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %q", ErrCorrupt, text)
	}
	return offset, true, nil
}

// Write replaces the record with the decimal form of offset, creating the
// parent directory when needed.
func (s *Store) Write(offset uint64) error {
	payload := []byte(strconv.FormatUint(offset, 10))
	if err := fsutil.ReplaceFile(s.path, payload, 0o644, s.durable); err != nil {
		return fmt.Errorf("write position record %s: %w", s.path, err)
	}
	return nil
}
