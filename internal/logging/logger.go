package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	// LevelTrace is more verbose than debug and carries per-cycle detail.
	LevelTrace = slog.Level(-8)
	// LevelOff is above every level a record can carry, disabling output.
	LevelOff = slog.Level(1 << 20)
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
}

// New constructs a slog logger using the provided options. The returned
// Closer releases log files opened for OutputPaths; standard streams are left
// open. Call it once the logger is no longer used.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	paths := opts.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	out, err := openWriters(paths)
	if err != nil {
		return nil, nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	var handler slog.Handler
	switch resolveFormat(opts.Format, out.primary) {
	case "json":
		handler = newJSONHandler(out.writer(), levelVar, addSource)
	case "console":
		handler = newPrettyHandler(out.writer(), levelVar, addSource)
	default:
		_ = out.Close()
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	return slog.New(handler), out, nil
}

// ParseLevel maps a textual level to a slog level. An empty value is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "off":
		return LevelOff, nil
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log level: unsupported value %q", level)
	}
}

// resolveFormat turns "auto" into console for terminals and json otherwise.
func resolveFormat(format string, primary *os.File) string {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		return "console"
	case "auto":
		if primary != nil && isTerminal(primary) {
			return "console"
		}
		return "json"
	default:
		return format
	}
}

func isTerminal(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// outputs is the set of destinations behind one logger.
type outputs struct {
	writers []io.Writer
	files   []*os.File
	// primary is the first standard stream, used to detect a terminal.
	primary *os.File
}

func (o *outputs) writer() io.Writer {
	if len(o.writers) == 1 {
		return o.writers[0]
	}
	return io.MultiWriter(o.writers...)
}

// Close closes the log files. It is safe to call more than once.
func (o *outputs) Close() error {
	var errs []error
	for _, f := range o.files {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	o.files = nil
	return errors.Join(errs...)
}

func openWriters(paths []string) (*outputs, error) {
	seen := map[string]struct{}{}
	out := &outputs{}

	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout", "stderr":
			stream := os.Stderr
			if trimmed == "stdout" {
				stream = os.Stdout
			}
			out.writers = append(out.writers, stream)
			if out.primary == nil {
				out.primary = stream
			}
		default:
			if err := ensureLogDir(trimmed); err != nil {
				_ = out.Close()
				return nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				_ = out.Close()
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			out.writers = append(out.writers, file)
			out.files = append(out.files, file)
		}
	}
	if len(out.writers) == 0 {
		out.writers = []io.Writer{os.Stderr}
		out.primary = os.Stderr
	}
	return out, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
