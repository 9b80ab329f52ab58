package tail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/yukimemi/mjhnkn/internal/logging"
)

// ErrInputFaulted is returned by Run when reads keep failing past the
// configured retry budget.
var ErrInputFaulted = errors.New("input read failures exceeded retry budget")

// PositionStore persists the cursor.
type PositionStore interface {
	Read() uint64
	Write(offset uint64) error
}

// Decoder converts source bytes to UTF-8 and reports bytes consumed. Reset
// is called whenever reading restarts at offset 0.
type Decoder interface {
	Decode(src []byte) ([]byte, int)
	Reset()
}

// Sink receives decoded text.
type Sink interface {
	Append(p []byte) error
}

// State is the engine state a cycle ended in.
type State int

const (
	StateInitializing State = iota
	StatePolling
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StatePolling:
		return "polling"
	case StateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// Cycle describes one Step.
type Cycle struct {
	State     State
	Read      int
	Consumed  int
	Written   int
	Truncated bool
	Rotated   bool
	// Fault is a transient read failure; the cursor did not move.
	Fault error
}

// Options configures an Engine.
type Options struct {
	InputPath      string
	PollInterval   time.Duration
	ReadChunk      int
	ReopenOnRotate bool
	Retry          RetryPolicy
}

const defaultReadChunk = 1 << 20

// Engine tails one input file.
type Engine struct {
	opts    Options
	store   PositionStore
	decoder Decoder
	logger  *slog.Logger

	input     *os.File
	inputInfo os.FileInfo
	cursor    uint64
	buf       []byte

	wait func(ctx context.Context, d time.Duration) error
}

// Open resolves the starting cursor from store and opens the input.
func Open(opts Options, store PositionStore, decoder Decoder, logger *slog.Logger) (*Engine, error) {
	if store == nil || decoder == nil {
		return nil, errors.New("tail engine requires a position store and decoder")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ReadChunk <= 0 {
		opts.ReadChunk = defaultReadChunk
	}
	opts.Retry = opts.Retry.withDefaults(opts.PollInterval)

	input, err := os.Open(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	info, err := input.Stat()
	if err != nil {
		_ = input.Close()
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		_ = input.Close()
		return nil, fmt.Errorf("open input: %s is a directory", opts.InputPath)
	}

	e := &Engine{
		opts:      opts,
		store:     store,
		decoder:   decoder,
		logger:    logging.NewComponentLogger(logger, "tail"),
		input:     input,
		inputInfo: info,
		cursor:    store.Read(),
		wait:      sleepContext,
	}
	if e.cursor == 0 {
		e.decoder.Reset()
	}
	e.logger.Debug("tail engine initialized",
		logging.String(logging.FieldInput, opts.InputPath),
		logging.Uint64(logging.FieldCursor, e.cursor),
		logging.Int64("input_size", info.Size()),
	)
	return e, nil
}

// Cursor returns the number of input bytes already transcoded.
func (e *Engine) Cursor() uint64 {
	return e.cursor
}

// Close releases the input handle.
func (e *Engine) Close() error {
	if e.input == nil {
		return nil
	}
	err := e.input.Close()
	e.input = nil
	return err
}

// Run polls until ctx is cancelled or a fatal error occurs. Cancellation is
// observed between cycles, so an in-flight append and persist always finish.
func (e *Engine) Run(ctx context.Context, out Sink) error {
	faults := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		cycle, err := e.Step(out)
		if err != nil {
			return err
		}

		var delay time.Duration
		switch {
		case cycle.Fault != nil:
			faults++
			if e.opts.Retry.exhausted(faults) {
				logging.ErrorWithContext(e.logger, "input unreadable, giving up", "input_faulted",
					logging.Error(cycle.Fault),
					logging.Int("consecutive_faults", faults),
					logging.String(logging.FieldErrorHint, "check that the input path exists and is readable"),
				)
				return fmt.Errorf("%w after %d attempts: %v", ErrInputFaulted, faults, cycle.Fault)
			}
			delay = e.opts.Retry.Backoff(faults)
			logging.WarnWithContext(e.logger, "input read failed; retrying", "input_read_failed",
				logging.Error(cycle.Fault),
				logging.Int("consecutive_faults", faults),
				logging.Duration("retry_in", delay),
				logging.String(logging.FieldErrorHint, "check that the input path exists and is readable"),
				logging.String(logging.FieldImpact, "transcoding paused until the input is readable"),
			)
		case cycle.State == StateDraining:
			if faults > 0 {
				e.logger.Info("input readable again", logging.Int("after_faults", faults))
			}
			faults = 0
			continue
		default:
			faults = 0
			delay = e.opts.PollInterval
		}

		if err := e.wait(ctx, delay); err != nil {
			return nil
		}
	}
}

// Step runs one poll cycle, draining at most one chunk. A returned error is
// fatal: the output or the position record could not be written.
func (e *Engine) Step(out Sink) (Cycle, error) {
	cycle := Cycle{State: StatePolling}
	if e.input == nil {
		return cycle, errors.New("tail engine is closed")
	}

	size, rotated, err := e.probe()
	if err != nil {
		cycle.Fault = err
		return cycle, nil
	}
	cycle.Rotated = rotated

	if size < e.cursor {
		logging.WarnWithContext(e.logger, "input truncated; restarting from beginning", "input_truncated",
			logging.Uint64(logging.FieldCursor, e.cursor),
			logging.Uint64("input_size", size),
			logging.String(logging.FieldImpact, "bytes now in the file are transcoded again from offset 0"),
			logging.String(logging.FieldErrorHint, "expected after log rotation by truncation"),
		)
		e.reset()
		cycle.Truncated = true
	}

	available := size - e.cursor
	if available == 0 {
		logging.Trace(e.logger, "no new input", logging.Uint64(logging.FieldCursor, e.cursor))
		return cycle, nil
	}

	want := e.opts.ReadChunk
	if available < uint64(want) {
		want = int(available)
	}
	if cap(e.buf) < want {
		e.buf = make([]byte, want)
	}
	buf := e.buf[:want]

	n, err := e.input.ReadAt(buf, int64(e.cursor))
	if err != nil && !errors.Is(err, io.EOF) {
		cycle.Fault = fmt.Errorf("read input at %d: %w", e.cursor, err)
		return cycle, nil
	}
	cycle.Read = n
	if n == 0 {
		return cycle, nil
	}

	text, consumed := e.decoder.Decode(buf[:n])
	if consumed == 0 {
		// Only a partial character is available so far.
		logging.Trace(e.logger, "waiting for rest of multi-byte sequence", logging.Int("pending", n))
		return cycle, nil
	}

	if err := out.Append(text); err != nil {
		return cycle, fmt.Errorf("append output: %w", err)
	}
	next := e.cursor + uint64(consumed)
	if err := e.store.Write(next); err != nil {
		return cycle, fmt.Errorf("persist position %d: %w", next, err)
	}
	e.cursor = next

	cycle.State = StateDraining
	cycle.Consumed = consumed
	cycle.Written = len(text)
	e.logger.Debug("transcoded input",
		logging.Int("bytes_in", consumed),
		logging.Int("bytes_out", len(text)),
		logging.Uint64(logging.FieldCursor, e.cursor),
	)
	return cycle, nil
}

// probe returns the size to compare against the cursor. When the path now
// names a different file and the old handle is fully drained, the new file
// is opened and the cursor restarts at 0. While the path is missing after a
// rename, the old handle keeps being drained.
func (e *Engine) probe() (uint64, bool, error) {
	handleInfo, err := e.input.Stat()
	if err != nil {
		return 0, false, fmt.Errorf("stat input handle: %w", err)
	}
	handleSize := uint64(handleInfo.Size())

	pathInfo, err := os.Stat(e.opts.InputPath)
	if err != nil {
		if e.opts.ReopenOnRotate && errors.Is(err, fs.ErrNotExist) && handleSize > e.cursor {
			return handleSize, false, nil
		}
		return 0, false, fmt.Errorf("stat input: %w", err)
	}

	if !e.opts.ReopenOnRotate || os.SameFile(pathInfo, e.inputInfo) {
		return handleSize, false, nil
	}
	if handleSize > e.cursor {
		return handleSize, false, nil
	}

	replacement, err := os.Open(e.opts.InputPath)
	if err != nil {
		return 0, false, fmt.Errorf("reopen rotated input: %w", err)
	}
	info, err := replacement.Stat()
	if err != nil {
		_ = replacement.Close()
		return 0, false, fmt.Errorf("stat rotated input: %w", err)
	}
	_ = e.input.Close()
	e.input = replacement
	e.inputInfo = info

	logging.WarnWithContext(e.logger, "input replaced; following new file", "input_rotated",
		logging.String(logging.FieldInput, e.opts.InputPath),
		logging.Uint64("previous_cursor", e.cursor),
		logging.String(logging.FieldImpact, "cursor restarts at 0 for the new file"),
		logging.String(logging.FieldErrorHint, "expected after log rotation by rename"),
	)
	e.reset()
	return uint64(info.Size()), true, nil
}

func (e *Engine) reset() {
	e.cursor = 0
	e.decoder.Reset()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
