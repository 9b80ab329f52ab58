package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/yukimemi/mjhnkn/internal/config"
	"github.com/yukimemi/mjhnkn/internal/encoding"
	"github.com/yukimemi/mjhnkn/internal/instance"
	"github.com/yukimemi/mjhnkn/internal/logging"
	"github.com/yukimemi/mjhnkn/internal/position"
	"github.com/yukimemi/mjhnkn/internal/sink"
	"github.com/yukimemi/mjhnkn/internal/tail"
)

// Options configures process runtime behavior.
type Options struct {
	// Logger overrides the logger built from the config.
	Logger      *slog.Logger
	Development bool
	Version     string
}

// Run executes one tail session until ctx is cancelled or a fatal error
// occurs. A duplicate invocation returns an error wrapping
// instance.ErrAlreadyRunning before any file is touched.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		built, closer, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stderr", cfg.Logging.File},
			Development: opts.Development,
		})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer closer.Close()
		logger = built
	}
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	enc, err := encoding.Resolve(cfg.Tail.Encoding)
	if err != nil {
		logging.ErrorWithContext(logger, "unsupported encoding", "encoding_unsupported",
			logging.String("encoding", cfg.Tail.Encoding),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "use a WHATWG encoding label such as utf-8, shift_jis or windows-1252"),
		)
		return err
	}

	fingerprint := instance.Fingerprint(cfg.InvocationArgs()...)
	lock := instance.New(cfg.Instance.LockDir, fingerprint)
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, instance.ErrAlreadyRunning) {
			logging.WarnWithContext(logger, "another instance with the same arguments is running", "instance_duplicate",
				logging.String("lock_path", lock.Path()),
				logging.String(logging.FieldImpact, "this process exits without reading or writing anything"),
				logging.String(logging.FieldErrorHint, "stop the other instance or change the arguments"),
			)
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Debug("release instance lock", logging.Error(err))
		}
	}()

	logSessionInfo(logger, cfg, enc, lock.Path(), opts.Version)

	store := position.NewStore(cfg.Tail.PositionPath, position.WithDurableWrites(cfg.Tail.Fsync))
	engine, err := tail.Open(tail.Options{
		InputPath:      cfg.Tail.Input,
		PollInterval:   cfg.PollInterval(),
		ReadChunk:      cfg.Tail.ReadChunkBytes,
		ReopenOnRotate: cfg.Tail.ReopenOnRotate,
		Retry: tail.RetryPolicy{
			Initial:        cfg.InitialBackoff(),
			Max:            cfg.MaxBackoff(),
			MaxConsecutive: cfg.Retry.MaxConsecutiveFaults,
		},
	}, store, enc.NewDecoder(), logger)
	if err != nil {
		logging.ErrorWithContext(logger, "open input failed", "input_open_failed",
			logging.String(logging.FieldInput, cfg.Tail.Input),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the input file exists and is readable"),
		)
		return err
	}
	defer engine.Close()

	out, err := sink.Open(cfg.Tail.Output, sink.Options{Durable: cfg.Tail.Fsync})
	if err != nil {
		logging.ErrorWithContext(logger, "open output failed", "output_open_failed",
			logging.String(logging.FieldOutput, cfg.Tail.Output),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the output directory"),
		)
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn("close output", logging.Error(err))
		}
	}()

	if err := engine.Run(ctx, out); err != nil {
		logging.ErrorWithContext(logger, "tail session stopped", "session_failed",
			logging.Error(err),
			logging.Uint64(logging.FieldCursor, engine.Cursor()),
		)
		return err
	}
	logger.Info("shutting down",
		logging.String(logging.FieldEventType, "session_stopped"),
		logging.Uint64(logging.FieldCursor, engine.Cursor()),
	)
	return nil
}

func logSessionInfo(logger *slog.Logger, cfg *config.Config, enc *encoding.Encoding, lockPath, version string) {
	pid := os.Getpid()
	logger.Info("tail session starting",
		logging.String(logging.FieldEventType, "session_started"),
		logging.String("version", version),
		logging.Int("pid", pid),
		logging.String(logging.FieldInput, cfg.Tail.Input),
		logging.String(logging.FieldOutput, cfg.Tail.Output),
		logging.String("encoding", enc.Name()),
		logging.String("position_path", cfg.Tail.PositionPath),
		logging.String("lock_path", lockPath),
		logging.Duration("poll_interval", cfg.PollInterval()),
		logging.Bool("fsync", cfg.Tail.Fsync),
	)
	if cfg.Tail.Position != 0 {
		logger.Info("position hint ignored; resuming from the position record",
			logging.String(logging.FieldEventType, "position_hint"),
			logging.Uint64("position_hint", cfg.Tail.Position),
		)
	}
}
