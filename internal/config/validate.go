package config

import (
	"fmt"
	"path/filepath"
)

var (
	validLogLevels  = map[string]struct{}{"off": {}, "error": {}, "warn": {}, "info": {}, "debug": {}, "trace": {}}
	validLogFormats = map[string]struct{}{"console": {}, "json": {}, "auto": {}}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTail(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTail() error {
	if c.Tail.Input == "" {
		return fmt.Errorf("%w: input is required (--input or INPUT)", ErrInvalid)
	}
	if c.Tail.Output == "" {
		return fmt.Errorf("%w: output is required (--output or OUTPUT)", ErrInvalid)
	}
	if c.Tail.Encoding == "" {
		return fmt.Errorf("%w: encoding is required (--encoding or ENCODING)", ErrInvalid)
	}
	if filepath.Clean(c.Tail.Input) == filepath.Clean(c.Tail.Output) {
		return fmt.Errorf("%w: output must differ from input", ErrInvalid)
	}
	if c.Tail.PositionPath == c.Tail.Input || c.Tail.PositionPath == c.Tail.Output {
		return fmt.Errorf("%w: position_path must differ from input and output", ErrInvalid)
	}
	if c.Tail.PollIntervalMS <= 0 {
		return fmt.Errorf("%w: tail.poll_interval_ms must be positive", ErrInvalid)
	}
	if c.Tail.ReadChunkBytes <= 0 {
		return fmt.Errorf("%w: tail.read_chunk_bytes must be positive", ErrInvalid)
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.InitialBackoffMS <= 0 {
		return fmt.Errorf("%w: retry.initial_backoff_ms must be positive", ErrInvalid)
	}
	if c.Retry.MaxBackoffMS < c.Retry.InitialBackoffMS {
		return fmt.Errorf("%w: retry.max_backoff_ms must be >= retry.initial_backoff_ms", ErrInvalid)
	}
	if c.Retry.MaxConsecutiveFaults < 0 {
		return fmt.Errorf("%w: retry.max_consecutive_faults must be >= 0", ErrInvalid)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("%w: log level %q (want off, error, warn, info, debug, or trace)", ErrInvalid, c.Logging.Level)
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("%w: log format %q (want console, json, or auto)", ErrInvalid, c.Logging.Format)
	}
	return nil
}
