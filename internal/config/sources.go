package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Flag names. The matching environment variable is the upper-snake form
// (e.g. position-path -> POSITION_PATH).
const (
	FlagConfig       = "config"
	FlagInput        = "input"
	FlagOutput       = "output"
	FlagEncoding     = "encoding"
	FlagPosition     = "position"
	FlagPositionPath = "position-path"
	FlagPollInterval = "poll-interval"
	FlagLockDir      = "lock-dir"
	FlagLogLevel     = "log-level"
	FlagLogFormat    = "log-format"
	FlagLogFile      = "log-file"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvName returns the environment variable consulted for a flag.
func EnvName(flag string) string {
	return strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// RegisterFlags adds the configuration flags to fs. Flags left unset on the
// command line do not override lower layers.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", "", "TOML configuration file [env CONFIG]")
	fs.StringP(FlagInput, "i", "", "file to tail [env INPUT]")
	fs.StringP(FlagOutput, "o", "", "file to append decoded text to [env OUTPUT]")
	fs.StringP(FlagEncoding, "e", "", "source encoding label, e.g. shift_jis or latin1 [env ENCODING]")
	fs.Uint64P(FlagPosition, "p", 0, "informational starting offset; resumption uses the position record [env POSITION]")
	fs.String(FlagPositionPath, "", "position record path (default ./positions/<input>) [env POSITION_PATH]")
	fs.Duration(FlagPollInterval, 0, "sleep between polls when idle (default 1s) [env POLL_INTERVAL]")
	fs.String(FlagLockDir, "", "directory for instance lock files (default system temp) [env LOCK_DIR]")
	fs.String(FlagLogLevel, "", "off, error, warn, info, debug, or trace (default info) [env LOG_LEVEL]")
	fs.String(FlagLogFormat, "", "console, json, or auto (default console) [env LOG_FORMAT]")
	fs.String(FlagLogFile, "", "additional log file [env LOG_FILE]")
}

// ConfigPath returns the config file named by the flag or, failing that,
// the CONFIG environment variable.
func ConfigPath(fs *pflag.FlagSet, lookup LookupFunc) string {
	if fs != nil && fs.Changed(FlagConfig) {
		value, _ := fs.GetString(FlagConfig)
		return value
	}
	if value, ok := lookupNonEmpty(lookup, EnvName(FlagConfig)); ok {
		return value
	}
	return ""
}

// ApplyEnv overlays values found through lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	strs := map[string]*string{
		FlagInput:        &c.Tail.Input,
		FlagOutput:       &c.Tail.Output,
		FlagEncoding:     &c.Tail.Encoding,
		FlagPositionPath: &c.Tail.PositionPath,
		FlagLockDir:      &c.Instance.LockDir,
		FlagLogLevel:     &c.Logging.Level,
		FlagLogFormat:    &c.Logging.Format,
		FlagLogFile:      &c.Logging.File,
	}
	for flag, target := range strs {
		if value, ok := lookupNonEmpty(lookup, EnvName(flag)); ok {
			*target = value
		}
	}

	if value, ok := lookupNonEmpty(lookup, EnvName(FlagPosition)); ok {
		position, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a non-negative integer", ErrInvalid, EnvName(FlagPosition), value)
		}
		c.Tail.Position = position
	}
	if value, ok := lookupNonEmpty(lookup, EnvName(FlagPollInterval)); ok {
		interval, err := parseInterval(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvName(FlagPollInterval), value, err)
		}
		c.Tail.PollIntervalMS = interval
	}
	return nil
}

// ApplyFlags overlays flags that were explicitly set on fs.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	strs := map[string]*string{
		FlagInput:        &c.Tail.Input,
		FlagOutput:       &c.Tail.Output,
		FlagEncoding:     &c.Tail.Encoding,
		FlagPositionPath: &c.Tail.PositionPath,
		FlagLockDir:      &c.Instance.LockDir,
		FlagLogLevel:     &c.Logging.Level,
		FlagLogFormat:    &c.Logging.Format,
		FlagLogFile:      &c.Logging.File,
	}
	for flag, target := range strs {
		if !fs.Changed(flag) {
			continue
		}
		value, err := fs.GetString(flag)
		if err != nil {
			return fmt.Errorf("read --%s: %w", flag, err)
		}
		*target = value
	}

	if fs.Changed(FlagPosition) {
		position, err := fs.GetUint64(FlagPosition)
		if err != nil {
			return fmt.Errorf("read --%s: %w", FlagPosition, err)
		}
		c.Tail.Position = position
	}
	if fs.Changed(FlagPollInterval) {
		interval, err := fs.GetDuration(FlagPollInterval)
		if err != nil {
			return fmt.Errorf("read --%s: %w", FlagPollInterval, err)
		}
		c.Tail.PollIntervalMS = int(interval / time.Millisecond)
	}
	return nil
}

// Resolve builds a finalized Config from every layer.
func Resolve(fs *pflag.FlagSet, lookup LookupFunc, workDir string) (*Config, error) {
	cfg, err := Load(ConfigPath(fs, lookup))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(workDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseInterval accepts Go durations ("250ms", "2s") or bare milliseconds.
func parseInterval(value string) (int, error) {
	if ms, err := strconv.Atoi(value); err == nil {
		return ms, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	return int(d / time.Millisecond), nil
}

func lookupNonEmpty(lookup LookupFunc, key string) (string, bool) {
	if lookup == nil {
		return "", false
	}
	value, ok := lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
