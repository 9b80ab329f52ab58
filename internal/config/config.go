package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Tail contains the tail session settings.
type Tail struct {
	Input          string `toml:"input"`
	Output         string `toml:"output"`
	Encoding       string `toml:"encoding"`
	Position       uint64 `toml:"position"`
	PositionPath   string `toml:"position_path"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
	ReadChunkBytes int    `toml:"read_chunk_bytes"`
	ReopenOnRotate bool   `toml:"reopen_on_rotate"`
	Fsync          bool   `toml:"fsync"`
}

// Retry bounds how long read failures are retried.
type Retry struct {
	InitialBackoffMS     int `toml:"initial_backoff_ms"`
	MaxBackoffMS         int `toml:"max_backoff_ms"`
	MaxConsecutiveFaults int `toml:"max_consecutive_faults"`
}

// Instance contains single-instance lock settings.
type Instance struct {
	LockDir string `toml:"lock_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values.
type Config struct {
	Tail     Tail     `toml:"tail"`
	Retry    Retry    `toml:"retry"`
	Instance Instance `toml:"instance"`
	Logging  Logging  `toml:"logging"`
}

// Load returns defaults overlaid with the TOML file at path. An empty path
// skips the file. The result is not yet normalized or validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return &cfg, nil
	}

	expanded, err := expandPath(path, "")
	if err != nil {
		return nil, err
	}
	file, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", expanded, err)
	}
	return &cfg, nil
}

// Finalize normalizes paths against workDir, derives the position path when
// unset, and validates the result.
func (c *Config) Finalize(workDir string) error {
	if err := c.normalize(workDir); err != nil {
		return err
	}
	return c.Validate()
}

// PollInterval returns the idle sleep between polls.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tail.PollIntervalMS) * time.Millisecond
}

// InitialBackoff returns the first retry delay after a read failure.
func (c *Config) InitialBackoff() time.Duration {
	return time.Duration(c.Retry.InitialBackoffMS) * time.Millisecond
}

// MaxBackoff returns the retry delay cap.
func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.Retry.MaxBackoffMS) * time.Millisecond
}

// InvocationArgs renders the resolved configuration as ordered key=value
// pairs. Equal configurations always render identically.
func (c *Config) InvocationArgs() []string {
	return []string{
		"input=" + c.Tail.Input,
		"output=" + c.Tail.Output,
		"encoding=" + strings.ToLower(strings.TrimSpace(c.Tail.Encoding)),
		"position=" + strconv.FormatUint(c.Tail.Position, 10),
		"position_path=" + c.Tail.PositionPath,
		"poll_interval_ms=" + strconv.Itoa(c.Tail.PollIntervalMS),
		"read_chunk_bytes=" + strconv.Itoa(c.Tail.ReadChunkBytes),
		"reopen_on_rotate=" + strconv.FormatBool(c.Tail.ReopenOnRotate),
		"fsync=" + strconv.FormatBool(c.Tail.Fsync),
		"initial_backoff_ms=" + strconv.Itoa(c.Retry.InitialBackoffMS),
		"max_backoff_ms=" + strconv.Itoa(c.Retry.MaxBackoffMS),
		"max_consecutive_faults=" + strconv.Itoa(c.Retry.MaxConsecutiveFaults),
		"lock_dir=" + c.Instance.LockDir,
		"log_level=" + c.Logging.Level,
		"log_format=" + c.Logging.Format,
		"log_file=" + c.Logging.File,
	}
}

// DerivePositionPath returns the default record location for input:
// <workDir>/positions/<input>, with drive colons turned into separators and
// the name anchored so it cannot climb out of the positions directory.
func DerivePositionPath(workDir, input string) string {
	sep := string(filepath.Separator)
	name := strings.ReplaceAll(input, ":", sep)
	name = filepath.Clean(sep + name)
	return filepath.Join(workDir, PositionsDir, name)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// expandPath resolves "~" and makes the path absolute relative to workDir
// (or the process working directory when workDir is empty).
func expandPath(pathValue, workDir string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	if filepath.IsAbs(cleaned) {
		return cleaned, nil
	}
	if workDir != "" {
		return filepath.Join(workDir, cleaned), nil
	}
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
