package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize(workDir string) error {
	if err := c.normalizeTail(workDir); err != nil {
		return err
	}
	if err := c.normalizeInstance(workDir); err != nil {
		return err
	}
	return c.normalizeLogging(workDir)
}

func (c *Config) normalizeTail(workDir string) error {
	var err error
	if c.Tail.Input, err = expandPath(c.Tail.Input, workDir); err != nil {
		return fmt.Errorf("tail.input: %w", err)
	}
	if c.Tail.Output, err = expandPath(c.Tail.Output, workDir); err != nil {
		return fmt.Errorf("tail.output: %w", err)
	}
	c.Tail.Encoding = strings.TrimSpace(c.Tail.Encoding)
	if strings.TrimSpace(c.Tail.PositionPath) == "" && c.Tail.Input != "" {
		c.Tail.PositionPath = DerivePositionPath(workDir, c.Tail.Input)
	}
	if c.Tail.PositionPath, err = expandPath(c.Tail.PositionPath, workDir); err != nil {
		return fmt.Errorf("tail.position_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeInstance(workDir string) error {
	var err error
	if c.Instance.LockDir, err = expandPath(c.Instance.LockDir, workDir); err != nil {
		return fmt.Errorf("instance.lock_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging(workDir string) error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	var err error
	if c.Logging.File, err = expandPath(c.Logging.File, workDir); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
