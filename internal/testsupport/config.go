package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/yukimemi/mjhnkn/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a finalized config whose files all live under a fresh
// temp directory. The input path is set but the file is not created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Tail.Input = filepath.Join(base, "input", "app.log")
	cfgVal.Tail.Output = filepath.Join(base, "output", "app.log")
	cfgVal.Tail.Encoding = "utf-8"
	cfgVal.Tail.PollIntervalMS = 5
	cfgVal.Tail.Fsync = false
	cfgVal.Retry.InitialBackoffMS = 5
	cfgVal.Retry.MaxBackoffMS = 20
	cfgVal.Instance.LockDir = filepath.Join(base, "locks")
	cfgVal.Logging.Level = "off"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Finalize(base); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	return builder.cfg
}

// WithEncoding sets the source encoding label.
func WithEncoding(label string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tail.Encoding = label
	}
}

// WithInputContent creates the input file with data.
func WithInputContent(data []byte) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.Tail.Input, data)
	}
}

// WithMaxConsecutiveFaults overrides the retry budget.
func WithMaxConsecutiveFaults(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Retry.MaxConsecutiveFaults = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Instance.LockDir)
}

// WithLogFile enables info logging to a file under the test directory and
// returns its path through target.
func WithLogFile(target *string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "logs", "mjhnkn.log")
		b.cfg.Logging.File = path
		b.cfg.Logging.Level = "info"
		*target = path
	}
}
