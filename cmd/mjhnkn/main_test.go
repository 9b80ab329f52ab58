package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/yukimemi/mjhnkn/internal/config"
	"github.com/yukimemi/mjhnkn/internal/instance"
	"github.com/yukimemi/mjhnkn/internal/position"
)

type cliTestEnv struct {
	dir    string
	input  string
	output string
	record string
	env    map[string]string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	dir := t.TempDir()
	e := &cliTestEnv{
		dir:    dir,
		input:  filepath.Join(dir, "in.log"),
		output: filepath.Join(dir, "out", "in.log"),
		record: filepath.Join(dir, "positions", "in.log"),
	}
	e.env = map[string]string{
		"INPUT":         e.input,
		"OUTPUT":        e.output,
		"ENCODING":      "utf-8",
		"POSITION_PATH": e.record,
		"LOCK_DIR":      filepath.Join(dir, "locks"),
		"LOG_LEVEL":     "off",
	}
	return e
}

func (e *cliTestEnv) lookup(key string) (string, bool) {
	value, ok := e.env[key]
	return value, ok
}

func runCLI(t *testing.T, lookup config.LookupFunc, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(lookup)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func noEnv(string) (string, bool) { return "", false }

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{context.Canceled, exitOK},
		{fmt.Errorf("lock: %w", instance.ErrAlreadyRunning), exitDuplicate},
		{config.ErrInvalid, exitFailure},
		{errors.New("boom"), exitFailure},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRootRequiresInput(t *testing.T) {
	_, err := runCLI(t, noEnv, "--output", filepath.Join(t.TempDir(), "out.log"), "--encoding", "utf-8")
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
	if exitCode(err) != exitFailure {
		t.Fatalf("exit code = %d, want %d", exitCode(err), exitFailure)
	}
}

func TestRootExitsWithDuplicateCode(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.input, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	args := []string{"--encoding", "Shift_JIS"}

	fs := pflag.NewFlagSet("mjhnkn", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	cfg, err := config.Resolve(fs, env.lookup, workDir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	holder := instance.New(cfg.Instance.LockDir, instance.Fingerprint(cfg.InvocationArgs()...))
	if err := holder.Acquire(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer holder.Release()

	_, err = runCLI(t, env.lookup, args...)
	if got := exitCode(err); got != exitDuplicate {
		t.Fatalf("exit code = %d (err=%v), want %d", got, err, exitDuplicate)
	}
	if _, statErr := os.Stat(env.output); !os.IsNotExist(statErr) {
		t.Fatalf("duplicate created output (err=%v)", statErr)
	}
}

func TestStatusReportsLag(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.input, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := position.NewStore(env.record).Write(3); err != nil {
		t.Fatalf("write position: %v", err)
	}

	out, err := runCLI(t, env.lookup, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, env.record)
	requireContains(t, out, "not created")
	requireContains(t, out, "[WARN] 2 bytes behind")
}

func TestStatusCaughtUp(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.input, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := position.NewStore(env.record).Write(5); err != nil {
		t.Fatalf("write position: %v", err)
	}

	out, err := runCLI(t, env.lookup, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "[OK] caught up")
}

func TestStatusFlagsMissingInputAndCorruptRecord(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.lookup, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "missing")
	requireContains(t, out, "0 (not yet written)")
	requireContains(t, out, "[ERROR] input unavailable")

	if err := os.WriteFile(env.input, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(env.record), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(env.record, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
	out, err = runCLI(t, env.lookup, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "[ERROR] position record corrupt")
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "mjhnkn.toml")

	out, err := runCLI(t, noEnv, "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := config.Load(target); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}

	if _, err := runCLI(t, noEnv, "config", "init", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, err := runCLI(t, noEnv, "config", "init", "--overwrite", target); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, noEnv, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "mjhnkn "+version)
}
