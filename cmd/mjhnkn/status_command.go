package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/yukimemi/mjhnkn/internal/config"
	"github.com/yukimemi/mjhnkn/internal/instance"
	"github.com/yukimemi/mjhnkn/internal/position"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

type statusReport struct {
	input        string
	inputSize    int64
	inputErr     error
	recordPath   string
	recordOffset uint64
	recordFound  bool
	recordErr    error
	output       string
	outputSize   int64
	outputFound  bool
	fingerprint  string
	lockPath     string
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show transcoding progress for the configured input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderStatus(out, collectStatus(cfg), shouldColorize(out))
			return nil
		},
	}
}

func collectStatus(cfg *config.Config) statusReport {
	fingerprint := instance.Fingerprint(cfg.InvocationArgs()...)
	report := statusReport{
		input:       cfg.Tail.Input,
		recordPath:  cfg.Tail.PositionPath,
		output:      cfg.Tail.Output,
		fingerprint: fingerprint,
		lockPath:    instance.New(cfg.Instance.LockDir, fingerprint).Path(),
	}

	if info, err := os.Stat(cfg.Tail.Input); err != nil {
		report.inputErr = err
	} else {
		report.inputSize = info.Size()
	}

	report.recordOffset, report.recordFound, report.recordErr = position.NewStore(cfg.Tail.PositionPath).Load()

	if info, err := os.Stat(cfg.Tail.Output); err == nil {
		report.outputFound = true
		report.outputSize = info.Size()
	}
	return report
}

// lag is the number of input bytes not yet transcoded. A record past the end
// of the input means the file was truncated and the next cycle restarts at 0.
func (r statusReport) lag() (int64, statusKind, string) {
	switch {
	case r.inputErr != nil:
		return 0, statusError, "input unavailable"
	case r.recordErr != nil:
		return 0, statusError, "position record corrupt"
	}
	offset := int64(r.recordOffset)
	if r.recordOffset > uint64(r.inputSize) {
		return r.inputSize, statusWarn, "input truncated; will restart from 0"
	}
	behind := r.inputSize - offset
	if behind == 0 {
		return 0, statusOK, "caught up"
	}
	return behind, statusWarn, fmt.Sprintf("%d bytes behind", behind)
}

func renderStatus(w io.Writer, r statusReport, colorize bool) {
	inputSize := strconv.FormatInt(r.inputSize, 10)
	if r.inputErr != nil {
		inputSize = "missing"
		if !errors.Is(r.inputErr, os.ErrNotExist) {
			inputSize = r.inputErr.Error()
		}
	}

	recordValue := strconv.FormatUint(r.recordOffset, 10)
	switch {
	case r.recordErr != nil:
		recordValue = "corrupt"
	case !r.recordFound:
		recordValue = "0 (not yet written)"
	}

	outputSize := "not created"
	if r.outputFound {
		outputSize = strconv.FormatInt(r.outputSize, 10)
	}

	lag, kind, summary := r.lag()
	rows := [][]string{
		{"Input", r.input, inputSize},
		{"Position", r.recordPath, recordValue},
		{"Lag", "", strconv.FormatInt(lag, 10)},
		{"Output", r.output, outputSize},
		{"Lock", r.lockPath, r.fingerprint[:12]},
	}
	fmt.Fprintln(w, renderTable([]string{"Item", "Path", "Value"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	fmt.Fprintln(w, statusLine(kind, summary, colorize))
}

func statusLine(kind statusKind, message string, colorize bool) string {
	var label, color string
	switch kind {
	case statusOK:
		label, color = "OK", ansiGreen
	case statusWarn:
		label, color = "WARN", ansiYellow
	default:
		label, color = "ERROR", ansiRed
	}
	line := fmt.Sprintf("[%s] %s", label, message)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
