package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yukimemi/mjhnkn/internal/instance"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitDuplicate = 3
)

func main() {
	cmd := newRootCommand(os.LookupEnv)
	if err := cmd.Execute(); err != nil {
		code := exitCode(err)
		if code != exitOK {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return exitOK
	case errors.Is(err, instance.ErrAlreadyRunning):
		return exitDuplicate
	default:
		return exitFailure
	}
}
