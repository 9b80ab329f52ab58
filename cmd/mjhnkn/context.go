package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yukimemi/mjhnkn/internal/config"
)

type commandContext struct {
	lookup config.LookupFunc
	getwd  func() (string, error)
}

func newCommandContext(lookup config.LookupFunc) *commandContext {
	return &commandContext{lookup: lookup, getwd: os.Getwd}
}

// resolveConfig layers defaults, config file, environment and the command's
// flags, anchoring relative paths at the working directory.
func (c *commandContext) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	workDir, err := c.getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	return config.Resolve(cmd.Flags(), c.lookup, workDir)
}
