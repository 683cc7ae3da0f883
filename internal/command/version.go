// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"

	"github.com/posener/complete"
)

// VersionCommand is a Command implementation that prints the version.
type VersionCommand struct {
	Meta

	Version           string
	VersionPrerelease string
}

func (c *VersionCommand) Run(args []string) int {
	args = c.Meta.process(args)

	cmdFlags := c.Meta.defaultFlagSet("version")
	cmdFlags.Usage = func() { c.Ui.Error(c.Help()) }
	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}

	var versionString bytes.Buffer
	fmt.Fprintf(&versionString, "tfcws v%s", c.Version)
	if c.VersionPrerelease != "" {
		fmt.Fprintf(&versionString, "-%s", c.VersionPrerelease)
	}

	c.Ui.Output(versionString.String())
	c.Ui.Output(fmt.Sprintf("on %s_%s", runtime.GOOS, runtime.GOARCH))

	return 0
}

func (c *VersionCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *VersionCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{}
}

func (c *VersionCommand) Help() string {
	helpText := `
Usage: tfcws version

  Displays the version of tfcws and the platform it is running on.
`
	return strings.TrimSpace(helpText)
}

func (c *VersionCommand) Synopsis() string {
	return "Show the current tfcws version"
}
