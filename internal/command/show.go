// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/cli"
	tfe "github.com/hashicorp/go-tfe"
	"github.com/posener/complete"

	"github.com/hashicorp/tfcws/internal/cloud"
	"github.com/hashicorp/tfcws/internal/tfdiags"
)

// ShowCommand is a Command implementation that reads the settings of the
// Terraform Cloud workspace the current directory is bound to and prints
// them without changing anything.
type ShowCommand struct {
	Meta
}

func (c *ShowCommand) Run(args []string) int {
	args = c.Meta.process(args)

	var (
		configPath string
		strict     bool
	)

	cmdFlags := c.Meta.defaultFlagSet("show")
	cmdFlags.StringVar(&configPath, "config", defaultConfigPath, "configuration file to read")
	cmdFlags.BoolVar(&strict, "strict", false, "require valid configuration syntax")
	cmdFlags.Usage = func() { c.Ui.Error(c.Help()) }
	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}
	if len(cmdFlags.Args()) > 0 {
		c.Ui.Error("The show command expects no positional arguments.\n")
		return cli.RunResultHelp
	}

	ref, diags := c.locator(strict).FindWorkspace(configPath)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		return 1
	}
	c.showDiagnostics(diags)

	client, moreDiags := c.cloudClient()
	if moreDiags.HasErrors() {
		c.showDiagnostics(moreDiags)
		return 1
	}

	ctx, cancel := c.interruptibleContext()
	defer cancel()

	ws, err := client.ReadWorkspace(ctx, ref.Organization, ref.Workspace)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.showDiagnostics(tfdiags.Sourceless(
				tfdiags.Error,
				"Workspace read canceled",
				"The read was interrupted before the workspace settings arrived.",
			))
			return 1
		}
		c.showDiagnostics(cloud.GeneralError(fmt.Sprintf(
			"Failed to read workspace %s/%s", ref.Organization, ref.Workspace), err))
		return 1
	}

	c.Ui.Output(formatWorkspace(ws, ref.Organization, client.Hostname()))

	return 0
}

// formatWorkspace renders the settings of a workspace in a stable,
// human-readable layout.
func formatWorkspace(ws *tfe.Workspace, organization, hostname string) string {
	const keyWidth = 18

	repository := "(not connected)"
	branch := "(none)"
	if ws.VCSRepo != nil {
		if ws.VCSRepo.Identifier != "" {
			repository = ws.VCSRepo.Identifier
		}
		if ws.VCSRepo.Branch != "" {
			branch = ws.VCSRepo.Branch
		} else {
			branch = "(default branch)"
		}
	}
	workingDirectory := ws.WorkingDirectory
	if workingDirectory == "" {
		workingDirectory = "(repository root)"
	}
	locked := "no"
	if ws.Locked {
		locked = "yes"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Workspace %s/%s on %s:\n\n", organization, ws.Name, hostname)
	fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "ID", ws.ID)
	fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "Execution mode", ws.ExecutionMode)
	fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "Locked", locked)
	fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "Terraform version", ws.TerraformVersion)
	fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "VCS repository", repository)
	fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "VCS branch", branch)
	fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "Working directory", workingDirectory)

	if len(ws.TriggerPatterns) == 0 {
		fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "Trigger patterns", "(none)")
	} else {
		fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "Trigger patterns", ws.TriggerPatterns[0])
		for _, pattern := range ws.TriggerPatterns[1:] {
			fmt.Fprintf(&buf, "  %-*s %s\n", keyWidth, "", pattern)
		}
	}

	return strings.TrimRight(buf.String(), "\n")
}

func (c *ShowCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *ShowCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-config":   complete.PredictFiles("*.tf"),
		"-strict":   complete.PredictNothing,
		"-no-color": complete.PredictNothing,
	}
}

func (c *ShowCommand) Help() string {
	helpText := `
Usage: tfcws show [options]

  Read the settings of the Terraform Cloud workspace that the
  configuration in the current directory is bound to, and print them.
  Nothing is changed.

  The workspace name and organization are read from the cloud (or remote
  backend) configuration in ./terraform.tf.

Options:

  -config=path  Read the workspace name and organization from the given
                file instead of ./terraform.tf.

  -strict       Fail if the configuration file is not valid HCL, instead
                of scanning it textually.

  -no-color     Disable color codes in the command output.
`
	return strings.TrimSpace(helpText)
}

func (c *ShowCommand) Synopsis() string {
	return "Show the current settings of the bound workspace"
}
