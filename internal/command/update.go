// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/cli"
	tfe "github.com/hashicorp/go-tfe"
	"github.com/posener/complete"

	"github.com/hashicorp/tfcws/internal/cloud"
	"github.com/hashicorp/tfcws/internal/tfdiags"
	"github.com/hashicorp/tfcws/internal/vcsroot"
)

// defaultBranch is the branch a workspace tracks after -reset-workspace.
const defaultBranch = "main"

// UpdateCommand is a Command implementation that patches the settings of
// the Terraform Cloud workspace the current directory is bound to.
type UpdateCommand struct {
	Meta
}

func (c *UpdateCommand) Run(args []string) int {
	args = c.Meta.process(args)

	var (
		local               bool
		remote              bool
		branch              string
		setWorkingDirectory bool
		setTriggerPaths     bool
		resetWorkspace      bool
		configPath          string
		strict              bool
	)

	cmdFlags := c.Meta.defaultFlagSet("update")
	cmdFlags.BoolVar(&local, "local", false, "switch to local execution")
	cmdFlags.BoolVar(&remote, "remote", false, "switch to remote execution")
	cmdFlags.StringVar(&branch, "change-branch", "", "track the given VCS branch")
	cmdFlags.BoolVar(&setWorkingDirectory, "set-working-directory", false, "set the working directory")
	cmdFlags.BoolVar(&setTriggerPaths, "set-trigger-paths", false, "set the trigger patterns")
	cmdFlags.BoolVar(&resetWorkspace, "reset-workspace", false, "restore the default settings")
	cmdFlags.StringVar(&configPath, "config", defaultConfigPath, "configuration file to read")
	cmdFlags.BoolVar(&strict, "strict", false, "require valid configuration syntax")
	cmdFlags.Usage = func() { c.Ui.Error(c.Help()) }
	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}
	if len(cmdFlags.Args()) > 0 {
		c.Ui.Error("The update command expects no positional arguments.\n")
		return cli.RunResultHelp
	}

	if local && remote {
		c.showDiagnostics(tfdiags.Sourceless(
			tfdiags.Error,
			"Conflicting execution mode arguments",
			"The -local and -remote arguments select opposite execution modes, so at most one of them can be set.",
		))
		return 1
	}
	if resetWorkspace && (local || remote || branch != "" || setWorkingDirectory || setTriggerPaths) {
		c.showDiagnostics(tfdiags.Sourceless(
			tfdiags.Error,
			"Conflicting workspace settings arguments",
			"The -reset-workspace argument restores the default settings, so it cannot be combined with arguments that select individual settings.",
		))
		return 1
	}

	// The workspace name and organization come from the Terraform
	// configuration in the current directory.
	ref, diags := c.locator(strict).FindWorkspace(configPath)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		return 1
	}
	c.showDiagnostics(diags)

	c.Ui.Output(c.Colorize().Color(fmt.Sprintf(
		strings.TrimSpace(workspaceFound), ref.Workspace, ref.Organization)))

	if resetWorkspace {
		remote = true
		branch = defaultBranch
		setWorkingDirectory = true
		setTriggerPaths = true
	}

	var patch cloud.SettingsPatch
	switch {
	case local:
		patch.ExecutionMode = tfe.String(cloud.ExecutionModeLocal)
	case remote:
		patch.ExecutionMode = tfe.String(cloud.ExecutionModeRemote)
	}
	if branch != "" {
		patch.Branch = tfe.String(branch)
	}
	if setWorkingDirectory || setTriggerPaths {
		resolver := vcsroot.NewResolver(nil)

		if setWorkingDirectory {
			dir, err := resolver.WorkingDirectory(".")
			if err != nil {
				c.showDiagnostics(tfdiags.Sourceless(
					tfdiags.Error,
					"Failed to resolve the working directory",
					fmt.Sprintf("Could not determine where the current directory sits in its repository: %s.", err),
				))
				return 1
			}
			patch.WorkingDirectory = tfe.String(dir)
		}
		if setTriggerPaths {
			patterns, err := resolver.TriggerPatterns(".")
			if err != nil {
				c.showDiagnostics(tfdiags.Sourceless(
					tfdiags.Error,
					"Failed to resolve the trigger paths",
					fmt.Sprintf("Could not determine where the current directory sits in its repository: %s.", err),
				))
				return 1
			}
			patch.TriggerPatterns = patterns
		}
	}

	// Refuse to send an update that carries no settings at all, since
	// the API would accept it without changing anything.
	if patch.Empty() {
		c.Ui.Output(strings.TrimSpace(noSettingsSelected))
		return 0
	}

	client, moreDiags := c.cloudClient()
	if moreDiags.HasErrors() {
		c.showDiagnostics(moreDiags)
		return 1
	}

	ctx, cancel := c.interruptibleContext()
	defer cancel()

	_, err := client.UpdateSettings(ctx, ref.Organization, ref.Workspace, patch)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.showDiagnostics(tfdiags.Sourceless(
				tfdiags.Error,
				"Workspace update canceled",
				"The update was interrupted before the workspace settings could be changed.",
			))
			return 1
		}
		c.Ui.Output(c.Colorize().Color(fmt.Sprintf(
			strings.TrimSpace(settingsUpdateFailed), err)))
		if errors.Is(err, tfe.ErrResourceNotFound) {
			c.showDiagnostics(cloud.GeneralError(fmt.Sprintf(
				"Failed to update workspace %s/%s", ref.Organization, ref.Workspace), err))
		}
		return 1
	}

	c.reportChanges(patch)

	return 0
}

// reportChanges prints one confirmation line per updated setting, in a
// fixed order so the output is stable regardless of argument order.
func (c *UpdateCommand) reportChanges(patch cloud.SettingsPatch) {
	if patch.WorkingDirectory != nil {
		c.Ui.Output(c.Colorize().Color(fmt.Sprintf(
			strings.TrimSpace(updatedWorkingDirectory), *patch.WorkingDirectory)))
	}
	if patch.ExecutionMode != nil {
		c.Ui.Output(c.Colorize().Color(fmt.Sprintf(
			strings.TrimSpace(updatedExecutionMode), *patch.ExecutionMode)))
	}
	if patch.TriggerPatterns != nil {
		c.Ui.Output(c.Colorize().Color(fmt.Sprintf(
			strings.TrimSpace(updatedTriggerPatterns), strings.Join(patch.TriggerPatterns, ", "))))
	}
	if patch.Branch != nil {
		c.Ui.Output(c.Colorize().Color(fmt.Sprintf(
			strings.TrimSpace(updatedBranch), *patch.Branch)))
	}
}

func (c *UpdateCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *UpdateCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{
		"-local":                 complete.PredictNothing,
		"-remote":                complete.PredictNothing,
		"-change-branch":         complete.PredictAnything,
		"-set-working-directory": complete.PredictNothing,
		"-set-trigger-paths":     complete.PredictNothing,
		"-reset-workspace":       complete.PredictNothing,
		"-config":                complete.PredictFiles("*.tf"),
		"-strict":                complete.PredictNothing,
		"-no-color":              complete.PredictNothing,
	}
}

func (c *UpdateCommand) Help() string {
	helpText := `
Usage: tfcws update [options]

  Update the settings of the Terraform Cloud workspace that the
  configuration in the current directory is bound to.

  The workspace name and organization are read from the cloud (or remote
  backend) configuration in ./terraform.tf. The settings to update are
  selected with the options below; everything else keeps its current
  value.

Options:

  -local                  Switch the workspace to local execution, so that
                          plans and applies happen on your own machine.

  -remote                 Switch the workspace to remote execution, so that
                          plans and applies happen in Terraform Cloud.

  -change-branch=name     Track the given VCS branch instead of the branch
                          the workspace currently follows.

  -set-working-directory  Set the workspace's working directory to the path
                          of the current directory relative to the
                          repository root.

  -set-trigger-paths      Trigger runs only for changes under the current
                          directory and its common/ subdirectory.

  -reset-workspace        Restore the default settings: remote execution,
                          the main branch, and the working directory and
                          trigger paths of the current directory. Cannot be
                          combined with the options above.

  -config=path            Read the workspace name and organization from the
                          given file instead of ./terraform.tf.

  -strict                 Fail if the configuration file is not valid HCL,
                          instead of scanning it textually.

  -no-color               Disable color codes in the command output.
`
	return strings.TrimSpace(helpText)
}

func (c *UpdateCommand) Synopsis() string {
	return "Update the settings of the bound workspace"
}

const workspaceFound = `
[reset][green]Workspace '%s' found in organization '%s'.[reset]
`

const settingsUpdateFailed = `
[reset][red]    ✖ Failed to update workspace settings: %s[reset]
`

const updatedWorkingDirectory = `
[reset][green]    ✓ Successfully updated working directory to: %s[reset]
`

const updatedExecutionMode = `
[reset][green]    ✓ Successfully updated workspace execution mode to: %s[reset]
`

const updatedTriggerPatterns = `
[reset][green]    ✓ Successfully updated workspace trigger patterns to: %s[reset]
`

const updatedBranch = `
[reset][green]    ✓ Successfully updated workspace branch to: %s[reset]
`

const noSettingsSelected = `
No settings were selected, so the workspace was left unchanged. See the
update command's help for the settings that can be updated.
`
