// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/terraform-svchost/disco"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/mitchellh/colorstring"

	"github.com/hashicorp/tfcws/internal/cliconfig"
	"github.com/hashicorp/tfcws/internal/command/format"
	"github.com/hashicorp/tfcws/internal/httpclient"
	"github.com/hashicorp/tfcws/internal/logging"
	"github.com/hashicorp/tfcws/version"
)

const (
	// EnvCLI is the environment variable name to set additional CLI args.
	EnvCLI = "TF_CLI_ARGS"
)

// Ui is the cli.Ui used for communicating to the outside world.
var Ui cli.Ui

func init() {
	var stdout io.Writer = os.Stdout
	var stderr io.Writer = os.Stderr

	// The Windows console does not speak ANSI color codes, so the
	// writers have to translate them.
	if runtime.GOOS == "windows" {
		stdout = colorable.NewColorableStdout()
		stderr = colorable.NewColorableStderr()
	}

	Ui = &ui{&cli.BasicUi{
		Writer:      stdout,
		ErrorWriter: stderr,
		Reader:      os.Stdin,
	}}
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	defer logging.PanicHandler()

	log.Printf("[INFO] tfcws version: %s", version.String())
	log.Printf("[INFO] Go runtime version: %s", runtime.Version())
	log.Printf("[INFO] CLI args: %#v", os.Args)

	// Load the CLI configuration, for the hostname and any credentials.
	config, cliDiags := cliconfig.LoadConfig()
	if len(cliDiags) > 0 {
		Ui.Error("There are some problems with the CLI configuration:")
		for _, diag := range cliDiags {
			earlyColor := &colorstring.Colorize{
				Colors:  colorstring.DefaultColors,
				Disable: true, // Disable color to be conservative until we know better
				Reset:   true,
			}
			Ui.Error(format.Diagnostic(diag, earlyColor, 78))
		}
		if cliDiags.HasErrors() {
			Ui.Error("As a result of the above problems, tfcws may not behave as intended.\n\n")
			// We continue to run anyway, since the user may be trying
			// to fix the problems with this very command.
		}
	}

	// The credentials from the CLI configuration are carried by the
	// service discoverer, so that any command can authenticate against
	// any Terraform Enterprise host it ends up talking to.
	services := disco.NewWithCredentialsSource(config.CredentialsSource())
	services.SetUserAgent(httpclient.UserAgentString())

	// Color is enabled by default only when stdout looks like a
	// terminal; -no-color can still switch it off per command.
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	// In tests, Commands may already be set to provide mock commands
	if Commands == nil {
		initCommands(config, services, color)
	}

	binName := filepath.Base(os.Args[0])
	args := os.Args[1:]

	// We shortcut "--version" and "-v" to just show the version
	for _, arg := range args {
		if arg == "-v" || arg == "-version" || arg == "--version" {
			newArgs := make([]string, len(args)+1)
			newArgs[0] = "version"
			copy(newArgs[1:], args)
			args = newArgs
			break
		}
	}

	// The ancestor of this tool performed an update as its only
	// operation, so an invocation that starts directly with an option,
	// like "tfcws -local", still means "update".
	if len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-h", "-help", "--help":
			// leave help handling to the CLI itself
		default:
			newArgs := make([]string, len(args)+1)
			newArgs[0] = "update"
			copy(newArgs[1:], args)
			args = newArgs
		}
	}

	// Build the CLI so far, we do this so we can query the subcommand.
	cliRunner := &cli.CLI{
		Args:       args,
		Commands:   Commands,
		HelpFunc:   helpFunc,
		HelpWriter: os.Stdout,
	}

	// Prefix the args with any args from the EnvCLI
	args, err := mergeEnvArgs(EnvCLI, cliRunner.Subcommand(), args)
	if err != nil {
		Ui.Error(err.Error())
		return 1
	}

	// Prefix the args with any args from the EnvCLI targeting this command
	suffix := strings.Replace(strings.Replace(
		cliRunner.Subcommand(), "-", "_", -1), " ", "_", -1)
	args, err = mergeEnvArgs(
		fmt.Sprintf("%s_%s", EnvCLI, suffix), cliRunner.Subcommand(), args)
	if err != nil {
		Ui.Error(err.Error())
		return 1
	}

	// Rebuild the CLI with any modified args.
	log.Printf("[INFO] CLI command args: %#v", args)
	cliRunner = &cli.CLI{
		Name:       binName,
		Args:       args,
		Commands:   Commands,
		HelpFunc:   helpFunc,
		HelpWriter: os.Stdout,

		Autocomplete:          true,
		AutocompleteInstall:   "install-autocomplete",
		AutocompleteUninstall: "uninstall-autocomplete",
	}

	exitCode, err := cliRunner.Run()
	if err != nil {
		Ui.Error(fmt.Sprintf("Error executing CLI: %s", err.Error()))
		return 1
	}

	return exitCode
}

func mergeEnvArgs(envName string, cmd string, args []string) ([]string, error) {
	v := os.Getenv(envName)
	if v == "" {
		return args, nil
	}

	log.Printf("[INFO] %s value: %q", envName, v)
	extra, err := shellwords.Parse(v)
	if err != nil {
		return nil, fmt.Errorf(
			"Error parsing extra CLI args from %s: %s",
			envName, err)
	}

	// Find the command to look for in the args. If there is a space,
	// we need to find the last part.
	search := cmd
	if idx := strings.LastIndex(search, " "); idx >= 0 {
		search = cmd[idx+1:]
	}

	// Find the index to place the flags. We put them exactly
	// after the first non-flag arg.
	idx := -1
	for i, v := range args {
		if v == search {
			idx = i
			break
		}
	}

	// idx points to the exact arg that isn't a flag. We increment
	// by one so that all the copying below expects idx to be the
	// insertion point.
	idx++

	// Copy the args
	newArgs := make([]string, len(args)+len(extra))
	copy(newArgs, args[:idx])
	copy(newArgs[idx:], extra)
	copy(newArgs[len(extra)+idx:], args[idx:])
	return newArgs, nil
}

// ui wraps the primary output cli.Ui, and redirects Warn calls to Output
// calls. This ensures that warnings are sent to stdout, and are properly
// serialized with other stdout output.
type ui struct {
	cli.Ui
}

func (u *ui) Warn(msg string) {
	u.Ui.Output(msg)
}
