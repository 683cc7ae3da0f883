// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package command contains the CLI commands and the plumbing they share.
package command

import (
	"context"
	"flag"
	"io"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/terraform-svchost/disco"
	"github.com/mitchellh/colorstring"

	"github.com/hashicorp/tfcws/internal/cliconfig"
	"github.com/hashicorp/tfcws/internal/cloud"
	"github.com/hashicorp/tfcws/internal/command/format"
	"github.com/hashicorp/tfcws/internal/tfconfig"
	"github.com/hashicorp/tfcws/internal/tfdiags"
)

// defaultConfigPath is the configuration file the workspace name and
// organization are read from unless -config overrides it.
const defaultConfigPath = "terraform.tf"

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	// Ui is used for all output. process wraps it so that error and
	// warning messages are colored.
	Ui cli.Ui

	// Color is true unless the terminal does not support color, in
	// which case package main sets it to false. The -no-color argument
	// can still switch color off per command.
	Color bool

	// Services provides service discovery and credentials for the
	// Terraform Cloud hosts the commands talk to.
	Services *disco.Disco

	// Config is the CLI configuration, already loaded by package main.
	Config *cliconfig.Config

	// ShutdownCh is closed when the user interrupts the command, at
	// which point any in-flight API request is aborted.
	ShutdownCh <-chan struct{}

	// testClient is set by the tests to skip connecting a real client
	// from the CLI configuration.
	testClient *cloud.Client

	color bool
	oldUi cli.Ui
}

// Colorize returns the colorization structure for a command.
func (m *Meta) Colorize() *colorstring.Colorize {
	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !m.color,
		Reset:   true,
	}
}

// process will process the meta-parameters out of the arguments. This
// will potentially modify the args in-place. It will return the resulting
// slice, and update the Meta and Ui.
func (m *Meta) process(args []string) []string {
	// We do this so that we retain the ability to technically call
	// process multiple times, even if we have no plans to do so.
	if m.oldUi != nil {
		m.Ui = m.oldUi
	}

	// Set colorization
	m.color = m.Color
	i := 0 // output index
	for _, v := range args {
		if v == "-no-color" {
			m.color = false
			m.Color = false
		} else {
			// copy and increment index
			args[i] = v
			i++
		}
	}
	args = args[:i]

	// Set the UI
	m.oldUi = m.Ui
	m.Ui = &cli.ConcurrentUi{
		Ui: &ColorizeUi{
			Colorize:   m.Colorize(),
			ErrorColor: "[red]",
			WarnColor:  "[yellow]",
			Ui:         m.oldUi,
		},
	}

	return args
}

// defaultFlagSet creates a default flag set for commands.
func (m *Meta) defaultFlagSet(n string) *flag.FlagSet {
	f := flag.NewFlagSet(n, flag.ContinueOnError)
	f.SetOutput(io.Discard)

	// Set the default Usage to empty
	f.Usage = func() {}

	return f
}

// locator returns the configuration locator the command should read the
// workspace name and organization with. The default locator tolerates
// configuration files that are not entirely valid HCL; -strict switches
// to a full syntax parse.
func (m *Meta) locator(strict bool) tfconfig.Locator {
	if strict {
		return tfconfig.NewSyntaxLocator(nil)
	}
	return tfconfig.NewPatternLocator(nil)
}

// cloudClient connects a client for the Terraform Cloud host named in
// the CLI configuration. The tests push in a ready client instead.
func (m *Meta) cloudClient() (*cloud.Client, tfdiags.Diagnostics) {
	if m.testClient != nil {
		return m.testClient, nil
	}

	var hostname string
	if m.Config != nil {
		hostname = m.Config.Hostname
	}

	return cloud.New(&cloud.Options{
		Hostname: hostname,
		Services: m.Services,
		CLI:      m.Ui,
		CLIColor: m.Colorize(),
	})
}

// interruptibleContext returns a context that is canceled when the user
// interrupts the command via ShutdownCh. The returned cancel function
// must be called once the command's remote work is done, to release the
// goroutine watching for interrupts.
func (m *Meta) interruptibleContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	if m.ShutdownCh == nil {
		return ctx, cancel
	}

	go func() {
		select {
		case <-m.ShutdownCh:
			cancel()
		case <-ctx.Done():
			// command finished on its own
		}
	}()

	return ctx, cancel
}

// showDiagnostics displays error and warning messages in the UI.
//
// "Diagnostics" here means the Diagnostics type from the tfdiags package,
// though we also accept bare errors and slices of them for convenience.
func (m *Meta) showDiagnostics(vals ...interface{}) {
	var diags tfdiags.Diagnostics
	diags = diags.Append(vals...)
	diags.Sort()

	for _, diag := range diags {
		// TODO: Actually measure the terminal width and pass it here.
		// For now, we don't have easy access to the writer that
		// Ui.Error (etc) are writing to and thus can't interrogate
		// to see if it's a terminal and what size it is.
		msg := format.Diagnostic(diag, m.Colorize(), 78)

		switch diag.Severity() {
		case tfdiags.Error:
			m.Ui.Error(msg)
		case tfdiags.Warning:
			m.Ui.Warn(msg)
		default:
			m.Ui.Output(msg)
		}
	}
}
