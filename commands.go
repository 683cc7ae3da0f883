// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"
	"os/signal"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/terraform-svchost/disco"

	"github.com/hashicorp/tfcws/internal/cliconfig"
	"github.com/hashicorp/tfcws/internal/command"
	"github.com/hashicorp/tfcws/version"
)

// Commands is the mapping of all the available commands.
var Commands map[string]cli.CommandFactory

func initCommands(config *cliconfig.Config, services *disco.Disco, color bool) {
	meta := command.Meta{
		Ui:    Ui,
		Color: color,

		Services:   services,
		Config:     config,
		ShutdownCh: makeShutdownCh(),
	}

	Commands = map[string]cli.CommandFactory{
		"update": func() (cli.Command, error) {
			return &command.UpdateCommand{
				Meta: meta,
			}, nil
		},

		"show": func() (cli.Command, error) {
			return &command.ShowCommand{
				Meta: meta,
			}, nil
		},

		"version": func() (cli.Command, error) {
			return &command.VersionCommand{
				Meta:              meta,
				Version:           version.Version,
				VersionPrerelease: version.Prerelease,
			}, nil
		},
	}
}

// makeShutdownCh creates an interrupt listener and returns a channel.
// A message will be sent on the channel for every interrupt received.
func makeShutdownCh() <-chan struct{} {
	resultCh := make(chan struct{})

	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, ignoreSignals...)
	signal.Notify(signalCh, forwardSignals...)
	go func() {
		for {
			<-signalCh
			resultCh <- struct{}{}
		}
	}()

	return resultCh
}
