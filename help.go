// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/hashicorp/cli"
)

// helpFunc is a cli.HelpFunc that is used to output the help for tfcws.
func helpFunc(commands map[string]cli.CommandFactory) string {
	// Determine the maximum key length for alignment.
	maxKeyLen := 0
	for key := range commands {
		if len(key) > maxKeyLen {
			maxKeyLen = len(key)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("Usage: tfcws [--version] [--help] <command> [args]\n\n")
	buf.WriteString(
		"The available commands for execution are listed below.\n" +
			"Invocations that begin directly with an option, such as\n" +
			"\"tfcws -local\", run the update command.\n\n")
	buf.WriteString("Available commands:\n")
	buf.WriteString(listCommands(commands, maxKeyLen))
	return buf.String()
}

// listCommands just lists the commands in the map with the
// given maximum key length.
func listCommands(commands map[string]cli.CommandFactory, maxKeyLen int) string {
	var buf bytes.Buffer

	// Get the list of keys so we can sort them, and also get the maximum
	// key length so they can be aligned properly.
	keys := make([]string, 0, len(commands))
	for key := range commands {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		commandFunc, ok := commands[key]
		if !ok {
			// This should never happen since we JUST built the list of
			// keys.
			panic("command not found: " + key)
		}

		command, err := commandFunc()
		if err != nil {
			log.Printf("[ERR] cli: Command '%s' failed to load: %s", key, err)
			continue
		}

		key = fmt.Sprintf("%s%s", key, strings.Repeat(" ", maxKeyLen-len(key)))
		buf.WriteString(fmt.Sprintf("    %s    %s\n", key, command.Synopsis()))
	}

	return buf.String()
}
