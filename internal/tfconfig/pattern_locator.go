// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tfconfig

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/hashicorp/tfcws/internal/tfdiags"
)

// workspaceNamePattern matches the name attribute inside a workspaces
// block. The block body may span multiple lines, so the match runs until
// the closing brace.
var workspaceNamePattern = regexp.MustCompile(`workspaces\s*\{[^}]*?name\s*=\s*"([^"]*)"`)

// organizationPattern matches an organization attribute anywhere in the
// file. Both the cloud block and the remote backend block set it at the
// same nesting level, so no block context is needed to find it.
var organizationPattern = regexp.MustCompile(`organization\s*=\s*"([^"]*)"`)

// PatternLocator extracts the workspace binding by scanning the raw file
// text for the two attribute assignments, without parsing it as HCL.
//
// This tolerates files that are not (or not yet) valid configuration, as
// long as the assignments appear literally in the text. When a pattern
// matches more than once, the first match wins.
type PatternLocator struct {
	fs afero.Afero
}

var _ Locator = (*PatternLocator)(nil)

// NewPatternLocator creates and returns a new PatternLocator that reads
// files from the given filesystem. If a nil filesystem is passed then the
// system's "real" filesystem will be used, via afero.OsFs.
func NewPatternLocator(fs afero.Fs) *PatternLocator {
	if fs == nil {
		fs = afero.OsFs{}
	}
	return &PatternLocator{
		fs: afero.Afero{Fs: fs},
	}
}

func (l *PatternLocator) FindWorkspace(path string) (WorkspaceRef, tfdiags.Diagnostics) {
	var ref WorkspaceRef
	var diags tfdiags.Diagnostics

	src, err := l.fs.ReadFile(path)
	if err != nil {
		diags = diags.Append(readDiagnostic(path, err))
		return ref, diags
	}

	if m := workspaceNamePattern.FindSubmatch(src); m != nil {
		ref.Workspace = string(m[1])
	}
	if m := organizationPattern.FindSubmatch(src); m != nil {
		ref.Organization = string(m[1])
	}

	if !ref.Valid() {
		diags = diags.Append(notFoundDiagnostic(path, ref))
		return ref, diags
	}

	log.Printf("[TRACE] tfconfig: found workspace %q in organization %q in %s", ref.Workspace, ref.Organization, path)
	return ref, diags
}

func readDiagnostic(path string, err error) tfdiags.Diagnostic {
	if os.IsNotExist(err) {
		return tfdiags.Sourceless(
			tfdiags.Error,
			"Terraform configuration file not found",
			fmt.Sprintf(
				"There is no file named %q. The workspace name and organization are read from this file, so it must exist before workspace settings can be read or updated.",
				path,
			),
		)
	}
	return tfdiags.Sourceless(
		tfdiags.Error,
		"Failed to read Terraform configuration file",
		fmt.Sprintf("Error reading %q: %s.", path, err),
	)
}

func notFoundDiagnostic(path string, ref WorkspaceRef) tfdiags.Diagnostic {
	var missing []string
	if ref.Workspace == "" {
		missing = append(missing, "a workspace name")
	}
	if ref.Organization == "" {
		missing = append(missing, "an organization name")
	}
	return tfdiags.Sourceless(
		tfdiags.Error,
		"Workspace or organization name not found",
		fmt.Sprintf(
			"Failed to find %s in %s. Please check the file and try again.",
			strings.Join(missing, " or "), path,
		),
	)
}
