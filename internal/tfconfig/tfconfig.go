// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package tfconfig locates the Terraform Cloud workspace binding inside a
// local Terraform configuration file.
//
// A configuration that uses Terraform Cloud names an organization and a
// workspace, either in a cloud block or in a remote backend block. The
// locators in this package extract those two names so that other packages
// can address the corresponding workspace through the Terraform Cloud API.
package tfconfig

import (
	"github.com/hashicorp/tfcws/internal/tfdiags"
)

// WorkspaceRef identifies a single workspace within a Terraform Cloud
// organization. It is resolved once per run, before any API call is made,
// and is not modified afterwards.
type WorkspaceRef struct {
	Organization string
	Workspace    string
}

// Valid returns true only if both the organization and the workspace name
// were found. A ref that is not valid must never be used to address the API.
func (r WorkspaceRef) Valid() bool {
	return r.Organization != "" && r.Workspace != ""
}

func (r WorkspaceRef) String() string {
	return r.Organization + "/" + r.Workspace
}

// A Locator knows how to extract a WorkspaceRef from a configuration file.
//
// The returned diagnostics describe anything that prevented both names from
// being found: a missing file, an unreadable file, or content that does not
// declare the expected values. Callers must check the diagnostics for errors
// before using the ref; a ref returned alongside error diagnostics may be
// partially filled in.
type Locator interface {
	FindWorkspace(path string) (WorkspaceRef, tfdiags.Diagnostics)
}
