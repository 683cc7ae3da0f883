// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cloud

import (
	tfe "github.com/hashicorp/go-tfe"
)

// Execution modes a workspace can be switched to.
const (
	ExecutionModeRemote = "remote"
	ExecutionModeLocal  = "local"
)

// SettingsPatch is a sparse set of workspace settings. A nil pointer or
// nil slice leaves the corresponding setting untouched, so the update
// request carries only the attributes that were explicitly set.
type SettingsPatch struct {
	// ExecutionMode switches the workspace between remote and local
	// execution.
	ExecutionMode *string

	// Branch is the VCS branch the workspace tracks. It can only be set
	// on workspaces that already have a VCS repository connected.
	Branch *string

	// WorkingDirectory is the repository-relative directory that runs of
	// the workspace execute in.
	WorkingDirectory *string

	// TriggerPatterns are the glob patterns that scope which repository
	// changes queue runs for the workspace.
	TriggerPatterns []string
}

// Empty reports whether the patch carries no settings at all. Empty
// patches must not be sent to the API, since an attribute-less update
// would still bump the workspace without changing it.
func (p SettingsPatch) Empty() bool {
	return p.ExecutionMode == nil &&
		p.Branch == nil &&
		p.WorkingDirectory == nil &&
		p.TriggerPatterns == nil
}

// UpdateOptions converts the patch into the options the API client
// serializes into a workspace update request. Unset settings stay out of
// the request body entirely.
func (p SettingsPatch) UpdateOptions() tfe.WorkspaceUpdateOptions {
	options := tfe.WorkspaceUpdateOptions{
		ExecutionMode:    p.ExecutionMode,
		WorkingDirectory: p.WorkingDirectory,
		TriggerPatterns:  p.TriggerPatterns,
	}
	if p.Branch != nil {
		options.VCSRepo = &tfe.VCSRepoOptions{
			Branch: p.Branch,
		}
	}
	return options
}
