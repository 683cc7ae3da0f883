// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package vcsroot determines where a directory sits inside its version
// control repository.
//
// Workspace settings like the working directory and the VCS trigger
// patterns are expressed relative to the repository root, so before
// patching them we need to know how far below the root the current
// directory is.
package vcsroot

import (
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Resolver locates repository roots on a filesystem.
type Resolver struct {
	fs afero.Fs
}

// NewResolver creates and returns a new Resolver that inspects the given
// filesystem. If a nil filesystem is passed then the system's "real"
// filesystem will be used, via afero.OsFs.
func NewResolver(fs afero.Fs) *Resolver {
	if fs == nil {
		fs = afero.OsFs{}
	}
	return &Resolver{fs: fs}
}

// FindRoot walks from start toward the filesystem root and returns the
// first directory that contains a ".git" entry. The entry may be a
// directory or, in a linked worktree, a file.
//
// If no directory in the chain has such an entry then start itself is
// returned, so that callers can still derive repository-relative paths in
// trees that are not under version control. In that case the returned
// root is the same as the (absolute form of the) start directory.
func (r *Resolver) FindRoot(start string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	dir := start
	for {
		if _, err := r.fs.Stat(filepath.Join(dir, ".git")); err == nil {
			log.Printf("[TRACE] vcsroot: found repository root at %s", dir)
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			log.Printf("[DEBUG] vcsroot: no .git between %s and the filesystem root; treating the start directory as the root", start)
			return start, nil
		}
		dir = parent
	}
}

// WorkingDirectory returns the path of start relative to the repository
// root, in the forward-slash form the Terraform Cloud API expects. When
// start is itself the root the result is ".".
func (r *Resolver) WorkingDirectory(start string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	root, err := r.FindRoot(start)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, start)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// TriggerPatterns returns the VCS trigger patterns that scope runs of the
// bound workspace to the given directory: everything under the directory
// itself, plus everything under its common/ subdirectory.
func (r *Resolver) TriggerPatterns(start string) ([]string, error) {
	rel, err := r.WorkingDirectory(start)
	if err != nil {
		return nil, err
	}
	return []string{
		rel + "/**/*",
		rel + "/common/**/*",
	}, nil
}
