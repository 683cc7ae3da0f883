// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	meta, ui := testMeta(nil)
	c := &VersionCommand{
		Meta:    meta,
		Version: "0.1.0",
	}

	if code := c.Run(nil); code != 0 {
		t.Fatalf("unexpected exit code %d\nstderr:\n%s", code, ui.ErrorWriter.String())
	}

	if got := ui.OutputWriter.String(); !strings.Contains(got, "tfcws v0.1.0") {
		t.Errorf("output does not contain the version:\n%s", got)
	}
}

func TestVersion_prerelease(t *testing.T) {
	meta, ui := testMeta(nil)
	c := &VersionCommand{
		Meta:              meta,
		Version:           "0.1.0",
		VersionPrerelease: "dev",
	}

	if code := c.Run(nil); code != 0 {
		t.Fatalf("unexpected exit code %d\nstderr:\n%s", code, ui.ErrorWriter.String())
	}

	if got := ui.OutputWriter.String(); !strings.Contains(got, "tfcws v0.1.0-dev") {
		t.Errorf("output does not contain the prerelease version:\n%s", got)
	}
}
