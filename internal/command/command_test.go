// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/cli"

	"github.com/hashicorp/tfcws/internal/cloud"
)

// testCloudConfig binds the test directories to a fixed workspace.
const testCloudConfig = `
terraform {
  cloud {
    organization = "example-org"

    workspaces {
      name = "networking-prod"
    }
  }
}
`

// testWorkspacePayload is a minimal workspace response in the shape the
// API client expects.
const testWorkspacePayload = `{
  "data": {
    "id": "ws-D6HcCynfCDHNC5tn",
    "type": "workspaces",
    "attributes": {
      "name": "networking-prod",
      "execution-mode": "remote",
      "locked": false,
      "terraform-version": "1.9.2",
      "working-directory": "stacks/network",
      "trigger-patterns": ["stacks/network/**/*", "stacks/network/common/**/*"],
      "vcs-repo": {
        "branch": "main",
        "identifier": "example/infrastructure"
      }
    }
  }
}`

// testChdir changes the working directory and returns a function that
// restores the old one.
func testChdir(t *testing.T, new string) func() {
	t.Helper()

	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if err := os.Chdir(new); err != nil {
		t.Fatalf("err: %v", err)
	}

	return func() {
		// Re-run the function ignoring the defer result
		testChdir(t, old)
	}
}

// testConfigDir creates a temporary repository directory holding the
// given terraform.tf contents plus a .git marker, and chdirs into it.
func testConfigDir(t *testing.T, config string) func() {
	t.Helper()

	td := t.TempDir()
	if err := os.Mkdir(filepath.Join(td, ".git"), 0o755); err != nil {
		t.Fatalf("err: %v", err)
	}
	if err := os.WriteFile(filepath.Join(td, "terraform.tf"), []byte(config), 0o644); err != nil {
		t.Fatalf("err: %v", err)
	}
	return testChdir(t, td)
}

// testServer starts a fake Terraform Cloud API server that answers the
// ping endpoint plus whatever extra routes the test installs.
func testServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.Header().Set("TFP-API-Version", "2.5")
		w.WriteHeader(http.StatusNoContent)
	})
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// testCloudClient connects a cloud client to the given test server.
func testCloudClient(t *testing.T, server *httptest.Server) *cloud.Client {
	t.Helper()

	t.Setenv("TFE_TOKEN", "test-token")
	t.Setenv("TFE_ADDRESS", "")

	client, diags := cloud.New(&cloud.Options{Address: server.URL})
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags.Err())
	}
	return client
}

// testMeta returns a Meta wired to a mock UI and the given client. The
// client may be nil for tests that never reach the API.
func testMeta(client *cloud.Client) (Meta, *cli.MockUi) {
	ui := cli.NewMockUi()
	return Meta{
		Ui:         ui,
		testClient: client,
	}, ui
}
