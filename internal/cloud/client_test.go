// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/cli"
	tfe "github.com/hashicorp/go-tfe"
	svchost "github.com/hashicorp/terraform-svchost"
	"github.com/hashicorp/terraform-svchost/disco"

	tfversion "github.com/hashicorp/tfcws/version"
)

const testWorkspacePayload = `{
  "data": {
    "id": "ws-D6HcCynfCDHNC5tn",
    "type": "workspaces",
    "attributes": {
      "name": "networking-prod",
      "execution-mode": "remote",
      "working-directory": "stacks/network",
      "trigger-patterns": ["stacks/network/**/*", "stacks/network/common/**/*"],
      "vcs-repo": {
        "branch": "main",
        "identifier": "example/infrastructure"
      }
    }
  }
}`

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

// testDisco returns a service discoverer that resolves the default
// Terraform Cloud hostname to the given test server.
func testDisco(s *httptest.Server) *disco.Disco {
	services := map[string]interface{}{
		tfeServiceID: fmt.Sprintf("%s/api/v2/", s.URL),
	}

	d := disco.New()
	d.ForceHostServices(svchost.Hostname(defaultHostname), services)
	return d
}

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	t.Setenv("TFE_TOKEN", "test-token")
	t.Setenv("TFE_ADDRESS", "")

	client, diags := New(&Options{
		Services: testDisco(server),
		CLI:      cli.NewMockUi(),
	})
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags.Err())
	}
	return client
}

func TestNew_defaultHostname(t *testing.T) {
	server := testServer(t, nil)
	client := testClient(t, server)

	if got, want := client.Hostname(), defaultHostname; got != want {
		t.Fatalf("wrong hostname %q; want %q", got, want)
	}
}

func TestNew_addressOverride(t *testing.T) {
	server := testServer(t, nil)
	t.Setenv("TFE_TOKEN", "test-token")
	t.Setenv("TFE_ADDRESS", "")

	client, diags := New(&Options{Address: server.URL})
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags.Err())
	}

	if got, want := client.Hostname(), strings.TrimPrefix(server.URL, "http://"); got != want {
		t.Fatalf("wrong hostname %q; want %q", got, want)
	}
}

func TestNew_addressFromEnv(t *testing.T) {
	server := testServer(t, nil)
	t.Setenv("TFE_TOKEN", "test-token")
	t.Setenv("TFE_ADDRESS", server.URL)

	_, diags := New(&Options{})
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags.Err())
	}
}

func TestNew_invalidAddress(t *testing.T) {
	t.Setenv("TFE_ADDRESS", "")

	_, diags := New(&Options{Address: "not a valid address"})
	if !diags.HasErrors() {
		t.Fatal("expected error diagnostics, got none")
	}
	if got, want := diags.Err().Error(), "Invalid Terraform Cloud address"; !strings.Contains(got, want) {
		t.Fatalf("wrong diagnostics %q; want %q", got, want)
	}
}

func TestNew_missingToken(t *testing.T) {
	server := testServer(t, nil)
	t.Setenv("TFE_TOKEN", "")
	t.Setenv("TFE_ADDRESS", "")

	_, diags := New(&Options{Services: testDisco(server)})
	if !diags.HasErrors() {
		t.Fatal("expected error diagnostics, got none")
	}

	got := diags.Err().Error()
	if want := "Required token could not be found"; !strings.Contains(got, want) {
		t.Fatalf("wrong diagnostics %q; want %q", got, want)
	}
	if want := "terraform login"; !strings.Contains(got, want) {
		t.Fatalf("diagnostics %q do not mention %q", got, want)
	}
}

func TestClient_readWorkspace(t *testing.T) {
	var gotMethod, gotVersionHeader string
	server := testServer(t, map[string]http.HandlerFunc{
		"/api/v2/organizations/example-org/workspaces/networking-prod": func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotVersionHeader = r.Header.Get(tfversion.Header)
			w.Header().Set("Content-Type", "application/vnd.api+json")
			w.Write([]byte(testWorkspacePayload))
		},
	})
	client := testClient(t, server)

	ws, err := client.ReadWorkspace(context.Background(), "example-org", "networking-prod")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if gotMethod != "GET" {
		t.Errorf("wrong method %q; want GET", gotMethod)
	}
	if gotVersionHeader != tfversion.Version {
		t.Errorf("wrong version header %q; want %q", gotVersionHeader, tfversion.Version)
	}
	if ws.Name != "networking-prod" {
		t.Errorf("wrong workspace name %q; want %q", ws.Name, "networking-prod")
	}
	if ws.ExecutionMode != "remote" {
		t.Errorf("wrong execution mode %q; want %q", ws.ExecutionMode, "remote")
	}
	if ws.VCSRepo == nil || ws.VCSRepo.Branch != "main" {
		t.Errorf("wrong VCS repo %#v; want branch %q", ws.VCSRepo, "main")
	}
}

func TestClient_readWorkspace_notFound(t *testing.T) {
	server := testServer(t, map[string]http.HandlerFunc{
		"/api/v2/organizations/example-org/workspaces/ghost": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/vnd.api+json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"status":"404","title":"not found"}]}`))
		},
	})
	client := testClient(t, server)

	_, err := client.ReadWorkspace(context.Background(), "example-org", "ghost")
	if !errors.Is(err, tfe.ErrResourceNotFound) {
		t.Fatalf("wrong error %v; want %v", err, tfe.ErrResourceNotFound)
	}
}

func TestClient_updateSettings(t *testing.T) {
	cases := map[string]struct {
		patch SettingsPatch
		want  map[string]interface{}
	}{
		"execution mode": {
			patch: SettingsPatch{ExecutionMode: tfe.String("local")},
			want:  map[string]interface{}{"execution-mode": "local"},
		},
		"branch": {
			patch: SettingsPatch{Branch: tfe.String("release")},
			want: map[string]interface{}{
				"vcs-repo": map[string]interface{}{"branch": "release"},
			},
		},
		"working directory": {
			patch: SettingsPatch{WorkingDirectory: tfe.String("stacks/network")},
			want:  map[string]interface{}{"working-directory": "stacks/network"},
		},
		"trigger patterns": {
			patch: SettingsPatch{TriggerPatterns: []string{"stacks/network/**/*", "stacks/network/common/**/*"}},
			want: map[string]interface{}{
				"trigger-patterns": []interface{}{"stacks/network/**/*", "stacks/network/common/**/*"},
			},
		},
		"all settings": {
			patch: SettingsPatch{
				ExecutionMode:    tfe.String("remote"),
				Branch:           tfe.String("main"),
				WorkingDirectory: tfe.String("stacks/network"),
				TriggerPatterns:  []string{"stacks/network/**/*"},
			},
			want: map[string]interface{}{
				"execution-mode":    "remote",
				"working-directory": "stacks/network",
				"trigger-patterns":  []interface{}{"stacks/network/**/*"},
				"vcs-repo":          map[string]interface{}{"branch": "main"},
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var got struct {
				Data struct {
					Type       string                 `json:"type"`
					Attributes map[string]interface{} `json:"attributes"`
				} `json:"data"`
			}
			server := testServer(t, map[string]http.HandlerFunc{
				"/api/v2/organizations/example-org/workspaces/networking-prod": func(w http.ResponseWriter, r *http.Request) {
					if r.Method != "PATCH" {
						t.Errorf("wrong method %q; want PATCH", r.Method)
					}
					if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
						t.Errorf("failed to decode request body: %s", err)
					}
					w.Header().Set("Content-Type", "application/vnd.api+json")
					w.Write([]byte(testWorkspacePayload))
				},
			})
			client := testClient(t, server)

			_, err := client.UpdateSettings(context.Background(), "example-org", "networking-prod", tc.patch)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if got.Data.Type != "workspaces" {
				t.Errorf("wrong payload type %q; want %q", got.Data.Type, "workspaces")
			}
			if diff := cmp.Diff(tc.want, got.Data.Attributes); diff != "" {
				t.Errorf("wrong request attributes:\n%s", diff)
			}
		})
	}
}

func TestClient_updateSettings_error(t *testing.T) {
	server := testServer(t, map[string]http.HandlerFunc{
		"/api/v2/organizations/example-org/workspaces/networking-prod": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/vnd.api+json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"errors":[{"status":"422","title":"invalid attribute","detail":"Trigger patterns are not supported for this workspace"}]}`))
		},
	})
	client := testClient(t, server)

	_, err := client.UpdateSettings(context.Background(), "example-org", "networking-prod", SettingsPatch{
		TriggerPatterns: []string{"stacks/network/**/*"},
	})
	if err == nil {
		t.Fatal("expected error, got none")
	}
	if got, want := err.Error(), "invalid attribute Trigger patterns are not supported for this workspace"; got != want {
		t.Fatalf("wrong error %q; want %q", got, want)
	}
}

func TestClient_retryLogHook(t *testing.T) {
	ui := cli.NewMockUi()
	client := &Client{CLI: ui, lastRetry: time.Now()}

	client.retryLogHook(0, nil)
	if out := ui.OutputWriter.String(); out != "" {
		t.Fatalf("unexpected output on the initial attempt: %q", out)
	}

	client.retryLogHook(1, nil)
	if out := ui.OutputWriter.String(); !strings.Contains(out, "There was an error connecting to Terraform Cloud") {
		t.Fatalf("wrong output on the first retry: %q", out)
	}

	client.retryLogHook(2, nil)
	if out := ui.OutputWriter.String(); !strings.Contains(out, "Still trying to restore the connection") {
		t.Fatalf("wrong output on a repeated retry: %q", out)
	}

	// Rate limited requests are retried silently.
	ui = cli.NewMockUi()
	client = &Client{CLI: ui}
	client.retryLogHook(1, &http.Response{StatusCode: 429})
	if out := ui.OutputWriter.String(); out != "" {
		t.Fatalf("unexpected output for a rate limited request: %q", out)
	}
}

func TestGeneralError(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := GeneralError("Failed to read workspace example-org/ghost", tfe.ErrResourceNotFound)
		if err == nil {
			t.Fatal("expected error, got none")
		}
		for _, want := range []string{
			"Failed to read workspace example-org/ghost",
			"404 Not Found",
			"permissions of the provided token",
		} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not contain %q", err, want)
			}
		}
	})

	t.Run("canceled", func(t *testing.T) {
		if err := GeneralError("Failed to read workspace", context.Canceled); err != context.Canceled {
			t.Fatalf("wrong error %v; want %v", err, context.Canceled)
		}
	})

	t.Run("generic", func(t *testing.T) {
		err := GeneralError("Failed to read workspace", errors.New("429 Too Many Requests"))
		if err == nil {
			t.Fatal("expected error, got none")
		}
		for _, want := range []string{
			"429 Too Many Requests",
			"Terraform Cloud returned an unexpected error",
		} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not contain %q", err, want)
			}
		}
	})
}
