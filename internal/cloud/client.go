// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package cloud speaks to the Terraform Cloud (and Terraform Enterprise)
// API on behalf of the commands: it discovers the API service for the
// configured host, authenticates against it, and performs the workspace
// reads and updates the commands ask for.
package cloud

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/cli"
	tfe "github.com/hashicorp/go-tfe"
	svchost "github.com/hashicorp/terraform-svchost"
	"github.com/hashicorp/terraform-svchost/disco"
	"github.com/mitchellh/colorstring"

	"github.com/hashicorp/tfcws/internal/httpclient"
	"github.com/hashicorp/tfcws/internal/tfdiags"
	tfversion "github.com/hashicorp/tfcws/version"
)

const (
	defaultHostname = "app.terraform.io"
	tfeServiceID    = "tfe.v2"
)

// Client carries an authenticated connection to one Terraform Cloud or
// Terraform Enterprise host.
type Client struct {
	// CLI and CLIColor control the CLI output. If CLI is nil then no CLI
	// output will be done. If CLIColor is nil then no coloring will be done.
	CLI      cli.Ui
	CLIColor *colorstring.Colorize

	// services is used for service discovery and credentials lookup.
	services *disco.Disco

	// hostname of the Terraform Cloud or Terraform Enterprise host this
	// client is connected to.
	hostname string

	// tfe is the underlying API client.
	tfe *tfe.Client

	// lastRetry is set to the last time a request was retried.
	lastRetry time.Time
}

// Options are the arguments for connecting a new Client.
type Options struct {
	// Hostname of the Terraform Cloud or Terraform Enterprise host to
	// connect to. The empty string means the public app.terraform.io.
	Hostname string

	// Address, when non-empty, is a base URL that pins the API location
	// for the host instead of relying on network service discovery. The
	// TFE_ADDRESS environment variable sets this too.
	Address string

	// Services carries the service discovery and credentials sources,
	// usually built from the CLI configuration in package main.
	Services *disco.Disco

	// CLI and CLIColor control connection-related CLI output, such as
	// the notices printed while retrying requests. Both may be nil.
	CLI      cli.Ui
	CLIColor *colorstring.Colorize
}

// New discovers the API service of the configured host, resolves a token
// for it and returns a Client ready for workspace operations.
func New(opts *Options) (*Client, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics

	c := &Client{
		CLI:      opts.CLI,
		CLIColor: opts.CLIColor,
		services: opts.Services,
		hostname: opts.Hostname,
	}
	if c.hostname == "" {
		c.hostname = defaultHostname
	}
	if c.services == nil {
		c.services = disco.New()
	}

	address := opts.Address
	if address == "" {
		address = os.Getenv("TFE_ADDRESS")
	}
	if address != "" {
		diags = diags.Append(c.forceAddress(address))
		if diags.HasErrors() {
			return nil, diags
		}
	}

	// Discover the service URL to confirm that it provides the
	// Terraform Cloud/Enterprise API.
	service, err := c.discover()
	if err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			strings.ToUpper(err.Error()[:1])+err.Error()[1:],
			"", // no description is needed here, the error is clear
		))
		return nil, diags
	}

	// Retrieve the token for this host as configured in the credentials
	// section of the CLI configuration file or the environment.
	token, err := c.token()
	if err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			strings.ToUpper(err.Error()[:1])+err.Error()[1:],
			"", // no description is needed here, the error is clear
		))
		return nil, diags
	}

	// Return an error if we still don't have a token at this point.
	if token == "" {
		loginCommand := "terraform login"
		if c.hostname != defaultHostname {
			loginCommand = loginCommand + " " + c.hostname
		}
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Required token could not be found",
			fmt.Sprintf(
				"Run the following command to generate a token for %s:\n    %s",
				c.hostname,
				loginCommand,
			),
		))
		return nil, diags
	}

	cfg := &tfe.Config{
		Address:      service.String(),
		BasePath:     service.Path,
		Token:        token,
		Headers:      make(http.Header),
		HTTPClient:   httpclient.New(),
		RetryLogHook: c.retryLogHook,
	}

	// Set the version header to the current version.
	cfg.Headers.Set(tfversion.Header, tfversion.Version)

	c.tfe, err = tfe.NewClient(cfg)
	if err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Failed to create the Terraform Cloud client",
			fmt.Sprintf(
				`Encountered an unexpected error while creating the `+
					`Terraform Cloud client: %s.`, err,
			),
		))
		return nil, diags
	}

	// Enable retries for server errors now that the client is fully
	// configured.
	c.tfe.RetryServerErrors(true)

	return c, diags
}

// Hostname returns the hostname this client is connected to.
func (c *Client) Hostname() string {
	return c.hostname
}

// ReadWorkspace fetches the current state of the named workspace.
func (c *Client) ReadWorkspace(ctx context.Context, organization, workspace string) (*tfe.Workspace, error) {
	log.Printf("[TRACE] cloud: reading workspace %s/%s from %s", organization, workspace, c.hostname)
	return c.tfe.Workspaces.Read(ctx, organization, workspace)
}

// UpdateSettings patches the named workspace with the settings carried in
// the patch. Exactly one update request is made; settings the patch does
// not carry keep their current values.
func (c *Client) UpdateSettings(ctx context.Context, organization, workspace string, patch SettingsPatch) (*tfe.Workspace, error) {
	log.Printf("[TRACE] cloud: updating settings of workspace %s/%s on %s", organization, workspace, c.hostname)
	return c.tfe.Workspaces.Update(ctx, organization, workspace, patch.UpdateOptions())
}

// forceAddress pins the API service URL for the host instead of relying
// on network discovery. This is how the TFE_ADDRESS override and the
// tests reach hosts that do not serve a discovery document.
func (c *Client) forceAddress(address string) tfdiags.Diagnostics {
	var diags tfdiags.Diagnostics

	u, err := url.Parse(address)
	if err != nil || u.Host == "" || u.Scheme == "" {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid Terraform Cloud address",
			fmt.Sprintf("The configured address %q is not a valid URL.", address),
		))
		return diags
	}

	host, err := svchost.ForComparison(u.Host)
	if err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid Terraform Cloud address",
			fmt.Sprintf("The configured address %q does not have a valid hostname: %s.", address, err),
		))
		return diags
	}

	c.hostname = u.Host
	c.services.ForceHostServices(host, map[string]interface{}{
		tfeServiceID: strings.TrimSuffix(u.String(), "/") + "/api/v2/",
	})
	log.Printf("[DEBUG] cloud: using forced service address %s for %s", address, c.hostname)
	return diags
}

// discover the API service URL for the configured hostname.
func (c *Client) discover() (*url.URL, error) {
	hostname, err := svchost.ForComparison(c.hostname)
	if err != nil {
		return nil, err
	}

	host, err := c.services.Discover(hostname)
	if err != nil {
		return nil, err
	}

	service, err := host.ServiceURL(tfeServiceID)
	// Return the error, unless its a disco.ErrVersionNotSupported error.
	if _, ok := err.(*disco.ErrVersionNotSupported); !ok && err != nil {
		return nil, err
	}

	return service, err
}

// token returns the token for the configured hostname. The TFE_TOKEN
// environment variable takes priority, then whatever the credentials
// sources provide. If no token is configured anywhere, an empty string
// is returned instead.
func (c *Client) token() (string, error) {
	if token := os.Getenv("TFE_TOKEN"); token != "" {
		log.Printf("[TRACE] cloud: using token for %s from TFE_TOKEN", c.hostname)
		return token, nil
	}
	hostname, err := svchost.ForComparison(c.hostname)
	if err != nil {
		return "", err
	}
	creds, err := c.services.CredentialsForHost(hostname)
	if err != nil {
		log.Printf("[WARN] Failed to get credentials for %s: %s (ignoring)", c.hostname, err)
		return "", nil
	}
	if creds != nil {
		return creds.Token(), nil
	}
	return "", nil
}

// retryLogHook is invoked each time a request is retried, so that
// connection issues are surfaced instead of silently stalling the run.
func (c *Client) retryLogHook(attemptNum int, resp *http.Response) {
	if c.CLI != nil {
		// Ignore the first retry to make sure any delayed output will
		// be written to the console before we start logging retries.
		//
		// The retry logic in the API client will retry both rate limited
		// requests and server errors, but here we only care about server
		// errors so we ignore rate limit (429) errors.
		if attemptNum == 0 || (resp != nil && resp.StatusCode == 429) {
			// Reset the last retry time.
			c.lastRetry = time.Now()
			return
		}

		if attemptNum == 1 {
			c.CLI.Output(c.Colorize().Color(strings.TrimSpace(initialRetryError)))
		} else {
			c.CLI.Output(c.Colorize().Color(strings.TrimSpace(
				fmt.Sprintf(repeatedRetryError, time.Since(c.lastRetry).Round(time.Second)))))
		}
	}
}

// Colorize returns the Colorize structure that can be used for colorizing
// output. This is guaranteed to always return a non-nil value and so is
// useful as a helper to wrap any potentially colored strings.
func (c *Client) Colorize() *colorstring.Colorize {
	if c.CLIColor != nil {
		return c.CLIColor
	}

	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: true,
	}
}

// GeneralError turns an API client error into diagnostics, in particular
// attaching the usual explanation to not-found responses, which Terraform
// Cloud also returns for resources the token is not allowed to see.
func GeneralError(msg string, err error) error {
	var diags tfdiags.Diagnostics

	if urlErr, ok := err.(*url.Error); ok {
		err = urlErr.Err
	}

	switch err {
	case context.Canceled:
		return err
	case tfe.ErrResourceNotFound:
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			fmt.Sprintf("%s: %v", msg, err),
			"For security, Terraform Cloud returns '404 Not Found' responses for resources\n"+
				"that a user doesn't have access to, in addition to resources that do not\n"+
				"exist. If the resource does exist, please check the permissions of the provided token.",
		))
		return diags.Err()
	default:
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			fmt.Sprintf("%s: %v", msg, err),
			`Terraform Cloud returned an unexpected error. Sometimes `+
				`this is caused by network connection problems, in which case you could retry `+
				`the command. If the issue persists please open a support ticket to get help `+
				`resolving the problem.`,
		))
		return diags.Err()
	}
}

// The newline in this error is to make it look good in the CLI!
const initialRetryError = `
[reset][yellow]There was an error connecting to Terraform Cloud. Trying to restore the connection...
[reset]
`

const repeatedRetryError = `
[reset][yellow]Still trying to restore the connection... (%s elapsed)[reset]
`
