// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package cliconfig handles the CLI configuration: the settings that apply
// to the tool itself, as opposed to the workspace it is operating on.
//
// tfcws reads the same configuration file as Terraform, so credentials
// that were configured once (by hand or by "terraform login") work for
// both. The file is ~/.terraformrc on unix systems and terraform.rc in
// the application data directory on Windows, can be written in either HCL
// or JSON syntax, and can be overridden with the TF_CLI_CONFIG_FILE
// environment variable.
package cliconfig

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	svchost "github.com/hashicorp/terraform-svchost"

	"github.com/hashicorp/tfcws/internal/tfdiags"
)

// Config is the structure of the configuration for the CLI.
//
// This is not the configuration of the workspace itself; that lives in the
// terraform.tf file read by the tfconfig package.
type Config struct {
	// Hostname is the Terraform Cloud or Terraform Enterprise host to
	// connect to. Empty means the default public host, app.terraform.io.
	Hostname string `hcl:"hostname"`

	// Credentials are the credentials blocks from the configuration,
	// keyed by hostname.
	Credentials map[string]map[string]interface{} `hcl:"credentials"`
}

// LoadConfig reads the CLI configuration from the known locations and
// merges it with settings from the process environment.
//
// Diagnostics are returned for anything that went wrong along the way;
// even when they contain errors a usable (possibly empty) configuration is
// returned, so the caller can decide whether the problems are fatal.
func LoadConfig() (*Config, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	config := &Config{}

	if mainFilename, err := configFilePath(); err == nil {
		if _, err := os.Stat(mainFilename); err == nil {
			mainConfig, mainDiags := loadConfigFile(mainFilename)
			diags = diags.Append(mainDiags)
			config = config.Merge(mainConfig)
		}
	}

	// Credentials written by "terraform login" live in a dedicated file
	// beside the main configuration.
	if credsFilename, err := credentialsConfigFile(); err == nil {
		if _, err := os.Stat(credsFilename); err == nil {
			credsConfig, credsDiags := loadConfigFile(credsFilename)
			diags = diags.Append(credsDiags)
			config = config.Merge(credsConfig)
		}
	}

	if envConfig := EnvConfig(); envConfig != nil {
		// envConfig takes precedence
		config = config.Merge(envConfig)
	}

	diags = diags.Append(config.Validate())

	return config, diags
}

// loadConfigFile loads the CLI configuration from ".terraformrc" files.
func loadConfigFile(path string) (*Config, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	result := &Config{}

	log.Printf("[DEBUG] Loading CLI configuration from %s", path)

	// Read the HCL file and prepare for parsing
	d, err := os.ReadFile(path)
	if err != nil {
		diags = diags.Append(fmt.Errorf("Error reading %s: %s", path, err))
		return result, diags
	}

	// Parse it. The hcl package accepts both HCL and JSON input here, so
	// this covers the JSON credentials file too.
	obj, err := hcl.Parse(string(d))
	if err != nil {
		diags = diags.Append(fmt.Errorf("Error parsing %s: %s", path, err))
		return result, diags
	}

	// Build up the result
	if err := hcl.DecodeObject(&result, obj); err != nil {
		diags = diags.Append(fmt.Errorf("Error parsing %s: %s", path, err))
		return result, diags
	}

	return result, diags
}

// EnvConfig returns a Config populated from environment variables.
//
// Any values specified in this config should override those set in the
// configuration file.
func EnvConfig() *Config {
	config := &Config{}

	if envHostname := os.Getenv("TFE_HOSTNAME"); envHostname != "" {
		config.Hostname = envHostname
	}

	return config
}

// Validate checks for errors in the configuration that cannot be detected
// just by HCL decoding, returning any problems as diagnostics.
//
// On success, the returned diagnostics will return false from the HasErrors
// method. A non-nil diagnostics is not necessarily an error, since it may
// contain just warnings.
func (c *Config) Validate() tfdiags.Diagnostics {
	var diags tfdiags.Diagnostics

	if c == nil {
		return diags
	}

	// Right now our config parsing doesn't retain any source location
	// information, so we can't indicate exactly where the problems are.
	// We accumulate them all into one error so that they render as a
	// single "problems with the CLI configuration" report.
	var err error
	for givenHost := range c.Credentials {
		if _, hostErr := svchost.ForComparison(givenHost); hostErr != nil {
			err = multierror.Append(err, fmt.Errorf(
				"The credentials %q block has an invalid hostname: %s.", givenHost, hostErr,
			))
		}
	}
	if c.Hostname != "" {
		if _, hostErr := svchost.ForComparison(c.Hostname); hostErr != nil {
			err = multierror.Append(err, fmt.Errorf(
				"The hostname setting %q is not a valid hostname: %s.", c.Hostname, hostErr,
			))
		}
	}
	if err != nil {
		diags = diags.Append(err)
	}

	return diags
}

// Merge merges two configurations and returns a third entirely
// new configuration with the two merged.
func (c *Config) Merge(c2 *Config) *Config {
	var result Config

	result.Hostname = c.Hostname
	if c2.Hostname != "" {
		result.Hostname = c2.Hostname
	}

	if c.Credentials != nil || c2.Credentials != nil {
		result.Credentials = make(map[string]map[string]interface{})
		for host, creds := range c.Credentials {
			result.Credentials[host] = creds
		}
		for host, creds := range c2.Credentials {
			// We just clobber an entry from the other file right now. Will
			// improve on this later if we actually care about it at some
			// point.
			result.Credentials[host] = creds
		}
	}

	return &result
}

// configFilePath returns the path to the main CLI configuration file,
// honoring the TF_CLI_CONFIG_FILE override.
func configFilePath() (string, error) {
	if envPath := os.Getenv("TF_CLI_CONFIG_FILE"); envPath != "" {
		return envPath, nil
	}
	return configFile()
}

// credentialsConfigFile returns the path for the dedicated credentials
// file that "terraform login" maintains.
func credentialsConfigFile() (string, error) {
	configDir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "credentials.tfrc.json"), nil
}
