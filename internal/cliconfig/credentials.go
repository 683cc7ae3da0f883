// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cliconfig

import (
	"fmt"
	"log"
	"os"
	"strings"

	svchost "github.com/hashicorp/terraform-svchost"
	svcauth "github.com/hashicorp/terraform-svchost/auth"
)

// envVarPrefix is the prefix for environment variables that carry a token
// for one particular host.
const envVarPrefix = "TF_TOKEN_"

// CredentialsSource returns an object that can provide credentials for the
// hosts this tool talks to.
//
// For any particular host the TF_TOKEN_* environment takes priority, and
// then the credentials blocks from the CLI configuration.
func (c *Config) CredentialsSource() svcauth.CredentialsSource {
	configured := make(map[svchost.Hostname]map[string]interface{})
	for userHost, creds := range c.Credentials {
		host, err := svchost.ForComparison(userHost)
		if err != nil {
			// We expect the config to have been validated by the time we
			// get here, so anything invalid is just skipped.
			continue
		}
		configured[host] = creds
	}

	return &credentialsSource{
		configured: configured,
	}
}

// credentialsSource is an implementation of svcauth.CredentialsSource that
// serves the credentials this tool knows about. It is read-only: tfcws
// never writes credentials, so the store and forget operations always fail.
type credentialsSource struct {
	configured map[svchost.Hostname]map[string]interface{}
}

var _ svcauth.CredentialsSource = (*credentialsSource)(nil)

func (s *credentialsSource) ForHost(host svchost.Hostname) (svcauth.HostCredentials, error) {
	if token := hostTokenFromEnv(host); token != "" {
		log.Printf("[TRACE] cliconfig: using credentials for %s from the environment", host)
		return svcauth.HostCredentialsToken(token), nil
	}
	if m, ok := s.configured[host]; ok {
		return svcauth.HostCredentialsFromMap(m), nil
	}
	return nil, nil
}

func (s *credentialsSource) StoreForHost(host svchost.Hostname, credentials svcauth.HostCredentialsWritable) error {
	return fmt.Errorf("tfcws cannot store credentials; add a credentials block for %s to the CLI configuration file instead", host)
}

func (s *credentialsSource) ForgetForHost(host svchost.Hostname) error {
	return fmt.Errorf("tfcws cannot forget credentials; remove the credentials block for %s from the CLI configuration file instead", host)
}

// hostTokenFromEnv returns the token configured for the given hostname
// through a TF_TOKEN_* environment variable, or an empty string if there
// is none.
//
// Hostnames contain characters that are not valid in an environment
// variable name, so dots are written as underscores and dashes as double
// underscores: the token for app.terraform.io is read from
// TF_TOKEN_app_terraform_io.
func hostTokenFromEnv(host svchost.Hostname) string {
	name := strings.ReplaceAll(host.String(), "-", "__")
	name = strings.ReplaceAll(name, ".", "_")
	return os.Getenv(envVarPrefix + name)
}
