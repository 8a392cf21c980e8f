// Package config builds the connection configuration for the Azure DevOps
// test-management API. The configuration is resolved once at process start
// and passed by value into the client; nothing reads the environment after
// that point.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by Load. Each overrides the value from
// the optional config file.
const (
	EnvOrganization = "AZURE_DEVOPS_ORG"
	EnvProject      = "AZURE_DEVOPS_PROJECT"
	EnvToken        = "AZURE_DEVOPS_PAT"
)

// DefaultAPIVersion is the Azure DevOps REST API version used when the
// config file does not pin one.
const DefaultAPIVersion = "7.1"

// Config holds the connection settings for one Azure DevOps project.
type Config struct {
	// OrganizationURL is the organization base URL,
	// e.g. https://dev.azure.com/acme.
	OrganizationURL string `yaml:"organization_url"`
	// Project is the project name the test plans live in.
	Project string `yaml:"project"`
	// Token is a personal access token with test-management scope.
	Token string `yaml:"token"`
	// APIVersion selects the api-version query parameter.
	APIVersion string `yaml:"api_version"`
}

// ConfigurationError reports every missing required setting at once so the
// user can fix them in a single pass.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s (set the environment variables or a config file)",
		strings.Join(e.Missing, ", "))
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Load resolves the configuration from an optional YAML file at path
// (skipped when path is empty or the file does not exist) overridden by the
// environment. It fails with a ConfigurationError when required settings
// are absent from both sources.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Optional file; env alone may be enough.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(EnvOrganization); v != "" {
		cfg.OrganizationURL = v
	}
	if v := os.Getenv(EnvProject); v != "" {
		cfg.Project = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Token == "" {
		missing = append(missing, EnvToken)
	}
	if c.OrganizationURL == "" {
		missing = append(missing, EnvOrganization)
	}
	if c.Project == "" {
		missing = append(missing, EnvProject)
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// MaskedToken returns the token with its middle elided, for display in
// diagnostics. Short tokens are fully masked.
func (c *Config) MaskedToken() string {
	if c.Token == "" {
		return "(not set)"
	}
	if len(c.Token) <= 8 {
		return strings.Repeat("*", len(c.Token))
	}
	return c.Token[:4] + "..." + c.Token[len(c.Token)-4:]
}
