// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "SYNADMIN_CONFIG"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Formats lists the accepted output.format values.
var Formats = []string{FormatText, FormatJSON, FormatCBOR}

// Config is synadmin's configuration.
type Config struct {
	// Profile selects an entry of Profiles. Empty uses the base values.
	Profile string `yaml:"profile,omitempty"`

	Homeserver  HomeserverConfig  `yaml:"homeserver"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Output      OutputConfig      `yaml:"output"`

	// Profiles are named overrides of the base values.
	Profiles map[string]*Overrides `yaml:"profiles,omitempty"`

	// path is the file this config was loaded from.
	path string
}

// Overrides holds the fields a profile can replace.
type Overrides struct {
	Homeserver  *HomeserverConfig  `yaml:"homeserver,omitempty"`
	Credentials *CredentialsConfig `yaml:"credentials,omitempty"`
	Output      *OutputConfig      `yaml:"output,omitempty"`
}

// HomeserverConfig locates the Synapse admin API.
type HomeserverConfig struct {
	// URL is the scheme and host, without port or path:
	// "https://matrix.example.org".
	URL string `yaml:"url"`

	// Port is the port serving /_synapse/admin. Default: 8008.
	Port int `yaml:"port"`

	// Timeout bounds each request, as a Go duration. Default: 30s.
	Timeout string `yaml:"timeout"`
}

// CredentialsConfig locates the admin access token. Set exactly one of
// TokenFile and SealedTokenFile.
type CredentialsConfig struct {
	// TokenFile holds the plaintext token. "-" reads stdin.
	TokenFile string `yaml:"token_file"`

	// SealedTokenFile holds the token encrypted with age; IdentityFile
	// holds the key that opens it.
	SealedTokenFile string `yaml:"sealed_token_file"`
	IdentityFile    string `yaml:"identity_file"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	// Format is text, json, or cbor. Default: text.
	Format string `yaml:"format"`

	// Color enables syntax highlighting and styled tables on terminals:
	// auto, always, or never. Default: auto.
	Color string `yaml:"color"`
}

// Default returns the configuration used before any file is applied.
func Default() *Config {
	return &Config{
		Homeserver: HomeserverConfig{
			URL:     "http://localhost",
			Port:    8008,
			Timeout: "30s",
		},
		Output: OutputConfig{
			Format: FormatText,
			Color:  "auto",
		},
	}
}

// Load loads the file named by SYNADMIN_CONFIG. It returns Default()
// when the variable is unset.
func Load(profile string) (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		if profile != "" {
			return nil, fmt.Errorf("profile %q requested but %s is not set and no --config was given",
				profile, EnvironmentVariable)
		}
		return Default(), nil
	}
	return LoadFile(path, profile)
}

// LoadFile loads configuration from path. A non-empty profile
// overrides the file's own "profile" key.
func LoadFile(path, profile string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.path = path

	if profile != "" {
		cfg.Profile = profile
	}
	if err := cfg.applyProfile(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// Path returns the file the config was loaded from, or "" for Default().
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyProfile() error {
	if c.Profile == "" {
		return nil
	}
	overrides, ok := c.Profiles[c.Profile]
	if !ok {
		return fmt.Errorf("unknown profile %q", c.Profile)
	}
	if overrides == nil {
		return nil
	}

	if overrides.Homeserver != nil {
		overrideString(&c.Homeserver.URL, overrides.Homeserver.URL)
		if overrides.Homeserver.Port != 0 {
			c.Homeserver.Port = overrides.Homeserver.Port
		}
		overrideString(&c.Homeserver.Timeout, overrides.Homeserver.Timeout)
	}
	if overrides.Credentials != nil {
		// A profile that names a credential replaces the base credential
		// entirely, so a plaintext and a sealed token never mix.
		if overrides.Credentials.TokenFile != "" || overrides.Credentials.SealedTokenFile != "" {
			c.Credentials = CredentialsConfig{}
		}
		overrideString(&c.Credentials.TokenFile, overrides.Credentials.TokenFile)
		overrideString(&c.Credentials.SealedTokenFile, overrides.Credentials.SealedTokenFile)
		overrideString(&c.Credentials.IdentityFile, overrides.Credentials.IdentityFile)
	}
	if overrides.Output != nil {
		overrideString(&c.Output.Format, overrides.Output.Format)
		overrideString(&c.Output.Color, overrides.Output.Color)
	}
	return nil
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	if c.path != "" {
		if absolute, err := filepath.Abs(c.path); err == nil {
			vars["SYNADMIN_CONFIG_DIR"] = filepath.Dir(absolute)
		}
	}

	c.Credentials.TokenFile = expandVars(c.Credentials.TokenFile, vars)
	c.Credentials.SealedTokenFile = expandVars(c.Credentials.SealedTokenFile, vars)
	c.Credentials.IdentityFile = expandVars(c.Credentials.IdentityFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, preferring vars over
// the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// RequestTimeout returns Homeserver.Timeout as a duration. Validate
// reports unparseable values.
func (c *Config) RequestTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Homeserver.Timeout)
	if err != nil {
		return 0
	}
	return timeout
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if parsed, err := url.Parse(c.Homeserver.URL); err != nil {
		errs = append(errs, fmt.Errorf("homeserver.url: %w", err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Errorf("homeserver.url must start with http:// or https://, got %q", c.Homeserver.URL))
	} else if parsed.Hostname() == "" {
		errs = append(errs, fmt.Errorf("homeserver.url has no host: %q", c.Homeserver.URL))
	} else if parsed.Port() != "" || (parsed.Path != "" && parsed.Path != "/") {
		errs = append(errs, fmt.Errorf("homeserver.url must not carry a port or path (use homeserver.port), got %q", c.Homeserver.URL))
	}

	if c.Homeserver.Port < 1 || c.Homeserver.Port > 65535 {
		errs = append(errs, fmt.Errorf("homeserver.port must be between 1 and 65535, got %d", c.Homeserver.Port))
	}

	if timeout, err := time.ParseDuration(c.Homeserver.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("homeserver.timeout: %w", err))
	} else if timeout < 0 {
		errs = append(errs, fmt.Errorf("homeserver.timeout must not be negative, got %s", timeout))
	}

	if c.Credentials.TokenFile != "" && c.Credentials.SealedTokenFile != "" {
		errs = append(errs, fmt.Errorf("credentials.token_file and credentials.sealed_token_file are mutually exclusive"))
	}
	if c.Credentials.SealedTokenFile != "" && c.Credentials.IdentityFile == "" {
		errs = append(errs, fmt.Errorf("credentials.sealed_token_file requires credentials.identity_file"))
	}

	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of %v, got %q", Formats, c.Output.Format))
	}
	if !slices.Contains([]string{"auto", "always", "never"}, c.Output.Color) {
		errs = append(errs, fmt.Errorf("output.color must be auto, always, or never, got %q", c.Output.Color))
	}

	return errors.Join(errs...)
}
