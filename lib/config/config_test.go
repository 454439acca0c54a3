// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "synadmin.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Homeserver.URL != "http://localhost" || cfg.Homeserver.Port != 8008 {
		t.Errorf("homeserver = %+v", cfg.Homeserver)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout = %s, want 30s", cfg.RequestTimeout())
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("format = %q, want text", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadWithoutEnvironmentUsesDefaults(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Path() != "" || cfg.Homeserver.Port != 8008 {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	if _, err := Load("staging"); err == nil {
		t.Error("Load(profile) without a config file succeeded")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
homeserver:
  url: https://matrix.example.org
  port: 8448
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path = %q, want %q", cfg.Path(), path)
	}
	if cfg.Homeserver.URL != "https://matrix.example.org" || cfg.Homeserver.Port != 8448 {
		t.Errorf("homeserver = %+v", cfg.Homeserver)
	}
	// Unset fields keep their defaults.
	if cfg.Homeserver.Timeout != "30s" || cfg.Output.Format != FormatText {
		t.Errorf("defaults lost: %+v %+v", cfg.Homeserver, cfg.Output)
	}
}

func TestLoadFileProfiles(t *testing.T) {
	path := writeConfig(t, `
profile: staging
homeserver:
  url: https://matrix.example.org
credentials:
  token_file: /etc/synadmin/token
profiles:
  staging:
    homeserver:
      url: https://staging.example.org
      timeout: 5s
  production:
    credentials:
      sealed_token_file: /etc/synadmin/token.age
      identity_file: /etc/synadmin/identity.txt
    output:
      format: json
`)

	t.Run("file selects profile", func(t *testing.T) {
		cfg, err := LoadFile(path, "")
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if cfg.Homeserver.URL != "https://staging.example.org" || cfg.RequestTimeout() != 5*time.Second {
			t.Errorf("homeserver = %+v", cfg.Homeserver)
		}
		if cfg.Homeserver.Port != 8008 {
			t.Errorf("port = %d, want default", cfg.Homeserver.Port)
		}
		if cfg.Credentials.TokenFile != "/etc/synadmin/token" {
			t.Errorf("base credentials lost: %+v", cfg.Credentials)
		}
	})

	t.Run("argument overrides file", func(t *testing.T) {
		cfg, err := LoadFile(path, "production")
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if cfg.Homeserver.URL != "https://matrix.example.org" {
			t.Errorf("url = %q, want base value", cfg.Homeserver.URL)
		}
		if cfg.Credentials.TokenFile != "" || cfg.Credentials.SealedTokenFile != "/etc/synadmin/token.age" {
			t.Errorf("credentials = %+v, want sealed only", cfg.Credentials)
		}
		if cfg.Output.Format != FormatJSON {
			t.Errorf("format = %q", cfg.Output.Format)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		if _, err := LoadFile(path, "qa"); err == nil || !strings.Contains(err.Error(), `unknown profile "qa"`) {
			t.Errorf("err = %v, want unknown profile", err)
		}
	})
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), ""); err == nil {
		t.Error("LoadFile of a missing file succeeded")
	}
	if _, err := LoadFile(writeConfig(t, "homeserver: [not, a, map]\n"), ""); err == nil {
		t.Error("LoadFile of malformed YAML succeeded")
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/operator")
	t.Setenv("SYNADMIN_TEST_KEYS", "")

	path := writeConfig(t, `
credentials:
  sealed_token_file: ${SYNADMIN_CONFIG_DIR}/token.age
  identity_file: ${SYNADMIN_TEST_KEYS:-/etc/age}/identity.txt
  token_file: ${HOME}/token
`)
	cfg, err := LoadFile(path, "")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if want := filepath.Join(filepath.Dir(path), "token.age"); cfg.Credentials.SealedTokenFile != want {
		t.Errorf("sealed_token_file = %q, want %q", cfg.Credentials.SealedTokenFile, want)
	}
	if cfg.Credentials.IdentityFile != "/etc/age/identity.txt" {
		t.Errorf("identity_file = %q", cfg.Credentials.IdentityFile)
	}
	if cfg.Credentials.TokenFile != "/home/operator/token" {
		t.Errorf("token_file = %q", cfg.Credentials.TokenFile)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("SYNADMIN_TEST_SET", "from-env")
	t.Setenv("SYNADMIN_TEST_UNSET", "")
	vars := map[string]string{"HOME": "/home/operator"}

	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/token", "/home/operator/token"},
		{"${SYNADMIN_TEST_SET}/token", "from-env/token"},
		{"${SYNADMIN_TEST_UNSET:-/fallback}/token", "/fallback/token"},
		{"${SYNADMIN_TEST_UNSET}/token", "/token"},
		{"/plain/path", "/plain/path"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errors []string
	}{
		{
			name:   "url without scheme",
			mutate: func(c *Config) { c.Homeserver.URL = "matrix.example.org" },
			errors: []string{"homeserver.url must start with"},
		},
		{
			name:   "url with port",
			mutate: func(c *Config) { c.Homeserver.URL = "https://matrix.example.org:8448" },
			errors: []string{"must not carry a port or path"},
		},
		{
			name:   "port out of range",
			mutate: func(c *Config) { c.Homeserver.Port = 70000 },
			errors: []string{"homeserver.port"},
		},
		{
			name:   "bad timeout",
			mutate: func(c *Config) { c.Homeserver.Timeout = "soon" },
			errors: []string{"homeserver.timeout"},
		},
		{
			name: "both credentials",
			mutate: func(c *Config) {
				c.Credentials.TokenFile = "/a"
				c.Credentials.SealedTokenFile = "/b"
			},
			errors: []string{"mutually exclusive", "requires credentials.identity_file"},
		},
		{
			name:   "unknown format",
			mutate: func(c *Config) { c.Output.Format = "xml" },
			errors: []string{"output.format"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() succeeded")
			}
			for _, fragment := range test.errors {
				if !strings.Contains(err.Error(), fragment) {
					t.Errorf("error %q lacks %q", err, fragment)
				}
			}
		})
	}
}
