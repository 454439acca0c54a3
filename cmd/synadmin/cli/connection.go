// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/lib/config"
	"github.com/bureau-foundation/synadmin/lib/sealed"
	"github.com/bureau-foundation/synadmin/lib/secret"
	"github.com/bureau-foundation/synadmin/lib/version"
	"github.com/bureau-foundation/synadmin/synapse"
)

// ConnectionConfig holds the flags that locate the homeserver and the
// admin access token. Embed it in a command's params struct; [BindFlags]
// registers the flags through AddFlags.
//
// Values come from the config file (--config, else $SYNADMIN_CONFIG),
// then its profile, then these flags. Without any of them the client
// targets http://localhost:8008 and a token must still be named.
type ConnectionConfig struct {
	ConfigFile      string
	Profile         string
	Homeserver      string
	Port            int
	TokenFile       string
	SealedTokenFile string
	IdentityFile    string
	Timeout         time.Duration
}

// AddFlags registers the connection flags on flagSet.
func (c *ConnectionConfig) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.ConfigFile, "config", "", "config file (default $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&c.Profile, "profile", "", "config file profile to apply")
	flagSet.StringVar(&c.Homeserver, "homeserver", "", "homeserver URL without port (e.g., https://matrix.example.org)")
	flagSet.IntVar(&c.Port, "port", 0, "admin API port (default 8008)")
	flagSet.StringVar(&c.TokenFile, "token-file", "", `file holding the admin access token ("-" for stdin)`)
	flagSet.StringVar(&c.SealedTokenFile, "sealed-token-file", "", "age-encrypted access token file (see 'synadmin credential seal')")
	flagSet.StringVar(&c.IdentityFile, "identity-file", "", "age identity that opens --sealed-token-file")
	flagSet.DurationVar(&c.Timeout, "timeout", 0, "per-request timeout (default 30s)")
}

// LoadConfig loads the config file and applies the flag overrides. The
// result is validated.
func (c *ConnectionConfig) LoadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if c.ConfigFile != "" {
		cfg, err = config.LoadFile(c.ConfigFile, c.Profile)
	} else {
		cfg, err = config.Load(c.Profile)
	}
	if err != nil {
		return nil, Validation("loading config: %w", err)
	}

	if c.Homeserver != "" {
		cfg.Homeserver.URL = c.Homeserver
	}
	if c.Port != 0 {
		cfg.Homeserver.Port = c.Port
	}
	if c.Timeout != 0 {
		cfg.Homeserver.Timeout = c.Timeout.String()
	}
	// A token named on the command line replaces the configured one
	// whichever form each takes.
	if c.TokenFile != "" {
		cfg.Credentials.TokenFile = c.TokenFile
		cfg.Credentials.SealedTokenFile = ""
	}
	if c.SealedTokenFile != "" {
		if c.TokenFile != "" {
			return nil, Validation("--token-file and --sealed-token-file are mutually exclusive")
		}
		cfg.Credentials.SealedTokenFile = c.SealedTokenFile
		cfg.Credentials.TokenFile = ""
	}
	if c.IdentityFile != "" {
		cfg.Credentials.IdentityFile = c.IdentityFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ReadToken reads the admin access token named by cfg. The caller
// closes the returned buffer.
func ReadToken(cfg *config.Config) (*secret.Buffer, error) {
	credentials := cfg.Credentials
	switch {
	case credentials.TokenFile != "":
		token, err := secret.ReadFromPath(credentials.TokenFile)
		if err != nil {
			return nil, Validation("reading access token: %w", err)
		}
		return token, nil
	case credentials.SealedTokenFile != "":
		token, err := sealed.OpenFile(credentials.SealedTokenFile, credentials.IdentityFile)
		if err != nil {
			return nil, Validation("opening sealed access token: %w", err)
		}
		return token, nil
	}
	return nil, Validation("no access token: pass --token-file or --sealed-token-file, or set credentials in the config file")
}

// Connection is a ready admin API client with the configuration it was
// built from.
type Connection struct {
	*synapse.Client

	Config *config.Config

	// TokenFingerprint identifies the access token in logs without
	// revealing it.
	TokenFingerprint string
}

// Connect loads the configuration, reads the access token, and builds
// the client. No request is made: a wrong URL or token surfaces on the
// first call.
func (c *ConnectionConfig) Connect(ctx context.Context, logger *slog.Logger) (*Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}

	token, err := ReadToken(cfg)
	if err != nil {
		return nil, err
	}
	// The locked buffer covers reading and unsealing the token. The
	// client keeps an ordinary heap copy in its Authorization header for
	// its whole lifetime: net/http headers are strings.
	defer token.Close()
	fingerprint := token.Fingerprint()

	client, err := synapse.NewClient(synapse.ClientConfig{
		BaseURL:     cfg.Homeserver.URL,
		Port:        cfg.Homeserver.Port,
		AccessToken: token.String(),
		HTTPClient:  &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:      logger,
		UserAgent:   version.UserAgent(),
	})
	if err != nil {
		return nil, FromSynapse(err, "creating client")
	}

	logger.Debug("admin client ready",
		"homeserver", cfg.Homeserver.URL,
		"port", cfg.Homeserver.Port,
		"config", cfg.Path(),
		"profile", cfg.Profile,
		"token", fingerprint,
	)
	return &Connection{Client: client, Config: cfg, TokenFingerprint: fingerprint}, nil
}
