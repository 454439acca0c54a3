// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli/clitest"
	"github.com/bureau-foundation/synadmin/lib/sealed"
	"github.com/bureau-foundation/synadmin/lib/secret"
	"github.com/bureau-foundation/synadmin/lib/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return clitest.CaptureStdout(t, func() error {
		return Root().Execute(context.Background(), args)
	})
}

// walkCommands visits every command in the tree with its path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := append(append([]string(nil), path...), command.Name)
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}

func TestCommandTree(t *testing.T) {
	seen := make(map[string]bool)
	walkCommands(Root(), nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if seen[name] {
			t.Errorf("%s: duplicate command", name)
		}
		seen[name] = true
		if len(path) > 1 && command.Summary == "" {
			t.Errorf("%s: missing Summary", name)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither Run nor Subcommands", name)
		}
		// Building the flag set panics on a malformed params struct.
		if command.Flags != nil {
			command.Flags()
		}
	})

	for _, want := range []string{
		"synadmin room delete",
		"synadmin purge-history",
		"synadmin user suspend",
		"synadmin media quarantine",
		"synadmin token create",
		"synadmin report list",
		"synadmin notice send",
		"synadmin server stats media",
		"synadmin background start",
		"synadmin credential seal",
		"synadmin config show",
	} {
		if !seen[want] {
			t.Errorf("command %q not in tree", want)
		}
	}
}

func TestUnknownCommandSuggests(t *testing.T) {
	_, err := execute(t, "rom", "list")
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), `did you mean "room"`) {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestMistypedLongFlag(t *testing.T) {
	_, err := execute(t, "room", "list", "--limt", "5")
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if cli.ExitCodeFor(err) != 2 {
		t.Errorf("exit code = %d, want 2", cli.ExitCodeFor(err))
	}
	if !strings.Contains(err.Error(), "did you mean --limit") {
		t.Errorf("error %q should suggest --limit", err)
	}
}

func TestGlobalVerboseFlag(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodGet, "/_synapse/admin/v1/server_version", http.StatusOK, map[string]any{
		"server_version": "1.120.0",
	})

	output, err := execute(t, append([]string{"-v", "server", "version"}, homeserver.Flags()...)...)
	if err != nil {
		t.Fatalf("synadmin -v server version: %v", err)
	}
	if output != "1.120.0\n" {
		t.Errorf("output = %q", output)
	}
}

func TestVersion(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("synadmin version: %v", err)
	}
	if !strings.HasPrefix(output, "synadmin ") || !strings.Contains(output, "Go:") {
		t.Errorf("output = %q", output)
	}
}

func TestConfigShowFromFile(t *testing.T) {
	tokenFile := testutil.WriteFile(t, "token", "syt_config_show\n")
	configFile := testutil.WriteFile(t, "synadmin.yaml", `
homeserver:
  url: https://matrix.example.org
  port: 443
credentials:
  token_file: `+tokenFile+`
profiles:
  staging:
    homeserver:
      url: https://staging.example.org
`)
	t.Setenv("SYNADMIN_CONFIG", configFile)

	output, err := execute(t, "config", "show", "--profile", "staging", "--json")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	testutil.RequireJSONEqual(t, output, `{
		"path": "`+configFile+`",
		"profile": "staging",
		"homeserver": "https://staging.example.org",
		"port": 443,
		"timeout": "30s",
		"token_source": "`+tokenFile+`",
		"token_fingerprint": "`+secret.Fingerprint([]byte("syt_config_show"))+`",
		"output_format": "text",
		"color": "auto"
	}`)
	if strings.Contains(output, "syt_config_show") {
		t.Error("config show printed the token")
	}
}

func TestConfigShowSealedToken(t *testing.T) {
	directory := t.TempDir()
	identity, err := sealed.GenerateIdentity()
	if err != nil {
		t.Fatal(err)
	}
	defer identity.Close()

	identityPath := filepath.Join(directory, "identity")
	identityFile, err := os.Create(identityPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := sealed.WriteIdentity(identityFile, identity, time.Now()); err != nil {
		t.Fatal(err)
	}
	identityFile.Close()

	sealedPath := filepath.Join(directory, "token.age")
	sealedFile, err := os.Create(sealedPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := sealed.Seal(sealedFile, []byte("syt_sealed"), []string{identity.Recipient}); err != nil {
		t.Fatal(err)
	}
	sealedFile.Close()
	t.Setenv("SYNADMIN_CONFIG", "")

	output, err := execute(t, "config", "show", "--sealed-token-file", sealedPath, "--identity-file", identityPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"(sealed)", secret.Fingerprint([]byte("syt_sealed")), "http://localhost"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestConfigShowRejectsBothTokens(t *testing.T) {
	t.Setenv("SYNADMIN_CONFIG", "")
	_, err := execute(t, "config", "show", "--token-file", "a", "--sealed-token-file", "b")
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}
