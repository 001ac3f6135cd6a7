package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/cli"
)

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	var buf bytes.Buffer
	defer cli.SetOutput(&buf)()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[assistant]
name = "Kiri"

[similarity]
threshold = 0.5

[[rules]]
id = "water"
contains = ["water"]
answer = "Tank behind the hall."
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"zia", "--log-level", "error", "validate", "--config", configPath}, "test")
	gt.NoError(t, err).Required()
	gt.String(t, buf.String()).Contains("Configuration validation passed")
	gt.String(t, buf.String()).Contains("assistant=Kiri")
	gt.String(t, buf.String()).Contains("rules=1")
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	var buf bytes.Buffer
	defer cli.SetOutput(&buf)()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[rules]]
id = "INVALID_ID"
contains = ["x"]
answer = "y"
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"zia", "--log-level", "error", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"zia", "--log-level", "error", "validate", "--config", filepath.Join(t.TempDir(), "nope.toml"),
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_CheckStore(t *testing.T) {
	var buf bytes.Buffer
	defer cli.SetOutput(&buf)()

	dbPath := filepath.Join(t.TempDir(), "zia.db")
	ctx := context.Background()

	err := cli.Run(ctx, []string{
		"zia", "--log-level", "error", "teach",
		"--sqlite-path", dbPath,
		"--question", "where is the water tank",
		"--answer", "behind the hall",
	}, "test")
	gt.NoError(t, err).Required()

	err = cli.Run(ctx, []string{
		"zia", "--log-level", "error", "validate", "--check-store", "--sqlite-path", dbPath,
	}, "test")
	gt.NoError(t, err).Required()
	gt.String(t, buf.String()).Contains("Store check passed")
}
