package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/cli/config"
	"github.com/secmon-lab/zia/pkg/utils/logging"
)

func TestLoggerConfigureFile(t *testing.T) {
	prev := logging.Default()
	defer logging.SetDefault(prev)

	for _, format := range []string{"console", "json"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "zia.log")

			closer, err := config.NewLoggerForTest("debug", format, path).Configure()
			gt.NoError(t, err).Required()

			logging.Default().Info("knowledge taught", "knowledge_id", "k-1")
			closer()

			data, err := os.ReadFile(path)
			gt.NoError(t, err).Required()
			gt.String(t, string(data)).Contains("knowledge taught")
			gt.String(t, string(data)).Contains("k-1")
		})
	}
}

func TestLoggerMasksSecrets(t *testing.T) {
	prev := logging.Default()
	defer logging.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "zia.log")
	closer, err := config.NewLoggerForTest("info", "json", path).Configure()
	gt.NoError(t, err).Required()

	type credential struct {
		User     string
		Password string `masq:"secret"`
	}
	logging.Default().Info("connecting", "credential", credential{User: "zia", Password: "hunter2"})
	closer()

	data, err := os.ReadFile(path)
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Contains("zia")
	gt.String(t, string(data)).NotContains("hunter2")
}

func TestLoggerConfigureErrors(t *testing.T) {
	_, err := config.NewLoggerForTest("verbose", "json", "stderr").Configure()
	gt.Value(t, err).NotNil()

	_, err = config.NewLoggerForTest("info", "xml", "stderr").Configure()
	gt.Value(t, err).NotNil()
}
