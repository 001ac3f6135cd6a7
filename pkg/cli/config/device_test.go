package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/cli/config"
)

func TestDeviceExplicitID(t *testing.T) {
	id, err := config.NewDeviceForTest("kitchen-pi", "").Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, id.String()).Equal("kitchen-pi")
}

func TestDeviceRejectsInvalidID(t *testing.T) {
	_, err := config.NewDeviceForTest("two words", "").Configure()
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}

func TestDeviceGeneratedPerProcess(t *testing.T) {
	a, err := config.NewDeviceForTest("", "").Configure()
	gt.NoError(t, err).Required()
	b, err := config.NewDeviceForTest("", "").Configure()
	gt.NoError(t, err).Required()

	gt.Value(t, a).NotEqual(b)
}

func TestDeviceIDFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "device-id")

	first, err := config.NewDeviceForTest("", path).Configure()
	gt.NoError(t, err).Required()

	data, err := os.ReadFile(path)
	gt.NoError(t, err).Required()
	gt.Value(t, strings.TrimSpace(string(data))).Equal(first.String())

	second, err := config.NewDeviceForTest("", path).Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, second).Equal(first)
}

func TestDeviceExplicitIDWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device-id")
	gt.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0600)).Required()

	id, err := config.NewDeviceForTest("from-flag", path).Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, id.String()).Equal("from-flag")

	id, err = config.NewDeviceForTest("", path).Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, id.String()).Equal("from-file")
}

func TestDeviceIDFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device-id")
	gt.NoError(t, os.WriteFile(path, []byte("  \n"), 0600)).Required()

	_, err := config.NewDeviceForTest("", path).Configure()
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}
