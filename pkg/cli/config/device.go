package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Device holds CLI flags deciding the identity attached to exports
type Device struct {
	id   string
	file string
}

func (x *Device) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "device-id",
			Usage:       "Device ID announced to peers (generated when omitted)",
			Category:    "Device",
			Sources:     cli.EnvVars("ZIA_DEVICE_ID"),
			Destination: &x.id,
		},
		&cli.StringFlag{
			Name:        "device-id-file",
			Usage:       "File keeping the generated device ID across restarts",
			Category:    "Device",
			Sources:     cli.EnvVars("ZIA_DEVICE_ID_FILE"),
			Destination: &x.file,
		},
	}
}

func (x Device) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", x.id),
		slog.String("file", x.file),
	)
}

// Configure resolves the device ID. An explicit ID wins, then the content of
// the ID file. When the file does not exist a new ID is generated and written
// to it. Without either flag the ID lives as long as the process.
func (x *Device) Configure() (model.DeviceID, error) {
	if x.id != "" {
		id := model.DeviceID(x.id)
		if err := id.Validate(); err != nil {
			return "", goerr.Wrap(ErrInvalidConfig, "invalid device ID", goerr.V("device_id", x.id))
		}
		return id, nil
	}

	if x.file == "" {
		return model.NewDeviceID(), nil
	}

	// #nosec G304 - path is provided by CLI argument
	data, err := os.ReadFile(x.file)
	switch {
	case err == nil:
		id := model.DeviceID(strings.TrimSpace(string(data)))
		if err := id.Validate(); err != nil {
			return "", goerr.Wrap(ErrInvalidConfig, "invalid device ID in file", goerr.V("path", x.file))
		}
		return id, nil

	case errors.Is(err, fs.ErrNotExist):
		id := model.NewDeviceID()
		if err := os.MkdirAll(filepath.Dir(x.file), 0o700); err != nil {
			return "", goerr.Wrap(err, "failed to create device ID directory", goerr.V("path", x.file))
		}
		if err := os.WriteFile(x.file, []byte(id.String()+"\n"), 0o600); err != nil {
			return "", goerr.Wrap(err, "failed to write device ID file", goerr.V("path", x.file))
		}
		logging.Default().Info("Generated new device ID", "device_id", id, "path", x.file)
		return id, nil

	default:
		return "", goerr.Wrap(err, "failed to read device ID file", goerr.V("path", x.file))
	}
}
