package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/service/snapshot"
	"github.com/secmon-lab/zia/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Snapshot holds CLI flags for snapshot storage
type Snapshot struct {
	dir       string
	bucket    string
	gcsPrefix string
}

func (x *Snapshot) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "snapshot-dir",
			Usage:       "Local directory storing snapshots",
			Category:    "Snapshot",
			Sources:     cli.EnvVars("ZIA_SNAPSHOT_DIR"),
			Destination: &x.dir,
		},
		&cli.StringFlag{
			Name:        "snapshot-gcs-bucket",
			Usage:       "Cloud Storage bucket storing snapshots",
			Category:    "Snapshot",
			Sources:     cli.EnvVars("ZIA_SNAPSHOT_GCS_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "snapshot-gcs-prefix",
			Usage:       "Object name prefix inside the snapshot bucket",
			Category:    "Snapshot",
			Sources:     cli.EnvVars("ZIA_SNAPSHOT_GCS_PREFIX"),
			Destination: &x.gcsPrefix,
		},
	}
}

func (x Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", x.dir),
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.gcsPrefix),
	)
}

// Configure returns the selected snapshot storage, or nil when none is set.
// The returned function releases the storage client.
func (x *Snapshot) Configure(ctx context.Context) (interfaces.SnapshotStorage, func(), error) {
	noop := func() {}

	switch {
	case x.dir != "" && x.bucket != "":
		return nil, noop, goerr.Wrap(ErrInvalidConfig, "snapshot-dir and snapshot-gcs-bucket are exclusive")

	case x.dir != "":
		storage, err := snapshot.NewLocal(x.dir)
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to initialize local snapshot storage")
		}
		logging.Default().Info("Using local snapshot storage", "dir", x.dir)
		return storage, noop, nil

	case x.bucket != "":
		storage, err := snapshot.NewGCS(ctx, x.bucket, snapshot.WithObjectPrefix(x.gcsPrefix))
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to initialize GCS snapshot storage")
		}
		logging.Default().Info("Using GCS snapshot storage", "bucket", x.bucket, "prefix", x.gcsPrefix)
		return storage, func() { _ = storage.Close() }, nil

	default:
		return nil, noop, nil
	}
}
