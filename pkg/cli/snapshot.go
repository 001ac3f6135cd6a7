package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/cli/config"
	"github.com/secmon-lab/zia/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdSnapshot() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Archive and restore the knowledge store",
		Commands: []*cli.Command{
			cmdSnapshotSave(),
			cmdSnapshotRestore(),
		},
	}
}

func snapshotFlags(core *coreConfig, snapCfg *config.Snapshot, name *string, required bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Snapshot name",
			Required:    required,
			Destination: name,
		},
	}
	flags = append(flags, core.Flags()...)
	flags = append(flags, snapCfg.Flags()...)
	return flags
}

func configureSnapshot(ctx context.Context, core *coreConfig, snapCfg *config.Snapshot) (*usecase.UseCases, func(), error) {
	storage, closeStorage, err := snapCfg.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}
	if storage == nil {
		closeStorage()
		return nil, nil, goerr.Wrap(config.ErrInvalidConfig, "--snapshot-dir or --snapshot-gcs-bucket is required")
	}

	uc, _, closeRepo, err := core.Configure(ctx, usecase.WithSnapshotStorage(storage))
	if err != nil {
		closeStorage()
		return nil, nil, err
	}

	return uc, func() {
		closeRepo()
		closeStorage()
	}, nil
}

func cmdSnapshotSave() *cli.Command {
	var core coreConfig
	var snapCfg config.Snapshot
	var name string

	return &cli.Command{
		Name:  "save",
		Usage: "Export the store into snapshot storage",
		Flags: snapshotFlags(&core, &snapCfg, &name, false),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := configureSnapshot(ctx, &core, &snapCfg)
			if err != nil {
				return err
			}
			defer closer()

			saved, snap, err := uc.Snapshot.Save(ctx, name)
			if err != nil {
				return goerr.Wrap(err, "failed to save snapshot")
			}
			_, _ = green.Fprintf(output, "Saved %s ", saved)
			_, _ = cyan.Fprintf(output, "(%d packets)\n", len(snap.Packets))
			return nil
		},
	}
}

func cmdSnapshotRestore() *cli.Command {
	var core coreConfig
	var snapCfg config.Snapshot
	var name string

	return &cli.Command{
		Name:  "restore",
		Usage: "Merge a snapshot back into the store; higher confidence wins",
		Flags: snapshotFlags(&core, &snapCfg, &name, true),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := configureSnapshot(ctx, &core, &snapCfg)
			if err != nil {
				return err
			}
			defer closer()

			snap, result, err := uc.Snapshot.Restore(ctx, name)
			if err != nil {
				return goerr.Wrap(err, "failed to restore snapshot")
			}
			printImportResult("restored from "+snap.DeviceID.String(), result)
			return nil
		},
	}
}
