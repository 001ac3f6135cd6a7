package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/cli/config"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdSync() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Exchange knowledge with other devices",
		Commands: []*cli.Command{
			cmdSyncExport(),
			cmdSyncImport(),
			cmdSyncPull(),
			cmdSyncPush(),
		},
	}
}

func cmdSyncExport() *cli.Command {
	var core coreConfig
	var path string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Write the bundle to this file instead of stdout",
			Destination: &path,
		},
	}
	flags = append(flags, core.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Write every record as a sync bundle (JSON)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, _, closer, err := core.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			bundle, err := uc.Sync.Export(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to export")
			}

			w := output
			if path != "" {
				f, err := os.Create(path) // #nosec G304 - path is provided by CLI argument
				if err != nil {
					return goerr.Wrap(err, "failed to create output file", goerr.V("path", path))
				}
				defer safe.Close(ctx, f)
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(bundle); err != nil {
				return goerr.Wrap(err, "failed to write bundle")
			}
			return nil
		},
	}
}

func readBundle(path string) (*model.SyncBundle, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path) // #nosec G304 - path is provided by CLI argument
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open bundle", goerr.V("path", path))
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var bundle model.SyncBundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, goerr.Wrap(err, "failed to decode bundle", goerr.V("path", path))
	}
	return &bundle, nil
}

func cmdSyncImport() *cli.Command {
	var core coreConfig
	var path string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Bundle file produced by 'sync export' (- for stdin)",
			Required:    true,
			Destination: &path,
		},
	}
	flags = append(flags, core.Flags()...)

	return &cli.Command{
		Name:  "import",
		Usage: "Merge a sync bundle; higher confidence wins",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			bundle, err := readBundle(path)
			if err != nil {
				return err
			}

			uc, _, closer, err := core.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			result, err := uc.Sync.Import(ctx, bundle.DeviceID, bundle.Packets.Pointers())
			if err != nil {
				return goerr.Wrap(err, "failed to import bundle")
			}
			printImportResult("imported", result)
			return nil
		},
	}
}

func cmdSyncPull() *cli.Command {
	var core coreConfig
	var peerCfg config.Peer

	flags := append(core.Flags(), peerCfg.Flags()...)

	return &cli.Command{
		Name:  "pull",
		Usage: "Fetch and merge the knowledge of every peer once",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			clients, err := peerCfg.Configure()
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				return goerr.Wrap(config.ErrInvalidConfig, "at least one --peer is required")
			}

			uc, _, closer, err := core.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			var failed int
			for _, r := range uc.Sync.Pull(ctx, config.PeerClients(clients)) {
				printPullResult(r)
				if r.Err != nil {
					failed++
				}
			}
			if failed == len(clients) {
				return goerr.New("every peer failed", goerr.V("peers", len(clients)))
			}
			return nil
		},
	}
}

func cmdSyncPush() *cli.Command {
	var core coreConfig
	var peerCfg config.Peer

	flags := append(core.Flags(), peerCfg.Flags()...)

	return &cli.Command{
		Name:  "push",
		Usage: "Send this device's knowledge to every peer",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			clients, err := peerCfg.Configure()
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				return goerr.Wrap(config.ErrInvalidConfig, "at least one --peer is required")
			}

			uc, _, closer, err := core.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			bundle, err := uc.Sync.Export(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to export")
			}

			var failed int
			for _, client := range clients {
				resp, err := client.Push(ctx, bundle)
				if err != nil {
					failed++
					printPullResult(model.PullResult{Peer: client.Name(), Err: err})
					continue
				}
				printImportResult(client.Name(), model.ImportResult{
					Merged:  resp.Merged,
					Skipped: resp.Skipped,
					Invalid: resp.Invalid,
				})
			}
			if failed == len(clients) {
				return goerr.New("every peer failed", goerr.V("peers", len(clients)))
			}
			return nil
		},
	}
}
