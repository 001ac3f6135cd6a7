package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/cli/config"
	httpctrl "github.com/secmon-lab/zia/pkg/controller/http"
	"github.com/secmon-lab/zia/pkg/service/metrics"
	"github.com/secmon-lab/zia/pkg/service/worker"
	"github.com/secmon-lab/zia/pkg/usecase"
	"github.com/secmon-lab/zia/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var enableMetrics bool
	var core coreConfig
	var peerCfg config.Peer
	var snapCfg config.Snapshot
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":5000",
			Sources:     cli.EnvVars("ZIA_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics on /metrics",
			Value:       true,
			Sources:     cli.EnvVars("ZIA_METRICS"),
			Destination: &enableMetrics,
		},
	}

	// Add shared config flags
	flags = append(flags, core.Flags()...)
	flags = append(flags, peerCfg.Flags()...)
	flags = append(flags, snapCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			clients, err := peerCfg.Configure()
			if err != nil {
				return err
			}

			storage, closeStorage, err := snapCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closeStorage()

			var collector *metrics.Collector
			if enableMetrics {
				collector = metrics.New()
			}

			ucOpts := []usecase.Option{usecase.WithMetrics(collector)}
			if storage != nil {
				ucOpts = append(ucOpts, usecase.WithSnapshotStorage(storage))
			}

			uc, _, closeRepo, err := core.Configure(ctx, ucOpts...)
			if err != nil {
				return err
			}
			defer closeRepo()

			logging.Default().Info("Server configuration",
				"repository", core.repo,
				"assistant", core.assistant,
				"device_id", uc.DeviceID(),
				"peers", peerCfg,
				"snapshot", snapCfg,
				"sentry", sentryCfg,
			)

			var peerWorker *worker.PeerSyncWorker
			if len(clients) > 0 && peerCfg.Interval() > 0 {
				peerWorker = worker.NewPeerSyncWorker(uc.Sync, config.PeerClients(clients), peerCfg.Interval())
				if err := peerWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start peer sync worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithMetrics(collector)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "metrics", enableMetrics)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			stopWorker := func() {
				if peerWorker != nil {
					peerWorker.Stop()
				}
			}

			select {
			case err := <-errCh:
				stopWorker()
				return err
			case <-ctx.Done():
				logging.Default().Info("Context cancelled")
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
			}

			stopWorker()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
