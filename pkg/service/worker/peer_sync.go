package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/utils/logging"
)

// Puller imports the exports of a set of peers
type Puller interface {
	Pull(ctx context.Context, peers []interfaces.PeerClient) []model.PullResult
}

// PeerSyncWorker periodically pulls knowledge from a fixed set of peers
//
// Architecture assumptions:
// - Peers are configured up front (no discovery)
// - A failing peer is retried on the next tick only
type PeerSyncWorker struct {
	puller   Puller
	peers    []interfaces.PeerClient
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewPeerSyncWorker creates a new worker pulling from peers every interval
func NewPeerSyncWorker(puller Puller, peers []interfaces.PeerClient, interval time.Duration) *PeerSyncWorker {
	return &PeerSyncWorker{
		puller:   puller,
		peers:    peers,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sync loop
// - The first pull runs immediately in the background goroutine
// - Does not block server startup
func (w *PeerSyncWorker) Start(ctx context.Context) error {
	logging.Default().Info("Peer sync worker starting",
		"interval", w.interval.String(),
		"peers", len(w.peers))

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *PeerSyncWorker) Stop() {
	logging.Default().Info("Peer sync worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Peer sync worker stopped")
}

func (w *PeerSyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.sync(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sync(ctx)

		case <-w.stopCh:
			logging.Default().Info("Peer sync worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Peer sync worker context cancelled")
			return
		}
	}
}

// sync performs a single pull cycle. Peer failures are logged and retried next interval.
func (w *PeerSyncWorker) sync(ctx context.Context) {
	startTime := time.Now()

	var merged, failedPeers int
	for _, r := range w.puller.Pull(ctx, w.peers) {
		if r.Err != nil {
			failedPeers++
			logging.Default().Error("Peer sync failed (will retry next interval)",
				"peer", r.Peer,
				"error", r.Err.Error())
			continue
		}
		merged += r.Result.Merged
	}

	logging.Default().Info("Peer sync completed",
		"peers", len(w.peers),
		"failed_peers", failedPeers,
		"merged", merged,
		"duration", time.Since(startTime).String())
}
