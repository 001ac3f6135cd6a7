package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/service/metrics"
	"github.com/secmon-lab/zia/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentPulls bounds how many peers are contacted at once
const maxConcurrentPulls = 4

// SyncUseCase exchanges knowledge with peers as packets
type SyncUseCase struct {
	repo     interfaces.Repository
	deviceID model.DeviceID
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewSyncUseCase(repo interfaces.Repository, deviceID model.DeviceID, m *metrics.Collector, now func() time.Time) *SyncUseCase {
	return &SyncUseCase{
		repo:     repo,
		deviceID: deviceID,
		metrics:  m,
		now:      now,
	}
}

func (uc *SyncUseCase) DeviceID() model.DeviceID {
	return uc.deviceID
}

// Export projects every stored record into a packet. It does not modify the store.
func (uc *SyncUseCase) Export(ctx context.Context) (*model.SyncBundle, error) {
	list, err := uc.repo.Knowledge().List(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to list knowledge for export")
	}

	packets := make([]model.KnowledgePacket, 0, len(list))
	for _, k := range list {
		packets = append(packets, k.ToPacket())
	}

	return &model.SyncBundle{
		DeviceID: uc.deviceID,
		Packets:  packets,
	}, nil
}

// Import merges packets received from peerID in order. A nil element stands
// for an element that could not be decoded. Invalid packets and per-packet
// storage failures are counted and never abort the batch. An error is
// returned only when every valid packet failed to be written, which means
// the store itself is unavailable.
func (uc *SyncUseCase) Import(ctx context.Context, peerID model.DeviceID, packets []*model.KnowledgePacket) (model.ImportResult, error) {
	logger := logging.From(ctx)
	peerID = model.DeviceID(strings.TrimSpace(string(peerID)))
	now := uc.now()

	var (
		result  model.ImportResult
		lastErr error
	)
	for i, pkt := range packets {
		if pkt == nil {
			logger.Debug("Skipping undecodable packet", slog.Int("index", i))
			result.Skipped++
			result.Invalid++
			continue
		}
		if err := pkt.Validate(); err != nil {
			logger.Debug("Skipping invalid packet", slog.Int("index", i), slog.Any("error", err))
			result.Skipped++
			result.Invalid++
			continue
		}

		outcome, err := uc.repo.Knowledge().Upsert(ctx, pkt.ToKnowledge(peerID, now))
		if err != nil {
			logger.Warn("Failed to merge packet",
				slog.String(KnowledgeIDKey, pkt.ID.String()),
				slog.Any("error", err))
			result.Skipped++
			result.Failed++
			lastErr = err
			continue
		}

		logger.Debug("Packet merged",
			slog.String(KnowledgeIDKey, pkt.ID.String()),
			slog.String("outcome", string(outcome)))
		if outcome.Merged() {
			result.Merged++
		} else {
			result.Skipped++
		}
	}

	uc.metrics.ObserveImport(result)
	logger.Info("Sync import completed",
		slog.String("peer", peerID.String()),
		slog.Int("received", len(packets)),
		slog.Int("merged", result.Merged),
		slog.Int("skipped", result.Skipped),
		slog.Int("invalid", result.Invalid),
		slog.Int("failed", result.Failed))

	if result.Failed > 0 && result.Failed == len(packets)-result.Invalid {
		return result, persistenceError(lastErr, "every packet failed to be stored",
			goerr.V(DeviceIDKey, peerID), goerr.V("failed", result.Failed))
	}

	return result, nil
}

// Pull fetches each peer's export and imports it under the peer's device ID.
// A failing peer is reported in its result and does not affect the others.
func (uc *SyncUseCase) Pull(ctx context.Context, peers []interfaces.PeerClient) []model.PullResult {
	results := make([]model.PullResult, len(peers))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentPulls)

	for i, p := range peers {
		eg.Go(func() error {
			results[i] = uc.pullOne(ctx, p)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

func (uc *SyncUseCase) pullOne(ctx context.Context, p interfaces.PeerClient) model.PullResult {
	logger := logging.From(ctx).With(slog.String(PeerKey, p.Name()))
	res := model.PullResult{Peer: p.Name()}

	bundle, err := p.Export(ctx)
	if err != nil {
		res.Err = goerr.Wrap(err, "failed to export from peer", goerr.V(PeerKey, p.Name()))
		logger.Warn("Peer pull failed", slog.Any("error", res.Err))
		uc.metrics.ObservePeerPull(res.Err)
		return res
	}
	res.DeviceID = bundle.DeviceID

	res.Result, err = uc.Import(logging.With(ctx, logger), bundle.DeviceID, bundle.Packets.Pointers())
	if err != nil {
		res.Err = goerr.Wrap(err, "failed to import from peer", goerr.V(PeerKey, p.Name()))
	}
	uc.metrics.ObservePeerPull(res.Err)

	return res
}
