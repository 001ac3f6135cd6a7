package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/utils/logging"
)

// SnapshotUseCase archives exports and restores them through the sync path,
// for exchanging knowledge between devices that never share a network
type SnapshotUseCase struct {
	sync    *SyncUseCase
	storage interfaces.SnapshotStorage
	now     func() time.Time
}

func NewSnapshotUseCase(sync *SyncUseCase, storage interfaces.SnapshotStorage, now func() time.Time) *SnapshotUseCase {
	return &SnapshotUseCase{
		sync:    sync,
		storage: storage,
		now:     now,
	}
}

// DefaultSnapshotName returns <device>-<UTC timestamp>.json
func DefaultSnapshotName(deviceID model.DeviceID, at time.Time) string {
	return deviceID.String() + "-" + at.UTC().Format("20060102T150405Z") + ".json"
}

// Save exports the store and writes it under name. An empty name selects DefaultSnapshotName.
func (uc *SnapshotUseCase) Save(ctx context.Context, name string) (string, *model.Snapshot, error) {
	if uc.storage == nil {
		return "", nil, goerr.Wrap(ErrSnapshotUnavailable, "cannot save snapshot")
	}

	bundle, err := uc.sync.Export(ctx)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to export for snapshot")
	}

	snap := &model.Snapshot{
		DeviceID:  bundle.DeviceID,
		CreatedAt: uc.now().UTC().Truncate(time.Second),
		Packets:   bundle.Packets,
	}
	if name == "" {
		name = DefaultSnapshotName(snap.DeviceID, snap.CreatedAt)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to encode snapshot")
	}

	if err := uc.storage.Put(ctx, name, data); err != nil {
		return "", nil, goerr.Wrap(err, "failed to store snapshot", goerr.V("name", name))
	}

	logging.From(ctx).Info("Snapshot saved",
		slog.String("name", name),
		slog.Int("packets", len(snap.Packets)))

	return name, snap, nil
}

// Restore imports the snapshot stored under name with the snapshot's device ID as peer
func (uc *SnapshotUseCase) Restore(ctx context.Context, name string) (*model.Snapshot, model.ImportResult, error) {
	if uc.storage == nil {
		return nil, model.ImportResult{}, goerr.Wrap(ErrSnapshotUnavailable, "cannot restore snapshot")
	}
	if name == "" {
		return nil, model.ImportResult{}, goerr.Wrap(ErrValidation, "snapshot name is required")
	}

	data, err := uc.storage.Get(ctx, name)
	if err != nil {
		return nil, model.ImportResult{}, goerr.Wrap(err, "failed to load snapshot", goerr.V("name", name))
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, model.ImportResult{}, goerr.Wrap(ErrValidation, "snapshot is not valid JSON",
			goerr.V("name", name), goerr.V("error", err.Error()))
	}

	result, err := uc.sync.Import(ctx, snap.DeviceID, snap.Packets.Pointers())
	if err != nil {
		return &snap, result, goerr.Wrap(err, "failed to import snapshot", goerr.V("name", name))
	}

	return &snap, result, nil
}
