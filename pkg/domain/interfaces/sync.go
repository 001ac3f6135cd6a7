package interfaces

import (
	"context"

	"github.com/secmon-lab/zia/pkg/domain/model"
)

// PeerClient talks to another instance's sync endpoints
type PeerClient interface {
	// Name identifies the peer in logs and results
	Name() string
	Export(ctx context.Context) (*model.SyncBundle, error)
}

// SnapshotStorage stores archived exports by name
type SnapshotStorage interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}
