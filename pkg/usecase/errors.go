package usecase

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	// ErrValidation marks missing or malformed caller input
	ErrValidation = errors.New("invalid request")

	// ErrPersistence marks a failure of the underlying store
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidPacket marks a sync packet that was counted as invalid
	ErrInvalidPacket = model.ErrInvalidPacket

	// ErrSnapshotUnavailable is returned when no snapshot storage is configured
	ErrSnapshotUnavailable = errors.New("snapshot storage is not configured")
)

// Context keys for error values
const (
	KnowledgeIDKey = "knowledge_id"
	DeviceIDKey    = "device_id"
	PeerKey        = "peer"
)

// persistenceError keeps both ErrPersistence and the backend error reachable by errors.Is
func persistenceError(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(fmt.Errorf("%w: %w", ErrPersistence, err), msg, opts...)
}
