package usecase

import (
	"time"

	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/service/intent"
	"github.com/secmon-lab/zia/pkg/service/metrics"
	"github.com/secmon-lab/zia/pkg/service/rules"
	"github.com/secmon-lab/zia/pkg/service/similarity"
)

type UseCases struct {
	repo              interfaces.Repository
	deviceID          model.DeviceID
	matcher           interfaces.Matcher
	detector          interfaces.IntentDetector
	fallback          interfaces.FallbackResponder
	scorer            *similarity.Scorer
	metrics           *metrics.Collector
	defaultConfidence float64
	snapshots         interfaces.SnapshotStorage
	now               func() time.Time

	Knowledge *KnowledgeUseCase
	Ask       *AskUseCase
	Sync      *SyncUseCase
	Snapshot  *SnapshotUseCase
}

type Option func(*UseCases)

// WithDeviceID sets the identity attached to exports. Without it a new one
// is generated for the lifetime of the process.
func WithDeviceID(id model.DeviceID) Option {
	return func(uc *UseCases) {
		uc.deviceID = id
	}
}

// WithMatcher replaces the store's substring lookup used by Ask
func WithMatcher(m interfaces.Matcher) Option {
	return func(uc *UseCases) {
		uc.matcher = m
	}
}

func WithIntentDetector(d interfaces.IntentDetector) Option {
	return func(uc *UseCases) {
		uc.detector = d
	}
}

func WithFallbackResponder(f interfaces.FallbackResponder) Option {
	return func(uc *UseCases) {
		uc.fallback = f
	}
}

func WithScorer(s *similarity.Scorer) Option {
	return func(uc *UseCases) {
		uc.scorer = s
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

func WithDefaultConfidence(c float64) Option {
	return func(uc *UseCases) {
		uc.defaultConfidence = c
	}
}

func WithSnapshotStorage(s interfaces.SnapshotStorage) Option {
	return func(uc *UseCases) {
		uc.snapshots = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:              repo,
		defaultConfidence: model.DefaultConfidence,
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.deviceID == "" {
		uc.deviceID = model.NewDeviceID()
	}
	if uc.matcher == nil {
		uc.matcher = repo.Knowledge()
	}
	if uc.detector == nil {
		uc.detector = intent.New()
	}
	if uc.fallback == nil {
		uc.fallback = rules.Default()
	}
	if uc.scorer == nil {
		uc.scorer = similarity.Default()
	}

	uc.Knowledge = NewKnowledgeUseCase(repo, uc.defaultConfidence, uc.metrics)
	uc.Ask = NewAskUseCase(uc.matcher, uc.detector, uc.fallback, uc.scorer, uc.metrics)
	uc.Sync = NewSyncUseCase(repo, uc.deviceID, uc.metrics, uc.now)
	uc.Snapshot = NewSnapshotUseCase(uc.Sync, uc.snapshots, uc.now)

	return uc
}

// DeviceID returns the identity this instance exports under
func (uc *UseCases) DeviceID() model.DeviceID {
	return uc.deviceID
}
