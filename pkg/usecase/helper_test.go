package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

var errStoreDown = errors.New("store is down")

// brokenRepository fails every operation
type brokenRepository struct{}

func (brokenRepository) Knowledge() interfaces.KnowledgeRepository { return brokenKnowledge{} }
func (brokenRepository) Close() error                              { return nil }

type brokenKnowledge struct{}

func (brokenKnowledge) Create(ctx context.Context, k *model.Knowledge) (*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) Get(ctx context.Context, id model.KnowledgeID) (*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) FindMatch(ctx context.Context, query string) (*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) List(ctx context.Context) ([]*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) ListByTopic(ctx context.Context, topic string) ([]*model.Knowledge, error) {
	return nil, errStoreDown
}
func (brokenKnowledge) Upsert(ctx context.Context, k *model.Knowledge) (model.UpsertResult, error) {
	return "", errStoreDown
}

// flakyRepository wraps a repository and fails Upsert for one ID
type flakyRepository struct {
	interfaces.Repository
	failID model.KnowledgeID
}

func (r *flakyRepository) Knowledge() interfaces.KnowledgeRepository {
	return &flakyKnowledge{KnowledgeRepository: r.Repository.Knowledge(), failID: r.failID}
}

type flakyKnowledge struct {
	interfaces.KnowledgeRepository
	failID model.KnowledgeID
}

func (k *flakyKnowledge) Upsert(ctx context.Context, knowledge *model.Knowledge) (model.UpsertResult, error) {
	if knowledge.ID == k.failID {
		return "", errStoreDown
	}
	return k.KnowledgeRepository.Upsert(ctx, knowledge)
}

// stubMatcher returns a fixed candidate
type stubMatcher struct {
	match *model.Knowledge
	calls atomic.Int32
}

func (m *stubMatcher) FindMatch(ctx context.Context, query string) (*model.Knowledge, error) {
	m.calls.Add(1)
	return m.match, nil
}

// stubPeer serves a fixed bundle or error
type stubPeer struct {
	name   string
	bundle *model.SyncBundle
	err    error
}

func (p *stubPeer) Name() string { return p.name }

func (p *stubPeer) Export(ctx context.Context) (*model.SyncBundle, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.bundle, nil
}

func ptr[T any](v T) *T {
	return &v
}
