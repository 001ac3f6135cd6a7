package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

type knowledgeRepository struct {
	mu        sync.RWMutex
	knowledge map[model.KnowledgeID]*model.Knowledge
	order     []model.KnowledgeID
}

func newKnowledgeRepository() *knowledgeRepository {
	return &knowledgeRepository{
		knowledge: make(map[model.KnowledgeID]*model.Knowledge),
	}
}

// insert must be called with mu held
func (r *knowledgeRepository) insert(k *model.Knowledge) *model.Knowledge {
	created := k.Copy()
	if created.ID == "" {
		created.ID = model.NewKnowledgeID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	created.CreatedAt = created.CreatedAt.UTC().Truncate(time.Second)

	r.knowledge[created.ID] = created
	r.order = append(r.order, created.ID)
	return created.Copy()
}

func (r *knowledgeRepository) Create(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if knowledge.ID != "" {
		if _, exists := r.knowledge[knowledge.ID]; exists {
			return nil, goerr.New("knowledge already exists", goerr.V("id", knowledge.ID))
		}
	}

	return r.insert(knowledge), nil
}

func (r *knowledgeRepository) Get(ctx context.Context, id model.KnowledgeID) (*model.Knowledge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, exists := r.knowledge[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "knowledge not found", goerr.V("id", id))
	}

	return k.Copy(), nil
}

func (r *knowledgeRepository) FindMatch(ctx context.Context, query string) (*model.Knowledge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	for _, id := range r.order {
		k := r.knowledge[id]
		if strings.Contains(strings.ToLower(k.Question), q) {
			return k.Copy(), nil
		}
	}

	return nil, nil
}

func (r *knowledgeRepository) List(ctx context.Context) ([]*model.Knowledge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Knowledge, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.knowledge[id].Copy())
	}

	return result, nil
}

func (r *knowledgeRepository) ListByTopic(ctx context.Context, topic string) ([]*model.Knowledge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Knowledge, 0)
	for _, id := range r.order {
		if k := r.knowledge[id]; k.Topic == topic {
			result = append(result, k.Copy())
		}
	}

	return result, nil
}

func (r *knowledgeRepository) Upsert(ctx context.Context, knowledge *model.Knowledge) (model.UpsertResult, error) {
	if knowledge.ID == "" {
		return "", goerr.New("knowledge ID is required for upsert")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.knowledge[knowledge.ID]
	if !exists {
		r.insert(knowledge)
		return model.UpsertInserted, nil
	}

	if knowledge.Confidence <= existing.Confidence {
		return model.UpsertUnchanged, nil
	}

	existing.Question = knowledge.Question
	existing.Answer = knowledge.Answer
	existing.Topic = knowledge.Topic
	existing.Confidence = knowledge.Confidence
	existing.Source = knowledge.Source
	return model.UpsertUpdated, nil
}
