package interfaces

import (
	"context"

	"github.com/secmon-lab/zia/pkg/domain/model"
)

// Matcher finds a stored record answering query. It returns (nil, nil) when nothing matches.
type Matcher interface {
	FindMatch(ctx context.Context, query string) (*model.Knowledge, error)
}

// KnowledgeRepository defines the interface for Knowledge data persistence.
// Enumeration order is insertion order in every implementation.
type KnowledgeRepository interface {
	Matcher

	// Create stores a new record. An empty ID is generated and a zero CreatedAt becomes now.
	Create(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error)

	// Get retrieves a record by ID
	Get(ctx context.Context, id model.KnowledgeID) (*model.Knowledge, error)

	// List returns every record
	List(ctx context.Context) ([]*model.Knowledge, error)

	// ListByTopic returns records with the given topic
	ListByTopic(ctx context.Context, topic string) ([]*model.Knowledge, error)

	// Upsert inserts the record when its ID is absent. When present, question, answer,
	// topic, confidence and source are replaced only if the incoming confidence is
	// strictly greater; CreatedAt is never changed. The comparison and write are atomic.
	Upsert(ctx context.Context, knowledge *model.Knowledge) (model.UpsertResult, error)
}
