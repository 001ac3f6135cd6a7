package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// KnowledgeCollection is the collection name without prefix
const KnowledgeCollection = "knowledge"

// knowledgeDoc is the Firestore document representation of model.Knowledge.
// InsertedAt is set by the server on first write and defines enumeration order.
type knowledgeDoc struct {
	ID         model.KnowledgeID `firestore:"ID"`
	Question   string            `firestore:"Question"`
	Answer     string            `firestore:"Answer"`
	Topic      string            `firestore:"Topic"`
	Confidence float64           `firestore:"Confidence"`
	Source     string            `firestore:"Source"`
	CreatedAt  time.Time         `firestore:"CreatedAt"`
	InsertedAt time.Time         `firestore:"InsertedAt,serverTimestamp"`
}

func toKnowledgeDoc(k *model.Knowledge) *knowledgeDoc {
	return &knowledgeDoc{
		ID:         k.ID,
		Question:   k.Question,
		Answer:     k.Answer,
		Topic:      k.Topic,
		Confidence: k.Confidence,
		Source:     string(k.Source),
		CreatedAt:  k.CreatedAt,
	}
}

func docToKnowledge(doc *firestore.DocumentSnapshot) (*model.Knowledge, error) {
	var d knowledgeDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Knowledge{
		ID:         d.ID,
		Question:   d.Question,
		Answer:     d.Answer,
		Topic:      d.Topic,
		Confidence: d.Confidence,
		Source:     model.KnowledgeSource(d.Source),
		CreatedAt:  d.CreatedAt.UTC(),
	}, nil
}

type knowledgeRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newKnowledgeRepository(client *firestore.Client) *knowledgeRepository {
	return &knowledgeRepository{
		client: client,
	}
}

func (r *knowledgeRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + KnowledgeCollection)
	}
	return r.client.Collection(KnowledgeCollection)
}

func (r *knowledgeRepository) docRef(id model.KnowledgeID) (*firestore.DocumentRef, error) {
	ref := r.collection().Doc(string(id))
	if ref == nil {
		return nil, goerr.New("invalid knowledge ID for firestore document", goerr.V("id", id))
	}
	return ref, nil
}

func prepareInsert(knowledge *model.Knowledge) *model.Knowledge {
	k := knowledge.Copy()
	if k.ID == "" {
		k.ID = model.NewKnowledgeID()
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	k.CreatedAt = k.CreatedAt.UTC().Truncate(time.Second)
	return k
}

func (r *knowledgeRepository) Create(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error) {
	k := prepareInsert(knowledge)

	ref, err := r.docRef(k.ID)
	if err != nil {
		return nil, err
	}
	if _, err := ref.Create(ctx, toKnowledgeDoc(k)); err != nil {
		return nil, goerr.Wrap(err, "failed to create knowledge", goerr.V("id", k.ID))
	}

	return k, nil
}

func (r *knowledgeRepository) Get(ctx context.Context, id model.KnowledgeID) (*model.Knowledge, error) {
	ref, err := r.docRef(id)
	if err != nil {
		return nil, err
	}

	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "knowledge not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get knowledge", goerr.V("id", id))
	}

	k, err := docToKnowledge(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal knowledge", goerr.V("id", id))
	}
	return k, nil
}

func (r *knowledgeRepository) each(ctx context.Context, query firestore.Query, fn func(k *model.Knowledge) bool) error {
	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate knowledge")
		}

		k, err := docToKnowledge(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to unmarshal knowledge", goerr.V("doc", doc.Ref.ID))
		}
		if !fn(k) {
			return nil
		}
	}
}

func (r *knowledgeRepository) FindMatch(ctx context.Context, query string) (*model.Knowledge, error) {
	q := strings.ToLower(query)

	var found *model.Knowledge
	err := r.each(ctx, r.collection().OrderBy("InsertedAt", firestore.Asc), func(k *model.Knowledge) bool {
		if strings.Contains(strings.ToLower(k.Question), q) {
			found = k
			return false
		}
		return true
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search knowledge")
	}

	return found, nil
}

func (r *knowledgeRepository) List(ctx context.Context) ([]*model.Knowledge, error) {
	result := make([]*model.Knowledge, 0)
	err := r.each(ctx, r.collection().OrderBy("InsertedAt", firestore.Asc), func(k *model.Knowledge) bool {
		result = append(result, k)
		return true
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge")
	}
	return result, nil
}

func (r *knowledgeRepository) ListByTopic(ctx context.Context, topic string) ([]*model.Knowledge, error) {
	query := r.collection().Where("Topic", "==", topic).OrderBy("InsertedAt", firestore.Asc)

	result := make([]*model.Knowledge, 0)
	err := r.each(ctx, query, func(k *model.Knowledge) bool {
		result = append(result, k)
		return true
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge by topic", goerr.V("topic", topic))
	}
	return result, nil
}

func (r *knowledgeRepository) Upsert(ctx context.Context, knowledge *model.Knowledge) (model.UpsertResult, error) {
	if knowledge.ID == "" {
		return "", goerr.New("knowledge ID is required for upsert")
	}
	k := prepareInsert(knowledge)

	ref, err := r.docRef(k.ID)
	if err != nil {
		return "", err
	}

	var result model.UpsertResult
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				result = model.UpsertInserted
				return tx.Create(ref, toKnowledgeDoc(k))
			}
			return goerr.Wrap(err, "failed to get knowledge in transaction")
		}

		var current knowledgeDoc
		if err := doc.DataTo(&current); err != nil {
			return goerr.Wrap(err, "failed to unmarshal knowledge in transaction")
		}

		if k.Confidence <= current.Confidence {
			result = model.UpsertUnchanged
			return nil
		}

		result = model.UpsertUpdated
		return tx.Update(ref, []firestore.Update{
			{Path: "Question", Value: k.Question},
			{Path: "Answer", Value: k.Answer},
			{Path: "Topic", Value: k.Topic},
			{Path: "Confidence", Value: k.Confidence},
			{Path: "Source", Value: string(k.Source)},
		})
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to upsert knowledge", goerr.V("id", k.ID))
	}

	return result, nil
}
