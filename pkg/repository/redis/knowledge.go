package redis

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

// writeScript inserts a record, or in upsert mode replaces it when the incoming
// confidence is strictly greater. Running as one script makes the check and the
// write atomic.
//
// KEYS: record hash, insertion index (zset), sequence counter
// ARGV: id, question, answer, topic, confidence, source, created_at, mode
var writeScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'confidence')
if not current then
	local seq = redis.call('INCR', KEYS[3])
	redis.call('HSET', KEYS[1],
		'id', ARGV[1], 'question', ARGV[2], 'answer', ARGV[3], 'topic', ARGV[4],
		'confidence', ARGV[5], 'source', ARGV[6], 'created_at', ARGV[7])
	redis.call('ZADD', KEYS[2], seq, ARGV[1])
	return 'inserted'
end
if ARGV[8] == 'create' then
	return 'exists'
end
if tonumber(ARGV[5]) > tonumber(current) then
	redis.call('HSET', KEYS[1],
		'question', ARGV[2], 'answer', ARGV[3], 'topic', ARGV[4],
		'confidence', ARGV[5], 'source', ARGV[6])
	return 'updated'
end
return 'unchanged'
`)

const (
	modeCreate = "create"
	modeUpsert = "upsert"
)

type knowledgeRepository struct {
	client *redis.Client
	prefix string
}

func newKnowledgeRepository(client *redis.Client, prefix string) *knowledgeRepository {
	return &knowledgeRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *knowledgeRepository) recordKey(id model.KnowledgeID) string {
	return r.prefix + ":knowledge:" + string(id)
}

func (r *knowledgeRepository) indexKey() string {
	return r.prefix + ":knowledge:index"
}

func (r *knowledgeRepository) seqKey() string {
	return r.prefix + ":knowledge:seq"
}

func fromHash(fields map[string]string) (*model.Knowledge, error) {
	confidence, err := strconv.ParseFloat(fields["confidence"], 64)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid confidence field", goerr.V("value", fields["confidence"]))
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid created_at field", goerr.V("value", fields["created_at"]))
	}

	return &model.Knowledge{
		ID:         model.KnowledgeID(fields["id"]),
		Question:   fields["question"],
		Answer:     fields["answer"],
		Topic:      fields["topic"],
		Confidence: confidence,
		Source:     model.KnowledgeSource(fields["source"]),
		CreatedAt:  time.Unix(createdAt, 0).UTC(),
	}, nil
}

func (r *knowledgeRepository) write(ctx context.Context, knowledge *model.Knowledge, mode string) (*model.Knowledge, string, error) {
	k := knowledge.Copy()
	if k.ID == "" {
		k.ID = model.NewKnowledgeID()
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	k.CreatedAt = k.CreatedAt.UTC().Truncate(time.Second)

	keys := []string{r.recordKey(k.ID), r.indexKey(), r.seqKey()}
	outcome, err := writeScript.Run(ctx, r.client, keys,
		string(k.ID),
		k.Question,
		k.Answer,
		k.Topic,
		strconv.FormatFloat(k.Confidence, 'g', -1, 64),
		string(k.Source),
		strconv.FormatInt(k.CreatedAt.Unix(), 10),
		mode,
	).Text()
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to run knowledge write script", goerr.V("id", k.ID))
	}

	return k, outcome, nil
}

func (r *knowledgeRepository) Create(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error) {
	k, outcome, err := r.write(ctx, knowledge, modeCreate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create knowledge")
	}
	if outcome != string(model.UpsertInserted) {
		return nil, goerr.New("knowledge already exists", goerr.V("id", k.ID))
	}

	return k, nil
}

func (r *knowledgeRepository) Get(ctx context.Context, id model.KnowledgeID) (*model.Knowledge, error) {
	fields, err := r.client.HGetAll(ctx, r.recordKey(id)).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get knowledge", goerr.V("id", id))
	}
	if len(fields) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "knowledge not found", goerr.V("id", id))
	}

	k, err := fromHash(fields)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode knowledge", goerr.V("id", id))
	}
	return k, nil
}

// List loads records in insertion order with a single pipelined round trip
func (r *knowledgeRepository) List(ctx context.Context) ([]*model.Knowledge, error) {
	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read knowledge index")
	}
	if len(ids) == 0 {
		return []*model.Knowledge{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.recordKey(model.KnowledgeID(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to load knowledge records", goerr.V("count", len(ids)))
	}

	result := make([]*model.Knowledge, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		k, err := fromHash(fields)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode knowledge", goerr.V("id", ids[i]))
		}
		result = append(result, k)
	}

	return result, nil
}

func (r *knowledgeRepository) FindMatch(ctx context.Context, query string) (*model.Knowledge, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search knowledge")
	}

	q := strings.ToLower(query)
	for _, k := range all {
		if strings.Contains(strings.ToLower(k.Question), q) {
			return k, nil
		}
	}
	return nil, nil
}

func (r *knowledgeRepository) ListByTopic(ctx context.Context, topic string) ([]*model.Knowledge, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge by topic", goerr.V("topic", topic))
	}

	result := make([]*model.Knowledge, 0)
	for _, k := range all {
		if k.Topic == topic {
			result = append(result, k)
		}
	}
	return result, nil
}

func (r *knowledgeRepository) Upsert(ctx context.Context, knowledge *model.Knowledge) (model.UpsertResult, error) {
	if knowledge.ID == "" {
		return "", goerr.New("knowledge ID is required for upsert")
	}

	_, outcome, err := r.write(ctx, knowledge, modeUpsert)
	if err != nil {
		return "", goerr.Wrap(err, "failed to upsert knowledge")
	}

	switch result := model.UpsertResult(outcome); result {
	case model.UpsertInserted, model.UpsertUpdated, model.UpsertUnchanged:
		return result, nil
	default:
		return "", goerr.New("unexpected upsert outcome", goerr.V("outcome", outcome), goerr.V("id", knowledge.ID))
	}
}
