package redis

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = goerr.New("not found")

const defaultKeyPrefix = "zia"

// Redis is a repository storing each record as a hash, shared by every
// instance pointing at the same server
type Redis struct {
	client    *redis.Client
	knowledge *knowledgeRepository
}

var _ interfaces.Repository = &Redis{}

type Option func(*Redis)

// WithKeyPrefix namespaces every key, so several stores can share one server
func WithKeyPrefix(prefix string) Option {
	return func(r *Redis) {
		r.knowledge.prefix = prefix
	}
}

// New connects to the server described by opts and verifies it is reachable
func New(ctx context.Context, opts *redis.Options, options ...Option) (*Redis, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", opts.Addr))
	}

	r := &Redis{
		client:    client,
		knowledge: newKnowledgeRepository(client, defaultKeyPrefix),
	}
	for _, opt := range options {
		opt(r)
	}

	return r, nil
}

func (r *Redis) Knowledge() interfaces.KnowledgeRepository {
	return r.knowledge
}

func (r *Redis) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
