package snapshot

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/utils/safe"
)

// GCS stores snapshots as objects in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.SnapshotStorage = &GCS{}

type GCSOption func(*GCS)

// WithObjectPrefix places objects under prefix, e.g. "zia/snapshots/"
func WithObjectPrefix(prefix string) GCSOption {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

// NewGCS creates a GCS backed storage using application default credentials
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("snapshot bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	g := &GCS{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GCS) object(name string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(g.prefix + name)
}

func (g *GCS) Put(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	w := g.object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write snapshot object",
			goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize snapshot object",
			goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	return nil
}

func (g *GCS) Get(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	r, err := g.object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "snapshot object does not exist",
				goerr.V("bucket", g.bucket), goerr.V("name", name))
		}
		return nil, goerr.Wrap(err, "failed to open snapshot object",
			goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read snapshot object",
			goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	return data, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
