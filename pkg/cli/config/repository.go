package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/repository/firestore"
	"github.com/secmon-lab/zia/pkg/repository/memory"
	"github.com/secmon-lab/zia/pkg/repository/redis"
	"github.com/secmon-lab/zia/pkg/repository/sqlite"
	"github.com/secmon-lab/zia/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"
	BackendRedis     = "redis"
	BackendFirestore = "firestore"
)

// DefaultSQLitePath returns the database path used when none is configured
func DefaultSQLitePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "zia", "zia.db")
	}
	return filepath.Join(".", "zia.db")
}

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend string

	sqlitePath string

	redisAddr     string
	redisPassword string `masq:"secret"`
	redisDB       int
	redisPrefix   string

	projectID  string
	databaseID string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (sqlite, memory, redis or firestore)",
			Category:    "Repository",
			Value:       BackendSQLite,
			Sources:     cli.EnvVars("ZIA_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file path",
			Category:    "Repository",
			Value:       DefaultSQLitePath(),
			Sources:     cli.EnvVars("ZIA_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis server address (required when using redis backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ZIA_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Repository",
			Sources:     cli.EnvVars("ZIA_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Repository",
			Sources:     cli.EnvVars("ZIA_REDIS_DB"),
			Destination: &r.redisDB,
		},
		&cli.StringFlag{
			Name:        "redis-key-prefix",
			Usage:       "Prefix of every Redis key",
			Category:    "Repository",
			Value:       "zia",
			Sources:     cli.EnvVars("ZIA_REDIS_KEY_PREFIX"),
			Destination: &r.redisPrefix,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ZIA_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("ZIA_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

func (r Repository) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("backend", r.backend)}
	switch r.backend {
	case BackendSQLite:
		attrs = append(attrs, slog.String("path", r.sqlitePath))
	case BackendRedis:
		attrs = append(attrs, slog.String("addr", r.redisAddr), slog.Int("db", r.redisDB))
	case BackendFirestore:
		attrs = append(attrs, slog.String("project_id", r.projectID), slog.String("database_id", r.databaseID))
	}
	return slog.GroupValue(attrs...)
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendSQLite, "":
		path := r.sqlitePath
		if path == "" {
			path = DefaultSQLitePath()
		}
		repo, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", path)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (data is lost on exit)")
		return memory.New(), nil

	case BackendRedis:
		if r.redisAddr == "" {
			return nil, goerr.New("redis-addr is required when using redis backend")
		}
		repo, err := redis.New(ctx, &goredis.Options{
			Addr:     r.redisAddr,
			Password: r.redisPassword,
			DB:       r.redisDB,
		}, redis.WithKeyPrefix(r.redisPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis repository")
		}
		logging.Default().Info("Using Redis repository", "addr", r.redisAddr, "db", r.redisDB)
		return repo, nil

	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
