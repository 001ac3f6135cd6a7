package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/cli/config"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		repo func(t *testing.T) *config.Repository
	}{
		{
			name: "sqlite",
			repo: func(t *testing.T) *config.Repository {
				return config.NewRepositoryForTest(config.BackendSQLite, filepath.Join(t.TempDir(), "zia.db"), "")
			},
		},
		{
			name: "memory",
			repo: func(t *testing.T) *config.Repository {
				return config.NewRepositoryForTest(config.BackendMemory, "", "")
			},
		},
		{
			name: "redis",
			repo: func(t *testing.T) *config.Repository {
				mr := miniredis.RunT(t)
				return config.NewRepositoryForTest(config.BackendRedis, "", mr.Addr())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := tt.repo(t).Configure(ctx)
			gt.NoError(t, err).Required()
			defer func() { _ = repo.Close() }()

			created, err := repo.Knowledge().Create(ctx, &model.Knowledge{
				Question:   "where is water",
				Answer:     "tank behind the hall",
				Confidence: 0.5,
				Source:     model.SourceLocal,
			})
			gt.NoError(t, err).Required()

			got, err := repo.Knowledge().Get(ctx, created.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, got.Answer).Equal("tank behind the hall")
		})
	}
}

func TestRepositoryConfigureErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("mysql", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("redis without address", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendRedis, "", "").Configure(ctx)
		gt.Value(t, err).NotNil()
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore, "", "").Configure(ctx)
		gt.Value(t, err).NotNil()
	})
}
