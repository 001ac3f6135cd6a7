package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/service/snapshot"
)

func runSnapshotStorageTest(t *testing.T, newStorage func(t *testing.T) interfaces.SnapshotStorage) {
	t.Helper()

	t.Run("Put then Get returns the same bytes", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()
		name := "snap-" + time.Now().Format("20060102150405.000000000") + ".json"

		gt.NoError(t, s.Put(ctx, name, []byte(`{"device_id":"a"}`))).Required()
		data, err := s.Get(ctx, name)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal(`{"device_id":"a"}`)
	})

	t.Run("Put overwrites existing snapshot", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()
		name := "overwrite-" + time.Now().Format("20060102150405.000000000") + ".json"

		gt.NoError(t, s.Put(ctx, name, []byte("first"))).Required()
		gt.NoError(t, s.Put(ctx, name, []byte("second"))).Required()
		data, err := s.Get(ctx, name)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("second")
	})

	t.Run("Get missing snapshot returns ErrNotFound", func(t *testing.T) {
		s := newStorage(t)
		_, err := s.Get(context.Background(), "missing-"+time.Now().Format("150405.000000000")+".json")
		gt.Error(t, err).Is(snapshot.ErrNotFound)
	})

	t.Run("rejects names with path elements", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()
		for _, name := range []string{"", ".", "..", "../escape.json", "dir/file.json", `dir\file.json`} {
			gt.Value(t, s.Put(ctx, name, []byte("x"))).NotNil()
			_, err := s.Get(ctx, name)
			gt.Value(t, err).NotNil()
		}
	})
}

func TestLocalStorage(t *testing.T) {
	runSnapshotStorageTest(t, func(t *testing.T) interfaces.SnapshotStorage {
		s, err := snapshot.NewLocal(filepath.Join(t.TempDir(), "snapshots"))
		gt.NoError(t, err).Required()
		return s
	})
}

func TestLocalStorageLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := snapshot.NewLocal(dir)
	gt.NoError(t, err).Required()

	gt.NoError(t, s.Put(context.Background(), "a.json", []byte("data"))).Required()

	entries, err := os.ReadDir(dir)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(1).Required()
	gt.Value(t, entries[0].Name()).Equal("a.json")
}

func TestNewLocalRequiresDir(t *testing.T) {
	_, err := snapshot.NewLocal("")
	gt.Value(t, err).NotNil()
}

func TestGCSStorage(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set")
	}

	runSnapshotStorageTest(t, func(t *testing.T) interfaces.SnapshotStorage {
		s, err := snapshot.NewGCS(context.Background(), bucket, snapshot.WithObjectPrefix("zia-test/"))
		gt.NoError(t, err).Required()
		t.Cleanup(func() { gt.NoError(t, s.Close()) })
		return s
	})
}
