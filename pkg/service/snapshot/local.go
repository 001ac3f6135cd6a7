package snapshot

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
)

// Local stores snapshots as files in one directory, for carrying them between
// devices on removable media
type Local struct {
	dir string
}

var _ interfaces.SnapshotStorage = &Local{}

func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, goerr.New("snapshot directory is required")
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Put(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o700); err != nil {
		return goerr.Wrap(err, "failed to create snapshot directory", goerr.V("dir", l.dir))
	}

	// write to a temporary file first so a crash never leaves a truncated snapshot
	tmp, err := os.CreateTemp(l.dir, "."+name+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary snapshot file", goerr.V("dir", l.dir))
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write snapshot", goerr.V("name", name))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close snapshot file", goerr.V("name", name))
	}

	dst := filepath.Join(l.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return goerr.Wrap(err, "failed to move snapshot into place", goerr.V("path", dst))
	}
	return nil
}

func (l *Local) Get(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	p := filepath.Join(l.dir, name)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "snapshot file does not exist", goerr.V("path", p))
		}
		return nil, goerr.Wrap(err, "failed to read snapshot", goerr.V("path", p))
	}
	return data, nil
}
