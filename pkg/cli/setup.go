package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/cli/config"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"
	"github.com/secmon-lab/zia/pkg/usecase"
	"github.com/secmon-lab/zia/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// coreConfig groups the flags every command touching the store needs
type coreConfig struct {
	repo      config.Repository
	assistant config.Assistant
	device    config.Device
}

func (x *coreConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.assistant.Flags()...)
	flags = append(flags, x.device.Flags()...)
	return flags
}

// Configure opens the repository and builds the use cases. The returned
// function closes the repository.
func (x *coreConfig) Configure(ctx context.Context, extra ...usecase.Option) (*usecase.UseCases, interfaces.Repository, func(), error) {
	ucOpts, err := x.assistant.Configure()
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to load assistant configuration")
	}

	deviceID, err := x.device.Configure()
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to configure device ID")
	}
	ucOpts = append(ucOpts, usecase.WithDeviceID(deviceID))

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	uc := usecase.New(repo, append(ucOpts, extra...)...)
	return uc, repo, closer, nil
}
