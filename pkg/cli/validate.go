package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var core coreConfig
	var checkStore bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "check-store",
			Usage:       "Also verify that every stored record can be exported to peers",
			Destination: &checkStore,
		},
	}
	flags = append(flags, core.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and optionally the knowledge store",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Step 1: Load and validate configuration file
			cfg, err := core.assistant.Load()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			if _, err := cfg.UseCaseOptions(); err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			_, _ = green.Fprintln(output, "Configuration validation passed")
			_, _ = fmt.Fprintf(output, "  assistant=%s threshold=%.2f default_confidence=%.2f rules=%d\n",
				cfg.AssistantName(), cfg.Threshold(), cfg.DefaultConfidence(), len(cfg.Rules))

			// Step 2: Check stored records when requested
			if !checkStore {
				return nil
			}

			uc, _, closer, err := core.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			issues, err := uc.Knowledge.Check(ctx)
			if err != nil {
				return goerr.Wrap(err, "store check failed")
			}
			if len(issues) > 0 {
				for _, issue := range issues {
					_, _ = red.Fprintf(output, "[%s] ", issue.ID)
					_, _ = fmt.Fprintln(output, issue.Message)
				}
				return goerr.Wrap(config.ErrInvalidConfig, "store check found invalid records", goerr.V("count", len(issues)))
			}

			_, _ = green.Fprintln(output, "Store check passed")
			return nil
		},
	}
}
