package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var core coreConfig

	return &cli.Command{
		Name:      "ask",
		Aliases:   []string{"a"},
		Usage:     "Answer a question from local knowledge and built-in rules",
		ArgsUsage: "QUESTION...",
		Flags:     core.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.Join(c.Args().Slice(), " ")

			uc, _, closer, err := core.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			answer, err := uc.Ask.Ask(ctx, question)
			if err != nil {
				return goerr.Wrap(err, "failed to answer")
			}
			printAnswer(answer)
			return nil
		},
	}
}

func cmdTeach() *cli.Command {
	var core coreConfig
	var input usecase.TeachInput

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "question",
			Aliases:     []string{"q"},
			Usage:       "Question to remember",
			Required:    true,
			Destination: &input.Question,
		},
		&cli.StringFlag{
			Name:        "answer",
			Aliases:     []string{"a"},
			Usage:       "Answer to the question",
			Required:    true,
			Destination: &input.Answer,
		},
		&cli.StringFlag{
			Name:        "topic",
			Aliases:     []string{"t"},
			Usage:       "Topic label",
			Destination: &input.Topic,
		},
	}
	flags = append(flags, core.Flags()...)

	return &cli.Command{
		Name:    "teach",
		Aliases: []string{"t"},
		Usage:   "Store a question and answer pair",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, _, closer, err := core.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			k, err := uc.Knowledge.Teach(ctx, input)
			if err != nil {
				return goerr.Wrap(err, "failed to teach")
			}
			_, _ = green.Fprintln(output, "Learned:")
			printKnowledge(k)
			return nil
		},
	}
}

func cmdList() *cli.Command {
	var core coreConfig
	var topic string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "topic",
			Aliases:     []string{"t"},
			Usage:       "Only list records with this topic",
			Destination: &topic,
		},
	}
	flags = append(flags, core.Flags()...)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List stored knowledge in insertion order",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, _, closer, err := core.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			var list []*model.Knowledge
			if c.IsSet("topic") {
				list, err = uc.Knowledge.ListByTopic(ctx, topic)
			} else {
				list, err = uc.Knowledge.List(ctx)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to list knowledge")
			}

			for _, k := range list {
				printKnowledge(k)
			}
			_, _ = cyan.Fprintf(output, "%d record(s)\n", len(list))
			return nil
		},
	}
}
