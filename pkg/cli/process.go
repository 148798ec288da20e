package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/usecase"
)

// dryRunDispatcher logs dispatch requests instead of calling the GitHub API
type dryRunDispatcher struct{}

func (d *dryRunDispatcher) Dispatch(ctx context.Context, req *model.DispatchRequest) error {
	ctxlog.From(ctx).Info("Would dispatch workflow",
		slog.String("owner", req.Owner),
		slog.String("repository", req.Repository),
		slog.String("workflow_file", req.WorkflowFile),
		slog.String("ref", req.Ref),
		slog.Any("inputs", req.Inputs),
	)
	return nil
}

func cmdProcess() *cli.Command {
	var (
		githubCfg config.GitHub
		storeCfg  config.ConfigStore
		input     string
		dryRun    bool
		failFast  bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "File with one queue message JSON per line ('-' for stdin)",
			Required:    true,
			Destination: &input,
			Sources:     cli.EnvVars("DROVER_INPUT"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Resolve workflows but only log instead of dispatching",
			Value:       false,
			Destination: &dryRun,
			Sources:     cli.EnvVars("DROVER_DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:        "fail-on-error",
			Usage:       "Exit with an error when any message fails",
			Value:       false,
			Destination: &failFast,
			Sources:     cli.EnvVars("DROVER_FAIL_ON_ERROR"),
		},
	}
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, githubCfg.OptionalFlags()...)

	return &cli.Command{
		Name:    "process",
		Aliases: []string{"p"},
		Usage:   "Process queued event messages from a file",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if !storeCfg.Configured() {
				return goerr.New("either mapping-file or mapping-bucket is required")
			}

			loader, err := storeCfg.Loader(ctx)
			if err != nil {
				return err
			}
			mappingCfg, err := loader.Load(ctx)
			if err != nil {
				return err
			}

			var dispatcher interfaces.WorkflowDispatcher
			if dryRun {
				dispatcher = &dryRunDispatcher{}
			} else {
				if err := githubCfg.Validate(); err != nil {
					return err
				}
				dispatcher, err = githubCfg.Dispatcher()
				if err != nil {
					return err
				}
			}

			bodies, err := readMessages(input)
			if err != nil {
				return err
			}

			var opts []usecase.Option
			if failFast {
				opts = append(opts, usecase.WithFailOnError())
			}
			eventUC := usecase.NewEvent(mappingCfg, dispatcher, opts...)

			result, err := eventUC.ProcessBatch(ctx, bodies)
			if result != nil {
				logger.Info("Batch processing finished",
					slog.Int("processed", result.Processed),
					slog.Int("errors", result.Errors),
				)
			}
			return err
		},
	}
}

// readMessages reads one JSON message per line, skipping blank lines
func readMessages(path string) ([][]byte, error) {
	var reader *bufio.Scanner
	if path == "-" {
		reader = bufio.NewScanner(os.Stdin)
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open input file", goerr.V("path", path))
		}
		defer file.Close()
		reader = bufio.NewScanner(file)
	}
	reader.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var bodies [][]byte
	for reader.Scan() {
		line := reader.Bytes()
		if len(line) == 0 {
			continue
		}
		body := make([]byte, len(line))
		copy(body, line)
		bodies = append(bodies, body)
	}
	if err := reader.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read input", goerr.V("path", path))
	}

	return bodies, nil
}
