package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stakewatch/internal/cli/output"
	"github.com/yndnr/stakewatch/internal/core/domain"
	"github.com/yndnr/stakewatch/internal/server/config"
	"github.com/yndnr/stakewatch/internal/snapshot"
	"github.com/yndnr/stakewatch/internal/telemetry/logger"
)

// SnapshotCommand returns the snapshot command group. Its commands work on
// local files and never contact the server.
func SnapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Build validator snapshots offline",
		Subcommands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Build a snapshot file from a scores database",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scores-db", Usage: "Path to the sqlite scores database", Required: true},
					&cli.StringFlag{Name: "out", Usage: "Snapshot file to write", Required: true},
					&cli.Int64Flag{Name: "min-epoch", Usage: "Oldest epoch kept in the latest snapshot", Value: config.DefaultMinEpoch},
					&cli.BoolFlag{Name: "history", Usage: "Write the full staked history instead of the latest snapshot"},
					&cli.Int64Flag{Name: "floor", Usage: "With --history, only include epochs above this one", Value: -1},
					&cli.BoolFlag{Name: "verbose", Usage: "Log builder progress to stderr"},
				},
				Action: snapshotBuild,
			},
		},
	}
}

func snapshotBuild(c *cli.Context) error {
	log := logger.Discard()
	if c.Bool("verbose") {
		log = logger.New(logger.Config{Level: "info", Format: "text", Output: stderr(c)})
	}
	builder := snapshot.NewBuilder(c.String("scores-db"), c.Int64("min-epoch"), log)

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var spinner *output.Spinner
	if !c.Bool("verbose") {
		spinner = output.NewSpinner(stderr(c), "building snapshot")
		spinner.Start()
	}

	var (
		data  any
		count int
		err   error
	)
	if c.Bool("history") {
		var history []domain.ValidatorHistory
		history, err = builder.BuildHistory(ctx, c.Int64("floor"))
		data, count = history, len(history)
	} else {
		var records []domain.ValidatorRecord
		records, err = builder.BuildLatest(ctx)
		data, count = records, len(records)
	}
	if err == nil {
		err = snapshot.WriteJSON(c.String("out"), data)
	}

	if err != nil {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		return fmt.Errorf("build snapshot: %w", err)
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("wrote %d validators to %s", count, c.String("out")))
	} else {
		log.Info("snapshot written", slog.Int("validators", count), slog.String("path", c.String("out")))
	}
	return nil
}
