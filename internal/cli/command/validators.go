package command

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stakewatch/internal/cli/connection"
	"github.com/yndnr/stakewatch/internal/cli/output"
	"github.com/yndnr/stakewatch/internal/core/domain"
)

// ValidatorsCommand returns the validators command group.
func ValidatorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "validators",
		Usage: "Read the validator snapshot",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List one page of validators",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "Page number, starting at 1", Value: 1},
					&cli.IntFlag{Name: "limit", Usage: "Validators per page", Value: domain.DefaultPageLimit},
				},
				Action: validatorsList,
			},
			{
				Name:   "count",
				Usage:  "Show the number of validators in the snapshot",
				Action: validatorsCount,
			},
			{
				Name:  "rebuild",
				Usage: "Start an ad hoc history rebuild on the server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "epoch", Usage: "Only include epochs above this one"},
				},
				Action: validatorsRebuild,
			},
		},
	}
}

type validatorPage struct {
	TotalPages int                      `json:"totalPages"`
	Validators []domain.ValidatorRecord `json:"validators"`
}

// validatorRow is the table summary of one snapshot entry.
type validatorRow struct {
	VoteAddress string   `json:"vote_address"`
	Rank        *int64   `json:"rank"`
	APY         *float64 `json:"apy"`
	Staked      *float64 `json:"staked"`
	Epochs      int      `json:"epochs"`
	LatestEpoch int64    `json:"latest_epoch"`
	KeybaseID   *string  `json:"keybase" table:"wide"`
	Description *string  `json:"description" table:"wide"`
}

func summarize(records []domain.ValidatorRecord) []validatorRow {
	rows := make([]validatorRow, 0, len(records))
	for _, r := range records {
		row := validatorRow{
			VoteAddress: r.VoteAddress,
			Rank:        r.MostRecentRank,
			APY:         r.MostRecentAPY,
			Staked:      r.MostRecentMarinadeStaked,
			Epochs:      len(r.EpochStats),
			KeybaseID:   r.KeybaseID,
			Description: r.Description,
		}
		// The server lists epoch stats newest first.
		if len(r.EpochStats) > 0 {
			row.LatestEpoch = r.EpochStats[0].Epoch
		}
		rows = append(rows, row)
	}
	return rows
}

func validatorsList(c *cli.Context) error {
	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	query := url.Values{
		"page":  {strconv.Itoa(c.Int("page"))},
		"limit": {strconv.Itoa(c.Int("limit"))},
	}
	resp, err := client.Get(ctx, "/validators?"+query.Encode())
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var page validatorPage
	if err := connection.ParseResponse(resp, &page); err != nil {
		return err
	}

	if output.Format(ParseGlobalFlags(c).Output) != output.FormatTable {
		return printResult(c, &page)
	}
	if err := printResult(c, summarize(page.Validators)); err != nil {
		return err
	}
	fmt.Fprintf(stdout(c), "\nPage %d of %d\n", c.Int("page"), page.TotalPages)
	return nil
}

func validatorsCount(c *cli.Context) error {
	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/validators/count")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return printResult(c, &result)
}

func validatorsRebuild(c *cli.Context) error {
	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	body := map[string]any{}
	if c.IsSet("epoch") {
		body["epochNum"] = c.String("epoch")
	}
	resp, err := client.Post(ctx, "/validators", body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	printMessage(c, "History rebuild started")
	return nil
}
