package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stakewatch/internal/cli/connection"
)

// PingCommand checks that the server answers.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:   "ping",
		Usage:  "Check that the server is up",
		Action: ping,
	}
}

func ping(c *cli.Context) error {
	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	start := time.Now()
	resp, err := client.Get(ctx, "/ping")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	return printResult(c, map[string]string{
		"server":  client.BaseURL(),
		"status":  "ok",
		"latency": time.Since(start).Round(time.Millisecond).String(),
	})
}
