package command

import (
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stakewatch/internal/cli/config"
	"github.com/yndnr/stakewatch/internal/cli/connection"
)

// TokenCommand returns the token command group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Bearer token lifecycle",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Sign in and issue a token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "phone", Aliases: []string{"p"}, Usage: "Account phone", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Account password", Required: true},
					&cli.BoolFlag{Name: "save", Usage: "Store the token and server in the profile"},
				},
				Action: tokenIssue,
			},
			{
				Name:      "get",
				Usage:     "Show a token",
				ArgsUsage: "TOKEN_ID",
				Action:    tokenGet,
			},
			{
				Name:      "extend",
				Usage:     "Push an unexpired token's expiry out",
				ArgsUsage: "TOKEN_ID",
				Action:    tokenExtend,
			},
			{
				Name:      "revoke",
				Usage:     "Delete a token",
				ArgsUsage: "TOKEN_ID",
				Action:    tokenRevoke,
			},
		},
	}
}

// tokenResult is a token as printed. Expires stays milliseconds in JSON and
// YAML and shows as a timestamp in tables.
type tokenResult struct {
	ID      string      `json:"id"`
	Phone   string      `json:"phone"`
	Expires epochMillis `json:"expires"`
}

type epochMillis int64

func (m epochMillis) String() string {
	return time.UnixMilli(int64(m)).UTC().Format(time.RFC3339)
}

func tokenIssue(c *cli.Context) error {
	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/tokens", map[string]any{
		"phone":    c.String("phone"),
		"password": c.String("password"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var tok tokenResult
	if err := connection.ParseResponse(resp, &tok); err != nil {
		return err
	}

	if c.Bool("save") {
		profile := Profile(c)
		profile.Server = ParseGlobalFlags(c).Server
		profile.Token = tok.ID
		if err := config.Save(profile, c.String("config")); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
	}
	return printResult(c, &tok)
}

func tokenGet(c *cli.Context) error {
	id, err := requireArg(c, "token ID")
	if err != nil {
		return err
	}

	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/tokens?"+idQuery(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var tok tokenResult
	if err := connection.ParseResponse(resp, &tok); err != nil {
		return err
	}
	return printResult(c, &tok)
}

func tokenExtend(c *cli.Context) error {
	id, err := requireArg(c, "token ID")
	if err != nil {
		return err
	}

	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Put(ctx, "/tokens", map[string]any{"id": id, "extend": true})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	printMessage(c, "Token %s extended", id)
	return nil
}

func tokenRevoke(c *cli.Context) error {
	id, err := requireArg(c, "token ID")
	if err != nil {
		return err
	}

	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Delete(ctx, "/tokens?"+idQuery(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	printMessage(c, "Token %s revoked", id)
	return nil
}

func idQuery(id string) string {
	return url.Values{"id": {id}}.Encode()
}
