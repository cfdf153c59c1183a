package command

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stakewatch/internal/cli/connection"
	"github.com/yndnr/stakewatch/internal/core/domain"
)

// UserCommand returns the user command group.
func UserCommand() *cli.Command {
	phoneFlag := &cli.StringFlag{
		Name:     "phone",
		Aliases:  []string{"p"},
		Usage:    "10-digit phone number",
		Required: true,
	}
	return &cli.Command{
		Name:  "user",
		Usage: "Account management",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register an account",
				Flags: []cli.Flag{
					phoneFlag,
					&cli.StringFlag{Name: "first-name", Usage: "First name", Required: true},
					&cli.StringFlag{Name: "last-name", Usage: "Last name", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password", Required: true},
					&cli.BoolFlag{Name: "tos", Usage: "Agree to the terms of service"},
				},
				Action: userCreate,
			},
			{
				Name:   "get",
				Usage:  "Show an account (needs --token)",
				Flags:  []cli.Flag{phoneFlag},
				Action: userGet,
			},
			{
				Name:  "update",
				Usage: "Change an account's name or password (needs --token)",
				Flags: []cli.Flag{
					phoneFlag,
					&cli.StringFlag{Name: "first-name", Usage: "New first name"},
					&cli.StringFlag{Name: "last-name", Usage: "New last name"},
					&cli.StringFlag{Name: "password", Usage: "New password"},
				},
				Action: userUpdate,
			},
			{
				Name:   "delete",
				Usage:  "Delete an account (needs --token)",
				Flags:  []cli.Flag{phoneFlag},
				Action: userDelete,
			},
		},
	}
}

func userCreate(c *cli.Context) error {
	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	body := map[string]any{
		"firstName":    c.String("first-name"),
		"lastName":     c.String("last-name"),
		"phone":        c.String("phone"),
		"password":     c.String("password"),
		"tosAgreement": c.Bool("tos"),
	}
	resp, err := client.Post(ctx, "/users", body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	printMessage(c, "User %s created", c.String("phone"))
	return nil
}

func userGet(c *cli.Context) error {
	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/users?"+phoneQuery(c))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var user domain.UserView
	if err := connection.ParseResponse(resp, &user); err != nil {
		return err
	}
	return printResult(c, &user)
}

func userUpdate(c *cli.Context) error {
	body := map[string]any{"phone": c.String("phone")}
	for flag, field := range map[string]string{
		"first-name": "firstName",
		"last-name":  "lastName",
		"password":   "password",
	} {
		if c.IsSet(flag) {
			body[field] = c.String(flag)
		}
	}
	if len(body) == 1 {
		return fmt.Errorf("nothing to update: set --first-name, --last-name or --password")
	}

	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Put(ctx, "/users", body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	printMessage(c, "User %s updated", c.String("phone"))
	return nil
}

func userDelete(c *cli.Context) error {
	client := NewClient(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Delete(ctx, "/users?"+phoneQuery(c))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	printMessage(c, "User %s deleted", c.String("phone"))
	return nil
}

func phoneQuery(c *cli.Context) string {
	return url.Values{"phone": {c.String("phone")}}.Encode()
}
