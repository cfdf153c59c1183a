package command

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stakewatch/internal/cli/repl"
)

// ShellCommand starts an interactive session. Every line runs as a
// stakewatch-cli command with the session's global flags.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history-file", Usage: "History file (default ~/.stakewatch/history)"},
		},
		Action: shell,
	}
}

func shell(c *cli.Context) error {
	inherited := inheritedFlags(c)
	exec := func(args []string) error {
		app := App()
		app.Writer = stdout(c)
		app.ErrWriter = stderr(c)
		// Errors are printed by the loop; a bad line must not exit the process.
		app.ExitErrHandler = func(*cli.Context, error) {}
		return app.Run(append(append([]string{"stakewatch-cli"}, inherited...), args...))
	}

	r := repl.New(exec, commandNames(App().Commands, ""),
		repl.WithIO(stdin(c), stdout(c)),
		repl.WithHistory(repl.NewHistory(historyFile(c))),
	)
	return r.Run()
}

// inheritedFlags repeats the effective global flags for each line.
func inheritedFlags(c *cli.Context) []string {
	flags := ParseGlobalFlags(c)
	args := []string{
		"--server", flags.Server,
		"--output", flags.Output,
		"--timeout", flags.Timeout.String(),
		"--wide=" + strconv.FormatBool(flags.Wide),
	}
	if flags.Token != "" {
		args = append(args, "--token", flags.Token)
	}
	if flags.CAFile != "" {
		args = append(args, "--ca-file", flags.CAFile)
	}
	if path := c.String("config"); path != "" {
		args = append(args, "--config", path)
	}
	return args
}

// commandNames lists every command path, skipping the shell itself.
func commandNames(cmds []*cli.Command, parent string) []string {
	var names []string
	for _, cmd := range cmds {
		if cmd.Name == "shell" || cmd.Name == "help" {
			continue
		}
		name := cmd.Name
		if parent != "" {
			name = parent + " " + name
		}
		names = append(names, name)
		names = append(names, commandNames(cmd.Subcommands, name)...)
	}
	return names
}

func historyFile(c *cli.Context) string {
	if path := c.String("history-file"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stakewatch", "history")
}
