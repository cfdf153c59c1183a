package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stakewatch/internal/cli/config"
	"github.com/yndnr/stakewatch/internal/cli/connection"
	"github.com/yndnr/stakewatch/internal/cli/output"
	"github.com/yndnr/stakewatch/internal/infra/buildinfo"
	"github.com/yndnr/stakewatch/internal/infra/tlsroots"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "stakewatch-cli",
		Usage:   "stakewatch command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			UserCommand(),
			TokenCommand(),
			ValidatorsCommand(),
			SnapshotCommand(),
			ShellCommand(),
		},
		Before: loadProfile,
	}
}

// loadProfile reads the --config profile into the app metadata and
// validates the effective output format.
func loadProfile(c *cli.Context) error {
	profile, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[profileKey] = profile

	if caFile := ParseGlobalFlags(c).CAFile; caFile != "" {
		pool, err := tlsroots.LoadCAFile(caFile)
		if err != nil {
			return fmt.Errorf("--ca-file: %w", err)
		}
		c.App.Metadata[caPoolKey] = pool
	}

	_, err = output.ParseFormat(ParseGlobalFlags(c).Output)
	return err
}

const (
	profileKey = "profile"
	caPoolKey  = "ca-pool"
)

// Profile returns the profile loaded for this run, or an empty one.
func Profile(c *cli.Context) *config.CLIConfig {
	if c.App != nil {
		if p, ok := c.App.Metadata[profileKey].(*config.CLIConfig); ok {
			return p
		}
	}
	return config.Default()
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "stakewatch server address (e.g., localhost:8080, https://host:8081)",
			EnvVars: []string{"STAKEWATCH_SERVER"},
			Value:   "localhost:8080",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "Bearer token id sent on user routes",
			EnvVars: []string{"STAKEWATCH_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Profile file (default ~/.stakewatch/cli.yaml)",
			EnvVars: []string{"STAKEWATCH_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM bundle of extra CAs trusted for https servers",
			EnvVars: []string{"STAKEWATCH_CA_FILE"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: 30 * time.Second,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Token   string
	Output  string
	CAFile  string
	Wide    bool
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context. Server, token, output
// and the CA file fall back to the profile when neither the flag nor its
// environment variable is set.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	profile := Profile(c)
	pick := func(flag, fromProfile string) string {
		if !c.IsSet(flag) && fromProfile != "" {
			return fromProfile
		}
		return c.String(flag)
	}
	return &GlobalFlags{
		Server:  pick("server", profile.Server),
		Token:   pick("token", profile.Token),
		Output:  pick("output", profile.Output),
		CAFile:  pick("ca-file", profile.CAFile),
		Wide:    c.Bool("wide"),
		Timeout: c.Duration("timeout"),
	}
}

// NewClient returns an HTTP client for the configured server.
func NewClient(c *cli.Context) *connection.HTTPClient {
	flags := ParseGlobalFlags(c)
	var opts []connection.Option
	if c.App != nil {
		if pool, ok := c.App.Metadata[caPoolKey].(*tlsroots.Pool); ok {
			opts = append(opts, connection.WithTLSConfig(pool.ClientTLSConfig()))
		}
	}
	return connection.NewHTTPClient(flags.Server, flags.Token, opts...)
}

// requestContext bounds one command by --timeout.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}

// printResult writes data in the selected output format.
func printResult(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(stdout(c), data)
}

// printMessage writes a confirmation line. It is suppressed for json and
// yaml output so those stay machine readable.
func printMessage(c *cli.Context, format string, args ...any) {
	if f := output.Format(ParseGlobalFlags(c).Output); f == output.FormatJSON || f == output.FormatYAML {
		return
	}
	fmt.Fprintf(stdout(c), format+"\n", args...)
}

func stdout(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stdin(c *cli.Context) io.Reader {
	if c.App != nil && c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}

func stderr(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// requireArg returns the first positional argument or a usage error.
func requireArg(c *cli.Context, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", fmt.Errorf("%s required", name)
	}
	return v, nil
}
