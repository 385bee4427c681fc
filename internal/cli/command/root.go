package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pagegate/internal/cli/config"
	"github.com/yndnr/pagegate/internal/cli/connection"
	"github.com/yndnr/pagegate/internal/cli/output"
	"github.com/yndnr/pagegate/internal/infra/buildinfo"
)

const (
	metaConnMgr = "connMgr"
	metaFormat  = "format"
	metaProfile = "profileConfig"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     "pagegate-cli",
		Usage:    "PageGate command-line client",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			GetCommand(),
			PostCommand(),
			StatusCommand(),
			RoutesCommand(),
			LogLevelCommand(),
			ShutdownCommand(),
			HealthCommand(),
			ConfigCommand(),
		},
		Before: setup,
	}
}

// globalFlags returns the global CLI flags. Environment variables are
// applied by config.Merge so that flags, environment and profile keep a
// single precedence order.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "page server address (env PAGEGATE_CLI_SERVER)",
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "digest username (env PAGEGATE_CLI_USER)",
		},
		&cli.StringFlag{
			Name:  "password",
			Usage: "digest secret (env PAGEGATE_CLI_PASSWORD)",
		},
		&cli.StringFlag{
			Name:  "socket",
			Usage: "admin socket path (env PAGEGATE_CLI_SOCKET)",
		},
		&cli.StringFlag{
			Name:  "ops",
			Usage: "ops endpoint address (env PAGEGATE_CLI_OPS)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "CLI profile file",
			Value: config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "profile to use instead of current_profile",
		},
	}
}

// setup resolves profile, environment and flags once per invocation.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if name := c.String("profile"); name != "" {
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q is not defined", name)
		}
		cfg.CurrentProfile = name
	}

	flags := make(map[string]string)
	for _, name := range []string{"server", "user", "password", "socket", "ops"} {
		if c.IsSet(name) {
			flags[name] = c.String(name)
		}
	}
	profile := config.Merge(cfg, config.Environ(), flags)

	formatName := cfg.DefaultOutput
	if c.IsSet("output") {
		formatName = c.String("output")
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	c.App.Metadata[metaConnMgr] = connection.NewManager(profile)
	c.App.Metadata[metaFormat] = format
	c.App.Metadata[metaProfile] = cfg
	return nil
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata[metaConnMgr].(*connection.Manager); ok {
		return mgr
	}
	return connection.NewManager(config.Default().Current())
}

// outputFormat returns the selected output format.
func outputFormat(c *cli.Context) output.Format {
	if f, ok := c.App.Metadata[metaFormat].(output.Format); ok {
		return f
	}
	return output.FormatTable
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	return output.NewFormatter(outputFormat(c)).Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
