package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/pagegate/internal/cli/config"
	"github.com/yndnr/pagegate/internal/cli/output"
	"github.com/yndnr/pagegate/internal/infra/confloader"
	"github.com/yndnr/pagegate/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show the effective server configuration with secrets masked",
				ArgsUsage: "[FILE]",
				Action:    configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a server configuration file",
				ArgsUsage: "FILE",
				Action:    configValidate,
			},
			{
				Name:   "profile",
				Usage:  "Show the resolved CLI profile",
				Action: configProfile,
			},
			{
				Name:      "set-profile",
				Usage:     "Create or update a CLI profile",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "use",
						Usage: "make the profile current",
					},
				},
				Action: configSetProfile,
			},
		},
	}
}

// loadServerConfig reads defaults, then file and PAGEGATE_* variables.
func loadServerConfig(path string) (*config.ServerConfig, error) {
	cfg := config.Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configShow(c *cli.Context) error {
	cfg, err := loadServerConfig(c.Args().First())
	if err != nil {
		return err
	}
	format := outputFormat(c)
	if format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format).Format(writer(c), config.Sanitize(cfg))
}

func configValidate(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("validate: exactly one FILE argument is required")
	}
	path := c.Args().First()
	cfg, err := loadServerConfig(path)
	if err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("%s is invalid:\n%w", path, err)
	}
	fmt.Fprintf(writer(c), "%s: configuration OK\n", path)
	return nil
}

// ProfileView is the resolved profile with the password masked.
type ProfileView struct {
	Name     string `json:"name" yaml:"name"`
	Server   string `json:"server" yaml:"server"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Socket   string `json:"socket" yaml:"socket"`
	Ops      string `json:"ops" yaml:"ops"`
}

func configProfile(c *cli.Context) error {
	p := GetConnectionManager(c).Profile()
	name := ""
	if cfg, ok := c.App.Metadata[metaProfile].(*cliconfig.CLIConfig); ok {
		name = cfg.CurrentProfile
	}
	view := ProfileView{
		Name:     name,
		Server:   p.Server,
		Username: p.Username,
		Socket:   p.Socket,
		Ops:      p.Ops,
	}
	if p.Password != "" {
		view.Password = "****"
	}
	return render(c, view)
}

// configSetProfile stores the global connection flags under NAME.
func configSetProfile(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("set-profile: exactly one NAME argument is required")
	}
	name := c.Args().First()
	path := c.String("config")

	cfg, err := cliconfig.Load(path)
	if err != nil {
		return err
	}
	p := cfg.Profiles[name]
	for flag, field := range map[string]*string{
		"server":   &p.Server,
		"user":     &p.Username,
		"password": &p.Password,
		"socket":   &p.Socket,
		"ops":      &p.Ops,
	} {
		if c.IsSet(flag) {
			*field = c.String(flag)
		}
	}
	if c.IsSet("output") {
		f, err := output.ParseFormat(c.String("output"))
		if err != nil {
			return err
		}
		cfg.DefaultOutput = string(f)
	}
	cfg.Profiles[name] = p
	if c.Bool("use") {
		cfg.CurrentProfile = name
	}

	if err := cliconfig.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(writer(c), "profile %q saved to %s\n", name, path)
	return nil
}
