package command

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pagegate/internal/server/localserver"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show server status (admin socket)",
		Action: adminStatus,
	}
}

// RoutesCommand returns the routes command.
func RoutesCommand() *cli.Command {
	return &cli.Command{
		Name:   "routes",
		Usage:  "List registered handler paths (admin socket)",
		Action: adminRoutes,
	}
}

// LogLevelCommand returns the loglevel command.
func LogLevelCommand() *cli.Command {
	return &cli.Command{
		Name:      "loglevel",
		Usage:     "Show or change the server log level (admin socket)",
		ArgsUsage: "[debug|info|warn|error]",
		Action:    adminLogLevel,
	}
}

// ShutdownCommand returns the shutdown command.
func ShutdownCommand() *cli.Command {
	return &cli.Command{
		Name:   "shutdown",
		Usage:  "Stop the server gracefully (admin socket)",
		Action: adminShutdown,
	}
}

// execAdmin runs one admin command and decodes its data into target.
func execAdmin(c *cli.Context, line string, target any) error {
	sock, err := GetConnectionManager(c).Socket()
	if err != nil {
		return err
	}
	defer sock.Close()

	data, err := sock.Execute(line)
	if err != nil {
		return fmt.Errorf("%s: %w", line, err)
	}
	if target == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%s: decode reply: %w", line, err)
	}
	return nil
}

func adminStatus(c *cli.Context) error {
	var st localserver.Status
	if err := execAdmin(c, "status", &st); err != nil {
		return err
	}
	return render(c, st)
}

func adminRoutes(c *cli.Context) error {
	var routes []string
	if err := execAdmin(c, "routes", &routes); err != nil {
		return err
	}
	return render(c, routes)
}

func adminLogLevel(c *cli.Context) error {
	line := "loglevel"
	if c.NArg() > 1 {
		return fmt.Errorf("loglevel takes at most one argument")
	}
	if c.NArg() == 1 {
		line += " " + c.Args().First()
	}
	var res map[string]string
	if err := execAdmin(c, line, &res); err != nil {
		return err
	}
	return render(c, res)
}

func adminShutdown(c *cli.Context) error {
	var res map[string]string
	if err := execAdmin(c, "shutdown", &res); err != nil {
		return err
	}
	return render(c, res)
}
