package command

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pagegate/internal/cli/connection"
)

// HealthView summarizes the ops endpoint probes.
type HealthView struct {
	Health string `json:"health" yaml:"health"`
	Ready  string `json:"ready" yaml:"ready"`
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Probe the ops endpoint",
		Action: opsHealth,
	}
}

func opsHealth(c *cli.Context) error {
	client, err := GetConnectionManager(c).Ops()
	if err != nil {
		return err
	}

	resp, err := client.Get(c.Context, "/health")
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	var health map[string]string
	if err := connection.ParseResponse(resp, &health); err != nil {
		return fmt.Errorf("health: %w", err)
	}

	// /ready answers 503 with a body while the page server is down.
	resp, err = client.Get(c.Context, "/ready")
	if err != nil {
		return fmt.Errorf("ready: %w", err)
	}
	var ready map[string]string
	if err := json.Unmarshal(resp.Body, &ready); err != nil {
		return fmt.Errorf("ready: parse response: %w", err)
	}

	view := HealthView{Health: health["status"], Ready: ready["status"]}
	if err := render(c, view); err != nil {
		return err
	}
	if view.Ready != "ready" {
		return fmt.Errorf("server is not ready")
	}
	return nil
}
