package plugin

import (
	"fmt"
	"log/slog"

	"github.com/yndnr/pagegate/internal/server/webserver"
)

// Plugin registers one or more handlers.
type Plugin interface {
	Name() string
	Register(b *webserver.Builder) error
}

// RegisterAll registers plugins in order and stops at the first failure.
func RegisterAll(b *webserver.Builder, logger *slog.Logger, plugins ...Plugin) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range plugins {
		if err := p.Register(b); err != nil {
			return fmt.Errorf("register plugin %s: %w", p.Name(), err)
		}
		logger.Info("plugin registered", "plugin", p.Name())
	}
	return nil
}
