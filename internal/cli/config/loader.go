package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables Merge understands.
const EnvPrefix = "PAGEGATE_CLI_"

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".pagegate", "cli.yaml")
}

// Load reads the CLI configuration from path.
// A missing file yields the defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cli config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse cli config %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	if cfg.CurrentProfile == "" {
		cfg.CurrentProfile = DefaultName
	}
	if _, ok := cfg.Profiles[cfg.CurrentProfile]; !ok && cfg.CurrentProfile != DefaultName {
		return nil, fmt.Errorf("cli config %s: current profile %q is not defined", path, cfg.CurrentProfile)
	}
	return cfg, nil
}

// Save writes the CLI configuration to path with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode cli config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write cli config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write cli config: %w", err)
	}
	return nil
}

// Merge overlays environment variables and then explicitly set flags onto
// the active profile. Keys are server, user, password, socket and ops;
// environment keys carry EnvPrefix and are upper case.
func Merge(cfg *CLIConfig, env map[string]string, flags map[string]string) Profile {
	p := cfg.Current()
	apply := func(key, value string) {
		if value == "" {
			return
		}
		switch key {
		case "server":
			p.Server = value
		case "user":
			p.Username = value
		case "password":
			p.Password = value
		case "socket":
			p.Socket = value
		case "ops":
			p.Ops = value
		}
	}

	for _, key := range []string{"server", "user", "password", "socket", "ops"} {
		apply(key, env[EnvPrefix+strings.ToUpper(key)])
	}
	for key, value := range flags {
		apply(key, value)
	}
	return p
}

// Environ returns the PAGEGATE_CLI_* variables of the process environment.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, key := range []string{"server", "user", "password", "socket", "ops"} {
		name := EnvPrefix + strings.ToUpper(key)
		if v, ok := os.LookupEnv(name); ok {
			env[name] = v
		}
	}
	return env
}
