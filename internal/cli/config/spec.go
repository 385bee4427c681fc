package config

// CLIConfig is the configuration for pagegate-cli.
type CLIConfig struct {
	DefaultOutput  string             `yaml:"default_output"` // table, json, yaml
	CurrentProfile string             `yaml:"current_profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile stores connection details for one server.
type Profile struct {
	Server   string `yaml:"server"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Socket   string `yaml:"socket,omitempty"`
	Ops      string `yaml:"ops,omitempty"`
}

// Defaults for an empty profile.
const (
	DefaultServer = "127.0.0.1:8001"
	DefaultSocket = "/run/pagegate/pagegate.sock"
	DefaultOps    = "127.0.0.1:8002"
	DefaultOutput = "table"
	DefaultName   = "default"
)

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultOutput:  DefaultOutput,
		CurrentProfile: DefaultName,
		Profiles: map[string]Profile{
			DefaultName: {Server: DefaultServer, Socket: DefaultSocket, Ops: DefaultOps},
		},
	}
}

// Current returns the active profile with empty fields filled from defaults.
func (c *CLIConfig) Current() Profile {
	p := c.Profiles[c.CurrentProfile]
	if p.Server == "" {
		p.Server = DefaultServer
	}
	if p.Socket == "" {
		p.Socket = DefaultSocket
	}
	if p.Ops == "" {
		p.Ops = DefaultOps
	}
	return p
}
