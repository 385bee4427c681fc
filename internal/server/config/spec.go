package config

import "time"

// ServerConfig is the root configuration for pagegate-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server" yaml:"server" json:"server"`
	Auth   AuthSection   `koanf:"auth" yaml:"auth" json:"auth"`
	Ops    OpsSection    `koanf:"ops" yaml:"ops" json:"ops"`
	Local  LocalSection  `koanf:"local" yaml:"local" json:"local"`
	Log    LogSection    `koanf:"log" yaml:"log" json:"log"`
}

// ServerSection configures the page server.
type ServerSection struct {
	Addr    string `koanf:"addr" yaml:"addr" json:"addr"`
	DocRoot string `koanf:"doc_root" yaml:"doc_root" json:"doc_root"`

	// KeepAlive serves several requests per connection. Off by default:
	// every response closes its connection.
	KeepAlive bool `koanf:"keep_alive" yaml:"keep_alive" json:"keep_alive"`

	IdleTimeout  time.Duration `koanf:"idle_timeout" yaml:"idle_timeout" json:"idle_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout" yaml:"write_timeout" json:"write_timeout"`

	MaxBodyBytes int64 `koanf:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes"`

	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit" json:"rate_limit"`

	IndexPages   []string `koanf:"index_pages" yaml:"index_pages" json:"index_pages"`
	ShutdownPath string   `koanf:"shutdown_path" yaml:"shutdown_path" json:"shutdown_path"`

	// ImagePrefix routes every target starting with it to the image plugin.
	ImagePrefix string `koanf:"image_prefix" yaml:"image_prefix" json:"image_prefix"`
	// ImagesDir enables the image plugin when set.
	ImagesDir string `koanf:"images_dir" yaml:"images_dir" json:"images_dir"`

	// StrictStatus answers illegal and missing paths with 403/404 instead
	// of 200.
	StrictStatus bool `koanf:"strict_status" yaml:"strict_status" json:"strict_status"`

	ServerName string `koanf:"server_name" yaml:"server_name" json:"server_name"`
}

// AuthSection configures digest authentication.
type AuthSection struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled" json:"enabled"`
	Realm   string `koanf:"realm" yaml:"realm" json:"realm"`

	// Users maps usernames to their shared secrets.
	Users map[string]string `koanf:"users" yaml:"users" json:"users"`

	NonceTTL    time.Duration `koanf:"nonce_ttl" yaml:"nonce_ttl" json:"nonce_ttl"`
	TrackNonces bool          `koanf:"track_nonces" yaml:"track_nonces" json:"track_nonces"`

	// MaxNonces caps the outstanding nonce table; the oldest are evicted.
	MaxNonces int `koanf:"max_nonces" yaml:"max_nonces" json:"max_nonces"`
}

// OpsSection configures the health and metrics endpoint.
type OpsSection struct {
	Enabled   bool     `koanf:"enabled" yaml:"enabled" json:"enabled"`
	Addr      string   `koanf:"addr" yaml:"addr" json:"addr"`
	AllowList []string `koanf:"allow_list" yaml:"allow_list" json:"allow_list"`
	Audit     bool     `koanf:"audit" yaml:"audit" json:"audit"`
}

// LocalSection configures the admin socket.
type LocalSection struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `koanf:"path" yaml:"path" json:"path"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`
}
