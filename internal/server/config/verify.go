package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/pagegate/internal/telemetry/logger"
)

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *ServerConfig) error {
	var errs []error
	errs = append(errs, verifyServer(&cfg.Server)...)
	errs = append(errs, verifyAuth(&cfg.Auth)...)
	errs = append(errs, verifyOps(&cfg.Ops, cfg.Server.Addr)...)
	errs = append(errs, verifyLocal(&cfg.Local)...)
	errs = append(errs, verifyLog(&cfg.Log)...)
	return errors.Join(errs...)
}

func verifyServer(s *ServerSection) []error {
	var errs []error

	if err := verifyAddr("server.addr", s.Addr); err != nil {
		errs = append(errs, err)
	}
	if err := verifyDir("server.doc_root", s.DocRoot); err != nil {
		errs = append(errs, err)
	}
	if s.ImagesDir != "" {
		if err := verifyDir("server.images_dir", s.ImagesDir); err != nil {
			errs = append(errs, err)
		}
		if !strings.HasPrefix(s.ImagePrefix, "/") {
			errs = append(errs, fmt.Errorf("server.image_prefix must start with / when server.images_dir is set"))
		} else if strings.HasSuffix(s.ImagePrefix, "/") {
			errs = append(errs, fmt.Errorf("server.image_prefix %q must not end with /", s.ImagePrefix))
		}
	}

	for name, d := range map[string]int64{
		"server.idle_timeout":  int64(s.IdleTimeout),
		"server.read_timeout":  int64(s.ReadTimeout),
		"server.write_timeout": int64(s.WriteTimeout),
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if s.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("server.max_body_bytes must not be negative"))
	}
	if s.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if s.ShutdownPath != "" && !strings.HasPrefix(s.ShutdownPath, "/") {
		errs = append(errs, errors.New("server.shutdown_path must start with / or be empty"))
	}
	for _, p := range s.IndexPages {
		if p == "" || strings.ContainsAny(p, `/\`) {
			errs = append(errs, fmt.Errorf("server.index_pages entry %q must be a plain file name", p))
		}
	}
	return errs
}

func verifyAuth(a *AuthSection) []error {
	if !a.Enabled {
		return nil
	}

	var errs []error
	if strings.TrimSpace(a.Realm) == "" {
		errs = append(errs, errors.New("auth.realm is required when auth is enabled"))
	}
	if strings.ContainsRune(a.Realm, '"') {
		errs = append(errs, errors.New("auth.realm must not contain quotes"))
	}
	if len(a.Users) == 0 {
		errs = append(errs, errors.New("auth.users must contain at least one user when auth is enabled"))
	}
	for name, secret := range a.Users {
		if name == "" || strings.ContainsAny(name, "\":") {
			errs = append(errs, fmt.Errorf("auth.users: invalid username %q", name))
		}
		if secret == "" {
			errs = append(errs, fmt.Errorf("auth.users: empty secret for %q", name))
		}
	}
	if a.NonceTTL < 0 {
		errs = append(errs, errors.New("auth.nonce_ttl must not be negative"))
	}
	if a.MaxNonces < 0 {
		errs = append(errs, errors.New("auth.max_nonces must not be negative"))
	}
	return errs
}

func verifyOps(o *OpsSection, serverAddr string) []error {
	if !o.Enabled {
		return nil
	}

	var errs []error
	if err := verifyAddr("ops.addr", o.Addr); err != nil {
		errs = append(errs, err)
	} else if o.Addr == serverAddr {
		errs = append(errs, errors.New("ops.addr must differ from server.addr"))
	}
	for _, entry := range o.AllowList {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				errs = append(errs, fmt.Errorf("ops.allow_list: invalid CIDR %q", entry))
			}
		} else if net.ParseIP(entry) == nil {
			errs = append(errs, fmt.Errorf("ops.allow_list: invalid IP %q", entry))
		}
	}
	return errs
}

func verifyLocal(l *LocalSection) []error {
	if l.Enabled && l.Path == "" {
		return []error{errors.New("local.path is required when the admin socket is enabled")}
	}
	return nil
}

func verifyLog(l *LogSection) []error {
	var errs []error
	if !logger.ValidLevel(l.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", l.Level))
	}
	switch strings.ToLower(l.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", l.Format))
	}
	return errs
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func verifyDir(name, dir string) error {
	if dir == "" {
		return fmt.Errorf("%s is required", name)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %s is not a directory", name, dir)
	}
	return nil
}
