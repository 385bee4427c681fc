package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pagegate/internal/core/docroot"
	"github.com/yndnr/pagegate/internal/core/domain"
	"github.com/yndnr/pagegate/internal/core/service"
	"github.com/yndnr/pagegate/internal/infra/buildinfo"
	"github.com/yndnr/pagegate/internal/infra/confloader"
	"github.com/yndnr/pagegate/internal/infra/shutdown"
	"github.com/yndnr/pagegate/internal/plugin"
	"github.com/yndnr/pagegate/internal/server/config"
	"github.com/yndnr/pagegate/internal/server/localserver"
	"github.com/yndnr/pagegate/internal/server/opsserver"
	"github.com/yndnr/pagegate/internal/server/webserver"
	"github.com/yndnr/pagegate/internal/telemetry/logger"
	"github.com/yndnr/pagegate/internal/telemetry/metric"
)

// drainTimeout bounds graceful shutdown.
const drainTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:    "pagegate-server",
		Usage:   "Serve a document root behind Digest authentication",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"PAGEGATE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (server.addr)",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "document root (server.doc_root)",
			},
			&cli.StringFlag{
				Name:  "images",
				Usage: "generated image directory (server.images_dir)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error (log.level)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"addr":      "server.addr",
	"root":      "server.doc_root",
	"images":    "server.images_dir",
	"log-level": "log.level",
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	overrides := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}

	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting pagegate-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	// stopCtx is cancelled by the shutdown sentinel and the admin socket.
	stopCtx, stop := context.WithCancel(context.Background())
	defer stop()

	metrics := metric.Global()
	srv, err := initWebServer(cfg, slogLogger, metrics, stop)
	if err != nil {
		return err
	}
	metrics.MustRegister(metric.NewCollector(srv.MetricStats))

	shutdownHandler := shutdown.NewHandler(drainTimeout)

	// Hooks run in reverse order: listeners registered first stop last.
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	serveCtx, cancelServe := context.WithCancel(context.Background())
	go func() {
		log.Info("page server listening", "addr", ln.Addr().String(), "doc_root", cfg.Server.DocRoot)
		if err := srv.Serve(serveCtx, ln); err != nil {
			log.Error("page server error", "error", err)
			stop()
		}
	}()
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		defer cancelServe()
		log.Info("shutting down page server")
		return srv.Shutdown(ctx)
	})

	if cfg.Ops.Enabled {
		if err := startOps(cfg, srv, metrics, slogLogger, shutdownHandler, stop); err != nil {
			return err
		}
	}

	if cfg.Local.Enabled {
		admin := localserver.New(cfg.Local.Path, localserver.NewHandler(srv, stop), slogLogger)
		if err := admin.Listen(); err != nil {
			return fmt.Errorf("admin socket: %w", err)
		}
		go func() {
			log.Info("admin socket listening", "path", admin.Path())
			if err := admin.Serve(); err != nil {
				log.Error("admin socket error", "error", err)
			}
		}()
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down admin socket")
			return admin.Shutdown(ctx)
		})
	}

	if configFile != "" {
		watcher, err := watchConfig(configFile, overrides, slogLogger)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(stopCtx); err != nil {
		log.Error("shutdown error", "reason", shutdownHandler.Reason(), "error", err)
		return err
	}

	log.Info("server stopped gracefully", "reason", shutdownHandler.Reason())
	return nil
}

// loadConfig loads defaults, the optional file, PAGEGATE_* variables and
// flag overrides, in that order, and verifies the result.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// initLogger installs the process logger.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// initWebServer builds the handler table and the page server.
func initWebServer(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Registry, stop func()) (*webserver.Server, error) {
	s := cfg.Server

	resolver, err := docroot.New(s.DocRoot,
		docroot.WithIndexPages(s.IndexPages...),
		docroot.WithShutdownPath(s.ShutdownPath),
		docroot.WithShutdownHook(stop),
		docroot.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	log.Info("serving document root", "path", resolver.Root(), "index_pages", s.IndexPages)

	plugins := []plugin.Plugin{plugin.Version()}
	if s.ImagesDir != "" {
		img, err := plugin.NewGenImage(s.ImagePrefix, s.ImagesDir)
		if err != nil {
			return nil, fmt.Errorf("image plugin: %w", err)
		}
		plugins = append(plugins, img)
	}

	builder := webserver.NewBuilder()
	if err := plugin.RegisterAll(builder, log, plugins...); err != nil {
		return nil, err
	}
	if err := builder.RegisterDefault(webserver.NewDefaultHandler(resolver, s.StrictStatus, metrics)); err != nil {
		return nil, err
	}
	table, err := builder.Build()
	if err != nil {
		return nil, err
	}

	// A typed nil would defeat the server's nil check.
	var auth webserver.Authenticator
	if cfg.Auth.Enabled {
		auth = service.NewDigestAuthenticator(service.AuthConfig{
			Realm:       cfg.Auth.Realm,
			NonceTTL:    cfg.Auth.NonceTTL,
			TrackNonces: cfg.Auth.TrackNonces,
			MaxNonces:   cfg.Auth.MaxNonces,
		}, domain.NewUserStore(cfg.Auth.Users))
		log.Info("digest authentication enabled", "realm", cfg.Auth.Realm, "users", len(cfg.Auth.Users))
	} else {
		log.Warn("authentication disabled")
	}

	return webserver.New(&webserver.Config{
		Addr:         s.Addr,
		KeepAlive:    s.KeepAlive,
		IdleTimeout:  s.IdleTimeout,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		MaxBodyBytes: s.MaxBodyBytes,
		RateLimit:    s.RateLimit,
		ImagePrefix:  s.ImagePrefix,
		ServerName:   s.ServerName,
	}, table, auth, log, webserver.WithMetrics(metrics))
}

// startOps starts the health and metrics endpoint.
func startOps(cfg *config.ServerConfig, srv *webserver.Server, metrics *metric.Registry, log *slog.Logger, sh *shutdown.Handler, stop func()) error {
	router := opsserver.NewRouter(&opsserver.RouterConfig{
		Logger:      log,
		Ready:       srv.Serving,
		Metrics:     metrics.Handler(),
		AllowList:   cfg.Ops.AllowList,
		EnableAudit: cfg.Ops.Audit,
	})
	ops := opsserver.New(cfg.Ops.Addr, router)

	ln, err := net.Listen("tcp", cfg.Ops.Addr)
	if err != nil {
		return fmt.Errorf("listen ops %s: %w", cfg.Ops.Addr, err)
	}
	go func() {
		log.Info("ops endpoint listening", "addr", ln.Addr().String())
		if err := ops.Serve(ln); err != nil {
			log.Error("ops endpoint error", "error", err)
			stop()
		}
	}()
	sh.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down ops endpoint")
		return ops.Shutdown(ctx)
	})
	return nil
}

// watchConfig re-reads configFile on change and applies the log level.
// Other settings need a restart.
func watchConfig(configFile string, overrides map[string]any, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(path, overrides)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if previous := logger.GetLevel(); previous != cfg.Log.Level {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "previous", previous, "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
