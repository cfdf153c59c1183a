package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/stakewatch/internal/core/service"
	"github.com/yndnr/stakewatch/internal/infra/buildinfo"
	"github.com/yndnr/stakewatch/internal/infra/confloader"
	"github.com/yndnr/stakewatch/internal/infra/shutdown"
	"github.com/yndnr/stakewatch/internal/infra/tlsroots"
	"github.com/yndnr/stakewatch/internal/server/config"
	"github.com/yndnr/stakewatch/internal/server/httpserver"
	"github.com/yndnr/stakewatch/internal/snapshot"
	"github.com/yndnr/stakewatch/internal/storage"
	"github.com/yndnr/stakewatch/internal/storage/memory"
	"github.com/yndnr/stakewatch/internal/telemetry/logger"
	"github.com/yndnr/stakewatch/internal/telemetry/metric"
	"github.com/yndnr/stakewatch/pkg/password"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("stakewatch-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	logger.SetDefault(log)

	build := buildinfo.Get()
	log.Info("starting stakewatch-server",
		"version", build.Version,
		"commit", build.Commit,
		"go", build.GoVersion,
		"config", *configFile,
		"settings", config.Sanitize(cfg))

	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	hasher := password.NewHasher(cfg.Security.HashingSecret, password.DefaultParams)
	tokens := service.NewTokenService(store, hasher,
		service.WithLogger(log),
		service.WithTokenTTL(cfg.Token.TTL))
	users := service.NewUserService(store, hasher, tokens, service.WithLogger(log))

	reader := snapshot.NewReader(cfg.Snapshot.Path, log)
	builder := snapshot.NewBuilder(cfg.Snapshot.ScoresDB, cfg.Snapshot.MinEpoch, log)
	rebuilder := snapshot.NewRebuilder(builder, snapshot.RebuilderConfig{
		Path:         cfg.Snapshot.Path,
		AdhocPath:    cfg.Snapshot.AdhocPath,
		ScoreCommand: cfg.Snapshot.ScoreCommand,
	}, reader, log)
	validators := service.NewValidatorService(reader, rebuilder, service.WithLogger(log))

	var watcher *confloader.Watcher
	if cfg.Snapshot.Watch || *configFile != "" {
		watcher, err = confloader.NewWatcher(confloader.WithWatcherLogger(log))
		if err != nil {
			return fmt.Errorf("init file watcher: %w", err)
		}
		if cfg.Snapshot.Watch {
			if err := reader.Watch(watcher); err != nil {
				return fmt.Errorf("watch snapshot: %w", err)
			}
		}
		if *configFile != "" {
			if err := watchLogLevel(watcher, *configFile, log); err != nil {
				return fmt.Errorf("watch config: %w", err)
			}
		}
		watcher.StartAsync()
	}

	proxies, err := httpserver.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Users:          users,
		Tokens:         tokens,
		Validators:     validators,
		Logger:         log,
		RateLimit:      cfg.Server.RateLimit,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		EnableAudit:    true,
		TrustedProxies: proxies,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout, log)

	// Hooks run in reverse order: listeners first, storage last.
	shutdownHandler.OnShutdown("storage", func(context.Context) error {
		return store.Close()
	})
	shutdownHandler.OnShutdown("ad hoc rebuilds", func(ctx context.Context) error {
		return waitFor(ctx, validators.Wait)
	})
	if watcher != nil {
		shutdownHandler.OnShutdown("file watcher", func(context.Context) error {
			return watcher.Stop()
		})
	}

	httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router)
	serve(g, log, "http", httpSrv.Addr(), httpSrv.ListenAndServe)
	shutdownHandler.OnShutdown("http server", httpSrv.Shutdown)

	if https := cfg.Server.HTTPS; https.Enabled {
		if fileExists(https.CertFile) && fileExists(https.KeyFile) {
			keyPair, err := tlsroots.NewKeyPairWatcher(https.CertFile, https.KeyFile, tlsroots.WithLogger(log))
			if err != nil {
				return fmt.Errorf("init https: %w", err)
			}
			if err := keyPair.Start(); err != nil {
				log.Warn("TLS key pair will not reload on change", "error", err)
			}
			shutdownHandler.OnShutdown("key pair watcher", func(context.Context) error {
				return keyPair.Stop()
			})

			httpsSrv := httpserver.NewTLS(https.Addr, router, keyPair.ServerTLSConfig())
			serve(g, log, "https", https.Addr, httpsSrv.ListenAndServeTLS)
			shutdownHandler.OnShutdown("https server", httpsSrv.Shutdown)
		} else {
			log.Warn("HTTPS listener disabled, key pair not found",
				"cert_file", https.CertFile,
				"key_file", https.KeyFile)
		}
	}

	if addr := cfg.Server.Metrics.Addr; addr != "" {
		metricsSrv := httpserver.New(addr, metric.NewServeMux())
		serve(g, log, "metrics", addr, metricsSrv.ListenAndServe)
		shutdownHandler.OnShutdown("metrics server", metricsSrv.Shutdown)
	}

	if cfg.Snapshot.RebuildEnabled {
		at, err := snapshot.ParseTimeOfDay(cfg.Snapshot.RebuildAt)
		if err != nil {
			return fmt.Errorf("snapshot.rebuild_at: %w", err)
		}
		scheduler := snapshot.NewScheduler(at, rebuilder.RebuildLatest, log)
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	log.Info("server started, press Ctrl+C to stop")
	shutdownErr := shutdownHandler.Wait(gctx)
	cancel()

	if err := g.Wait(); err != nil {
		return err
	}
	if shutdownErr != nil {
		log.Error("shutdown error", "error", shutdownErr)
		return shutdownErr
	}

	log.Info("server stopped gracefully")
	return nil
}

// serve runs a listener in g. A listener that stops for any reason other
// than shutdown fails the group, which triggers shutdown of the rest.
func serve(g *errgroup.Group, log *slog.Logger, name, addr string, listen func() error) {
	g.Go(func() error {
		log.Info("listener started", "listener", name, "addr", addr)
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s listener: %w", name, err)
		}
		return nil
	})
}

// loadConfig loads configuration from defaults, file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// watchLogLevel re-reads the config file when it changes and applies a new
// log.level. Other settings need a restart.
func watchLogLevel(w *confloader.Watcher, configFile string, log *slog.Logger) error {
	if err := w.Watch(configFile); err != nil {
		return err
	}
	target := filepath.Clean(configFile)
	w.OnChange(func(path string) {
		if filepath.Clean(path) != target {
			return
		}
		cfg, err := loadConfig(configFile)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", logger.GetLevel())
		}
	})
	return nil
}

// openStore opens the configured record store engine.
func openStore(cfg *config.ServerConfig, log *slog.Logger) (storage.RecordStore, error) {
	if cfg.Storage.Engine == "memory" {
		log.Warn("using in-memory record store, data is lost on exit")
		return memory.New(), nil
	}

	storageCfg := storage.DefaultConfig(cfg.Storage.DataDir)
	storageCfg.Engine = cfg.Storage.Engine
	if cfg.Storage.Badger.GCInterval > 0 {
		storageCfg.Badger.GCInterval = cfg.Storage.Badger.GCInterval.String()
	}
	storageCfg.Badger.SyncWrites = cfg.Storage.Badger.SyncWrites

	store, err := storage.Open(storageCfg, log)
	if err != nil {
		return nil, err
	}
	if b, ok := store.(*storage.BadgerStore); ok {
		b.RegisterMetrics(metric.Registerer())
	}
	return store, nil
}

// waitFor runs wait and returns when it finishes or ctx is done.
func waitFor(ctx context.Context, wait func()) error {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
