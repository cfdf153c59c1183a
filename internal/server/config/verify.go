package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"
	"time"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySnapshot(&cfg.Snapshot); err != nil {
		return err
	}
	if cfg.Token.TTL <= 0 {
		return errors.New("token.ttl must be positive")
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Log.Format)
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
		return err
	}
	if cfg.HTTPS.Enabled {
		if err := verifyAddr("server.https.addr", cfg.HTTPS.Addr); err != nil {
			return err
		}
		if cfg.HTTPS.Addr == cfg.HTTP.Addr {
			return errors.New("server.https.addr must differ from server.http.addr")
		}
	}
	if cfg.Metrics.Addr != "" {
		if err := verifyAddr("server.metrics.addr", cfg.Metrics.Addr); err != nil {
			return err
		}
		if cfg.Metrics.Addr == cfg.HTTP.Addr || (cfg.HTTPS.Enabled && cfg.Metrics.Addr == cfg.HTTPS.Addr) {
			return errors.New("server.metrics.addr must not share a port with the API listeners")
		}
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	if cfg.MaxBodyBytes < 0 {
		return errors.New("server.max_body_bytes must not be negative")
	}
	for _, p := range cfg.TrustedProxies {
		if err := verifyProxy(p); err != nil {
			return fmt.Errorf("server.trusted_proxies: %w", err)
		}
	}
	return nil
}

func verifyProxy(entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil
	}
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err
	}
	_, err := netip.ParseAddr(entry)
	return err
}

func verifyAddr(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case "memory":
		return nil
	case "file", "badger":
	default:
		return fmt.Errorf("storage.engine must be file, badger or memory, got %q", cfg.Engine)
	}

	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}

	// Check if data directory exists or can be created
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}

	if cfg.Engine == "badger" && cfg.Badger.GCInterval < 0 {
		return errors.New("storage.badger.gc_interval must not be negative")
	}
	return nil
}

func verifySnapshot(cfg *SnapshotSection) error {
	if cfg.Path == "" {
		return errors.New("snapshot.path is required")
	}
	if cfg.RebuildEnabled {
		if cfg.ScoresDB == "" {
			return errors.New("snapshot.scores_db is required when rebuilds are enabled")
		}
		if _, err := time.Parse("15:04", cfg.RebuildAt); err != nil {
			return fmt.Errorf("snapshot.rebuild_at must be HH:MM, got %q", cfg.RebuildAt)
		}
	}
	return nil
}
