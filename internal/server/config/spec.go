package config

import "time"

// ServerConfig is the root configuration for stakewatch-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Security SecuritySection `koanf:"security"`
	Token    TokenSection    `koanf:"token"`
	Snapshot SnapshotSection `koanf:"snapshot"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP    HTTPConfig    `koanf:"http"`
	HTTPS   HTTPSConfig   `koanf:"https"`
	Metrics MetricsConfig `koanf:"metrics"`

	// RateLimit is the sustained requests per second allowed per client
	// IP. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`

	// MaxBodyBytes caps request bodies. Zero means unlimited.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// TrustedProxies lists the IPs or CIDRs of reverse proxies whose
	// forwarding headers name the client. Empty trusts nobody.
	TrustedProxies []string `koanf:"trusted_proxies"`

	// ShutdownTimeout bounds graceful shutdown of the listeners.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HTTPConfig configures the plaintext listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// HTTPSConfig configures the TLS listener. It serves the same routes as
// the plaintext one.
type HTTPSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

// MetricsConfig configures the Prometheus listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// StorageSection configures the record store.
type StorageSection struct {
	// Engine is one of "file", "badger" or "memory".
	Engine  string        `koanf:"engine"`
	DataDir string        `koanf:"data_dir"`
	Badger  BadgerSection `koanf:"badger"`
}

// BadgerSection tunes the badger engine.
type BadgerSection struct {
	GCInterval time.Duration `koanf:"gc_interval"`
	SyncWrites bool          `koanf:"sync_writes"`
}

// SecuritySection configures credential handling.
type SecuritySection struct {
	// HashingSecret is mixed into every password digest. Changing it
	// invalidates all stored passwords.
	HashingSecret string `koanf:"hashing_secret"`
}

// TokenSection configures bearer tokens.
type TokenSection struct {
	TTL time.Duration `koanf:"ttl"`
}

// SnapshotSection configures the validator snapshot.
type SnapshotSection struct {
	Path      string `koanf:"path"`
	AdhocPath string `koanf:"adhoc_path"`
	ScoresDB  string `koanf:"scores_db"`

	RebuildEnabled bool   `koanf:"rebuild_enabled"`
	RebuildAt      string `koanf:"rebuild_at"`
	ScoreCommand   string `koanf:"score_command"`
	MinEpoch       int64  `koanf:"min_epoch"`

	// Watch drops the parsed snapshot as soon as the file changes.
	Watch bool `koanf:"watch"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
