package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = ":8080"
	DefaultHTTPSAddr       = ":8081"
	DefaultCertFile        = "https/cert.pem"
	DefaultKeyFile         = "https/key.pem"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultStorageEngine    = "file"
	DefaultDataDir          = ".data"
	DefaultBadgerGCInterval = 10 * time.Minute

	DefaultTokenTTL = time.Hour

	DefaultSnapshotPath = ".data/epochs/validators.json"
	DefaultAdhocPath    = ".data/epochs/validators_all.json"
	DefaultScoresDB     = "scores.sqlite3"
	DefaultRebuildAt    = "11:00"
	DefaultMinEpoch     = 260

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
			HTTPS: HTTPSConfig{
				Enabled:  true,
				Addr:     DefaultHTTPSAddr,
				CertFile: DefaultCertFile,
				KeyFile:  DefaultKeyFile,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Storage: StorageSection{
			Engine:  DefaultStorageEngine,
			DataDir: DefaultDataDir,
			Badger: BadgerSection{
				GCInterval: DefaultBadgerGCInterval,
				SyncWrites: true,
			},
		},
		Token: TokenSection{
			TTL: DefaultTokenTTL,
		},
		Snapshot: SnapshotSection{
			Path:           DefaultSnapshotPath,
			AdhocPath:      DefaultAdhocPath,
			ScoresDB:       DefaultScoresDB,
			RebuildEnabled: true,
			RebuildAt:      DefaultRebuildAt,
			MinEpoch:       DefaultMinEpoch,
			Watch:          true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
