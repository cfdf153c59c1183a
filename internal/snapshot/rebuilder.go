package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/yndnr/stakewatch/internal/storage"
	"github.com/yndnr/stakewatch/internal/telemetry/metric"
)

// RebuilderConfig configures a Rebuilder.
type RebuilderConfig struct {
	// Path is where the served snapshot is written.
	Path string
	// AdhocPath is where the ad hoc history output is written.
	AdhocPath string
	// ScoreCommand, if set, is run through `sh -c` before a scheduled
	// rebuild to refresh the scores database.
	ScoreCommand string
	// ScoreTimeout bounds ScoreCommand. Zero means one hour.
	ScoreTimeout time.Duration
}

// Rebuilder regenerates snapshot files from a Builder. Every write is a
// wholesale atomic replace.
type Rebuilder struct {
	builder *Builder
	cfg     RebuilderConfig
	reader  *Reader
	logger  *slog.Logger
}

// NewRebuilder creates a Rebuilder. reader may be nil; when set, its cache
// is dropped after the served snapshot is replaced.
func NewRebuilder(builder *Builder, cfg RebuilderConfig, reader *Reader, logger *slog.Logger) *Rebuilder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ScoreTimeout <= 0 {
		cfg.ScoreTimeout = time.Hour
	}
	return &Rebuilder{builder: builder, cfg: cfg, reader: reader, logger: logger}
}

// RebuildLatest refreshes the scores database (when a score command is
// configured) and rewrites the served snapshot. A failed score command is
// logged and the snapshot is rebuilt from whatever the database holds.
func (r *Rebuilder) RebuildLatest(ctx context.Context) error {
	if r.cfg.ScoreCommand != "" {
		if err := r.runScoreCommand(ctx); err != nil {
			r.logger.Error("score command failed", "error", err)
		}
	}

	records, err := r.builder.BuildLatest(ctx)
	if err != nil {
		metric.SnapshotRebuilds.WithLabelValues("scheduled", "error").Inc()
		return fmt.Errorf("build snapshot: %w", err)
	}
	if err := WriteJSON(r.cfg.Path, records); err != nil {
		metric.SnapshotRebuilds.WithLabelValues("scheduled", "error").Inc()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if r.reader != nil {
		r.reader.Invalidate()
	}

	metric.SnapshotRebuilds.WithLabelValues("scheduled", "ok").Inc()
	r.logger.Info("snapshot rewritten", "path", r.cfg.Path, "validators", len(records))
	return nil
}

// RebuildHistory writes the staked history above floor to the ad hoc path.
func (r *Rebuilder) RebuildHistory(ctx context.Context, floor int64) error {
	history, err := r.builder.BuildHistory(ctx, floor)
	if err != nil {
		return fmt.Errorf("build history: %w", err)
	}
	if err := WriteJSON(r.cfg.AdhocPath, history); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	r.logger.Info("history rewritten", "path", r.cfg.AdhocPath, "validators", len(history))
	return nil
}

func (r *Rebuilder) runScoreCommand(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ScoreTimeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "sh", "-c", r.cfg.ScoreCommand)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(out, 2048))
	}
	r.logger.Info("score command finished", "duration", time.Since(start))
	return nil
}

// WriteJSON marshals v and atomically replaces path with it, creating the
// parent directory if needed.
func WriteJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return storage.WriteFileAtomic(path, data, 0o644)
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
