package storage

import (
	"fmt"
	"log/slog"
)

// Open creates the record store selected by cfg.Engine. The in-memory
// engine lives in the memory subpackage and is not handled here.
func Open(cfg Config, logger *slog.Logger) (RecordStore, error) {
	switch cfg.Engine {
	case "", "file":
		return NewFileStore(cfg.Dir, logger)
	case "badger":
		return NewBadgerStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Engine)
	}
}
