package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

// Storage is the interface for all archive backends.
type Storage interface {
	// Store persists a batch of episode records.
	Store(ctx context.Context, episodes []*types.Episode) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// NewArchive builds the backends listed in cfg.Type for a season. File
// backends write <season>_episodes.<ext> under dir. It returns nil when no
// archive is configured.
func NewArchive(cfg config.ArchiveConfig, dir, season string, logger *slog.Logger) (Storage, error) {
	kinds := config.ArchiveTypes(cfg.Type)
	if len(kinds) == 0 {
		return nil, nil
	}

	backends := make([]Storage, 0, len(kinds))
	closeAll := func() {
		for _, b := range backends {
			_ = b.Close()
		}
	}

	for _, kind := range kinds {
		var (
			s   Storage
			err error
		)
		switch kind {
		case "mongodb":
			s, err = NewMongoStorage(cfg.MongoURI, cfg.Database, cfg.Collection, season, logger)
		default:
			s, err = NewFileStorage(kind, filepath.Join(dir, season+"_episodes."+kind), logger)
		}
		if err != nil {
			closeAll()
			return nil, &types.StorageError{Backend: kind, Err: err}
		}
		backends = append(backends, s)
	}

	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewMultiStorage(backends, logger), nil
}

// NewFileStorage creates the file-based storage for a type.
func NewFileStorage(storageType, outputPath string, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		return NewJSONStorage(outputPath, logger)
	case "jsonl":
		return NewJSONLStorage(outputPath, logger)
	case "csv":
		return NewCSVStorage(outputPath, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
