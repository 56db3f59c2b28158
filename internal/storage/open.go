package storage

import (
	"fmt"
	"path/filepath"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Open returns the store for the named backend. path is a directory for
// file and badger, and a database file for sqlite.
func Open(backend, path string, log *logger.Logger) (domain.KVStore, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryKV(log), nil
	case BackendFile:
		return OpenFileKV(path, log)
	case BackendSQLite:
		if dir := filepath.Dir(path); dir != "." {
			if err := ensureDir(dir); err != nil {
				return nil, err
			}
		}
		return OpenSQLiteKV(path, log)
	case BackendBadger:
		return OpenBadgerKV(path, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
