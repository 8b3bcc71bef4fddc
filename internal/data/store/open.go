package store

import (
	"fmt"

	"depgraph/internal/core/config"
	"depgraph/internal/core/errors"
)

// Open builds the store selected by cfg.Driver. The "none" driver yields a nil
// Store and no error: callers skip persistence.
func Open(cfg config.Store) (Store, error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		return OpenSQLite(cfg.Path, cfg.BusyTimeout)
	case config.StoreDriverCypher:
		return CreateCypherScript(cfg.CypherPath)
	case config.StoreDriverMemory:
		return NewMemoryStore(), nil
	case config.StoreDriverNone:
		return nil, nil
	default:
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError, fmt.Sprintf("unknown store driver %q", cfg.Driver)),
			errors.CtxDriver, cfg.Driver,
		)
	}
}

// Describe returns a short human-readable location for the configured store.
func Describe(cfg config.Store) string {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		return "sqlite:" + cfg.Path
	case config.StoreDriverCypher:
		return "cypher:" + cfg.CypherPath
	default:
		return cfg.Driver
	}
}
