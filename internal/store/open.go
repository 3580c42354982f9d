package store

import (
	"fmt"

	"auction-engine/internal/auctionerrors"
)

// Supported store drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a backend
type Options struct {
	Driver     string
	SQLitePath string
	Redis      RedisOptions
}

// Open returns the backend named by opts.Driver. An empty driver means memory.
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return OpenSQLite(opts.SQLitePath)
	case DriverRedis:
		return NewRedis(opts.Redis)
	default:
		return nil, fmt.Errorf("driver %q: %w", opts.Driver, auctionerrors.ErrUnknownDriver)
	}
}
