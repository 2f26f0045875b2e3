package database

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a key is not stored.
var ErrNotFound = errors.New("key not found")

// ErrDuplicateKey is returned by backends that detect an insert of a stored key
// themselves. SQL backends surface their own constraint errors instead.
var ErrDuplicateKey = errors.New("key already exists")

// Database and table every backend stores elements in.
const (
	databaseName = "benchmarkdb"
	tableName    = "analysis_elements"
)

// KV is a keyed element store under analysis. Implementations must be safe
// for concurrent use once connected.
type KV interface {
	Connect(dsn string) error
	Close() error

	// Reset prepares an empty store, creating the schema when needed.
	Reset(ctx context.Context) error

	Insert(ctx context.Context, key int64, value string) error
	Select(ctx context.Context, key int64) (string, error)
	Update(ctx context.Context, key int64, value string) error
	Delete(ctx context.Context, key int64) error
}

// Factory creates an unconnected backend.
type Factory func() KV

// Drivers returns the available backends by name.
func Drivers() map[string]Factory {
	return map[string]Factory{
		"memory":   func() KV { return &MemoryDriver{} },
		"sqlite":   func() KV { return &SQLiteDriver{} },
		"postgres": func() KV { return &PostgresDriver{} },
		"mysql":    func() KV { return &MySQLDriver{} },
		"mongo":    func() KV { return &MongoDriver{} },
	}
}

// Names lists the backend names in lexical order.
func Names() []string {
	drivers := Drivers()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates the named backend and connects it to dsn.
func Open(name, dsn string) (KV, error) {
	factory, ok := Drivers()[name]
	if !ok {
		return nil, errors.Errorf("unknown database %q (available: %v)", name, Names())
	}
	kv := factory()
	if err := kv.Connect(dsn); err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", name)
	}
	return kv, nil
}
