package dispatch

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/holdings/internal/blob"
	"github.com/mesh-intelligence/holdings/internal/delimited"
	"github.com/mesh-intelligence/holdings/internal/jsonfile"
	"github.com/mesh-intelligence/holdings/internal/sheet"
	"github.com/mesh-intelligence/holdings/internal/sqlstore"
	"github.com/mesh-intelligence/holdings/internal/yamlfile"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Factory builds an adapter from a validated, defaulted Config.
type Factory func(ctx context.Context, cfg types.Config, log *logrus.Entry) (types.Adapter, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		types.BackendDelimited: newDelimited,
		types.BackendJSON:      newJSON,
		types.BackendYAML:      newYAML,
		types.BackendSheet:     newSheet,
		types.BackendSQL:       newSQL,
	}
)

// Register replaces the factory for a backend name. Names must still pass
// Config.Validate.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, name)
	}
	return f, nil
}

func newDelimited(ctx context.Context, cfg types.Config, log *logrus.Entry) (types.Adapter, error) {
	store, err := blob.Open(ctx, cfg.Blob, cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	return delimited.New(store, delimited.Options{Delimiter: cfg.Delimiter, Names: cfg.Tables}, log)
}

func newJSON(ctx context.Context, cfg types.Config, log *logrus.Entry) (types.Adapter, error) {
	store, err := blob.Open(ctx, cfg.Blob, cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	return jsonfile.New(store, jsonfile.Options{Pretty: cfg.Pretty, Names: cfg.Tables}, log), nil
}

func newYAML(ctx context.Context, cfg types.Config, log *logrus.Entry) (types.Adapter, error) {
	store, err := blob.Open(ctx, cfg.Blob, cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	return yamlfile.New(store, cfg.Tables, log), nil
}

func newSheet(ctx context.Context, cfg types.Config, log *logrus.Entry) (types.Adapter, error) {
	store, err := blob.Open(ctx, cfg.Blob, cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	return sheet.New(store, sheet.Options{Workbook: cfg.Workbook, Names: cfg.Tables}, log), nil
}

func newSQL(ctx context.Context, cfg types.Config, log *logrus.Entry) (types.Adapter, error) {
	return sqlstore.Open(ctx, sqlstore.Options{SQL: cfg.SQL, DataDir: cfg.DataDir, Names: cfg.Tables}, log)
}
