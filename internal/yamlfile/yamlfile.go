// Package yamlfile stores each entity kind as a YAML sequence of mappings
// using the same keys as the JSON backend.
package yamlfile

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/holdings/internal/blob"
	"github.com/mesh-intelligence/holdings/internal/codec"
	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Extension is appended to names that carry none.
const Extension = ".yaml"

// Adapter implements types.Adapter for YAML documents.
type Adapter struct {
	store blob.Store
	names types.TableNames
	log   *logrus.Entry
}

// New returns an Adapter writing through store.
func New(store blob.Store, names types.TableNames, log *logrus.Entry) *Adapter {
	return &Adapter{
		store: store,
		names: names,
		log:   logging.OrDiscard(log).WithField(logging.FieldBackend, types.BackendYAML),
	}
}

// Name returns types.BackendYAML.
func (a *Adapter) Name() string { return types.BackendYAML }

// EmptyPolicy skips empty batches.
func (a *Adapter) EmptyPolicy() types.EmptyPolicy { return types.EmptySkip }

func (a *Adapter) key(kind types.Kind, name string) string {
	if name == "" {
		name = a.names.For(kind)
	}
	return codec.FileKey(name, Extension)
}

// Encode renders batch as a YAML sequence.
func (a *Adapter) Encode(batch types.Batch) ([]byte, error) {
	recs, err := codec.Records(batch)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", batch.Kind.Plural(), err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", batch.Kind.Plural(), err)
	}
	return buf.Bytes(), nil
}

// Write replaces the document for the batch's kind.
func (a *Adapter) Write(ctx context.Context, batch types.Batch, opts types.WriteOptions) error {
	log := a.log.WithField(logging.FieldKind, batch.Kind.String())
	if batch.Len() == 0 {
		log.Debug("empty batch, nothing written")
		return nil
	}
	data, err := a.Encode(batch)
	if err != nil {
		return err
	}
	key := a.key(batch.Kind, opts.Name)
	if err := a.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", a.store.Location(key), err)
	}
	log.WithField(logging.FieldTarget, a.store.Location(key)).
		WithField(logging.FieldCount, batch.Len()).
		Debug("wrote batch")
	return nil
}

// Read loads every entity of kind from its document.
func (a *Adapter) Read(ctx context.Context, kind types.Kind, opts types.ReadOptions) (types.Batch, error) {
	if !kind.Valid() {
		return types.Batch{}, fmt.Errorf("%w: %s", types.ErrUnknownType, kind)
	}
	key := a.key(kind, opts.Name)
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return types.Batch{Kind: kind}, fmt.Errorf("reading %s: %w", kind.Plural(), err)
	}
	batch, err := codec.DecodeRecords(kind, data, yaml.Unmarshal)
	if err != nil {
		return batch, fmt.Errorf("reading %s: %w", a.store.Location(key), err)
	}
	return batch, nil
}
