// Package dispatch routes entity lists to the configured storage backend
// and back. Callers hand it a list of people, bicycles or laptops; the kind
// of the list selects the file, sheet or table.
//
// A Dispatcher owns its adapter. Use With, or Open followed by Close, so
// that database connections are released on every path.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/link"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Dispatcher is the write/read façade over one adapter.
type Dispatcher struct {
	adapter   types.Adapter
	relations bool
	log       *logrus.Entry
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithRelations makes Save also write the ownership summary on adapters
// that support one.
func WithRelations(on bool) Option {
	return func(d *Dispatcher) { d.relations = on }
}

// New wraps an adapter.
func New(adapter types.Adapter, opts ...Option) *Dispatcher {
	d := &Dispatcher{adapter: adapter}
	for _, opt := range opts {
		opt(d)
	}
	d.log = logging.OrDiscard(d.log).WithField(logging.FieldBackend, adapter.Name())
	return d
}

// Open validates cfg and builds the adapter it names.
func Open(ctx context.Context, cfg types.Config, log *logrus.Entry) (*Dispatcher, error) {
	cfg = cfg.WithDefaults()
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	factory, err := lookup(cfg.Backend)
	if err != nil {
		return nil, err
	}
	adapter, err := factory(ctx, cfg, logging.OrDiscard(log))
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	return New(adapter, WithLogger(log), WithRelations(cfg.Relations)), nil
}

// With opens a Dispatcher, runs fn and closes the Dispatcher whatever fn
// returns. A close error is reported only when fn succeeded.
func With(ctx context.Context, cfg types.Config, log *logrus.Entry, fn func(*Dispatcher) error) (err error) {
	d, err := Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s backend: %w", d.adapter.Name(), cerr)
		}
	}()
	return fn(d)
}

// Close releases adapter resources when the adapter holds any.
func (d *Dispatcher) Close() error {
	if c, ok := d.adapter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Adapter returns the wrapped adapter.
func (d *Dispatcher) Adapter() types.Adapter { return d.adapter }

func (d *Dispatcher) writeBatch(ctx context.Context, batch types.Batch, opts types.WriteOptions) error {
	if batch.Len() == 0 {
		if d.adapter.EmptyPolicy() == types.EmptyReject {
			return fmt.Errorf("writing %s to %s: %w", batch.Kind.Plural(), d.adapter.Name(), types.ErrEmptyInput)
		}
		d.log.WithField(logging.FieldKind, batch.Kind.String()).Debug("empty batch skipped")
		return nil
	}
	return d.adapter.Write(ctx, batch, opts)
}

// Write persists entities, all of one kind. The kind of the first element
// picks the destination; a mix of kinds or a nil element fails with
// types.ErrUnknownType before the adapter is touched. An empty list fails
// with types.ErrEmptyInput on backends that reject empty writes and is a
// no-op elsewhere.
func (d *Dispatcher) Write(ctx context.Context, entities []types.Entity, opts types.WriteOptions) error {
	batch, err := types.BatchOf(entities)
	if errors.Is(err, types.ErrEmptyInput) {
		if d.adapter.EmptyPolicy() == types.EmptyReject {
			return fmt.Errorf("writing to %s: %w", d.adapter.Name(), err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	return d.adapter.Write(ctx, batch, opts)
}

// WritePeople persists people.
func (d *Dispatcher) WritePeople(ctx context.Context, people []*types.Person, opts types.WriteOptions) error {
	return d.writeBatch(ctx, types.PeopleBatch(people), opts)
}

// WriteBicycles persists bicycles.
func (d *Dispatcher) WriteBicycles(ctx context.Context, bicycles []*types.Bicycle, opts types.WriteOptions) error {
	return d.writeBatch(ctx, types.BicyclesBatch(bicycles), opts)
}

// WriteLaptops persists laptops.
func (d *Dispatcher) WriteLaptops(ctx context.Context, laptops []*types.Laptop, opts types.WriteOptions) error {
	return d.writeBatch(ctx, types.LaptopsBatch(laptops), opts)
}

// ReadBatch loads every entity of kind as a typed batch.
func (d *Dispatcher) ReadBatch(ctx context.Context, kind types.Kind, opts types.ReadOptions) (types.Batch, error) {
	if !kind.Valid() {
		return types.Batch{}, fmt.Errorf("reading: %w: %s", types.ErrUnknownType, kind)
	}
	return d.adapter.Read(ctx, kind, opts)
}

// Read loads every entity of kind. Items come back with OwnerID set and
// Owner nil; call link.Link to rebuild the graph.
func (d *Dispatcher) Read(ctx context.Context, kind types.Kind, opts types.ReadOptions) ([]types.Entity, error) {
	batch, err := d.ReadBatch(ctx, kind, opts)
	if err != nil {
		return nil, err
	}
	return batch.Entities(), nil
}

// Save writes a whole population in foreign key order: people, bicycles,
// laptops. Kinds with no entities are skipped. create is passed to every
// write as WriteOptions.Create. With relations enabled and a supporting
// adapter, the ownership summary is written last.
func (d *Dispatcher) Save(ctx context.Context, pop types.Population, create bool) error {
	link.Population(pop)
	opts := types.WriteOptions{Create: create}

	for _, batch := range []types.Batch{
		types.PeopleBatch(pop.People),
		types.BicyclesBatch(pop.Bicycles),
		types.LaptopsBatch(pop.Laptops),
	} {
		if batch.Len() == 0 {
			continue
		}
		if err := d.adapter.Write(ctx, batch, opts); err != nil {
			return fmt.Errorf("saving %s: %w", batch.Kind.Plural(), err)
		}
	}

	if rw, ok := d.adapter.(types.RelationsWriter); ok && d.relations {
		if err := rw.WriteRelations(ctx, pop.People); err != nil {
			return fmt.Errorf("saving relations: %w", err)
		}
	}
	d.log.WithField("people", len(pop.People)).
		WithField("bicycles", len(pop.Bicycles)).
		WithField("laptops", len(pop.Laptops)).
		Info("saved population")
	return nil
}

// Load reads all three kinds and links them. A kind with no stored source
// loads as empty; when none of the kinds is stored the result is
// types.ErrNotFound.
func (d *Dispatcher) Load(ctx context.Context) (types.Population, error) {
	var pop types.Population
	missing := 0
	for _, kind := range types.Kinds {
		batch, err := d.adapter.Read(ctx, kind, types.ReadOptions{})
		if errors.Is(err, types.ErrNotFound) {
			missing++
			continue
		}
		if err != nil {
			return types.Population{}, fmt.Errorf("loading %s: %w", kind.Plural(), err)
		}
		switch kind {
		case types.KindPerson:
			pop.People = batch.People
		case types.KindBicycle:
			pop.Bicycles = batch.Bicycles
		case types.KindLaptop:
			pop.Laptops = batch.Laptops
		}
	}
	if missing == len(types.Kinds) {
		return pop, fmt.Errorf("loading from %s: %w", d.adapter.Name(), types.ErrNotFound)
	}
	link.Population(pop)
	return pop, nil
}
