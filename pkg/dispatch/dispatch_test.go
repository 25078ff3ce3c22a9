package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/holdings/internal/generator"
	"github.com/mesh-intelligence/holdings/internal/sheet"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

func testConfig(t *testing.T, backend string) types.Config {
	t.Helper()
	return types.Config{Backend: backend, DataDir: t.TempDir(), Pretty: true}
}

func openTest(t *testing.T, cfg types.Config) *Dispatcher {
	t.Helper()
	d, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func generated(t *testing.T, people, bicycles, laptops int) types.Population {
	t.Helper()
	opts := generator.DefaultOptions()
	opts.Seed = 7
	g, err := generator.New(opts)
	require.NoError(t, err)
	pop, err := g.Population(people, bicycles, laptops)
	require.NoError(t, err)
	return pop
}

func TestBackends(t *testing.T) {
	assert.Equal(t, []string{"delimited", "json", "sheet", "sql", "yaml"}, Backends())
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	_, err := Open(context.Background(), types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrBackendEmpty)

	_, err = Open(context.Background(), types.Config{Backend: "xml"}, nil)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = Open(context.Background(), types.Config{Backend: types.BackendDelimited, Delimiter: "::"}, nil)
	assert.ErrorIs(t, err, types.ErrDelimiterInvalid)
}

func TestDispatcher_RoundTripAllBackends(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			pop := generated(t, 50, 30, 30)
			d := openTest(t, testConfig(t, backend))

			require.NoError(t, d.Save(ctx, pop, true))

			got, err := d.Load(ctx)
			require.NoError(t, err)
			require.Len(t, got.People, 50)
			require.Len(t, got.Bicycles, 30)
			require.Len(t, got.Laptops, 30)

			want := make(map[string]*types.Person, len(pop.People))
			for _, p := range pop.People {
				want[p.ID] = p
			}
			for _, p := range got.People {
				orig := want[p.ID]
				require.NotNil(t, orig, "unexpected person %s", p.ID)
				assert.Equal(t, orig.Name, p.Name)
				assert.Equal(t, orig.Age, p.Age)
				assert.Equal(t, orig.Male, p.Male)
			}

			wantLaptops := make(map[string]*types.Laptop, len(pop.Laptops))
			for _, l := range pop.Laptops {
				wantLaptops[l.ID] = l
			}
			for _, l := range got.Laptops {
				orig := wantLaptops[l.ID]
				require.NotNil(t, orig)
				require.NotNil(t, l.Owner, "laptop %s lost its owner", l.ID)
				assert.Equal(t, orig.Owner.Name, l.Owner.Name)
				assert.Equal(t, orig.Model, l.Model)
				assert.Equal(t, orig.RAM, l.RAM)
				assert.Equal(t, orig.VRAM, l.VRAM)
			}

			owned := 0
			for _, p := range got.People {
				owned += len(p.Bicycles)
			}
			assert.Equal(t, 30, owned)
		})
	}
}

func TestDispatcher_FalseFlagSurvives(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			d := openTest(t, testConfig(t, backend))
			people := []*types.Person{types.NewPerson("P-1", "Ada", 36, false)}

			require.NoError(t, d.WritePeople(ctx, people, types.WriteOptions{Create: true}))
			got, err := d.Read(ctx, types.KindPerson, types.ReadOptions{})
			require.NoError(t, err)
			require.Len(t, got, 1)
			p, ok := got[0].(*types.Person)
			require.True(t, ok)
			assert.False(t, p.Male)
			assert.Equal(t, 36, p.Age)
		})
	}
}

func TestDispatcher_EmptyPolicy(t *testing.T) {
	tests := []struct {
		backend string
		reject  bool
	}{
		{types.BackendDelimited, true},
		{types.BackendSQL, true},
		{types.BackendJSON, false},
		{types.BackendYAML, false},
		{types.BackendSheet, false},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			ctx := context.Background()
			d := openTest(t, testConfig(t, tt.backend))

			errs := []error{
				d.Write(ctx, nil, types.WriteOptions{}),
				d.WriteBicycles(ctx, nil, types.WriteOptions{}),
				d.WriteLaptops(ctx, []*types.Laptop{}, types.WriteOptions{}),
			}
			for _, err := range errs {
				if tt.reject {
					assert.ErrorIs(t, err, types.ErrEmptyInput)
				} else {
					assert.NoError(t, err)
				}
			}

			_, err := d.Read(ctx, types.KindBicycle, types.ReadOptions{})
			assert.ErrorIs(t, err, types.ErrNotFound, "an empty write creates nothing")
		})
	}
}

func TestDispatcher_WriteGenericList(t *testing.T) {
	ctx := context.Background()
	d := openTest(t, testConfig(t, types.BackendJSON))
	ada := types.NewPerson("P-1", "Ada", 36, false)

	err := d.Write(ctx, []types.Entity{ada, types.NewPerson("P-2", "Bela", 22, true)}, types.WriteOptions{Name: "staff"})
	require.NoError(t, err)

	got, err := d.Read(ctx, types.KindPerson, types.ReadOptions{Name: "staff"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P-1", got[0].EntityID())

	_, err = d.Read(ctx, types.KindPerson, types.ReadOptions{})
	assert.ErrorIs(t, err, types.ErrNotFound, "default name was not written")
}

// recordingAdapter counts calls so tests can assert the façade rejected a
// request on its own.
type recordingAdapter struct {
	policy types.EmptyPolicy
	writes []types.Batch
	reads  int
	closed bool
	stored map[types.Kind]types.Batch
}

func (r *recordingAdapter) Name() string                   { return "recording" }
func (r *recordingAdapter) EmptyPolicy() types.EmptyPolicy { return r.policy }

func (r *recordingAdapter) Write(_ context.Context, batch types.Batch, _ types.WriteOptions) error {
	r.writes = append(r.writes, batch)
	return nil
}

func (r *recordingAdapter) Read(_ context.Context, kind types.Kind, _ types.ReadOptions) (types.Batch, error) {
	r.reads++
	b, ok := r.stored[kind]
	if !ok {
		return types.Batch{}, types.ErrNotFound
	}
	return b, nil
}

func (r *recordingAdapter) Close() error {
	r.closed = true
	return nil
}

func TestDispatcher_UnknownKindNeverReachesAdapter(t *testing.T) {
	ctx := context.Background()
	fake := &recordingAdapter{}
	d := New(fake)

	_, err := d.Read(ctx, types.Kind(0), types.ReadOptions{})
	assert.ErrorIs(t, err, types.ErrUnknownType)
	_, err = d.ReadBatch(ctx, types.Kind(9), types.ReadOptions{})
	assert.ErrorIs(t, err, types.ErrUnknownType)
	assert.Zero(t, fake.reads)

	mixed := []types.Entity{
		types.NewPerson("P-1", "Ada", 36, false),
		types.NewBicycle("B-1", "Cube", "Acid", 2020),
	}
	assert.ErrorIs(t, d.Write(ctx, mixed, types.WriteOptions{}), types.ErrUnknownType)
	assert.ErrorIs(t, d.Write(ctx, []types.Entity{nil}, types.WriteOptions{}), types.ErrUnknownType)
	assert.Empty(t, fake.writes)
}

func TestDispatcher_EmptyWritesFollowAdapterPolicy(t *testing.T) {
	ctx := context.Background()

	skip := &recordingAdapter{policy: types.EmptySkip}
	assert.NoError(t, New(skip).WritePeople(ctx, nil, types.WriteOptions{}))
	assert.Empty(t, skip.writes)

	reject := &recordingAdapter{policy: types.EmptyReject}
	assert.ErrorIs(t, New(reject).WritePeople(ctx, nil, types.WriteOptions{}), types.ErrEmptyInput)
	assert.Empty(t, reject.writes)
}

func TestDispatcher_SaveOrderAndSkips(t *testing.T) {
	fake := &recordingAdapter{}
	pop := types.Population{
		People:  []*types.Person{types.NewPerson("P-1", "Ada", 36, false)},
		Laptops: []*types.Laptop{types.NewLaptop("L-1", "Dell", "XPS", 2022, 16, 8, types.OwnedByID("P-1"))},
	}

	require.NoError(t, New(fake).Save(context.Background(), pop, false))

	require.Len(t, fake.writes, 2)
	assert.Equal(t, types.KindPerson, fake.writes[0].Kind)
	assert.Equal(t, types.KindLaptop, fake.writes[1].Kind)
	assert.Same(t, pop.People[0], pop.Laptops[0].Owner, "save links the population first")
}

func TestDispatcher_LoadToleratesMissingItems(t *testing.T) {
	fake := &recordingAdapter{stored: map[types.Kind]types.Batch{
		types.KindPerson: types.PeopleBatch([]*types.Person{types.NewPerson("P-1", "Ada", 36, false)}),
	}}

	pop, err := New(fake).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, pop.People, 1)
	assert.Empty(t, pop.Bicycles)
	assert.Empty(t, pop.Laptops)

	_, err = New(&recordingAdapter{}).Load(context.Background())
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDispatcher_CloseReleasesClosers(t *testing.T) {
	fake := &recordingAdapter{}
	require.NoError(t, New(fake).Close())
	assert.True(t, fake.closed)
}

func TestWith_ClosesOnError(t *testing.T) {
	boom := errors.New("boom")
	var seen *Dispatcher
	err := With(context.Background(), testConfig(t, types.BackendSQL), nil, func(d *Dispatcher) error {
		seen = d
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = seen.Read(context.Background(), types.KindPerson, types.ReadOptions{})
	assert.Error(t, err, "store is closed after With returns")
}

func TestDispatcher_SaveWritesRelationsSheet(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, types.BackendSheet)
	cfg.Relations = true
	d := openTest(t, cfg)

	ada := types.NewPerson("P-1", "Ada", 36, false)
	pop := types.Population{
		People:   []*types.Person{ada},
		Bicycles: []*types.Bicycle{types.NewBicycle("B-1", "Cube", "Acid-100", 2020, types.OwnedByID("P-1"))},
	}
	require.NoError(t, d.Save(ctx, pop, false))

	adapter, ok := d.Adapter().(*sheet.Adapter)
	require.True(t, ok)
	rels, err := adapter.ReadRelations(ctx)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "Ada", rels[0].PersonName)
	assert.Equal(t, []string{"Acid-100"}, rels[0].BicycleModels)
}

func TestDispatcher_SQLAppendKeepsRows(t *testing.T) {
	ctx := context.Background()
	d := openTest(t, testConfig(t, types.BackendSQL))

	require.NoError(t, d.WritePeople(ctx, []*types.Person{types.NewPerson("P-1", "Ada", 36, false)}, types.WriteOptions{Create: true}))
	require.NoError(t, d.WritePeople(ctx, []*types.Person{types.NewPerson("P-2", "Bela", 22, true)}, types.WriteOptions{}))

	got, err := d.Read(ctx, types.KindPerson, types.ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, d.WritePeople(ctx, []*types.Person{types.NewPerson("P-3", "Cyd", 50, true)}, types.WriteOptions{Create: true}))
	got, err = d.Read(ctx, types.KindPerson, types.ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
