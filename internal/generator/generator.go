// Package generator produces synthetic people, bicycles and laptops. With
// sequential ids the output is fully determined by the seed; uuid ids are
// time-ordered and differ between runs.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

// ErrInvalidGeneratorConfig is returned for out-of-range options or counts.
var ErrInvalidGeneratorConfig = errors.New("invalid generator config")

// IDStyle selects how entity ids are minted.
type IDStyle string

const (
	// IDSequential yields P-000001, B-000001, L-000001, ...
	IDSequential IDStyle = "sequential"
	// IDUUID yields UUID v7 strings.
	IDUUID IDStyle = "uuid"
)

// Age bounds accepted by Options.
const (
	MinAllowedAge = 0
	MaxAllowedAge = 100
)

// maxNameAttempts bounds the search for an unused name when UniqueNames is
// set.
const maxNameAttempts = 64

// Options tune a Generator.
type Options struct {
	Seed uint64
	// MaleRatio is the probability that a generated person is male.
	MaleRatio float64
	MinAge    int
	MaxAge    int
	IDStyle   IDStyle
	// UniqueNames rejects duplicate person names within one Generator.
	UniqueNames bool
}

// DefaultOptions returns an even male ratio, ages 0 to 100 and sequential
// ids.
func DefaultOptions() Options {
	return Options{
		MaleRatio: 0.5,
		MinAge:    MinAllowedAge,
		MaxAge:    MaxAllowedAge,
		IDStyle:   IDSequential,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.MaleRatio < 0 || o.MaleRatio > 1 {
		return fmt.Errorf("%w: male ratio %v outside [0, 1]", ErrInvalidGeneratorConfig, o.MaleRatio)
	}
	if o.MinAge < MinAllowedAge || o.MinAge > o.MaxAge || o.MaxAge > MaxAllowedAge {
		return fmt.Errorf("%w: ages must satisfy %d <= min (%d) <= max (%d) <= %d",
			ErrInvalidGeneratorConfig, MinAllowedAge, o.MinAge, o.MaxAge, MaxAllowedAge)
	}
	switch o.IDStyle {
	case IDSequential, IDUUID:
	default:
		return fmt.Errorf("%w: unknown id style %q", ErrInvalidGeneratorConfig, o.IDStyle)
	}
	return nil
}

// Generator mints entities. It is not safe for concurrent use.
type Generator struct {
	opts  Options
	rng   *rand.Rand
	seq   map[types.Kind]int
	names map[string]bool
}

// New returns a Generator seeded with opts.Seed.
func New(opts Options) (*Generator, error) {
	if opts.IDStyle == "" {
		opts.IDStyle = IDSequential
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		opts:  opts,
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		seq:   make(map[types.Kind]int),
		names: make(map[string]bool),
	}, nil
}

var idPrefix = map[types.Kind]string{
	types.KindPerson:  "P",
	types.KindBicycle: "B",
	types.KindLaptop:  "L",
}

func (g *Generator) nextID(kind types.Kind) (string, error) {
	g.seq[kind]++
	if g.opts.IDStyle == IDUUID {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("minting uuid: %w", err)
		}
		return id.String(), nil
	}
	return fmt.Sprintf("%s-%06d", idPrefix[kind], g.seq[kind]), nil
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// between returns a uniform int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) name(male bool) (string, error) {
	firsts := femaleFirstNames
	if male {
		firsts = maleFirstNames
	}
	for range maxNameAttempts {
		n := pick(g.rng, firsts) + " " + pick(g.rng, lastNames)
		if !g.opts.UniqueNames || !g.names[n] {
			g.names[n] = true
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: ran out of unique names", ErrInvalidGeneratorConfig)
}

func (g *Generator) model(maxNumber int) string {
	return fmt.Sprintf("%s-%d", pick(g.rng, modelWords), g.between(100, maxNumber))
}

// People returns n new people.
func (g *Generator) People(n int) ([]*types.Person, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: people count must be positive, got %d", ErrInvalidGeneratorConfig, n)
	}
	out := make([]*types.Person, 0, n)
	for range n {
		male := g.rng.Float64() < g.opts.MaleRatio
		name, err := g.name(male)
		if err != nil {
			return nil, err
		}
		id, err := g.nextID(types.KindPerson)
		if err != nil {
			return nil, err
		}
		out = append(out, types.NewPerson(id, name, g.between(g.opts.MinAge, g.opts.MaxAge), male))
	}
	return out, nil
}

// Bicycles returns n bicycles, each owned by a random member of owners.
// Ownership is set in both directions.
func (g *Generator) Bicycles(n int, owners []*types.Person) ([]*types.Bicycle, error) {
	if n <= 0 || len(owners) == 0 {
		return nil, fmt.Errorf("%w: need a positive bicycle count and at least one owner", ErrInvalidGeneratorConfig)
	}
	out := make([]*types.Bicycle, 0, n)
	for range n {
		id, err := g.nextID(types.KindBicycle)
		if err != nil {
			return nil, err
		}
		out = append(out, types.NewBicycle(id,
			pick(g.rng, BicycleBrands),
			g.model(999),
			g.between(BicycleMinYear, BicycleMaxYear),
			types.OwnedBy(pick(g.rng, owners)),
		))
	}
	return out, nil
}

// Laptops returns n laptops, each owned by a random member of owners.
func (g *Generator) Laptops(n int, owners []*types.Person) ([]*types.Laptop, error) {
	if n <= 0 || len(owners) == 0 {
		return nil, fmt.Errorf("%w: need a positive laptop count and at least one owner", ErrInvalidGeneratorConfig)
	}
	out := make([]*types.Laptop, 0, n)
	for range n {
		id, err := g.nextID(types.KindLaptop)
		if err != nil {
			return nil, err
		}
		out = append(out, types.NewLaptop(id,
			pick(g.rng, LaptopBrands),
			g.model(9999),
			g.between(LaptopMinYear, LaptopMaxYear),
			pick(g.rng, RAMSizes),
			pick(g.rng, VRAMSizes),
			types.OwnedBy(pick(g.rng, owners)),
		))
	}
	return out, nil
}

// Population generates people and then items owned by them. Zero item
// counts are allowed here and produce no items of that kind.
func (g *Generator) Population(people, bicycles, laptops int) (types.Population, error) {
	var pop types.Population
	var err error
	if pop.People, err = g.People(people); err != nil {
		return pop, err
	}
	if bicycles < 0 || laptops < 0 {
		return pop, fmt.Errorf("%w: item counts must not be negative", ErrInvalidGeneratorConfig)
	}
	if bicycles > 0 {
		if pop.Bicycles, err = g.Bicycles(bicycles, pop.People); err != nil {
			return pop, err
		}
	}
	if laptops > 0 {
		if pop.Laptops, err = g.Laptops(laptops, pop.People); err != nil {
			return pop, err
		}
	}
	return pop, nil
}
