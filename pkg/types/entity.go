package types

import (
	"fmt"
	"slices"
	"strings"
)

// Entity is the closed set {*Person, *Bicycle, *Laptop}. The unexported
// marker method keeps other packages from adding members.
type Entity interface {
	Kind() Kind
	EntityID() string
	Accept(v Visitor) error
	isEntity()
}

// Visitor matches on the concrete entity type. Adding an entity kind adds
// a method here, so every visitor stops compiling until it handles it.
type Visitor interface {
	VisitPerson(p *Person) error
	VisitBicycle(b *Bicycle) error
	VisitLaptop(l *Laptop) error
}

// Compile-time checks that all three entities are members of the variant.
var (
	_ Entity = (*Person)(nil)
	_ Entity = (*Bicycle)(nil)
	_ Entity = (*Laptop)(nil)
)

// EqualByID reports whether a and b are the same kind with the same ID.
func EqualByID(a, b Entity) bool {
	return a.Kind() == b.Kind() && a.EntityID() == b.EntityID()
}

// SortByID sorts entities in place by ID, lexicographically.
func SortByID[E Entity](s []E) {
	slices.SortStableFunc(s, func(a, b E) int {
		return compareIDs(a.EntityID(), b.EntityID())
	})
}

func compareIDs(a, b string) int { return strings.Compare(a, b) }

// Batch is a homogeneous list of one entity kind. Only the slice matching
// Kind is meaningful.
type Batch struct {
	Kind     Kind
	People   []*Person
	Bicycles []*Bicycle
	Laptops  []*Laptop
}

// PeopleBatch wraps people in a Batch.
func PeopleBatch(people []*Person) Batch { return Batch{Kind: KindPerson, People: people} }

// BicyclesBatch wraps bicycles in a Batch.
func BicyclesBatch(bicycles []*Bicycle) Batch { return Batch{Kind: KindBicycle, Bicycles: bicycles} }

// LaptopsBatch wraps laptops in a Batch.
func LaptopsBatch(laptops []*Laptop) Batch { return Batch{Kind: KindLaptop, Laptops: laptops} }

// Len returns the number of entities of b.Kind.
func (b Batch) Len() int {
	switch b.Kind {
	case KindPerson:
		return len(b.People)
	case KindBicycle:
		return len(b.Bicycles)
	case KindLaptop:
		return len(b.Laptops)
	}
	return 0
}

// Entities returns the batch contents as a generic slice.
func (b Batch) Entities() []Entity {
	out := make([]Entity, 0, b.Len())
	switch b.Kind {
	case KindPerson:
		for _, p := range b.People {
			out = append(out, p)
		}
	case KindBicycle:
		for _, bc := range b.Bicycles {
			out = append(out, bc)
		}
	case KindLaptop:
		for _, l := range b.Laptops {
			out = append(out, l)
		}
	}
	return out
}

// Each calls the matching visitor method for every entity in the batch and
// stops at the first error.
func (b Batch) Each(v Visitor) error {
	for _, e := range b.Entities() {
		if err := e.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// BatchOf groups entities into a Batch whose kind is that of the first
// element. A nil element or a mix of kinds returns ErrUnknownType; an empty
// slice returns ErrEmptyInput.
func BatchOf(entities []Entity) (Batch, error) {
	if len(entities) == 0 {
		return Batch{}, ErrEmptyInput
	}
	if entities[0] == nil {
		return Batch{}, fmt.Errorf("%w: nil entity at index 0", ErrUnknownType)
	}
	c := &collector{batch: Batch{Kind: entities[0].Kind()}}
	for i, e := range entities {
		if e == nil {
			return Batch{}, fmt.Errorf("%w: nil entity at index %d", ErrUnknownType, i)
		}
		if e.Kind() != c.batch.Kind {
			return Batch{}, fmt.Errorf("%w: %s at index %d in a %s batch", ErrUnknownType, e.Kind(), i, c.batch.Kind)
		}
		if err := e.Accept(c); err != nil {
			return Batch{}, err
		}
	}
	return c.batch, nil
}

// collector appends visited entities to the slice of their kind.
type collector struct {
	batch Batch
}

func (c *collector) VisitPerson(p *Person) error {
	c.batch.People = append(c.batch.People, p)
	return nil
}

func (c *collector) VisitBicycle(b *Bicycle) error {
	c.batch.Bicycles = append(c.batch.Bicycles, b)
	return nil
}

func (c *collector) VisitLaptop(l *Laptop) error {
	c.batch.Laptops = append(c.batch.Laptops, l)
	return nil
}

// Population is the full set of entities handled together by Save and Load.
type Population struct {
	People   []*Person
	Bicycles []*Bicycle
	Laptops  []*Laptop
}
