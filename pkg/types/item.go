package types

import "fmt"

// Bicycle is owned by at most one person.
type Bicycle struct {
	ID      string
	Brand   string
	Model   string
	Year    int
	OwnerID string // Foreign key to Person.ID; empty means no owner.

	// Owner is a transient back-reference, never persisted.
	Owner *Person
}

// Laptop is owned by at most one person. RAM and VRAM are in gigabytes.
type Laptop struct {
	ID      string
	Brand   string
	Model   string
	Year    int
	RAM     int
	VRAM    int
	OwnerID string // Foreign key to Person.ID; empty means no owner.

	// Owner is a transient back-reference, never persisted.
	Owner *Person
}

// ItemOption configures ownership when constructing a Bicycle or Laptop.
type ItemOption func(*ownership)

type ownership struct {
	owner   *Person
	ownerID string
}

// OwnedBy attaches the item to p at construction time. The item is also
// registered in p's collection so both directions agree.
func OwnedBy(p *Person) ItemOption {
	return func(o *ownership) {
		o.owner = p
		if p != nil {
			o.ownerID = p.ID
		}
	}
}

// OwnedByID records only the foreign key. The back-reference is left for
// link.Link to resolve.
func OwnedByID(id string) ItemOption {
	return func(o *ownership) {
		o.owner = nil
		o.ownerID = id
	}
}

func applyOwnership(opts []ItemOption) ownership {
	var o ownership
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewBicycle builds a bicycle. With OwnedBy the owner's collection is
// updated as well.
func NewBicycle(id, brand, model string, year int, opts ...ItemOption) *Bicycle {
	o := applyOwnership(opts)
	b := &Bicycle{ID: id, Brand: brand, Model: model, Year: year, OwnerID: o.ownerID}
	if o.owner != nil {
		o.owner.AddBicycle(b)
	}
	return b
}

// NewLaptop builds a laptop. With OwnedBy the owner's collection is
// updated as well.
func NewLaptop(id, brand, model string, year, ram, vram int, opts ...ItemOption) *Laptop {
	o := applyOwnership(opts)
	l := &Laptop{ID: id, Brand: brand, Model: model, Year: year, RAM: ram, VRAM: vram, OwnerID: o.ownerID}
	if o.owner != nil {
		o.owner.AddLaptop(l)
	}
	return l
}

func (b *Bicycle) isEntity() {}

// Kind returns KindBicycle.
func (b *Bicycle) Kind() Kind { return KindBicycle }

// EntityID returns b.ID.
func (b *Bicycle) EntityID() string { return b.ID }

// Accept calls v.VisitBicycle.
func (b *Bicycle) Accept(v Visitor) error { return v.VisitBicycle(b) }

// Equal reports whether b and o have the same ID.
func (b *Bicycle) Equal(o *Bicycle) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.ID == o.ID
}

// Compare orders bicycles by ID.
func (b *Bicycle) Compare(o *Bicycle) int { return compareIDs(b.ID, o.ID) }

// OwnerKey returns the owner id to persist. A set Owner pointer wins over a
// stale OwnerID.
func (b *Bicycle) OwnerKey() string { return ownerKey(b.Owner, b.OwnerID) }

// String renders "#ID: Brand Model (Year) - owner: Name".
func (b *Bicycle) String() string {
	return fmt.Sprintf("#%s: %s %s (%d) - owner: %s", b.ID, b.Brand, b.Model, b.Year, ownerName(b.Owner))
}

func (l *Laptop) isEntity() {}

// Kind returns KindLaptop.
func (l *Laptop) Kind() Kind { return KindLaptop }

// EntityID returns l.ID.
func (l *Laptop) EntityID() string { return l.ID }

// Accept calls v.VisitLaptop.
func (l *Laptop) Accept(v Visitor) error { return v.VisitLaptop(l) }

// Equal reports whether l and o have the same ID.
func (l *Laptop) Equal(o *Laptop) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.ID == o.ID
}

// Compare orders laptops by ID.
func (l *Laptop) Compare(o *Laptop) int { return compareIDs(l.ID, o.ID) }

// OwnerKey returns the owner id to persist. A set Owner pointer wins over a
// stale OwnerID.
func (l *Laptop) OwnerKey() string { return ownerKey(l.Owner, l.OwnerID) }

// String renders "#ID: Brand Model (Year) - RAM: xGB, VRAM: yGB - owner: Name".
func (l *Laptop) String() string {
	return fmt.Sprintf("#%s: %s %s (%d) - RAM: %dGB, VRAM: %dGB - owner: %s",
		l.ID, l.Brand, l.Model, l.Year, l.RAM, l.VRAM, ownerName(l.Owner))
}

func ownerKey(owner *Person, id string) string {
	if owner != nil {
		return owner.ID
	}
	return id
}

func ownerName(owner *Person) string {
	if owner == nil {
		return "none"
	}
	return owner.Name
}
