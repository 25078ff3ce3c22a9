package types

import (
	"fmt"
	"strings"
)

// Person owns zero or more bicycles and laptops.
type Person struct {
	ID   string // Unique, stable, format-free identifier.
	Name string
	Age  int
	Male bool

	// Bicycles and Laptops are derived from the items' OwnerID and are
	// never persisted. Package link rebuilds them after a load.
	Bicycles []*Bicycle
	Laptops  []*Laptop
}

// NewPerson returns a person with empty item collections.
func NewPerson(id, name string, age int, male bool) *Person {
	return &Person{
		ID:       id,
		Name:     name,
		Age:      age,
		Male:     male,
		Bicycles: []*Bicycle{},
		Laptops:  []*Laptop{},
	}
}

func (p *Person) isEntity() {}

// Kind returns KindPerson.
func (p *Person) Kind() Kind { return KindPerson }

// EntityID returns p.ID.
func (p *Person) EntityID() string { return p.ID }

// Accept calls v.VisitPerson.
func (p *Person) Accept(v Visitor) error { return v.VisitPerson(p) }

// Equal reports whether p and o have the same ID. Other fields are ignored.
func (p *Person) Equal(o *Person) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.ID == o.ID
}

// Compare orders people by ID.
func (p *Person) Compare(o *Person) int {
	return strings.Compare(p.ID, o.ID)
}

// AddBicycle attaches b to p unless a bicycle with the same ID is already
// attached. It sets the bicycle's Owner and OwnerID. Returns false when b
// was already present.
func (p *Person) AddBicycle(b *Bicycle) bool {
	b.Owner = p
	b.OwnerID = p.ID
	if containsID(p.Bicycles, b.ID) {
		return false
	}
	p.Bicycles = append(p.Bicycles, b)
	return true
}

// AddLaptop attaches l to p unless a laptop with the same ID is already
// attached. It sets the laptop's Owner and OwnerID. Returns false when l
// was already present.
func (p *Person) AddLaptop(l *Laptop) bool {
	l.Owner = p
	l.OwnerID = p.ID
	if containsID(p.Laptops, l.ID) {
		return false
	}
	p.Laptops = append(p.Laptops, l)
	return true
}

// ClearItems drops the derived item collections.
func (p *Person) ClearItems() {
	p.Bicycles = []*Bicycle{}
	p.Laptops = []*Laptop{}
}

// String renders "#ID: Name (age, male|female)".
func (p *Person) String() string {
	sex := "female"
	if p.Male {
		sex = "male"
	}
	return fmt.Sprintf("#%s: %s (%d, %s)", p.ID, p.Name, p.Age, sex)
}

func containsID[E Entity](items []E, id string) bool {
	for _, it := range items {
		if it.EntityID() == id {
			return true
		}
	}
	return false
}
