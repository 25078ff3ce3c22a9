// Package link rebuilds the in-memory ownership graph from the OwnerID
// foreign keys carried by bicycles and laptops.
//
// Nothing here performs I/O or returns an error: an OwnerID that matches no
// person is a valid terminal state and simply leaves the item unowned.
package link

import "github.com/mesh-intelligence/holdings/pkg/types"

// Link attaches every bicycle and laptop to the person named by its
// OwnerID, setting the item's Owner and appending it to the person's
// collection. Items already present in the owner's collection are not
// appended again, so calling Link twice is harmless. Items whose OwnerID
// is empty or unknown keep a nil Owner.
func Link(people []*types.Person, bicycles []*types.Bicycle, laptops []*types.Laptop) {
	byID := make(map[string]*types.Person, len(people))
	for _, p := range people {
		if p == nil {
			continue
		}
		byID[p.ID] = p
	}

	for _, b := range bicycles {
		if b == nil {
			continue
		}
		if owner, ok := byID[b.OwnerID]; ok {
			owner.AddBicycle(b)
			continue
		}
		b.Owner = nil
	}

	for _, l := range laptops {
		if l == nil {
			continue
		}
		if owner, ok := byID[l.OwnerID]; ok {
			owner.AddLaptop(l)
			continue
		}
		l.Owner = nil
	}
}

// Relink discards every derived relationship first, then links from
// scratch. Use it when OwnerID values have changed since the last Link.
func Relink(people []*types.Person, bicycles []*types.Bicycle, laptops []*types.Laptop) {
	for _, p := range people {
		if p != nil {
			p.ClearItems()
		}
	}
	for _, b := range bicycles {
		if b != nil {
			b.Owner = nil
		}
	}
	for _, l := range laptops {
		if l != nil {
			l.Owner = nil
		}
	}
	Link(people, bicycles, laptops)
}

// Population links a whole population in place.
func Population(pop types.Population) {
	Link(pop.People, pop.Bicycles, pop.Laptops)
}
