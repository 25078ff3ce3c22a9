package link

import "github.com/mesh-intelligence/holdings/pkg/types"

// Index maps a person id to the positions of the items it owns in the
// slices the index was built from. It is a derived cache: never persist it,
// rebuild it whenever the slices change.
type Index struct {
	bicycles []*types.Bicycle
	laptops  []*types.Laptop

	people          map[string]int
	bicyclesByOwner map[string][]int
	laptopsByOwner  map[string][]int
}

// BuildIndex indexes items by OwnerID. Items whose OwnerID matches no
// person are reported by Orphans.
func BuildIndex(people []*types.Person, bicycles []*types.Bicycle, laptops []*types.Laptop) *Index {
	idx := &Index{
		bicycles:        bicycles,
		laptops:         laptops,
		people:          make(map[string]int, len(people)),
		bicyclesByOwner: make(map[string][]int),
		laptopsByOwner:  make(map[string][]int),
	}
	for i, p := range people {
		idx.people[p.ID] = i
	}
	for i, b := range bicycles {
		if _, ok := idx.people[b.OwnerID]; ok {
			idx.bicyclesByOwner[b.OwnerID] = append(idx.bicyclesByOwner[b.OwnerID], i)
		}
	}
	for i, l := range laptops {
		if _, ok := idx.people[l.OwnerID]; ok {
			idx.laptopsByOwner[l.OwnerID] = append(idx.laptopsByOwner[l.OwnerID], i)
		}
	}
	return idx
}

// BicyclesOf returns the bicycles owned by personID in input order.
func (idx *Index) BicyclesOf(personID string) []*types.Bicycle {
	positions := idx.bicyclesByOwner[personID]
	out := make([]*types.Bicycle, 0, len(positions))
	for _, i := range positions {
		out = append(out, idx.bicycles[i])
	}
	return out
}

// LaptopsOf returns the laptops owned by personID in input order.
func (idx *Index) LaptopsOf(personID string) []*types.Laptop {
	positions := idx.laptopsByOwner[personID]
	out := make([]*types.Laptop, 0, len(positions))
	for _, i := range positions {
		out = append(out, idx.laptops[i])
	}
	return out
}

// Orphans returns the items with no resolvable owner.
func (idx *Index) Orphans() ([]*types.Bicycle, []*types.Laptop) {
	var bs []*types.Bicycle
	for _, b := range idx.bicycles {
		if _, ok := idx.people[b.OwnerID]; !ok {
			bs = append(bs, b)
		}
	}
	var ls []*types.Laptop
	for _, l := range idx.laptops {
		if _, ok := idx.people[l.OwnerID]; !ok {
			ls = append(ls, l)
		}
	}
	return bs, ls
}
