package link

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

// flatPopulation mimics a fresh read: owner ids only, no pointers.
func flatPopulation() ([]*types.Person, []*types.Bicycle, []*types.Laptop) {
	people := []*types.Person{
		types.NewPerson("P-1", "Ada", 36, false),
		types.NewPerson("P-2", "Bela", 22, true),
	}
	bicycles := []*types.Bicycle{
		types.NewBicycle("B-1", "Cube", "Acid", 2020, types.OwnedByID("P-1")),
		types.NewBicycle("B-2", "Trek", "Marlin", 2021, types.OwnedByID("P-1")),
		types.NewBicycle("B-3", "Giant", "Talon", 2021, types.OwnedByID("P-404")),
		types.NewBicycle("B-4", "Scott", "Scale", 2019),
	}
	laptops := []*types.Laptop{
		types.NewLaptop("L-1", "Dell", "XPS", 2022, 16, 8, types.OwnedByID("P-2")),
	}
	return people, bicycles, laptops
}

func TestLinkAttachesBothDirections(t *testing.T) {
	people, bicycles, laptops := flatPopulation()

	Link(people, bicycles, laptops)

	require.Len(t, people[0].Bicycles, 2)
	assert.Same(t, bicycles[0], people[0].Bicycles[0])
	assert.Same(t, bicycles[1], people[0].Bicycles[1])
	assert.Same(t, people[0], bicycles[0].Owner)
	assert.Same(t, people[0], bicycles[1].Owner)

	require.Len(t, people[1].Laptops, 1)
	assert.Same(t, people[1], laptops[0].Owner)
	assert.Empty(t, people[1].Bicycles)
}

func TestLinkIsIdempotent(t *testing.T) {
	people, bicycles, laptops := flatPopulation()

	Link(people, bicycles, laptops)
	Link(people, bicycles, laptops)
	Link(people, bicycles, laptops)

	assert.Len(t, people[0].Bicycles, 2)
	assert.Len(t, people[1].Laptops, 1)
}

func TestLinkToleratesDanglingOwner(t *testing.T) {
	people, bicycles, laptops := flatPopulation()

	assert.NotPanics(t, func() { Link(people, bicycles, laptops) })

	dangling := bicycles[2]
	assert.Nil(t, dangling.Owner)
	assert.Equal(t, "P-404", dangling.OwnerID, "foreign key is kept as-is")
	for _, p := range people {
		for _, b := range p.Bicycles {
			assert.NotEqual(t, dangling.ID, b.ID)
		}
	}

	assert.Nil(t, bicycles[3].Owner, "no owner id means no owner")
}

func TestLinkSkipsNilEntries(t *testing.T) {
	people, bicycles, laptops := flatPopulation()
	people = append(people, nil)
	bicycles = append(bicycles, nil)
	laptops = append(laptops, nil)

	assert.NotPanics(t, func() { Link(people, bicycles, laptops) })
}

func TestLinkKeepsConstructionTimeLinks(t *testing.T) {
	p := types.NewPerson("P-1", "Ada", 36, false)
	b := types.NewBicycle("B-1", "Cube", "Acid", 2020, types.OwnedBy(p))

	Link([]*types.Person{p}, []*types.Bicycle{b}, nil)

	assert.Len(t, p.Bicycles, 1)
	assert.Same(t, p, b.Owner)
}

func TestRelinkFollowsChangedOwnerIDs(t *testing.T) {
	people, bicycles, laptops := flatPopulation()
	Link(people, bicycles, laptops)

	bicycles[0].OwnerID = "P-2"
	Relink(people, bicycles, laptops)

	assert.Len(t, people[0].Bicycles, 1)
	require.Len(t, people[1].Bicycles, 1)
	assert.Same(t, people[1], bicycles[0].Owner)
}

func TestLinkLargePopulation(t *testing.T) {
	var people []*types.Person
	for i := range 50 {
		people = append(people, types.NewPerson(fmt.Sprintf("P-%06d", i+1), fmt.Sprintf("Person %d", i+1), 30, i%2 == 0))
	}
	var laptops []*types.Laptop
	for i := range 30 {
		owner := people[(i*7)%len(people)]
		laptops = append(laptops, types.NewLaptop(fmt.Sprintf("L-%06d", i+1), "Dell", "XPS", 2022, 16, 8, types.OwnedByID(owner.ID)))
	}

	Population(types.Population{People: people, Laptops: laptops})

	total := 0
	for _, p := range people {
		total += len(p.Laptops)
		for _, l := range p.Laptops {
			assert.Equal(t, p.Name, l.Owner.Name)
		}
	}
	assert.Equal(t, 30, total)
}

func TestIndex(t *testing.T) {
	people, bicycles, laptops := flatPopulation()
	idx := BuildIndex(people, bicycles, laptops)

	owned := idx.BicyclesOf("P-1")
	require.Len(t, owned, 2)
	assert.Equal(t, "B-1", owned[0].ID)
	assert.Equal(t, "B-2", owned[1].ID)
	assert.Empty(t, idx.BicyclesOf("P-2"))
	assert.Len(t, idx.LaptopsOf("P-2"), 1)
	assert.Empty(t, idx.LaptopsOf("P-404"))

	orphanBikes, orphanLaptops := idx.Orphans()
	require.Len(t, orphanBikes, 2)
	assert.Equal(t, "B-3", orphanBikes[0].ID)
	assert.Equal(t, "B-4", orphanBikes[1].ID)
	assert.Empty(t, orphanLaptops)

	// Building the index does not touch the pointers.
	assert.Nil(t, bicycles[0].Owner)
}
