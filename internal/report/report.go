// Package report computes summary figures over a loaded population: laptop
// statistics per brand and ownership totals.
package report

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/holdings/pkg/link"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// BrandStats aggregates the laptops of one brand.
type BrandStats struct {
	Brand   string  `json:"brand"`
	Count   int     `json:"count"`
	AvgRAM  float64 `json:"avg_ram"`
	AvgVRAM float64 `json:"avg_vram"`
	// Share is Count over the total number of laptops.
	Share float64 `json:"share"`
}

// LaptopStats groups laptops by brand, sorted by brand name. Nil entries
// are ignored.
func LaptopStats(laptops []*types.Laptop) []BrandStats {
	type acc struct {
		count, ram, vram int
	}
	byBrand := make(map[string]*acc)
	total := 0
	for _, l := range laptops {
		if l == nil {
			continue
		}
		a, ok := byBrand[l.Brand]
		if !ok {
			a = &acc{}
			byBrand[l.Brand] = a
		}
		a.count++
		a.ram += l.RAM
		a.vram += l.VRAM
		total++
	}

	out := make([]BrandStats, 0, len(byBrand))
	for brand, a := range byBrand {
		out = append(out, BrandStats{
			Brand:   brand,
			Count:   a.count,
			AvgRAM:  float64(a.ram) / float64(a.count),
			AvgVRAM: float64(a.vram) / float64(a.count),
			Share:   float64(a.count) / float64(total),
		})
	}
	slices.SortFunc(out, func(a, b BrandStats) int { return cmp.Compare(a.Brand, b.Brand) })
	return out
}

// Summary counts a population and its ownership gaps.
type Summary struct {
	People         int `json:"people"`
	Bicycles       int `json:"bicycles"`
	Laptops        int `json:"laptops"`
	OrphanBicycles int `json:"orphan_bicycles"`
	OrphanLaptops  int `json:"orphan_laptops"`
	// Idle counts people who own nothing.
	Idle int `json:"idle"`
}

// Summarize counts pop using owner ids, so it works on linked and unlinked
// populations alike.
func Summarize(pop types.Population) Summary {
	idx := link.BuildIndex(pop.People, pop.Bicycles, pop.Laptops)
	orphanBikes, orphanLaptops := idx.Orphans()
	s := Summary{
		People:         len(pop.People),
		Bicycles:       len(pop.Bicycles),
		Laptops:        len(pop.Laptops),
		OrphanBicycles: len(orphanBikes),
		OrphanLaptops:  len(orphanLaptops),
	}
	for _, p := range pop.People {
		if len(idx.BicyclesOf(p.ID)) == 0 && len(idx.LaptopsOf(p.ID)) == 0 {
			s.Idle++
		}
	}
	return s
}
