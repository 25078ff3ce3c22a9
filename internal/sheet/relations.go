package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Relation is one row of the relations sheet.
type Relation struct {
	PersonID      string
	PersonName    string
	BicycleModels []string
	LaptopModels  []string
}

// Relations summarises linked people. Call link.Link first; unlinked people
// report no items.
func Relations(people []*types.Person) []Relation {
	out := make([]Relation, 0, len(people))
	for _, p := range people {
		if p == nil {
			continue
		}
		r := Relation{PersonID: p.ID, PersonName: p.Name}
		for _, b := range p.Bicycles {
			r.BicycleModels = append(r.BicycleModels, b.Model)
		}
		for _, l := range p.Laptops {
			r.LaptopModels = append(r.LaptopModels, l.Model)
		}
		out = append(out, r)
	}
	return out
}

// WriteRelations replaces the relations sheet with one row per person.
func (a *Adapter) WriteRelations(ctx context.Context, people []*types.Person) error {
	f, err := a.open(ctx)
	if err != nil {
		return fmt.Errorf("writing relations: %w", err)
	}
	sh, err := replaceSheet(f, RelationsSheet)
	if err != nil {
		return err
	}
	addStrings(sh, RelationsColumns)
	rels := Relations(people)
	for _, r := range rels {
		addStrings(sh, []string{
			r.PersonID,
			r.PersonName,
			strings.Join(r.BicycleModels, ModelSeparator),
			strings.Join(r.LaptopModels, ModelSeparator),
		})
	}
	if err := a.save(ctx, f); err != nil {
		return err
	}
	a.log.WithField(logging.FieldCount, len(rels)).Debug("wrote relations sheet")
	return nil
}

// ReadRelations returns the rows of the relations sheet.
func (a *Adapter) ReadRelations(ctx context.Context) ([]Relation, error) {
	data, err := a.store.Get(ctx, a.workbook)
	if err != nil {
		return nil, fmt.Errorf("reading relations: %w", err)
	}
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", types.ErrFormat, err)
	}
	sh, ok := f.Sheet[RelationsSheet]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q", types.ErrNotFound, RelationsSheet)
	}
	var out []Relation
	for i, row := range sh.Rows {
		if i == 0 || row == nil {
			continue
		}
		v := cellValues(row)
		for len(v) < len(RelationsColumns) {
			v = append(v, "")
		}
		if blank(v) {
			continue
		}
		out = append(out, Relation{
			PersonID:      v[0],
			PersonName:    v[1],
			BicycleModels: splitModels(v[2]),
			LaptopModels:  splitModels(v[3]),
		})
	}
	return out, nil
}

func splitModels(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ModelSeparator)
}
