package codec

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Record structures for the JSON and YAML backends. The transient Owner
// pointer and the Person item collections have no field here; owner_id is
// a string or null.

// PersonRecord is one element of people.json / people.yaml.
type PersonRecord struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Age  int    `json:"age" yaml:"age"`
	Male bool   `json:"male" yaml:"male"`
}

// BicycleRecord is one element of bicycles.json / bicycles.yaml.
type BicycleRecord struct {
	ID      string  `json:"id" yaml:"id"`
	Brand   string  `json:"brand" yaml:"brand"`
	Model   string  `json:"model" yaml:"model"`
	Year    int     `json:"year" yaml:"year"`
	OwnerID *string `json:"owner_id" yaml:"owner_id"`
}

// LaptopRecord is one element of laptops.json / laptops.yaml.
type LaptopRecord struct {
	ID      string  `json:"id" yaml:"id"`
	Brand   string  `json:"brand" yaml:"brand"`
	Model   string  `json:"model" yaml:"model"`
	Year    int     `json:"year" yaml:"year"`
	RAM     int     `json:"ram" yaml:"ram"`
	VRAM    int     `json:"vram" yaml:"vram"`
	OwnerID *string `json:"owner_id" yaml:"owner_id"`
}

func nullable(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func deref(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

// Records converts a batch to the slice of records for its kind, ready for
// json.Marshal or yaml.Marshal.
func Records(batch types.Batch) (any, error) {
	switch batch.Kind {
	case types.KindPerson:
		out := make([]PersonRecord, 0, len(batch.People))
		for _, p := range batch.People {
			out = append(out, PersonRecord{ID: p.ID, Name: p.Name, Age: p.Age, Male: p.Male})
		}
		return out, nil
	case types.KindBicycle:
		out := make([]BicycleRecord, 0, len(batch.Bicycles))
		for _, b := range batch.Bicycles {
			out = append(out, BicycleRecord{
				ID: b.ID, Brand: b.Brand, Model: b.Model, Year: b.Year,
				OwnerID: nullable(b.OwnerKey()),
			})
		}
		return out, nil
	case types.KindLaptop:
		out := make([]LaptopRecord, 0, len(batch.Laptops))
		for _, l := range batch.Laptops {
			out = append(out, LaptopRecord{
				ID: l.ID, Brand: l.Brand, Model: l.Model, Year: l.Year, RAM: l.RAM, VRAM: l.VRAM,
				OwnerID: nullable(l.OwnerKey()),
			})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnknownType, batch.Kind)
}

// Unmarshaler decodes a document into v; json.Unmarshal and yaml.Unmarshal
// both fit.
type Unmarshaler func(data []byte, v any) error

// DecodeRecords parses a document holding a list of records of kind. Parse
// errors and records without an id are reported as ErrFormat.
func DecodeRecords(kind types.Kind, data []byte, unmarshal Unmarshaler) (types.Batch, error) {
	batch := types.Batch{Kind: kind}
	switch kind {
	case types.KindPerson:
		var recs []PersonRecord
		if err := unmarshal(data, &recs); err != nil {
			return batch, fmt.Errorf("%w: %v", types.ErrFormat, err)
		}
		for i, r := range recs {
			if err := requireID(kind, i, r.ID); err != nil {
				return batch, err
			}
			batch.People = append(batch.People, types.NewPerson(r.ID, r.Name, r.Age, r.Male))
		}
	case types.KindBicycle:
		var recs []BicycleRecord
		if err := unmarshal(data, &recs); err != nil {
			return batch, fmt.Errorf("%w: %v", types.ErrFormat, err)
		}
		for i, r := range recs {
			if err := requireID(kind, i, r.ID); err != nil {
				return batch, err
			}
			batch.Bicycles = append(batch.Bicycles,
				types.NewBicycle(r.ID, r.Brand, r.Model, r.Year, types.OwnedByID(deref(r.OwnerID))))
		}
	case types.KindLaptop:
		var recs []LaptopRecord
		if err := unmarshal(data, &recs); err != nil {
			return batch, fmt.Errorf("%w: %v", types.ErrFormat, err)
		}
		for i, r := range recs {
			if err := requireID(kind, i, r.ID); err != nil {
				return batch, err
			}
			batch.Laptops = append(batch.Laptops,
				types.NewLaptop(r.ID, r.Brand, r.Model, r.Year, r.RAM, r.VRAM, types.OwnedByID(deref(r.OwnerID))))
		}
	default:
		return batch, fmt.Errorf("%w: %s", types.ErrUnknownType, kind)
	}
	return batch, nil
}

func requireID(kind types.Kind, i int, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s record %d has no id", types.ErrFormat, kind, i)
	}
	return nil
}
