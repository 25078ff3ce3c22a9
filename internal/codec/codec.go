// Package codec maps entities to flat rows and tagged records shared by the
// file-based backends. Every backend writes the same column names in the
// same order, persists ownership as a scalar owner id, and parses booleans
// and integers the same way.
package codec

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Column names per kind, in write order.
var (
	PersonColumns  = []string{"id", "name", "age", "male"}
	BicycleColumns = []string{"id", "brand", "model", "year", "owner_id"}
	LaptopColumns  = []string{"id", "brand", "model", "year", "ram", "vram", "owner_id"}
)

// Columns returns the column list for kind.
func Columns(kind types.Kind) ([]string, error) {
	switch kind {
	case types.KindPerson:
		return PersonColumns, nil
	case types.KindBicycle:
		return BicycleColumns, nil
	case types.KindLaptop:
		return LaptopColumns, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnknownType, kind)
}

// Canonical boolean tokens written by text formats.
const (
	TrueToken  = "true"
	FalseToken = "false"
)

var (
	truthy = map[string]bool{"true": true, "t": true, "1": true, "yes": true, "y": true}
	falsy  = map[string]bool{"false": true, "f": true, "0": true, "no": true, "n": true}
)

// FormatBool returns the canonical token for b.
func FormatBool(b bool) string {
	if b {
		return TrueToken
	}
	return FalseToken
}

// ParseBool accepts true/t/1/yes/y and false/f/0/no/n in any case. Any other
// token is a format error rather than a silent false.
func ParseBool(s string) (bool, error) {
	tok := strings.ToLower(strings.TrimSpace(s))
	if truthy[tok] {
		return true, nil
	}
	if falsy[tok] {
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", types.ErrFormat, s)
}

// ParseInt parses a base-10 integer.
func ParseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", types.ErrFormat, s)
	}
	return n, nil
}

// ParseIntLenient also accepts integral floats such as "16.0" or "2.021E3",
// which spreadsheet tools emit for numeric cells. Fractional values are a
// format error.
func ParseIntLenient(s string) (int, error) {
	if n, err := ParseInt(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q is not an integer", types.ErrFormat, s)
	}
	return int(f), nil
}

// Row encodes an entity as strings in its kind's column order.
func Row(e types.Entity) []string {
	enc := &rowEncoder{}
	_ = e.Accept(enc)
	return enc.row
}

type rowEncoder struct {
	row []string
}

func (r *rowEncoder) VisitPerson(p *types.Person) error {
	r.row = []string{p.ID, p.Name, strconv.Itoa(p.Age), FormatBool(p.Male)}
	return nil
}

func (r *rowEncoder) VisitBicycle(b *types.Bicycle) error {
	r.row = []string{b.ID, b.Brand, b.Model, strconv.Itoa(b.Year), b.OwnerKey()}
	return nil
}

func (r *rowEncoder) VisitLaptop(l *types.Laptop) error {
	r.row = []string{l.ID, l.Brand, l.Model, strconv.Itoa(l.Year), strconv.Itoa(l.RAM), strconv.Itoa(l.VRAM), l.OwnerKey()}
	return nil
}

// Header maps column names to their position in a header row. Names are
// matched case-insensitively after trimming.
type Header map[string]int

// NewHeader indexes a header row and checks that every column of kind is
// present. Extra columns are ignored.
func NewHeader(kind types.Kind, header []string) (Header, error) {
	cols, err := Columns(kind)
	if err != nil {
		return nil, err
	}
	h := make(Header, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			return nil, fmt.Errorf("%w: %s header is missing column %q", types.ErrFormat, kind, c)
		}
	}
	return h, nil
}

// IntParser converts a cell to an int; ParseInt or ParseIntLenient.
type IntParser func(string) (int, error)

// Decoder turns rows into a Batch of one kind.
type Decoder struct {
	kind   types.Kind
	header Header
	toInt  IntParser
	batch  types.Batch
}

// NewDecoder returns a decoder for rows laid out as header describes.
func NewDecoder(kind types.Kind, header Header, toInt IntParser) *Decoder {
	if toInt == nil {
		toInt = ParseInt
	}
	return &Decoder{kind: kind, header: header, toInt: toInt, batch: types.Batch{Kind: kind}}
}

// Add decodes one row. line is used only for error messages.
func (d *Decoder) Add(line int, row []string) error {
	get := func(col string) string {
		i := d.header[col]
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	wrap := func(err error) error {
		return fmt.Errorf("%s row %d: %w", d.kind, line, err)
	}

	id := get("id")
	if strings.TrimSpace(id) == "" {
		return wrap(fmt.Errorf("%w: empty id", types.ErrFormat))
	}

	switch d.kind {
	case types.KindPerson:
		age, err := d.toInt(get("age"))
		if err != nil {
			return wrap(err)
		}
		male, err := ParseBool(get("male"))
		if err != nil {
			return wrap(err)
		}
		d.batch.People = append(d.batch.People, types.NewPerson(id, get("name"), age, male))
	case types.KindBicycle:
		year, err := d.toInt(get("year"))
		if err != nil {
			return wrap(err)
		}
		d.batch.Bicycles = append(d.batch.Bicycles,
			types.NewBicycle(id, get("brand"), get("model"), year, types.OwnedByID(get("owner_id"))))
	case types.KindLaptop:
		ints := make([]int, 3)
		for i, col := range []string{"year", "ram", "vram"} {
			n, err := d.toInt(get(col))
			if err != nil {
				return wrap(err)
			}
			ints[i] = n
		}
		d.batch.Laptops = append(d.batch.Laptops,
			types.NewLaptop(id, get("brand"), get("model"), ints[0], ints[1], ints[2], types.OwnedByID(get("owner_id"))))
	default:
		return fmt.Errorf("%w: %s", types.ErrUnknownType, d.kind)
	}
	return nil
}

// Batch returns everything decoded so far.
func (d *Decoder) Batch() types.Batch { return d.batch }

// FileKey returns the blob key for a destination name. A name without an
// extension gets ext appended; an explicit extension is kept.
func FileKey(name, ext string) string {
	if path.Ext(name) != "" {
		return name
	}
	return name + ext
}
