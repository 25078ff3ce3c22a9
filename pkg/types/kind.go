package types

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three entity types.
type Kind int

// Entity kinds. The zero value is not a valid kind.
const (
	KindPerson Kind = iota + 1
	KindBicycle
	KindLaptop
)

// Kinds lists every entity kind in foreign-key order: owners first.
var Kinds = []Kind{KindPerson, KindBicycle, KindLaptop}

// String returns the singular lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPerson:
		return "person"
	case KindBicycle:
		return "bicycle"
	case KindLaptop:
		return "laptop"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Plural returns the collection name used for default file, sheet and
// table names ("people", "bicycles", "laptops").
func (k Kind) Plural() string {
	switch k {
	case KindPerson:
		return "people"
	case KindBicycle:
		return "bicycles"
	case KindLaptop:
		return "laptops"
	default:
		return ""
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindPerson || k == KindBicycle || k == KindLaptop
}

// ParseKind accepts a singular or plural kind name, case-insensitively.
// Returns ErrUnknownType for anything else.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "person", "people":
		return KindPerson, nil
	case "bicycle", "bicycles":
		return KindBicycle, nil
	case "laptop", "laptops":
		return KindLaptop, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}
