package types

import (
	"context"
	"errors"
)

// Adapter converts entity batches to and from one storage format.
// Implementations never rebuild relationships on Read; items come back with
// OwnerID set and Owner nil.
type Adapter interface {
	// Name returns the backend name (one of the Backend constants).
	Name() string

	// EmptyPolicy declares how Write treats an empty batch.
	EmptyPolicy() EmptyPolicy

	// Write serializes batch to the destination named by opts, or the
	// kind's default name. Missing containers are created. Non-relational
	// backends replace an existing destination of the same name.
	Write(ctx context.Context, batch Batch, opts WriteOptions) error

	// Read deserializes every entity of kind from the source named by opts.
	// Returns ErrNotFound when the source does not exist and ErrFormat when
	// it cannot be parsed into the kind's schema.
	Read(ctx context.Context, kind Kind, opts ReadOptions) (Batch, error)
}

// RelationsWriter is implemented by adapters that can persist a
// human-readable summary of who owns what next to the entity data.
type RelationsWriter interface {
	WriteRelations(ctx context.Context, people []*Person) error
}

// WriteOptions tune a single Write call.
type WriteOptions struct {
	// Name overrides the default file, sheet or table name for the kind.
	Name string

	// Create drops and recreates the destination table before inserting.
	// Only the relational backend honours it; false appends.
	Create bool
}

// ReadOptions tune a single Read call.
type ReadOptions struct {
	// Name overrides the default file, sheet or table name for the kind.
	Name string
}

// EmptyPolicy is an adapter's declared behaviour for an empty batch.
type EmptyPolicy int

const (
	// EmptySkip makes an empty write a successful no-op.
	EmptySkip EmptyPolicy = iota
	// EmptyReject makes an empty write fail with ErrEmptyInput.
	EmptyReject
)

// String returns "skip" or "reject".
func (p EmptyPolicy) String() string {
	if p == EmptyReject {
		return "reject"
	}
	return "skip"
}

// Round-trip errors. Adapters wrap these with context; callers classify
// with errors.Is.
var (
	ErrNotFound    = errors.New("source not found")
	ErrFormat      = errors.New("malformed data")
	ErrUnknownType = errors.New("unrecognized entity type")
	ErrConstraint  = errors.New("constraint violation")
	ErrEmptyInput  = errors.New("empty entity list")
)
