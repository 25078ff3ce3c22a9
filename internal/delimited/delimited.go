// Package delimited stores entity batches as delimiter-separated text files,
// one file per kind, each starting with a header row.
package delimited

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mesh-intelligence/holdings/internal/blob"
	"github.com/mesh-intelligence/holdings/internal/codec"
	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Extension is appended to names that carry none.
const Extension = ".csv"

// Options configure an Adapter.
type Options struct {
	// Delimiter separates fields; types.DefaultDelimiter when empty.
	Delimiter string
	// Names overrides the per-kind file names.
	Names types.TableNames
}

// Adapter implements types.Adapter for delimited text.
type Adapter struct {
	store blob.Store
	comma rune
	names types.TableNames
	log   *logrus.Entry
}

// New returns an Adapter writing through store.
func New(store blob.Store, opts Options, log *logrus.Entry) (*Adapter, error) {
	delim := opts.Delimiter
	if delim == "" {
		delim = types.DefaultDelimiter
	}
	r, size := utf8.DecodeRuneInString(delim)
	if size != len(delim) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return nil, fmt.Errorf("%w: %q", types.ErrDelimiterInvalid, delim)
	}
	return &Adapter{
		store: store,
		comma: r,
		names: opts.Names,
		log:   logging.OrDiscard(log).WithField(logging.FieldBackend, types.BackendDelimited),
	}, nil
}

// Name returns types.BackendDelimited.
func (a *Adapter) Name() string { return types.BackendDelimited }

// EmptyPolicy rejects empty batches.
func (a *Adapter) EmptyPolicy() types.EmptyPolicy { return types.EmptyReject }

func (a *Adapter) key(kind types.Kind, name string) string {
	if name == "" {
		name = a.names.For(kind)
	}
	return codec.FileKey(name, Extension)
}

// Encode renders batch as delimited text with a header row.
func (a *Adapter) Encode(batch types.Batch) ([]byte, error) {
	cols, err := codec.Columns(batch.Kind)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = a.comma
	if err := w.Write(cols); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for _, e := range batch.Entities() {
		if err := w.Write(codec.Row(e)); err != nil {
			return nil, fmt.Errorf("writing %s %s: %w", batch.Kind, e.EntityID(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing: %w", err)
	}
	return buf.Bytes(), nil
}

// Write replaces the file for the batch's kind.
func (a *Adapter) Write(ctx context.Context, batch types.Batch, opts types.WriteOptions) error {
	if batch.Len() == 0 {
		return fmt.Errorf("writing %s: %w", batch.Kind.Plural(), types.ErrEmptyInput)
	}
	data, err := a.Encode(batch)
	if err != nil {
		return err
	}
	key := a.key(batch.Kind, opts.Name)
	if err := a.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", a.store.Location(key), err)
	}
	a.log.WithField(logging.FieldKind, batch.Kind.String()).
		WithField(logging.FieldTarget, a.store.Location(key)).
		WithField(logging.FieldCount, batch.Len()).
		Debug("wrote batch")
	return nil
}

// Decode parses delimited text into a batch of kind. A leading UTF-8 BOM is
// dropped and columns are located by header name, so files with reordered
// or extra columns still load.
func (a *Adapter) Decode(kind types.Kind, data []byte) (types.Batch, error) {
	src := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(src)
	r.Comma = a.comma
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return types.Batch{Kind: kind}, fmt.Errorf("%w: %s file has no header", types.ErrFormat, kind)
	}
	if err != nil {
		return types.Batch{Kind: kind}, fmt.Errorf("%w: %v", types.ErrFormat, err)
	}
	h, err := codec.NewHeader(kind, header)
	if err != nil {
		return types.Batch{Kind: kind}, err
	}

	dec := codec.NewDecoder(kind, h, codec.ParseInt)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.Batch{Kind: kind}, fmt.Errorf("%w: %v", types.ErrFormat, err)
		}
		line, _ := r.FieldPos(0)
		if err := dec.Add(line, row); err != nil {
			return types.Batch{Kind: kind}, err
		}
	}
	return dec.Batch(), nil
}

// Read loads every entity of kind from its file.
func (a *Adapter) Read(ctx context.Context, kind types.Kind, opts types.ReadOptions) (types.Batch, error) {
	if !kind.Valid() {
		return types.Batch{}, fmt.Errorf("%w: %s", types.ErrUnknownType, kind)
	}
	key := a.key(kind, opts.Name)
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return types.Batch{Kind: kind}, fmt.Errorf("reading %s: %w", kind.Plural(), err)
	}
	batch, err := a.Decode(kind, data)
	if err != nil {
		return batch, fmt.Errorf("reading %s: %w", a.store.Location(key), err)
	}
	a.log.WithField(logging.FieldKind, kind.String()).
		WithField(logging.FieldCount, batch.Len()).
		Debug("read batch")
	return batch, nil
}
