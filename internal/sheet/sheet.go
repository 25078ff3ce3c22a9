// Package sheet stores entity batches in one spreadsheet workbook, one
// sheet per kind, each sheet starting with a header row. The workbook can
// also carry a relations sheet summarising who owns what.
package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"

	"github.com/mesh-intelligence/holdings/internal/blob"
	"github.com/mesh-intelligence/holdings/internal/codec"
	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// RelationsSheet is the name of the ownership summary sheet.
const RelationsSheet = "relations"

// RelationsColumns is the header of the relations sheet.
var RelationsColumns = []string{"person_id", "person_name", "bicycle_models", "laptop_models"}

// ModelSeparator joins model names in the relations sheet.
const ModelSeparator = ", "

// Options configure an Adapter.
type Options struct {
	// Workbook is the blob key of the workbook; types.DefaultWorkbook when
	// empty.
	Workbook string
	// Names overrides the per-kind sheet names.
	Names types.TableNames
}

// Adapter implements types.Adapter and types.RelationsWriter for xlsx
// workbooks.
type Adapter struct {
	store    blob.Store
	workbook string
	names    types.TableNames
	log      *logrus.Entry
}

// New returns an Adapter keeping its workbook in store.
func New(store blob.Store, opts Options, log *logrus.Entry) *Adapter {
	wb := opts.Workbook
	if wb == "" {
		wb = types.DefaultWorkbook
	}
	return &Adapter{
		store:    store,
		workbook: codec.FileKey(wb, ".xlsx"),
		names:    opts.Names,
		log:      logging.OrDiscard(log).WithField(logging.FieldBackend, types.BackendSheet),
	}
}

// Name returns types.BackendSheet.
func (a *Adapter) Name() string { return types.BackendSheet }

// EmptyPolicy skips empty batches.
func (a *Adapter) EmptyPolicy() types.EmptyPolicy { return types.EmptySkip }

func (a *Adapter) sheetName(kind types.Kind, name string) string {
	if name == "" {
		return a.names.For(kind)
	}
	return name
}

// open loads the workbook, or starts a new one when it does not exist yet.
func (a *Adapter) open(ctx context.Context) (*xlsx.File, error) {
	data, err := a.store.Get(ctx, a.workbook)
	if errors.Is(err, types.ErrNotFound) {
		return xlsx.NewFile(), nil
	}
	if err != nil {
		return nil, err
	}
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", types.ErrFormat, err)
	}
	return f, nil
}

func (a *Adapter) save(ctx context.Context, f *xlsx.File) error {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("encoding workbook: %w", err)
	}
	if err := a.store.Put(ctx, a.workbook, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", a.store.Location(a.workbook), err)
	}
	return nil
}

// replaceSheet returns an empty sheet called name, clearing the rows of an
// existing one. Other sheets are left alone.
func replaceSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if sh, ok := f.Sheet[name]; ok {
		sh.Rows = nil
		sh.Cols = nil
		sh.MaxRow = 0
		sh.MaxCol = 0
		return sh, nil
	}
	sh, err := f.AddSheet(name)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", types.ErrInvalidName, name, err)
	}
	return sh, nil
}

func addStrings(sh *xlsx.Sheet, values []string) {
	row := sh.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// cellWriter appends one typed row per entity.
type cellWriter struct {
	sheet *xlsx.Sheet
}

func (w cellWriter) VisitPerson(p *types.Person) error {
	row := w.sheet.AddRow()
	row.AddCell().SetString(p.ID)
	row.AddCell().SetString(p.Name)
	row.AddCell().SetInt(p.Age)
	row.AddCell().SetBool(p.Male)
	return nil
}

func (w cellWriter) VisitBicycle(b *types.Bicycle) error {
	row := w.sheet.AddRow()
	row.AddCell().SetString(b.ID)
	row.AddCell().SetString(b.Brand)
	row.AddCell().SetString(b.Model)
	row.AddCell().SetInt(b.Year)
	row.AddCell().SetString(b.OwnerKey())
	return nil
}

func (w cellWriter) VisitLaptop(l *types.Laptop) error {
	row := w.sheet.AddRow()
	row.AddCell().SetString(l.ID)
	row.AddCell().SetString(l.Brand)
	row.AddCell().SetString(l.Model)
	row.AddCell().SetInt(l.Year)
	row.AddCell().SetInt(l.RAM)
	row.AddCell().SetInt(l.VRAM)
	row.AddCell().SetString(l.OwnerKey())
	return nil
}

// Write replaces the rows of the kind's sheet, creating the workbook and
// the sheet when missing.
func (a *Adapter) Write(ctx context.Context, batch types.Batch, opts types.WriteOptions) error {
	log := a.log.WithField(logging.FieldKind, batch.Kind.String())
	if batch.Len() == 0 {
		log.Debug("empty batch, nothing written")
		return nil
	}
	cols, err := codec.Columns(batch.Kind)
	if err != nil {
		return err
	}
	f, err := a.open(ctx)
	if err != nil {
		return fmt.Errorf("writing %s: %w", batch.Kind.Plural(), err)
	}
	name := a.sheetName(batch.Kind, opts.Name)
	sh, err := replaceSheet(f, name)
	if err != nil {
		return err
	}
	addStrings(sh, cols)
	if err := batch.Each(cellWriter{sheet: sh}); err != nil {
		return err
	}
	if err := a.save(ctx, f); err != nil {
		return err
	}
	log.WithField(logging.FieldTarget, a.store.Location(a.workbook)+"#"+name).
		WithField(logging.FieldCount, batch.Len()).
		Debug("wrote sheet")
	return nil
}

func cellValues(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.Value
	}
	return out
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Read loads every entity of kind from its sheet. Numeric cells saved by
// spreadsheet tools as integral floats are accepted.
func (a *Adapter) Read(ctx context.Context, kind types.Kind, opts types.ReadOptions) (types.Batch, error) {
	if !kind.Valid() {
		return types.Batch{}, fmt.Errorf("%w: %s", types.ErrUnknownType, kind)
	}
	data, err := a.store.Get(ctx, a.workbook)
	if err != nil {
		return types.Batch{Kind: kind}, fmt.Errorf("reading %s: %w", kind.Plural(), err)
	}
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return types.Batch{Kind: kind}, fmt.Errorf("%w: opening workbook: %v", types.ErrFormat, err)
	}
	name := a.sheetName(kind, opts.Name)
	sh, ok := f.Sheet[name]
	if !ok {
		return types.Batch{Kind: kind}, fmt.Errorf("%w: sheet %q in %s", types.ErrNotFound, name, a.store.Location(a.workbook))
	}
	if len(sh.Rows) == 0 {
		return types.Batch{Kind: kind}, fmt.Errorf("%w: sheet %q has no header", types.ErrFormat, name)
	}
	h, err := codec.NewHeader(kind, cellValues(sh.Rows[0]))
	if err != nil {
		return types.Batch{Kind: kind}, err
	}
	dec := codec.NewDecoder(kind, h, codec.ParseIntLenient)
	for i, row := range sh.Rows[1:] {
		if row == nil {
			continue
		}
		values := cellValues(row)
		if blank(values) {
			continue
		}
		if err := dec.Add(i+2, values); err != nil {
			return types.Batch{Kind: kind}, fmt.Errorf("reading sheet %q: %w", name, err)
		}
	}
	return dec.Batch(), nil
}
