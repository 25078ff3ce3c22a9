// Package sqlstore persists entity batches in relational tables on SQLite,
// Postgres or MySQL. Bicycles and laptops reference people through a
// foreign key with cascading delete; male is stored as a 0/1 integer.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" with database/sql
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/holdings/internal/codec"
	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// DefaultSQLiteFile is the database file created in DataDir when no DSN is
// configured for the sqlite driver.
const DefaultSQLiteFile = "holdings.db"

// Options configure a Store.
type Options struct {
	SQL types.SQLConfig
	// DataDir hosts the default SQLite file.
	DataDir string
	Names   types.TableNames
}

// Store implements types.Adapter over database/sql.
type Store struct {
	mu      sync.Mutex
	db      *sqlx.DB
	dialect dialect
	names   types.TableNames
	log     *logrus.Entry
}

// Open connects to the configured database. Tables are created lazily on
// the first write. Call Close to release the connection pool.
func Open(ctx context.Context, opts Options, log *logrus.Entry) (*Store, error) {
	d, err := dialectFor(opts.SQL.Driver)
	if err != nil {
		return nil, err
	}
	for _, k := range types.Kinds {
		if !types.ValidIdentifier(opts.Names.For(k)) {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidName, opts.Names.For(k))
		}
	}

	dsn := opts.SQL.DSN
	if d.name == types.SQLDriverSQLite {
		if dsn == "" {
			dataDir := opts.DataDir
			if dataDir == "" {
				dataDir = "."
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
			dsn = filepath.Join(dataDir, DefaultSQLiteFile)
		}
		dsn = sqliteDSN(dsn)
	} else if dsn == "" {
		return nil, fmt.Errorf("%s driver requires a dsn", d.name)
	}

	db, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", d.name, err)
	}
	if d.name == types.SQLDriverSQLite {
		// foreign_keys is a per-connection pragma.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", d.name, err)
	}

	return &Store{
		db:      db,
		dialect: d,
		names:   opts.Names,
		log:     logging.OrDiscard(log).WithField(logging.FieldBackend, types.BackendSQL).WithField("driver", d.name),
	}, nil
}

// Close releases the connection pool. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Name returns types.BackendSQL.
func (s *Store) Name() string { return types.BackendSQL }

// EmptyPolicy rejects empty batches.
func (s *Store) EmptyPolicy() types.EmptyPolicy { return types.EmptyReject }

func (s *Store) table(kind types.Kind, name string) (string, error) {
	if name == "" {
		name = s.names.For(kind)
	}
	if !types.ValidIdentifier(name) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidName, name)
	}
	return name, nil
}

func (s *Store) conn() (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("sql store is closed")
	}
	return s.db, nil
}

// Write inserts batch in one transaction. With opts.Create the kind's table
// is dropped and recreated first; otherwise rows are appended to the
// existing table, which is created when missing.
func (s *Store) Write(ctx context.Context, batch types.Batch, opts types.WriteOptions) error {
	if batch.Len() == 0 {
		return fmt.Errorf("writing %s: %w", batch.Kind.Plural(), types.ErrEmptyInput)
	}
	table, err := s.table(batch.Kind, opts.Name)
	if err != nil {
		return err
	}
	cols, err := codec.Columns(batch.Kind)
	if err != nil {
		return err
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.prepareTable(ctx, tx, batch.Kind, table, opts.Create); err != nil {
		return err
	}

	placeholders := make([]string, len(cols))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := s.dialect.rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	))

	stmt, err := tx.PreparexContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, e := range batch.Entities() {
		if _, err := stmt.ExecContext(ctx, insertArgs(e)...); err != nil {
			return fmt.Errorf("inserting %s %s: %w", batch.Kind, e.EntityID(), classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", table, classify(err))
	}
	s.log.WithField(logging.FieldKind, batch.Kind.String()).
		WithField(logging.FieldTarget, table).
		WithField(logging.FieldCount, batch.Len()).
		WithField("create", opts.Create).
		Debug("wrote batch")
	return nil
}

// prepareTable makes sure table exists, dropping it first when recreate is
// set. Item tables need the people table for their foreign key.
func (s *Store) prepareTable(ctx context.Context, tx *sqlx.Tx, kind types.Kind, table string, recreate bool) error {
	peopleTable := s.names.For(types.KindPerson)
	if kind != types.KindPerson {
		ddl, err := createTable(types.KindPerson, peopleTable, peopleTable)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating %s: %w", peopleTable, err)
		}
	}
	if recreate {
		for _, stmt := range s.dialect.drop(table) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("dropping %s: %w", table, classify(err))
			}
		}
	}
	ddl, err := createTable(kind, table, peopleTable)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating %s: %w", table, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// insertArgs returns column values in codec column order.
func insertArgs(e types.Entity) []any {
	switch v := e.(type) {
	case *types.Person:
		return []any{v.ID, v.Name, v.Age, boolInt(v.Male)}
	case *types.Bicycle:
		return []any{v.ID, v.Brand, v.Model, v.Year, nullString(v.OwnerKey())}
	case *types.Laptop:
		return []any{v.ID, v.Brand, v.Model, v.Year, v.RAM, v.VRAM, nullString(v.OwnerKey())}
	}
	return nil
}

type personRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Age  int    `db:"age"`
	Male int    `db:"male"`
}

type bicycleRow struct {
	ID      string         `db:"id"`
	Brand   string         `db:"brand"`
	Model   string         `db:"model"`
	Year    int            `db:"year"`
	OwnerID sql.NullString `db:"owner_id"`
}

type laptopRow struct {
	ID      string         `db:"id"`
	Brand   string         `db:"brand"`
	Model   string         `db:"model"`
	Year    int            `db:"year"`
	RAM     int            `db:"ram"`
	VRAM    int            `db:"vram"`
	OwnerID sql.NullString `db:"owner_id"`
}

// Exists reports whether table is present in the database.
func (s *Store) Exists(ctx context.Context, table string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	if s.dialect.foldCase {
		table = strings.ToLower(table)
	}
	var n int
	if err := db.GetContext(ctx, &n, s.dialect.rebind(s.dialect.tableExists), table); err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return n > 0, nil
}

// Read selects every row of the kind's table ordered by id.
func (s *Store) Read(ctx context.Context, kind types.Kind, opts types.ReadOptions) (types.Batch, error) {
	if !kind.Valid() {
		return types.Batch{}, fmt.Errorf("%w: %s", types.ErrUnknownType, kind)
	}
	table, err := s.table(kind, opts.Name)
	if err != nil {
		return types.Batch{Kind: kind}, err
	}
	ok, err := s.Exists(ctx, table)
	if err != nil {
		return types.Batch{Kind: kind}, err
	}
	if !ok {
		return types.Batch{Kind: kind}, fmt.Errorf("%w: table %s", types.ErrNotFound, table)
	}
	db, err := s.conn()
	if err != nil {
		return types.Batch{Kind: kind}, err
	}

	cols, _ := codec.Columns(kind)
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(cols, ", "), table)
	batch := types.Batch{Kind: kind}

	switch kind {
	case types.KindPerson:
		var rows []personRow
		if err := db.SelectContext(ctx, &rows, query); err != nil {
			return batch, fmt.Errorf("%w: selecting %s: %v", types.ErrFormat, table, err)
		}
		for _, r := range rows {
			if r.Male != 0 && r.Male != 1 {
				return batch, fmt.Errorf("%w: person %s has male=%d", types.ErrFormat, r.ID, r.Male)
			}
			batch.People = append(batch.People, types.NewPerson(r.ID, r.Name, r.Age, r.Male == 1))
		}
	case types.KindBicycle:
		var rows []bicycleRow
		if err := db.SelectContext(ctx, &rows, query); err != nil {
			return batch, fmt.Errorf("%w: selecting %s: %v", types.ErrFormat, table, err)
		}
		for _, r := range rows {
			batch.Bicycles = append(batch.Bicycles,
				types.NewBicycle(r.ID, r.Brand, r.Model, r.Year, types.OwnedByID(r.OwnerID.String)))
		}
	case types.KindLaptop:
		var rows []laptopRow
		if err := db.SelectContext(ctx, &rows, query); err != nil {
			return batch, fmt.Errorf("%w: selecting %s: %v", types.ErrFormat, table, err)
		}
		for _, r := range rows {
			batch.Laptops = append(batch.Laptops,
				types.NewLaptop(r.ID, r.Brand, r.Model, r.Year, r.RAM, r.VRAM, types.OwnedByID(r.OwnerID.String)))
		}
	}
	s.log.WithField(logging.FieldKind, kind.String()).
		WithField(logging.FieldCount, batch.Len()).
		Debug("read batch")
	return batch, nil
}
