package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// dialect captures what differs between the supported engines.
type dialect struct {
	// name is the types.SQLDriver* constant.
	name string
	// driver is the database/sql driver name.
	driver string
	// tableExists counts tables with a given name; one placeholder.
	tableExists string
	// foldCase lowercases table names before tableExists.
	foldCase bool
	// drop renders the statements that remove a table.
	drop func(table string) []string
}

var dialects = map[string]dialect{
	types.SQLDriverSQLite: {
		name:        types.SQLDriverSQLite,
		driver:      "sqlite",
		tableExists: `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		drop: func(table string) []string {
			return []string{"DROP TABLE IF EXISTS " + table}
		},
	},
	types.SQLDriverPostgres: {
		name:        types.SQLDriverPostgres,
		driver:      "pgx",
		tableExists: `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`,
		foldCase:    true,
		drop: func(table string) []string {
			return []string{"DROP TABLE IF EXISTS " + table + " CASCADE"}
		},
	},
	types.SQLDriverMySQL: {
		name:        types.SQLDriverMySQL,
		driver:      "mysql",
		tableExists: `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
		drop: func(table string) []string {
			return []string{
				"SET FOREIGN_KEY_CHECKS = 0",
				"DROP TABLE IF EXISTS " + table,
				"SET FOREIGN_KEY_CHECKS = 1",
			}
		},
	},
}

func dialectFor(driver string) (dialect, error) {
	if driver == "" {
		driver = types.SQLDriverSQLite
	}
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %s", types.ErrSQLDriverUnknown, driver)
	}
	return d, nil
}

// rebind converts '?' placeholders to the engine's style.
func (d dialect) rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(d.driver), query)
}

// sqliteDSN turns on foreign key enforcement, which SQLite leaves off per
// connection unless asked.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

const sqliteConstraint = 19

var mysqlConstraintErrors = map[uint16]bool{
	1062: true, // duplicate entry
	1216: true, // no referenced row (child)
	1217: true, // row is referenced (parent)
	1451: true, // row is referenced (parent)
	1452: true, // no referenced row (child)
}

// isConstraint reports whether err is a unique, primary key or foreign key
// violation from any supported engine.
func isConstraint(err error) bool {
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		return lite.Code()&0xff == sqliteConstraint
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		return strings.HasPrefix(pg.Code, "23")
	}
	var my *mysql.MySQLError
	if errors.As(err, &my) {
		return mysqlConstraintErrors[my.Number]
	}
	return false
}

// classify wraps constraint violations in types.ErrConstraint.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isConstraint(err) {
		return fmt.Errorf("%w: %v", types.ErrConstraint, err)
	}
	return err
}
