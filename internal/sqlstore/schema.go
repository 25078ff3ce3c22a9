package sqlstore

import (
	"fmt"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Table DDL. Identifiers are portable across SQLite, Postgres and MySQL;
// ids are VARCHAR because MySQL cannot index TEXT primary keys.
const (
	createPeople = `CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    age INTEGER NOT NULL,
    male SMALLINT NOT NULL
)`

	createBicycles = `CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(64) PRIMARY KEY,
    brand VARCHAR(255) NOT NULL,
    model VARCHAR(255) NOT NULL,
    year INTEGER NOT NULL,
    owner_id VARCHAR(64),
    FOREIGN KEY (owner_id) REFERENCES %s(id) ON DELETE CASCADE
)`

	createLaptops = `CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(64) PRIMARY KEY,
    brand VARCHAR(255) NOT NULL,
    model VARCHAR(255) NOT NULL,
    year INTEGER NOT NULL,
    ram INTEGER NOT NULL,
    vram INTEGER NOT NULL,
    owner_id VARCHAR(64),
    FOREIGN KEY (owner_id) REFERENCES %s(id) ON DELETE CASCADE
)`
)

// createTable renders the DDL for kind. peopleTable is the table item
// foreign keys point at.
func createTable(kind types.Kind, table, peopleTable string) (string, error) {
	switch kind {
	case types.KindPerson:
		return fmt.Sprintf(createPeople, table), nil
	case types.KindBicycle:
		return fmt.Sprintf(createBicycles, table, peopleTable), nil
	case types.KindLaptop:
		return fmt.Sprintf(createLaptops, table, peopleTable), nil
	}
	return "", fmt.Errorf("%w: %s", types.ErrUnknownType, kind)
}
