package types

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

// Config selects a backend and carries its parameters. Credentials for the
// relational and object-storage backends arrive here; nothing in holdings
// reads them from globals.
type Config struct {
	Backend   string     `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir   string     `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Delimiter string     `json:"delimiter" yaml:"delimiter" mapstructure:"delimiter"`
	Pretty    bool       `json:"pretty" yaml:"pretty" mapstructure:"pretty"`
	Workbook  string     `json:"workbook" yaml:"workbook" mapstructure:"workbook"`
	Relations bool       `json:"relations" yaml:"relations" mapstructure:"relations"`
	Tables    TableNames `json:"tables" yaml:"tables" mapstructure:"tables"`
	SQL       SQLConfig  `json:"sql" yaml:"sql" mapstructure:"sql"`
	Blob      BlobConfig `json:"blob" yaml:"blob" mapstructure:"blob"`
}

// TableNames overrides the default per-kind names for files, sheets and
// tables. Empty fields fall back to the kind's plural.
type TableNames struct {
	People   string `json:"people" yaml:"people" mapstructure:"people"`
	Bicycles string `json:"bicycles" yaml:"bicycles" mapstructure:"bicycles"`
	Laptops  string `json:"laptops" yaml:"laptops" mapstructure:"laptops"`
}

// For returns the configured name for kind, or its plural.
func (t TableNames) For(kind Kind) string {
	var name string
	switch kind {
	case KindPerson:
		name = t.People
	case KindBicycle:
		name = t.Bicycles
	case KindLaptop:
		name = t.Laptops
	}
	if name == "" {
		return kind.Plural()
	}
	return name
}

// SQLConfig holds relational connection parameters.
type SQLConfig struct {
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`
	DSN    string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// BlobConfig selects where file-based backends keep their files.
type BlobConfig struct {
	Driver          string `json:"driver" yaml:"driver" mapstructure:"driver"`
	Bucket          string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Region          string `json:"region" yaml:"region" mapstructure:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	PathStyle       bool   `json:"path_style" yaml:"path_style" mapstructure:"path_style"`
	Prefix          string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key" mapstructure:"secret_access_key"`
}

// Supported backend names.
const (
	BackendDelimited = "delimited"
	BackendJSON      = "json"
	BackendYAML      = "yaml"
	BackendSheet     = "sheet"
	BackendSQL       = "sql"
)

// Supported relational drivers.
const (
	SQLDriverSQLite   = "sqlite"
	SQLDriverPostgres = "postgres"
	SQLDriverMySQL    = "mysql"
)

// Supported blob drivers.
const (
	BlobDriverFS = "fs"
	BlobDriverS3 = "s3"
)

// Defaults applied by WithDefaults.
const (
	DefaultDelimiter = ";"
	DefaultWorkbook  = "holdings.xlsx"
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrDelimiterInvalid   = errors.New("delimiter must be a single character other than quote or newline")
	ErrSQLDriverUnknown   = errors.New("unknown sql driver")
	ErrBlobDriverUnknown  = errors.New("unknown blob driver")
	ErrBlobBucketRequired = errors.New("s3 blob driver requires a bucket")
	ErrInvalidName        = errors.New("invalid table name")
)

var knownBackends = map[string]bool{
	BackendDelimited: true,
	BackendJSON:      true,
	BackendYAML:      true,
	BackendSheet:     true,
	BackendSQL:       true,
}

var knownSQLDrivers = map[string]bool{
	SQLDriverSQLite:   true,
	SQLDriverPostgres: true,
	SQLDriverMySQL:    true,
}

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidIdentifier reports whether name is safe to splice into SQL as a
// table name.
func ValidIdentifier(name string) bool {
	return identifierRE.MatchString(name)
}

// WithDefaults returns a copy of c with empty optional fields filled in.
func (c Config) WithDefaults() Config {
	if c.Delimiter == "" {
		c.Delimiter = DefaultDelimiter
	}
	if c.Workbook == "" {
		c.Workbook = DefaultWorkbook
	}
	if c.SQL.Driver == "" {
		c.SQL.Driver = SQLDriverSQLite
	}
	if c.Blob.Driver == "" {
		c.Blob.Driver = BlobDriverFS
	}
	return c
}

// Validate checks that the Config is well-formed after defaults are
// applied. It returns one of the sentinel errors above.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	c = c.WithDefaults()

	if r, size := utf8.DecodeRuneInString(c.Delimiter); size != len(c.Delimiter) ||
		r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return ErrDelimiterInvalid
	}
	if !knownSQLDrivers[c.SQL.Driver] {
		return ErrSQLDriverUnknown
	}
	switch c.Blob.Driver {
	case BlobDriverFS:
	case BlobDriverS3:
		if c.Blob.Bucket == "" {
			return ErrBlobBucketRequired
		}
	default:
		return ErrBlobDriverUnknown
	}
	if c.Backend == BackendSQL {
		for _, k := range Kinds {
			if !ValidIdentifier(c.Tables.For(k)) {
				return ErrInvalidName
			}
		}
	}
	return nil
}
