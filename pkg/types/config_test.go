package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "parquet", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid delimited config",
			config:  Config{Backend: BackendDelimited, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "empty DataDir is valid at config level",
			config:  Config{Backend: BackendJSON},
			wantErr: nil,
		},
		{
			name:    "multi-character delimiter rejected",
			config:  Config{Backend: BackendDelimited, Delimiter: ";;"},
			wantErr: ErrDelimiterInvalid,
		},
		{
			name:    "quote delimiter rejected",
			config:  Config{Backend: BackendDelimited, Delimiter: `"`},
			wantErr: ErrDelimiterInvalid,
		},
		{
			name:    "tab delimiter accepted",
			config:  Config{Backend: BackendDelimited, Delimiter: "\t"},
			wantErr: nil,
		},
		{
			name:    "unknown sql driver",
			config:  Config{Backend: BackendSQL, SQL: SQLConfig{Driver: "oracle"}},
			wantErr: ErrSQLDriverUnknown,
		},
		{
			name:    "postgres driver accepted",
			config:  Config{Backend: BackendSQL, SQL: SQLConfig{Driver: SQLDriverPostgres, DSN: "postgres://localhost/x"}},
			wantErr: nil,
		},
		{
			name:    "unsafe table name rejected for sql backend",
			config:  Config{Backend: BackendSQL, Tables: TableNames{People: "people; DROP TABLE x"}},
			wantErr: ErrInvalidName,
		},
		{
			name:    "table names are not identifiers for file backends",
			config:  Config{Backend: BackendJSON, Tables: TableNames{People: "people-2024"}},
			wantErr: nil,
		},
		{
			name:    "unknown blob driver",
			config:  Config{Backend: BackendJSON, Blob: BlobConfig{Driver: "gcs"}},
			wantErr: ErrBlobDriverUnknown,
		},
		{
			name:    "s3 blob driver needs bucket",
			config:  Config{Backend: BackendSheet, Blob: BlobConfig{Driver: BlobDriverS3}},
			wantErr: ErrBlobBucketRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	c := Config{Backend: BackendSheet}.WithDefaults()
	assert.Equal(t, DefaultDelimiter, c.Delimiter)
	assert.Equal(t, DefaultWorkbook, c.Workbook)
	assert.Equal(t, SQLDriverSQLite, c.SQL.Driver)
	assert.Equal(t, BlobDriverFS, c.Blob.Driver)

	kept := Config{Backend: BackendDelimited, Delimiter: ","}.WithDefaults()
	assert.Equal(t, ",", kept.Delimiter)
}

func TestTableNamesFor(t *testing.T) {
	names := TableNames{Bicycles: "bikes"}
	assert.Equal(t, "people", names.For(KindPerson))
	assert.Equal(t, "bikes", names.For(KindBicycle))
	assert.Equal(t, "laptops", names.For(KindLaptop))
}
