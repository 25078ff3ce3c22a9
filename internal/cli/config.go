package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/holdings/internal/paths"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend = "backend"
	cfgKeyDataDir = "data_dir"

	defaultBackend = types.BackendDelimited
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# holdings configuration

# Storage backend: delimited, json, yaml, sheet or sql
backend: delimited

# Data directory (optional; overridable by --data-dir)
# data_dir:

# delimited: field separator
delimiter: ";"

# json: indented output
pretty: true

# sheet: workbook file and optional relations sheet
workbook: holdings.xlsx
relations: false

# Per-kind file, sheet or table names
# tables:
#   people: people
#   bicycles: bicycles
#   laptops: laptops

# sql: sqlite (default, file in data_dir), postgres or mysql
# The dsn can also come from HOLDINGS_SQL_DSN.
# sql:
#   driver: sqlite
#   dsn:

# Where file backends keep their files: fs (data_dir) or s3
# blob:
#   driver: fs
#   bucket:
#   region:
#   endpoint:
#   path_style: false
#   prefix:
`

// configDefaults seeds viper so every key is known to Unmarshal.
var configDefaults = map[string]any{
	cfgKeyBackend:            defaultBackend,
	cfgKeyDataDir:            "",
	"delimiter":              types.DefaultDelimiter,
	"pretty":                 true,
	"workbook":               types.DefaultWorkbook,
	"relations":              false,
	"tables.people":          "",
	"tables.bicycles":        "",
	"tables.laptops":         "",
	"sql.driver":             types.SQLDriverSQLite,
	"sql.dsn":                "",
	"blob.driver":            types.BlobDriverFS,
	"blob.bucket":            "",
	"blob.region":            "",
	"blob.endpoint":          "",
	"blob.path_style":        false,
	"blob.prefix":            "",
	"blob.access_key_id":     "",
	"blob.secret_access_key": "",
}

// configEnv maps config keys to the environment variables that override
// config.yaml.
var configEnv = map[string]string{
	cfgKeyBackend:            "HOLDINGS_BACKEND",
	"sql.dsn":                "HOLDINGS_SQL_DSN",
	"blob.bucket":            "HOLDINGS_BLOB_BUCKET",
	"blob.access_key_id":     "HOLDINGS_BLOB_ACCESS_KEY_ID",
	"blob.secret_access_key": "HOLDINGS_BLOB_SECRET_ACCESS_KEY",
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// config directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	for key, env := range configEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, userError{fmt.Errorf("read config: %w", err)}
	}
	return v, nil
}

// ensureDefaultConfigFile creates configDir and a default config.yaml if the
// file does not exist.
func ensureDefaultConfigFile(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolveConfig loads config.yaml and applies the global flags on top.
func (a *app) resolveConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, err
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, userError{fmt.Errorf("decode config: %w", err)}
	}
	if a.flags.backend != "" {
		cfg.Backend = a.flags.backend
	}
	cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	a.configDir = configDir
	return cfg, nil
}
