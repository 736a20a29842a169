// services/emission-optimizer/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sharedconfig "github.com/Tanmoy095/LogiSynapse/shared/config"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is everything the emission optimizer needs to start.
//
// Values are layered, later sources winning: defaults, the YAML file, a .env
// file, the process environment, then command line flags that were set
// explicitly. Broker and database credentials are environment only and live in
// Infra.
type Config struct {
	Port           int     `yaml:"port"`
	DataDir        string  `yaml:"data_dir"`
	StoreDriver    string  `yaml:"store_driver"`
	SQLitePath     string  `yaml:"sqlite_path"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	LogLevel       string  `yaml:"log_level"`
	LogFormat      string  `yaml:"log_format"`

	Infra sharedconfig.CommonConfig `yaml:"-"`
}

// Default returns the built in defaults.
func Default() Config {
	return Config{
		Port:           5000,
		DataDir:        "data",
		StoreDriver:    DriverFile,
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ShipmentsPath is the JSON file backing the file store.
func (c Config) ShipmentsPath() string {
	return filepath.Join(c.DataDir, "shipments.json")
}

// ResolvedSQLitePath defaults the SQLite database into the data directory.
func (c Config) ResolvedSQLitePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "shipments.db")
}

// LoadOptions says where the optional sources are.
type LoadOptions struct {
	ConfigFile string         // YAML, optional
	EnvFile    string         // dotenv, optional; real environment wins, a missing file is fine
	Flags      *pflag.FlagSet // only flags marked Changed are applied
	LookupEnv  func(string) (string, bool)
}

// Load builds the config from every layer and validates the result.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := loadYAML(opts.ConfigFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if opts.EnvFile != "" {
		dotenv, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
		lookup = withFallback(lookup, dotenv)
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if opts.Flags != nil {
		if err := applyFlags(&cfg, opts.Flags); err != nil {
			return Config{}, err
		}
	}
	cfg.Infra = *sharedconfig.LoadCommonConfigFrom(func(k string) string {
		v, _ := lookup(k)
		return v
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withFallback consults env first and the dotenv values second.
func withFallback(env func(string) (string, bool), dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func loadYAML(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("DATA_DIR", &cfg.DataDir)
	str("STORE_DRIVER", &cfg.StoreDriver)
	str("SQLITE_PATH", &cfg.SQLitePath)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	if v, ok := lookup("PORT"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PORT: %q is not a number", v)
		}
		cfg.Port = n
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %q is not a number", v)
		}
		cfg.RateLimitRPS = f
	}
	if v, ok := lookup("RATE_LIMIT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %q is not a number", v)
		}
		cfg.RateLimitBurst = n
	}
	return nil
}

// BindFlags registers the flags Load understands.
func BindFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.Int("port", d.Port, "HTTP listen port")
	flags.String("data-dir", d.DataDir, "directory holding the JSON data files")
	flags.String("store", d.StoreDriver, "shipment store: file, postgres or sqlite")
	flags.String("sqlite-path", "", "SQLite database file (default <data-dir>/shipments.db)")
	flags.Float64("rate-limit-rps", d.RateLimitRPS, "requests per second per client IP, 0 disables")
	flags.Int("rate-limit-burst", d.RateLimitBurst, "burst size per client IP")
	flags.String("log-level", d.LogLevel, "debug, info, warn or error")
}

func applyFlags(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "port":
			cfg.Port, err = flags.GetInt(f.Name)
		case "data-dir":
			cfg.DataDir, err = flags.GetString(f.Name)
		case "store":
			cfg.StoreDriver, err = flags.GetString(f.Name)
		case "sqlite-path":
			cfg.SQLitePath, err = flags.GetString(f.Name)
		case "rate-limit-rps":
			cfg.RateLimitRPS, err = flags.GetFloat64(f.Name)
		case "rate-limit-burst":
			cfg.RateLimitBurst, err = flags.GetInt(f.Name)
		case "log-level":
			cfg.LogLevel, err = flags.GetString(f.Name)
		}
	})
	return err
}

// Validate rejects configs the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverFile, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("store driver %q: want file, postgres or sqlite", c.StoreDriver))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("rate limit %v must not be negative", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("rate limit burst %d must be at least 1", c.RateLimitBurst))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data dir is required"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log level %q unknown", c.LogLevel))
	}
	if c.StoreDriver == DriverPostgres && !c.Infra.PostgresEnabled() {
		errs = append(errs, errors.New("postgres store needs DB_HOST and DB_NAME"))
	}
	return errors.Join(errs...)
}
