// Package config loads flowcanvas settings from a TOML file, an optional
// .env file and FLOWCANVAS_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/remote"
	"github.com/matzehuels/flowcanvas/pkg/storage"
)

// Environment variables that override file settings.
const (
	EnvStorage     = "FLOWCANVAS_STORAGE"
	EnvStoragePath = "FLOWCANVAS_STORAGE_PATH"
	EnvRedisAddr   = "FLOWCANVAS_REDIS_ADDR"
	EnvPostgresDSN = "FLOWCANVAS_POSTGRES_DSN"
	EnvMongoURI    = "FLOWCANVAS_MONGO_URI"
	EnvHTTPAddr    = "FLOWCANVAS_HTTP_ADDR"
)

// Duration is a time.Duration that reads from TOML strings like "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full set of settings.
type Config struct {
	Storage Storage `toml:"storage"`
	Remote  Remote  `toml:"remote"`
	Layout  Layout  `toml:"layout"`
	Editor  Editor  `toml:"editor"`
	Server  Server  `toml:"server"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Backend     string `toml:"backend" validate:"oneof=file memory sqlite redis postgres"`
	Path        string `toml:"path" validate:"required_if=Backend file"`
	Key         string `toml:"key" validate:"required"`
	RedisAddr   string `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB     int    `toml:"redis_db" validate:"gte=0"`
	PostgresDSN string `toml:"postgres_dsn" validate:"required_if=Backend postgres"`
}

// Remote configures the named-flow store. An empty MongoURI disables it.
type Remote struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Layout configures the layout engine.
type Layout struct {
	Engine    string   `toml:"engine" validate:"oneof=graphviz layered"`
	Direction string   `toml:"direction" validate:"oneof=DOWN RIGHT"`
	Spacing   float64  `toml:"spacing" validate:"gt=0"`
	Timeout   Duration `toml:"timeout"`
}

// Editor configures interactive editing.
type Editor struct {
	AutosaveDebounce Duration `toml:"autosave_debounce"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" validate:"required"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "flowcanvas", "config.toml")
}

// DefaultDataDir returns the default directory for the file backend.
func DefaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "flowcanvas")
	}
	return filepath.Join(os.TempDir(), "flowcanvas")
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend: storage.BackendFile,
			Path:    DefaultDataDir(),
			Key:     storage.DefaultKey,
		},
		Layout: Layout{
			Engine:    layout.EngineLayered,
			Direction: layout.DirectionDown,
			Spacing:   layout.DefaultSpacing,
			Timeout:   Duration{30 * time.Second},
		},
		Editor: Editor{AutosaveDebounce: Duration{300 * time.Millisecond}},
		Server: Server{Addr: "localhost:8080"},
	}
}

// Load reads path over the defaults, applies .env and environment
// overrides, and validates the result. A missing file is not an error; an
// empty path uses [DefaultPath].
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Remote.MongoURI = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FLOWCANVAS_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FLOWCANVAS_REDIS_DB: %w", err)
		}
		c.Storage.RedisDB = db
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and reports every violation.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// StorageOptions converts the storage section for [storage.Open].
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.Storage.Backend,
		Path:        c.Storage.Path,
		RedisAddr:   c.Storage.RedisAddr,
		RedisDB:     c.Storage.RedisDB,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// RemoteConfig converts the remote section for [remote.New].
func (c Config) RemoteConfig() remote.Config {
	return remote.Config{
		MongoURI:   c.Remote.MongoURI,
		Database:   c.Remote.Database,
		Collection: c.Remote.Collection,
	}
}
