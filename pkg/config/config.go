// Package config loads nodecanvas settings.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file: the --config path, or $XDG_CONFIG_HOME/nodecanvas/config.toml
//  3. A .env file in the working directory
//  4. NODECANVAS_* environment variables
//
// Example config.toml:
//
//	[store]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	lru_size = 64
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// AppName is used for config and data directory names.
const AppName = "nodecanvas"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NODECANVAS_"

// Default values.
const (
	DefaultAddr    = ":8080"
	DefaultWidth   = 1280.0
	DefaultHeight  = 720.0
	DefaultPadding = 20.0
)

// Config holds all settings.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
}

// StoreConfig selects and configures the scene store.
type StoreConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisURL        string `toml:"redis_url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	LRUSize         int    `toml:"lru_size"`
	Namespace       string `toml:"namespace"`
}

// ServerConfig configures `nodecanvas serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// RenderConfig sets the default viewport for rendering and pointer input.
// A zero width or height fits the canvas to the scene.
type RenderConfig struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Padding float64 `toml:"padding"`
}

// Default returns the built-in configuration: a file store under the user
// data directory.
func Default() Config {
	dir, err := DataDir()
	if err != nil {
		dir = filepath.Join(".", "."+AppName)
	}
	return Config{
		Store: StoreConfig{
			Backend: store.BackendFile,
			Dir:     filepath.Join(dir, "scenes"),
		},
		Server: ServerConfig{Addr: DefaultAddr},
		Render: RenderConfig{Width: DefaultWidth, Height: DefaultHeight, Padding: DefaultPadding},
	}
}

// DataDir returns the directory scenes are stored in by default.
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// DefaultPath returns the config file location used when --config is unset.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// =============================================================================
// Loading
// =============================================================================

// Load builds the layered configuration. An explicit path must exist; the
// default path is optional.
func Load(path string) (Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, dotenvPath string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit); err != nil {
			return Config{}, err
		}
	}

	dotenv, err := readDotenv(dotenvPath)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string, required bool) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if required {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// readDotenv parses a .env file without touching the process environment.
// A missing file yields no values.
func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return values, nil
}

// applyEnv overrides fields from NODECANVAS_* variables. REDIS_URL and
// MONGO_URI are honored as fallbacks since hosted providers inject them.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	num := func(key string, set func(string)) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			set(strings.TrimSpace(v))
		}
	}

	str(&c.Store.Backend, EnvPrefix+"STORE")
	str(&c.Store.Dir, EnvPrefix+"STORE_DIR")
	str(&c.Store.RedisURL, EnvPrefix+"REDIS_URL", "REDIS_URL")
	str(&c.Store.MongoURI, EnvPrefix+"MONGO_URI", "MONGO_URI")
	str(&c.Store.MongoDatabase, EnvPrefix+"MONGO_DATABASE")
	str(&c.Store.MongoCollection, EnvPrefix+"MONGO_COLLECTION")
	str(&c.Store.Namespace, EnvPrefix+"NAMESPACE")
	str(&c.Server.Addr, EnvPrefix+"ADDR")

	num(EnvPrefix+"LRU_SIZE", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Store.LRUSize = n
		} else {
			c.Store.LRUSize = -1 // rejected by Validate
		}
	})
	num(EnvPrefix+"WIDTH", func(v string) { c.Render.Width = parseFloat(v) })
	num(EnvPrefix+"HEIGHT", func(v string) { c.Render.Height = parseFloat(v) })
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return -1
	}
	return f
}

// =============================================================================
// Validation
// =============================================================================

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	s := c.Store
	switch s.Backend {
	case store.BackendFile:
		if s.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.dir is required for the file backend")
		}
	case store.BackendRedis:
		if s.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis_url is required for the redis backend")
		}
	case store.BackendMongo:
		if s.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	case store.BackendNull:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend %q is not one of file, redis, mongo, null", s.Backend)
	}
	if s.LRUSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "store.lru_size must be a non-negative integer")
	}
	if s.Namespace != "" {
		if err := errors.ValidateSceneName(s.Namespace); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.namespace")
		}
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	r := c.Render
	if r.Width < 0 || r.Height < 0 || r.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render dimensions must be non-negative")
	}
	return nil
}

// StoreOptions converts the store section for [store.Open].
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:         c.Store.Backend,
		Dir:             c.Store.Dir,
		RedisURL:        c.Store.RedisURL,
		MongoURI:        c.Store.MongoURI,
		MongoDatabase:   c.Store.MongoDatabase,
		MongoCollection: c.Store.MongoCollection,
		LRUSize:         c.Store.LRUSize,
		Namespace:       c.Store.Namespace,
	}
}

// String renders a one-line summary for verbose logs.
func (c Config) String() string {
	return fmt.Sprintf("store=%s addr=%s viewport=%gx%g", c.Store.Backend, c.Server.Addr, c.Render.Width, c.Render.Height)
}
