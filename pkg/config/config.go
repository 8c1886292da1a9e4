package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RefreshPerMin   int           `yaml:"refresh_per_min" default:"30" validate:"min=1"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Backend struct {
		BaseURL   string        `yaml:"base_url" default:"http://localhost:8000" validate:"required,url"`
		Timeout   time.Duration `yaml:"timeout" default:"4s" validate:"gt=0"`
		UserAgent string        `yaml:"user_agent" default:"engine-mirror/1.0"`
	} `yaml:"backend"`
	Sources map[string]SourceConfig `yaml:"sources"`
	Logs    struct {
		MaxLines int `yaml:"max_lines" default:"500" validate:"min=1,max=100000"`
	} `yaml:"logs"`
	Logger struct {
		Level             string        `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format            string        `yaml:"format" default:"json" validate:"oneof=json console"`
		Output            string        `yaml:"output" default:"stdout"`
		TimeFormat        string        `yaml:"time_format"`
		AggregateInterval time.Duration `yaml:"aggregate_interval" default:"30s"`
	} `yaml:"logger"`
	Cache struct {
		SnapshotTTL   time.Duration `yaml:"snapshot_ttl" default:"2s"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"64"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"mirror"`
			PoolSize int    `yaml:"pool_size" default:"10" validate:"min=1"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"service_name" default:"engine-mirror"`
		Output      string `yaml:"output" default:"stdout"`
	} `yaml:"tracing"`
}

// SourceConfig overrides the polling parameters of one backend endpoint.
// Zero values keep the built-in defaults.
type SourceConfig struct {
	Cadence time.Duration `yaml:"cadence"`
	Timeout time.Duration `yaml:"timeout"`
	Enabled *bool         `yaml:"enabled"`
}

// Source ids and their default cadences, mirroring the backend's refresh rates.
var defaultSources = map[string]SourceConfig{
	"signals":       {Cadence: 5 * time.Second},
	"news":          {Cadence: 30 * time.Second},
	"status":        {Cadence: 3 * time.Second},
	"trades-open":   {Cadence: 10 * time.Second},
	"trades-closed": {Cadence: 10 * time.Second},
	"stats":         {Cadence: 10 * time.Second},
	"terminal-log":  {Cadence: 2 * time.Second},
}

// SourceIDs returns the known source ids in a stable order.
func SourceIDs() []string {
	ids := make([]string, 0, len(defaultSources))
	for id := range defaultSources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsEnabled reports whether the source should be polled.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	_ = c.applyDefaults()
	return &c
}

// Load reads and parses a YAML configuration file. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies
// MIRROR_* environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MIRROR_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("MIRROR_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("MIRROR_HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MIRROR_LOG_LEVEL"); v != "" {
		c.Logger.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MIRROR_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("MIRROR_TRACING"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("MIRROR_TRACING: %w", err)
		}
		c.Tracing.Enabled = on
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if c.Sources == nil {
		c.Sources = make(map[string]SourceConfig, len(defaultSources))
	}
	for id, def := range defaultSources {
		sc := c.Sources[id]
		if sc.Cadence == 0 {
			sc.Cadence = def.Cadence
		}
		if sc.Timeout == 0 {
			sc.Timeout = c.Backend.Timeout
			if sc.Timeout >= sc.Cadence {
				sc.Timeout = sc.Cadence * 4 / 5
			}
		}
		c.Sources[id] = sc
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	return nil
}

var validate = validator.New()

// Validate checks struct constraints and that every enabled source times
// out before its next tick.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	for id, sc := range c.Sources {
		if _, ok := defaultSources[id]; !ok {
			return fmt.Errorf("sources.%s: unknown source", id)
		}
		if !sc.IsEnabled() {
			continue
		}
		if sc.Cadence <= 0 {
			return fmt.Errorf("sources.%s.cadence must be positive", id)
		}
		if sc.Timeout <= 0 || sc.Timeout >= sc.Cadence {
			return fmt.Errorf("sources.%s.timeout (%s) must be positive and below cadence (%s)", id, sc.Timeout, sc.Cadence)
		}
	}
	return nil
}
