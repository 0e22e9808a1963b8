package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the contents of stepviz.yaml.
type Config struct {
	DelayMs int     `yaml:"delay_ms" json:"delay_ms"`
	Speed   float64 `yaml:"speed" json:"speed"`
	Size    int     `yaml:"size" json:"size"`
	Period  int     `yaml:"period_ms" json:"period_ms"`
	HTTP    HTTP    `yaml:"http" json:"http"`
	Redis   Redis   `yaml:"redis" json:"redis"`
	Log     Log     `yaml:"log" json:"log"`
}

// HTTP configures the serve command.
type HTTP struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Redis configures the sequence cache and surface locks. An empty Addr keeps
// everything in memory.
type Redis struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// Log configures the application logger.
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DelayMs: 100,
		Speed:   1,
		Size:    8,
		Period:  500,
		HTTP:    HTTP{Addr: ":8080"},
		Redis:   Redis{Prefix: "stepviz:", TTL: time.Hour},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load reads a YAML or JSON file over the defaults. A missing file yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	switch {
	case c.DelayMs < 0:
		return fmt.Errorf("%w: delay_ms must not be negative", domain.ErrInvalidParams)
	case c.Speed <= 0:
		return fmt.Errorf("%w: speed must be positive", domain.ErrInvalidParams)
	case c.Size < 0:
		return fmt.Errorf("%w: size must not be negative", domain.ErrInvalidParams)
	case c.Period <= 0:
		return fmt.Errorf("%w: period_ms must be positive", domain.ErrInvalidParams)
	}
	return nil
}

// Delay returns DelayMs as a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// BasePeriod returns the player tick period at speed 1.
func (c Config) BasePeriod() time.Duration {
	return time.Duration(c.Period) * time.Millisecond
}

// Params returns the configured defaults as a parameter record.
func (c Config) Params() domain.Params {
	return domain.Params{Size: c.Size, DelayMs: c.DelayMs, Speed: c.Speed}
}

// DecodeParams decodes a loosely typed option record, as received from JSON
// bodies, MCP arguments or CLI flags, over base. Numbers given as strings or
// floats are accepted; unknown keys are rejected.
func DecodeParams(raw map[string]any, base domain.Params) (domain.Params, error) {
	out := base
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return base, err
	}
	if err := dec.Decode(raw); err != nil {
		return base, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	if out.DelayMs < 0 {
		return base, fmt.Errorf("%w: delayMs must not be negative", domain.ErrInvalidParams)
	}
	if out.Speed < 0 {
		return base, fmt.Errorf("%w: speed must not be negative", domain.ErrInvalidParams)
	}
	return out, nil
}
