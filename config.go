// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pushdown

import (
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is returned when a configuration value is out of range or
// cannot be decoded.
var ErrInvalidConfig = errors.NewKind("invalid config: %s")

// Environment variables overriding the loaded configuration.
const (
	EnvMaxIterations = "PUSHDOWN_MAX_ITERATIONS"
	EnvMaxNodes      = "PUSHDOWN_MAX_NODES"
	EnvTimeout       = "PUSHDOWN_TIMEOUT"
	EnvDebug         = "PUSHDOWN_DEBUG"
)

// Config holds the budgets of the optimizer and the rendering defaults.
type Config struct {
	// MaxIterations bounds the passes of each rule batch.
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
	// MaxNodes bounds the size of the memo.
	MaxNodes int `yaml:"max_nodes" mapstructure:"max_nodes"`
	// Timeout bounds the duration of an analysis.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Debug logs every rule the analyzer applies.
	Debug bool `yaml:"debug" mapstructure:"debug"`
	// DefaultLimit is the limit of cube requests without one. Zero disables
	// it.
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 1000,
		MaxNodes:      100000,
		Timeout:       10 * time.Second,
		DefaultLimit:  50000,
	}
}

// Validate checks every budget is positive.
func (c Config) Validate() error {
	switch {
	case c.MaxIterations <= 0:
		return ErrInvalidConfig.New("max_iterations must be positive")
	case c.MaxNodes <= 0:
		return ErrInvalidConfig.New("max_nodes must be positive")
	case c.Timeout <= 0:
		return ErrInvalidConfig.New("timeout must be positive")
	case c.DefaultLimit < 0:
		return ErrInvalidConfig.New("default_limit must not be negative")
	}
	return nil
}

// ParseConfig decodes a YAML configuration. Missing keys keep their default
// value.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, ErrInvalidConfig.New(err.Error())
	}
	return cfg, cfg.Validate()
}

// LoadConfig reads a YAML configuration file and applies the environment
// overrides on top of it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, err
	}
	return cfg.WithEnv(os.LookupEnv)
}

// ConfigFromOptions decodes a configuration from an option map, such as the
// options of a host service. Durations may be given as strings ("10s").
func ConfigFromOptions(opts map[string]interface{}) (Config, error) {
	cfg := DefaultConfig()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(opts); err != nil {
		return Config{}, ErrInvalidConfig.New(err.Error())
	}
	return cfg, cfg.Validate()
}

// WithEnv returns the configuration overridden by the PUSHDOWN_* variables
// |lookup| finds.
func (c Config) WithEnv(lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup(EnvMaxIterations); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return Config{}, ErrInvalidConfig.New(EnvMaxIterations + ": " + err.Error())
		}
		c.MaxIterations = n
	}
	if v, ok := lookup(EnvMaxNodes); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return Config{}, ErrInvalidConfig.New(EnvMaxNodes + ": " + err.Error())
		}
		c.MaxNodes = n
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return Config{}, ErrInvalidConfig.New(EnvTimeout + ": " + err.Error())
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvDebug); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return Config{}, ErrInvalidConfig.New(EnvDebug + ": " + err.Error())
		}
		c.Debug = b
	}
	return c, c.Validate()
}
