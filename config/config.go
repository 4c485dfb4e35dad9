// Package config loads experiment settings from YAML. Files are checked
// against an embedded JSON Schema before they are decoded, and environment
// variables override file values.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sw965/chlorine/mathx/randx"
	"github.com/sw965/chlorine/policy"
	"github.com/sw965/chlorine/ql"
	"github.com/sw965/chlorine/quantize"
	"github.com/sw965/chlorine/waterpark"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://chlorine.local/config.schema.json"

var ErrInvalidConfig = errors.New("invalid config")

const (
	VariantStandard = "standard"
	VariantExtended = "extended"
)

type Config struct {
	// Variant selects the preset environment and quantization layout.
	Variant string `yaml:"variant"`
	// Seed makes every run reproducible. Unset means a fresh global seed.
	Seed                  *uint64 `yaml:"seed,omitempty"`
	Episodes              int     `yaml:"episodes"`
	EvalEpisodes          int     `yaml:"eval_episodes"`
	Window                int     `yaml:"window"`
	Parallelism           int     `yaml:"parallelism"`
	OveruseEpisodePenalty float64 `yaml:"overuse_episode_penalty"`
	LogLevel              string  `yaml:"log_level"`
	LogEvery              int     `yaml:"log_every"`

	Env    EnvConfig    `yaml:"env"`
	Agent  AgentConfig  `yaml:"agent"`
	Fixed  FixedConfig  `yaml:"fixed"`
	Report ReportConfig `yaml:"report"`
}

// EnvConfig overrides the variant preset. Unset fields keep the preset.
type EnvConfig struct {
	MaxSteps      int       `yaml:"max_steps,omitempty"`
	MaxDailyStock *float64  `yaml:"max_daily_stock,omitempty"`
	Doses         []float64 `yaml:"doses,omitempty"`
}

type AgentConfig struct {
	LearningRate   float64 `yaml:"learning_rate"`
	DiscountFactor float64 `yaml:"discount_factor"`
	Epsilon        float64 `yaml:"epsilon"`
	EpsilonDecay   float64 `yaml:"epsilon_decay"`
	EpsilonMin     float64 `yaml:"epsilon_min"`
}

// FixedConfig overrides the fixed-interval baseline. Unset fields keep the
// preset; an explicit action 0 is a baseline that never doses.
type FixedConfig struct {
	Pulses int  `yaml:"pulses,omitempty"`
	Action *int `yaml:"action,omitempty"`
}

type ReportConfig struct {
	Dir   string `yaml:"dir"`
	Chart bool   `yaml:"chart"`
	Color bool   `yaml:"color"`
}

func Default() *Config {
	p := ql.DefaultParams()
	return &Config{
		Variant:               VariantStandard,
		Episodes:              10000,
		EvalEpisodes:          1000,
		Window:                50,
		Parallelism:           3,
		OveruseEpisodePenalty: 5.0,
		LogLevel:              "info",
		LogEvery:              100,
		Agent: AgentConfig{
			LearningRate:   p.LearningRate,
			DiscountFactor: p.DiscountFactor,
			Epsilon:        p.Epsilon,
			EpsilonDecay:   p.EpsilonDecay,
			EpsilonMin:     p.EpsilonMin,
		},
		Report: ReportConfig{Dir: "charts", Chart: true, Color: true},
	}
}

// Load reads path, applies environment overrides and validates the result.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes and validates YAML without looking at the environment.
func Parse(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateSchema round-trips the YAML document through JSON so the
// validator sees the same value types a JSON decoder would produce.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func applyEnvOverrides(c *Config) error {
	if v := os.Getenv("WATERPARK_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: WATERPARK_SEED: %w", ErrInvalidConfig, err)
		}
		c.Seed = &seed
	}
	if v := os.Getenv("WATERPARK_EPISODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: WATERPARK_EPISODES: %w", ErrInvalidConfig, err)
		}
		c.Episodes = n
	}
	if v := os.Getenv("WATERPARK_VARIANT"); v != "" {
		c.Variant = v
	}
	if v := os.Getenv("WATERPARK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Variant != VariantStandard && c.Variant != VariantExtended {
		return fmt.Errorf("%w: unknown variant %q (valid: %s, %s)", ErrInvalidConfig, c.Variant, VariantStandard, VariantExtended)
	}
	if c.Episodes <= 0 {
		return fmt.Errorf("%w: episodes must be positive, got %d", ErrInvalidConfig, c.Episodes)
	}
	if c.EvalEpisodes <= 0 {
		return fmt.Errorf("%w: eval_episodes must be positive, got %d", ErrInvalidConfig, c.EvalEpisodes)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, c.Window)
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("%w: parallelism must be positive, got %d", ErrInvalidConfig, c.Parallelism)
	}
	if c.OveruseEpisodePenalty < 0 {
		return fmt.Errorf("%w: overuse_episode_penalty must be non-negative", ErrInvalidConfig)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("%w: invalid log level %q", ErrInvalidConfig, c.LogLevel)
	}

	envCfg := c.EnvConfig()
	if err := envCfg.Validate(); err != nil {
		return err
	}
	if err := c.AgentParams().Validate(); err != nil {
		return err
	}
	if _, err := c.FixedPolicy(); err != nil {
		return err
	}
	if a := c.fixedAction(); a >= len(envCfg.Doses) {
		return fmt.Errorf("%w: fixed action %d outside dose menu of %d", ErrInvalidConfig, a, len(envCfg.Doses))
	}
	return nil
}

// EnvConfig returns the variant preset with the file overrides applied.
func (c *Config) EnvConfig() waterpark.Config {
	var cfg waterpark.Config
	if c.Variant == VariantExtended {
		cfg = waterpark.ExtendedConfig()
	} else {
		cfg = waterpark.StandardConfig()
	}
	if c.Env.MaxSteps != 0 {
		cfg.MaxSteps = c.Env.MaxSteps
	}
	if c.Env.MaxDailyStock != nil {
		cfg.MaxDailyStock = *c.Env.MaxDailyStock
	}
	if len(c.Env.Doses) != 0 {
		cfg.Doses = append([]float64(nil), c.Env.Doses...)
	}
	return cfg
}

func (c *Config) Layout() quantize.Layout {
	base := quantize.StandardLayout()
	if c.Variant == VariantExtended {
		base = quantize.ExtendedLayout()
	}
	return quantize.LayoutFor(base, c.EnvConfig())
}

func (c *Config) AgentParams() ql.Params {
	return ql.Params{
		LearningRate:   c.Agent.LearningRate,
		DiscountFactor: c.Agent.DiscountFactor,
		Epsilon:        c.Agent.Epsilon,
		EpsilonDecay:   c.Agent.EpsilonDecay,
		EpsilonMin:     c.Agent.EpsilonMin,
	}
}

func (c *Config) fixedAction() int {
	if c.Fixed.Action != nil {
		return *c.Fixed.Action
	}
	if c.Variant == VariantExtended {
		return 1
	}
	return 2
}

// FixedPolicy builds the fixed-interval baseline: ten 20 kg pulses a day for
// the standard variant, a 5 kg pulse every third step for the extended one.
func (c *Config) FixedPolicy() (policy.FixedInterval, error) {
	pulses := c.Fixed.Pulses
	if pulses == 0 {
		pulses = 10
		if c.Variant == VariantExtended {
			pulses = 20
		}
	}
	return policy.NewFixedInterval(c.EnvConfig().MaxSteps, pulses, c.fixedAction())
}

// Rand returns the root generator of a run.
func (c *Config) Rand() *rand.Rand {
	return randx.New(c.Seed)
}
