package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/pathlink/pkg/connector"
	"github.com/ritzau/pathlink/pkg/model"
	"github.com/ritzau/pathlink/pkg/pathway"
)

// FileName is the optional configuration file read from the working
// directory.
const FileName = "pathlink.toml"

const envPrefix = "PATHLINK_"

// Config holds all configuration for the application
type Config struct {
	WebMode    bool    `koanf:"web"`
	Port       int     `koanf:"port"`
	Watch      bool    `koanf:"watch"`
	Store      string  `koanf:"store"`  // SQLite path, empty disables
	Format     string  `koanf:"format"` // Document format, "auto" picks by extension
	Output     string  `koanf:"output"` // Export path
	VerboseCnt int     `koanf:"verbose"`
	LogFormat  string  `koanf:"log_format"` // text or json
	Routing    Routing `koanf:"routing"`
}

// Routing tunes connector geometry.
type Routing struct {
	AlignmentThreshold float64            `koanf:"alignment_threshold"`
	ElbowOffset        float64            `koanf:"elbow_offset"`
	CurveSamples       int                `koanf:"curve_samples"`
	GroupMargin        float64            `koanf:"group_margin"`
	ArrowGaps          map[string]float64 `koanf:"arrow_gaps"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return load(f, FileName)
}

func load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	policy := connector.DefaultPolicy()
	defaults := map[string]interface{}{
		"web":        false,
		"port":       8080,
		"watch":      false,
		"store":      "",
		"format":     "auto",
		"output":     "",
		"verbose":    0,
		"log_format": "text",
		"routing": map[string]interface{}{
			"alignment_threshold": policy.AlignmentThreshold,
			"elbow_offset":        policy.ElbowOffset,
			"curve_samples":       policy.CurveSamples,
			"group_margin":        pathway.DefaultOptions().GroupMargin,
		},
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider(path), toml.Parser())

	// 3. Environment Variables
	// Prefix: PATHLINK_ (e.g., PATHLINK_PORT=9090, PATHLINK_ROUTING_ELBOW_OFFSET=30)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, flagKey(f)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps PATHLINK_ROUTING_ELBOW_OFFSET to routing.elbow_offset.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "routing_"); ok {
		return "routing." + rest
	}
	return key
}

// flagKey maps flag names onto config keys: --log-format sets log_format
// and --save sets output.
func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if key == "save" {
			key = "output"
		}
		return key, posflag.FlagVal(fs, f)
	}
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q, want text or json", c.LogFormat)
	}
	if c.Routing.CurveSamples < 1 {
		return fmt.Errorf("routing.curve_samples must be positive, got %d", c.Routing.CurveSamples)
	}
	if c.Routing.AlignmentThreshold < 0 || c.Routing.AlignmentThreshold > 90 {
		return fmt.Errorf("routing.alignment_threshold must be within [0,90] degrees, got %v", c.Routing.AlignmentThreshold)
	}
	return nil
}

// Policy returns the connector routing policy.
func (c *Config) Policy() connector.Policy {
	return connector.Policy{
		AlignmentThreshold: c.Routing.AlignmentThreshold,
		ElbowOffset:        c.Routing.ElbowOffset,
		CurveSamples:       c.Routing.CurveSamples,
	}
}

// Options returns the document geometry options.
func (c *Config) Options() pathway.Options {
	return pathway.Options{
		Policy:      c.Policy(),
		Gaps:        model.DefaultGaps().With(c.Routing.ArrowGaps),
		GroupMargin: c.Routing.GroupMargin,
	}
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
