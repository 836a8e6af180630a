package config

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"sdkgen/internal/domain"
)

// Config holds all configuration for the binding generator.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Extract  ExtractConfig  `yaml:"extract"`
	Generate GenerateConfig `yaml:"generate"`
	Logging  LoggingConfig  `yaml:"logging"`
	Debug    bool           `yaml:"debug"`
}

// DatabaseConfig locates the exporter output.
type DatabaseConfig struct {
	Path          string   `yaml:"path"`
	FunctionsGlob string   `yaml:"functions_glob"`
	Excludes      []string `yaml:"excludes"`
}

// ExtractConfig controls how rows are classified.
type ExtractConfig struct {
	AssumedCC        string            `yaml:"assumed_cc"` // "" aborts on unknown conventions
	ReceiverMarker   string            `yaml:"receiver_marker"`
	Classes          []string          `yaml:"classes"` // doublestar patterns, e.g. "CAE*"
	TypeReplacements map[string]string `yaml:"type_replacements"`
}

// GenerateConfig controls the rendered output.
type GenerateConfig struct {
	Output          string `yaml:"output"`
	UseStaticInline bool   `yaml:"use_static_inline"`
	WrapVirtuals    bool   `yaml:"wrap_virtuals"`
	Category        string `yaml:"category"`
	DumpPrototypes  bool   `yaml:"dump_prototypes"`
	Jobs            int    `yaml:"jobs"` // 0 = one per CPU
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Color bool   `yaml:"color"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:          "database",
			FunctionsGlob: "**/plugin-sdk.out.functions.csv",
			Excludes:      []string{"**/.git/**", "**/.sdkgen/**"},
		},
		Extract: ExtractConfig{
			AssumedCC:      "",
			ReceiverMarker: "this",
			TypeReplacements: map[string]string{
				"_BOOL1":  "bool",
				"_BYTE":   "uint8_t",
				"_WORD":   "uint16_t",
				"_DWORD":  "uint32_t",
				"__int8":  "int8_t",
				"__int16": "int16_t",
				"__int64": "int64_t",
			},
		},
		Generate: GenerateConfig{
			Output:   "output",
			Category: "Global",
		},
		Logging: LoggingConfig{
			Level: "info",
			Color: true,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for sdkgen.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "sdkgen.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".sdkgen", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	if _, err := c.AssumedConvention(); err != nil {
		return err
	}
	if c.Generate.Jobs < 0 {
		return errors.Errorf("generate.jobs must not be negative, got %d", c.Generate.Jobs)
	}
	return nil
}

// AssumedConvention returns the configured fallback convention, or nil when
// unknown conventions must abort the run.
func (c *Config) AssumedConvention() (*domain.CallingConvention, error) {
	if c.Extract.AssumedCC == "" {
		return nil, nil
	}
	cc, ok := domain.ParseCallingConvention(c.Extract.AssumedCC)
	if !ok {
		return nil, errors.Errorf("assumed calling convention: %w: %q", domain.ErrUnknownCallingConvention, c.Extract.AssumedCC)
	}
	return &cc, nil
}

// ResolvePath makes p absolute relative to dir.
func ResolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// StateDBPath returns the path to the generation state database.
func StateDBPath(dir string) string {
	return filepath.Join(dir, ".sdkgen", "state.db")
}

// EnsureStateDir ensures the .sdkgen directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".sdkgen"), 0755)
}
