package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/parser"
)

// Config represents the complete configuration for jsontools
type Config struct {
	Format  FormatConfig  `yaml:"format"`
	Limits  LimitsConfig  `yaml:"limits"`
	Compare CompareConfig `yaml:"compare"`
	Convert ConvertConfig `yaml:"convert"`
	Dev     DevConfig     `yaml:"dev"`
}

// FormatConfig controls pretty-printing
type FormatConfig struct {
	Indent   int  `yaml:"indent"`
	SortKeys bool `yaml:"sort_keys"`
}

// LimitsConfig bounds the work done on pathological input
type LimitsConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// CompareConfig controls how comparison results are rendered
type CompareConfig struct {
	Output string `yaml:"output"` // text, json, patch or lines
	Color  bool   `yaml:"color"`
}

// ConvertConfig controls CSV/XML transcoding
type ConvertConfig struct {
	HeaderCase string `yaml:"header_case"`
	TagCase    string `yaml:"tag_case"`
	RootTag    string `yaml:"root_tag"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Supported values for CompareConfig.Output
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputPatch = "patch"
	OutputLines = "lines"
)

// Supported values for the casing options
const (
	CasePreserve   = "preserve"
	CaseSnake      = "snake"
	CaseCamel      = "camel"
	CaseLowerCamel = "lower_camel"
	CaseKebab      = "kebab"
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Format: FormatConfig{
			Indent:   2,
			SortKeys: false,
		},
		Limits: LimitsConfig{
			MaxDepth: parser.DefaultMaxDepth,
		},
		Compare: CompareConfig{
			Output: OutputText,
			Color:  false,
		},
		Convert: ConvertConfig{
			HeaderCase: CasePreserve,
			TagCase:    CasePreserve,
			RootTag:    "root",
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFrom(currentDir)
}

func findConfigFrom(dir string) string {
	configNames := []string{".jsontools.yml", ".jsontools.yaml", "jsontools.yml", "jsontools.yaml"}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			// Reached root directory
			break
		}
		dir = parentDir
	}

	return ""
}

// Validate checks that every option holds a supported value
func (c *Config) Validate() error {
	if c.Format.Indent < 1 {
		return errors.NewConfigError(
			fmt.Sprintf("format.indent must be at least 1, got %d", c.Format.Indent),
			errors.ErrInvalidIndent,
		)
	}
	if c.Limits.MaxDepth < 1 {
		return errors.NewConfigError(
			fmt.Sprintf("limits.max_depth must be at least 1, got %d", c.Limits.MaxDepth),
			nil,
		)
	}
	switch c.Compare.Output {
	case OutputText, OutputJSON, OutputPatch, OutputLines:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown compare.output %q", c.Compare.Output), nil)
	}
	for name, value := range map[string]string{
		"convert.header_case": c.Convert.HeaderCase,
		"convert.tag_case":    c.Convert.TagCase,
	} {
		if !isKnownCase(value) {
			return errors.NewConfigError(fmt.Sprintf("unknown %s %q", name, value), nil)
		}
	}
	if c.Convert.RootTag == "" {
		return errors.NewConfigError("convert.root_tag must not be empty", nil)
	}
	return nil
}

func isKnownCase(name string) bool {
	switch name {
	case CasePreserve, CaseSnake, CaseCamel, CaseLowerCamel, CaseKebab:
		return true
	}
	return false
}

// ApplyCase renames a JSON key according to one of the casing options
func ApplyCase(style, key string) string {
	switch style {
	case CaseSnake:
		return strcase.ToSnake(key)
	case CaseCamel:
		return strcase.ToCamel(key)
	case CaseLowerCamel:
		return strcase.ToLowerCamel(key)
	case CaseKebab:
		return strcase.ToKebab(key)
	default:
		return key
	}
}

// Flags carries the command line values that may override the file
type Flags struct {
	Indent   int
	SortKeys bool
	MaxDepth int
	Output   string
	Color    bool
	Debug    bool
}

// MergeFlags applies CLI overrides on top of a base config.
// Zero values leave the base untouched; booleans can only switch options on.
func MergeFlags(base *Config, flags Flags) *Config {
	merged := *base

	if flags.Indent != 0 {
		merged.Format.Indent = flags.Indent
	}
	if flags.SortKeys {
		merged.Format.SortKeys = true
	}
	if flags.MaxDepth != 0 {
		merged.Limits.MaxDepth = flags.MaxDepth
	}
	if flags.Output != "" {
		merged.Compare.Output = flags.Output
	}
	if flags.Color {
		merged.Compare.Color = true
	}
	if flags.Debug {
		merged.Dev.Debug = true
	}

	return &merged
}

// LoadConfigWithFlags loads the config file at path (if any), or the nearest
// discovered one, and applies CLI overrides on top
func LoadConfigWithFlags(path string, flags Flags) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = FindConfigFile()
	}
	if path != "" {
		fileConfig, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	merged := MergeFlags(cfg, flags)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
