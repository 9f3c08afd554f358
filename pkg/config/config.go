package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"pyprune/pkg/fix"
)

// Config holds all configuration options for pyprune.
type Config struct {
	// Rewrite settings
	Fix FixConfig `koanf:"fix"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`

	// Number of files fixed in parallel; 0 picks a value from the CPU
	// count.
	Jobs int `koanf:"jobs"`
}

// FixConfig controls which rewrites run.
type FixConfig struct {
	Imports                     []string `koanf:"imports"`
	ExpandStarImports           bool     `koanf:"expand_star_imports"`
	RemoveAllUnusedImports      bool     `koanf:"remove_all_unused_imports"`
	RemoveDuplicateKeys         bool     `koanf:"remove_duplicate_keys"`
	RemoveUnusedVariables       bool     `koanf:"remove_unused_variables"`
	RemoveRHSForUnusedVariables bool     `koanf:"remove_rhs_for_unused_variables"`
	IgnoreInitModuleImports     bool     `koanf:"ignore_init_module_imports"`
	IgnorePassStatements        bool     `koanf:"ignore_pass_statements"`
	IgnorePassAfterDocstring    bool     `koanf:"ignore_pass_after_docstring"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Color   bool `koanf:"color"`
	Verbose bool `koanf:"verbose"`
	Quiet   bool `koanf:"quiet"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fix: FixConfig{},
		Exclude: ExcludeConfig{
			Patterns: []string{},
			Dirs: []string{
				".git",
				".hg",
				".tox",
				".venv",
				"venv",
				"__pycache__",
				".pyprune",
				"node_modules",
				"build",
				"dist",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".pyprune/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Color: true,
		},
	}
}

// Options converts the rewrite settings into fixer options.
func (c *Config) Options() fix.Options {
	return fix.Options{
		AdditionalImports:           c.Fix.Imports,
		ExpandStarImports:           c.Fix.ExpandStarImports,
		RemoveAllUnusedImports:      c.Fix.RemoveAllUnusedImports,
		RemoveDuplicateKeys:         c.Fix.RemoveDuplicateKeys,
		RemoveUnusedVariables:       c.Fix.RemoveUnusedVariables,
		RemoveRHSForUnusedVariables: c.Fix.RemoveRHSForUnusedVariables,
		IgnoreInitModuleImports:     c.Fix.IgnoreInitModuleImports,
		IgnorePassStatements:        c.Fix.IgnorePassStatements,
		IgnorePassAfterDocstring:    c.Fix.IgnorePassAfterDocstring,
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	// Standard config file names to search for
	configNames := []string{
		"pyprune.toml",
		"pyprune.yaml",
		"pyprune.yml",
		"pyprune.json",
		".pyprune.toml",
		".pyprune.yaml",
		".pyprune.yml",
		".pyprune.json",
	}

	// Search in current directory and .pyprune directory
	searchDirs := []string{".", ".pyprune"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from fixing.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check pattern exclusions against the base name and the full path
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}

	return false
}
