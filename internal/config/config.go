package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional checker configuration, loaded from a phpstc.yml
// file next to the analyzed project or passed with --config.
type Config struct {
	// IgnoreFilePrefixes excludes loaded files whose canonical path
	// starts with one of the prefixes.
	IgnoreFilePrefixes []string `yaml:"ignore_file_prefixes"`

	// SelfCheck suppresses redeclaration diagnostics while the checker
	// analyzes its own source.
	SelfCheck bool `yaml:"self_check"`

	// ValidateAllUnionMembers keeps validating the remaining members of
	// a union type annotation after the first invalid one.
	ValidateAllUnionMembers bool `yaml:"validate_all_union_members"`

	// Color forces diagnostic coloring on or off; nil keeps the TTY
	// autodetection.
	Color *bool `yaml:"color"`
}

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = "phpstc.yml"

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{ValidateAllUnionMembers: true}
}

// Load reads a configuration file. A missing file is not an error when
// optional is true.
func Load(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
