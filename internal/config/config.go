// Package config loads mdtest project configuration from .mdtest.yml.
// A missing file is not an error; every field has a working default, and
// environment variables override the file for CI use.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the conventional config filename, looked up in the
// working directory when no explicit path is given.
const DefaultFile = ".mdtest.yml"

// Config holds all mdtest settings.
type Config struct {
	// Name overrides the suite title for every compiled document.
	Name string `yaml:"name"`

	// Package is the package clause of generated files.
	Package string `yaml:"package"`

	// Output is the directory generated files are written to; empty
	// writes each file next to its document.
	Output string `yaml:"output"`

	// Languages overrides the recognized fence info strings.
	Languages []string `yaml:"languages"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{Package: "docs"}
}

// Load reads configuration from path, or from DefaultFile when path is
// empty. A missing file yields defaults; a present-but-broken file is an
// error, since silently ignoring it would mask typos.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Package == "" {
		cfg.Package = Default().Package
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets CI pipelines steer output without touching the
// checked-in config.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MDTEST_PACKAGE"); v != "" {
		c.Package = v
	}
	if v := os.Getenv("MDTEST_OUTPUT"); v != "" {
		c.Output = v
	}
}
