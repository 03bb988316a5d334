package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional dwarfgraph.yaml configuration file: a list of
// input files to scan by default and the metrics listen address a
// repeated invocation shouldn't have to respell on the command line
// every time.
type Config struct {
	Inputs  []string `yaml:"inputs"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Color *bool `yaml:"color"`
}

// LoadConfig reads path, returning an empty Config if path is empty and
// no default config file exists.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = "dwarfgraph.yaml"
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
