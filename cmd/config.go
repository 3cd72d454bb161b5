package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the crawl subcommand's flags for --config path.yaml.
// Zero values mean "not set in the file"; the command only applies a
// field when the corresponding CLI flag wasn't explicitly passed, so
// flags always win over the config file.
type fileConfig struct {
	Depth         int      `yaml:"depth"`
	Workers       int      `yaml:"workers"`
	Delay         float64  `yaml:"delay"`
	UserAgent     string   `yaml:"user_agent"`
	Disallow      []string `yaml:"disallow"`
	AllowExternal bool     `yaml:"allow_external"`
	Yolo          bool     `yaml:"yolo"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}
