package htbench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML benchmark definition consumed by the CLI.
//
//	runs: 5
//	retries: 2
//	command: [hdc, shell, hitrace, -t, "10", app]
//	filters:
//	  - name: load_page
//	    function: LoadPage
//	  - name: first_frame
//	    function: FirstFrame
//	    kind: point
type Config struct {
	// Runs is how many times the capture command is executed. Defaults
	// to 1.
	Runs int `yaml:"runs"`

	// Retries is how many times a failed capture is retried per run,
	// with backoff, before the run counts as failed.
	Retries int `yaml:"retries"`

	// Command produces a capture on stdout.
	Command []string `yaml:"command"`

	// Filters are the measurements taken from every run.
	Filters []Filter `yaml:"filters"`
}

// Validate normalizes the config and reports mistakes. The command may be
// empty: reporting over existing capture files doesn't need one, and the
// runner checks for itself.
func (c *Config) Validate() error {
	if c.Runs == 0 {
		c.Runs = 1
	}
	if c.Runs < 0 {
		return fmt.Errorf("runs must be positive, have %d", c.Runs)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, have %d", c.Retries)
	}

	if len(c.Filters) == 0 {
		return fmt.Errorf("at least one filter is required")
	}

	seen := map[string]bool{}
	for i := range c.Filters {
		if err := c.Filters[i].Validate(); err != nil {
			return err
		}
		if seen[c.Filters[i].Name] {
			return fmt.Errorf("duplicate filter name %q", c.Filters[i].Name)
		}
		seen[c.Filters[i].Name] = true
	}

	return nil
}

// ParseConfig decodes and validates a YAML benchmark definition.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads, decodes and validates the benchmark definition at
// path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
