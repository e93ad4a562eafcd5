package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CollectConfig controls the timed image-collection command.
type CollectConfig struct {
	// Command is the conversion command template. {input} and {output}
	// are replaced with the run's input glob and output directory.
	Command     string `yaml:"command"`
	Input       string `yaml:"input"`
	OutputDir   string `yaml:"output_dir"`
	TimeCommand string `yaml:"time_command"`
}

// Config holds the workspace layout and external command settings.
type Config struct {
	RunPrefix     string        `yaml:"run_prefix"`
	LogDir        string        `yaml:"log_dir"`
	LogPrefix     string        `yaml:"log_prefix"`
	SubmitScript  string        `yaml:"submit_script"`
	CollectScript string        `yaml:"collect_script"`
	Shell         string        `yaml:"shell"`
	Collect       CollectConfig `yaml:"collect"`
	// Env is added to the environment of every script and timed command.
	Env map[string]string `yaml:"env"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(c *Config) {
	if c.RunPrefix == "" {
		c.RunPrefix = "run_"
	}
	if c.LogDir == "" {
		c.LogDir = "workspace/log"
	}
	if c.LogPrefix == "" {
		c.LogPrefix = "output_"
	}
	if c.SubmitScript == "" {
		c.SubmitScript = "submit.sh"
	}
	if c.CollectScript == "" {
		c.CollectScript = "collect.sh"
	}
	if c.Shell == "" {
		c.Shell = "sh"
	}
	c.Shell = expandPath(c.Shell)
	if c.Collect.Command == "" {
		c.Collect.Command = `convertmc image --many "{input}" {output}`
	}
	if c.Collect.Input == "" {
		c.Collect.Input = "output/*"
	}
	if c.Collect.OutputDir == "" {
		c.Collect.OutputDir = "png_output/"
	}
	if c.Collect.TimeCommand == "" {
		c.Collect.TimeCommand = "time -p"
	}
}

func expandPath(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return value
	}

	v = os.ExpandEnv(v)

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v
	}

	if v == "~" {
		return home
	}
	if strings.HasPrefix(v, "~/") {
		return filepath.Join(home, v[2:])
	}
	return v
}

// LoadConfig reads a YAML configuration file from path, validates it, and
// returns a Config with defaults applied for any unset fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}
