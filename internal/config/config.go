package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const FileName = ".adt.toml"

type Config struct {
	Validator ValidatorConfig `toml:"validator"`
	Format    FormatConfig    `toml:"format"`
	Rules     RulesConfig     `toml:"rules"`
}

type ValidatorConfig struct {
	Command        string `toml:"command"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Schema         string `toml:"schema"`
}

type FormatConfig struct {
	Indent        int  `toml:"indent"`
	KeepMixedText bool `toml:"keep_mixed_text"`
}

type RulesConfig struct {
	File string `toml:"file"`
}

func Default() *Config {
	return &Config{
		Validator: ValidatorConfig{
			Command:        "xmllint",
			TimeoutSeconds: 10,
		},
		Format: FormatConfig{
			Indent: 4,
		},
	}
}

func (c *Config) Timeout() time.Duration {
	if c.Validator.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Validator.TimeoutSeconds) * time.Second
}

func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := toml.Unmarshal(content, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &c, nil
}

// Merge copies the non-zero settings of other into c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Validator.Command != "" {
		c.Validator.Command = other.Validator.Command
	}
	if other.Validator.TimeoutSeconds > 0 {
		c.Validator.TimeoutSeconds = other.Validator.TimeoutSeconds
	}
	if other.Validator.Schema != "" {
		c.Validator.Schema = other.Validator.Schema
	}
	if other.Format.Indent > 0 {
		c.Format.Indent = other.Format.Indent
	}
	if other.Format.KeepMixedText {
		c.Format.KeepMixedText = true
	}
	if other.Rules.File != "" {
		c.Rules.File = other.Rules.File
	}
}

// LoadFullConfig layers the defaults, the system and user files and the
// project file found in projectRoot. Missing files are skipped; a file that
// exists but does not parse is an error.
func LoadFullConfig(projectRoot string) (*Config, error) {
	c := Default()

	paths := []string{"/etc/adt/adt.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config/adt/adt.toml"))
	}
	if projectRoot != "" {
		paths = append(paths, filepath.Join(projectRoot, FileName))
	}

	for _, path := range paths {
		other, err := Load(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		c.Merge(other)
	}
	return c, nil
}
