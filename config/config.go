// Package config holds the server settings read from config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tminor/lspblade/completion"
	"github.com/tminor/lspblade/syntax"
)

// Config captures every knob of the server and the debugging commands.
type Config struct {
	Grammar Grammar `yaml:"grammar"`
	Oracle  Oracle  `yaml:"oracle"`
	Log     Log     `yaml:"log"`
}

// Grammar selects the tree-sitter language and the tag table used on it.
type Grammar struct {
	// Language is a builtin grammar name, or the name of the grammar found
	// in Library.
	Language string `yaml:"language"`
	Library  string `yaml:"library"`
	Symbol   string `yaml:"symbol"`
	Dialect  string `yaml:"dialect"`
}

// Oracle configures the phpactor subprocess.
type Oracle struct {
	Command       string        `yaml:"command"`
	Args          []string      `yaml:"args"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int64         `yaml:"max_concurrent"`
	Prelude       string        `yaml:"prelude"`
	Offset        string        `yaml:"offset"`
}

type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the settings used when no file is present: the builtin
// PHP grammar with its own tag table. Configuring a grammar library switches
// both to Blade.
func Default() Config {
	return Config{
		Grammar: Grammar{
			Language: "php",
			Dialect:  "php",
		},
		Oracle: Oracle{
			Command:       completion.DefaultCommand,
			Args:          []string{"rpc"},
			Timeout:       completion.DefaultTimeout,
			MaxConcurrent: completion.DefaultMaxConcurrent,
			Offset:        "end",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/lspblade/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lspblade", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Grammar.Library != "" && cfg.Grammar.Language == "php" && cfg.Grammar.Dialect == "php" {
		// a library without an explicit language is the Blade grammar
		cfg.Grammar.Language = "blade"
		cfg.Grammar.Dialect = "blade"
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Grammar.Language == "" {
		return errors.New("grammar.language is required")
	}
	if _, err := syntax.DialectByName(c.Grammar.Dialect); err != nil {
		return fmt.Errorf("grammar.dialect: %w", err)
	}
	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("oracle.timeout must be positive, got %s", c.Oracle.Timeout)
	}
	if c.Oracle.MaxConcurrent <= 0 {
		return fmt.Errorf("oracle.max_concurrent must be positive, got %d", c.Oracle.MaxConcurrent)
	}
	if _, err := completion.ParseOffsetPolicy(c.Oracle.Offset); err != nil {
		return fmt.Errorf("oracle.offset: %w", err)
	}
	return nil
}

// LanguageSpec converts the grammar section for syntax.LoadEngine.
func (c Config) LanguageSpec() syntax.LanguageSpec {
	return syntax.LanguageSpec{
		Name:    c.Grammar.Language,
		Library: c.Grammar.Library,
		Symbol:  c.Grammar.Symbol,
	}
}

// Dialect returns the tag table; Validate has already checked the name.
func (c Config) Dialect() *syntax.Dialect {
	d, err := syntax.DialectByName(c.Grammar.Dialect)
	if err != nil {
		return syntax.Blade
	}
	return d
}

// PhpactorConfig converts the oracle section for completion.NewPhpactor.
func (c Config) PhpactorConfig() completion.PhpactorConfig {
	return completion.PhpactorConfig{
		Command:       c.Oracle.Command,
		Args:          c.Oracle.Args,
		Timeout:       c.Oracle.Timeout,
		MaxConcurrent: c.Oracle.MaxConcurrent,
		Prelude:       c.Oracle.Prelude,
	}
}

// OffsetPolicy returns the parsed oracle.offset setting.
func (c Config) OffsetPolicy() completion.OffsetPolicy {
	policy, _ := completion.ParseOffsetPolicy(c.Oracle.Offset)
	return policy
}
