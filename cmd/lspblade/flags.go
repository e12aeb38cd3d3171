package main

import (
	"github.com/spf13/cobra"

	"github.com/tminor/lspblade/config"
)

// rootFlags are shared by every command and override the config file.
type rootFlags struct {
	configPath string
	logFile    string
	logLevel   string
	language   string
	library    string
	dialect    string
	oracle     string
	offset     string
}

func (f *rootFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", config.DefaultPath(), "path to config.yaml")
	pf.StringVar(&f.logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warning, error)")
	pf.StringVar(&f.language, "language", "", "grammar name (builtin php or html, or the name inside --grammar)")
	pf.StringVar(&f.library, "grammar", "", "shared library holding a tree-sitter grammar, e.g. blade.so")
	pf.StringVar(&f.dialect, "dialect", "", "tag table to classify nodes with (blade or php)")
	pf.StringVar(&f.oracle, "oracle", "", "phpactor executable")
	pf.StringVar(&f.offset, "offset", "", "where the oracle completes: end or cursor")
}

// load reads the config file and applies the flags given on the command
// line.
func (f *rootFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("grammar") {
		cfg.Grammar.Library = f.library
		if !changed("language") && cfg.Grammar.Language == "php" {
			cfg.Grammar.Language = "blade"
		}
		if !changed("dialect") && cfg.Grammar.Dialect == "php" {
			cfg.Grammar.Dialect = "blade"
		}
	}
	if changed("language") {
		cfg.Grammar.Language = f.language
	}
	if changed("dialect") {
		cfg.Grammar.Dialect = f.dialect
	}
	if changed("oracle") {
		cfg.Oracle.Command = f.oracle
	}
	if changed("offset") {
		cfg.Oracle.Offset = f.offset
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	return cfg, cfg.Validate()
}
