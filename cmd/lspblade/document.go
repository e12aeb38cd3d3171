package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tminor/lspblade/config"
	"github.com/tminor/lspblade/syntax"
)

// document is a file parsed the way the server would parse it.
type document struct {
	path    string
	cfg     config.Config
	text    []byte
	tree    syntax.Tree
	dialect *syntax.Dialect
}

func openDocument(cmd *cobra.Command, flags *rootFlags, path string) (*document, error) {
	cfg, err := flags.load(cmd)
	if err != nil {
		return nil, err
	}
	if err := configureLogging(cfg.Log); err != nil {
		return nil, err
	}

	engine, err := syntax.LoadEngine(cfg.LanguageSpec())
	if err != nil {
		return nil, fmt.Errorf("load grammar: %w", err)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tree, err := engine.Parse(ctx, text, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &document{
		path:    path,
		cfg:     cfg,
		text:    text,
		tree:    tree,
		dialect: cfg.Dialect(),
	}, nil
}

// line returns the text of row without its newline.
func (d *document) line(row uint32) string {
	start := syntax.ByteOffset(d.text, syntax.Point{Row: row})
	if start < 0 {
		return ""
	}
	end := start
	for end < len(d.text) && d.text[end] != '\n' {
		end++
	}
	return string(d.text[start:end])
}
