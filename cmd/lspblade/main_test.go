package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/tminor/lspblade/config"
	"github.com/tminor/lspblade/syntax"
)

// parseFlags runs an empty command with args and returns the merged config.
func parseFlags(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var flags rootFlags
	var cfg config.Config
	var loadErr error

	cmd := &cobra.Command{
		Use: "lspblade",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loadErr = flags.load(cmd)
			return nil
		},
	}
	flags.register(cmd)
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	cmd.SetArgs(append([]string{"--config", missing}, args...))
	require.NoError(t, cmd.Execute())
	return cfg, loadErr
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg, err := parseFlags(t, "--oracle", "/opt/phpactor/bin/phpactor", "--offset", "cursor", "--log-level", "debug")
	require.NoError(t, err)
	require.Equal(t, "/opt/phpactor/bin/phpactor", cfg.Oracle.Command)
	require.Equal(t, "cursor", cfg.Oracle.Offset)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "php", cfg.Grammar.Language)
}

func TestGrammarFlagSelectsBlade(t *testing.T) {
	cfg, err := parseFlags(t, "--grammar", "/usr/lib/blade.so")
	require.NoError(t, err)
	require.Equal(t, "/usr/lib/blade.so", cfg.Grammar.Library)
	require.Equal(t, "blade", cfg.Grammar.Language)
	require.Equal(t, "blade", cfg.Grammar.Dialect)

	cfg, err = parseFlags(t, "--grammar", "/usr/lib/blade.so", "--dialect", "php")
	require.NoError(t, err)
	require.Equal(t, "php", cfg.Grammar.Dialect)
}

func TestInvalidFlagIsRejected(t *testing.T) {
	_, err := parseFlags(t, "--offset", "middle")
	require.Error(t, err)
}

func TestRenderInspection(t *testing.T) {
	engine, err := syntax.LoadEngine(syntax.LanguageSpec{Name: "php"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "welcome.blade.php")
	text := []byte("<div>\n\t<?php str_replace(); ?>\n</div>\n")
	require.NoError(t, os.WriteFile(path, text, 0o644))
	tree, err := engine.Parse(t.Context(), text, nil)
	require.NoError(t, err)

	doc := &document{path: path, cfg: config.Default(), text: text, tree: tree, dialect: syntax.PHP}
	point := syntax.PointFromUTF16(text, 1, 10)
	var out bytes.Buffer
	require.NoError(t, renderInspection(&out, doc, point, syntax.ResolvePath(tree.Root(), point), true))

	got := out.String()
	require.Contains(t, got, "EmbeddedScript")
	require.Contains(t, got, "program > ")
	require.Contains(t, got, "str_replace\n")
	require.Contains(t, got, "            ^")

	out.Reset()
	require.NoError(t, renderInspection(&out, doc, syntax.Point{Row: 9}, nil, true))
	require.Contains(t, out.String(), "outside the document")
}

func TestDocumentLine(t *testing.T) {
	doc := &document{text: []byte("one\ntwo\nthree")}
	require.Equal(t, "one", doc.line(0))
	require.Equal(t, "three", doc.line(2))
	require.Equal(t, "", doc.line(5))
}
