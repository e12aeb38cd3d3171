package main

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/tminor/lspblade/completion"
	"github.com/tminor/lspblade/syntax"
)

const (
	labelWidth       = 32
	descriptionWidth = 72
)

func newCompleteCmd(flags *rootFlags) *cobra.Command {
	var line, column uint32

	cmd := &cobra.Command{
		Use:   "complete <file>",
		Short: "Run a completion request against the oracle",
		Long: `Ask for completions at a position the way the server would, and print
the candidates. Positions are zero-based; the column counts UTF-16 code
units.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := openDocument(cmd, flags, args[0])
			if err != nil {
				return err
			}

			point := syntax.PointFromUTF16(doc.text, line, column)
			node := syntax.Resolve(doc.tree.Root(), point)
			dispatcher := &completion.Dispatcher{
				Oracle:  completion.NewPhpactor(doc.cfg.PhpactorConfig()),
				Dialect: doc.dialect,
				Offset:  doc.cfg.OffsetPolicy(),
			}

			candidates, err := dispatcher.Dispatch(cmd.Context(), node, doc.text, point)
			if err != nil {
				return fmt.Errorf("complete: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "no candidates")
				return nil
			}
			for _, c := range candidates {
				label := c.Label
				if label == "" {
					label = c.Name
				}
				fmt.Fprintf(out, "%-10s %s %s\n", c.Type,
					runewidth.FillRight(runewidth.Truncate(label, labelWidth, "..."), labelWidth),
					runewidth.Truncate(c.ShortDescription, descriptionWidth, "..."))
			}
			return nil
		},
	}

	cmd.Flags().Uint32Var(&line, "line", 0, "zero-based line")
	cmd.Flags().Uint32Var(&column, "column", 0, "zero-based column in UTF-16 code units")
	return cmd
}
