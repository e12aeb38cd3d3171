package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/tminor/lspblade/syntax"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(8)
	caretStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	regionStyles = map[syntax.Region]lipgloss.Style{
		syntax.Markup:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		syntax.EmbeddedScript: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		syntax.Directive:      lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		syntax.StyleUtility:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
)

const tabWidth = 4

func newInspectCmd(flags *rootFlags) *cobra.Command {
	var line, column uint32
	var plain, sexp bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the syntax node and region under a position",
		Long: `Parse a file and print what the server sees at a position: the node
the cursor resolves to, its region, and the path from the root.

Line and column are zero-based, the column in UTF-16 code units, exactly
as an editor sends them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := openDocument(cmd, flags, args[0])
			if err != nil {
				return err
			}
			point := syntax.PointFromUTF16(doc.text, line, column)
			path := syntax.ResolvePath(doc.tree.Root(), point)
			out := cmd.OutOrStdout()
			if err := renderInspection(out, doc, point, path, plain); err != nil {
				return err
			}
			if sexp && len(path) > 0 {
				if s, ok := path[len(path)-1].(fmt.Stringer); ok {
					fmt.Fprintf(out, "%s\n%s\n", labelStyle.Render("tree"), s.String())
				}
			}
			return nil
		},
	}

	cmd.Flags().Uint32Var(&line, "line", 0, "zero-based line")
	cmd.Flags().Uint32Var(&column, "column", 0, "zero-based column in UTF-16 code units")
	cmd.Flags().BoolVar(&plain, "plain", false, "do not syntax highlight the snippet")
	cmd.Flags().BoolVar(&sexp, "tree", false, "also print the node's subtree as an S-expression")
	return cmd
}

func renderInspection(w io.Writer, doc *document, point syntax.Point, path []syntax.Node, plain bool) error {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s:%d:%d", doc.path, point.Row, point.Column)))

	source := doc.line(point.Row)
	prefix := source
	if int(point.Column) <= len(source) {
		prefix = source[:point.Column]
	}
	fmt.Fprintf(w, "  %s\n", expandTabs(source))
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", runewidth.StringWidth(expandTabs(prefix))), caretStyle.Render("^"))

	if len(path) == 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("node"), "outside the document")
		return nil
	}

	node := path[len(path)-1]
	region := doc.dialect.ClassifyNode(node)
	fmt.Fprintf(w, "%s %s [%d, %d) %s-%s\n", labelStyle.Render("node"), node.Kind(),
		node.StartByte(), node.EndByte(), node.StartPoint(), node.EndPoint())
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("region"), regionStyles[region].Render(region.String()))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("dialect"), doc.dialect.Name)

	kinds := make([]string, 0, len(path))
	for _, n := range path {
		kinds = append(kinds, n.Kind())
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("path"), pathStyle.Render(strings.Join(kinds, " > ")))

	if region != syntax.EmbeddedScript {
		return nil
	}

	snippet := syntax.Text(node, doc.text)
	fmt.Fprintln(w, labelStyle.Render("snippet"))
	if plain {
		_, err := fmt.Fprintln(w, snippet)
		return err
	}
	if err := quick.Highlight(w, snippet, "php", "terminal256", "monokai"); err != nil {
		return fmt.Errorf("highlight: %w", err)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
