package implementation

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspblade/syntax"
)

const (
	diagnosticSource = "lspblade"
	maxDiagnostics   = 100
)

// DocumentState is what the server derives from a snapshot for the client.
type DocumentState struct {
	Symbols     []protocol.DocumentSymbol
	Diagnostics []protocol.Diagnostic
}

func newDocumentState(snapshot *Snapshot, dialect *syntax.Dialect) *DocumentState {
	root := snapshot.Tree.Root()
	return &DocumentState{
		Symbols:     createSymbols(root, snapshot.Text, dialect),
		Diagnostics: createDiagnostics(root, snapshot.Text),
	}
}

// validateDocumentState publishes the syntax errors of snapshot.
func validateDocumentState(snapshot *Snapshot, dialect *syntax.Dialect, notify glsp.NotifyFunc) *DocumentState {
	documentState := newDocumentState(snapshot, dialect)
	version := protocol.UInteger(snapshot.Version)
	notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         snapshot.URI,
		Version:     &version,
		Diagnostics: documentState.Diagnostics,
	})
	return documentState
}

func clearDiagnostics(uri protocol.DocumentUri, notify glsp.NotifyFunc) {
	notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
}

// createDiagnostics reports the outermost ERROR nodes and every missing
// node. The grammar recovers from any input, so these are the only syntax
// problems there are.
func createDiagnostics(root syntax.Node, src []byte) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource

	syntax.Walk(root, func(n syntax.Node) bool {
		if len(diagnostics) >= maxDiagnostics || !n.HasError() && !n.IsMissing() {
			return false
		}

		var message string
		switch {
		case n.IsMissing():
			message = fmt.Sprintf("missing %s", n.Kind())
		case n.Kind() == "ERROR":
			message = fmt.Sprintf("syntax error near %q", preview(syntax.Text(n, src), 32))
		default:
			return true
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toRange(src, n),
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
		return false
	})

	return diagnostics
}

func toRange(src []byte, n syntax.Node) protocol.Range {
	return protocol.Range{
		Start: toPosition(src, n.StartPoint()),
		End:   toPosition(src, n.EndPoint()),
	}
}

func toPosition(src []byte, p syntax.Point) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Row),
		Character: protocol.UInteger(syntax.UTF16Column(src, p)),
	}
}

// preview shortens text to its first line, at most limit runes.
func preview(text string, limit int) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if runes := []rune(text); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return text
}
