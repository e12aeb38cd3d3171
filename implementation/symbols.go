package implementation

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspblade/syntax"
)

const symbolNameLength = 48

// createSymbols builds the document outline: directives nest, embedded
// script blocks are leaves, markup is transparent.
func createSymbols(node syntax.Node, src []byte, dialect *syntax.Dialect) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	if node == nil {
		return symbols
	}
	for i := 0; i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		symbols = append(symbols, createSymbol(child, src, dialect)...)
	}
	return symbols
}

func createSymbol(node syntax.Node, src []byte, dialect *syntax.Dialect) []protocol.DocumentSymbol {
	switch dialect.ClassifyNode(node) {
	case syntax.EmbeddedScript:
		// nothing inside a script block is worth its own entry
		return []protocol.DocumentSymbol{newSymbol(node, src, protocol.SymbolKindFunction)}
	case syntax.Directive:
		if node.ChildCount() > 0 || isDirectiveLeaf(node.Kind()) {
			symbol := newSymbol(node, src, protocol.SymbolKindObject)
			symbol.Children = createSymbols(node, src, dialect)
			return []protocol.DocumentSymbol{symbol}
		}
		return nil
	}
	return createSymbols(node, src, dialect)
}

// isDirectiveLeaf matches directives that stand alone, like @csrf.
func isDirectiveLeaf(kind string) bool {
	return kind == "directive" || kind == "directive_start"
}

func newSymbol(node syntax.Node, src []byte, kind protocol.SymbolKind) protocol.DocumentSymbol {
	name := preview(syntax.Text(node, src), symbolNameLength)
	if name == "" {
		name = node.Kind()
	}
	detail := node.Kind()
	symbolRange := toRange(src, node)
	return protocol.DocumentSymbol{
		Name:           name,
		Detail:         &detail,
		Kind:           kind,
		Range:          symbolRange,
		SelectionRange: symbolRange,
	}
}
