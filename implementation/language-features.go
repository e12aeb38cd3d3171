package implementation

import (
	contextpkg "context"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspblade/completion"
	"github.com/tminor/lspblade/syntax"
)

// phpactor suggestion types
var completionKinds = map[string]protocol.CompletionItemKind{
	"method":    protocol.CompletionItemKindMethod,
	"function":  protocol.CompletionItemKindFunction,
	"class":     protocol.CompletionItemKindClass,
	"interface": protocol.CompletionItemKindInterface,
	"module":    protocol.CompletionItemKindModule,
	"property":  protocol.CompletionItemKindProperty,
	"field":     protocol.CompletionItemKindField,
	"variable":  protocol.CompletionItemKindVariable,
	"constant":  protocol.CompletionItemKindConstant,
	"enum":      protocol.CompletionItemKindEnum,
	"keyword":   protocol.CompletionItemKindKeyword,
	"snippet":   protocol.CompletionItemKindSnippet,
	"none":      protocol.CompletionItemKindText,
}

// cursor resolves an editor position in a document to its snapshot, the
// byte-column point and the node under it. node is nil when the position is
// outside the document.
func (ls *Server) cursor(uri protocol.DocumentUri, position protocol.Position) (*Snapshot, syntax.Point, syntax.Node, bool) {
	snapshot, ok := ls.documents.Get(uri)
	if !ok {
		return nil, syntax.Point{}, nil, false
	}
	point := syntax.PointFromUTF16(snapshot.Text, position.Line, position.Character)
	return snapshot, point, syntax.Resolve(snapshot.Tree.Root(), point), true
}

// TextDocumentCompletion implements protocol.TextDocumentCompletionFunc.
// Every failure still answers with a list.
func (ls *Server) textDocumentCompletion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	return ls.prepareCompletion(context, params)(contextpkg.Background()), nil
}

// prepareCompletion resolves the cursor against the document as it is now
// and returns the part that may wait on the oracle. Later changes to the
// document do not affect the returned function.
func (ls *Server) prepareCompletion(context *glsp.Context, params *protocol.CompletionParams) func(contextpkg.Context) []protocol.CompletionItem {
	uri := params.TextDocument.URI
	snapshot, point, node, ok := ls.cursor(uri, params.Position)
	if !ok {
		log.Warningf("completion for unknown document %s", uri)
		items := toCompletionItems([]completion.Candidate{completion.Fallback()})
		return func(contextpkg.Context) []protocol.CompletionItem {
			return items
		}
	}

	return func(ctx contextpkg.Context) []protocol.CompletionItem {
		candidates, err := ls.dispatcher.Dispatch(ctx, node, snapshot.Text, point)
		if err != nil {
			if ctx.Err() != nil {
				log.Debugf("completion at %s %s abandoned: %s", uri, point, ctx.Err().Error())
				return []protocol.CompletionItem{}
			}
			log.Errorf("completion at %s %s: %s", uri, point, err.Error())
			logToClient(context, protocol.MessageTypeWarning, fmt.Sprintf("lspblade: completion failed: %v", err))
			return []protocol.CompletionItem{}
		}

		log.Debugf("%d completions at %s %s (version %d)", len(candidates), uri, point, snapshot.Version)
		return toCompletionItems(candidates)
	}
}

// TextDocumentHover implements protocol.TextDocumentHoverFunc
func (ls *Server) textDocumentHover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	snapshot, _, node, ok := ls.cursor(params.TextDocument.URI, params.Position)
	if !ok || node == nil {
		return nil, nil
	}

	region := ls.dialect.ClassifyNode(node)
	value := fmt.Sprintf("`%s` · %s", node.Kind(), region)
	if region == syntax.EmbeddedScript {
		value += fmt.Sprintf("\n\n```php\n%s\n```", syntax.Text(node, snapshot.Text))
	}

	hoverRange := toRange(snapshot.Text, node)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
		Range: &hoverRange,
	}, nil
}

// TextDocumentDocumentSymbol implements protocol.TextDocumentDocumentSymbolFunc
func (ls *Server) textDocumentDocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	snapshot, ok := ls.documents.Get(params.TextDocument.URI)
	if !ok {
		return []protocol.DocumentSymbol{}, nil
	}
	return newDocumentState(snapshot, ls.dialect).Symbols, nil
}

func toCompletionItems(candidates []completion.Candidate) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, toCompletionItem(c))
	}
	return items
}

func toCompletionItem(c completion.Candidate) protocol.CompletionItem {
	item := protocol.CompletionItem{Label: c.Label}
	if item.Label == "" {
		item.Label = c.Name
	}
	if kind, ok := completionKinds[c.Type]; ok {
		item.Kind = &kind
	}
	if c.ShortDescription != "" {
		detail := c.ShortDescription
		item.Detail = &detail
	}
	if c.Documentation != "" {
		item.Documentation = protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: c.Documentation,
		}
	}
	if c.Snippet != "" {
		insertText := c.Snippet
		format := protocol.InsertTextFormatSnippet
		item.InsertText = &insertText
		item.InsertTextFormat = &format
	}
	return item
}
