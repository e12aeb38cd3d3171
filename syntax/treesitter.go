package syntax

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// TreeSitter is an Engine backed by a tree-sitter language.
type TreeSitter struct {
	language *sitter.Language
	name     string
}

// NewTreeSitter wraps language and checks that it can parse at all. An
// incompatible grammar (for example one built for a newer tree-sitter ABI)
// fails here rather than on the first document.
func NewTreeSitter(name string, language *sitter.Language) (*TreeSitter, error) {
	if language == nil {
		return nil, fmt.Errorf("grammar %q: no language", name)
	}
	engine := &TreeSitter{language: language, name: name}
	if _, err := engine.Parse(context.Background(), []byte{}, nil); err != nil {
		return nil, fmt.Errorf("grammar %q is unusable: %w", name, err)
	}
	return engine, nil
}

func (e *TreeSitter) Name() string {
	return e.name
}

// Parse implements Engine. Each call uses its own parser, so documents can be
// parsed concurrently.
func (e *TreeSitter) Parse(ctx context.Context, text []byte, previous Tree) (Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.language)

	var old *sitter.Tree
	if prev, ok := previous.(*tsTree); ok && prev != nil {
		old = prev.tree
	}

	tree, err := parser.ParseCtx(ctx, old, text)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, ErrNoTree
	}
	return newTSTree(tree), nil
}

// tsTree guards the binding's per-tree node cache, which is a plain map
// filled on RootNode and Child. Everything else on a node is a pure C call.
type tsTree struct {
	tree *sitter.Tree
	mu   *sync.Mutex
}

func newTSTree(tree *sitter.Tree) *tsTree {
	return &tsTree{tree: tree, mu: &sync.Mutex{}}
}

func (t *tsTree) Root() Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return wrapNode(t.tree.RootNode(), t.mu)
}

func (t *tsTree) Edited(edit Edit) Tree {
	cp := t.tree.Copy()
	cp.Edit(sitter.EditInput{
		StartIndex:  edit.StartByte,
		OldEndIndex: edit.OldEndByte,
		NewEndIndex: edit.NewEndByte,
		StartPoint:  toSitterPoint(edit.StartPoint),
		OldEndPoint: toSitterPoint(edit.OldEndPoint),
		NewEndPoint: toSitterPoint(edit.NewEndPoint),
	})
	return newTSTree(cp)
}

type tsNode struct {
	node *sitter.Node
	mu   *sync.Mutex
}

// wrapNode avoids handing out a non-nil interface holding a nil node.
func wrapNode(n *sitter.Node, mu *sync.Mutex) Node {
	if n == nil || n.IsNull() {
		return nil
	}
	return tsNode{node: n, mu: mu}
}

func (n tsNode) Kind() string      { return n.node.Type() }
func (n tsNode) StartByte() uint32 { return n.node.StartByte() }
func (n tsNode) EndByte() uint32   { return n.node.EndByte() }
func (n tsNode) StartPoint() Point { return fromSitterPoint(n.node.StartPoint()) }
func (n tsNode) EndPoint() Point   { return fromSitterPoint(n.node.EndPoint()) }
func (n tsNode) ChildCount() int   { return int(n.node.ChildCount()) }
func (n tsNode) HasError() bool    { return n.node.HasError() }
func (n tsNode) IsMissing() bool   { return n.node.IsMissing() }
func (n tsNode) Child(i int) Node {
	if i < 0 || i >= n.ChildCount() {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return wrapNode(n.node.Child(i), n.mu)
}

// String returns the S-expression of the subtree.
func (n tsNode) String() string {
	return n.node.String()
}

func toSitterPoint(p Point) sitter.Point {
	return sitter.Point{Row: p.Row, Column: p.Column}
}

func fromSitterPoint(p sitter.Point) Point {
	return Point{Row: p.Row, Column: p.Column}
}
