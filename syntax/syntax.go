// Package syntax adapts an incremental grammar engine (tree-sitter) for
// the language server: parsing with tree reuse, cursor resolution and
// region classification.
package syntax

import (
	"context"
	"errors"
	"fmt"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("lspblade.syntax")

// ErrNoTree is returned when the engine produced no tree at all, which only
// happens when the language is unusable or the parse was cancelled.
var ErrNoTree = errors.New("grammar engine produced no tree")

// Point is a zero-based (row, byte column) position.
type Point struct {
	Row    uint32
	Column uint32
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Less reports whether p comes strictly before o.
func (p Point) Less(o Point) bool {
	return p.Row < o.Row || (p.Row == o.Row && p.Column < o.Column)
}

// Node is a read-only view into a Tree. A Node is only meaningful together
// with the text the tree was parsed from.
type Node interface {
	Kind() string
	StartByte() uint32
	EndByte() uint32
	StartPoint() Point
	EndPoint() Point
	ChildCount() int
	// Child returns nil when i is out of range.
	Child(i int) Node
	HasError() bool
	IsMissing() bool
}

// Tree is an immutable syntax tree.
type Tree interface {
	Root() Node
	// Edited returns a copy of the tree with the edit applied, suitable as
	// the previous tree of an incremental parse. The receiver is unchanged.
	Edited(edit Edit) Tree
}

// Engine produces trees from source text. When previous is non-nil it must
// already reflect the edit that turned its text into text (see Tree.Edited).
type Engine interface {
	Parse(ctx context.Context, text []byte, previous Tree) (Tree, error)
}

// Text returns the exact source text spanned by node.
func Text(node Node, src []byte) string {
	if node == nil {
		return ""
	}
	start, end := int(node.StartByte()), int(node.EndByte())
	if start > len(src) {
		return ""
	}
	if end > len(src) {
		end = len(src)
	}
	if start > end {
		return ""
	}
	return string(src[start:end])
}

// Walk visits node and its descendants depth first, in order. Returning
// false from visit skips the children of that node.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for i := 0; i < node.ChildCount(); i++ {
		Walk(node.Child(i), visit)
	}
}
