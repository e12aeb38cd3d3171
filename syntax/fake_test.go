package syntax

// fakeNode is a hand-built single-line node: byte offsets equal columns.
type fakeNode struct {
	kind       string
	start, end uint32
	children   []*fakeNode
	broken     bool
}

func leaf(kind string, start, end uint32) *fakeNode {
	return &fakeNode{kind: kind, start: start, end: end}
}

func branch(kind string, start, end uint32, children ...*fakeNode) *fakeNode {
	return &fakeNode{kind: kind, start: start, end: end, children: children}
}

func (n *fakeNode) Kind() string      { return n.kind }
func (n *fakeNode) StartByte() uint32 { return n.start }
func (n *fakeNode) EndByte() uint32   { return n.end }
func (n *fakeNode) StartPoint() Point { return Point{Column: n.start} }
func (n *fakeNode) EndPoint() Point   { return Point{Column: n.end} }
func (n *fakeNode) ChildCount() int   { return len(n.children) }
func (n *fakeNode) IsMissing() bool   { return false }
func (n *fakeNode) Child(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *fakeNode) HasError() bool {
	if n.broken || n.kind == "ERROR" {
		return true
	}
	for _, c := range n.children {
		if c.HasError() {
			return true
		}
	}
	return false
}

// bladeFixture mirrors the shape tree-sitter-blade gives
// `<div>{{ str_replace() }}</div>`.
func bladeFixture() *fakeNode {
	return branch("document", 0, 30,
		branch("element", 0, 30,
			branch("start_tag", 0, 5, leaf("<", 0, 1), leaf("tag_name", 1, 4), leaf(">", 4, 5)),
			branch("php_statement", 5, 24,
				leaf("{{", 5, 7),
				leaf("php_only", 8, 21),
				leaf("}}", 22, 24),
			),
			branch("end_tag", 24, 30, leaf("</", 24, 26), leaf("tag_name", 26, 29), leaf(">", 29, 30)),
		),
	)
}

const bladeFixtureText = "<div>{{ str_replace() }}</div>"
