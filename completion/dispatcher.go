package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/tminor/lspblade/syntax"
)

// OffsetPolicy decides where inside the snippet the oracle is asked to
// complete.
type OffsetPolicy int

const (
	// OffsetAtSnippetEnd always completes at the end of the node's text,
	// which matches the cursor only when it sits at the end of the embedded
	// region.
	OffsetAtSnippetEnd OffsetPolicy = iota
	// OffsetAtCursor completes at the cursor's byte offset inside the node.
	OffsetAtCursor
)

func (p OffsetPolicy) String() string {
	if p == OffsetAtCursor {
		return "cursor"
	}
	return "end"
}

// ParseOffsetPolicy accepts "end" (or empty) and "cursor".
func ParseOffsetPolicy(s string) (OffsetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "end":
		return OffsetAtSnippetEnd, nil
	case "cursor":
		return OffsetAtCursor, nil
	default:
		return OffsetAtSnippetEnd, fmt.Errorf("invalid offset policy %q (use end or cursor)", s)
	}
}

// Dispatcher routes a resolved node either to the oracle or to the fallback
// answer.
type Dispatcher struct {
	Oracle  Oracle
	Dialect *syntax.Dialect
	Offset  OffsetPolicy
}

// Dispatch completes at node, which was resolved from cursor in src. Only
// embedded script reaches the oracle, and only the node's own text is sent.
// Oracle failures are returned as errors for the caller to report.
func (d *Dispatcher) Dispatch(ctx context.Context, node syntax.Node, src []byte, cursor syntax.Point) ([]Candidate, error) {
	region := d.Dialect.ClassifyNode(node)
	if node == nil || region != syntax.EmbeddedScript {
		log.Debugf("no script at %s (region %s)", cursor, region)
		return []Candidate{Fallback()}, nil
	}

	snippet := syntax.Text(node, src)
	offset := len(snippet)
	if d.Offset == OffsetAtCursor {
		offset = cursorOffset(node, src, cursor, len(snippet))
	}

	if d.Oracle == nil {
		return []Candidate{}, nil
	}
	log.Debugf("completing %q at %d (%s)", snippet, offset, node.Kind())
	candidates, err := d.Oracle.Complete(ctx, snippet, offset)
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func cursorOffset(node syntax.Node, src []byte, cursor syntax.Point, limit int) int {
	at := syntax.ByteOffset(src, cursor)
	offset := at - int(node.StartByte())
	if at < 0 || offset > limit {
		return limit
	}
	if offset < 0 {
		return 0
	}
	return offset
}
