package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tminor/lspblade/syntax"
)

type stubNode struct {
	kind       string
	start, end uint32
}

func (n stubNode) Kind() string             { return n.kind }
func (n stubNode) StartByte() uint32        { return n.start }
func (n stubNode) EndByte() uint32          { return n.end }
func (n stubNode) StartPoint() syntax.Point { return syntax.Point{Column: n.start} }
func (n stubNode) EndPoint() syntax.Point   { return syntax.Point{Column: n.end} }
func (n stubNode) ChildCount() int          { return 0 }
func (n stubNode) Child(int) syntax.Node    { return nil }
func (n stubNode) HasError() bool           { return false }
func (n stubNode) IsMissing() bool          { return false }

type call struct {
	snippet string
	offset  int
}

type recordingOracle struct {
	calls  []call
	result []Candidate
	err    error
}

func (o *recordingOracle) Complete(_ context.Context, snippet string, offset int) ([]Candidate, error) {
	o.calls = append(o.calls, call{snippet, offset})
	return o.result, o.err
}

const source = "<div>{{ str_replace() }}</div>"

var phpOnly = stubNode{kind: "php_only", start: 8, end: 21}

func TestDispatchEmbeddedScript(t *testing.T) {
	oracle := &recordingOracle{result: []Candidate{{Label: "str_replace", Documentation: "Replace all occurrences"}}}
	d := &Dispatcher{Oracle: oracle, Dialect: syntax.Blade}

	got, err := d.Dispatch(context.Background(), phpOnly, []byte(source), syntax.Point{Column: 10})
	require.NoError(t, err)

	if diff := cmp.Diff([]call{{"str_replace()", 13}}, oracle.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("oracle calls mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, oracle.result, got)
}

func TestDispatchOffsetAtCursor(t *testing.T) {
	oracle := &recordingOracle{result: []Candidate{}}
	d := &Dispatcher{Oracle: oracle, Dialect: syntax.Blade, Offset: OffsetAtCursor}

	_, err := d.Dispatch(context.Background(), phpOnly, []byte(source), syntax.Point{Column: 11})
	require.NoError(t, err)
	require.Equal(t, []call{{"str_replace()", 3}}, oracle.calls)
}

func TestDispatchFallback(t *testing.T) {
	tests := []struct {
		name string
		node syntax.Node
	}{
		{"markup", stubNode{kind: "text", start: 0, end: 5}},
		{"directive", stubNode{kind: "php_statement", start: 5, end: 24}},
		{"unknown tag", stubNode{kind: "mystery", start: 0, end: 30}},
		{"no node", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &recordingOracle{}
			d := &Dispatcher{Oracle: oracle, Dialect: syntax.Blade}

			got, err := d.Dispatch(context.Background(), tt.node, []byte(source), syntax.Point{Column: 2})
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.True(t, got[0].IsFallback())
			require.Empty(t, oracle.calls)
		})
	}
}

func TestDispatchOracleFailure(t *testing.T) {
	oracle := &recordingOracle{err: ErrSpawn}
	d := &Dispatcher{Oracle: oracle, Dialect: syntax.Blade}

	got, err := d.Dispatch(context.Background(), phpOnly, []byte(source), syntax.Point{Column: 10})
	require.True(t, errors.Is(err, ErrSpawn))
	require.Nil(t, got)
}

func TestParseOffsetPolicy(t *testing.T) {
	for in, want := range map[string]OffsetPolicy{"": OffsetAtSnippetEnd, "end": OffsetAtSnippetEnd, "Cursor": OffsetAtCursor} {
		got, err := ParseOffsetPolicy(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseOffsetPolicy("middle")
	require.Error(t, err)
}
