package implementation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspblade/syntax"
)

func phpEngine(t *testing.T) syntax.Engine {
	t.Helper()
	engine, err := syntax.LoadEngine(syntax.LanguageSpec{Name: "php"})
	require.NoError(t, err)
	return engine
}

// requireTreeMatchesText checks that no node of the snapshot's tree reaches
// past its text, and that the tree is what a fresh parse of the text gives.
func requireTreeMatchesText(t *testing.T, engine syntax.Engine, snapshot *Snapshot) {
	t.Helper()
	root := snapshot.Tree.Root()
	require.LessOrEqual(t, int(root.EndByte()), len(snapshot.Text))

	fresh, err := engine.Parse(context.Background(), snapshot.Text, nil)
	require.NoError(t, err)
	require.Equal(t, kinds(fresh.Root()), kinds(root))
}

func kinds(root syntax.Node) []string {
	var out []string
	syntax.Walk(root, func(n syntax.Node) bool {
		out = append(out, fmt.Sprintf("%s@%d-%d", n.Kind(), n.StartByte(), n.EndByte()))
		return true
	})
	return out
}

func TestStoreOpenChangeRoundTrip(t *testing.T) {
	engine := phpEngine(t)
	store := newDocumentStore(engine)
	uri := protocol.DocumentUri("file:///views/welcome.blade.php")
	ctx := context.Background()

	t1 := "<div><?php str_replace(); ?></div>"
	t2 := "<section>\n<?php echo $user->name; ?>\n</section>\n"

	first, err := store.Open(ctx, uri, 1, t1)
	require.NoError(t, err)

	second, err := store.Change(ctx, uri, 2, t2)
	require.NoError(t, err)

	got, ok := store.Get(uri)
	require.True(t, ok)
	require.Same(t, second, got)
	require.Equal(t, t2, string(got.Text))
	require.EqualValues(t, 2, got.Version)
	requireTreeMatchesText(t, engine, got)

	// the first snapshot is untouched and still self-consistent
	require.Equal(t, t1, string(first.Text))
	requireTreeMatchesText(t, engine, first)
}

func TestStoreChangeWithoutOpen(t *testing.T) {
	engine := phpEngine(t)
	store := newDocumentStore(engine)
	uri := protocol.DocumentUri("file:///a.php")

	snapshot, err := store.Change(context.Background(), uri, 7, "<p><?php $a; ?></p>")
	require.NoError(t, err)
	requireTreeMatchesText(t, engine, snapshot)

	got, ok := store.Get(uri)
	require.True(t, ok)
	require.Same(t, snapshot, got)
}

func TestStoreSingleCharacterEdits(t *testing.T) {
	engine := phpEngine(t)
	store := newDocumentStore(engine)
	uri := protocol.DocumentUri("file:///typing.php")
	ctx := context.Background()

	text := "<ul>\n<?php foreach ($items as $item): ?>\n<li><?php echo $item; ?></li>\n<?php endforeach; ?>\n</ul>\n"
	_, err := store.Open(ctx, uri, 1, text)
	require.NoError(t, err)

	typed := "_label"
	at := len("<ul>\n<?php foreach ($items as $item): ?>\n<li><?php echo $item")
	for i := range typed {
		next := text[:at] + typed[:i+1] + text[at:]
		snapshot, err := store.Change(ctx, uri, protocol.Integer(i+2), next)
		require.NoError(t, err)
		requireTreeMatchesText(t, engine, snapshot)
	}
}

func TestStoreCloseAndReset(t *testing.T) {
	store := newDocumentStore(phpEngine(t))
	ctx := context.Background()

	for _, uri := range []protocol.DocumentUri{"file:///a.php", "file:///b.php", "file:///c.php"} {
		_, err := store.Open(ctx, uri, 1, "<p>x</p>")
		require.NoError(t, err)
	}
	require.Len(t, store.URIs(), 3)

	store.Close("file:///b.php")
	_, ok := store.Get("file:///b.php")
	require.False(t, ok)
	require.Len(t, store.URIs(), 2)

	store.Reset()
	require.Empty(t, store.URIs())
	_, ok = store.Get("file:///a.php")
	require.False(t, ok)
}

type failingEngine struct {
	syntax.Engine
	fail bool
}

func (e *failingEngine) Parse(ctx context.Context, text []byte, previous syntax.Tree) (syntax.Tree, error) {
	if e.fail {
		return nil, syntax.ErrNoTree
	}
	return e.Engine.Parse(ctx, text, previous)
}

func TestStoreParseFailureKeepsPreviousSnapshot(t *testing.T) {
	engine := &failingEngine{Engine: phpEngine(t)}
	store := newDocumentStore(engine)
	uri := protocol.DocumentUri("file:///a.php")
	ctx := context.Background()

	before, err := store.Open(ctx, uri, 1, "<p>one</p>")
	require.NoError(t, err)

	engine.fail = true
	_, err = store.Change(ctx, uri, 2, "<p>two</p>")
	require.True(t, errors.Is(err, syntax.ErrNoTree))

	got, ok := store.Get(uri)
	require.True(t, ok)
	require.Same(t, before, got)

	_, err = store.Open(ctx, "file:///new.php", 1, "<p/>")
	require.Error(t, err)
	_, ok = store.Get("file:///new.php")
	require.False(t, ok)
}

func TestStoreConcurrentDocuments(t *testing.T) {
	engine := phpEngine(t)
	store := newDocumentStore(engine)
	ctx := context.Background()

	const documents = 8
	const edits = 20

	var wg sync.WaitGroup
	for d := 0; d < documents; d++ {
		uri := protocol.DocumentUri(fmt.Sprintf("file:///doc%d.php", d))
		for writer := 0; writer < 2; writer++ {
			wg.Add(1)
			go func(writer int) {
				defer wg.Done()
				for i := 0; i < edits; i++ {
					text := fmt.Sprintf("<p><?php echo $v%d_%d; ?></p>\n", writer, i)
					_, err := store.Change(ctx, uri, protocol.Integer(i), text)
					assert.NoError(t, err)
					if snapshot, ok := store.Get(uri); ok {
						assert.LessOrEqual(t, int(snapshot.Tree.Root().EndByte()), len(snapshot.Text))
					}
				}
			}(writer)
		}
	}
	wg.Wait()

	require.Len(t, store.URIs(), documents)
	for _, uri := range store.URIs() {
		snapshot, ok := store.Get(uri)
		require.True(t, ok)
		requireTreeMatchesText(t, engine, snapshot)
	}
}

func TestStoreUnchangedTextSharesTree(t *testing.T) {
	store := newDocumentStore(phpEngine(t))
	uri := protocol.DocumentUri("file:///same.php")
	ctx := context.Background()

	first, err := store.Open(ctx, uri, 1, "<p><?php $a; ?></p>")
	require.NoError(t, err)
	second, err := store.Change(ctx, uri, 2, "<p><?php $a; ?></p>")
	require.NoError(t, err)

	require.NotSame(t, first, second)
	require.EqualValues(t, 2, second.Version)
	require.Same(t, first.Tree, second.Tree)
}

// gatedEngine blocks every parse until release is closed and records the
// previous tree it was handed.
type gatedEngine struct {
	syntax.Engine
	entered chan struct{}
	release chan struct{}

	mu       sync.Mutex
	previous []syntax.Tree
}

func (e *gatedEngine) Parse(ctx context.Context, text []byte, previous syntax.Tree) (syntax.Tree, error) {
	e.mu.Lock()
	e.previous = append(e.previous, previous)
	gate := e.release
	e.mu.Unlock()
	if gate != nil {
		e.entered <- struct{}{}
		<-gate
	}
	return e.Engine.Parse(ctx, text, previous)
}

func (e *gatedEngine) open() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.release = nil
}

func TestStoreCloseWaitsForChangeInProgress(t *testing.T) {
	engine := &gatedEngine{Engine: phpEngine(t), entered: make(chan struct{}, 1)}
	store := newDocumentStore(engine)
	uri := protocol.DocumentUri("file:///racing.php")
	ctx := context.Background()

	_, err := store.Open(ctx, uri, 1, "<p>one</p>")
	require.NoError(t, err)

	engine.mu.Lock()
	engine.release = make(chan struct{})
	release := engine.release
	engine.mu.Unlock()

	changed := make(chan error, 1)
	go func() {
		_, err := store.Change(ctx, uri, 2, "<p>two</p>")
		changed <- err
	}()
	<-engine.entered

	closed := make(chan struct{})
	go func() {
		store.Close(uri)
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a change was still being parsed")
	case <-time.After(50 * time.Millisecond):
	}

	engine.open()
	close(release)
	require.NoError(t, <-changed)
	<-closed

	_, ok := store.Get(uri)
	require.False(t, ok, "a change racing Close must not survive it")
	require.Empty(t, store.URIs())

	reopened, err := store.Open(ctx, uri, 1, "<p>three</p>")
	require.NoError(t, err)

	engine.mu.Lock()
	last := engine.previous[len(engine.previous)-1]
	engine.mu.Unlock()
	require.Nil(t, last, "a reopened document is parsed from scratch")
	requireTreeMatchesText(t, engine, reopened)
}
