package implementation

import (
	"context"
	"sync"
	"sync/atomic"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspblade/syntax"
)

// Snapshot is one parsed state of a document. It is never modified after
// creation: the tree is always the parse of Text.
type Snapshot struct {
	URI     protocol.DocumentUri
	Version protocol.Integer
	Text    []byte
	Tree    syntax.Tree
}

// documentStore holds opened documents. Changes to one document are
// serialized; different documents never wait on each other, and readers
// never wait at all.
type documentStore struct {
	engine syntax.Engine
	slots  sync.Map // protocol.DocumentUri to *documentSlot
}

type documentSlot struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	// closed is set under mu once the slot has left the map; writers that
	// raced with Close retry against a fresh slot.
	closed bool
}

func newDocumentStore(engine syntax.Engine) *documentStore {
	return &documentStore{engine: engine}
}

// Open parses a newly opened document. Reopening a known document is
// treated as a change.
func (s *documentStore) Open(ctx context.Context, uri protocol.DocumentUri, version protocol.Integer, text string) (*Snapshot, error) {
	return s.update(ctx, uri, version, text)
}

// Change re-parses a document incrementally from its current snapshot, or
// from scratch when the document is unknown.
func (s *documentStore) Change(ctx context.Context, uri protocol.DocumentUri, version protocol.Integer, text string) (*Snapshot, error) {
	return s.update(ctx, uri, version, text)
}

func (s *documentStore) update(ctx context.Context, uri protocol.DocumentUri, version protocol.Integer, text string) (*Snapshot, error) {
	for {
		value, _ := s.slots.LoadOrStore(uri, &documentSlot{})
		slot := value.(*documentSlot)

		slot.mu.Lock()
		if slot.closed {
			slot.mu.Unlock()
			continue
		}
		snapshot, err := s.parseInto(ctx, slot, uri, version, []byte(text))
		slot.mu.Unlock()
		return snapshot, err
	}
}

// parseInto must be called with slot.mu held.
func (s *documentStore) parseInto(ctx context.Context, slot *documentSlot, uri protocol.DocumentUri, version protocol.Integer, src []byte) (*Snapshot, error) {
	var previous syntax.Tree
	if old := slot.current.Load(); old != nil {
		edit := syntax.DiffEdit(old.Text, src)
		if edit.Empty() {
			// trees are immutable, so an unchanged text shares its tree
			snapshot := &Snapshot{URI: uri, Version: version, Text: src, Tree: old.Tree}
			slot.current.Store(snapshot)
			return snapshot, nil
		}
		previous = old.Tree.Edited(edit)
	}

	tree, err := s.engine.Parse(ctx, src, previous)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{URI: uri, Version: version, Text: src, Tree: tree}
	slot.current.Store(snapshot)
	return snapshot, nil
}

// Get returns the current snapshot of a document.
func (s *documentStore) Get(uri protocol.DocumentUri) (*Snapshot, bool) {
	value, ok := s.slots.Load(uri)
	if !ok {
		return nil, false
	}
	snapshot := value.(*documentSlot).current.Load()
	return snapshot, snapshot != nil
}

// Close forgets a document. It waits for a change in progress on the same
// document, so nothing written before Close survives it.
func (s *documentStore) Close(uri protocol.DocumentUri) {
	if value, ok := s.slots.Load(uri); ok {
		s.closeSlot(uri, value.(*documentSlot))
	}
}

func (s *documentStore) closeSlot(uri protocol.DocumentUri, slot *documentSlot) {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.closed = true
	slot.current.Store(nil)
	s.slots.CompareAndDelete(uri, slot)
}

// Reset forgets every document.
func (s *documentStore) Reset() {
	s.slots.Range(func(key, value any) bool {
		s.closeSlot(key.(protocol.DocumentUri), value.(*documentSlot))
		return true
	})
}

// URIs lists the open documents.
func (s *documentStore) URIs() []protocol.DocumentUri {
	var uris []protocol.DocumentUri
	s.slots.Range(func(key, value any) bool {
		if value.(*documentSlot).current.Load() != nil {
			uris = append(uris, key.(protocol.DocumentUri))
		}
		return true
	})
	return uris
}
