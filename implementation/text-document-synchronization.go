package implementation

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// TextDocumentDidOpen implements protocol.TextDocumentDidOpenFunc
func (ls *Server) textDocumentDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	log.Debugf("open %s (version %d)", item.URI, item.Version)
	ls.sync(context, item.URI, item.Version, item.Text, true)
	return nil
}

// TextDocumentDidChange implements protocol.TextDocumentDidChangeFunc. Only
// whole-document changes are accepted; the last one wins.
func (ls *Server) textDocumentDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if len(params.ContentChanges) == 0 {
		log.Warningf("change for %s carries no content, ignoring", uri)
		return nil
	}

	var content *string
	for _, change := range params.ContentChanges {
		switch change_ := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text := change_.Text
			content = &text
		case protocol.TextDocumentContentChangeEvent:
			log.Warningf("ranged change for %s ignored, the server only accepts full text", uri)
		}
	}
	if content == nil {
		logToClient(context, protocol.MessageTypeWarning, fmt.Sprintf("lspblade: no full-text change for %s", uri))
		return nil
	}

	ls.sync(context, uri, params.TextDocument.Version, *content, false)
	return nil
}

// TextDocumentDidSave implements protocol.TextDocumentDidSaveFunc
func (ls *Server) textDocumentDidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == nil {
		return nil
	}
	uri := params.TextDocument.URI
	version := protocol.Integer(0)
	if current, ok := ls.documents.Get(uri); ok {
		if string(current.Text) == *params.Text {
			return nil
		}
		version = current.Version
	}
	ls.sync(context, uri, version, *params.Text, false)
	return nil
}

// TextDocumentDidClose implements protocol.TextDocumentDidCloseFunc
func (ls *Server) textDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.documents.Close(params.TextDocument.URI)
	if context != nil && context.Notify != nil {
		clearDiagnostics(params.TextDocument.URI, context.Notify)
	}
	return nil
}

func (ls *Server) sync(context *glsp.Context, uri protocol.DocumentUri, version protocol.Integer, text string, open bool) {
	ctx, cancel := ls.parseContext()
	defer cancel()

	var snapshot *Snapshot
	var err error
	if open {
		snapshot, err = ls.documents.Open(ctx, uri, version, text)
	} else {
		snapshot, err = ls.documents.Change(ctx, uri, version, text)
	}
	if err != nil {
		log.Errorf("parse %s: %s", uri, err.Error())
		logToClient(context, protocol.MessageTypeError, fmt.Sprintf("lspblade: could not parse %s: %v", uri, err))
		return
	}

	ls.publishIfCurrent(context, uri, snapshot)
}

// publishIfCurrent runs in message order. A snapshot replaced or closed
// meanwhile would only resurrect stale errors, so it is skipped.
func (ls *Server) publishIfCurrent(context *glsp.Context, uri protocol.DocumentUri, snapshot *Snapshot) {
	if context == nil || context.Notify == nil {
		return
	}
	if current, ok := ls.documents.Get(uri); !ok || current != snapshot {
		log.Debugf("skipping diagnostics for superseded %s (version %d)", uri, snapshot.Version)
		return
	}
	validateDocumentState(snapshot, ls.dialect, context.Notify)
}
