package implementation

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// protocol.InitializeFunc signature
func (ls *Server) initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		log.Infof("initializing for %s", params.ClientInfo.Name)
	}

	capabilities := ls.handler.CreateServerCapabilities()

	// Whole documents only; the grammar engine does its own incremental work.
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"$", ">", ":", "@"},
	}
	capabilities.HoverProvider = true
	capabilities.DocumentSymbolProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// protocol.InitializedFunc signature
func (ls *Server) initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("client initialized")
	logToClient(context, protocol.MessageTypeInfo, "lspblade is ready")
	return nil
}

// protocol.ShutdownFunc signature
func (ls *Server) shutdownRequest(context *glsp.Context) error {
	log.Info("shutdown requested")
	ls.shutdown.Store(true)
	ls.documents.Reset()
	return nil
}

// protocol.ExitFunc signature. Exiting without a prior shutdown is an error
// exit.
func (ls *Server) exitNotification(context *glsp.Context) error {
	code := 1
	if ls.shutdown.Load() {
		code = 0
	}
	log.Infof("exit (%d)", code)
	if ls.exit != nil {
		ls.exit(code)
	}
	return nil
}

// protocol.SetTraceFunc signature
func (ls *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
