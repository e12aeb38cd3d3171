package implementation

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/op/go-logging"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/lspblade/completion"
	"github.com/tminor/lspblade/syntax"
)

const lsName = "lspblade"

var log = logging.MustGetLogger("lspblade.server")

// parseTimeout bounds a single (re)parse of a document.
const parseTimeout = 10 * time.Second

// Options are the collaborators a Server is built from.
type Options struct {
	Version string
	Engine  syntax.Engine
	Dialect *syntax.Dialect
	Oracle  completion.Oracle
	Offset  completion.OffsetPolicy
	// Exit is called on the exit notification; nil leaves the process alone.
	Exit func(code int)
	// TraceMessages logs every JSON-RPC message at debug level.
	TraceMessages bool
}

// Server is the Blade language server. The document store lives exactly as
// long as the Server value.
type Server struct {
	handler       protocol.Handler
	version       string
	documents     *documentStore
	dialect       *syntax.Dialect
	dispatcher    *completion.Dispatcher
	exit          func(code int)
	traceMessages bool
	shutdown      atomic.Bool
}

func NewServer(options Options) *Server {
	dialect := options.Dialect
	if dialect == nil {
		dialect = syntax.Blade
	}

	ls := &Server{
		version:   options.Version,
		documents: newDocumentStore(options.Engine),
		dialect:   dialect,
		dispatcher: &completion.Dispatcher{
			Oracle:  options.Oracle,
			Dialect: dialect,
			Offset:  options.Offset,
		},
		exit:          options.Exit,
		traceMessages: options.TraceMessages,
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdownRequest,
		Exit:                       ls.exitNotification,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentCompletion:     ls.textDocumentCompletion,
		TextDocumentHover:          ls.textDocumentHover,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
	}

	return ls
}

// Reset drops every open document.
func (ls *Server) Reset() {
	ls.documents.Reset()
}

func (ls *Server) parseContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), parseTimeout)
}

// logToClient mirrors a server-side failure into the client's output panel.
func logToClient(ctx *glsp.Context, messageType protocol.MessageType, message string) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	go ctx.Notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    messageType,
		Message: message,
	})
}
