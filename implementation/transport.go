package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var rpcLog = commonlog.GetLogger("lspblade.rpc")

// codeRequestCancelled answers a request the client withdrew.
const codeRequestCancelled = -32800

// RunStdio serves the protocol on stdin and stdout until the client goes
// away.
func (ls *Server) RunStdio() error {
	return ls.Serve(context.Background(), stdio{})
}

// Serve runs one client connection over stream and returns once it is
// closed and every pending completion has finished.
//
// Messages are handled in arrival order, so a completion always sees the
// changes sent before it. Completion captures its snapshot in that order and
// then waits for the oracle off the read loop; everything else answers
// inline.
func (ls *Server) Serve(ctx context.Context, stream io.ReadWriteCloser) error {
	options := []jsonrpc2.ConnOpt{jsonrpc2.SetLogger(rpcLogger{rpcLog})}
	if ls.traceMessages {
		options = append(options, jsonrpc2.LogMessages(rpcLogger{rpcLog}))
	}

	handler := &connection{server: ls, pending: make(map[jsonrpc2.ID]context.CancelFunc)}
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}), handler, options...)
	rpcLog.Info("client connected")

	<-conn.DisconnectNotify()
	handler.cancelAll()
	handler.inflight.Wait()
	rpcLog.Info("client disconnected")
	return nil
}

// connection is the jsonrpc2.Handler of one client.
type connection struct {
	server   *Server
	inflight sync.WaitGroup

	mu      sync.Mutex
	pending map[jsonrpc2.ID]context.CancelFunc
}

func (c *connection) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	switch req.Method {
	case protocol.MethodCancelRequest:
		c.cancel(req)
		return
	case protocol.MethodTextDocumentCompletion:
		if !req.Notif && c.server.handler.IsInitialized() {
			c.completeAsync(ctx, conn, req)
			return
		}
	}
	c.handleInOrder(ctx, conn, req)
}

func (c *connection) handleInOrder(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	result, validMethod, validParams, err := c.server.handler.Handle(newContext(ctx, conn, req))

	if req.Method == protocol.MethodExit {
		if err := conn.Close(); err != nil {
			rpcLog.Debugf("close after exit: %s", err.Error())
		}
		return
	}

	if req.Notif {
		if err != nil {
			log.Errorf("%s: %s", req.Method, err.Error())
		}
		return
	}

	switch {
	case !validMethod:
		c.replyError(ctx, conn, req, jsonrpc2.CodeMethodNotFound, fmt.Sprintf("method not supported: %s", req.Method))
	case !validParams:
		c.replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, fmt.Sprintf("invalid params for %s", req.Method))
	case err != nil:
		c.replyError(ctx, conn, req, jsonrpc2.CodeInvalidRequest, err.Error())
	default:
		c.reply(ctx, conn, req, result)
	}
}

func (c *connection) completeAsync(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	var params protocol.CompletionParams
	if req.Params == nil || json.Unmarshal(*req.Params, &params) != nil {
		c.replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, "invalid params for "+req.Method)
		return
	}

	// the snapshot is taken here, before anything waits
	complete := c.server.prepareCompletion(newContext(ctx, conn, req), &params)

	requestCtx, cancel := context.WithCancel(ctx)
	c.track(req.ID, cancel)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer c.untrack(req.ID)

		items := complete(requestCtx)
		if errors.Is(requestCtx.Err(), context.Canceled) {
			c.replyError(ctx, conn, req, codeRequestCancelled, "request cancelled")
			return
		}
		c.reply(ctx, conn, req, items)
	}()
}

func (c *connection) cancel(req *jsonrpc2.Request) {
	var params struct {
		ID jsonrpc2.ID `json:"id"`
	}
	if req.Params == nil || json.Unmarshal(*req.Params, &params) != nil {
		return
	}
	c.mu.Lock()
	cancel, ok := c.pending[params.ID]
	c.mu.Unlock()
	if ok {
		log.Debugf("cancelling request %s", params.ID.String())
		cancel()
	}
}

func (c *connection) track(id jsonrpc2.ID, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[id] = cancel
}

func (c *connection) untrack(id jsonrpc2.ID) {
	c.mu.Lock()
	cancel, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *connection) cancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cancel := range c.pending {
		cancel()
	}
}

func (c *connection) reply(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, result any) {
	if err := conn.Reply(ctx, req.ID, result); err != nil {
		rpcLog.Debugf("reply to %s: %s", req.Method, err.Error())
	}
}

func (c *connection) replyError(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, code int64, message string) {
	if err := conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{Code: code, Message: message}); err != nil {
		rpcLog.Debugf("reply to %s: %s", req.Method, err.Error())
	}
}

func newContext(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) *glsp.Context {
	glspContext := &glsp.Context{
		Method: req.Method,
		Notify: func(method string, params any) {
			if err := conn.Notify(ctx, method, params); err != nil {
				rpcLog.Debugf("notify %s: %s", method, err.Error())
			}
		},
	}
	if req.Params != nil {
		glspContext.Params = *req.Params
	}
	return glspContext
}

type rpcLogger struct {
	log commonlog.Logger
}

func (l rpcLogger) Printf(format string, v ...any) {
	l.log.Debugf(format, v...)
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdio) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdio) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
