// Package engine dispatches parsed MCP messages to the component registry
// and turns the outcome into the message to write back.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ggoodman/mcp-stdio-server/internal/jsonrpc"
	"github.com/ggoodman/mcp-stdio-server/internal/logctx"
	"github.com/ggoodman/mcp-stdio-server/internal/protocol"
	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/ggoodman/mcp-stdio-server/mcpservice"
	"github.com/google/uuid"
)

var (
	errUnsupported   = errors.New("capability not supported")
	errInvalidParams = errors.New("invalid params")
)

// Engine routes one connection's messages to a mcpservice.Server. It holds
// the connection-scoped state the registry does not: the resource
// subscriptions this client asked for.
type Engine struct {
	srv *mcpservice.Server
	log *slog.Logger
	id  string // process-unique engine ID, attached to every log line

	routes map[mcp.Method]requestHandler

	subMu sync.Mutex
	subs  map[string]*mcpservice.Subscription // uri -> handle
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger for the Engine.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an Engine serving srv.
func NewEngine(srv *mcpservice.Server, opts ...EngineOption) *Engine {
	e := &Engine{
		srv:  srv,
		log:  slog.Default(),
		id:   uuid.NewString(),
		subs: make(map[string]*mcpservice.Subscription),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.log = e.log.With(slog.String("engine_id", e.id))
	e.routes = e.handlers()
	return e
}

// ID returns the engine's process-unique identifier.
func (e *Engine) ID() string { return e.id }

// RequestContext is what a request handler knows about the call it serves.
type RequestContext struct {
	Server        *mcpservice.Server
	RequestID     *jsonrpc.RequestID
	ProgressToken any
}

type requestHandler func(ctx context.Context, rc *RequestContext, params any) (any, error)

func (e *Engine) handlers() map[mcp.Method]requestHandler {
	return map[mcp.Method]requestHandler{
		mcp.InitializeMethod:           e.handleInitialize,
		mcp.PingMethod:                 e.handlePing,
		mcp.ToolsListMethod:            e.handleToolsList,
		mcp.ToolsCallMethod:            e.handleToolsCall,
		mcp.ResourcesListMethod:        e.handleResourcesList,
		mcp.ResourcesReadMethod:        e.handleResourcesRead,
		mcp.ResourcesSubscribeMethod:   e.handleResourcesSubscribe,
		mcp.ResourcesUnsubscribeMethod: e.handleResourcesUnsubscribe,
		mcp.PromptsListMethod:          e.handlePromptsList,
		mcp.PromptsGetMethod:           e.handlePromptsGet,
		mcp.LoggingSetLevelMethod:      e.handleSetLoggingLevel,
	}
}

// HandleMessage processes one parsed message and returns the message to
// write back, or nil when nothing must be written. Requests and locally
// produced parse errors always yield a reply; notifications and messages
// received from the peer as responses never do.
func (e *Engine) HandleMessage(ctx context.Context, msg protocol.Message) (out protocol.Message) {
	switch m := msg.(type) {
	case *protocol.Request:
		return e.HandleRequest(ctx, m)
	case *protocol.Notification:
		e.HandleNotification(ctx, m)
		return nil
	case *protocol.ErrorResponse:
		if m.Local() {
			e.log.InfoContext(ctx, "engine.handle_message.invalid",
				slog.Int("code", int(m.Error.Code)),
				slog.String("err", m.Error.Message))
			return m
		}
		e.log.WarnContext(ctx, "engine.handle_message.unexpected", slog.String("type", "error"))
		return nil
	case *protocol.Response:
		e.log.WarnContext(ctx, "engine.handle_message.unexpected", slog.String("type", "response"))
		return nil
	}
	return nil
}

// HandleRequest runs the handler registered for req.Method and always
// returns either a *protocol.Response or a *protocol.ErrorResponse.
func (e *Engine) HandleRequest(ctx context.Context, req *protocol.Request) (out protocol.Message) {
	start := time.Now()
	log := e.log.With(slog.String("method", req.Method))
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: req.Method, ID: req.ID.String(), Type: "request"})

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "engine.handle_request.panic",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			out = protocol.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	h, ok := e.routes[mcp.Method(req.Method)]
	if !ok {
		log.InfoContext(ctx, "engine.handle_request.unsupported", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return protocol.NewErrorResponse(req.ID, jsonrpc.ErrorCodeMethodNotFound, "method not found: "+req.Method, nil)
	}

	rc := &RequestContext{Server: e.srv, RequestID: req.ID, ProgressToken: req.Meta.ProgressToken}
	result, err := h(ctx, rc, req.Params)
	if err != nil {
		code, message := errorCode(err)
		switch code {
		case jsonrpc.ErrorCodeInternalError:
			log.ErrorContext(ctx, "engine.handle_request.fail", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		case jsonrpc.ErrorCodeMethodNotFound:
			log.InfoContext(ctx, "engine.handle_request.unsupported", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		default:
			log.InfoContext(ctx, "engine.handle_request.invalid", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		}
		return protocol.NewErrorResponse(req.ID, code, message, nil)
	}

	res, err := protocol.NewResultResponse(req.ID, result)
	if err != nil {
		log.ErrorContext(ctx, "engine.handle_request.fail", slog.String("err", err.Error()))
		return protocol.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, "internal error", nil)
	}
	log.InfoContext(ctx, "engine.handle_request.ok", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
	return res
}

// HandleNotification applies a client notification. Unknown notifications
// are logged and dropped.
func (e *Engine) HandleNotification(ctx context.Context, n *protocol.Notification) {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: n.Method, Type: "notification"})
	log := e.log.With(slog.String("method", n.Method))

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "engine.handle_notification.panic", slog.Any("panic", r))
		}
	}()

	switch mcp.Method(n.Method) {
	case mcp.InitializedNotificationMethod:
		e.srv.Activate()
		log.InfoContext(ctx, "engine.handle_notification.initialized")
	case mcp.CancelledNotificationMethod:
		if p, ok := n.Params.(*mcp.CancelledNotification); ok {
			log.DebugContext(ctx, "engine.handle_notification.cancelled",
				slog.Any("request_id", p.RequestID),
				slog.String("reason", p.Reason))
		}
	case mcp.ProgressNotificationMethod:
		log.DebugContext(ctx, "engine.handle_notification.progress")
	default:
		log.DebugContext(ctx, "engine.handle_notification.unsupported")
	}
}

// errorCode maps a handler error onto its JSON-RPC code and message. Tool
// and provider failures are matched before the lookup sentinels they may
// wrap.
func errorCode(err error) (jsonrpc.ErrorCode, string) {
	var te *mcpservice.ToolError
	switch {
	case errors.As(err, &te) && te.Cause == mcpservice.CauseInvalidArguments:
		return jsonrpc.ErrorCodeInvalidParams, err.Error()
	case errors.As(err, &te):
		return jsonrpc.ErrorCodeInternalError, "tool execution failed: " + err.Error()
	case errors.Is(err, mcpservice.ErrProviderFailed):
		return jsonrpc.ErrorCodeInternalError, "resource read failed: " + err.Error()
	case errors.Is(err, mcpservice.ErrToolNotFound):
		return jsonrpc.ErrorCodeToolNotFound, err.Error()
	case errors.Is(err, mcpservice.ErrResourceNotFound):
		return jsonrpc.ErrorCodeResourceNotFound, err.Error()
	case errors.Is(err, mcpservice.ErrPromptNotFound):
		return jsonrpc.ErrorCodePromptNotFound, err.Error()
	case errors.Is(err, mcpservice.ErrInvalidURI):
		return jsonrpc.ErrorCodeInvalidURI, err.Error()
	case errors.Is(err, mcpservice.ErrMissingArguments),
		errors.Is(err, mcpservice.ErrInvalidLoggingLevel),
		errors.Is(err, errInvalidParams):
		return jsonrpc.ErrorCodeInvalidParams, err.Error()
	case errors.Is(err, mcpservice.ErrLoggingUnsupported), errors.Is(err, errUnsupported):
		return jsonrpc.ErrorCodeMethodNotFound, err.Error()
	}
	return jsonrpc.ErrorCodeInternalError, "internal error: " + err.Error()
}

// paramsAs asserts the typed params value produced by the parser.
func paramsAs[P any](params any) (*P, error) {
	p, ok := params.(*P)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: unexpected %T", errInvalidParams, params)
	}
	return p, nil
}
