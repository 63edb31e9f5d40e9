// Package protocol turns raw JSON-RPC lines into typed MCP messages and back.
package protocol

import (
	"encoding/json"

	"github.com/ggoodman/mcp-stdio-server/internal/jsonrpc"
)

// Message is one of *Request, *Response, *Notification or *ErrorResponse.
type Message interface {
	Kind() jsonrpc.Kind
	isMessage()
}

// Meta carries request metadata that travels in params._meta.
type Meta struct {
	// ProgressToken is a string or int64 when set.
	ProgressToken any
}

// Request is a method call that expects exactly one response.
type Request struct {
	ID     *jsonrpc.RequestID
	Method string
	// Params holds the typed params value registered for Method, or
	// mcp.RawParams for methods without a registered type.
	Params any
	Meta   Meta
}

// Notification is a method call without an id. It never receives a response.
type Notification struct {
	Method string
	Params any
}

// Response is a success response. Result is kept undecoded since the server
// has no outstanding requests whose result type it could know.
type Response struct {
	ID     *jsonrpc.RequestID
	Result json.RawMessage
}

// ErrorResponse carries a JSON-RPC error. ID is nil when the failing message's
// id could not be determined.
type ErrorResponse struct {
	ID    *jsonrpc.RequestID
	Error *jsonrpc.Error

	local bool
}

func (*Request) Kind() jsonrpc.Kind       { return jsonrpc.KindRequest }
func (*Notification) Kind() jsonrpc.Kind  { return jsonrpc.KindNotification }
func (*Response) Kind() jsonrpc.Kind      { return jsonrpc.KindResponse }
func (*ErrorResponse) Kind() jsonrpc.Kind { return jsonrpc.KindError }

func (*Request) isMessage()       {}
func (*Notification) isMessage()  {}
func (*Response) isMessage()      {}
func (*ErrorResponse) isMessage() {}

// NewErrorResponse builds an ErrorResponse that originates from this side of
// the connection.
func NewErrorResponse(id *jsonrpc.RequestID, code jsonrpc.ErrorCode, message string, data any) *ErrorResponse {
	return &ErrorResponse{ID: id, Error: jsonrpc.NewError(code, message, data), local: true}
}

// Local reports whether the error was produced by this process (for example
// while parsing a malformed line) rather than received from the peer. Local
// errors are answers that must be written back; received ones are not.
func (e *ErrorResponse) Local() bool { return e.local }
