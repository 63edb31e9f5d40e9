package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ggoodman/mcp-stdio-server/internal/jsonrpc"
	"github.com/ggoodman/mcp-stdio-server/mcp"
)

// ErrInvalidParams wraps failures to decode params into the method's type.
var ErrInvalidParams = errors.New("invalid params")

// ParseMessage decodes one JSON-RPC message. It never fails: malformed input
// is returned as a local *ErrorResponse carrying the appropriate code, with a
// null id when the id could not be recovered.
func ParseMessage(raw []byte) (msg Message) {
	var id *jsonrpc.RequestID
	defer func() {
		if r := recover(); r != nil {
			msg = NewErrorResponse(id, jsonrpc.ErrorCodeInternalError, fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	if !json.Valid(raw) {
		return NewErrorResponse(nil, jsonrpc.ErrorCodeParseError, "parse error", nil)
	}

	var env jsonrpc.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return NewErrorResponse(nil, jsonrpc.ErrorCodeInvalidRequest, "invalid request: "+err.Error(), nil)
	}
	if env.HasID {
		id = env.ID
	}

	if env.JSONRPCVersion != jsonrpc.ProtocolVersion {
		return NewErrorResponse(id, jsonrpc.ErrorCodeInvalidRequest,
			fmt.Sprintf("invalid request: jsonrpc must be %q", jsonrpc.ProtocolVersion), nil)
	}

	switch env.Kind() {
	case jsonrpc.KindRequest:
		params, meta, err := decodeParams(env.Method, env.Params)
		if err != nil {
			return NewErrorResponse(id, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
		}
		return &Request{ID: env.ID, Method: env.Method, Params: params, Meta: meta}
	case jsonrpc.KindNotification:
		params, _, err := decodeParams(env.Method, env.Params)
		if err != nil {
			params = rawParams(env.Params)
		}
		return &Notification{Method: env.Method, Params: params}
	case jsonrpc.KindResponse:
		return &Response{ID: env.ID, Result: env.Result}
	case jsonrpc.KindError:
		if env.Error == nil {
			return NewErrorResponse(id, jsonrpc.ErrorCodeInvalidRequest, "invalid request: null error member", nil)
		}
		return &ErrorResponse{ID: env.ID, Error: env.Error}
	}

	return NewErrorResponse(id, jsonrpc.ErrorCodeInvalidRequest, "invalid request: message has no method, result or error", nil)
}

// decodeParams decodes raw into the params type registered for method and
// extracts params._meta. Absent, null or empty params yield the method's zero
// value. Unknown methods keep their params as mcp.RawParams.
func decodeParams(method string, raw json.RawMessage) (any, Meta, error) {
	meta := decodeMeta(raw)

	params, known := NewParams(method)
	if isEmptyParams(raw) {
		return params, meta, nil
	}
	if !known {
		return rawParams(raw), meta, nil
	}
	if err := json.Unmarshal(raw, params); err != nil {
		return nil, meta, fmt.Errorf("%w for %s: %v", ErrInvalidParams, method, err)
	}
	return params, meta, nil
}

func isEmptyParams(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte("{}"))
}

func rawParams(raw json.RawMessage) mcp.RawParams {
	out := mcp.RawParams{}
	if isEmptyParams(raw) {
		return out
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return mcp.RawParams{}
	}
	return out
}

func decodeMeta(raw json.RawMessage) Meta {
	if isEmptyParams(raw) {
		return Meta{}
	}
	var holder struct {
		Meta *struct {
			ProgressToken json.RawMessage `json:"progressToken"`
		} `json:"_meta"`
	}
	if err := json.Unmarshal(raw, &holder); err != nil || holder.Meta == nil {
		return Meta{}
	}
	return Meta{ProgressToken: decodeToken(holder.Meta.ProgressToken)}
}

// decodeToken accepts a string or integer progress token.
func decodeToken(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return nil
}
