package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ggoodman/mcp-stdio-server/internal/jsonrpc"
)

// SerializeMessage encodes msg as a single compact JSON line without the
// trailing newline. A request's Meta.ProgressToken is written to
// params._meta.progressToken.
func SerializeMessage(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case *Request:
		params, err := encodeParams(m.Params, m.Meta)
		if err != nil {
			return nil, err
		}
		id := m.ID
		if id == nil {
			id = &jsonrpc.RequestID{}
		}
		return json.Marshal(jsonrpc.Request{
			JSONRPCVersion: jsonrpc.ProtocolVersion,
			Method:         m.Method,
			Params:         params,
			ID:             id,
		})
	case *Notification:
		params, err := encodeParams(m.Params, Meta{})
		if err != nil {
			return nil, err
		}
		return json.Marshal(jsonrpc.Request{
			JSONRPCVersion: jsonrpc.ProtocolVersion,
			Method:         m.Method,
			Params:         params,
		})
	case *Response:
		result := m.Result
		if len(bytes.TrimSpace(result)) == 0 {
			result = json.RawMessage("null")
		}
		return json.Marshal(jsonrpc.Response{
			JSONRPCVersion: jsonrpc.ProtocolVersion,
			ID:             m.ID,
			Result:         result,
		})
	case *ErrorResponse:
		rpcErr := m.Error
		if rpcErr == nil {
			rpcErr = jsonrpc.NewError(jsonrpc.ErrorCodeInternalError, "internal error", nil)
		}
		return json.Marshal(jsonrpc.ErrorResponse{
			JSONRPCVersion: jsonrpc.ProtocolVersion,
			ID:             m.ID,
			Error:          rpcErr,
		})
	case nil:
		return nil, fmt.Errorf("serialize: nil message")
	}
	return nil, fmt.Errorf("serialize: unsupported message %T", msg)
}

// NewResultResponse marshals result into a Response for id.
func NewResultResponse(id *jsonrpc.RequestID, result any) (*Response, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &Response{ID: id, Result: b}, nil
}

func encodeParams(params any, meta Meta) (json.RawMessage, error) {
	if params == nil && meta.ProgressToken == nil {
		return nil, nil
	}

	raw := []byte("{}")
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		raw = b
	}
	if meta.ProgressToken == nil {
		return raw, nil
	}

	obj := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("params must encode as an object to carry _meta: %w", err)
	}
	if obj == nil {
		obj = map[string]any{}
	}
	m, _ := obj["_meta"].(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	m["progressToken"] = meta.ProgressToken
	obj["_meta"] = m
	return json.Marshal(obj)
}
