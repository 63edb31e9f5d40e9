package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

// ErrNotObject is returned when a syntactically valid JSON document is not an
// object and therefore cannot be a JSON-RPC message.
var ErrNotObject = errors.New("jsonrpc: message is not a JSON object")

// Kind classifies an Envelope by the fields it carries.
type Kind int

const (
	KindInvalid Kind = iota
	KindRequest
	KindNotification
	KindResponse
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindResponse:
		return "response"
	case KindError:
		return "error"
	}
	return "invalid"
}

// Envelope is the untyped wire shape shared by every JSON-RPC message. Field
// presence is tracked explicitly so that an absent id and a null id remain
// distinguishable.
type Envelope struct {
	JSONRPCVersion string
	Method         string
	Params         json.RawMessage
	Result         json.RawMessage
	Error          *Error
	ID             *RequestID

	HasID     bool
	HasMethod bool
	HasResult bool
	HasError  bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ErrNotObject
		}
		return err
	}
	if fields == nil {
		return ErrNotObject
	}

	*e = Envelope{}

	if raw, ok := fields["jsonrpc"]; ok {
		if err := json.Unmarshal(raw, &e.JSONRPCVersion); err != nil {
			return fmt.Errorf("invalid jsonrpc member: %w", err)
		}
	}
	if raw, ok := fields["id"]; ok {
		e.HasID = true
		var id RequestID
		if err := json.Unmarshal(raw, &id); err != nil {
			return err
		}
		e.ID = &id
	}
	if raw, ok := fields["method"]; ok {
		e.HasMethod = true
		if err := json.Unmarshal(raw, &e.Method); err != nil {
			return fmt.Errorf("invalid method member: %w", err)
		}
	}
	if raw, ok := fields["params"]; ok {
		e.Params = raw
	}
	if raw, ok := fields["result"]; ok {
		e.HasResult = true
		e.Result = raw
	}
	if raw, ok := fields["error"]; ok {
		e.HasError = true
		var rpcErr Error
		if err := json.Unmarshal(raw, &rpcErr); err != nil {
			return fmt.Errorf("invalid error member: %w", err)
		}
		e.Error = &rpcErr
	}

	return nil
}

// Kind classifies the envelope: method+id is a request, method alone is a
// notification, result is a success response and error is an error response.
func (e *Envelope) Kind() Kind {
	switch {
	case e.HasMethod && e.HasID:
		return KindRequest
	case e.HasMethod:
		return KindNotification
	case e.HasResult:
		return KindResponse
	case e.HasError:
		return KindError
	}
	return KindInvalid
}

// Request is the outgoing wire form of a request or notification. A nil ID
// omits the member, which makes the message a notification.
type Request struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Method         string          `json:"method"`
	Params         json.RawMessage `json:"params,omitempty"`
	ID             *RequestID      `json:"id,omitempty"`
}

// Response is the outgoing wire form of a success response.
type Response struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	ID             *RequestID      `json:"id"`
	Result         json.RawMessage `json:"result"`
}

// ErrorResponse is the outgoing wire form of an error response. The id is
// always present and may be null.
type ErrorResponse struct {
	JSONRPCVersion string     `json:"jsonrpc"`
	ID             *RequestID `json:"id"`
	Error          *Error     `json:"error"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

// NewError builds an Error object.
func NewError(code ErrorCode, message string, data any) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}
