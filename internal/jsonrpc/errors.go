package jsonrpc

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

const (
	// ErrorCodeParseError indicates invalid JSON was received by the server.
	ErrorCodeParseError ErrorCode = -32700
	// ErrorCodeInvalidRequest indicates the JSON sent is not a valid Request object.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound indicates the method does not exist / is not available.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams indicates invalid method parameters.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternalError indicates an internal JSON-RPC error.
	ErrorCodeInternalError ErrorCode = -32603
)

// Server-defined codes in the implementation reserved range.
const (
	// ErrorCodeResourceNotFound indicates no registered resource has the requested URI.
	ErrorCodeResourceNotFound ErrorCode = -32000
	// ErrorCodeToolNotFound indicates no registered tool has the requested name.
	ErrorCodeToolNotFound ErrorCode = -32001
	// ErrorCodeInvalidURI indicates the requested URI could not be parsed.
	ErrorCodeInvalidURI ErrorCode = -32002
	// ErrorCodePromptNotFound indicates no registered prompt has the requested name.
	ErrorCodePromptNotFound ErrorCode = -32003
)

// String returns the symbolic name of the code, used in logs.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeParseError:
		return "parse_error"
	case ErrorCodeInvalidRequest:
		return "invalid_request"
	case ErrorCodeMethodNotFound:
		return "method_not_found"
	case ErrorCodeInvalidParams:
		return "invalid_params"
	case ErrorCodeInternalError:
		return "internal_error"
	case ErrorCodeResourceNotFound:
		return "resource_not_found"
	case ErrorCodeToolNotFound:
		return "tool_not_found"
	case ErrorCodeInvalidURI:
		return "invalid_uri"
	case ErrorCodePromptNotFound:
		return "prompt_not_found"
	}
	return "unknown"
}
