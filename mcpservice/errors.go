package mcpservice

import (
	"errors"
	"fmt"
	"strings"
)

// Lookup and validation failures surfaced by Server operations. The engine
// maps each onto its JSON-RPC error code with errors.Is.
var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrPromptNotFound    = errors.New("prompt not found")
	ErrInvalidURI        = errors.New("invalid uri")
	ErrMissingArguments  = errors.New("missing required arguments")
	ErrInvalidArguments  = errors.New("invalid arguments")
	ErrResultMismatch    = errors.New("tool result does not match declared return type")
	ErrUnsupportedResult = errors.New("unsupported tool result")
	ErrProviderFailed    = errors.New("resource provider failed")
)

// ToolErrorCause says why a tool invocation failed after the tool was found.
type ToolErrorCause int

const (
	CauseHandlerFailed ToolErrorCause = iota + 1
	CauseHandlerPanicked
	CauseResultMismatch
	CauseInvalidArguments
)

func (c ToolErrorCause) String() string {
	switch c {
	case CauseHandlerFailed:
		return "handler_failed"
	case CauseHandlerPanicked:
		return "handler_panicked"
	case CauseResultMismatch:
		return "result_mismatch"
	case CauseInvalidArguments:
		return "invalid_arguments"
	}
	return "unknown"
}

// ToolError wraps a failure that happened while invoking a registered tool.
type ToolError struct {
	Tool  string
	Cause ToolErrorCause
	Err   error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %s: %v", e.Tool, e.Cause, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// MissingArgumentsError names the required prompt arguments the caller did
// not supply. It matches ErrMissingArguments with errors.Is.
type MissingArgumentsError struct {
	Prompt string
	Names  []string
}

func (e *MissingArgumentsError) Error() string {
	return fmt.Sprintf("prompt %q: missing required arguments: %s", e.Prompt, strings.Join(e.Names, ", "))
}

func (e *MissingArgumentsError) Is(target error) bool { return target == ErrMissingArguments }
