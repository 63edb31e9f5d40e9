package mcp

import (
	"encoding/json"
)

// Method is an MCP method identifier used in JSON-RPC messages.
type Method string

// MCP method names and notifications.
const (
	// Initialization
	InitializeMethod              Method = "initialize"
	InitializedNotificationMethod Method = "notifications/initialized"

	// Tools
	ToolsListMethod Method = "tools/list"
	ToolsCallMethod Method = "tools/call"

	// Resources
	ResourcesListMethod        Method = "resources/list"
	ResourcesReadMethod        Method = "resources/read"
	ResourcesSubscribeMethod   Method = "resources/subscribe"
	ResourcesUnsubscribeMethod Method = "resources/unsubscribe"

	// Prompts
	PromptsListMethod Method = "prompts/list"
	PromptsGetMethod  Method = "prompts/get"

	// Logging
	LoggingSetLevelMethod Method = "logging/setLevel"

	// General
	PingMethod                  Method = "ping"
	CancelledNotificationMethod Method = "notifications/cancelled"
	ProgressNotificationMethod  Method = "notifications/progress"
)

// PaginatedRequest carries a cursor for paginated list requests.
type PaginatedRequest struct {
	Cursor string `json:"cursor,omitzero"`
}

// PaginatedResult carries a cursor for continuing pagination.
type PaginatedResult struct {
	NextCursor string `json:"nextCursor,omitzero"`
}

// ProgressToken is an identifier used to correlate progress updates.
// It may be a string or an integer.
type ProgressToken any

// Initialization

// InitializeRequest is sent by the client to begin the handshake.
type InitializeRequest struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    map[string]any     `json:"capabilities"`
	ClientInfo      ImplementationInfo `json:"clientInfo"`
}

// InitializeResult answers InitializeRequest. Capabilities is the projected
// capability map, keyed by CapabilityKind.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    map[string]any     `json:"capabilities"`
	ServerInfo      ImplementationInfo `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitzero"`
}

// InitializedNotification has no parameters.
type InitializedNotification struct{}

// Notifications

// CancelledNotification informs the peer that a request was canceled.
type CancelledNotification struct {
	RequestID any    `json:"requestId"`
	Reason    string `json:"reason,omitzero"`
}

// ProgressNotificationParams reports progress for a request that carried a
// progress token.
type ProgressNotificationParams struct {
	ProgressToken ProgressToken `json:"progressToken"`
	Progress      float64       `json:"progress"`
	Total         float64       `json:"total,omitzero"`
	Message       string        `json:"message,omitzero"`
}

// Tools

// ListToolsRequest asks for the registered tools.
type ListToolsRequest struct {
	PaginatedRequest
}

// ListToolsResult lists tool descriptors.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
	PaginatedResult
}

// CallToolRequest invokes a tool by name.
type CallToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// CallToolResult is the outcome of a tool invocation.
type CallToolResult struct {
	Content ContentList `json:"content"`
	IsError bool        `json:"isError"`
}

// Resources

// ListResourcesRequest asks for the registered resources.
type ListResourcesRequest struct {
	PaginatedRequest
}

// ListResourcesResult lists resource descriptors.
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
	PaginatedResult
}

// ReadResourceRequest reads a resource by URI.
type ReadResourceRequest struct {
	URI string `json:"uri"`
}

// ReadResourceResult carries the contents of a read.
type ReadResourceResult struct {
	Contents ResourceContentsList `json:"contents"`
}

// SubscribeRequest subscribes to updates of a resource.
type SubscribeRequest struct {
	URI string `json:"uri"`
}

// UnsubscribeRequest cancels a prior SubscribeRequest.
type UnsubscribeRequest struct {
	URI string `json:"uri"`
}

// Prompts

// ListPromptsRequest asks for the registered prompts.
type ListPromptsRequest struct {
	PaginatedRequest
}

// ListPromptsResult lists prompt descriptors.
type ListPromptsResult struct {
	Prompts []Prompt `json:"prompts"`
	PaginatedResult
}

// GetPromptRequest renders a prompt with arguments.
type GetPromptRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// GetPromptResult carries the rendered prompt messages.
type GetPromptResult struct {
	Description string          `json:"description,omitzero"`
	Messages    []PromptMessage `json:"messages"`
}

// Logging

// SetLevelRequest adjusts the server log level.
type SetLevelRequest struct {
	Level LoggingLevel `json:"level"`
}

// General

// PingRequest has no parameters.
type PingRequest struct{}

// EmptyResult is the result of requests that only acknowledge.
type EmptyResult struct{}

// RawParams holds the params of a method the server has no type for.
type RawParams map[string]any

// MarshalJSON keeps a nil map encoding as an empty object.
func (p RawParams) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(p))
}
